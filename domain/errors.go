package domain

import "errors"

// Caller-facing error taxonomy. Mutation services wrap these with
// context via fmt.Errorf and %w; transports match with errors.Is.
// Anything not wrapping one of these is an internal failure and must
// not leak storage detail to callers.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
)
