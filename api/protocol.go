package api

import "github.com/namansharma28/CollabBoard-sub000/domain"

const mutationMaxBodySize = 64 * 1024 // 64 KiB

// Mutation requests carry an optional client-generated idempotency
// token. The server generates one when absent, checks it against the
// deduper, echoes it in the response and in the bus event envelope so
// the sending client can match its own echo exactly.

type createTaskRequest struct {
	domain.TaskDraft
	IdempotencyKey string `json:"idempotencyKey,omitempty"`
}

type updateTaskRequest struct {
	domain.TaskPatch
	IdempotencyKey string `json:"idempotencyKey,omitempty"`
}

type sendMessageRequest struct {
	domain.MessageDraft
	SenderName   string `json:"senderName,omitempty"`
	SenderAvatar string `json:"senderAvatar,omitempty"`

	IdempotencyKey string `json:"idempotencyKey,omitempty"`
}

type taskResponse struct {
	Task           domain.Task `json:"task"`
	IdempotencyKey string      `json:"idempotencyKey"`
}

type messageResponse struct {
	Message        domain.Message `json:"message"`
	IdempotencyKey string         `json:"idempotencyKey"`
}

// boardTasksResponse is the authoritative board snapshot served to
// initial loads and post-reconnect refetches.
type boardTasksResponse struct {
	Board domain.Board  `json:"board"`
	Tasks []domain.Task `json:"tasks"`
}

type messagesResponse struct {
	Messages []domain.Message `json:"messages"`
}

type errorResponse struct {
	Error string `json:"error"`
}
