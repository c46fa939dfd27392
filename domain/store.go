package domain

import (
	"context"
	"time"
)

// Store is the document persistence consumed by the mutation services.
// Lookups return (nil, nil) when the document is absent; identifiers
// are opaque strings that round-trip safely through the wire protocol.
type Store interface {
	GetTeam(ctx context.Context, teamID string) (*Team, error)
	GetBoard(ctx context.Context, boardID string) (*Board, error)

	GetTask(ctx context.Context, taskID string) (*Task, error)
	// InsertTask persists t and returns its generated identifier.
	InsertTask(ctx context.Context, t Task) (string, error)
	// UpdateTask applies the patch and returns the updated document.
	UpdateTask(ctx context.Context, taskID string, patch TaskPatch) (*Task, error)
	DeleteTask(ctx context.Context, taskID string) error
	ListTasks(ctx context.Context, boardID string) ([]Task, error)

	// AdjustBoardCounters atomically increments the board's counters by
	// the given deltas (storage-level increment, never read-modify-write)
	// and returns the board as persisted after the adjustment.
	AdjustBoardCounters(ctx context.Context, boardID string, totalDelta, completedDelta int) (*Board, error)

	GetMessage(ctx context.Context, messageID string) (*Message, error)
	InsertMessage(ctx context.Context, m Message) (string, error)
	// ListMessages returns up to limit most recent messages of the
	// channel in ascending creation order; limit <= 0 means no cap.
	ListMessages(ctx context.Context, teamID, channel string, limit int) ([]Message, error)
}

// Publisher fans one event out to a room's current subscribers.
// Delivery is best effort; nothing downstream is guaranteed to receive
// it.
type Publisher interface {
	Publish(room string, ev Event)
}

// Clock lets tests pin timestamps. The zero value uses wall time.
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now().UTC()
	}
	return c()
}
