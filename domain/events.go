package domain

import (
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
)

// Bus event names. One event is published per state change.
const (
	TaskCreated    = "task-created"
	TaskUpdated    = "task-updated"
	TaskDeleted    = "task-deleted"
	BoardUpdated   = "board-updated"
	MessageCreated = "message-created"
)

// Event is the envelope delivered to every subscriber of a room.
// IdempotencyKey echoes the client-generated token of the mutation that
// produced the event, so the originating client can match its own echo
// without resorting to fingerprint heuristics.
type Event struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Room           string          `json:"room"`
	IdempotencyKey string          `json:"idempotencyKey,omitempty"`
	Data           json.RawMessage `json:"data"`
	Time           int64           `json:"time"`
}

// TaskCreatedData is the payload of a task-created event.
type TaskCreatedData struct {
	Task    Task   `json:"task"`
	BoardID string `json:"boardId"`
}

// TaskUpdatedData is the payload of a task-updated event.
type TaskUpdatedData struct {
	Task    Task   `json:"task"`
	BoardID string `json:"boardId"`
}

// TaskDeletedData carries the deleted task's last known snapshot, since
// late subscribers can no longer fetch it.
type TaskDeletedData struct {
	TaskID  string `json:"taskId"`
	BoardID string `json:"boardId"`
	Task    Task   `json:"task"`
}

// BoardUpdatedData is the payload of a board-updated event. Clients
// must take counter values from this snapshot, never recompute them.
type BoardUpdatedData struct {
	Board Board `json:"board"`
}

// message-created events carry the Message itself as payload, not a
// wrapper struct.

// NewEvent builds an envelope for one state change.
func NewEvent(name, room, idempotencyKey string, data any) (Event, error) {
	raw, err := sonic.Marshal(data)
	if err != nil {
		return Event{}, err
	}
	return Event{
		ID:             uuid.NewString(),
		Name:           name,
		Room:           room,
		IdempotencyKey: idempotencyKey,
		Data:           raw,
		Time:           nextTimestamp(),
	}, nil
}

var lastTimestamp int64

// nextTimestamp returns a strictly increasing wall-clock nanosecond
// value so events published back to back never share a timestamp.
func nextTimestamp() int64 {
	for {
		now := time.Now().UnixNano()
		last := atomic.LoadInt64(&lastTimestamp)
		if now <= last {
			now = last + 1
		}
		if atomic.CompareAndSwapInt64(&lastTimestamp, last, now) {
			return now
		}
	}
}
