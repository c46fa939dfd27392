package client

import (
	"time"

	"github.com/bytedance/sonic"

	"github.com/namansharma28/CollabBoard-sub000/domain"
)

// BoardView is the local view of one board: its tasks plus the board
// counter snapshot. Counters always come from board-updated event
// payloads or an authoritative refetch, never from counting tasks
// locally, so the view cannot drift from the server's atomic counter
// semantics.
type BoardView struct {
	window    time.Duration
	notify    func(domain.Task)
	board     domain.Board
	haveBoard bool
	entries   []taskEntry
}

type taskEntry struct {
	task   domain.Task
	tempID string
	token  string
	fp     Fingerprint
}

// NewBoardView creates an empty board view. window <= 0 selects
// DefaultFingerprintWindow; notify, when non-nil, fires for tasks
// created by other collaborators.
func NewBoardView(window time.Duration, notify func(domain.Task)) *BoardView {
	if window <= 0 {
		window = DefaultFingerprintWindow
	}
	return &BoardView{window: window, notify: notify}
}

// Create inserts an optimistic task immediately and returns its
// temporary identifier.
func (v *BoardView) Create(draft domain.TaskDraft, actorID, token string, now time.Time) string {
	id := tempID()
	status := draft.Status
	if status == "" {
		status = domain.StatusTodo
	}
	v.entries = append(v.entries, taskEntry{
		task: domain.Task{
			ID:          id,
			Title:       draft.Title,
			Description: draft.Description,
			Status:      status,
			Priority:    draft.Priority,
			DueAt:       draft.DueAt,
			AssigneeID:  draft.AssigneeID,
			CreatedBy:   actorID,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		tempID: id,
		token:  token,
		fp:     Fingerprint{Sender: actorID, Content: draft.Title, At: now},
	})
	return id
}

// ConfirmCreate replaces the optimistic task with the server-confirmed
// record (HTTP response path). A no-op when the bus echo merged first.
func (v *BoardView) ConfirmCreate(tempID string, confirmed domain.Task) {
	for i := range v.entries {
		if v.entries[i].tempID == tempID {
			v.entries[i] = taskEntry{task: confirmed}
			return
		}
	}
	if v.indexByID(confirmed.ID) >= 0 {
		return
	}
	v.insertOrdered(taskEntry{task: confirmed})
}

// RejectCreate rolls back an optimistic insert after a failed mutation.
func (v *BoardView) RejectCreate(tempID string) {
	for i := range v.entries {
		if v.entries[i].tempID == tempID {
			v.entries = append(v.entries[:i], v.entries[i+1:]...)
			return
		}
	}
}

// ApplyEvent merges a bus event into the view. Idempotent: applying the
// same event twice produces the same view as applying it once.
func (v *BoardView) ApplyEvent(ev domain.Event) error {
	switch ev.Name {
	case domain.TaskCreated:
		var data domain.TaskCreatedData
		if err := sonic.Unmarshal(ev.Data, &data); err != nil {
			return err
		}
		v.applyCreate(data.Task, ev.IdempotencyKey)
	case domain.TaskUpdated:
		var data domain.TaskUpdatedData
		if err := sonic.Unmarshal(ev.Data, &data); err != nil {
			return err
		}
		if i := v.indexByID(data.Task.ID); i >= 0 {
			v.entries[i] = taskEntry{task: data.Task}
		} else {
			// An update for a task this view never saw (subscribed after
			// the create): treat it as new.
			v.insertOrdered(taskEntry{task: data.Task})
		}
	case domain.TaskDeleted:
		var data domain.TaskDeletedData
		if err := sonic.Unmarshal(ev.Data, &data); err != nil {
			return err
		}
		if i := v.indexByID(data.TaskID); i >= 0 {
			v.entries = append(v.entries[:i], v.entries[i+1:]...)
		}
	case domain.BoardUpdated:
		var data domain.BoardUpdatedData
		if err := sonic.Unmarshal(ev.Data, &data); err != nil {
			return err
		}
		v.board = data.Board
		v.haveBoard = true
	}
	return nil
}

func (v *BoardView) applyCreate(task domain.Task, token string) {
	if i := v.indexByID(task.ID); i >= 0 {
		v.entries[i] = taskEntry{task: task}
		return
	}
	fp := Fingerprint{Sender: task.CreatedBy, Content: task.Title, At: task.CreatedAt}
	if token != "" {
		for i := range v.entries {
			if v.entries[i].tempID != "" && v.entries[i].token == token {
				v.entries[i] = taskEntry{task: task}
				return
			}
		}
	}
	for i := range v.entries {
		if v.entries[i].tempID != "" && v.entries[i].fp.Matches(fp, v.window) {
			v.entries[i] = taskEntry{task: task}
			return
		}
	}
	v.insertOrdered(taskEntry{task: task})
	if v.notify != nil {
		v.notify(task)
	}
}

// Reset replaces the view with an authoritative server snapshot.
// Optimistic records still in flight are discarded.
func (v *BoardView) Reset(board domain.Board, tasks []domain.Task) {
	v.board = board
	v.haveBoard = true
	v.entries = v.entries[:0]
	for _, t := range tasks {
		v.entries = append(v.entries, taskEntry{task: t})
	}
}

// Board returns the latest board snapshot, false when none was received
// yet.
func (v *BoardView) Board() (domain.Board, bool) {
	return v.board, v.haveBoard
}

// Tasks returns the current view in stable creation order.
func (v *BoardView) Tasks() []domain.Task {
	out := make([]domain.Task, len(v.entries))
	for i, e := range v.entries {
		out[i] = e.task
	}
	return out
}

// Column returns the tasks of one status column in view order, feeding
// the keyboard focus model's index arithmetic.
func (v *BoardView) Column(s domain.Status) []domain.Task {
	out := []domain.Task{}
	for _, e := range v.entries {
		if e.task.Status == s {
			out = append(out, e.task)
		}
	}
	return out
}

// Pending reports how many optimistic records await confirmation.
func (v *BoardView) Pending() int {
	n := 0
	for _, e := range v.entries {
		if e.tempID != "" {
			n++
		}
	}
	return n
}

func (v *BoardView) indexByID(id string) int {
	for i := range v.entries {
		if v.entries[i].task.ID == id {
			return i
		}
	}
	return -1
}

func (v *BoardView) insertOrdered(e taskEntry) {
	at := len(v.entries)
	for i := range v.entries {
		if v.entries[i].task.CreatedAt.After(e.task.CreatedAt) {
			at = i
			break
		}
	}
	v.entries = append(v.entries, taskEntry{})
	copy(v.entries[at+1:], v.entries[at:])
	v.entries[at] = e
}
