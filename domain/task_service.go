package domain

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
)

// MutationService is the single write path for tasks, messages and the
// board counters derived from them. Ordering per mutation is fixed:
// entity write, then counter adjustment, then event emission. A counter
// adjustment failure is logged and the entity-level event still goes
// out, since the entity write itself already succeeded; only the
// board-updated event is suppressed in that case.
type MutationService struct {
	store Store
	bus   Publisher
	log   *log.Logger
	clock Clock
}

// NewMutationService wires the service to its storage and event bus.
// The bus is constructor-injected so tests supply an isolated broker
// instead of process-wide state.
func NewMutationService(store Store, bus Publisher, logger *log.Logger) *MutationService {
	if store == nil {
		panic("domain.NewMutationService: store is nil")
	}
	if bus == nil {
		panic("domain.NewMutationService: bus is nil")
	}
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &MutationService{store: store, bus: bus, log: logger}
}

// WithClock overrides the service clock. Intended for tests.
func (s *MutationService) WithClock(c Clock) *MutationService {
	s.clock = c
	return s
}

// memberTeamForBoard loads the board and its owning team and verifies
// actor membership.
func (s *MutationService) memberTeamForBoard(ctx context.Context, boardID, actorID string) (*Board, *Team, error) {
	board, err := s.store.GetBoard(ctx, boardID)
	if err != nil {
		return nil, nil, fmt.Errorf("load board %s: %w", boardID, err)
	}
	if board == nil {
		return nil, nil, fmt.Errorf("board %s: %w", boardID, ErrNotFound)
	}
	team, err := s.store.GetTeam(ctx, board.TeamID)
	if err != nil {
		return nil, nil, fmt.Errorf("load team %s: %w", board.TeamID, err)
	}
	if team == nil || !team.IsMember(actorID) {
		return nil, nil, fmt.Errorf("user %s on board %s: %w", actorID, boardID, ErrForbidden)
	}
	return board, team, nil
}

// CreateTask validates and persists a new task on the board, adjusts
// the board counters and publishes a task-created event (plus a
// board-updated event when the counters were adjusted) to the board's
// room. Status defaults to todo.
func (s *MutationService) CreateTask(ctx context.Context, boardID string, draft TaskDraft, actorID, idempotencyKey string) (*Task, error) {
	if _, _, err := s.memberTeamForBoard(ctx, boardID, actorID); err != nil {
		return nil, err
	}
	if !validTitle(draft.Title) {
		return nil, fmt.Errorf("task title must not be empty: %w", ErrInvalidInput)
	}
	status := draft.Status
	if status == "" {
		status = StatusTodo
	}
	if !status.Valid() {
		return nil, fmt.Errorf("unknown status %q: %w", draft.Status, ErrInvalidInput)
	}
	if draft.Priority != "" && !draft.Priority.Valid() {
		return nil, fmt.Errorf("unknown priority %q: %w", draft.Priority, ErrInvalidInput)
	}

	now := s.clock.now()
	task := Task{
		Title:       draft.Title,
		Description: draft.Description,
		Status:      status,
		Priority:    draft.Priority,
		DueAt:       draft.DueAt,
		AssigneeID:  draft.AssigneeID,
		BoardID:     boardID,
		CreatedBy:   actorID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	id, err := s.store.InsertTask(ctx, task)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	task.ID = id

	completedDelta := 0
	if status == StatusDone {
		completedDelta = 1
	}
	board := s.adjustCounters(ctx, boardID, 1, completedDelta)

	s.publish(TaskCreated, BoardRoom(boardID), idempotencyKey, TaskCreatedData{Task: task, BoardID: boardID})
	if board != nil {
		s.publish(BoardUpdated, BoardRoom(boardID), idempotencyKey, BoardUpdatedData{Board: *board})
	}
	return &task, nil
}

// UpdateTask applies a partial update to the task. When the patch moves
// the task to or from done it adjusts the board's completed counter in
// the same logical operation and additionally emits a board-updated
// event; otherwise only a task-updated event is emitted.
func (s *MutationService) UpdateTask(ctx context.Context, taskID string, patch TaskPatch, actorID, idempotencyKey string) (*Task, error) {
	task, err := s.store.GetTask(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("load task %s: %w", taskID, err)
	}
	if task == nil {
		return nil, fmt.Errorf("task %s: %w", taskID, ErrNotFound)
	}
	if _, _, err := s.memberTeamForBoard(ctx, task.BoardID, actorID); err != nil {
		return nil, err
	}
	if patch.Empty() {
		return nil, fmt.Errorf("patch has no fields: %w", ErrInvalidInput)
	}
	if patch.Title != nil && !validTitle(*patch.Title) {
		return nil, fmt.Errorf("task title must not be empty: %w", ErrInvalidInput)
	}
	if patch.Status != nil && !patch.Status.Valid() {
		return nil, fmt.Errorf("unknown status %q: %w", *patch.Status, ErrInvalidInput)
	}
	if patch.Priority != nil && *patch.Priority != "" && !patch.Priority.Valid() {
		return nil, fmt.Errorf("unknown priority %q: %w", *patch.Priority, ErrInvalidInput)
	}

	completedDelta := 0
	if patch.Status != nil && *patch.Status != task.Status {
		if *patch.Status == StatusDone {
			completedDelta = 1
		} else if task.Status == StatusDone {
			completedDelta = -1
		}
	}

	patch.UpdatedBy = actorID
	patch.UpdatedAt = s.clock.now()
	updated, err := s.store.UpdateTask(ctx, taskID, patch)
	if err != nil {
		return nil, fmt.Errorf("update task %s: %w", taskID, err)
	}
	if updated == nil {
		return nil, fmt.Errorf("task %s: %w", taskID, ErrNotFound)
	}

	var board *Board
	if completedDelta != 0 {
		board = s.adjustCounters(ctx, task.BoardID, 0, completedDelta)
	}

	s.publish(TaskUpdated, BoardRoom(task.BoardID), idempotencyKey, TaskUpdatedData{Task: *updated, BoardID: task.BoardID})
	if board != nil {
		s.publish(BoardUpdated, BoardRoom(task.BoardID), idempotencyKey, BoardUpdatedData{Board: *board})
	}
	return updated, nil
}

// DeleteTask removes the task. Only the task's creator or a team admin
// may delete. The task-deleted event carries the task's last known
// snapshot and is followed by a board-updated event reflecting the
// decremented counters.
func (s *MutationService) DeleteTask(ctx context.Context, taskID string, actorID, idempotencyKey string) (*Task, error) {
	task, err := s.store.GetTask(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("load task %s: %w", taskID, err)
	}
	if task == nil {
		return nil, fmt.Errorf("task %s: %w", taskID, ErrNotFound)
	}
	_, team, err := s.memberTeamForBoard(ctx, task.BoardID, actorID)
	if err != nil {
		return nil, err
	}
	if !CanDeleteTask(*task, actorID, team.RoleOf(actorID)) {
		return nil, fmt.Errorf("user %s may not delete task %s: %w", actorID, taskID, ErrForbidden)
	}

	if err := s.store.DeleteTask(ctx, taskID); err != nil {
		return nil, fmt.Errorf("delete task %s: %w", taskID, err)
	}

	completedDelta := 0
	if task.Status == StatusDone {
		completedDelta = -1
	}
	board := s.adjustCounters(ctx, task.BoardID, -1, completedDelta)

	s.publish(TaskDeleted, BoardRoom(task.BoardID), idempotencyKey, TaskDeletedData{TaskID: taskID, BoardID: task.BoardID, Task: *task})
	if board != nil {
		s.publish(BoardUpdated, BoardRoom(task.BoardID), idempotencyKey, BoardUpdatedData{Board: *board})
	}
	return task, nil
}

// ListBoardTasks returns the board and its tasks for an authoritative
// fetch (initial load, or the forced refetch after a reconnect).
func (s *MutationService) ListBoardTasks(ctx context.Context, boardID, actorID string) (*Board, []Task, error) {
	board, _, err := s.memberTeamForBoard(ctx, boardID, actorID)
	if err != nil {
		return nil, nil, err
	}
	tasks, err := s.store.ListTasks(ctx, boardID)
	if err != nil {
		return nil, nil, fmt.Errorf("list tasks for board %s: %w", boardID, err)
	}
	return board, tasks, nil
}

// adjustCounters applies the deltas and returns the resulting board
// snapshot, or nil when the adjustment failed. Failure is logged, not
// propagated: the entity write already succeeded.
func (s *MutationService) adjustCounters(ctx context.Context, boardID string, totalDelta, completedDelta int) *Board {
	if totalDelta == 0 && completedDelta == 0 {
		return nil
	}
	board, err := s.store.AdjustBoardCounters(ctx, boardID, totalDelta, completedDelta)
	if err != nil {
		s.log.WithFields(log.Fields{
			"board":           boardID,
			"total_delta":     totalDelta,
			"completed_delta": completedDelta,
		}).Errorf("board counter adjustment failed: %v", err)
		return nil
	}
	return board
}

func (s *MutationService) publish(name, room, idempotencyKey string, data any) {
	ev, err := NewEvent(name, room, idempotencyKey, data)
	if err != nil {
		s.log.WithFields(log.Fields{"event": name, "room": room}).Errorf("encode event: %v", err)
		return
	}
	s.bus.Publish(room, ev)
}
