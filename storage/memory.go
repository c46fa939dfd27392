package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/namansharma28/CollabBoard-sub000/domain"
)

// Memory is an in-memory document store implementing domain.Store. It
// backs tests and local development; counter adjustments are atomic
// under the store mutex.
type Memory struct {
	mu       sync.Mutex
	teams    map[string]domain.Team
	boards   map[string]domain.Board
	tasks    map[string]domain.Task
	messages map[string]domain.Message
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		teams:    make(map[string]domain.Team),
		boards:   make(map[string]domain.Board),
		tasks:    make(map[string]domain.Task),
		messages: make(map[string]domain.Message),
	}
}

// SeedTeam inserts a team document, generating an id when absent.
func (m *Memory) SeedTeam(t domain.Team) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	m.teams[t.ID] = t
	return t.ID
}

// SeedBoard inserts a board document, generating an id when absent.
func (m *Memory) SeedBoard(b domain.Board) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	m.boards[b.ID] = b
	return b.ID
}

func (m *Memory) GetTeam(ctx context.Context, teamID string) (*domain.Team, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.teams[teamID]
	if !ok {
		return nil, nil
	}
	cp := t
	cp.Members = append([]domain.Member(nil), t.Members...)
	return &cp, nil
}

func (m *Memory) GetBoard(ctx context.Context, boardID string) (*domain.Board, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.boards[boardID]
	if !ok {
		return nil, nil
	}
	cp := b
	return &cp, nil
}

func (m *Memory) GetTask(ctx context.Context, taskID string) (*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[taskID]
	if !ok {
		return nil, nil
	}
	cp := t
	return &cp, nil
}

func (m *Memory) InsertTask(ctx context.Context, t domain.Task) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	m.tasks[t.ID] = t
	return t.ID, nil
}

func (m *Memory) UpdateTask(ctx context.Context, taskID string, patch domain.TaskPatch) (*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[taskID]
	if !ok {
		return nil, nil
	}
	if patch.Title != nil {
		t.Title = *patch.Title
	}
	if patch.Description != nil {
		t.Description = *patch.Description
	}
	if patch.Status != nil {
		t.Status = *patch.Status
	}
	if patch.Priority != nil {
		t.Priority = *patch.Priority
	}
	if patch.DueAt != nil {
		due := *patch.DueAt
		t.DueAt = &due
	}
	if patch.AssigneeID != nil {
		t.AssigneeID = *patch.AssigneeID
	}
	if patch.StatusNote != nil {
		t.StatusNote = *patch.StatusNote
	}
	t.UpdatedBy = patch.UpdatedBy
	t.UpdatedAt = patch.UpdatedAt
	m.tasks[taskID] = t
	cp := t
	return &cp, nil
}

func (m *Memory) DeleteTask(ctx context.Context, taskID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tasks[taskID]; !ok {
		return domain.ErrNotFound
	}
	delete(m.tasks, taskID)
	return nil
}

func (m *Memory) ListTasks(ctx context.Context, boardID string) ([]domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tasks := []domain.Task{}
	for _, t := range m.tasks {
		if t.BoardID == boardID {
			tasks = append(tasks, t)
		}
	}
	sort.Slice(tasks, func(i, j int) bool {
		if tasks[i].CreatedAt.Equal(tasks[j].CreatedAt) {
			return tasks[i].ID < tasks[j].ID
		}
		return tasks[i].CreatedAt.Before(tasks[j].CreatedAt)
	})
	return tasks, nil
}

func (m *Memory) AdjustBoardCounters(ctx context.Context, boardID string, totalDelta, completedDelta int) (*domain.Board, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.boards[boardID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	b.TotalTasks += totalDelta
	b.CompletedTasks += completedDelta
	m.boards[boardID] = b
	cp := b
	return &cp, nil
}

func (m *Memory) GetMessage(ctx context.Context, messageID string) (*domain.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	msg, ok := m.messages[messageID]
	if !ok {
		return nil, nil
	}
	cp := msg
	return &cp, nil
}

func (m *Memory) InsertMessage(ctx context.Context, msg domain.Message) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	m.messages[msg.ID] = msg
	return msg.ID, nil
}

func (m *Memory) ListMessages(ctx context.Context, teamID, channel string, limit int) ([]domain.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	msgs := []domain.Message{}
	for _, msg := range m.messages {
		if msg.TeamID == teamID && msg.Channel == channel {
			msgs = append(msgs, msg)
		}
	}
	sort.Slice(msgs, func(i, j int) bool {
		if msgs[i].CreatedAt.Equal(msgs[j].CreatedAt) {
			return msgs[i].ID < msgs[j].ID
		}
		return msgs[i].CreatedAt.Before(msgs[j].CreatedAt)
	})
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	return msgs, nil
}
