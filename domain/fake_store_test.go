package domain

import (
	"context"
	"sort"
	"strconv"
)

type fakeStore struct {
	teams    map[string]Team
	boards   map[string]Board
	tasks    map[string]Task
	messages map[string]Message

	nextID      int
	countersErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		teams:    map[string]Team{},
		boards:   map[string]Board{},
		tasks:    map[string]Task{},
		messages: map[string]Message{},
	}
}

func (f *fakeStore) genID() string {
	f.nextID++
	return "id-" + strconv.Itoa(f.nextID)
}

func (f *fakeStore) GetTeam(ctx context.Context, teamID string) (*Team, error) {
	t, ok := f.teams[teamID]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (f *fakeStore) GetBoard(ctx context.Context, boardID string) (*Board, error) {
	b, ok := f.boards[boardID]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (f *fakeStore) GetTask(ctx context.Context, taskID string) (*Task, error) {
	t, ok := f.tasks[taskID]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (f *fakeStore) InsertTask(ctx context.Context, t Task) (string, error) {
	if t.ID == "" {
		t.ID = f.genID()
	}
	f.tasks[t.ID] = t
	return t.ID, nil
}

func (f *fakeStore) UpdateTask(ctx context.Context, taskID string, patch TaskPatch) (*Task, error) {
	t, ok := f.tasks[taskID]
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
	f.tasks[taskID] = t
	return &t, nil
}

func (f *fakeStore) DeleteTask(ctx context.Context, taskID string) error {
	if _, ok := f.tasks[taskID]; !ok {
		return ErrNotFound
	}
	delete(f.tasks, taskID)
	return nil
}

func (f *fakeStore) ListTasks(ctx context.Context, boardID string) ([]Task, error) {
	tasks := []Task{}
	for _, t := range f.tasks {
		if t.BoardID == boardID {
			tasks = append(tasks, t)
		}
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID < tasks[j].ID })
	return tasks, nil
}

func (f *fakeStore) AdjustBoardCounters(ctx context.Context, boardID string, totalDelta, completedDelta int) (*Board, error) {
	if f.countersErr != nil {
		return nil, f.countersErr
	}
	b, ok := f.boards[boardID]
	if !ok {
		return nil, ErrNotFound
	}
	b.TotalTasks += totalDelta
	b.CompletedTasks += completedDelta
	f.boards[boardID] = b
	return &b, nil
}

func (f *fakeStore) GetMessage(ctx context.Context, messageID string) (*Message, error) {
	m, ok := f.messages[messageID]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

func (f *fakeStore) InsertMessage(ctx context.Context, m Message) (string, error) {
	if m.ID == "" {
		m.ID = f.genID()
	}
	f.messages[m.ID] = m
	return m.ID, nil
}

func (f *fakeStore) ListMessages(ctx context.Context, teamID, channel string, limit int) ([]Message, error) {
	msgs := []Message{}
	for _, m := range f.messages {
		if m.TeamID == teamID && m.Channel == channel {
			msgs = append(msgs, m)
		}
	}
	sort.Slice(msgs, func(i, j int) bool { return msgs[i].ID < msgs[j].ID })
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	return msgs, nil
}

type recordingBus struct {
	events []Event
}

func (b *recordingBus) Publish(room string, ev Event) {
	b.events = append(b.events, ev)
}

func (b *recordingBus) names() []string {
	out := make([]string, len(b.events))
	for i, ev := range b.events {
		out[i] = ev.Name
	}
	return out
}
