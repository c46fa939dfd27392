package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/namansharma28/CollabBoard-sub000/domain"
)

var memBase = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func TestMemoryTaskLifecycle(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	id, err := m.InsertTask(ctx, domain.Task{Title: "x", BoardID: "b1", Status: domain.StatusTodo, CreatedAt: memBase})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if id == "" {
		t.Fatal("expected generated id")
	}

	got, err := m.GetTask(ctx, id)
	if err != nil || got == nil || got.Title != "x" {
		t.Fatalf("get: %+v, %v", got, err)
	}

	title := "y"
	done := domain.StatusDone
	updated, err := m.UpdateTask(ctx, id, domain.TaskPatch{Title: &title, Status: &done, UpdatedBy: "alice", UpdatedAt: memBase.Add(time.Minute)})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Title != "y" || updated.Status != domain.StatusDone || updated.UpdatedBy != "alice" {
		t.Fatalf("unexpected update result: %+v", updated)
	}

	if missing, err := m.UpdateTask(ctx, "ghost", domain.TaskPatch{Title: &title}); err != nil || missing != nil {
		t.Fatalf("updating a missing task must yield nil, nil; got %+v, %v", missing, err)
	}

	if err := m.DeleteTask(ctx, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := m.DeleteTask(ctx, id); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("second delete must report not found, got %v", err)
	}
	if got, err := m.GetTask(ctx, id); err != nil || got != nil {
		t.Fatalf("deleted task must be gone, got %+v, %v", got, err)
	}
}

func TestMemoryListTasksSorted(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	if _, err := m.InsertTask(ctx, domain.Task{ID: "t2", Title: "second", BoardID: "b1", CreatedAt: memBase.Add(time.Minute)}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if _, err := m.InsertTask(ctx, domain.Task{ID: "t1", Title: "first", BoardID: "b1", CreatedAt: memBase}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if _, err := m.InsertTask(ctx, domain.Task{ID: "t3", Title: "other board", BoardID: "b2", CreatedAt: memBase}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	tasks, err := m.ListTasks(ctx, "b1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tasks) != 2 || tasks[0].ID != "t1" || tasks[1].ID != "t2" {
		t.Fatalf("expected [t1 t2], got %+v", tasks)
	}
}

func TestMemoryAdjustBoardCounters(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	boardID := m.SeedBoard(domain.Board{Title: "Sprint", TeamID: "team-1"})

	board, err := m.AdjustBoardCounters(ctx, boardID, 1, 1)
	if err != nil {
		t.Fatalf("adjust: %v", err)
	}
	if board.TotalTasks != 1 || board.CompletedTasks != 1 {
		t.Fatalf("expected 1/1, got %d/%d", board.TotalTasks, board.CompletedTasks)
	}
	board, err = m.AdjustBoardCounters(ctx, boardID, -1, -1)
	if err != nil {
		t.Fatalf("adjust back: %v", err)
	}
	if board.TotalTasks != 0 || board.CompletedTasks != 0 {
		t.Fatalf("expected 0/0, got %d/%d", board.TotalTasks, board.CompletedTasks)
	}
	if _, err := m.AdjustBoardCounters(ctx, "ghost", 1, 0); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestMemoryListMessagesLimit(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	for i, content := range []string{"one", "two", "three"} {
		_, err := m.InsertMessage(ctx, domain.Message{
			TeamID:    "team-1",
			Channel:   "general",
			Content:   content,
			CreatedAt: memBase.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("insert %q: %v", content, err)
		}
	}

	msgs, err := m.ListMessages(ctx, "team-1", "general", 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(msgs) != 2 || msgs[0].Content != "two" || msgs[1].Content != "three" {
		t.Fatalf("expected the two most recent ascending, got %+v", msgs)
	}

	all, err := m.ListMessages(ctx, "team-1", "general", 0)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected all three, got %d", len(all))
	}
	none, err := m.ListMessages(ctx, "team-1", "random", 0)
	if err != nil || len(none) != 0 {
		t.Fatalf("expected empty channel, got %+v, %v", none, err)
	}
}
