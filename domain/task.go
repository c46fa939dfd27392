package domain

import (
	"strings"
	"time"
)

// Status is the Kanban column a task currently occupies.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in-progress"
	StatusDone       Status = "done"
)

// Valid reports whether s is one of the three board columns.
func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// Priority is an optional task urgency label.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid reports whether p is a known priority. The empty value means
// the task carries no priority and is accepted everywhere a Priority
// field is optional.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Task is a single board item. A task belongs to exactly one board for
// its entire lifetime; BoardID never changes after creation.
type Task struct {
	ID          string     `bson:"_id,omitempty" json:"id"`
	Title       string     `bson:"title" json:"title"`
	Description string     `bson:"description,omitempty" json:"description,omitempty"`
	Status      Status     `bson:"status" json:"status"`
	Priority    Priority   `bson:"priority,omitempty" json:"priority,omitempty"`
	DueAt       *time.Time `bson:"dueAt,omitempty" json:"dueAt,omitempty"`
	AssigneeID  string     `bson:"assigneeId,omitempty" json:"assigneeId,omitempty"`
	BoardID     string     `bson:"boardId" json:"boardId"`
	StatusNote  string     `bson:"statusNote,omitempty" json:"statusNote,omitempty"`
	CreatedBy   string     `bson:"createdBy" json:"createdBy"`
	UpdatedBy   string     `bson:"updatedBy,omitempty" json:"updatedBy,omitempty"`
	CreatedAt   time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time  `bson:"updatedAt" json:"updatedAt"`
}

// TaskDraft carries the caller-supplied fields of a new task.
type TaskDraft struct {
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      Status     `json:"status,omitempty"`
	Priority    Priority   `json:"priority,omitempty"`
	DueAt       *time.Time `json:"dueAt,omitempty"`
	AssigneeID  string     `json:"assigneeId,omitempty"`
}

// TaskPatch is a partial task update. Nil fields are left untouched.
// UpdatedBy and UpdatedAt are stamped by the mutation service, never
// taken from the wire.
type TaskPatch struct {
	Title       *string     `json:"title,omitempty"`
	Description *string     `json:"description,omitempty"`
	Status      *Status     `json:"status,omitempty"`
	Priority    *Priority   `json:"priority,omitempty"`
	DueAt       *time.Time  `json:"dueAt,omitempty"`
	AssigneeID  *string     `json:"assigneeId,omitempty"`
	StatusNote  *string     `json:"statusNote,omitempty"`
	UpdatedBy   string      `json:"-"`
	UpdatedAt   time.Time   `json:"-"`
}

// Empty reports whether the patch carries no caller-visible change.
func (p TaskPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Status == nil &&
		p.Priority == nil && p.DueAt == nil && p.AssigneeID == nil && p.StatusNote == nil
}

// CanDeleteTask reports whether actor may delete the task: its creator,
// or any team admin.
func CanDeleteTask(t Task, actorID string, role Role) bool {
	return t.CreatedBy == actorID || role == RoleAdmin
}

func validTitle(title string) bool {
	return strings.TrimSpace(title) != ""
}
