package domain

import "time"

// Board is a Kanban board owned by a team. TotalTasks and
// CompletedTasks are denormalized counters maintained exclusively by
// the mutation service inside the task-write path; no other code may
// touch them.
type Board struct {
	ID             string    `bson:"_id,omitempty" json:"id"`
	Title          string    `bson:"title" json:"title"`
	Description    string    `bson:"description,omitempty" json:"description,omitempty"`
	Category       string    `bson:"category,omitempty" json:"category,omitempty"`
	Starred        bool      `bson:"starred,omitempty" json:"starred,omitempty"`
	TotalTasks     int       `bson:"totalTasks" json:"totalTasks"`
	CompletedTasks int       `bson:"completedTasks" json:"completedTasks"`
	TeamID         string    `bson:"teamId" json:"teamId"`
	CreatedBy      string    `bson:"createdBy" json:"createdBy"`
	CreatedAt      time.Time `bson:"createdAt" json:"createdAt"`
}
