package tasks

import (
	"time"

	"github.com/ratatoing/ratatoing-server/internal/domain/users"
)

type Task struct {
	ID         int64     `json:"id"`
	Job        users.Job `json:"job"`
	AssigneeID *int64    `json:"assignee_id,omitempty"` // nil means any worker holding the job
	Title      string    `json:"title"`
	Details    string    `json:"details"`
	Reward     int64     `json:"reward"`
	Recurring  bool      `json:"recurring"`
	// OriginalTaskID points at the template for respawned recurring tasks.
	OriginalTaskID *int64     `json:"original_task_id,omitempty"`
	CreatedBy      int64      `json:"created_by"`
	CompletedBy    *int64     `json:"completed_by,omitempty"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

type NewTask struct {
	Job        users.Job
	AssigneeID *int64
	Title      string
	Details    string
	Reward     int64
	Recurring  bool
	CreatedBy  int64
}
