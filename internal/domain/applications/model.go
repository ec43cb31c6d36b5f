package applications

import (
	"time"

	"github.com/ratatoing/ratatoing-server/internal/domain/users"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

type Application struct {
	ID            int64      `json:"id"`
	UserID        int64      `json:"user_id"`
	Username      string     `json:"username,omitempty"` // joined in for listings
	Job           users.Job  `json:"job"`
	Justification string     `json:"justification"`
	Status        Status     `json:"status"`
	ReviewedBy    *int64     `json:"reviewed_by,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	DecidedAt     *time.Time `json:"decided_at,omitempty"`
}
