package ledger

import (
	"time"

	"github.com/ratatoing/ratatoing-server/internal/domain/users"
)

type Kind string

const (
	KindPayout   Kind = "payout"
	KindPurchase Kind = "purchase"
	KindTransfer Kind = "transfer"
)

// Entry is one signed movement of pocket sniffles on a user's account.
type Entry struct {
	ID             int64     `json:"id"`
	UserID         int64     `json:"user_id"`
	CounterpartyID *int64    `json:"counterparty_id,omitempty"`
	Amount         int64     `json:"amount"` // negative for debits
	Kind           Kind      `json:"kind"`
	Note           string    `json:"note"`
	CreatedAt      time.Time `json:"created_at"`
}

type Payout struct {
	ID        int64     `json:"id"`
	Job       users.Job `json:"job"`
	TaskID    *int64    `json:"task_id,omitempty"`
	UserID    int64     `json:"user_id"`
	Amount    int64     `json:"amount"`
	IssuedBy  int64     `json:"issued_by"`
	Note      string    `json:"note"`
	CreatedAt time.Time `json:"created_at"`
}

type NewPayout struct {
	Job      users.Job
	TaskID   *int64
	UserID   int64
	Amount   int64
	IssuedBy int64
	Note     string
}
