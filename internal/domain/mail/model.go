package mail

import "time"

// Message is internal Ratatoing mail between two members.
type Message struct {
	ID          int64     `json:"id"`
	SenderID    int64     `json:"sender_id"`
	Sender      string    `json:"sender,omitempty"` // joined in for inbox listings
	RecipientID int64     `json:"recipient_id"`
	Subject     string    `json:"subject"`
	Body        string    `json:"body"`
	Read        bool      `json:"read"`
	CreatedAt   time.Time `json:"created_at"`
}
