package mail

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("mail: message not found")

type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

func (r *Repo) Send(ctx context.Context, senderID, recipientID int64, subject, body string) (*Message, error) {
	var m Message
	err := r.pool.QueryRow(ctx, `
		INSERT INTO emails (sender_id, recipient_id, subject, body)
		VALUES ($1,$2,$3,$4)
		RETURNING id, sender_id, recipient_id, subject, body, read, created_at`,
		senderID, recipientID, subject, body).
		Scan(&m.ID, &m.SenderID, &m.RecipientID, &m.Subject, &m.Body, &m.Read, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *Repo) Inbox(ctx context.Context, userID int64) ([]Message, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT m.id, m.sender_id, u.username, m.recipient_id, m.subject, m.body, m.read, m.created_at
		FROM emails m JOIN users u ON u.id = m.sender_id
		WHERE m.recipient_id = $1
		ORDER BY m.created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.SenderID, &m.Sender, &m.RecipientID,
			&m.Subject, &m.Body, &m.Read, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// MarkRead only touches the recipient's own mail.
func (r *Repo) MarkRead(ctx context.Context, id, userID int64) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE emails SET read = true WHERE id = $1 AND recipient_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
