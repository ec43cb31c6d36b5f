package ledger

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrInsufficientFunds = errors.New("ledger: insufficient pocket sniffles")
	ErrBadAmount         = errors.New("ledger: amount must be positive")
	ErrNoAccount         = errors.New("ledger: account not found")
)

type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

// IssuePayout credits the worker and records both the payout and the
// ledger entry in one transaction.
func (r *Repo) IssuePayout(ctx context.Context, np NewPayout) (*Payout, error) {
	if np.Amount <= 0 {
		return nil, ErrBadAmount
	}
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
		UPDATE users SET pocket_sniffles = pocket_sniffles + $2 WHERE id = $1`,
		np.UserID, np.Amount)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNoAccount
	}

	var p Payout
	err = tx.QueryRow(ctx, `
		INSERT INTO payouts (job, task_id, user_id, amount, issued_by, note)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING id, job, task_id, user_id, amount, issued_by, note, created_at`,
		np.Job, np.TaskID, np.UserID, np.Amount, np.IssuedBy, np.Note).
		Scan(&p.ID, &p.Job, &p.TaskID, &p.UserID, &p.Amount, &p.IssuedBy, &p.Note, &p.CreatedAt)
	if err != nil {
		return nil, err
	}

	if _, err = tx.Exec(ctx, `
		INSERT INTO transactions (user_id, counterparty_id, amount, kind, note)
		VALUES ($1,$2,$3,'payout',$4)`,
		np.UserID, np.IssuedBy, np.Amount, np.Note); err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &p, nil
}

// Transfer moves sniffles between two accounts. The conditional debit is
// the overdraft guard: zero rows affected means the sender cannot cover it.
func (r *Repo) Transfer(ctx context.Context, fromID, toID, amount int64, note string) error {
	if amount <= 0 {
		return ErrBadAmount
	}
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
		UPDATE users SET pocket_sniffles = pocket_sniffles - $2
		WHERE id = $1 AND pocket_sniffles >= $2`, fromID, amount)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrInsufficientFunds
	}

	// The credit is guarded too: a vanished recipient must not become a
	// foreign key abort further down.
	tag, err = tx.Exec(ctx, `
		UPDATE users SET pocket_sniffles = pocket_sniffles + $2 WHERE id = $1`,
		toID, amount)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNoAccount
	}

	if _, err = tx.Exec(ctx, `
		INSERT INTO transactions (user_id, counterparty_id, amount, kind, note)
		VALUES ($1,$2,$3,'transfer',$5), ($2,$1,$4,'transfer',$5)`,
		fromID, toID, -amount, amount, note); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *Repo) ListByUser(ctx context.Context, userID int64, limit int) ([]Entry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, counterparty_id, amount, kind, note, created_at
		FROM transactions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

// ListAll feeds the admin export; newest first.
func (r *Repo) ListAll(ctx context.Context) ([]Entry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, counterparty_id, amount, kind, note, created_at
		FROM transactions
		ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

func (r *Repo) ListPayouts(ctx context.Context, limit int) ([]Payout, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, job, task_id, user_id, amount, issued_by, note, created_at
		FROM payouts
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Payout
	for rows.Next() {
		var p Payout
		if err := rows.Scan(&p.ID, &p.Job, &p.TaskID, &p.UserID, &p.Amount,
			&p.IssuedBy, &p.Note, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func collect(rows pgx.Rows) ([]Entry, error) {
	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.UserID, &e.CounterpartyID, &e.Amount, &e.Kind, &e.Note, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
