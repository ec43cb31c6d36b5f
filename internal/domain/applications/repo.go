package applications

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ratatoing/ratatoing-server/internal/domain/users"
)

var (
	ErrNotFound       = errors.New("applications: not found")
	ErrNotPending     = errors.New("applications: not pending")
	ErrAlreadyPending = errors.New("applications: user already has a pending application")
	ErrUnknownJob     = errors.New("applications: job not in the job set")
)

const appCols = `id, user_id, job, justification, status, reviewed_by, created_at, decided_at`

type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

// Create files a job application. One pending application per user; the
// partial unique index turns a duplicate into ErrAlreadyPending.
func (r *Repo) Create(ctx context.Context, userID int64, job users.Job, justification string) (*Application, error) {
	if !job.Valid() {
		return nil, ErrUnknownJob
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO job_applications (user_id, job, justification, status)
		VALUES ($1,$2,$3,'pending')
		RETURNING `+appCols, userID, job, justification)

	a, err := scanApp(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrAlreadyPending
		}
		return nil, err
	}
	return a, nil
}

func (r *Repo) GetByID(ctx context.Context, id int64) (*Application, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+appCols+` FROM job_applications WHERE id = $1`, id)
	a, err := scanApp(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return a, err
}

// Approve decides the application and grants the requested job to the
// applicant. Both writes share one transaction: either the application
// flips to approved AND the user gets the job, or neither happens.
func (r *Repo) Approve(ctx context.Context, appID, reviewerID int64) (*Application, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	row := tx.QueryRow(ctx, `
		UPDATE job_applications
		SET status = 'approved', reviewed_by = $2, decided_at = now()
		WHERE id = $1 AND status = 'pending'
		RETURNING `+appCols, appID, reviewerID)

	a, err := scanApp(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, r.classify(ctx, appID)
	}
	if err != nil {
		return nil, err
	}

	if _, err = tx.Exec(ctx, `UPDATE users SET job = $1 WHERE id = $2`, a.Job, a.UserID); err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, err
	}
	return a, nil
}

func (r *Repo) Reject(ctx context.Context, appID, reviewerID int64) (*Application, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE job_applications
		SET status = 'rejected', reviewed_by = $2, decided_at = now()
		WHERE id = $1 AND status = 'pending'
		RETURNING `+appCols, appID, reviewerID)

	a, err := scanApp(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, r.classify(ctx, appID)
	}
	return a, err
}

// classify resolves a failed guarded update into NotFound vs NotPending.
func (r *Repo) classify(ctx context.Context, appID int64) error {
	if _, err := r.GetByID(ctx, appID); err != nil {
		return err
	}
	return ErrNotPending
}

func (r *Repo) ListPending(ctx context.Context) ([]Application, error) {
	return r.list(ctx, `
		SELECT a.id, a.user_id, u.username, a.job, a.justification, a.status, a.reviewed_by, a.created_at, a.decided_at
		FROM job_applications a JOIN users u ON u.id = a.user_id
		WHERE a.status = 'pending'
		ORDER BY a.created_at`)
}

func (r *Repo) ListDecided(ctx context.Context, limit int) ([]Application, error) {
	return r.list(ctx, `
		SELECT a.id, a.user_id, u.username, a.job, a.justification, a.status, a.reviewed_by, a.created_at, a.decided_at
		FROM job_applications a JOIN users u ON u.id = a.user_id
		WHERE a.status <> 'pending'
		ORDER BY a.decided_at DESC
		LIMIT $1`, limit)
}

func (r *Repo) list(ctx context.Context, q string, args ...any) ([]Application, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Application
	for rows.Next() {
		var a Application
		if err := rows.Scan(&a.ID, &a.UserID, &a.Username, &a.Job, &a.Justification,
			&a.Status, &a.ReviewedBy, &a.CreatedAt, &a.DecidedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

type row interface{ Scan(dest ...any) error }

func scanApp(rw row) (*Application, error) {
	var a Application
	err := rw.Scan(&a.ID, &a.UserID, &a.Job, &a.Justification, &a.Status,
		&a.ReviewedBy, &a.CreatedAt, &a.DecidedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
