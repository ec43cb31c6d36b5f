package tasks

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ratatoing/ratatoing-server/internal/domain/users"
)

var (
	ErrNotFound    = errors.New("tasks: not found")
	ErrAlreadyDone = errors.New("tasks: already completed")
	ErrNotEligible = errors.New("tasks: worker not eligible")
)

const taskCols = `id, job, assignee_id, title, details, reward, recurring, original_task_id, created_by, completed_by, completed_at, created_at`

type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

func (r *Repo) Create(ctx context.Context, nt NewTask) (*Task, error) {
	if !nt.Job.Valid() {
		return nil, ErrNotEligible
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO tasks (job, assignee_id, title, details, reward, recurring, created_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING `+taskCols,
		nt.Job, nt.AssigneeID, nt.Title, nt.Details, nt.Reward, nt.Recurring, nt.CreatedBy)
	return scanTask(row)
}

func (r *Repo) GetByID(ctx context.Context, id int64) (*Task, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+taskCols+` FROM tasks WHERE id = $1`, id)
	t, err := scanTask(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return t, err
}

// ListOpen returns incomplete tasks, optionally narrowed to one job category.
func (r *Repo) ListOpen(ctx context.Context, job *users.Job) ([]Task, error) {
	q := `SELECT ` + taskCols + ` FROM tasks WHERE completed_at IS NULL`
	args := []any{}
	if job != nil {
		q += ` AND job = $1`
		args = append(args, *job)
	}
	q += ` ORDER BY created_at`

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

// Complete marks the task done by the worker holding the matching job.
// The guard allows the transition once; a recurring task respawns a fresh
// copy pointing back at the original template inside the same transaction.
func (r *Repo) Complete(ctx context.Context, taskID, workerID int64, job users.Job) (*Task, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	row := tx.QueryRow(ctx, `
		UPDATE tasks
		SET completed_by = $2, completed_at = now()
		WHERE id = $1 AND completed_at IS NULL
		  AND job = $3
		  AND (assignee_id IS NULL OR assignee_id = $2)
		RETURNING `+taskCols, taskID, workerID, job)

	t, err := scanTask(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, r.classify(ctx, taskID, workerID, job)
	}
	if err != nil {
		return nil, err
	}

	if t.Recurring {
		origin := t.ID
		if t.OriginalTaskID != nil {
			origin = *t.OriginalTaskID
		}
		if _, err = tx.Exec(ctx, `
			INSERT INTO tasks (job, assignee_id, title, details, reward, recurring, original_task_id, created_by)
			VALUES ($1,$2,$3,$4,$5,true,$6,$7)`,
			t.Job, t.AssigneeID, t.Title, t.Details, t.Reward, origin, t.CreatedBy); err != nil {
			return nil, err
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, err
	}
	return t, nil
}

func (r *Repo) classify(ctx context.Context, taskID, workerID int64, job users.Job) error {
	t, err := r.GetByID(ctx, taskID)
	if err != nil {
		return err
	}
	if t.CompletedAt != nil {
		return ErrAlreadyDone
	}
	if t.Job != job {
		return ErrNotEligible
	}
	if t.AssigneeID != nil && *t.AssigneeID != workerID {
		return ErrNotEligible
	}
	// Guard failed yet the row looks eligible: lost a race.
	return ErrAlreadyDone
}

type row interface{ Scan(dest ...any) error }

func scanTask(rw row) (*Task, error) {
	var t Task
	err := rw.Scan(&t.ID, &t.Job, &t.AssigneeID, &t.Title, &t.Details, &t.Reward,
		&t.Recurring, &t.OriginalTaskID, &t.CreatedBy, &t.CompletedBy, &t.CompletedAt, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
