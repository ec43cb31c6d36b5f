package users

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound   = errors.New("users: not found")
	ErrNotPending = errors.New("users: not pending")
	ErrExists     = errors.New("users: already exists")
)

const userCols = `id, username, email, squeak, password_hash, rank, status, job, approved_by, pocket_sniffles, created_at, decided_at`

type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

type NewUser struct {
	Username     string
	Email        string
	Squeak       string
	PasswordHash []byte
}

// Create inserts a self-service signup. New accounts always start as a
// pending Nibbler and stay invisible to the community until approved.
func (r *Repo) Create(ctx context.Context, nu NewUser) (*User, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (username, email, squeak, password_hash, rank, status)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING `+userCols, nu.Username, nu.Email, nu.Squeak, nu.PasswordHash, RankNibbler, StatusPending)

	u, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrExists
		}
		return nil, err
	}
	return u, nil
}

// EnsureFounder seeds the first administrator on an empty community.
// Registration only produces pending Nibblers and approval requires a
// Banson, so a fresh deployment needs this to break the circle. The
// insert is a no-op once any Banson exists; a nil user with a nil error
// means nothing was created.
func (r *Repo) EnsureFounder(ctx context.Context, nu NewUser) (*User, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (username, email, squeak, password_hash, rank, status, decided_at)
		SELECT $1, $2, $3, $4, $5, $6, now()
		WHERE NOT EXISTS (SELECT 1 FROM users WHERE rank = $5)
		RETURNING `+userCols, nu.Username, nu.Email, nu.Squeak, nu.PasswordHash, RankBanson, StatusActive)

	u, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrExists
		}
		return nil, err
	}
	return u, nil
}

func (r *Repo) GetByID(ctx context.Context, id int64) (*User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE id = $1`, id)
	return scanNotFound(scanUser(row))
}

func (r *Repo) GetByUsername(ctx context.Context, username string) (*User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE username = $1`, username)
	return scanNotFound(scanUser(row))
}

// Approve moves a pending user to active and records the reviewer.
// The WHERE guard makes the transition safe under concurrent reviewers:
// whoever loses the race gets ErrNotPending.
func (r *Repo) Approve(ctx context.Context, userID, reviewerID int64) (*User, error) {
	return r.decide(ctx, userID, reviewerID, StatusActive)
}

// Ban moves a pending user to banned. The reviewer is still recorded in
// approved_by so the decision stays attributable.
func (r *Repo) Ban(ctx context.Context, userID, reviewerID int64) (*User, error) {
	return r.decide(ctx, userID, reviewerID, StatusBanned)
}

func (r *Repo) decide(ctx context.Context, userID, reviewerID int64, to Status) (*User, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE users
		SET status = $3, approved_by = $2, decided_at = now()
		WHERE id = $1 AND status = 'pending'
		RETURNING `+userCols, userID, reviewerID, to)

	u, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		// Either the row does not exist or somebody decided first.
		if _, gerr := r.GetByID(ctx, userID); gerr != nil {
			return nil, gerr
		}
		return nil, ErrNotPending
	}
	return u, err
}

func (r *Repo) ListPending(ctx context.Context) ([]User, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+userCols+` FROM users
		WHERE status = 'pending'
		ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

func (r *Repo) ListDecided(ctx context.Context, limit int) ([]User, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+userCols+` FROM users
		WHERE status <> 'pending'
		ORDER BY decided_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

type row interface{ Scan(dest ...any) error }

func scanUser(rw row) (*User, error) {
	var u User
	err := rw.Scan(&u.ID, &u.Username, &u.Email, &u.Squeak, &u.PasswordHash,
		&u.Rank, &u.Status, &u.Job, &u.ApprovedBy, &u.PocketSniffles, &u.CreatedAt, &u.DecidedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func scanNotFound(u *User, err error) (*User, error) {
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return u, err
}

func collect(rows pgx.Rows) ([]User, error) {
	var out []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}
