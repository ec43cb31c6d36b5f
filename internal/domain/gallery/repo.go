package gallery

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("gallery: item not found")

type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

func (r *Repo) Add(ctx context.Context, uploaderID int64, title, mime, fileName string, size int64) (*Item, error) {
	var it Item
	err := r.pool.QueryRow(ctx, `
		INSERT INTO media (uploader_id, title, mime, file_name, size)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id, uploader_id, title, mime, file_name, size, hidden, created_at`,
		uploaderID, title, mime, fileName, size).
		Scan(&it.ID, &it.UploaderID, &it.Title, &it.MIME, &it.FileName, &it.Size, &it.Hidden, &it.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &it, nil
}

func (r *Repo) List(ctx context.Context, includeHidden bool) ([]Item, error) {
	q := `
		SELECT m.id, m.uploader_id, u.username, m.title, m.mime, m.file_name, m.size, m.hidden, m.created_at
		FROM media m JOIN users u ON u.id = m.uploader_id`
	if !includeHidden {
		q += ` WHERE NOT m.hidden`
	}
	q += ` ORDER BY m.created_at DESC`

	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.UploaderID, &it.Uploader, &it.Title, &it.MIME,
			&it.FileName, &it.Size, &it.Hidden, &it.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// Hide takes an item out of the public gallery; the row stays for audit.
func (r *Repo) Hide(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `UPDATE media SET hidden = true WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
