package shop

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ratatoing/ratatoing-server/internal/domain/ledger"
)

var (
	ErrNotFound   = errors.New("shop: item not found")
	ErrOutOfStock = errors.New("shop: out of stock")
	ErrBadPrice   = errors.New("shop: price and stock must be positive")
)

const itemCols = `id, name, description, price, stock, active, created_by, created_at`

type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

func (r *Repo) CreateItem(ctx context.Context, ni NewItem) (*Item, error) {
	if ni.Price <= 0 || ni.Stock <= 0 {
		return nil, ErrBadPrice
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO shop_items (name, description, price, stock, active, created_by)
		VALUES ($1,$2,$3,$4,true,$5)
		RETURNING `+itemCols, ni.Name, ni.Description, ni.Price, ni.Stock, ni.CreatedBy)
	return scanItem(row)
}

func (r *Repo) List(ctx context.Context, activeOnly bool) ([]Item, error) {
	q := `SELECT ` + itemCols + ` FROM shop_items`
	if activeOnly {
		q += ` WHERE active`
	}
	q += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *it)
	}
	return out, rows.Err()
}

// Items are retired, never deleted; past purchases keep their reference.
func (r *Repo) Deactivate(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `UPDATE shop_items SET active = false WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Purchase takes one unit of stock, debits the buyer and writes the
// ledger entry — all inside one transaction. Two guards: the stock
// decrement and the overdraft check on the buyer's balance.
func (r *Repo) Purchase(ctx context.Context, buyerID, itemID int64) (*Item, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	row := tx.QueryRow(ctx, `
		UPDATE shop_items SET stock = stock - 1
		WHERE id = $1 AND active AND stock > 0
		RETURNING `+itemCols, itemID)

	it, err := scanItem(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, r.classify(ctx, itemID)
	}
	if err != nil {
		return nil, err
	}

	tag, err := tx.Exec(ctx, `
		UPDATE users SET pocket_sniffles = pocket_sniffles - $2
		WHERE id = $1 AND pocket_sniffles >= $2`, buyerID, it.Price)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, ledger.ErrInsufficientFunds
	}

	if _, err = tx.Exec(ctx, `
		INSERT INTO transactions (user_id, amount, kind, note)
		VALUES ($1,$2,'purchase',$3)`, buyerID, -it.Price, it.Name); err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, err
	}
	return it, nil
}

func (r *Repo) classify(ctx context.Context, itemID int64) error {
	var active bool
	var stock int
	err := r.pool.QueryRow(ctx, `SELECT active, stock FROM shop_items WHERE id = $1`, itemID).
		Scan(&active, &stock)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if !active {
		return ErrNotFound
	}
	return ErrOutOfStock
}

type row interface{ Scan(dest ...any) error }

func scanItem(rw row) (*Item, error) {
	var it Item
	err := rw.Scan(&it.ID, &it.Name, &it.Description, &it.Price, &it.Stock,
		&it.Active, &it.CreatedBy, &it.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &it, nil
}
