package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"caseguard/internal/model"
)

type ResourceRepository struct {
	pool *pgxpool.Pool
}

func NewResourceRepository(pool *pgxpool.Pool) *ResourceRepository {
	return &ResourceRepository{pool: pool}
}

func (r *ResourceRepository) CreateCollection(ctx context.Context, name string, createdBy int64) (model.Collection, error) {
	var c model.Collection
	err := r.pool.QueryRow(ctx,
		`INSERT INTO collections (name, created_by, created_at) VALUES ($1, $2, $3)
		 RETURNING id, name, COALESCE(created_by, 0), created_at`,
		name, createdBy, time.Now().UTC()).
		Scan(&c.ID, &c.Name, &c.CreatedBy, &c.CreatedAt)
	if err != nil {
		return model.Collection{}, fmt.Errorf("create collection: %w", err)
	}
	return c, nil
}

func (r *ResourceRepository) FindCollection(ctx context.Context, id int64) (model.Collection, error) {
	var c model.Collection
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, COALESCE(created_by, 0), created_at FROM collections WHERE id = $1`, id).
		Scan(&c.ID, &c.Name, &c.CreatedBy, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Collection{}, model.ErrCollectionMissing
	}
	if err != nil {
		return model.Collection{}, fmt.Errorf("find collection: %w", err)
	}
	return c, nil
}

func scanItem(row pgx.Row) (model.Item, error) {
	var it model.Item
	err := row.Scan(&it.ID, &it.CollectionID, &it.Kind, &it.Title, &it.CreatedBy, &it.CreatedAt, &it.UpdatedAt)
	return it, err
}

const itemColumns = `id, collection_id, kind, title, COALESCE(created_by, 0), created_at, updated_at`

func (r *ResourceRepository) CreateItem(ctx context.Context, item model.Item) (model.Item, error) {
	now := time.Now().UTC()
	created, err := scanItem(r.pool.QueryRow(ctx,
		`INSERT INTO items (collection_id, kind, title, created_by, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $5)
		 RETURNING `+itemColumns,
		item.CollectionID, item.Kind, item.Title, item.CreatedBy, now))

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23503" {
		return model.Item{}, model.ErrCollectionMissing
	}
	if err != nil {
		return model.Item{}, fmt.Errorf("create item: %w", err)
	}
	return created, nil
}

func (r *ResourceRepository) FindItem(ctx context.Context, id int64) (model.Item, error) {
	it, err := scanItem(r.pool.QueryRow(ctx, `SELECT `+itemColumns+` FROM items WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Item{}, model.ErrItemNotFound
	}
	if err != nil {
		return model.Item{}, fmt.Errorf("find item: %w", err)
	}
	return it, nil
}

func (r *ResourceRepository) UpdateItemTitle(ctx context.Context, id int64, title string) (model.Item, error) {
	it, err := scanItem(r.pool.QueryRow(ctx,
		`UPDATE items SET title = $2, updated_at = $3 WHERE id = $1 RETURNING `+itemColumns,
		id, title, time.Now().UTC()))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Item{}, model.ErrItemNotFound
	}
	if err != nil {
		return model.Item{}, fmt.Errorf("update item: %w", err)
	}
	return it, nil
}

func (r *ResourceRepository) DeleteItem(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrItemNotFound
	}
	return nil
}
