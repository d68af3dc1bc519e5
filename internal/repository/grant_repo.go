package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"caseguard/internal/model"
)

type GrantRepository struct {
	pool *pgxpool.Pool
}

func NewGrantRepository(pool *pgxpool.Pool) *GrantRepository {
	return &GrantRepository{pool: pool}
}

func scanCollectionGrant(row pgx.Row) (model.CollectionGrant, error) {
	var g model.CollectionGrant
	err := row.Scan(&g.UserID, &g.CollectionID, &g.CanView, &g.CanCreate, &g.CanEdit, &g.UpdatedAt)
	return g, err
}

func scanItemGrant(row pgx.Row) (model.ItemGrant, error) {
	var g model.ItemGrant
	err := row.Scan(&g.UserID, &g.ItemID, &g.CollectionID, &g.CanView, &g.CanCreate, &g.CanEdit, &g.UpdatedAt)
	return g, err
}

// FindCollectionGrant returns nil without error when no row exists.
func (r *GrantRepository) FindCollectionGrant(ctx context.Context, userID int64, collectionID int64) (*model.CollectionGrant, error) {
	g, err := scanCollectionGrant(r.pool.QueryRow(ctx,
		`SELECT user_id, collection_id, can_view, can_create, can_edit, updated_at
		 FROM collection_grants WHERE user_id = $1 AND collection_id = $2`, userID, collectionID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find collection grant: %w", err)
	}
	return &g, nil
}

// FindItemGrant returns nil without error when no row exists.
func (r *GrantRepository) FindItemGrant(ctx context.Context, userID int64, itemID int64) (*model.ItemGrant, error) {
	g, err := scanItemGrant(r.pool.QueryRow(ctx,
		`SELECT user_id, item_id, collection_id, can_view, can_create, can_edit, updated_at
		 FROM item_grants WHERE user_id = $1 AND item_id = $2`, userID, itemID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find item grant: %w", err)
	}
	return &g, nil
}

// UpsertCollectionGrant writes the grant and returns the previous row, if any, for auditing.
func (r *GrantRepository) UpsertCollectionGrant(ctx context.Context, grant model.CollectionGrant) (*model.CollectionGrant, model.CollectionGrant, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, model.CollectionGrant{}, fmt.Errorf("begin upsert collection grant: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var before *model.CollectionGrant
	prev, err := scanCollectionGrant(tx.QueryRow(ctx,
		`SELECT user_id, collection_id, can_view, can_create, can_edit, updated_at
		 FROM collection_grants WHERE user_id = $1 AND collection_id = $2 FOR UPDATE`,
		grant.UserID, grant.CollectionID))
	switch {
	case err == nil:
		before = &prev
	case !errors.Is(err, pgx.ErrNoRows):
		return nil, model.CollectionGrant{}, fmt.Errorf("load collection grant: %w", err)
	}

	after, err := scanCollectionGrant(tx.QueryRow(ctx,
		`INSERT INTO collection_grants (user_id, collection_id, can_view, can_create, can_edit, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (user_id, collection_id) DO UPDATE
		 SET can_view = EXCLUDED.can_view, can_create = EXCLUDED.can_create,
		     can_edit = EXCLUDED.can_edit, updated_at = EXCLUDED.updated_at
		 RETURNING user_id, collection_id, can_view, can_create, can_edit, updated_at`,
		grant.UserID, grant.CollectionID, grant.CanView, grant.CanCreate, grant.CanEdit, time.Now().UTC()))
	if err != nil {
		return nil, model.CollectionGrant{}, fmt.Errorf("upsert collection grant: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, model.CollectionGrant{}, fmt.Errorf("commit collection grant: %w", err)
	}
	return before, after, nil
}

// UpsertItemGrant writes the grant and returns the previous row, if any, for auditing.
func (r *GrantRepository) UpsertItemGrant(ctx context.Context, grant model.ItemGrant) (*model.ItemGrant, model.ItemGrant, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, model.ItemGrant{}, fmt.Errorf("begin upsert item grant: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var before *model.ItemGrant
	prev, err := scanItemGrant(tx.QueryRow(ctx,
		`SELECT user_id, item_id, collection_id, can_view, can_create, can_edit, updated_at
		 FROM item_grants WHERE user_id = $1 AND item_id = $2 FOR UPDATE`,
		grant.UserID, grant.ItemID))
	switch {
	case err == nil:
		before = &prev
	case !errors.Is(err, pgx.ErrNoRows):
		return nil, model.ItemGrant{}, fmt.Errorf("load item grant: %w", err)
	}

	after, err := scanItemGrant(tx.QueryRow(ctx,
		`INSERT INTO item_grants (user_id, item_id, collection_id, can_view, can_create, can_edit, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (user_id, item_id) DO UPDATE
		 SET collection_id = EXCLUDED.collection_id, can_view = EXCLUDED.can_view,
		     can_create = EXCLUDED.can_create, can_edit = EXCLUDED.can_edit, updated_at = EXCLUDED.updated_at
		 RETURNING user_id, item_id, collection_id, can_view, can_create, can_edit, updated_at`,
		grant.UserID, grant.ItemID, grant.CollectionID, grant.CanView, grant.CanCreate, grant.CanEdit, time.Now().UTC()))
	if err != nil {
		return nil, model.ItemGrant{}, fmt.Errorf("upsert item grant: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, model.ItemGrant{}, fmt.Errorf("commit item grant: %w", err)
	}
	return before, after, nil
}

// DeleteCollectionGrant removes the row and returns it, or ErrGrantNotFound.
func (r *GrantRepository) DeleteCollectionGrant(ctx context.Context, userID int64, collectionID int64) (model.CollectionGrant, error) {
	g, err := scanCollectionGrant(r.pool.QueryRow(ctx,
		`DELETE FROM collection_grants WHERE user_id = $1 AND collection_id = $2
		 RETURNING user_id, collection_id, can_view, can_create, can_edit, updated_at`, userID, collectionID))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.CollectionGrant{}, model.ErrGrantNotFound
	}
	if err != nil {
		return model.CollectionGrant{}, fmt.Errorf("delete collection grant: %w", err)
	}
	return g, nil
}

// DeleteItemGrant removes the row and returns it, or ErrGrantNotFound.
func (r *GrantRepository) DeleteItemGrant(ctx context.Context, userID int64, itemID int64) (model.ItemGrant, error) {
	g, err := scanItemGrant(r.pool.QueryRow(ctx,
		`DELETE FROM item_grants WHERE user_id = $1 AND item_id = $2
		 RETURNING user_id, item_id, collection_id, can_view, can_create, can_edit, updated_at`, userID, itemID))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.ItemGrant{}, model.ErrGrantNotFound
	}
	if err != nil {
		return model.ItemGrant{}, fmt.Errorf("delete item grant: %w", err)
	}
	return g, nil
}

func (r *GrantRepository) ListForUser(ctx context.Context, userID int64) (model.GrantSet, error) {
	set := model.GrantSet{
		Collections: make([]model.CollectionGrant, 0),
		Items:       make([]model.ItemGrant, 0),
	}

	rows, err := r.pool.Query(ctx,
		`SELECT user_id, collection_id, can_view, can_create, can_edit, updated_at
		 FROM collection_grants WHERE user_id = $1 ORDER BY collection_id`, userID)
	if err != nil {
		return model.GrantSet{}, fmt.Errorf("list collection grants: %w", err)
	}
	for rows.Next() {
		g, err := scanCollectionGrant(rows)
		if err != nil {
			rows.Close()
			return model.GrantSet{}, fmt.Errorf("scan collection grant: %w", err)
		}
		set.Collections = append(set.Collections, g)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return model.GrantSet{}, fmt.Errorf("iterate collection grants: %w", err)
	}

	rows, err = r.pool.Query(ctx,
		`SELECT user_id, item_id, collection_id, can_view, can_create, can_edit, updated_at
		 FROM item_grants WHERE user_id = $1 ORDER BY item_id`, userID)
	if err != nil {
		return model.GrantSet{}, fmt.Errorf("list item grants: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		g, err := scanItemGrant(rows)
		if err != nil {
			return model.GrantSet{}, fmt.Errorf("scan item grant: %w", err)
		}
		set.Items = append(set.Items, g)
	}
	return set, rows.Err()
}
