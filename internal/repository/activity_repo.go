package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"caseguard/internal/model"
)

type ActivityRepository struct {
	pool *pgxpool.Pool
}

func NewActivityRepository(pool *pgxpool.Pool) *ActivityRepository {
	return &ActivityRepository{pool: pool}
}

func (r *ActivityRepository) Insert(ctx context.Context, entry model.ActivityEntry) error {
	var metadata []byte
	if len(entry.Metadata) > 0 {
		var err error
		metadata, err = json.Marshal(entry.Metadata)
		if err != nil {
			return fmt.Errorf("marshal activity metadata: %w", err)
		}
	}

	_, err := r.pool.Exec(ctx,
		`INSERT INTO activity_logs
		 (id, actor_id, action, category, target_id, description, metadata, occurred_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		entry.ID, entry.ActorID, entry.Action, string(entry.Category), entry.TargetID,
		entry.Description, metadata, entry.OccurredAt)
	if err != nil {
		return fmt.Errorf("insert activity entry: %w", err)
	}
	return nil
}

func (r *ActivityRepository) Query(ctx context.Context, query model.ActivityQuery) ([]model.ActivityEntry, model.Meta, error) {
	if query.Page < 1 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = 50
	}
	if query.Limit > 200 {
		query.Limit = 200
	}

	where := make([]string, 0)
	args := make([]any, 0)
	addFilter := func(clause string, value any) {
		args = append(args, value)
		where = append(where, fmt.Sprintf(clause, len(args)))
	}

	if action := strings.TrimSpace(query.Action); action != "" {
		addFilter("lower(action) = lower($%d)", action)
	}
	if category := strings.TrimSpace(query.Category); category != "" {
		addFilter("lower(category) = lower($%d)", category)
	}
	if query.ActorID != nil {
		addFilter("actor_id = $%d", *query.ActorID)
	}
	if query.From != nil {
		addFilter("occurred_at >= $%d", *query.From)
	}
	if query.To != nil {
		addFilter("occurred_at <= $%d", *query.To)
	}

	whereClause := ""
	if len(where) > 0 {
		whereClause = "WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM activity_logs "+whereClause, args...).Scan(&total); err != nil {
		return nil, model.Meta{}, fmt.Errorf("count activity entries: %w", err)
	}

	totalPages := 0
	if total > 0 {
		totalPages = (total + query.Limit - 1) / query.Limit
	}
	meta := model.Meta{Page: query.Page, Limit: query.Limit, Total: total, TotalPages: totalPages}

	offset := (query.Page - 1) * query.Limit
	dataQuery := fmt.Sprintf(
		`SELECT id::text, actor_id, action, category, target_id, description, metadata, occurred_at
		 FROM activity_logs %s
		 ORDER BY occurred_at DESC
		 LIMIT $%d OFFSET $%d`, whereClause, len(args)+1, len(args)+2)
	args = append(args, query.Limit, offset)

	rows, err := r.pool.Query(ctx, dataQuery, args...)
	if err != nil {
		return nil, model.Meta{}, fmt.Errorf("query activity entries: %w", err)
	}
	defer rows.Close()

	entries := make([]model.ActivityEntry, 0)
	for rows.Next() {
		var e model.ActivityEntry
		var category string
		var metadata []byte

		if err := rows.Scan(&e.ID, &e.ActorID, &e.Action, &category, &e.TargetID,
			&e.Description, &metadata, &e.OccurredAt); err != nil {
			return nil, model.Meta{}, fmt.Errorf("scan activity entry: %w", err)
		}
		e.Category = model.ActivityCategory(category)
		e.OccurredAt = e.OccurredAt.UTC()

		if len(metadata) > 0 {
			if jsonErr := json.Unmarshal(metadata, &e.Metadata); jsonErr != nil {
				e.Metadata = nil
			}
		}

		entries = append(entries, e)
	}

	return entries, meta, rows.Err()
}
