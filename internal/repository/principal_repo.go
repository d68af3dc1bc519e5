package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"caseguard/internal/model"
)

const principalColumns = `id, email, full_name, password_hash, role, is_active, is_first_login,
	is_profile_completed, token_version, created_at, updated_at`

type PrincipalRepository struct {
	pool *pgxpool.Pool
}

func NewPrincipalRepository(pool *pgxpool.Pool) *PrincipalRepository {
	return &PrincipalRepository{pool: pool}
}

func scanPrincipal(row pgx.Row) (model.Principal, error) {
	var p model.Principal
	var role string
	err := row.Scan(&p.ID, &p.Email, &p.FullName, &p.PasswordHash, &role, &p.IsActive,
		&p.IsFirstLogin, &p.IsProfileCompleted, &p.TokenVersion, &p.CreatedAt, &p.UpdatedAt)
	p.Role = model.Role(role)
	return p, err
}

func (r *PrincipalRepository) FindByID(ctx context.Context, id int64) (model.Principal, error) {
	p, err := scanPrincipal(r.pool.QueryRow(ctx,
		`SELECT `+principalColumns+` FROM users WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Principal{}, model.ErrPrincipalNotFound
	}
	if err != nil {
		return model.Principal{}, fmt.Errorf("find principal by id: %w", err)
	}
	return p, nil
}

func (r *PrincipalRepository) FindByEmail(ctx context.Context, email string) (model.Principal, error) {
	p, err := scanPrincipal(r.pool.QueryRow(ctx,
		`SELECT `+principalColumns+` FROM users WHERE lower(email) = lower($1)`,
		strings.TrimSpace(email)))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Principal{}, model.ErrPrincipalNotFound
	}
	if err != nil {
		return model.Principal{}, fmt.Errorf("find principal by email: %w", err)
	}
	return p, nil
}

func (r *PrincipalRepository) Create(ctx context.Context, p model.Principal) (model.Principal, error) {
	created, err := scanPrincipal(r.pool.QueryRow(ctx,
		`INSERT INTO users (email, full_name, password_hash, role, is_active, is_first_login,
		                    is_profile_completed, token_version, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
		 RETURNING `+principalColumns,
		model.NormalizeEmail(p.Email), p.FullName, p.PasswordHash, string(p.Role), p.IsActive,
		p.IsFirstLogin, p.IsProfileCompleted, p.TokenVersion, time.Now().UTC()))

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return model.Principal{}, model.ErrEmailTaken
	}
	if err != nil {
		return model.Principal{}, fmt.Errorf("create principal: %w", err)
	}
	return created, nil
}

// Update applies a partial patch and returns the stored row.
func (r *PrincipalRepository) Update(ctx context.Context, id int64, patch model.PrincipalPatch) (model.Principal, error) {
	if patch.Empty() {
		return r.FindByID(ctx, id)
	}

	sets := make([]string, 0, 7)
	args := []any{id}
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.FullName != nil {
		add("full_name", *patch.FullName)
	}
	if patch.PasswordHash != nil {
		add("password_hash", *patch.PasswordHash)
	}
	if patch.Role != nil {
		add("role", string(*patch.Role))
	}
	if patch.IsActive != nil {
		add("is_active", *patch.IsActive)
	}
	if patch.IsFirstLogin != nil {
		add("is_first_login", *patch.IsFirstLogin)
	}
	if patch.IsProfileCompleted != nil {
		add("is_profile_completed", *patch.IsProfileCompleted)
	}
	add("updated_at", time.Now().UTC())

	p, err := scanPrincipal(r.pool.QueryRow(ctx,
		`UPDATE users SET `+strings.Join(sets, ", ")+` WHERE id = $1 RETURNING `+principalColumns,
		args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Principal{}, model.ErrPrincipalNotFound
	}
	if err != nil {
		return model.Principal{}, fmt.Errorf("update principal: %w", err)
	}
	return p, nil
}

// IncrementTokenVersion bumps the revocation counter and returns the new value.
// Concurrent calls are last-write-wins at the row level; each call still increments.
func (r *PrincipalRepository) IncrementTokenVersion(ctx context.Context, id int64) (int, error) {
	var version int
	err := r.pool.QueryRow(ctx,
		`UPDATE users SET token_version = token_version + 1, updated_at = $2
		 WHERE id = $1 RETURNING token_version`, id, time.Now().UTC()).Scan(&version)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, model.ErrPrincipalNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("increment token version: %w", err)
	}
	return version, nil
}

func (r *PrincipalRepository) List(ctx context.Context) ([]model.Principal, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+principalColumns+` FROM users ORDER BY email`)
	if err != nil {
		return nil, fmt.Errorf("list principals: %w", err)
	}
	defer rows.Close()

	principals := make([]model.Principal, 0)
	for rows.Next() {
		p, err := scanPrincipal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan principal: %w", err)
		}
		principals = append(principals, p)
	}
	return principals, rows.Err()
}

func (r *PrincipalRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count principals: %w", err)
	}
	return count, nil
}

// Delete removes a principal together with the grant and activity rows that reference it.
func (r *PrincipalRepository) Delete(ctx context.Context, id int64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin delete principal: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	statements := []string{
		`DELETE FROM item_grants WHERE user_id = $1`,
		`DELETE FROM collection_grants WHERE user_id = $1`,
		`DELETE FROM activity_logs WHERE actor_id = $1`,
	}
	for _, stmt := range statements {
		if _, err := tx.Exec(ctx, stmt, id); err != nil {
			return fmt.Errorf("cascade delete principal: %w", err)
		}
	}

	tag, err := tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete principal: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrPrincipalNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit delete principal: %w", err)
	}
	return nil
}
