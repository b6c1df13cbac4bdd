package apikeys

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/boutique-shop/boutique-shop/internal/auth"
	"github.com/boutique-shop/boutique-shop/internal/shared"
)

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// Insert stores a new key and fills the generated id and creation time.
func (r *PGRepository) Insert(ctx context.Context, key *APIKey) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO api_keys (name, key, user_id, is_active)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		key.Name, key.Key, key.UserID, key.IsActive,
	).Scan(&key.ID, &key.CreatedAt)
}

// FindBySecret fetches a key and its owning user by the secret value.
func (r *PGRepository) FindBySecret(ctx context.Context, secret string) (*APIKey, *auth.User, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT k.id, k.name, k.user_id, k.is_active, k.created_at, k.last_used_at,
		       u.id, u.name, u.email, u.password_hash, u.password_updated_at, u.role_id
		FROM api_keys k
		JOIN users u ON u.id = k.user_id
		WHERE k.key = $1`, secret)

	var key APIKey
	var user auth.User
	err := row.Scan(
		&key.ID, &key.Name, &key.UserID, &key.IsActive, &key.CreatedAt, &key.LastUsedAt,
		&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.PasswordUpdatedAt, &user.RoleID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, shared.ErrNotFound
		}
		return nil, nil, err
	}
	return &key, &user, nil
}

// ListByOwner returns all keys for a user ordered by creation.
func (r *PGRepository) ListByOwner(ctx context.Context, ownerID int64) ([]APIKey, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, key, user_id, is_active, created_at, last_used_at
		FROM api_keys WHERE user_id = $1 ORDER BY id`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []APIKey
	for rows.Next() {
		var key APIKey
		if err := rows.Scan(&key.ID, &key.Name, &key.Key, &key.UserID, &key.IsActive, &key.CreatedAt, &key.LastUsedAt); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

// SetActive flips is_active, scoped to the owner so foreign keys read as
// not found.
func (r *PGRepository) SetActive(ctx context.Context, ownerID, keyID int64, active bool) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE api_keys SET is_active = $3 WHERE id = $1 AND user_id = $2`,
		keyID, ownerID, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// DeleteOwned removes a key scoped to its owner.
func (r *PGRepository) DeleteOwned(ctx context.Context, ownerID, keyID int64) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM api_keys WHERE id = $1 AND user_id = $2`, keyID, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// TouchLastUsed records a successful resolution.
func (r *PGRepository) TouchLastUsed(ctx context.Context, keyID int64, at time.Time) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE api_keys SET last_used_at = $2 WHERE id = $1`, keyID, at)
	return err
}

var _ Repository = (*PGRepository)(nil)
