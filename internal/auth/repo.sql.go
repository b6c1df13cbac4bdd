package auth

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

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

const userColumns = `id, name, email, password_hash, password_updated_at, role_id`

// FindUserByEmail fetches a user by email.
func (r *PGRepository) FindUserByEmail(ctx context.Context, email string) (*User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

// FindUserByID fetches a user by primary key.
func (r *PGRepository) FindUserByID(ctx context.Context, id int64) (*User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// FindRoleByID fetches a role with its permission flags.
func (r *PGRepository) FindRoleByID(ctx context.Context, id int64) (*Role, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, can_post_login, can_get_my_user, can_get_users,
		       can_post_products, can_post_product_with_image, can_get_bestsellers
		FROM roles WHERE id = $1`, id)
	var role Role
	err := row.Scan(
		&role.ID,
		&role.Name,
		&role.CanPostLogin,
		&role.CanGetMyUser,
		&role.CanGetUsers,
		&role.CanPostProducts,
		&role.CanPostProductWithImage,
		&role.CanGetBestsellers,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &role, nil
}

// CreateUser inserts a new user and fills the generated id and timestamp.
func (r *PGRepository) CreateUser(ctx context.Context, user *User) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO users (name, email, password_hash, role_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, password_updated_at`,
		user.Name, user.Email, user.PasswordHash, user.RoleID,
	).Scan(&user.ID, &user.PasswordUpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return shared.ErrDuplicate
		}
		return err
	}
	return nil
}

// UpdatePassword stores a new hash and advances password_updated_at, which
// invalidates every token issued before it.
func (r *PGRepository) UpdatePassword(ctx context.Context, userID int64, hash string, updatedAt time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE users SET password_hash = $2, password_updated_at = $3 WHERE id = $1`,
		userID, hash, updatedAt.UTC())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// TouchPasswordUpdatedAt bumps the token-invalidation watermark without
// changing the password. Used by logout.
func (r *PGRepository) TouchPasswordUpdatedAt(ctx context.Context, userID int64, at time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE users SET password_updated_at = $2 WHERE id = $1`, userID, at.UTC())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (*User, error) {
	var user User
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.PasswordUpdatedAt,
		&user.RoleID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

var _ Repository = (*PGRepository)(nil)
