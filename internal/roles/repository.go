package roles

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/boutique-shop/boutique-shop/internal/shared"
)

const roleColumns = `id, name, can_post_login, can_get_my_user, can_get_users,
	can_post_products, can_post_product_with_image, can_get_bestsellers`

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListRoles returns all roles ordered by id.
func (r *Repository) ListRoles(ctx context.Context) ([]Role, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+roleColumns+` FROM roles ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []Role
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

// GetRole fetches a role by id.
func (r *Repository) GetRole(ctx context.Context, id int64) (*Role, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+roleColumns+` FROM roles WHERE id = $1`, id)
	role, err := scanRole(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &role, nil
}

// CreateRole inserts a new role and fills the generated id.
func (r *Repository) CreateRole(ctx context.Context, role *Role) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO roles (name, can_post_login, can_get_my_user, can_get_users,
		                   can_post_products, can_post_product_with_image, can_get_bestsellers)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		role.Name, role.CanPostLogin, role.CanGetMyUser, role.CanGetUsers,
		role.CanPostProducts, role.CanPostProductWithImage, role.CanGetBestsellers,
	).Scan(&role.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return shared.ErrDuplicate
		}
		return err
	}
	return nil
}

// UpdateRole replaces the flag set of an existing role. Role changes take
// effect on the next request because the guard re-fetches roles fresh.
func (r *Repository) UpdateRole(ctx context.Context, role *Role) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE roles SET name = $2, can_post_login = $3, can_get_my_user = $4,
		       can_get_users = $5, can_post_products = $6,
		       can_post_product_with_image = $7, can_get_bestsellers = $8
		WHERE id = $1`,
		role.ID, role.Name, role.CanPostLogin, role.CanGetMyUser, role.CanGetUsers,
		role.CanPostProducts, role.CanPostProductWithImage, role.CanGetBestsellers)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanRole(row pgx.Row) (Role, error) {
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
	return role, err
}
