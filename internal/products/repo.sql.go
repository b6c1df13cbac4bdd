package products

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/boutique-shop/boutique-shop/internal/shared"
)

const productColumns = `id, shopify_id, created_by, sales_count, image_url, created_at, updated_at`

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// Insert stores a new product.
func (r *PGRepository) Insert(ctx context.Context, product *Product) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO products (shopify_id, created_by, sales_count, image_url)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`,
		product.ShopifyID, product.CreatedBy, product.SalesCount, product.ImageURL,
	).Scan(&product.ID, &product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return shared.ErrDuplicate
		}
		return err
	}
	return nil
}

// GetByID fetches a product by primary key.
func (r *PGRepository) GetByID(ctx context.Context, id int64) (*Product, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	return scanProduct(row)
}

// FindByShopifyID fetches a product by its Shopify identifier.
func (r *PGRepository) FindByShopifyID(ctx context.Context, shopifyID string) (*Product, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE shopify_id = $1`, shopifyID)
	return scanProduct(row)
}

// List returns all products ordered by id.
func (r *PGRepository) List(ctx context.Context) ([]Product, error) {
	return r.query(ctx, `SELECT `+productColumns+` FROM products ORDER BY id`)
}

// ListByCreator returns products created by the given user.
func (r *PGRepository) ListByCreator(ctx context.Context, userID int64) ([]Product, error) {
	return r.query(ctx, `SELECT `+productColumns+` FROM products WHERE created_by = $1 ORDER BY id`, userID)
}

// BestsellersByCreator orders the creator's products by sales count.
func (r *PGRepository) BestsellersByCreator(ctx context.Context, userID int64) ([]Product, error) {
	return r.query(ctx, `
		SELECT `+productColumns+` FROM products
		WHERE created_by = $1 ORDER BY sales_count DESC, id`, userID)
}

// AddSales increments sales_count and refreshes updated_at.
func (r *PGRepository) AddSales(ctx context.Context, productID int64, quantity int, at time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE products SET sales_count = sales_count + $2, updated_at = $3 WHERE id = $1`,
		productID, quantity, at.UTC())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *PGRepository) query(ctx context.Context, sql string, args ...any) ([]Product, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *product)
	}
	return out, rows.Err()
}

func scanProduct(row pgx.Row) (*Product, error) {
	var product Product
	err := row.Scan(
		&product.ID,
		&product.ShopifyID,
		&product.CreatedBy,
		&product.SalesCount,
		&product.ImageURL,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

var _ Repository = (*PGRepository)(nil)
