package products

import (
	"context"
	"time"
)

// Repository defines persistence operations for products.
type Repository interface {
	Insert(ctx context.Context, product *Product) error
	GetByID(ctx context.Context, id int64) (*Product, error)
	FindByShopifyID(ctx context.Context, shopifyID string) (*Product, error)
	List(ctx context.Context) ([]Product, error)
	ListByCreator(ctx context.Context, userID int64) ([]Product, error)
	// BestsellersByCreator orders the creator's products by sales count,
	// highest first.
	BestsellersByCreator(ctx context.Context, userID int64) ([]Product, error)
	// AddSales increments sales_count for a product and refreshes updated_at.
	AddSales(ctx context.Context, productID int64, quantity int, at time.Time) error
}
