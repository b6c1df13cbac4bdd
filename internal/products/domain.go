package products

import "time"

// Product mirrors a Shopify product tracked for sales counting.
type Product struct {
	ID         int64
	ShopifyID  string
	CreatedBy  int64
	SalesCount int
	ImageURL   *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// CreateInput carries the fields accepted by product creation.
type CreateInput struct {
	Title     string
	Price     float64
	ImageURL  string
	ShopifyID string
}
