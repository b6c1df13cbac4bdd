package products

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/boutique-shop/boutique-shop/internal/auth"
	"github.com/boutique-shop/boutique-shop/internal/shared"
)

// ShopifyClient creates the remote counterpart of a product.
type ShopifyClient interface {
	CreateProduct(ctx context.Context, title string, price float64) (shopifyID string, err error)
}

// Service wraps product business rules.
type Service struct {
	logger  *slog.Logger
	repo    Repository
	shopify ShopifyClient
	now     func() time.Time
}

// NewService constructs a new Service.
func NewService(logger *slog.Logger, repo Repository, shopify ShopifyClient) *Service {
	return &Service{logger: logger, repo: repo, shopify: shopify, now: time.Now}
}

// NewSalesService constructs a Service for consumers that only record
// sales, such as the order-sync worker. No Shopify client is attached;
// creating products through it fails instead of reaching the remote API.
func NewSalesService(logger *slog.Logger, repo Repository) *Service {
	return &Service{logger: logger, repo: repo, now: time.Now}
}

// Create registers a product for the given creator. Attaching an image
// requires the dedicated permission flag on top of product creation.
// When no Shopify id is supplied the remote product is created first.
func (s *Service) Create(ctx context.Context, input CreateInput, userID int64, hasImagePermission bool) (*Product, error) {
	if input.ImageURL != "" && !hasImagePermission {
		return nil, fmt.Errorf("%w: %s", shared.ErrPermissionDenied, auth.PermPostProductWithImage)
	}

	shopifyID := input.ShopifyID
	if shopifyID == "" {
		if s.shopify == nil {
			return nil, fmt.Errorf("products: no shopify client configured")
		}
		remoteID, err := s.shopify.CreateProduct(ctx, input.Title, input.Price)
		if err != nil {
			s.logger.Error("shopify product create", slog.Any("error", err))
			return nil, fmt.Errorf("products: create remote product: %w", err)
		}
		shopifyID = remoteID
	}

	product := &Product{
		ShopifyID: shopifyID,
		CreatedBy: userID,
	}
	if input.ImageURL != "" {
		product.ImageURL = &input.ImageURL
	}
	if err := s.repo.Insert(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// List returns all products.
func (s *Service) List(ctx context.Context) ([]Product, error) {
	return s.repo.List(ctx)
}

// GetByID returns a single product.
func (s *Service) GetByID(ctx context.Context, id int64) (*Product, error) {
	return s.repo.GetByID(ctx, id)
}

// Mine returns the caller's products.
func (s *Service) Mine(ctx context.Context, userID int64) ([]Product, error) {
	return s.repo.ListByCreator(ctx, userID)
}

// Bestsellers returns the caller's products ordered by sales count.
func (s *Service) Bestsellers(ctx context.Context, userID int64) ([]Product, error) {
	return s.repo.BestsellersByCreator(ctx, userID)
}

// RecordSale adds quantity to the sales count of the product matching the
// Shopify id. Unknown products are reported as shared.ErrNotFound so the
// caller can decide to skip them.
func (s *Service) RecordSale(ctx context.Context, shopifyID string, quantity int) error {
	product, err := s.repo.FindByShopifyID(ctx, shopifyID)
	if err != nil {
		return err
	}
	if quantity <= 0 {
		quantity = 1
	}
	return s.repo.AddSales(ctx, product.ID, quantity, s.now().UTC())
}
