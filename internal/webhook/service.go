// Package webhook processes Shopify webhook deliveries.
package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/boutique-shop/boutique-shop/internal/shared"
)

// SaleRecorder updates product sales counters.
type SaleRecorder interface {
	RecordSale(ctx context.Context, shopifyID string, quantity int) error
}

// OrderPayload is the subset of a Shopify order webhook we act on.
type OrderPayload struct {
	ID        int64      `json:"id"`
	LineItems []LineItem `json:"line_items"`
}

// LineItem is a single order line.
type LineItem struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// Service applies order webhooks to the catalog.
type Service struct {
	logger   *slog.Logger
	products SaleRecorder
}

// NewService constructs a webhook Service.
func NewService(logger *slog.Logger, products SaleRecorder) *Service {
	return &Service{logger: logger, products: products}
}

// ProcessOrder bumps sales counts for every line item of the order.
// Line items referencing products we do not track are skipped; any other
// failure is returned so the job can be retried.
func (s *Service) ProcessOrder(ctx context.Context, body []byte) error {
	var order OrderPayload
	if err := json.Unmarshal(body, &order); err != nil {
		return fmt.Errorf("webhook: decode order: %w", err)
	}

	logger := s.logger.With(slog.Int64("order_id", order.ID))
	for _, item := range order.LineItems {
		if item.ProductID == 0 {
			continue
		}
		shopifyID := fmt.Sprintf("%d", item.ProductID)
		err := s.products.RecordSale(ctx, shopifyID, item.Quantity)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				logger.Warn("order line for unknown product",
					slog.String("shopify_id", shopifyID))
				continue
			}
			return fmt.Errorf("webhook: record sale for product %s: %w", shopifyID, err)
		}
	}

	logger.Info("order processed", slog.Int("line_items", len(order.LineItems)))
	return nil
}
