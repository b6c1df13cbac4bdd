package webhook

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/boutique-shop/boutique-shop/internal/platform/httpx"
	"github.com/boutique-shop/boutique-shop/internal/shopify"
)

// Shopify retries deliveries, so payloads stay small; 1 MiB is generous.
const maxWebhookBody = 1 << 20

// WebhookIDHeader identifies a delivery for deduplication.
const WebhookIDHeader = "X-Shopify-Webhook-Id"

// Verifier validates a webhook signature against the raw body.
type Verifier interface {
	Verify(body []byte, signature string) bool
}

// Enqueuer hands a verified delivery off for asynchronous processing.
type Enqueuer interface {
	EnqueueOrderSync(ctx context.Context, deliveryID string, body []byte) error
}

// Handler accepts Shopify webhook deliveries.
type Handler struct {
	logger   *slog.Logger
	verifier Verifier
	enqueuer Enqueuer
	deduper  Deduper
}

// NewHandler builds a webhook Handler. deduper may be nil, in which case
// only the queue-level task id guards against redeliveries.
func NewHandler(logger *slog.Logger, verifier Verifier, enqueuer Enqueuer, deduper Deduper) *Handler {
	return &Handler{logger: logger, verifier: verifier, enqueuer: enqueuer, deduper: deduper}
}

// MountRoutes registers webhook routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/shopify/orders", h.ordersCreate)
}

func (h *Handler) ordersCreate(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "unable to read body")
		return
	}

	signature := r.Header.Get(shopify.HmacHeader)
	if !h.verifier.Verify(body, signature) {
		h.logger.Warn("webhook signature rejected",
			slog.String("delivery_id", r.Header.Get(WebhookIDHeader)))
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "invalid webhook signature")
		return
	}

	deliveryID := r.Header.Get(WebhookIDHeader)
	if deliveryID == "" {
		deliveryID = uuid.NewString()
	} else if h.deduper != nil {
		seen, err := h.deduper.Seen(r.Context(), deliveryID)
		if err != nil {
			// Fail open: the task id on the queue still collapses duplicates.
			h.logger.Warn("webhook dedup check",
				slog.String("delivery_id", deliveryID), slog.Any("error", err))
		} else if seen {
			httpx.JSON(w, http.StatusOK, map[string]any{"message": "accepted"})
			return
		}
	}

	if err := h.enqueuer.EnqueueOrderSync(r.Context(), deliveryID, body); err != nil {
		h.logger.Error("enqueue order sync",
			slog.String("delivery_id", deliveryID), slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Server Error", "")
		return
	}

	httpx.JSON(w, http.StatusOK, map[string]any{"message": "accepted"})
}
