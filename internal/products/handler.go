package products

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/boutique-shop/boutique-shop/internal/auth"
	"github.com/boutique-shop/boutique-shop/internal/platform/httpx"
)

// Handler manages product endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	guard     *auth.Guard
	validator *validator.Validate
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, guard *auth.Guard) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		guard:     guard,
		validator: validator.New(),
	}
}

// MountRoutes registers product routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Require())
		r.Get("/", h.list)
		r.Get("/mine", h.mine)
		r.Get("/{id}", h.get)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Require(auth.PermGetBestsellers))
		r.Get("/bestsellers", h.bestsellers)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Require(auth.PermPostProducts))
		r.Post("/", h.create)
	})
}

type createProductRequest struct {
	Title     string  `json:"title" validate:"required"`
	Price     float64 `json:"price" validate:"required,gt=0"`
	ImageURL  string  `json:"image_url" validate:"omitempty,url"`
	ShopifyID string  `json:"shopify_id"`
}

type productResponse struct {
	ID         int64     `json:"id"`
	ShopifyID  string    `json:"shopify_id"`
	CreatedBy  int64     `json:"created_by"`
	SalesCount int       `json:"sales_count"`
	ImageURL   *string   `json:"image_url,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	identity := auth.IdentityFromContext(r.Context())

	var req createProductRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	// The image flag is an additional grant on top of can_post_products;
	// the service enforces it so the rule also holds for API-key callers.
	hasImagePermission := identity.Role.Allows(auth.PermPostProductWithImage)

	product, err := h.service.Create(r.Context(), CreateInput{
		Title:     req.Title,
		Price:     req.Price,
		ImageURL:  req.ImageURL,
		ShopifyID: req.ShopifyID,
	}, identity.User.ID, hasImagePermission)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	httpx.JSON(w, http.StatusCreated, map[string]any{
		"message": "product created successfully",
		"data":    toResponse(*product),
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list products", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, listPayload(products))
}

func (h *Handler) mine(w http.ResponseWriter, r *http.Request) {
	identity := auth.IdentityFromContext(r.Context())
	products, err := h.service.Mine(r.Context(), identity.User.ID)
	if err != nil {
		h.logger.Error("list own products", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, listPayload(products))
}

func (h *Handler) bestsellers(w http.ResponseWriter, r *http.Request) {
	identity := auth.IdentityFromContext(r.Context())
	products, err := h.service.Bestsellers(r.Context(), identity.User.ID)
	if err != nil {
		h.logger.Error("list bestsellers", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, listPayload(products))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid product id")
		return
	}
	product, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": toResponse(*product)})
}

func listPayload(products []Product) map[string]any {
	out := make([]productResponse, 0, len(products))
	for _, product := range products {
		out = append(out, toResponse(product))
	}
	return map[string]any{"data": out, "count": len(out)}
}

func toResponse(product Product) productResponse {
	return productResponse{
		ID:         product.ID,
		ShopifyID:  product.ShopifyID,
		CreatedBy:  product.CreatedBy,
		SalesCount: product.SalesCount,
		ImageURL:   product.ImageURL,
		CreatedAt:  product.CreatedAt,
		UpdatedAt:  product.UpdatedAt,
	}
}
