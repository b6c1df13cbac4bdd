package roles

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/boutique-shop/boutique-shop/internal/auth"
	"github.com/boutique-shop/boutique-shop/internal/platform/httpx"
)

// Store abstracts role persistence for tests.
type Store interface {
	ListRoles(ctx context.Context) ([]Role, error)
	GetRole(ctx context.Context, id int64) (*Role, error)
	CreateRole(ctx context.Context, role *Role) error
	UpdateRole(ctx context.Context, role *Role) error
}

// Handler manages role endpoints. Mutations are restricted to callers with
// the user-administration flag.
type Handler struct {
	logger    *slog.Logger
	repo      Store
	guard     *auth.Guard
	validator *validator.Validate
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, repo Store, guard *auth.Guard) *Handler {
	return &Handler{logger: logger, repo: repo, guard: guard, validator: validator.New()}
}

// MountRoutes registers role routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Require())
		r.Get("/", h.list)
		r.Get("/{id}", h.get)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Require(auth.PermGetUsers))
		r.Post("/", h.create)
		r.Put("/{id}", h.update)
	})
}

type roleRequest struct {
	Name                    string `json:"name" validate:"required"`
	CanPostLogin            bool   `json:"can_post_login"`
	CanGetMyUser            bool   `json:"can_get_my_user"`
	CanGetUsers             bool   `json:"can_get_users"`
	CanPostProducts         bool   `json:"can_post_products"`
	CanPostProductWithImage bool   `json:"can_post_product_with_image"`
	CanGetBestsellers       bool   `json:"can_get_bestsellers"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	roles, err := h.repo.ListRoles(r.Context())
	if err != nil {
		h.logger.Error("list roles", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"data":  roles,
		"count": len(roles),
	})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid role id")
		return
	}
	role, err := h.repo.GetRole(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": role})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req roleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	role := req.toRole(0)
	if err := h.repo.CreateRole(r.Context(), &role); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{
		"message": "role created successfully",
		"data":    role,
	})
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid role id")
		return
	}

	var req roleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	role := req.toRole(id)
	if err := h.repo.UpdateRole(r.Context(), &role); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"message": "role updated successfully",
		"data":    role,
	})
}

func (req roleRequest) toRole(id int64) Role {
	return Role{
		ID:                      id,
		Name:                    req.Name,
		CanPostLogin:            req.CanPostLogin,
		CanGetMyUser:            req.CanGetMyUser,
		CanGetUsers:             req.CanGetUsers,
		CanPostProducts:         req.CanPostProducts,
		CanPostProductWithImage: req.CanPostProductWithImage,
		CanGetBestsellers:       req.CanGetBestsellers,
	}
}
