package users

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/boutique-shop/boutique-shop/internal/auth"
	"github.com/boutique-shop/boutique-shop/internal/platform/httpx"
)

// Lister abstracts the user listing query for tests.
type Lister interface {
	ListUsers(ctx context.Context) ([]User, error)
}

// Handler manages user endpoints.
type Handler struct {
	logger *slog.Logger
	repo   Lister
	guard  *auth.Guard
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, repo Lister, guard *auth.Guard) *Handler {
	return &Handler{logger: logger, repo: repo, guard: guard}
}

// MountRoutes registers user routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Require(auth.PermGetMyUser))
		r.Get("/me", h.profile)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Require(auth.PermGetUsers))
		r.Get("/", h.list)
	})
}

func (h *Handler) profile(w http.ResponseWriter, r *http.Request) {
	identity := auth.IdentityFromContext(r.Context())
	httpx.JSON(w, http.StatusOK, map[string]any{
		"data": User{
			ID:    identity.User.ID,
			Email: identity.User.Email,
			Name:  identity.User.Name,
		},
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	users, err := h.repo.ListUsers(r.Context())
	if err != nil {
		h.logger.Error("list users", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"data":  users,
		"count": len(users),
	})
}
