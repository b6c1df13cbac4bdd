package apikeys

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/boutique-shop/boutique-shop/internal/auth"
	"github.com/boutique-shop/boutique-shop/internal/platform/httpx"
)

// Handler manages API key endpoints. All operations are scoped to the
// authenticated caller.
type Handler struct {
	logger  *slog.Logger
	service *Service
	guard   *auth.Guard
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, guard *auth.Guard) *Handler {
	return &Handler{logger: logger, service: service, guard: guard}
}

// MountRoutes registers API key routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Require(auth.PermGetMyUser))
		r.Get("/", h.list)
		r.Post("/", h.create)
		r.Put("/{id}/activate", h.reactivate)
		r.Put("/{id}/deactivate", h.deactivate)
		r.Delete("/{id}", h.remove)
	})
}

type createKeyRequest struct {
	Name string `json:"name"`
}

type keyMetadata struct {
	ID         int64      `json:"id"`
	Name       string     `json:"name"`
	IsActive   bool       `json:"is_active"`
	CreatedAt  time.Time  `json:"created_at"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
}

type createdKey struct {
	keyMetadata
	Key string `json:"key"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	identity := auth.IdentityFromContext(r.Context())
	keys, err := h.service.List(r.Context(), identity.User.ID)
	if err != nil {
		h.logger.Error("list api keys", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	out := make([]keyMetadata, 0, len(keys))
	for _, key := range keys {
		out = append(out, toMetadata(key))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"data":  out,
		"count": len(out),
	})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	identity := auth.IdentityFromContext(r.Context())

	var req createKeyRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}

	key, err := h.service.Generate(r.Context(), identity.User.ID, req.Name)
	if err != nil {
		h.logger.Error("generate api key", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	// The secret is shown here and never again.
	httpx.JSON(w, http.StatusCreated, map[string]any{
		"message": "api key generated successfully",
		"data":    createdKey{keyMetadata: toMetadata(*key), Key: key.Key},
	})
}

func (h *Handler) deactivate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, false)
}

func (h *Handler) reactivate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, true)
}

func (h *Handler) setActive(w http.ResponseWriter, r *http.Request, active bool) {
	identity := auth.IdentityFromContext(r.Context())
	keyID, ok := paramID(r)
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid key id")
		return
	}

	var err error
	if active {
		err = h.service.Reactivate(r.Context(), identity.User.ID, keyID)
	} else {
		err = h.service.Deactivate(r.Context(), identity.User.ID, keyID)
	}
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	message := "api key deactivated successfully"
	if active {
		message = "api key reactivated successfully"
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"message": message})
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	identity := auth.IdentityFromContext(r.Context())
	keyID, ok := paramID(r)
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid key id")
		return
	}

	if err := h.service.Delete(r.Context(), identity.User.ID, keyID); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"message": "api key deleted successfully"})
}

func paramID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func toMetadata(key APIKey) keyMetadata {
	return keyMetadata{
		ID:         key.ID,
		Name:       key.Name,
		IsActive:   key.IsActive,
		CreatedAt:  key.CreatedAt,
		LastUsedAt: key.LastUsedAt,
	}
}
