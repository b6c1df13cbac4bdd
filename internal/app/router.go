package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/boutique-shop/boutique-shop/internal/apikeys"
	"github.com/boutique-shop/boutique-shop/internal/auth"
	"github.com/boutique-shop/boutique-shop/internal/observability"
	"github.com/boutique-shop/boutique-shop/internal/products"
	"github.com/boutique-shop/boutique-shop/internal/roles"
	"github.com/boutique-shop/boutique-shop/internal/users"
	"github.com/boutique-shop/boutique-shop/internal/webhook"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger          *slog.Logger
	Config          *Config
	AuthHandler     *auth.Handler
	UsersHandler    *users.Handler
	RolesHandler    *roles.Handler
	APIKeysHandler  *apikeys.Handler
	ProductsHandler *products.Handler
	WebhookHandler  *webhook.Handler
	Metrics         *observability.Metrics
}

// NewRouter constructs the chi.Router with application defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Route("/auth", params.AuthHandler.MountRoutes)
	r.Route("/users", params.UsersHandler.MountRoutes)
	r.Route("/roles", params.RolesHandler.MountRoutes)
	r.Route("/api-keys", params.APIKeysHandler.MountRoutes)
	r.Route("/products", params.ProductsHandler.MountRoutes)
	if params.WebhookHandler != nil {
		r.Route("/webhooks", params.WebhookHandler.MountRoutes)
	}

	return r
}
