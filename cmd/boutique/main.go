package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/boutique-shop/boutique-shop/internal/apikeys"
	"github.com/boutique-shop/boutique-shop/internal/app"
	"github.com/boutique-shop/boutique-shop/internal/auth"
	"github.com/boutique-shop/boutique-shop/internal/observability"
	"github.com/boutique-shop/boutique-shop/internal/platform/cache"
	"github.com/boutique-shop/boutique-shop/internal/platform/db"
	"github.com/boutique-shop/boutique-shop/internal/products"
	"github.com/boutique-shop/boutique-shop/internal/roles"
	"github.com/boutique-shop/boutique-shop/internal/shopify"
	"github.com/boutique-shop/boutique-shop/internal/users"
	"github.com/boutique-shop/boutique-shop/internal/webhook"
	"github.com/boutique-shop/boutique-shop/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)
	if cfg.UsingDefaultJWTSecret() {
		logger.Warn("JWT_SECRET not set, using development default")
	}

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	limiter := auth.NewLoginLimiter(cfg.LoginCooldown)

	authRepo := auth.NewRepository(pool)
	apiKeyRepo := apikeys.NewRepository(pool)
	apiKeyService := apikeys.NewService(logger, apiKeyRepo)

	metrics := observability.NewMetrics()
	metrics.Registerer().MustRegister(collectors.NewGoCollector())

	guard := auth.NewGuard(logger, authRepo, tokens, apiKeyService)
	guard.SetDenialCounter(metrics)

	authService := auth.NewService(logger, authRepo, tokens, limiter, cfg.BcryptCost)
	authHandler := auth.NewHandler(logger, authService, guard)

	usersHandler := users.NewHandler(logger, users.NewRepository(pool), guard)
	rolesHandler := roles.NewHandler(logger, roles.NewRepository(pool), guard)
	apiKeysHandler := apikeys.NewHandler(logger, apiKeyService, guard)

	shopifyClient := shopify.NewClient(cfg.ShopifyStoreURL, cfg.ShopifyAccessToken)
	productRepo := products.NewRepository(pool)
	productService := products.NewService(logger, productRepo, shopifyClient)
	productsHandler := products.NewHandler(logger, productService, guard)

	jobClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()

	verifier := shopify.NewWebhookVerifier(cfg.ShopifyWebhookSecret)
	deduper := webhook.NewRedisDeduper(redisClient, webhook.DefaultDedupTTL)
	webhookHandler := webhook.NewHandler(logger, verifier, jobClient, deduper)

	router := app.NewRouter(app.RouterParams{
		Logger:          logger,
		Config:          cfg,
		AuthHandler:     authHandler,
		UsersHandler:    usersHandler,
		RolesHandler:    rolesHandler,
		APIKeysHandler:  apiKeysHandler,
		ProductsHandler: productsHandler,
		WebhookHandler:  webhookHandler,
		Metrics:         metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		limiter.Run(groupCtx)
		return nil
	})

	group.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("server exited", slog.Any("error", err))
		os.Exit(1)
	}
}
