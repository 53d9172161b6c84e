package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aaravmahajanofficial/shared-cart-service/internal/api/handlers"
	"github.com/aaravmahajanofficial/shared-cart-service/internal/api/middleware"
	"github.com/aaravmahajanofficial/shared-cart-service/internal/cache"
	"github.com/aaravmahajanofficial/shared-cart-service/internal/config"
	"github.com/aaravmahajanofficial/shared-cart-service/internal/health"
	"github.com/aaravmahajanofficial/shared-cart-service/internal/ledger"
	"github.com/aaravmahajanofficial/shared-cart-service/internal/metrics"
	repository "github.com/aaravmahajanofficial/shared-cart-service/internal/repositories"
	service "github.com/aaravmahajanofficial/shared-cart-service/internal/services"
	"github.com/aaravmahajanofficial/shared-cart-service/internal/telemetry"
	"github.com/aaravmahajanofficial/shared-cart-service/pkg/storefront"
	"github.com/aaravmahajanofficial/shared-cart-service/pkg/stripe"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {

	// Logger setup
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load config
	cfg := config.MustLoad()

	ctx := context.Background()

	// Tracing setup
	shutdownTracing, err := telemetry.Setup(ctx, cfg.Otel, cfg.Env)
	if err != nil {
		slog.Error("❌ Error setting up tracing", "error", err.Error())
		os.Exit(1)
	}

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := shutdownTracing(shutdownCtx); err != nil {
			slog.Error("⚠️ Error flushing traces", slog.String("error", err.Error()))
		}
	}()

	// Redis setup
	redisClient, err := repository.NewRedisClient(ctx, cfg)
	if err != nil {
		slog.Error("❌ Error accessing the redis instance", "error", err.Error())
		os.Exit(1)
	}

	defer func() {
		if err := redisClient.Close(); err != nil {
			slog.Error("⚠️ Error closing redis connection", slog.String("error", err.Error()))
		} else {
			slog.Info("✅ Redis connection closed")
		}
	}()

	// Durable snapshot tier
	var snapshots cache.Cache = cache.NewRedisCache(redisClient, cfg.Cache.SnapshotTTL)
	endpoints := &health.Endpoints{}

	if cfg.Cache.Backend == config.CacheBackendPostgres {
		repos, err := repository.New(ctx, cfg)
		if err != nil {
			slog.Error("❌ Error accessing the database", "error", err.Error())
			os.Exit(1)
		}

		defer func() {
			if err := repos.Close(); err != nil {
				slog.Error("⚠️ Error closing database connection", slog.String("error", err.Error()))
			} else {
				slog.Info("✅ Database connection closed")
			}
		}()

		snapshots = repository.NewSnapshotRepo(repos.DB)
		endpoints.DB = repos.DB
	}

	storefrontClient := storefront.NewClient(storefront.Options{
		BaseURL:        cfg.Storefront.BaseURL,
		ServiceToken:   cfg.Storefront.ServiceToken,
		Timeout:        cfg.Storefront.Timeout,
		MaxFailures:    cfg.Storefront.MaxFailures,
		BreakerTimeout: cfg.Storefront.BreakerTimeout,
	})
	endpoints.Storefront = storefrontClient

	state := service.NewCoreState(cache.NewItemCache(snapshots, cfg.Cache.SnapshotTTL), ledger.New())
	reconciler := service.NewReconciler(storefrontClient, state)
	orchestrator := service.NewCheckoutOrchestrator(storefrontClient, state, reconciler, cfg.Checkout)

	sharedCartService := service.NewSharedCartService(cfg, service.Dependencies{
		Client:       storefrontClient,
		State:        state,
		Reconciler:   reconciler,
		Orchestrator: orchestrator,
		Lists:        cache.NewRedisCache(redisClient, cfg.Cache.DefaultTTL),
		Limiter:      repository.NewRateLimitRepo(redisClient, cfg),
		Verifier:     stripe.NewWebhookVerifier(cfg.Stripe.WebhookSecret),
	})
	sharedCartHandler := handlers.NewSharedCartHandler(sharedCartService)
	webhookHandler := handlers.NewPaymentWebhookHandler(sharedCartService)
	authMiddleware := middleware.NewAuthMiddleware([]byte(cfg.Security.JWTKey))

	healthChecker, err := health.NewHealthHandler(cfg, endpoints)
	if err != nil {
		slog.Error("❌ Error creating health checks", "error", err.Error())
		os.Exit(1)
	}

	slog.Info("storage initialized",
		slog.String("env", cfg.Env),
		slog.String("cache_backend", cfg.Cache.Backend),
		slog.String("version", "1.0.0"))

	// Setup router
	routerMux := http.NewServeMux()
	routerMux.HandleFunc("GET /api/v1/shared-carts", authMiddleware.Authenticate(sharedCartHandler.ListSharedCarts()))
	routerMux.HandleFunc("GET /api/v1/shared-carts/{id}", authMiddleware.Authenticate(sharedCartHandler.GetSharedCart()))
	routerMux.HandleFunc("POST /api/v1/shared-carts/{id}/invitations", authMiddleware.Authenticate(sharedCartHandler.InviteParticipants()))
	routerMux.HandleFunc("GET /api/v1/shared-carts/{id}/invitations", authMiddleware.Authenticate(sharedCartHandler.GetPendingInvitations()))
	routerMux.HandleFunc("POST /api/v1/shared-carts/{id}/checkout", authMiddleware.Authenticate(sharedCartHandler.Checkout()))
	routerMux.HandleFunc("GET /api/v1/shared-carts/{id}/checkout", authMiddleware.Authenticate(sharedCartHandler.GetCheckoutStatus()))
	routerMux.HandleFunc("POST /api/v1/shared-carts/{id}/close", authMiddleware.Authenticate(sharedCartHandler.CloseCart()))
	routerMux.HandleFunc("POST /api/v1/shared-carts/{id}/cancel", authMiddleware.Authenticate(sharedCartHandler.CancelCart()))
	routerMux.HandleFunc("POST /api/v1/payments/webhook", webhookHandler.HandleStripeWebhook())
	routerMux.Handle("GET /metrics", metrics.Handler())
	routerMux.Handle("GET /health", healthChecker.Handler())

	// Middleware chaining
	var handler http.Handler = routerMux
	handler = metrics.Middleware(handler)
	handler = middleware.Logging(handler)
	handler = otelhttp.NewHandler(handler, "shared-cart-service")

	// Setup http server
	server := http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("🚀 Server is starting...", slog.String("address", cfg.Addr))

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			slog.Error("❌ Failed to start server", slog.Any("error", err.Error()))
		}
	}()

	<-done

	slog.Warn("🛑 Shutdown signal received. Preparing to stop the server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("⚠️ Server shutdown encountered an issue", slog.String("error", err.Error()))
	} else {
		slog.Info("✅ Server shut down gracefully. All connections closed.")
	}

}
