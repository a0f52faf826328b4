package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/quarkfin/platform-go/internal/config"
	"github.com/quarkfin/platform-go/internal/domain"
	"github.com/quarkfin/platform-go/internal/guard"
	"github.com/quarkfin/platform-go/internal/handler"
	"github.com/quarkfin/platform-go/internal/infra/cache"
	"github.com/quarkfin/platform-go/internal/infra/client"
	"github.com/quarkfin/platform-go/internal/infra/identity"
	"github.com/quarkfin/platform-go/internal/infra/observability"
	"github.com/quarkfin/platform-go/internal/infra/resilience"
	"github.com/quarkfin/platform-go/internal/port"
	"github.com/quarkfin/platform-go/internal/service"

	"go.uber.org/zap"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(".env")

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("env", cfg.Env),
		zap.String("log_level", cfg.LogLevel),
		zap.String("api_url", cfg.APIURL),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Int("max_attempts", cfg.MaxAttempts),
		zap.Duration("retry_base_delay", cfg.RetryBaseDelay),
		zap.Bool("breaker_enabled", cfg.BreakerEnabled),
		zap.Int("poll_max_attempts", cfg.PollMaxAttempts),
		zap.Duration("poll_interval", cfg.PollInterval),
		zap.Duration("cache_ttl", cfg.CacheTTL),
	)

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "quarkfin-portal")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Cache ---
	plansCache := cache.New[[]domain.SubscriptionPlan](cfg.CacheTTL)
	defer plansCache.Close()

	// --- Backend client ---
	opts := client.Options{
		BaseURL: cfg.APIURL,
		Timeout: cfg.HTTPTimeout,
		Retry: resilience.NewPolicy(resilience.Config{
			MaxAttempts: cfg.MaxAttempts,
			BaseDelay:   cfg.RetryBaseDelay,
		}),
		TokenSource: identity.ContextTokenSource(),
		Bulkhead:    resilience.NewBulkhead(cfg.MaxConcurrency),
		Metrics:     metrics,
		Logger:      logger,
	}
	if cfg.BreakerEnabled {
		opts.Breaker = resilience.NewCircuitBreaker("quarkfin-api")
	}
	api := client.New(opts)

	// --- Identity ---
	ctx, cancelKeys := context.WithCancel(context.Background())
	defer cancelKeys()

	verifierCfg := identity.VerifierConfig{
		JWKSURL:  cfg.JWKSURL(),
		Issuer:   cfg.Issuer(),
		ClientID: cfg.CognitoClientID,
	}
	if cfg.DevAuth {
		verifierCfg.Secret = []byte(cfg.JWTSecret)
		logger.Warn("dev auth enabled: accepting HS256 tokens signed with JWT_SECRET")
	}
	var sessions port.SessionVerifier
	if v, err := identity.NewVerifier(ctx, verifierCfg, logger); err != nil {
		logger.Warn("session verification unavailable, /app routes disabled", zap.Error(err))
	} else {
		sessions = v
	}

	// --- Route gate ---
	routes := guard.DefaultTable()
	if cfg.RouteTableFile != "" {
		routes, err = guard.LoadTable(cfg.RouteTableFile)
		if err != nil {
			logger.Fatal("failed to load route table", zap.String("file", cfg.RouteTableFile), zap.Error(err))
		}
		logger.Info("route table loaded", zap.String("file", cfg.RouteTableFile), zap.Int("rules", len(routes)))
	}

	// --- Services ---
	platformSvc := service.NewPlatformService(api, plansCache, metrics, logger)

	// --- Router ---
	poll := domain.PollOptions{MaxAttempts: cfg.PollMaxAttempts, Interval: cfg.PollInterval}
	router := handler.NewRouter(platformSvc, sessions, routes, poll, metrics, logger)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 2 * cfg.HTTPTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
