package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/draintech/lead-intake/internal/address"
	"github.com/draintech/lead-intake/internal/api/router"
	"github.com/draintech/lead-intake/internal/botdefense"
	appconfig "github.com/draintech/lead-intake/internal/config"
	"github.com/draintech/lead-intake/internal/leads"
	"github.com/draintech/lead-intake/internal/observability/metrics"
	"github.com/draintech/lead-intake/internal/ratelimit"
	"github.com/draintech/lead-intake/pkg/logging"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting lead-intake API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	// Lead store: Postgres when configured, in-memory otherwise.
	var repo leads.Repository
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to create pgx pool", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		repo = leads.NewPostgresRepository(pool)
	} else {
		logger.Warn("DATABASE_URL not set, leads stored in memory only")
		repo = leads.NewInMemoryRepository()
	}

	// Rate limiter: Redis when requested, in-process table otherwise.
	var limiter ratelimit.Limiter
	if cfg.RateLimitStore == "redis" && cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		limiter = ratelimit.NewRedisLimiter(redisClient, cfg.RateLimitWindow, cfg.RateLimitMax, logger)
	} else {
		limiter = ratelimit.NewMemoryLimiter(cfg.RateLimitWindow, cfg.RateLimitMax)
	}

	verifier := botdefense.NewTurnstileVerifier(cfg.TurnstileSecretKey,
		botdefense.WithVerifyURL(cfg.TurnstileVerifyURL),
		botdefense.WithLogger(logger),
	)
	if cfg.TurnstileSecretKey == "" {
		logger.Warn("TURNSTILE_SECRET_KEY not set, challenge verification disabled")
	}

	registry := prometheus.NewRegistry()
	intakeMetrics := metrics.NewIntakeMetrics(registry)
	addressMetrics := metrics.NewAddressMetrics(registry)

	addressClient := address.NewClient(cfg.GetAddressAPIKey,
		address.WithBaseURL(cfg.GetAddressBaseURL),
		address.WithLogger(logger),
	)
	if !addressClient.Configured() {
		logger.Warn("GETADDRESS_API_KEY not set, address lookup unavailable")
	}

	pipeline := leads.NewPipeline(limiter, verifier, repo, intakeMetrics, logger)
	leadsHandler := leads.NewHandler(pipeline, repo, cfg.TurnstileSiteKey, logger)
	addressHandler := address.NewHandler(addressClient, addressMetrics, logger)

	r := router.New(&router.Config{
		Logger:             logger,
		LeadsHandler:       leadsHandler,
		AddressHandler:     addressHandler,
		MetricsHandler:     promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		CORSAllowedOrigins: cfg.CORSOrigins,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  cfg.ServerTimeout,
		WriteTimeout: cfg.ServerTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
