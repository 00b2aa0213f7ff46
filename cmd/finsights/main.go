package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mbittar/finsights-engine-go/internal/config"
	"github.com/mbittar/finsights-engine-go/internal/engine"
	"github.com/mbittar/finsights-engine-go/internal/handler"
	"github.com/mbittar/finsights-engine-go/internal/infra/cache"
	"github.com/mbittar/finsights-engine-go/internal/infra/client"
	"github.com/mbittar/finsights-engine-go/internal/infra/observability"
	"github.com/mbittar/finsights-engine-go/internal/infra/resilience"
	"github.com/mbittar/finsights-engine-go/internal/port"

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
		zap.String("log_level", cfg.LogLevel),
		zap.Int64("forecast_seed", cfg.ForecastSeed),
		zap.Duration("cache_ttl", cfg.CacheTTL),
		zap.String("enhanced_api_url", cfg.EnhancedAPIURL),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Bool("auth_required", cfg.AuthRequired),
	)

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "finsights-engine")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Cache ---
	resultCache := cache.New[any](cfg.CacheTTL)

	// --- Engine ---
	opts := []engine.Option{}
	if cfg.ForecastSeed != 0 {
		opts = append(opts, engine.WithSeed(cfg.ForecastSeed))
	}
	eng := engine.New(resultCache, metrics, logger, opts...)

	// --- Enhanced analytics provider (optional) ---
	var fetcher port.EnhancedFetcher
	if cfg.EnhancedAPIURL != "" {
		logger.Info("enhanced analytics provider enabled",
			zap.String("url", cfg.EnhancedAPIURL),
		)
		httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
		cb := resilience.NewCircuitBreaker("enhanced-analytics")
		fetcher = client.NewEnhancedClient(httpClient, cfg.EnhancedAPIURL, cb, resilience.Config{
			MaxRetries:     cfg.MaxRetries,
			InitialBackoff: cfg.InitialBackoff,
			MaxConcurrency: cfg.MaxConcurrency,
		})
	} else {
		logger.Info("no enhanced analytics provider configured, local computation only")
	}

	// --- Router ---
	router := handler.NewRouter(eng, fetcher, metrics, logger, handler.AuthConfig{
		Required: cfg.AuthRequired,
		Secret:   cfg.JWTSecret,
	})

	// --- Server with graceful shutdown ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}
