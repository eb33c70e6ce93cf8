package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cardscout/cardscout-go/internal/catalog"
	"github.com/cardscout/cardscout-go/internal/config"
	"github.com/cardscout/cardscout-go/internal/domain"
	"github.com/cardscout/cardscout-go/internal/handler"
	"github.com/cardscout/cardscout-go/internal/infra/cache"
	"github.com/cardscout/cardscout-go/internal/infra/observability"
	"github.com/cardscout/cardscout-go/internal/infra/resilience"
	"github.com/cardscout/cardscout-go/internal/infra/source"
	"github.com/cardscout/cardscout-go/internal/normalize"
	"github.com/cardscout/cardscout-go/internal/port"
	"github.com/cardscout/cardscout-go/internal/service"
	"github.com/cardscout/cardscout-go/internal/valuation"

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
		zap.Bool("use_feed", cfg.UseFeed),
		zap.String("data_dir", cfg.DataDir),
		zap.Duration("refresh_interval", cfg.RefreshInterval),
		zap.Duration("cache_ttl", cfg.CacheTTL),
		zap.Int("max_recommendations", cfg.MaxRecommendations),
	)

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "cardscout")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Cache ---
	recCache := cache.New[*domain.ComputedRecommendation](cfg.CacheTTL)

	// --- Catalog source ---
	var catalogSource port.CatalogSource
	if cfg.UseFeed {
		logger.Info("using remote catalog feed", zap.String("feed_url", cfg.FeedURL))
		resilienceCfg := resilience.Config{
			MaxRetries:     cfg.MaxRetries,
			InitialBackoff: cfg.InitialBackoff,
			MaxConcurrency: cfg.MaxConcurrency,
		}
		cb := resilience.NewCircuitBreaker("catalog-feed")
		httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
		catalogSource = source.NewFeedClient(httpClient, cfg.FeedURL, cb, resilienceCfg)
	} else {
		logger.Info("using built-in card registry")
		catalogSource = source.NewRegistry()
	}

	// --- Catalog store + refresher ---
	store := catalog.NewStore()
	persister := catalog.NewPersister(cfg.DataDir, cfg.CatalogTTL)
	refresher := service.NewRefresher(catalogSource, store, persister, metrics, logger, cfg.RefreshInterval)

	// Cold start: a fresh persisted catalog avoids hitting the source,
	// otherwise fetch now.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := refresher.LoadFromDisk(ctx); err != nil || persister.Stale() {
		var notFound *domain.ErrNotFound
		if err != nil && !errors.As(err, &notFound) {
			logger.Warn("persisted catalog unreadable", zap.Error(err))
		}
		if err := refresher.RefreshNow(ctx); err != nil {
			// A stale-but-loaded catalog keeps the service up without a source.
			if _, snapErr := store.Current(); snapErr != nil {
				logger.Fatal("no catalog available", zap.Error(err))
			}
			logger.Warn("initial refresh failed, serving persisted catalog", zap.Error(err))
		}
	}

	go refresher.Run(ctx)

	// --- Services ---
	pointValues, err := valuation.NewDefault(cfg.DefaultPointValue)
	if err != nil {
		logger.Fatal("invalid point valuation config", zap.Error(err))
	}
	recommender := service.NewRecommender(
		normalize.MustDefault(),
		pointValues,
		store,
		recCache,
		metrics,
		logger,
		cfg.MaxRecommendations,
	)

	// --- Router ---
	router := handler.NewRouter(handler.Deps{
		Recommender: recommender,
		Refresher:   refresher,
		Snapshots:   store,
		Metrics:     metrics,
		Logger:      logger,
		AdminSecret: cfg.AdminJWTSecret,
	})

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
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
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
