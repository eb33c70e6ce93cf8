package service

import (
	"context"
	"time"

	"github.com/cardscout/cardscout-go/internal/catalog"
	"github.com/cardscout/cardscout-go/internal/domain"
	"github.com/cardscout/cardscout-go/internal/infra/observability"
	"github.com/cardscout/cardscout-go/internal/port"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Refresher periodically rebuilds the catalog snapshot from its source and
// persists the raw collections for cold starts.
type Refresher struct {
	source    port.CatalogSource
	store     *catalog.Store
	persister *catalog.Persister
	metrics   *observability.Metrics
	logger    *zap.Logger
	interval  time.Duration
}

// NewRefresher creates a refresher. persister may be nil to disable
// disk persistence.
func NewRefresher(
	source port.CatalogSource,
	store *catalog.Store,
	persister *catalog.Persister,
	metrics *observability.Metrics,
	logger *zap.Logger,
	interval time.Duration,
) *Refresher {
	return &Refresher{
		source:    source,
		store:     store,
		persister: persister,
		metrics:   metrics,
		logger:    logger,
		interval:  interval,
	}
}

// RefreshNow fetches cards and rules concurrently, validates them into a
// snapshot and swaps it in. On any failure the previous snapshot stays
// active untouched.
func (r *Refresher) RefreshNow(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "Refresher.RefreshNow")
	defer span.End()

	var (
		cards []domain.CardProduct
		rules []domain.EarningRule
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c, err := r.source.FetchCards(gCtx)
		if err != nil {
			return err
		}
		cards = c
		return nil
	})
	g.Go(func() error {
		rs, err := r.source.FetchRules(gCtx)
		if err != nil {
			return err
		}
		rules = rs
		return nil
	})

	if err := g.Wait(); err != nil {
		r.metrics.IncrSourceError(r.source.Name())
		r.metrics.IncrRefresh("error")
		r.logger.Error("catalog fetch failed",
			zap.String("source", r.source.Name()),
			zap.Error(err),
		)
		return err
	}

	snap, err := catalog.NewSnapshot(cards, rules)
	if err != nil {
		r.metrics.IncrRefresh("invalid")
		r.logger.Error("catalog rejected at ingestion",
			zap.String("source", r.source.Name()),
			zap.Error(err),
		)
		return err
	}

	r.store.Replace(snap)
	r.metrics.SetCatalogSize(len(cards), len(rules))
	r.metrics.IncrRefresh("success")

	if r.persister != nil {
		if err := r.persister.Save(cards, rules); err != nil {
			// Persistence is best effort, the in-memory snapshot is already live.
			r.logger.Warn("catalog persistence failed", zap.Error(err))
		}
	}

	r.logger.Info("catalog refreshed",
		zap.String("source", r.source.Name()),
		zap.String("version", snap.Version),
		zap.Int("cards", len(cards)),
		zap.Int("rules", len(rules)),
	)
	return nil
}

// LoadFromDisk restores the last persisted catalog, if any. Returns
// domain.ErrNotFound when nothing was persisted yet.
func (r *Refresher) LoadFromDisk(_ context.Context) error {
	if r.persister == nil {
		return &domain.ErrNotFound{Resource: "catalog", ID: "disk"}
	}

	cards, rules, err := r.persister.Load()
	if err != nil {
		return err
	}

	snap, err := catalog.NewSnapshot(cards, rules)
	if err != nil {
		return err
	}

	r.store.Replace(snap)
	r.metrics.SetCatalogSize(len(cards), len(rules))
	r.logger.Info("catalog restored from disk",
		zap.String("version", snap.Version),
		zap.Int("cards", len(cards)),
		zap.Int("rules", len(rules)),
		zap.Bool("stale", r.persister.Stale()),
	)
	return nil
}

// Run refreshes on the configured interval until ctx is cancelled. Failed
// refreshes are logged and retried on the next tick.
func (r *Refresher) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := r.RefreshNow(ctx); err != nil {
				r.logger.Error("scheduled refresh failed", zap.Error(err))
			}
		}
	}
}
