// Package service orchestrates the resolve pipeline: query normalization,
// rule matching, valuation and ranking over the current catalog snapshot.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cardscout/cardscout-go/internal/domain"
	"github.com/cardscout/cardscout-go/internal/infra/observability"
	"github.com/cardscout/cardscout-go/internal/normalize"
	"github.com/cardscout/cardscout-go/internal/port"
	"github.com/cardscout/cardscout-go/internal/rank"
	"github.com/cardscout/cardscout-go/internal/rules"
	"github.com/cardscout/cardscout-go/internal/valuation"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("service/recommender")

// Recommender answers "which card should I use at X" over the current
// catalog snapshot.
type Recommender struct {
	normalizer *normalize.Normalizer
	values     *valuation.Table
	snapshots  port.SnapshotProvider
	cache      port.Cache[*domain.ComputedRecommendation]
	metrics    *observability.Metrics
	logger     *zap.Logger
	maxResults int
}

// NewRecommender creates the recommendation service with all dependencies injected.
func NewRecommender(
	normalizer *normalize.Normalizer,
	values *valuation.Table,
	snapshots port.SnapshotProvider,
	cache port.Cache[*domain.ComputedRecommendation],
	metrics *observability.Metrics,
	logger *zap.Logger,
	maxResults int,
) *Recommender {
	return &Recommender{
		normalizer: normalizer,
		values:     values,
		snapshots:  snapshots,
		cache:      cache,
		metrics:    metrics,
		logger:     logger,
		maxResults: maxResults,
	}
}

// Resolve runs the full pipeline for one query. It never returns an error
// for a query that simply matches nothing; that case produces an empty
// recommendation with a fallback explanation.
func (r *Recommender) Resolve(ctx context.Context, query string, opts domain.ResolveOptions) (*domain.ComputedRecommendation, error) {
	ctx, span := tracer.Start(ctx, "Recommender.Resolve")
	defer span.End()
	span.SetAttributes(attribute.String("query", query))

	start := time.Now()
	defer func() {
		r.metrics.RecordResolveDuration("resolve", time.Since(start))
	}()

	if strings.TrimSpace(query) == "" {
		return nil, &domain.ErrValidation{Field: "query", Message: "must not be empty"}
	}

	snap, err := r.snapshots.Current()
	if err != nil {
		return nil, err
	}

	if opts.MaxResults <= 0 {
		opts.MaxResults = r.maxResults
	}

	// Cache keyed by snapshot version so a catalog refresh invalidates
	// every cached answer at once.
	cacheKey := fmt.Sprintf("rec:%s:%s:%d:%t:%.2f",
		snap.Version, strings.ToLower(strings.TrimSpace(query)),
		opts.MaxResults, opts.IncludeBusiness, opts.SpendingAmount)
	if cached, ok := r.cache.Get(cacheKey); ok {
		r.metrics.IncrCacheHit("recommendation")
		return cached, nil
	}
	r.metrics.IncrCacheMiss("recommendation")

	res := r.resolveQuery(query)

	matches := rules.MatchAll(res, snap, opts.IncludeBusiness)
	candidates := make([]domain.CardScore, 0, len(matches))
	for _, m := range matches {
		rate := r.values.EffectiveRate(m.Rule, m.Card.RewardProgram)
		base := r.values.BaseRate(m.Card)
		adjusted, capNotes := valuation.ApplyCap(rate, m.Rule.Caps, opts.SpendingAmount, base)

		candidates = append(candidates, domain.CardScore{
			Card:          m.Card,
			MatchingRule:  m.Rule,
			EffectiveRate: adjusted,
			Explanation:   rank.Explain(m.Card, m.Rule, adjusted),
			Notes:         rank.Notes(m.Rule, capNotes),
		})
	}

	r.metrics.RecordCandidates(len(candidates))
	if len(candidates) == 0 {
		r.metrics.IncrQuery("empty")
	} else {
		r.metrics.IncrQuery("matched")
	}

	rec := rank.Build(query, res.NormalizedCategories, candidates, opts.MaxResults)

	r.logger.Debug("query resolved",
		zap.String("query", query),
		zap.String("merchant", res.MerchantName),
		zap.Strings("categories", res.NormalizedCategories),
		zap.Int("candidates", len(candidates)),
	)

	r.cache.Set(cacheKey, &rec)
	return &rec, nil
}

// BestRuleForCard answers the narrower question "what does this specific
// card earn for X". The bool reports whether any rule applied; a card with
// no applicable rule is not an error.
func (r *Recommender) BestRuleForCard(ctx context.Context, cardID, query string) (domain.CardProduct, domain.EarningRule, bool, error) {
	_, span := tracer.Start(ctx, "Recommender.BestRuleForCard")
	defer span.End()
	span.SetAttributes(attribute.String("card.id", cardID))

	if strings.TrimSpace(query) == "" {
		return domain.CardProduct{}, domain.EarningRule{}, false, &domain.ErrValidation{Field: "query", Message: "must not be empty"}
	}

	snap, err := r.snapshots.Current()
	if err != nil {
		return domain.CardProduct{}, domain.EarningRule{}, false, err
	}

	card, ok := snap.Card(cardID)
	if !ok {
		return domain.CardProduct{}, domain.EarningRule{}, false, &domain.ErrNotFound{Resource: "card", ID: cardID}
	}

	res := r.resolveQuery(query)
	engine := rules.NewEngine(card, snap.RulesForCard(cardID))
	rule, found := engine.FindApplicable(res)
	return card, rule, found, nil
}

// Cards lists every card in the current snapshot in catalog order.
func (r *Recommender) Cards(ctx context.Context) ([]domain.CardProduct, error) {
	_, span := tracer.Start(ctx, "Recommender.Cards")
	defer span.End()

	snap, err := r.snapshots.Current()
	if err != nil {
		return nil, err
	}
	return snap.Cards(), nil
}

// resolveQuery normalizes the free-text query and widens its categories with
// the MCC table when the merchant carries a known MCC.
func (r *Recommender) resolveQuery(query string) domain.QueryResolution {
	res := r.normalizer.Normalize(query)
	if res.MCC == "" {
		return res
	}
	seen := make(map[string]bool, len(res.NormalizedCategories))
	for _, c := range res.NormalizedCategories {
		seen[c] = true
	}
	for _, c := range r.normalizer.CategoriesForMCC(res.MCC) {
		if !seen[c] {
			res.NormalizedCategories = append(res.NormalizedCategories, c)
			seen[c] = true
		}
	}
	return res
}
