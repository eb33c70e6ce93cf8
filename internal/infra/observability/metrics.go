package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds all Prometheus metrics for the card optimizer.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	resolveDuration *prometheus.HistogramVec
	queriesTotal    *prometheus.CounterVec
	candidates      prometheus.Histogram
	cacheHits       *prometheus.CounterVec
	cacheMisses     *prometheus.CounterVec
	refreshesTotal  *prometheus.CounterVec
	sourceErrors    *prometheus.CounterVec
	catalogCards    prometheus.Gauge
	catalogRules    prometheus.Gauge
}

// StatsSnapshot summarizes resolver activity for the GET /v1/stats endpoint.
type StatsSnapshot struct {
	TotalQueries   float64 `json:"total_queries"`
	MatchedQueries float64 `json:"matched_queries"`
	EmptyQueries   float64 `json:"empty_queries"`
	CacheHitRate   float64 `json:"cache_hit_rate"`
	RefreshesOK    float64 `json:"refreshes_ok"`
	RefreshesFail  float64 `json:"refreshes_failed"`
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		resolveDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cardscout_resolve_duration_seconds",
				Help:    "Duration of resolve pipeline stages.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		queriesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cardscout_queries_total",
				Help: "Total resolve queries by outcome.",
			},
			[]string{"outcome"},
		),
		candidates: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "cardscout_candidates_per_query",
				Help:    "Number of (card, rule) candidates per query before truncation.",
				Buckets: []float64{0, 1, 2, 5, 10, 20, 50},
			},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cardscout_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cardscout_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
		refreshesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cardscout_catalog_refreshes_total",
				Help: "Catalog refresh attempts by result.",
			},
			[]string{"result"},
		),
		sourceErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cardscout_source_errors_total",
				Help: "Total errors from catalog sources.",
			},
			[]string{"source"},
		),
		catalogCards: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "cardscout_catalog_cards",
				Help: "Cards in the current catalog snapshot.",
			},
		),
		catalogRules: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "cardscout_catalog_rules",
				Help: "Earning rules in the current catalog snapshot.",
			},
		),
	}
}

// RecordResolveDuration records the duration of a pipeline stage.
func (m *Metrics) RecordResolveDuration(operation string, d time.Duration) {
	m.resolveDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrQuery increments the query counter: "matched" or "empty".
func (m *Metrics) IncrQuery(outcome string) {
	m.queriesTotal.WithLabelValues(outcome).Inc()
}

// RecordCandidates records how many candidates a query produced.
func (m *Metrics) RecordCandidates(n int) {
	m.candidates.Observe(float64(n))
}

// IncrCacheHit increments the cache hit counter.
func (m *Metrics) IncrCacheHit(cache string) {
	m.cacheHits.WithLabelValues(cache).Inc()
}

// IncrCacheMiss increments the cache miss counter.
func (m *Metrics) IncrCacheMiss(cache string) {
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// IncrRefresh increments the refresh counter: "success" or "error".
func (m *Metrics) IncrRefresh(result string) {
	m.refreshesTotal.WithLabelValues(result).Inc()
}

// IncrSourceError increments the source error counter.
func (m *Metrics) IncrSourceError(source string) {
	m.sourceErrors.WithLabelValues(source).Inc()
}

// SetCatalogSize publishes the size of the active snapshot.
func (m *Metrics) SetCatalogSize(cards, rules int) {
	m.catalogCards.Set(float64(cards))
	m.catalogRules.Set(float64(rules))
}

// GetStatsSnapshot reads current counter values for the stats endpoint.
func (m *Metrics) GetStatsSnapshot() *StatsSnapshot {
	matched := getCounterValue(m.queriesTotal, "matched")
	empty := getCounterValue(m.queriesTotal, "empty")
	hits := getCounterValue(m.cacheHits, "recommendation")
	misses := getCounterValue(m.cacheMisses, "recommendation")

	hitRate := float64(0)
	if hits+misses > 0 {
		hitRate = hits / (hits + misses)
	}

	return &StatsSnapshot{
		TotalQueries:   matched + empty,
		MatchedQueries: matched,
		EmptyQueries:   empty,
		CacheHitRate:   hitRate,
		RefreshesOK:    getCounterValue(m.refreshesTotal, "success"),
		RefreshesFail:  getCounterValue(m.refreshesTotal, "error"),
	}
}

// getCounterValue extracts the current float64 value from a CounterVec for a given label.
func getCounterValue(cv *prometheus.CounterVec, label string) float64 {
	counter := cv.WithLabelValues(label)
	m := &dto.Metric{}
	if err := counter.(prometheus.Metric).Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}
