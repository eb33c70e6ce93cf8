package handler

import (
	"net/http"
	"time"

	"github.com/cardscout/cardscout-go/internal/domain"
	"github.com/cardscout/cardscout-go/internal/infra/observability"
	"github.com/cardscout/cardscout-go/internal/port"
	"github.com/cardscout/cardscout-go/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// Deps bundles everything the router needs.
type Deps struct {
	Recommender *service.Recommender
	Refresher   *service.Refresher
	Snapshots   port.SnapshotProvider
	Metrics     *observability.Metrics
	Logger      *zap.Logger
	AdminSecret string
}

// NewRouter creates the HTTP router with all routes and middleware.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(d.Logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler())
	r.Get("/readyz", readyzHandler(d.Snapshots))
	r.Handle("/metrics", promhttp.HandlerFor(d.Metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {
		r.Get("/recommend", recommendHandler(d.Recommender, d.Logger))
		r.Get("/cards", listCardsHandler(d.Recommender, d.Logger))
		r.Get("/cards/{cardId}/match", cardMatchHandler(d.Recommender, d.Logger))
		r.Get("/stats", statsHandler(d.Metrics, d.Snapshots, d.Logger))

		// Protected admin routes
		r.Group(func(r chi.Router) {
			r.Use(AdminAuthMiddleware(d.AdminSecret, d.Logger))
			r.Post("/admin/refresh", adminRefreshHandler(d.Refresher, d.Snapshots, d.Logger))
		})
	})

	return r
}

// ============================================================
// Recommendations — GET /v1/recommend
// ============================================================

func recommendHandler(svc *service.Recommender, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/recommend")
		defer span.End()

		query := r.URL.Query().Get("query")
		if query == "" {
			writeError(w, http.StatusBadRequest, "query parameter is required")
			return
		}
		span.SetAttributes(attribute.String("query", query))

		opts := domain.ResolveOptions{
			MaxResults:      parseIntParam(r, "max_results", 0),
			IncludeBusiness: parseBoolParam(r, "include_business"),
			SpendingAmount:  parseFloatParam(r, "spend", 0),
		}

		rec, err := svc.Resolve(ctx, query, opts)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, rec)
	}
}

// ============================================================
// Catalog — GET /v1/cards, GET /v1/cards/{cardId}/match
// ============================================================

func listCardsHandler(svc *service.Recommender, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/cards")
		defer span.End()

		cards, err := svc.Cards(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"cards": cards,
			"count": len(cards),
		})
	}
}

type cardMatchResponse struct {
	Card         domain.CardProduct  `json:"card"`
	Matched      bool                `json:"matched"`
	MatchingRule *domain.EarningRule `json:"matching_rule,omitempty"`
}

func cardMatchHandler(svc *service.Recommender, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/cards/{cardId}/match")
		defer span.End()

		cardID := chi.URLParam(r, "cardId")
		query := r.URL.Query().Get("query")
		if query == "" {
			writeError(w, http.StatusBadRequest, "query parameter is required")
			return
		}
		span.SetAttributes(
			attribute.String("card.id", cardID),
			attribute.String("query", query),
		)

		card, rule, found, err := svc.BestRuleForCard(ctx, cardID, query)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		resp := cardMatchResponse{Card: card, Matched: found}
		if found {
			resp.MatchingRule = &rule
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// ============================================================
// Stats — GET /v1/stats
// ============================================================

type statsResponse struct {
	Catalog struct {
		Version  string    `json:"version"`
		LoadedAt time.Time `json:"loaded_at"`
		Cards    int       `json:"cards"`
		Rules    int       `json:"rules"`
	} `json:"catalog"`
	Queries *observability.StatsSnapshot `json:"queries"`
}

func statsHandler(metrics *observability.Metrics, snapshots port.SnapshotProvider, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, span := tracer.Start(r.Context(), "GET /v1/stats")
		defer span.End()

		snap, err := snapshots.Current()
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		var resp statsResponse
		resp.Catalog.Version = snap.Version
		resp.Catalog.LoadedAt = snap.LoadedAt
		resp.Catalog.Cards = len(snap.Cards())
		resp.Catalog.Rules = len(snap.Rules())
		resp.Queries = metrics.GetStatsSnapshot()
		writeJSON(w, http.StatusOK, resp)
	}
}

// ============================================================
// Admin — POST /v1/admin/refresh
// ============================================================

func adminRefreshHandler(refresher *service.Refresher, snapshots port.SnapshotProvider, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/admin/refresh")
		defer span.End()

		logger.Info("manual catalog refresh requested",
			zap.String("subject", AdminSubjectFromContext(ctx)),
		)

		if err := refresher.RefreshNow(ctx); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		snap, err := snapshots.Current()
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"status":  "refreshed",
			"version": snap.Version,
			"cards":   len(snap.Cards()),
			"rules":   len(snap.Rules()),
		})
	}
}

// ============================================================
// Operational
// ============================================================

func healthzHandler() http.HandlerFunc {
	start := time.Now()
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":  "ok",
			"service": "cardscout",
			"uptime":  time.Since(start).String(),
		})
	}
}

// readyzHandler reports ready only once a catalog snapshot is loaded.
func readyzHandler(snapshots port.SnapshotProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := snapshots.Current(); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "catalog not loaded"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}
