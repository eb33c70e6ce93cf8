package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/cardscout/cardscout-go/internal/domain"
	"github.com/cardscout/cardscout-go/internal/infra/resilience"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("source")

// FeedClient pulls the card catalog from a remote JSON feed.
type FeedClient struct {
	httpClient *http.Client
	baseURL    string
	cb         *gobreaker.CircuitBreaker
	cfg        resilience.Config
}

// NewFeedClient creates a new FeedClient.
func NewFeedClient(httpClient *http.Client, baseURL string, cb *gobreaker.CircuitBreaker, cfg resilience.Config) *FeedClient {
	return &FeedClient{
		httpClient: httpClient,
		baseURL:    baseURL,
		cb:         cb,
		cfg:        cfg,
	}
}

// Name identifies the source in logs and metrics.
func (c *FeedClient) Name() string { return "feed" }

// FetchCards fetches the card list with retry, circuit breaker, and tracing.
func (c *FeedClient) FetchCards(ctx context.Context) ([]domain.CardProduct, error) {
	ctx, span := tracer.Start(ctx, "FeedClient.FetchCards")
	defer span.End()

	var cards []domain.CardProduct
	if err := c.fetch(ctx, "/v1/catalog/cards", "cards", &cards); err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("catalog.cards", len(cards)))
	return cards, nil
}

// FetchRules fetches the earning rule list with retry, circuit breaker, and tracing.
func (c *FeedClient) FetchRules(ctx context.Context) ([]domain.EarningRule, error) {
	ctx, span := tracer.Start(ctx, "FeedClient.FetchRules")
	defer span.End()

	var rules []domain.EarningRule
	if err := c.fetch(ctx, "/v1/catalog/rules", "rules", &rules); err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("catalog.rules", len(rules)))
	return rules, nil
}

func (c *FeedClient) fetch(ctx context.Context, path, resource string, out any) error {
	_, err := c.cb.Execute(func() (any, error) {
		innerErr := resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			url := fmt.Sprintf("%s%s", c.baseURL, path)
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
			if err != nil {
				return err
			}

			resp, err := c.httpClient.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode == http.StatusNotFound {
				return &domain.ErrNotFound{Resource: resource, ID: path}
			}
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("catalog feed returned status %d", resp.StatusCode)
			}

			return json.NewDecoder(resp.Body).Decode(out)
		})
		if innerErr != nil {
			return nil, innerErr
		}
		return nil, nil
	})

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return &domain.ErrCircuitOpen{Service: "catalog-feed"}
		}
		return &domain.ErrExternalService{Service: "catalog-feed", Err: err}
	}
	return nil
}
