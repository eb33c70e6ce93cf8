// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the domain/service
// layer from concrete implementations.
package port

import (
	"context"

	"github.com/cardscout/cardscout-go/internal/catalog"
	"github.com/cardscout/cardscout-go/internal/domain"
)

// CatalogSource supplies the raw (cards, rules) collections. Implemented by
// the curated issuer registry and by the remote feed client.
type CatalogSource interface {
	// Name identifies the source in logs and metrics.
	Name() string
	FetchCards(ctx context.Context) ([]domain.CardProduct, error)
	FetchRules(ctx context.Context) ([]domain.EarningRule, error)
}

// SnapshotProvider hands out the current consistent catalog snapshot.
type SnapshotProvider interface {
	Current() (*catalog.Snapshot, error)
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
}
