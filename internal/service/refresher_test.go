package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cardscout/cardscout-go/internal/catalog"
	"github.com/cardscout/cardscout-go/internal/domain"
	"github.com/cardscout/cardscout-go/internal/infra/observability"
	"github.com/cardscout/cardscout-go/internal/service"

	"go.uber.org/zap"
)

// --- Mocks ---

type mockSource struct {
	cards    []domain.CardProduct
	rules    []domain.EarningRule
	cardsErr error
	rulesErr error
}

func (m *mockSource) Name() string { return "mock" }

func (m *mockSource) FetchCards(_ context.Context) ([]domain.CardProduct, error) {
	return m.cards, m.cardsErr
}

func (m *mockSource) FetchRules(_ context.Context) ([]domain.EarningRule, error) {
	return m.rules, m.rulesErr
}

// --- Tests ---

func TestRefreshNow_PublishesSnapshot(t *testing.T) {
	src := &mockSource{
		cards: []domain.CardProduct{{ID: "a", Name: "Card A"}},
		rules: []domain.EarningRule{{CardID: "a", Categories: []string{"gas"}, Multiplier: 2}},
	}
	store := catalog.NewStore()
	refresher := service.NewRefresher(src, store, nil, observability.NewMetrics(), zap.NewNop(), time.Hour)

	if err := refresher.RefreshNow(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	snap, err := store.Current()
	if err != nil {
		t.Fatalf("expected a published snapshot: %v", err)
	}
	if len(snap.Cards()) != 1 || len(snap.Rules()) != 1 {
		t.Errorf("unexpected snapshot sizes: %d cards, %d rules", len(snap.Cards()), len(snap.Rules()))
	}
}

func TestRefreshNow_SourceErrorKeepsPreviousSnapshot(t *testing.T) {
	src := &mockSource{
		cards: []domain.CardProduct{{ID: "a"}},
		rules: []domain.EarningRule{},
	}
	store := catalog.NewStore()
	refresher := service.NewRefresher(src, store, nil, observability.NewMetrics(), zap.NewNop(), time.Hour)

	if err := refresher.RefreshNow(context.Background()); err != nil {
		t.Fatalf("initial refresh: %v", err)
	}
	before, _ := store.Current()

	src.rulesErr = errors.New("feed down")
	if err := refresher.RefreshNow(context.Background()); err == nil {
		t.Fatal("expected refresh to fail")
	}

	after, _ := store.Current()
	if after.Version != before.Version {
		t.Error("failed refresh must not replace the active snapshot")
	}
}

func TestRefreshNow_InvalidCatalogRejected(t *testing.T) {
	src := &mockSource{
		cards: []domain.CardProduct{{ID: "dup"}, {ID: "dup"}},
		rules: []domain.EarningRule{},
	}
	store := catalog.NewStore()
	refresher := service.NewRefresher(src, store, nil, observability.NewMetrics(), zap.NewNop(), time.Hour)

	err := refresher.RefreshNow(context.Background())
	if err == nil {
		t.Fatal("expected ingestion to reject duplicate card ids")
	}
	var invalid *domain.ErrInvalidCatalog
	if !errors.As(err, &invalid) {
		t.Errorf("expected ErrInvalidCatalog, got %T", err)
	}
	if _, err := store.Current(); err == nil {
		t.Error("invalid catalog must never be published")
	}
}

func TestRefreshThenLoadFromDisk(t *testing.T) {
	src := &mockSource{
		cards: []domain.CardProduct{{ID: "a", Name: "Card A"}},
		rules: []domain.EarningRule{{CardID: "a", Categories: []string{"gas"}, Multiplier: 2}},
	}
	persister := catalog.NewPersister(t.TempDir(), time.Hour)

	writer := service.NewRefresher(src, catalog.NewStore(), persister, observability.NewMetrics(), zap.NewNop(), time.Hour)
	if err := writer.RefreshNow(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	// A second process restores the same catalog without touching the source.
	coldStore := catalog.NewStore()
	reader := service.NewRefresher(&mockSource{cardsErr: errors.New("unreachable")}, coldStore, persister, observability.NewMetrics(), zap.NewNop(), time.Hour)
	if err := reader.LoadFromDisk(context.Background()); err != nil {
		t.Fatalf("load from disk: %v", err)
	}

	snap, err := coldStore.Current()
	if err != nil {
		t.Fatalf("expected restored snapshot: %v", err)
	}
	if len(snap.Cards()) != 1 {
		t.Errorf("expected 1 restored card, got %d", len(snap.Cards()))
	}
}

func TestLoadFromDisk_NothingPersisted(t *testing.T) {
	persister := catalog.NewPersister(t.TempDir(), time.Hour)
	refresher := service.NewRefresher(&mockSource{}, catalog.NewStore(), persister, observability.NewMetrics(), zap.NewNop(), time.Hour)

	err := refresher.LoadFromDisk(context.Background())
	var notFound *domain.ErrNotFound
	if !errors.As(err, &notFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
