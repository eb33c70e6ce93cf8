package service_test

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/cardscout/cardscout-go/internal/catalog"
	"github.com/cardscout/cardscout-go/internal/domain"
	"github.com/cardscout/cardscout-go/internal/infra/cache"
	"github.com/cardscout/cardscout-go/internal/infra/observability"
	"github.com/cardscout/cardscout-go/internal/normalize"
	"github.com/cardscout/cardscout-go/internal/service"
	"github.com/cardscout/cardscout-go/internal/valuation"

	"go.uber.org/zap"
)

// --- Fixtures ---

func testCatalog(t *testing.T) *catalog.Store {
	t.Helper()

	chaseUR := &domain.RewardProgram{ID: "CHASE_UR", Name: "Ultimate Rewards", BasePointValueCents: 1.25}

	cards := []domain.CardProduct{
		{ID: "blue_cash", Name: "Blue Cash Preferred", Type: domain.RewardCashbackPercent},
		{ID: "sapphire", Name: "Sapphire Preferred", Type: domain.RewardPointsPerDollar, RewardProgram: chaseUR},
		{ID: "ink_biz", Name: "Ink Business Cash", Type: domain.RewardCashbackPercent, IsBusinessCard: true},
	}
	rules := []domain.EarningRule{
		{
			CardID: "blue_cash", Description: "6% cash back at US supermarkets",
			Categories: []string{"groceries"}, Multiplier: 6,
			RewardType: domain.RewardCashbackPercent,
			Caps:       []domain.Cap{{AmountDollars: 6000, Period: domain.PeriodYear}},
		},
		{
			CardID: "sapphire", Description: "4x points at grocery stores",
			Categories: []string{"groceries"}, Multiplier: 4,
			RewardType: domain.RewardPointsPerDollar,
		},
		{
			CardID: "ink_biz", Description: "5% cash back at office supply stores",
			Categories: []string{"groceries", "office_supplies"}, Multiplier: 5,
			RewardType: domain.RewardCashbackPercent,
		},
	}

	snap, err := catalog.NewSnapshot(cards, rules)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	store := catalog.NewStore()
	store.Replace(snap)
	return store
}

func newRecommender(t *testing.T, store *catalog.Store) *service.Recommender {
	t.Helper()
	return service.NewRecommender(
		normalize.MustDefault(),
		valuation.MustDefault(),
		store,
		cache.New[*domain.ComputedRecommendation](5*time.Minute),
		observability.NewMetrics(),
		zap.NewNop(),
		5,
	)
}

// --- Tests ---

func TestResolve_GroceriesRanking(t *testing.T) {
	svc := newRecommender(t, testCatalog(t))

	rec, err := svc.Resolve(context.Background(), "groceries", domain.ResolveOptions{})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	if len(rec.CandidateCards) != 2 {
		t.Fatalf("expected 2 candidates (business excluded), got %d", len(rec.CandidateCards))
	}

	// 4x Ultimate Rewards at 1.7 cents/point = 6.8%, uncapped. The 6% card
	// blends to 3.5% because no spend was supplied and the cap kicks in.
	best := rec.CandidateCards[0]
	if best.Card.ID != "sapphire" {
		t.Errorf("expected sapphire first, got %s", best.Card.ID)
	}
	if math.Abs(best.EffectiveRate-6.8) > 1e-9 {
		t.Errorf("expected 6.8, got %v", best.EffectiveRate)
	}

	second := rec.CandidateCards[1]
	if second.Card.ID != "blue_cash" {
		t.Errorf("expected blue_cash second, got %s", second.Card.ID)
	}
	if math.Abs(second.EffectiveRate-3.5) > 1e-9 {
		t.Errorf("expected blended 3.5, got %v", second.EffectiveRate)
	}
	if len(second.Notes) == 0 || !strings.Contains(second.Notes[0], "Spending cap") {
		t.Errorf("expected cap note, got %v", second.Notes)
	}

	if !strings.Contains(rec.Explanation, "Sapphire Preferred offers the best value") {
		t.Errorf("unexpected explanation: %q", rec.Explanation)
	}
}

func TestResolve_SpendWithinCapKeepsFullRate(t *testing.T) {
	svc := newRecommender(t, testCatalog(t))

	rec, err := svc.Resolve(context.Background(), "groceries", domain.ResolveOptions{SpendingAmount: 2000})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	// Within the cap the 6% card is not blended; 6.8% still wins but the
	// gap narrows.
	for _, c := range rec.CandidateCards {
		if c.Card.ID == "blue_cash" && math.Abs(c.EffectiveRate-6.0) > 1e-9 {
			t.Errorf("expected full 6.0 within cap, got %v", c.EffectiveRate)
		}
	}
}

func TestResolve_IncludeBusiness(t *testing.T) {
	svc := newRecommender(t, testCatalog(t))

	rec, err := svc.Resolve(context.Background(), "groceries", domain.ResolveOptions{IncludeBusiness: true})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(rec.CandidateCards) != 3 {
		t.Fatalf("expected 3 candidates with business cards, got %d", len(rec.CandidateCards))
	}
}

func TestResolve_UnknownQueryProducesEmptyRecommendation(t *testing.T) {
	svc := newRecommender(t, testCatalog(t))

	rec, err := svc.Resolve(context.Background(), "parking meters", domain.ResolveOptions{})
	if err != nil {
		t.Fatalf("no-match must not be an error: %v", err)
	}
	if len(rec.CandidateCards) != 0 {
		t.Fatalf("expected no candidates, got %d", len(rec.CandidateCards))
	}
	if !strings.Contains(rec.Explanation, "No specific rewards found") {
		t.Errorf("expected fallback explanation, got %q", rec.Explanation)
	}
}

func TestResolve_EmptyQueryRejected(t *testing.T) {
	svc := newRecommender(t, testCatalog(t))

	_, err := svc.Resolve(context.Background(), "   ", domain.ResolveOptions{})
	if err == nil {
		t.Fatal("expected validation error")
	}
	var validation *domain.ErrValidation
	if !errors.As(err, &validation) {
		t.Errorf("expected ErrValidation, got %T", err)
	}
}

func TestResolve_NoCatalogLoaded(t *testing.T) {
	svc := newRecommender(t, catalog.NewStore())

	_, err := svc.Resolve(context.Background(), "groceries", domain.ResolveOptions{})
	var unavailable *domain.ErrCatalogUnavailable
	if !errors.As(err, &unavailable) {
		t.Fatalf("expected ErrCatalogUnavailable, got %v", err)
	}
}

func TestResolve_SecondCallHitsCache(t *testing.T) {
	svc := newRecommender(t, testCatalog(t))

	first, err := svc.Resolve(context.Background(), "groceries", domain.ResolveOptions{})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	second, err := svc.Resolve(context.Background(), "groceries", domain.ResolveOptions{})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if first != second {
		t.Error("expected the cached recommendation on the second call")
	}
}

func TestResolve_Idempotent(t *testing.T) {
	svc := newRecommender(t, testCatalog(t))

	a, _ := svc.Resolve(context.Background(), "supermarket", domain.ResolveOptions{})
	b, _ := svc.Resolve(context.Background(), "supermarket", domain.ResolveOptions{})
	if len(a.CandidateCards) != len(b.CandidateCards) {
		t.Fatal("repeated resolves must agree")
	}
	for i := range a.CandidateCards {
		if a.CandidateCards[i].Card.ID != b.CandidateCards[i].Card.ID {
			t.Fatal("repeated resolves must preserve order")
		}
	}
}

func TestBestRuleForCard(t *testing.T) {
	svc := newRecommender(t, testCatalog(t))

	card, rule, found, err := svc.BestRuleForCard(context.Background(), "blue_cash", "supermarket")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !found {
		t.Fatal("expected an applicable rule")
	}
	if card.ID != "blue_cash" || rule.Multiplier != 6 {
		t.Errorf("unexpected match: card %s rule %+v", card.ID, rule)
	}

	_, _, found, err = svc.BestRuleForCard(context.Background(), "blue_cash", "movie theater")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found {
		t.Error("no rule should apply to an entertainment query")
	}
}

func TestBestRuleForCard_UnknownCard(t *testing.T) {
	svc := newRecommender(t, testCatalog(t))

	_, _, _, err := svc.BestRuleForCard(context.Background(), "ghost", "groceries")
	var notFound *domain.ErrNotFound
	if !errors.As(err, &notFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCards(t *testing.T) {
	svc := newRecommender(t, testCatalog(t))

	cards, err := svc.Cards(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cards) != 3 {
		t.Errorf("expected 3 cards, got %d", len(cards))
	}
}
