// Package catalog holds the immutable (cards, rules) snapshot the resolve
// pipeline reads, plus the atomic store that swaps snapshots wholesale on
// refresh. Readers never observe cards and rules from different loads.
package catalog

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/cardscout/cardscout-go/internal/domain"

	"github.com/google/uuid"
)

// Snapshot is a read-only view of the catalog. Rules keep their catalog
// order; the matcher relies on it as the documented tie-break.
type Snapshot struct {
	Version  string
	LoadedAt time.Time

	cards map[string]domain.CardProduct
	order []domain.CardProduct
	rules []domain.EarningRule
}

// NewSnapshot validates the supplied collections and builds a snapshot.
// Validation happens here, at the ingestion boundary, so the resolver itself
// stays a pure, always-succeeding function over well-formed input.
func NewSnapshot(cards []domain.CardProduct, rules []domain.EarningRule) (*Snapshot, error) {
	if cards == nil || rules == nil {
		return nil, &domain.ErrInvalidCatalog{Reason: "nil card or rule collection"}
	}

	indexed := make(map[string]domain.CardProduct, len(cards))
	order := make([]domain.CardProduct, 0, len(cards))
	for i, c := range cards {
		if c.ID == "" {
			return nil, &domain.ErrInvalidCatalog{Reason: fmt.Sprintf("card %d: empty id", i)}
		}
		if _, dup := indexed[c.ID]; dup {
			return nil, &domain.ErrInvalidCatalog{Reason: "duplicate card id: " + c.ID}
		}
		indexed[c.ID] = c
		order = append(order, c)
	}

	for i, r := range rules {
		if r.Multiplier < 0 {
			return nil, &domain.ErrInvalidCatalog{Reason: fmt.Sprintf("rule %d (%s): negative multiplier", i, r.CardID)}
		}
		for _, limit := range r.Caps {
			if limit.AmountDollars <= 0 {
				return nil, &domain.ErrInvalidCatalog{Reason: fmt.Sprintf("rule %d (%s): cap amount must be positive", i, r.CardID)}
			}
			if !validPeriod(limit.Period) {
				return nil, &domain.ErrInvalidCatalog{Reason: fmt.Sprintf("rule %d (%s): unknown cap period %q", i, r.CardID, limit.Period)}
			}
		}
	}

	return &Snapshot{
		Version:  uuid.New().String(),
		LoadedAt: time.Now(),
		cards:    indexed,
		order:    order,
		rules:    rules,
	}, nil
}

func validPeriod(p string) bool {
	switch p {
	case domain.PeriodMonth, domain.PeriodQuarter, domain.PeriodYear, domain.PeriodLifetime:
		return true
	}
	return false
}

// Card returns the card for an id. Dangling rule references simply miss here.
func (s *Snapshot) Card(id string) (domain.CardProduct, bool) {
	c, ok := s.cards[id]
	return c, ok
}

// Cards returns every card in catalog order.
func (s *Snapshot) Cards() []domain.CardProduct {
	return s.order
}

// Rules returns every rule in catalog order.
func (s *Snapshot) Rules() []domain.EarningRule {
	return s.rules
}

// RulesForCard returns the rules owned by one card, in catalog order.
func (s *Snapshot) RulesForCard(cardID string) []domain.EarningRule {
	var out []domain.EarningRule
	for _, r := range s.rules {
		if r.CardID == cardID {
			out = append(out, r)
		}
	}
	return out
}

// Store publishes snapshots with an atomic pointer swap. A refresh replaces
// the whole (cards, rules) pair at once; in-place mutation never happens.
type Store struct {
	current atomic.Pointer[Snapshot]
}

// NewStore creates an empty store. Current returns an error until the first
// Replace.
func NewStore() *Store {
	return &Store{}
}

// Replace publishes a new snapshot.
func (st *Store) Replace(s *Snapshot) {
	st.current.Store(s)
}

// Current returns the latest snapshot.
func (st *Store) Current() (*Snapshot, error) {
	s := st.current.Load()
	if s == nil {
		return nil, &domain.ErrCatalogUnavailable{}
	}
	return s, nil
}
