package source_test

import (
	"context"
	"testing"

	"github.com/cardscout/cardscout-go/internal/catalog"
	"github.com/cardscout/cardscout-go/internal/infra/source"
)

func TestRegistry_ProducesValidCatalog(t *testing.T) {
	reg := source.NewRegistry()
	ctx := context.Background()

	cards, err := reg.FetchCards(ctx)
	if err != nil {
		t.Fatalf("fetch cards: %v", err)
	}
	rules, err := reg.FetchRules(ctx)
	if err != nil {
		t.Fatalf("fetch rules: %v", err)
	}

	if len(cards) == 0 || len(rules) == 0 {
		t.Fatalf("registry must not be empty: %d cards, %d rules", len(cards), len(rules))
	}

	// The curated data must pass the same ingestion validation as any feed.
	snap, err := catalog.NewSnapshot(cards, rules)
	if err != nil {
		t.Fatalf("registry data rejected at ingestion: %v", err)
	}

	// Every rule must reference a card that exists; the registry assembles
	// both sides, so a dangling reference here is a data bug.
	for _, r := range snap.Rules() {
		if _, ok := snap.Card(r.CardID); !ok {
			t.Errorf("rule %q references unknown card %s", r.Description, r.CardID)
		}
	}
}

func TestRegistry_ParsesProseRules(t *testing.T) {
	reg := source.NewRegistry()
	rules, err := reg.FetchRules(context.Background())
	if err != nil {
		t.Fatalf("fetch rules: %v", err)
	}

	// Blue Cash Preferred ships its rules as reward copy; the parser must
	// recover the capped supermarket rule from it.
	var found bool
	for _, r := range rules {
		if r.CardID != "amex_blue_cash_preferred" {
			continue
		}
		if r.Multiplier == 6 && len(r.Caps) == 1 && r.Caps[0].AmountDollars == 6000 {
			found = true
		}
	}
	if !found {
		t.Error("expected the parsed 6% supermarket rule with its $6,000/year cap")
	}
}

func TestRegistry_CoversMajorIssuers(t *testing.T) {
	reg := source.NewRegistry()
	cards, _ := reg.FetchCards(context.Background())

	issuers := make(map[string]bool)
	var hasBusiness bool
	for _, c := range cards {
		issuers[c.Issuer.Name] = true
		if c.IsBusinessCard {
			hasBusiness = true
		}
	}

	for _, want := range []string{"American Express", "Chase", "Citi", "Capital One", "Discover"} {
		if !issuers[want] {
			t.Errorf("missing issuer %s", want)
		}
	}
	if !hasBusiness {
		t.Error("registry should include at least one business card")
	}
}

func TestRegistry_RuleQualityFlags(t *testing.T) {
	reg := source.NewRegistry()
	rules, _ := reg.FetchRules(context.Background())

	var rotating, merchantScoped, stacking bool
	for _, r := range rules {
		if r.IsRotating {
			rotating = true
		}
		if len(r.MerchantNames) > 0 {
			merchantScoped = true
		}
		if r.StackingRules != "" {
			stacking = true
		}
		if r.RewardType == "" {
			t.Errorf("rule %q has no reward type", r.Description)
		}
	}
	if !rotating {
		t.Error("expected at least one rotating rule")
	}
	if !merchantScoped {
		t.Error("expected at least one merchant-scoped rule")
	}
	if !stacking {
		t.Error("expected at least one rule with stacking notes")
	}
}
