package rules

import (
	"sort"

	"github.com/cardscout/cardscout-go/internal/domain"
)

// Engine answers "which single rule governs this card for this query".
// Rules are sorted once, most specific first, so the first rule that
// satisfies the match predicate is the authoritative one.
type Engine struct {
	card   domain.CardProduct
	sorted []domain.EarningRule
}

// NewEngine builds an engine for one card. The sort is stable: equally
// specific rules keep their catalog order.
func NewEngine(card domain.CardProduct, rules []domain.EarningRule) *Engine {
	sorted := make([]domain.EarningRule, len(rules))
	copy(sorted, rules)
	sort.SliceStable(sorted, func(i, j int) bool {
		return Specificity(sorted[i]) > Specificity(sorted[j])
	})
	return &Engine{card: card, sorted: sorted}
}

// Specificity scores how narrowly a rule is targeted. Merchant names are the
// strongest signal, then MCCs, then categories. A cap nudges the score up
// and a rotating rule is pushed down since it may not be active.
func Specificity(rule domain.EarningRule) int {
	score := 10*len(rule.Categories) + 20*len(rule.MerchantNames) + 15*len(rule.MCCs)
	if len(rule.Caps) > 0 {
		score += 5
	}
	if rule.IsRotating {
		score -= 10
	}
	return score
}

// Card returns the card this engine was built for.
func (e *Engine) Card() domain.CardProduct {
	return e.card
}

// FindApplicable walks the pre-sorted rules and returns the first that
// matches the resolution. It never invents a default: when no rule matches,
// the second return is false and the caller decides what base rate applies.
func (e *Engine) FindApplicable(res domain.QueryResolution) (domain.EarningRule, bool) {
	for _, rule := range e.sorted {
		if Applies(rule, res) {
			return rule, true
		}
	}
	return domain.EarningRule{}, false
}
