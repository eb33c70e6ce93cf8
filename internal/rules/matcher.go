// Package rules matches a query resolution against the catalog's earning
// rules. Matching is OR semantics over three signals: category overlap, MCC
// membership and case-insensitive bidirectional merchant substring
// containment. No weighting is applied between the signals.
package rules

import (
	"strings"

	"github.com/cardscout/cardscout-go/internal/catalog"
	"github.com/cardscout/cardscout-go/internal/domain"
)

// Match pairs a rule with the card that owns it.
type Match struct {
	Card domain.CardProduct
	Rule domain.EarningRule
}

// MatchAll returns every (card, rule) pair that plausibly applies to the
// resolution, in rule catalog order. Rules whose card id is missing from the
// catalog are skipped silently; that is a tolerated data-quality gap, not an
// error. Business-card rules are excluded unless includeBusiness is set.
func MatchAll(res domain.QueryResolution, snap *catalog.Snapshot, includeBusiness bool) []Match {
	var matches []Match
	for _, rule := range snap.Rules() {
		card, ok := snap.Card(rule.CardID)
		if !ok {
			continue
		}
		if card.IsBusinessCard && !includeBusiness {
			continue
		}
		if Applies(rule, res) {
			matches = append(matches, Match{Card: card, Rule: rule})
		}
	}
	return matches
}

// Applies reports whether a single rule matches the resolution.
func Applies(rule domain.EarningRule, res domain.QueryResolution) bool {
	return categoryMatch(rule.Categories, res.NormalizedCategories) ||
		mccMatch(rule.MCCs, res.MCC) ||
		merchantMatch(rule.MerchantNames, res.MerchantName)
}

func categoryMatch(ruleCats, queryCats []string) bool {
	for _, rc := range ruleCats {
		for _, qc := range queryCats {
			if rc == qc {
				return true
			}
		}
	}
	return false
}

func mccMatch(ruleMCCs []string, mcc string) bool {
	if mcc == "" {
		return false
	}
	for _, m := range ruleMCCs {
		if m == mcc {
			return true
		}
	}
	return false
}

func merchantMatch(ruleMerchants []string, merchant string) bool {
	if merchant == "" {
		return false
	}
	lowered := strings.ToLower(merchant)
	for _, m := range ruleMerchants {
		rm := strings.ToLower(m)
		if strings.Contains(lowered, rm) || strings.Contains(rm, lowered) {
			return true
		}
	}
	return false
}
