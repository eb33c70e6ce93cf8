// Package rank orders scored candidates and produces the human-readable
// explanations attached to a recommendation.
package rank

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cardscout/cardscout-go/internal/domain"
)

// Build sorts candidates by adjusted rate, truncates to maxResults and
// assembles the final recommendation. The sort is stable: candidates with
// equal rates keep their matcher-stage order. No secondary key is applied.
func Build(query string, resolvedCategories []string, candidates []domain.CardScore, maxResults int) domain.ComputedRecommendation {
	ranked := make([]domain.CardScore, len(candidates))
	copy(ranked, candidates)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].EffectiveRate > ranked[j].EffectiveRate
	})

	if maxResults > 0 && len(ranked) > maxResults {
		ranked = ranked[:maxResults]
	}

	return domain.ComputedRecommendation{
		MerchantQuery:      query,
		ResolvedCategories: resolvedCategories,
		CandidateCards:     ranked,
		Explanation:        overallExplanation(query, resolvedCategories, ranked),
	}
}

// Explain builds the per-candidate sentence: card name, reward-type phrase,
// the adjusted rate to two decimals and the rule description.
func Explain(card domain.CardProduct, rule domain.EarningRule, adjustedRate float64) string {
	return fmt.Sprintf("%s offers %s (%.2f%% effective value) for %s",
		card.Name, rewardPhrase(rule), adjustedRate, rule.Description)
}

// Notes assembles the cautionary notes for a candidate: cap notes from the
// valuation stage plus rule-level warnings and the stacking text verbatim.
func Notes(rule domain.EarningRule, capNotes []string) []string {
	notes := make([]string, 0, len(capNotes)+3)
	notes = append(notes, capNotes...)
	if rule.IsRotating {
		notes = append(notes, "Rotating category - may require activation")
	}
	if rule.IsIntroOfferOnly {
		notes = append(notes, "Introductory offer - limited time")
	}
	if rule.StackingRules != "" {
		notes = append(notes, "Note: "+rule.StackingRules)
	}
	return notes
}

func rewardPhrase(rule domain.EarningRule) string {
	switch rule.RewardType {
	case domain.RewardCashbackPercent:
		return fmt.Sprintf("%g%% cashback", rule.Multiplier)
	case domain.RewardPointsPerDollar:
		return fmt.Sprintf("%gx points", rule.Multiplier)
	case domain.RewardMilesPerDollar:
		return fmt.Sprintf("%gx miles", rule.Multiplier)
	case domain.RewardHybrid:
		return fmt.Sprintf("%gx rewards", rule.Multiplier)
	}
	return fmt.Sprintf("%gx", rule.Multiplier)
}

func overallExplanation(query string, categories []string, ranked []domain.CardScore) string {
	if len(ranked) == 0 {
		return fmt.Sprintf("No specific rewards found for '%s'. Consider cards with flat-rate rewards.", query)
	}

	best := ranked[0]
	explanation := fmt.Sprintf("For %s (%s), %s offers the best value at %.2f%% effective return.",
		query, strings.Join(categories, ", "), best.Card.Name, best.EffectiveRate)

	if len(ranked) > 1 {
		second := ranked[1]
		explanation += fmt.Sprintf(" Other options include %s (%.2f%%).", second.Card.Name, second.EffectiveRate)
	}
	return explanation
}
