package rules

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/cardscout/cardscout-go/internal/domain"
)

// Text-to-rule parser. Issuer datasets ship earning rules as marketing prose
// ("6% cash back at US supermarkets, on up to $6,000 in spending per year");
// one shared pattern list plus a category keyword table turns that prose
// into structured EarningRules for every issuer.

type rewardPattern struct {
	re         *regexp.Regexp
	rewardType domain.RewardType
	hasCap     bool
}

var rewardPatterns = []rewardPattern{
	// "6% cash back at US supermarkets, on up to $6,000 in spending per year"
	{
		re:         regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*%\s*cash\s*back\s+(?:at|on|for)\s+([^,]+?),\s*on\s+up\s+to\s+\$?(\d+(?:,\d+)?)\s*(?:in\s+spending\s+)?(?:per\s+)?(year|month|quarter)`),
		rewardType: domain.RewardCashbackPercent,
		hasCap:     true,
	},
	// "3% cash back at US gas stations"
	{
		re:         regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*%\s*cash\s*back\s+(?:at|on|for)\s+(.+)`),
		rewardType: domain.RewardCashbackPercent,
	},
	// "3x points on travel"
	{
		re:         regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*x\s+points?\s+(?:on|for|at)\s+(.+)`),
		rewardType: domain.RewardPointsPerDollar,
	},
	// "2 miles per dollar on dining" / "2x miles on hotels"
	{
		re:         regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:x\s+miles|miles?\s+per\s+dollar)\s+(?:on|for|at)\s+(.+)`),
		rewardType: domain.RewardMilesPerDollar,
	},
}

// categoryKeywords maps canonical categories to the phrases that imply them
// in reward copy. Containment checks are unanchored, same as the normalizer.
var categoryKeywords = map[string][]string{
	"groceries":        {"supermarket", "supermarkets", "grocery", "grocery store", "grocery stores", "food store"},
	"restaurants":      {"restaurant", "dining", "dine", "fast food", "cafe", "takeout"},
	"travel":           {"travel", "trip", "airline", "hotel", "flight", "airport", "lodging", "car rental"},
	"gas":              {"gas", "gasoline", "fuel", "gas station", "gas stations", "ev charging"},
	"streaming":        {"streaming", "netflix", "spotify", "hulu", "disney", "select us streaming"},
	"utilities":        {"utility", "phone", "internet", "cable", "electric", "water"},
	"pharmacy":         {"pharmacy", "drugstore", "drugstores", "cvs", "walgreens", "rite aid"},
	"entertainment":    {"entertainment", "movie", "theater", "cinema", "concert"},
	"transit":          {"transit", "uber", "lyft", "taxi", "public transportation", "commuting"},
	"online_shopping":  {"online", "internet purchases", "e-commerce", "online retail"},
	"department_store": {"department store", "department stores"},
	"wholesale":        {"wholesale", "warehouse", "costco", "sam's club"},
	"everything_else":  {"other purchases", "all other purchases", "everything else", "all purchases", "every purchase"},
}

var (
	rotatingRe  = regexp.MustCompile(`(?i)rotating|quarterly|changes`)
	sentenceRe  = regexp.MustCompile(`[.\n;]`)
	marketingRe = regexp.MustCompile(`(?i)compare|versus|\bvs\b|better than|prominent brands|heard of|advertisement|sponsored`)
)

// ParseRewardText extracts earning rules from reward copy for one card.
// Sentences that match no pattern are dropped; callers treat an empty result
// as "no structured rules available", never as an error.
func ParseRewardText(cardID, text string) []domain.EarningRule {
	// "U.S. supermarkets" would otherwise split mid-sentence.
	text = strings.NewReplacer("U.S.", "US", "u.s.", "US").Replace(text)

	var rules []domain.EarningRule
	for _, sentence := range sentenceRe.Split(text, -1) {
		sentence = strings.TrimSpace(sentence)
		if len(sentence) < 10 || marketingRe.MatchString(sentence) {
			continue
		}

		for _, p := range rewardPatterns {
			m := p.re.FindStringSubmatch(sentence)
			if m == nil {
				continue
			}

			multiplier, err := strconv.ParseFloat(m[1], 64)
			if err != nil {
				break
			}
			categoryText := strings.TrimSpace(m[2])

			rule := domain.EarningRule{
				CardID:      cardID,
				Description: sentence,
				Categories:  extractCategories(categoryText),
				Multiplier:  multiplier,
				RewardType:  p.rewardType,
				IsRotating:  rotatingRe.MatchString(sentence),
			}
			if p.hasCap {
				amount, err := strconv.ParseFloat(strings.ReplaceAll(m[3], ",", ""), 64)
				if err == nil {
					rule.Caps = []domain.Cap{{AmountDollars: amount, Period: m[4]}}
				}
			}
			rules = append(rules, rule)
			break
		}
	}
	return rules
}

func extractCategories(text string) []string {
	lowered := strings.ToLower(text)
	var cats []string
	for category, keywords := range categoryKeywords {
		for _, kw := range keywords {
			if strings.Contains(lowered, kw) {
				cats = append(cats, category)
				break
			}
		}
	}
	// Map iteration order is random; sort so parser output is deterministic.
	sort.Strings(cats)
	return cats
}
