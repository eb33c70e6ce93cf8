// Package valuation converts matched earning rules into a standardized
// effective rate: cents earned per dollar spent, numerically equal to a
// cashback percentage. It also blends rates across spending caps.
package valuation

import (
	"fmt"
	"strings"

	"github.com/cardscout/cardscout-go/internal/domain"
)

// DefaultPointValueCents is the system-wide fallback: 1 point = 1 cent.
const DefaultPointValueCents = 1.0

// Table maps reward-program ids (upper-cased) to assumed cents per point.
// Built once at load time; unknown or non-positive values are rejected there
// instead of silently defaulting inside the valuation path.
type Table struct {
	values       map[string]float64
	defaultValue float64
}

// NewTable validates and builds a point-valuation table.
func NewTable(values map[string]float64, defaultValue float64) (*Table, error) {
	if defaultValue <= 0 {
		return nil, &domain.ErrValidation{Field: "default_point_value", Message: "must be positive"}
	}
	normalized := make(map[string]float64, len(values))
	for id, v := range values {
		if id == "" {
			return nil, &domain.ErrValidation{Field: "point_values", Message: "empty program id"}
		}
		if v <= 0 {
			return nil, &domain.ErrValidation{Field: "point_values", Message: fmt.Sprintf("%s: value must be positive, got %v", id, v)}
		}
		normalized[strings.ToUpper(id)] = v
	}
	return &Table{values: normalized, defaultValue: defaultValue}, nil
}

// NewDefault builds the built-in valuation table with a caller-supplied
// fallback cents-per-point value.
func NewDefault(defaultValue float64) (*Table, error) {
	return NewTable(defaultPointValues(), defaultValue)
}

// MustDefault returns the built-in valuation table. The built-in data is
// covered by tests, so a failure here is a programming error.
func MustDefault() *Table {
	t, err := NewTable(defaultPointValues(), DefaultPointValueCents)
	if err != nil {
		panic("valuation: built-in point values invalid: " + err.Error())
	}
	return t
}

// Published cents-per-point assumptions for the major transferable
// currencies. Programs absent here fall back to their own declared value.
func defaultPointValues() map[string]float64 {
	return map[string]float64{
		"CHASE_UR":                1.7,
		"AMEX_MR":                 1.7,
		"CITI_TY":                 1.5,
		"CAPITAL_ONE_MILES":       1.6,
		"DISCOVER_CASHBACK":       1.0,
		"BOA_POINTS":              1.0,
		"USBANK_POINTS":           1.2,
		"WELLS_FARGO_POINTS":      1.0,
		"BARCLAYS_POINTS":         1.0,
		"AMERICAN_AIRLINES_MILES": 1.4,
	}
}

// PointValue returns the cents-per-point assumption for a program. Lookup
// order: table override, the program's own declared value, then the default.
func (t *Table) PointValue(program *domain.RewardProgram) float64 {
	if program == nil {
		return t.defaultValue
	}
	if v, ok := t.values[strings.ToUpper(program.ID)]; ok {
		return v
	}
	if program.BasePointValueCents > 0 {
		return program.BasePointValueCents
	}
	return t.defaultValue
}

// EffectiveRate converts a rule into cents earned per dollar spent.
// Cashback multipliers are already percentages; point, mile and hybrid
// multipliers are scaled by the program's point value.
func (t *Table) EffectiveRate(rule domain.EarningRule, program *domain.RewardProgram) float64 {
	switch rule.RewardType {
	case domain.RewardCashbackPercent:
		return rule.Multiplier
	case domain.RewardPointsPerDollar, domain.RewardMilesPerDollar, domain.RewardHybrid:
		return rule.Multiplier * t.PointValue(program)
	}
	return rule.Multiplier * t.defaultValue
}

// BaseRate is what a card earns once a bonus category is exhausted: 1% for
// cashback cards, the card's non-bonused point valuation otherwise.
func (t *Table) BaseRate(card domain.CardProduct) float64 {
	if card.RewardProgram != nil {
		return t.PointValue(card.RewardProgram)
	}
	return 1.0
}

// ApplyCap adjusts an effective rate for spending caps and explains the
// adjustment. Only the first cap is honored; behavior for rules carrying
// simultaneous quarterly and annual caps is undefined upstream, so first
// cap wins.
//
// With no spend hint (spendingAmount == 0) the blend assumes total spend of
// twice the cap: half earns the bonus rate, half the base rate. A supplied
// spend above the cap blends proportionally; a spend within the cap leaves
// the rate untouched.
func ApplyCap(effectiveRate float64, caps []domain.Cap, spendingAmount, baseRate float64) (float64, []string) {
	if len(caps) == 0 {
		return effectiveRate, nil
	}

	limit := caps[0]
	capAmount := limit.AmountDollars

	switch {
	case spendingAmount == 0:
		assumedSpend := capAmount * 2
		blended := (capAmount*effectiveRate + capAmount*baseRate) / assumedSpend
		note := fmt.Sprintf(
			"Spending cap: $%s/%s. Blended rate: %.2f%% (assumes spending exceeds cap)",
			formatDollars(capAmount), limit.Period, blended,
		)
		return blended, []string{note}

	case spendingAmount > capAmount:
		blended := (capAmount*effectiveRate + (spendingAmount-capAmount)*baseRate) / spendingAmount
		note := fmt.Sprintf(
			"Spending cap of $%s/%s exceeded. Blended rate: %.2f%%",
			formatDollars(capAmount), limit.Period, blended,
		)
		return blended, []string{note}

	default:
		note := fmt.Sprintf("Spending cap: $%s/%s (within limit)", formatDollars(capAmount), limit.Period)
		return effectiveRate, []string{note}
	}
}

// formatDollars renders a cap amount with thousands separators, no cents.
func formatDollars(amount float64) string {
	s := fmt.Sprintf("%.0f", amount)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
