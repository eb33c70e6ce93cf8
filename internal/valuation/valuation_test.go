package valuation_test

import (
	"math"
	"strings"
	"testing"

	"github.com/cardscout/cardscout-go/internal/domain"
	"github.com/cardscout/cardscout-go/internal/valuation"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestEffectiveRate_CashbackIsAlreadyPercent(t *testing.T) {
	table := valuation.MustDefault()
	rule := domain.EarningRule{Multiplier: 6, RewardType: domain.RewardCashbackPercent}
	if got := table.EffectiveRate(rule, nil); got != 6 {
		t.Errorf("expected 6.0, got %v", got)
	}
}

func TestEffectiveRate_PointsScaledByProgramValue(t *testing.T) {
	table := valuation.MustDefault()
	program := &domain.RewardProgram{ID: "CHASE_UR", BasePointValueCents: 1.25}
	rule := domain.EarningRule{Multiplier: 4, RewardType: domain.RewardPointsPerDollar}

	// Table override (1.7 cents) wins over the program's declared 1.25.
	if got := table.EffectiveRate(rule, program); !almostEqual(got, 6.8) {
		t.Errorf("expected 6.8, got %v", got)
	}
}

func TestPointValue_FallbackChain(t *testing.T) {
	table := valuation.MustDefault()

	// Unknown program with declared value: program value wins.
	declared := &domain.RewardProgram{ID: "DELTA_SKYMILES", BasePointValueCents: 1.2}
	if got := table.PointValue(declared); !almostEqual(got, 1.2) {
		t.Errorf("expected declared 1.2, got %v", got)
	}

	// Unknown program without declared value: system default.
	bare := &domain.RewardProgram{ID: "MYSTERY_POINTS"}
	if got := table.PointValue(bare); !almostEqual(got, valuation.DefaultPointValueCents) {
		t.Errorf("expected default, got %v", got)
	}

	// No program at all: system default.
	if got := table.PointValue(nil); !almostEqual(got, valuation.DefaultPointValueCents) {
		t.Errorf("expected default for nil program, got %v", got)
	}
}

func TestBaseRate(t *testing.T) {
	table := valuation.MustDefault()

	cashback := domain.CardProduct{ID: "c"}
	if got := table.BaseRate(cashback); got != 1.0 {
		t.Errorf("cashback card base rate should be 1.0, got %v", got)
	}

	points := domain.CardProduct{ID: "p", RewardProgram: &domain.RewardProgram{ID: "CHASE_UR"}}
	if got := table.BaseRate(points); !almostEqual(got, 1.7) {
		t.Errorf("points card base rate should be the point value, got %v", got)
	}
}

func TestApplyCap_NoCapsPassThrough(t *testing.T) {
	rate, notes := valuation.ApplyCap(5.0, nil, 0, 1.0)
	if rate != 5.0 || notes != nil {
		t.Errorf("expected untouched rate and no notes, got %v %v", rate, notes)
	}
}

func TestApplyCap_UnknownSpendBlendsHalfway(t *testing.T) {
	caps := []domain.Cap{{AmountDollars: 1500, Period: domain.PeriodQuarter}}
	rate, notes := valuation.ApplyCap(5.0, caps, 0, 1.0)

	// (cap*rate + cap*base) / (2*cap) = (5+1)/2 = 3.0
	if !almostEqual(rate, 3.0) {
		t.Errorf("expected 3.0, got %v", rate)
	}
	if len(notes) != 1 || !strings.Contains(notes[0], "assumes spending exceeds cap") {
		t.Errorf("unexpected notes: %v", notes)
	}
	if !strings.Contains(notes[0], "$1,500/quarter") {
		t.Errorf("expected formatted cap in note, got %q", notes[0])
	}
}

func TestApplyCap_SpendExceedsCap(t *testing.T) {
	caps := []domain.Cap{{AmountDollars: 1000, Period: domain.PeriodYear}}
	rate, notes := valuation.ApplyCap(5.0, caps, 3000, 1.0)

	// (1000*5 + 2000*1) / 3000 = 7000/3000
	if !almostEqual(rate, 7000.0/3000.0) {
		t.Errorf("expected %v, got %v", 7000.0/3000.0, rate)
	}
	if len(notes) != 1 || !strings.Contains(notes[0], "exceeded") {
		t.Errorf("unexpected notes: %v", notes)
	}
}

func TestApplyCap_SpendWithinCap(t *testing.T) {
	caps := []domain.Cap{{AmountDollars: 6000, Period: domain.PeriodYear}}
	rate, notes := valuation.ApplyCap(6.0, caps, 2000, 1.0)

	if rate != 6.0 {
		t.Errorf("within-cap spend must not change the rate, got %v", rate)
	}
	if len(notes) != 1 || !strings.Contains(notes[0], "within limit") {
		t.Errorf("expected within-limit note, got %v", notes)
	}
}

func TestApplyCap_OnlyFirstCapHonored(t *testing.T) {
	caps := []domain.Cap{
		{AmountDollars: 1000, Period: domain.PeriodQuarter},
		{AmountDollars: 50000, Period: domain.PeriodYear},
	}
	rate, _ := valuation.ApplyCap(4.0, caps, 0, 1.0)
	if !almostEqual(rate, 2.5) {
		t.Errorf("expected blend against the first cap only, got %v", rate)
	}
}

func TestNewTable_Validation(t *testing.T) {
	if _, err := valuation.NewTable(map[string]float64{"X": -1}, 1.0); err == nil {
		t.Error("negative point value must be rejected")
	}
	if _, err := valuation.NewTable(map[string]float64{"": 1}, 1.0); err == nil {
		t.Error("empty program id must be rejected")
	}
	if _, err := valuation.NewTable(nil, 0); err == nil {
		t.Error("non-positive default must be rejected")
	}

	table, err := valuation.NewTable(map[string]float64{"chase_ur": 2.0}, 1.0)
	if err != nil {
		t.Fatalf("valid table rejected: %v", err)
	}
	// Lookup is case-normalized at build time.
	if got := table.PointValue(&domain.RewardProgram{ID: "CHASE_UR"}); !almostEqual(got, 2.0) {
		t.Errorf("expected upper-cased lookup to hit, got %v", got)
	}
}
