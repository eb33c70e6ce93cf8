// Package domain defines the catalog and recommendation types shared by
// every layer of the card optimizer.
package domain

import "time"

// RewardType classifies how a card or rule pays out.
type RewardType string

const (
	RewardCashbackPercent RewardType = "cashback_percent"
	RewardPointsPerDollar RewardType = "points_per_dollar"
	RewardMilesPerDollar  RewardType = "miles_per_dollar"
	RewardHybrid          RewardType = "hybrid"
)

// CardNetwork is the payment network a card runs on.
type CardNetwork string

const (
	NetworkVisa       CardNetwork = "visa"
	NetworkMastercard CardNetwork = "mastercard"
	NetworkAmex       CardNetwork = "amex"
	NetworkDiscover   CardNetwork = "discover"
)

// CardIssuer identifies the bank behind a card product.
type CardIssuer struct {
	Name           string `json:"name"`
	WebsiteURL     string `json:"website_url"`
	SupportContact string `json:"support_contact,omitempty"`
}

// RewardProgram is a point or mile currency with a self-declared cash value.
// BasePointValueCents is used as a valuation anchor when the global point-value
// table carries no override for the program.
type RewardProgram struct {
	ID                  string  `json:"id"`
	Name                string  `json:"name"`
	BasePointValueCents float64 `json:"base_point_value_cents"`
	Notes               string  `json:"notes,omitempty"`
}

// Cap is a spending limit on an earning rule.
type Cap struct {
	AmountDollars float64 `json:"amount_dollars"`
	Period        string  `json:"period"` // month, quarter, year, lifetime
	Description   string  `json:"description,omitempty"`
}

// Cap periods accepted by the catalog validator.
const (
	PeriodMonth    = "month"
	PeriodQuarter  = "quarter"
	PeriodYear     = "year"
	PeriodLifetime = "lifetime"
)

// EarningRule describes how a card earns rewards for some slice of spend.
// CardID is not guaranteed to reference a card present in the catalog; the
// matcher tolerates dangling references.
type EarningRule struct {
	CardID           string     `json:"card_id"`
	Description      string     `json:"description"`
	Categories       []string   `json:"categories,omitempty"`
	MCCs             []string   `json:"mccs,omitempty"`
	MerchantNames    []string   `json:"merchant_names,omitempty"`
	Multiplier       float64    `json:"multiplier"`
	RewardType       RewardType `json:"reward_type"`
	Caps             []Cap      `json:"caps,omitempty"`
	StackingRules    string     `json:"stacking_rules,omitempty"`
	IsRotating       bool       `json:"is_rotating,omitempty"`
	IsIntroOfferOnly bool       `json:"is_intro_offer_only,omitempty"`
	ValidFrom        *time.Time `json:"valid_from,omitempty"`
	ValidTo          *time.Time `json:"valid_to,omitempty"`
}

// CardProduct is an immutable catalog entry for one credit card.
type CardProduct struct {
	ID                    string            `json:"id"`
	Issuer                CardIssuer        `json:"issuer"`
	Name                  string            `json:"name"`
	Network               CardNetwork       `json:"network"`
	Type                  RewardType        `json:"type"`
	AnnualFee             float64           `json:"annual_fee"`
	ForeignTransactionFee float64           `json:"foreign_transaction_fee"`
	RewardProgram         *RewardProgram    `json:"reward_program,omitempty"`
	IsBusinessCard        bool              `json:"is_business_card,omitempty"`
	OfficialURL           string            `json:"official_url,omitempty"`
	TermsURL              string            `json:"terms_url,omitempty"`
	Metadata              map[string]string `json:"metadata,omitempty"`
}

// QueryResolution is the normalizer's structured view of a free-text query.
// NormalizedCategories is semantically a set: order-irrelevant, deduplicated.
type QueryResolution struct {
	MerchantName         string   `json:"merchant_name"`
	MCC                  string   `json:"mcc,omitempty"`
	NormalizedCategories []string `json:"normalized_categories"`
}

// CardScore is one ranked (card, rule) candidate. A card appears once per
// matching rule, not once per card.
type CardScore struct {
	Card          CardProduct `json:"card"`
	MatchingRule  EarningRule `json:"matching_rule"`
	EffectiveRate float64     `json:"effective_rate_cents_per_dollar"`
	Explanation   string      `json:"explanation"`
	Notes         []string    `json:"notes,omitempty"`
}

// ComputedRecommendation is the final output of a resolve call.
type ComputedRecommendation struct {
	MerchantQuery      string      `json:"merchant_query"`
	ResolvedCategories []string    `json:"resolved_categories"`
	CandidateCards     []CardScore `json:"candidate_cards"`
	Explanation        string      `json:"explanation"`
}

// ResolveOptions tunes a single resolve call.
type ResolveOptions struct {
	MaxResults      int
	IncludeBusiness bool
	// SpendingAmount is the caller's expected spend in dollars. Zero means
	// unknown, which switches cap handling to the blended-rate assumption.
	SpendingAmount float64
}
