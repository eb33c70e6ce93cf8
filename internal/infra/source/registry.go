// Package source supplies catalog data. Two implementations exist: Registry,
// a curated in-process dataset per issuer, and FeedClient, a remote JSON
// catalog feed. Both satisfy port.CatalogSource so the refresher does not
// care where the catalog comes from.
package source

import (
	"context"

	"github.com/cardscout/cardscout-go/internal/domain"
	"github.com/cardscout/cardscout-go/internal/rules"
)

// cardSeed is one curated card. Reward copy in rewardText is parsed by the
// shared text-to-rule parser; structured entries cover what prose cannot
// express (merchant lists, MCCs, stacking notes, intro flags).
type cardSeed struct {
	id         string
	name       string
	network    domain.CardNetwork
	rewardType domain.RewardType
	annualFee  float64
	foreignFee float64
	business   bool
	program    *domain.RewardProgram
	url        string
	rewardText string
	extraRules []domain.EarningRule
}

type issuerDataset struct {
	issuer domain.CardIssuer
	cards  []cardSeed
}

// Registry is the built-in catalog source covering the major US issuers.
type Registry struct {
	datasets []issuerDataset
}

// NewRegistry returns the curated registry.
func NewRegistry() *Registry {
	return &Registry{datasets: builtinDatasets()}
}

// Name identifies the source in logs and metrics.
func (r *Registry) Name() string { return "registry" }

// FetchCards returns every curated card in issuer order.
func (r *Registry) FetchCards(_ context.Context) ([]domain.CardProduct, error) {
	var cards []domain.CardProduct
	for _, ds := range r.datasets {
		for _, seed := range ds.cards {
			cards = append(cards, domain.CardProduct{
				ID:                    seed.id,
				Issuer:                ds.issuer,
				Name:                  seed.name,
				Network:               seed.network,
				Type:                  seed.rewardType,
				AnnualFee:             seed.annualFee,
				ForeignTransactionFee: seed.foreignFee,
				RewardProgram:         seed.program,
				IsBusinessCard:        seed.business,
				OfficialURL:           seed.url,
				Metadata:              map[string]string{"source": "registry"},
			})
		}
	}
	return cards, nil
}

// FetchRules parses each card's reward copy and appends its structured rules.
func (r *Registry) FetchRules(_ context.Context) ([]domain.EarningRule, error) {
	var out []domain.EarningRule
	for _, ds := range r.datasets {
		for _, seed := range ds.cards {
			if seed.rewardText != "" {
				out = append(out, rules.ParseRewardText(seed.id, seed.rewardText)...)
			}
			for _, rule := range seed.extraRules {
				rule.CardID = seed.id
				out = append(out, rule)
			}
		}
	}
	return out, nil
}

func builtinDatasets() []issuerDataset {
	chaseUR := &domain.RewardProgram{ID: "CHASE_UR", Name: "Chase Ultimate Rewards", BasePointValueCents: 1.25}
	amexMR := &domain.RewardProgram{ID: "AMEX_MR", Name: "American Express Membership Rewards", BasePointValueCents: 1.0}
	citiTY := &domain.RewardProgram{ID: "CITI_TY", Name: "Citi ThankYou Points", BasePointValueCents: 1.0}
	capOneMiles := &domain.RewardProgram{ID: "CAPITAL_ONE_MILES", Name: "Capital One Miles", BasePointValueCents: 1.0}
	discoverCB := &domain.RewardProgram{ID: "DISCOVER_CASHBACK", Name: "Discover Cashback", BasePointValueCents: 1.0, Notes: "Cashback match for first year"}
	usBankPts := &domain.RewardProgram{ID: "USBANK_POINTS", Name: "U.S. Bank Rewards", BasePointValueCents: 1.0}
	deltaMiles := &domain.RewardProgram{ID: "DELTA_SKYMILES", Name: "Delta SkyMiles", BasePointValueCents: 1.2}

	return []issuerDataset{
		{
			issuer: domain.CardIssuer{Name: "American Express", WebsiteURL: "https://www.americanexpress.com", SupportContact: "1-800-528-4800"},
			cards: []cardSeed{
				{
					id: "amex_blue_cash_preferred", name: "Blue Cash Preferred", network: domain.NetworkAmex,
					rewardType: domain.RewardCashbackPercent, annualFee: 95, foreignFee: 2.7,
					url: "https://www.americanexpress.com/us/credit-cards/card/blue-cash-preferred/",
					rewardText: "6% cash back at U.S. supermarkets, on up to $6,000 in spending per year. " +
						"6% cash back on select U.S. streaming subscriptions. " +
						"3% cash back at U.S. gas stations. " +
						"3% cash back on transit. " +
						"1% cash back on other purchases.",
				},
				{
					id: "amex_gold", name: "American Express Gold", network: domain.NetworkAmex,
					rewardType: domain.RewardPointsPerDollar, annualFee: 250, program: amexMR,
					url: "https://www.americanexpress.com/us/credit-cards/card/gold-card/",
					extraRules: []domain.EarningRule{
						{
							Description: "4x points at restaurants worldwide",
							Categories:  []string{"restaurants"},
							MCCs:        []string{"5812", "5814"},
							Multiplier:  4, RewardType: domain.RewardPointsPerDollar,
							Caps: []domain.Cap{{AmountDollars: 50000, Period: domain.PeriodYear}},
						},
						{
							Description: "4x points at U.S. supermarkets",
							Categories:  []string{"groceries"},
							MCCs:        []string{"5411"},
							Multiplier:  4, RewardType: domain.RewardPointsPerDollar,
							Caps: []domain.Cap{{AmountDollars: 25000, Period: domain.PeriodYear}},
						},
						{
							Description: "3x points on flights booked directly with airlines",
							Categories:  []string{"travel", "airline"},
							MCCs:        []string{"4511"},
							Multiplier:  3, RewardType: domain.RewardPointsPerDollar,
						},
					},
				},
				{
					id: "amex_delta_gold", name: "Delta SkyMiles Gold", network: domain.NetworkAmex,
					rewardType: domain.RewardMilesPerDollar, annualFee: 150, program: deltaMiles,
					url: "https://www.americanexpress.com/us/credit-cards/card/delta-skymiles-gold/",
					extraRules: []domain.EarningRule{
						{
							Description:   "2x miles on Delta purchases",
							Categories:    []string{"travel", "airline"},
							MerchantNames: []string{"Delta"},
							MCCs:          []string{"4511"},
							Multiplier:    2, RewardType: domain.RewardMilesPerDollar,
						},
						{
							Description: "2x miles at restaurants and U.S. supermarkets",
							Categories:  []string{"restaurants", "groceries"},
							Multiplier:  2, RewardType: domain.RewardMilesPerDollar,
						},
					},
				},
			},
		},
		{
			issuer: domain.CardIssuer{Name: "Chase", WebsiteURL: "https://www.chase.com", SupportContact: "1-800-432-3117"},
			cards: []cardSeed{
				{
					id: "chase_sapphire_preferred", name: "Chase Sapphire Preferred", network: domain.NetworkVisa,
					rewardType: domain.RewardPointsPerDollar, annualFee: 95, program: chaseUR,
					url:        "https://creditcards.chase.com/rewards-credit-cards/sapphire/preferred",
					rewardText: "3x points on dining, including eligible delivery services. 2x points on travel purchases.",
				},
				{
					id: "chase_freedom_flex", name: "Chase Freedom Flex", network: domain.NetworkMastercard,
					rewardType: domain.RewardPointsPerDollar, program: chaseUR,
					url: "https://creditcards.chase.com/cash-back-credit-cards/freedom/flex",
					extraRules: []domain.EarningRule{
						{
							Description: "5x points on rotating quarterly categories, requires activation",
							Categories:  []string{"groceries", "gas", "wholesale", "streaming", "pharmacy"},
							Multiplier:  5, RewardType: domain.RewardPointsPerDollar,
							Caps:       []domain.Cap{{AmountDollars: 1500, Period: domain.PeriodQuarter}},
							IsRotating: true,
						},
						{
							Description: "3x points on dining at restaurants",
							Categories:  []string{"restaurants"},
							Multiplier:  3, RewardType: domain.RewardPointsPerDollar,
						},
						{
							Description: "3x points at drugstores",
							Categories:  []string{"pharmacy"},
							MCCs:        []string{"5912"},
							Multiplier:  3, RewardType: domain.RewardPointsPerDollar,
						},
					},
				},
				{
					id: "chase_amazon_prime_visa", name: "Amazon Prime Rewards Visa", network: domain.NetworkVisa,
					rewardType: domain.RewardCashbackPercent,
					url:        "https://www.chase.com/personal/credit-cards/amazon",
					extraRules: []domain.EarningRule{
						{
							Description:   "5% back at Amazon and Whole Foods",
							Categories:    []string{"online_shopping"},
							MerchantNames: []string{"Amazon", "Whole Foods"},
							MCCs:          []string{"5999"},
							Multiplier:    5, RewardType: domain.RewardCashbackPercent,
							StackingRules: "Requires an eligible Prime membership",
						},
						{
							Description: "2% back at restaurants and gas stations",
							Categories:  []string{"restaurants", "gas"},
							Multiplier:  2, RewardType: domain.RewardCashbackPercent,
						},
					},
				},
				{
					id: "chase_ink_business_cash", name: "Ink Business Cash", network: domain.NetworkVisa,
					rewardType: domain.RewardCashbackPercent, business: true, program: chaseUR,
					url: "https://creditcards.chase.com/business-credit-cards/ink/cash",
					extraRules: []domain.EarningRule{
						{
							Description: "5% cash back at office supply stores and on internet, cable and phone services",
							Categories:  []string{"utilities", "office_supplies"},
							Multiplier:  5, RewardType: domain.RewardCashbackPercent,
							Caps: []domain.Cap{{AmountDollars: 25000, Period: domain.PeriodYear}},
						},
						{
							Description: "2% cash back at gas stations and restaurants",
							Categories:  []string{"gas", "restaurants"},
							Multiplier:  2, RewardType: domain.RewardCashbackPercent,
							Caps: []domain.Cap{{AmountDollars: 25000, Period: domain.PeriodYear}},
						},
					},
				},
			},
		},
		{
			issuer: domain.CardIssuer{Name: "Citi", WebsiteURL: "https://www.citi.com", SupportContact: "1-800-950-5114"},
			cards: []cardSeed{
				{
					id: "citi_custom_cash", name: "Citi Custom Cash", network: domain.NetworkMastercard,
					rewardType: domain.RewardCashbackPercent, program: citiTY,
					url: "https://www.citi.com/credit-cards/citi-custom-cash-credit-card",
					extraRules: []domain.EarningRule{
						{
							Description: "5% cash back in your top eligible spend category each billing cycle",
							Categories:  []string{"groceries", "gas", "restaurants", "transit", "streaming", "pharmacy"},
							Multiplier:  5, RewardType: domain.RewardCashbackPercent,
							Caps: []domain.Cap{{AmountDollars: 500, Period: domain.PeriodMonth}},
						},
					},
				},
				{
					id: "citi_double_cash", name: "Citi Double Cash", network: domain.NetworkMastercard,
					rewardType: domain.RewardCashbackPercent, program: citiTY,
					url: "https://www.citi.com/credit-cards/citi-double-cash-credit-card",
					extraRules: []domain.EarningRule{
						{
							Description: "2% on every purchase: 1% when you buy plus 1% as you pay",
							Categories:  []string{"everything_else", "shopping"},
							Multiplier:  2, RewardType: domain.RewardCashbackPercent,
						},
					},
				},
				{
					id: "citi_costco_anywhere", name: "Costco Anywhere Visa", network: domain.NetworkVisa,
					rewardType: domain.RewardCashbackPercent,
					url:        "https://www.citi.com/credit-cards/citi-costco-anywhere-visa-credit-card",
					extraRules: []domain.EarningRule{
						{
							Description: "4% cash back on eligible gas and EV charging",
							Categories:  []string{"gas"},
							MCCs:        []string{"5541", "5542"},
							Multiplier:  4, RewardType: domain.RewardCashbackPercent,
							Caps: []domain.Cap{{AmountDollars: 7000, Period: domain.PeriodYear}},
						},
						{
							Description:   "2% cash back at Costco and Costco.com",
							Categories:    []string{"wholesale"},
							MerchantNames: []string{"Costco"},
							MCCs:          []string{"5300"},
							Multiplier:    2, RewardType: domain.RewardCashbackPercent,
							StackingRules: "Requires an active Costco membership",
						},
					},
				},
			},
		},
		{
			issuer: domain.CardIssuer{Name: "Capital One", WebsiteURL: "https://www.capitalone.com", SupportContact: "1-800-227-4825"},
			cards: []cardSeed{
				{
					id: "capital_one_savorone", name: "Capital One SavorOne", network: domain.NetworkMastercard,
					rewardType: domain.RewardCashbackPercent,
					url:        "https://www.capitalone.com/credit-cards/savorone-dining-rewards/",
					rewardText: "3% cash back on dining and entertainment. 3% cash back at grocery stores. 1% cash back on other purchases.",
				},
				{
					id: "capital_one_venture", name: "Capital One Venture", network: domain.NetworkVisa,
					rewardType: domain.RewardMilesPerDollar, annualFee: 95, program: capOneMiles,
					url: "https://www.capitalone.com/credit-cards/venture/",
					extraRules: []domain.EarningRule{
						{
							Description: "2x miles on every purchase",
							Categories:  []string{"everything_else", "shopping"},
							Multiplier:  2, RewardType: domain.RewardMilesPerDollar,
						},
						{
							Description: "5x miles on hotels and rental cars booked through Capital One Travel",
							Categories:  []string{"travel", "hotel"},
							MCCs:        []string{"7011"},
							Multiplier:  5, RewardType: domain.RewardMilesPerDollar,
						},
					},
				},
			},
		},
		{
			issuer: domain.CardIssuer{Name: "Discover", WebsiteURL: "https://www.discover.com", SupportContact: "1-800-347-2683"},
			cards: []cardSeed{
				{
					id: "discover_it_cash_back", name: "Discover it Cash Back", network: domain.NetworkDiscover,
					rewardType: domain.RewardCashbackPercent, program: discoverCB,
					url: "https://www.discover.com/credit-cards/cash-back/it-card.html",
					extraRules: []domain.EarningRule{
						{
							Description: "5% cash back on rotating quarterly categories, activation required",
							Categories:  []string{"groceries", "gas", "restaurants", "wholesale", "streaming"},
							Multiplier:  5, RewardType: domain.RewardCashbackPercent,
							Caps:       []domain.Cap{{AmountDollars: 1500, Period: domain.PeriodQuarter}},
							IsRotating: true,
						},
						{
							Description: "Unlimited Cashback Match at the end of your first year",
							Categories:  []string{"everything_else"},
							Multiplier:  1, RewardType: domain.RewardCashbackPercent,
							IsIntroOfferOnly: true,
						},
					},
				},
				{
					id: "discover_it_chrome", name: "Discover it Chrome", network: domain.NetworkDiscover,
					rewardType: domain.RewardCashbackPercent, program: discoverCB,
					url: "https://www.discover.com/credit-cards/cash-back/chrome-card.html",
					extraRules: []domain.EarningRule{
						{
							Description: "2% cash back at gas stations and restaurants",
							Categories:  []string{"gas", "restaurants"},
							MCCs:        []string{"5541", "5812"},
							Multiplier:  2, RewardType: domain.RewardCashbackPercent,
							Caps: []domain.Cap{{AmountDollars: 1000, Period: domain.PeriodQuarter}},
						},
					},
				},
			},
		},
		{
			issuer: domain.CardIssuer{Name: "Bank of America", WebsiteURL: "https://www.bankofamerica.com", SupportContact: "1-800-732-9194"},
			cards: []cardSeed{
				{
					id: "boa_customized_cash", name: "Bank of America Customized Cash Rewards", network: domain.NetworkVisa,
					rewardType: domain.RewardCashbackPercent,
					url:        "https://www.bankofamerica.com/credit-cards/products/cash-back-credit-card/",
					extraRules: []domain.EarningRule{
						{
							Description: "3% cash back in the category of your choice",
							Categories:  []string{"gas", "online_shopping", "pharmacy", "travel", "restaurants"},
							Multiplier:  3, RewardType: domain.RewardCashbackPercent,
							Caps:       []domain.Cap{{AmountDollars: 2500, Period: domain.PeriodQuarter}},
							IsRotating: true,
						},
						{
							Description: "2% cash back at grocery stores and wholesale clubs",
							Categories:  []string{"groceries", "wholesale"},
							Multiplier:  2, RewardType: domain.RewardCashbackPercent,
							Caps: []domain.Cap{{AmountDollars: 2500, Period: domain.PeriodQuarter}},
						},
					},
				},
			},
		},
		{
			issuer: domain.CardIssuer{Name: "U.S. Bank", WebsiteURL: "https://www.usbank.com", SupportContact: "1-800-285-8585"},
			cards: []cardSeed{
				{
					id: "usbank_cash_plus", name: "U.S. Bank Cash+", network: domain.NetworkVisa,
					rewardType: domain.RewardCashbackPercent, program: usBankPts,
					url: "https://www.usbank.com/credit-cards/cash-plus-visa-signature-credit-card.html",
					extraRules: []domain.EarningRule{
						{
							Description: "5% cash back on two categories you choose each quarter",
							Categories:  []string{"utilities", "streaming", "entertainment", "transit"},
							Multiplier:  5, RewardType: domain.RewardCashbackPercent,
							Caps:       []domain.Cap{{AmountDollars: 2000, Period: domain.PeriodQuarter}},
							IsRotating: true,
						},
					},
				},
				{
					id: "usbank_altitude_go", name: "U.S. Bank Altitude Go", network: domain.NetworkVisa,
					rewardType: domain.RewardPointsPerDollar, program: usBankPts,
					url:        "https://www.usbank.com/credit-cards/altitude-go-visa-signature-credit-card.html",
					rewardText: "4x points on dining, takeout and restaurant delivery. 2x points at grocery stores and gas stations. 2x points on streaming services.",
				},
			},
		},
		{
			issuer: domain.CardIssuer{Name: "Wells Fargo", WebsiteURL: "https://www.wellsfargo.com", SupportContact: "1-800-642-4720"},
			cards: []cardSeed{
				{
					id: "wells_fargo_active_cash", name: "Wells Fargo Active Cash", network: domain.NetworkVisa,
					rewardType: domain.RewardCashbackPercent,
					url:        "https://creditcards.wellsfargo.com/active-cash-credit-card",
					extraRules: []domain.EarningRule{
						{
							Description: "2% cash rewards on purchases",
							Categories:  []string{"everything_else", "shopping"},
							Multiplier:  2, RewardType: domain.RewardCashbackPercent,
						},
					},
				},
			},
		},
	}
}
