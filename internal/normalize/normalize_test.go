package normalize_test

import (
	"testing"

	"github.com/cardscout/cardscout-go/internal/normalize"
)

func TestNormalize_KnownMerchant(t *testing.T) {
	n := normalize.MustDefault()

	res := n.Normalize("Walmart")
	if res.MerchantName != "Walmart" {
		t.Errorf("expected merchant 'Walmart', got '%s'", res.MerchantName)
	}
	if res.MCC != "5331" {
		t.Errorf("expected mcc 5331, got '%s'", res.MCC)
	}
	if len(res.NormalizedCategories) != 2 {
		t.Fatalf("expected 2 categories, got %v", res.NormalizedCategories)
	}
}

func TestNormalize_AliasMatchesSameMerchant(t *testing.T) {
	n := normalize.MustDefault()

	direct := n.Normalize("Walmart")
	alias := n.Normalize("Walmart Supercenter")

	if alias.MerchantName != direct.MerchantName {
		t.Errorf("alias resolved to '%s', direct to '%s'", alias.MerchantName, direct.MerchantName)
	}
	if alias.MCC != direct.MCC {
		t.Errorf("alias mcc '%s' differs from direct mcc '%s'", alias.MCC, direct.MCC)
	}
}

func TestNormalize_ApostropheMerchant(t *testing.T) {
	n := normalize.MustDefault()

	res := n.Normalize("Macy's")
	if res.MerchantName != "Macy's" {
		t.Errorf("expected merchant 'Macy's', got '%s'", res.MerchantName)
	}
	if res.MCC != "5311" {
		t.Errorf("expected mcc 5311, got '%s'", res.MCC)
	}
}

func TestNormalize_CategorySynonym(t *testing.T) {
	n := normalize.MustDefault()

	for query, want := range map[string]string{
		"supermarket":    "groceries",
		"grocery":        "groceries",
		"fuel":           "gas",
		"dining":         "restaurants",
		"uber":           "transit",
		"netflix":        "streaming",
		"movie":          "entertainment",
		"drugstore":      "pharmacy",
		"wholesale club": "wholesale",
	} {
		res := n.Normalize(query)
		if len(res.NormalizedCategories) != 1 || res.NormalizedCategories[0] != want {
			t.Errorf("query %q: expected [%s], got %v", query, want, res.NormalizedCategories)
		}
		if res.MCC != "" {
			t.Errorf("query %q: category match should carry no mcc, got %q", query, res.MCC)
		}
	}
}

func TestNormalize_NoiseSuffixStripped(t *testing.T) {
	n := normalize.MustDefault()

	// Stripping the trailing "store" leaves "food market", an exact
	// groceries synonym.
	res := n.Normalize("food market store")
	if len(res.NormalizedCategories) != 1 || res.NormalizedCategories[0] != "groceries" {
		t.Errorf("expected [groceries], got %v", res.NormalizedCategories)
	}
}

func TestNormalize_SyntheticFallback(t *testing.T) {
	n := normalize.MustDefault()

	res := n.Normalize("Bob's Hardware Emporium")
	if res.MerchantName != "Bob's Hardware Emporium" {
		t.Errorf("fallback keeps the raw query as merchant, got '%s'", res.MerchantName)
	}
	if len(res.NormalizedCategories) != 1 {
		t.Fatalf("expected one synthetic category, got %v", res.NormalizedCategories)
	}
	if res.NormalizedCategories[0] != "bob's_hardware_emporium" {
		t.Errorf("unexpected synthetic category %q", res.NormalizedCategories[0])
	}
}

func TestNormalize_NeverEmpty(t *testing.T) {
	n := normalize.MustDefault()

	for _, query := range []string{"x", "   zzz   ", "1234"} {
		res := n.Normalize(query)
		if len(res.NormalizedCategories) == 0 {
			t.Errorf("query %q produced no categories", query)
		}
	}
}

func TestCategoriesForMCC(t *testing.T) {
	n := normalize.MustDefault()

	cats := n.CategoriesForMCC("4511")
	if len(cats) != 2 || cats[0] != "travel" || cats[1] != "airline" {
		t.Errorf("expected [travel airline], got %v", cats)
	}
	if got := n.CategoriesForMCC("0000"); got != nil {
		t.Errorf("unknown mcc should return nil, got %v", got)
	}
}

func TestNew_RejectsMalformedTables(t *testing.T) {
	cases := map[string]normalize.Tables{
		"uppercase merchant key": {
			Merchants:  []normalize.Merchant{{Key: "Walmart", DisplayName: "Walmart", Categories: []string{"groceries"}}},
			Categories: []normalize.CategorySynonyms{{Category: "gas", Synonyms: []string{"fuel"}}},
		},
		"duplicate merchant key": {
			Merchants: []normalize.Merchant{
				{Key: "walmart", DisplayName: "Walmart", Categories: []string{"groceries"}},
				{Key: "walmart", DisplayName: "Walmart", Categories: []string{"groceries"}},
			},
		},
		"bad mcc": {
			Merchants: []normalize.Merchant{{Key: "walmart", DisplayName: "Walmart", MCC: "53", Categories: []string{"groceries"}}},
		},
		"merchant without categories": {
			Merchants: []normalize.Merchant{{Key: "walmart", DisplayName: "Walmart"}},
		},
		"category without synonyms": {
			Categories: []normalize.CategorySynonyms{{Category: "gas"}},
		},
		"bad mcc table key": {
			MCCCategories: map[string][]string{"abcd": {"gas"}},
		},
	}

	for name, tables := range cases {
		if _, err := normalize.New(tables); err == nil {
			t.Errorf("%s: expected validation error, got nil", name)
		}
	}
}
