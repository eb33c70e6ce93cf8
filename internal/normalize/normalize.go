// Package normalize resolves free-text merchant or category queries into
// a structured QueryResolution: canonical categories, an optional MCC and an
// optional merchant identity.
package normalize

import (
	"fmt"
	"strings"

	"github.com/cardscout/cardscout-go/internal/domain"
)

// Trailing tokens that carry no signal for merchant or category identity.
var noiseSuffixes = []string{".com", "gas station", "store", "stores", "shop", "inc", "llc"}

// Normalizer resolves queries against validated lookup tables.
// It is immutable after construction and safe for concurrent use.
type Normalizer struct {
	merchants  []Merchant
	categories []CategorySynonyms
	mccTable   map[string][]string
}

// New builds a Normalizer from the given tables, validating them up front.
// Malformed table entries are rejected here rather than surfacing as silent
// fallbacks inside the resolve path.
func New(t Tables) (*Normalizer, error) {
	seen := make(map[string]struct{}, len(t.Merchants))
	for i, m := range t.Merchants {
		if m.Key == "" || m.Key != strings.ToLower(m.Key) {
			return nil, &domain.ErrValidation{Field: "merchants", Message: fmt.Sprintf("entry %d: key must be non-empty lowercase", i)}
		}
		if _, dup := seen[m.Key]; dup {
			return nil, &domain.ErrValidation{Field: "merchants", Message: "duplicate key: " + m.Key}
		}
		seen[m.Key] = struct{}{}
		if m.MCC != "" && !validMCC(m.MCC) {
			return nil, &domain.ErrValidation{Field: "merchants", Message: fmt.Sprintf("%s: invalid mcc %q", m.Key, m.MCC)}
		}
		if len(m.Categories) == 0 {
			return nil, &domain.ErrValidation{Field: "merchants", Message: m.Key + ": no categories"}
		}
	}
	seenCat := make(map[string]struct{}, len(t.Categories))
	for i, c := range t.Categories {
		if c.Category == "" {
			return nil, &domain.ErrValidation{Field: "categories", Message: fmt.Sprintf("entry %d: empty category", i)}
		}
		if _, dup := seenCat[c.Category]; dup {
			return nil, &domain.ErrValidation{Field: "categories", Message: "duplicate category: " + c.Category}
		}
		seenCat[c.Category] = struct{}{}
		if len(c.Synonyms) == 0 {
			return nil, &domain.ErrValidation{Field: "categories", Message: c.Category + ": no synonyms"}
		}
	}
	for mcc, cats := range t.MCCCategories {
		if !validMCC(mcc) {
			return nil, &domain.ErrValidation{Field: "mcc_categories", Message: "invalid mcc key: " + mcc}
		}
		if len(cats) == 0 {
			return nil, &domain.ErrValidation{Field: "mcc_categories", Message: mcc + ": no categories"}
		}
	}
	return &Normalizer{
		merchants:  t.Merchants,
		categories: t.Categories,
		mccTable:   t.MCCCategories,
	}, nil
}

// MustDefault returns a Normalizer over the built-in tables. The built-in
// data is covered by tests, so a failure here is a programming error.
func MustDefault() *Normalizer {
	n, err := New(DefaultTables())
	if err != nil {
		panic("normalize: built-in tables invalid: " + err.Error())
	}
	return n
}

func validMCC(mcc string) bool {
	if len(mcc) != 4 {
		return false
	}
	for _, r := range mcc {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Normalize resolves a raw query. Resolution order: known merchant (table
// order is the tie-break), then category synonym, then a synthetic category
// built from the query itself. NormalizedCategories is never empty.
func (n *Normalizer) Normalize(query string) domain.QueryResolution {
	lowered := strings.ToLower(strings.TrimSpace(query))
	cleaned := stripNoise(lowered)

	// Merchant identity first: exact key, key containment, then aliases.
	for _, m := range n.merchants {
		if matchesMerchant(m, lowered, cleaned) {
			return domain.QueryResolution{
				MerchantName:         m.DisplayName,
				MCC:                  m.MCC,
				NormalizedCategories: dedup(m.Categories),
			}
		}
	}

	// Bare category name.
	if cat, ok := n.normalizeCategory(cleaned); ok {
		return domain.QueryResolution{
			MerchantName:         query,
			NormalizedCategories: []string{cat},
		}
	}

	// Synthetic fallback keeps the resolution non-empty for any input.
	return domain.QueryResolution{
		MerchantName:         query,
		NormalizedCategories: []string{synthetic(cleaned)},
	}
}

// CategoriesForMCC returns the categories mapped to an MCC, or nil when the
// code is unknown. Callers union the result into a resolution.
func (n *Normalizer) CategoriesForMCC(mcc string) []string {
	return n.mccTable[mcc]
}

func matchesMerchant(m Merchant, lowered, cleaned string) bool {
	if lowered == m.Key || cleaned == m.Key {
		return true
	}
	if strings.Contains(lowered, m.Key) {
		return true
	}
	for _, alias := range m.Aliases {
		if lowered == alias || strings.Contains(lowered, alias) {
			return true
		}
	}
	return false
}

// normalizeCategory maps a cleaned query onto a canonical category: exact
// key match, exact synonym match, then unanchored synonym containment.
// Containment can false-positive on short tokens; that behavior is kept
// deliberately, matching the merchant-side substring tolerance.
func (n *Normalizer) normalizeCategory(cleaned string) (string, bool) {
	for _, c := range n.categories {
		if cleaned == c.Category {
			return c.Category, true
		}
		for _, syn := range c.Synonyms {
			if cleaned == syn {
				return c.Category, true
			}
		}
	}
	for _, c := range n.categories {
		for _, syn := range c.Synonyms {
			if strings.Contains(cleaned, syn) {
				return c.Category, true
			}
		}
	}
	return "", false
}

// stripNoise removes trailing noise tokens while keeping the query non-empty.
func stripNoise(q string) string {
	for changed := true; changed; {
		changed = false
		for _, suffix := range noiseSuffixes {
			trimmed := strings.TrimSpace(strings.TrimSuffix(q, suffix))
			if trimmed != q && trimmed != "" {
				q = trimmed
				changed = true
			}
		}
	}
	return q
}

func synthetic(cleaned string) string {
	return strings.Join(strings.Fields(cleaned), "_")
}

func dedup(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
