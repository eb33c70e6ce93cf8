package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/cardscout/cardscout-go/internal/domain"
)

// On-disk layout: cards.json, rules.json and metadata.json inside one data
// directory. The refresh job writes them so the server can start without
// hitting any upstream source.

const (
	cardsFile    = "cards.json"
	rulesFile    = "rules.json"
	metadataFile = "metadata.json"
)

// Metadata records when the persisted catalog was written.
type Metadata struct {
	LastUpdated time.Time `json:"last_updated"`
	CardsCount  int       `json:"cards_count"`
	RulesCount  int       `json:"rules_count"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Persister saves and loads catalog snapshots as JSON files.
type Persister struct {
	dir string
	ttl time.Duration
}

// NewPersister creates a persister rooted at dir. ttl controls when Stale
// reports the persisted data as expired.
func NewPersister(dir string, ttl time.Duration) *Persister {
	return &Persister{dir: dir, ttl: ttl}
}

// Save writes cards, rules and metadata. Files are written atomically via
// rename so a crashed refresh never leaves a half-written catalog behind.
func (p *Persister) Save(cards []domain.CardProduct, rules []domain.EarningRule) error {
	if err := os.MkdirAll(p.dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	if err := writeJSONFile(filepath.Join(p.dir, cardsFile), cards); err != nil {
		return fmt.Errorf("save cards: %w", err)
	}
	if err := writeJSONFile(filepath.Join(p.dir, rulesFile), rules); err != nil {
		return fmt.Errorf("save rules: %w", err)
	}

	meta := Metadata{
		LastUpdated: time.Now(),
		CardsCount:  len(cards),
		RulesCount:  len(rules),
		ExpiresAt:   time.Now().Add(p.ttl),
	}
	if err := writeJSONFile(filepath.Join(p.dir, metadataFile), meta); err != nil {
		return fmt.Errorf("save metadata: %w", err)
	}
	return nil
}

// Load reads the persisted catalog. A missing data directory returns
// ErrNotFound so callers can fall back to another source.
func (p *Persister) Load() ([]domain.CardProduct, []domain.EarningRule, error) {
	var cards []domain.CardProduct
	if err := readJSONFile(filepath.Join(p.dir, cardsFile), &cards); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, &domain.ErrNotFound{Resource: "persisted catalog", ID: p.dir}
		}
		return nil, nil, fmt.Errorf("load cards: %w", err)
	}
	var rules []domain.EarningRule
	if err := readJSONFile(filepath.Join(p.dir, rulesFile), &rules); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, &domain.ErrNotFound{Resource: "persisted catalog", ID: p.dir}
		}
		return nil, nil, fmt.Errorf("load rules: %w", err)
	}
	return cards, rules, nil
}

// Meta returns the persisted metadata, or nil when none exists.
func (p *Persister) Meta() *Metadata {
	var meta Metadata
	if err := readJSONFile(filepath.Join(p.dir, metadataFile), &meta); err != nil {
		return nil
	}
	return &meta
}

// Stale reports whether the persisted catalog is missing or past its TTL.
func (p *Persister) Stale() bool {
	meta := p.Meta()
	if meta == nil {
		return true
	}
	return time.Now().After(meta.ExpiresAt)
}

func writeJSONFile(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func readJSONFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
