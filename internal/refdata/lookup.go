// Package refdata maps symbols to display names and categories. The
// mapping is injected by the caller — the pipeline never embeds
// market-specific reference data. A missing mapping is an empty string,
// never an error.
package refdata

import (
	"encoding/json"
	"fmt"
	"os"
)

// Lookup resolves presentation metadata for a symbol.
type Lookup interface {
	Name(symbol string) string
	Category(symbol string) string
}

// Entry is one symbol's reference record.
type Entry struct {
	Name     string `json:"name"`
	Category string `json:"category"`
}

// Static is a read-only in-memory lookup.
type Static struct {
	entries map[string]Entry
}

// NewStatic builds a lookup from the given entries. A nil map is a
// valid empty lookup.
func NewStatic(entries map[string]Entry) *Static {
	return &Static{entries: entries}
}

// LoadStatic reads a JSON file of the form
// {"2330": {"name": "TSMC", "category": "Semiconductors"}, ...}.
func LoadStatic(path string) (*Static, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("refdata: %w", err)
	}
	var entries map[string]Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("refdata: parse %s: %w", path, err)
	}
	return &Static{entries: entries}, nil
}

func (s *Static) Name(symbol string) string     { return s.entries[symbol].Name }
func (s *Static) Category(symbol string) string { return s.entries[symbol].Category }
