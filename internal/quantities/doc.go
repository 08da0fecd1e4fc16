package quantities

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"jcwest/internal/domain"
)

// tradeEntry is the array-shaped trades element some producers emit.
type tradeEntry struct {
	Trade      string                `json:"trade"`
	ScopeNotes string                `json:"scope_notes,omitempty"`
	Items      []domain.QuantityItem `json:"items"`
}

type rawDocument struct {
	Version string                `json:"version"`
	Meta    domain.QuantitiesMeta `json:"meta"`
	Trades  json.RawMessage       `json:"trades"`
}

// Parse validates and decodes a quantities document. Trades arrive
// either as a map keyed by trade or as an array of {trade, items}
// entries; both normalize to the canonical map shape here so nothing
// downstream ever branches on document shape. Units are lower-cased and
// checked against the closed v0 set.
func Parse(data []byte) (*domain.TradeQuantities, error) {
	if err := ValidateDocument(data); err != nil {
		return nil, err
	}

	var raw rawDocument
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSchemaViolation, err)
	}

	trades, err := decodeTrades(raw.Trades)
	if err != nil {
		return nil, err
	}

	doc := &domain.TradeQuantities{
		Version: raw.Version,
		Meta:    raw.Meta,
		Trades:  trades,
	}
	if err := normalizeUnits(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func decodeTrades(raw json.RawMessage) (map[string]domain.TradeGroup, error) {
	trimmed := strings.TrimSpace(string(raw))
	if strings.HasPrefix(trimmed, "[") {
		var entries []tradeEntry
		if err := json.Unmarshal(raw, &entries); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrSchemaViolation, err)
		}
		trades := make(map[string]domain.TradeGroup, len(entries))
		for _, e := range entries {
			key := strings.ToLower(strings.TrimSpace(e.Trade))
			if key == "" {
				return nil, fmt.Errorf("%w: trade entry with empty trade name", domain.ErrSchemaViolation)
			}
			if _, dup := trades[key]; dup {
				return nil, fmt.Errorf("%w: duplicate trade %q", domain.ErrSchemaViolation, key)
			}
			trades[key] = domain.TradeGroup{ScopeNotes: e.ScopeNotes, Items: e.Items}
		}
		return trades, nil
	}

	var byName map[string]domain.TradeGroup
	if err := json.Unmarshal(raw, &byName); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSchemaViolation, err)
	}
	trades := make(map[string]domain.TradeGroup, len(byName))
	for name, group := range byName {
		key := strings.ToLower(strings.TrimSpace(name))
		if _, dup := trades[key]; dup {
			return nil, fmt.Errorf("%w: duplicate trade %q", domain.ErrSchemaViolation, key)
		}
		trades[key] = group
	}
	return trades, nil
}

func normalizeUnits(doc *domain.TradeQuantities) error {
	for trade, group := range doc.Trades {
		for i := range group.Items {
			unit := domain.Unit(strings.ToLower(strings.TrimSpace(group.Items[i].Unit)))
			if !domain.AllowedUnits[unit] {
				return fmt.Errorf("%w: trade %q item %q has unit %q",
					domain.ErrSchemaViolation, trade, group.Items[i].Code, group.Items[i].Unit)
			}
			group.Items[i].Unit = string(unit)
		}
		doc.Trades[trade] = group
	}
	return nil
}

// Load reads and parses a quantities file, returning the raw bytes for
// digest computation alongside the document.
func Load(path string) (*domain.TradeQuantities, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading quantities %s: %w", path, err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, nil, err
	}
	return doc, data, nil
}
