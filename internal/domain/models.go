package domain

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// QuantityItem is a single measured takeoff line within a trade.
// Immutable once emitted by the takeoff engine.
type QuantityItem struct {
	Code        string  `json:"code"`
	Description string  `json:"description"`
	Unit        string  `json:"unit"`
	Quantity    float64 `json:"quantity"`
	Notes       string  `json:"notes,omitempty"`
}

// TradeGroup holds the takeoff items for one trade.
type TradeGroup struct {
	ScopeNotes string         `json:"scope_notes,omitempty"`
	Items      []QuantityItem `json:"items"`
}

// QuantitiesMeta describes the provenance of a quantities document.
type QuantitiesMeta struct {
	ProjectID string `json:"project_id"`
	Source    string `json:"source"`
	PlanPath  string `json:"plan_path"`
	Notes     string `json:"notes,omitempty"`
}

// TradeQuantities is the versioned v0 takeoff document. Trade keys are
// unique; item units are lower-case members of the closed unit set.
type TradeQuantities struct {
	Version string                `json:"version"`
	Meta    QuantitiesMeta        `json:"meta"`
	Trades  map[string]TradeGroup `json:"trades"`
}

// FlatItem is a quantity item joined with its trade, the shape the
// pricing engine consumes.
type FlatItem struct {
	Trade       string  `json:"trade"`
	Code        string  `json:"code"`
	Description string  `json:"description"`
	Unit        string  `json:"unit"`
	Qty         float64 `json:"qty"`
	Notes       string  `json:"notes,omitempty"`
}

// Flatten returns the document's items joined with their trade, trades in
// sorted order so downstream output is deterministic.
func (q *TradeQuantities) Flatten() []FlatItem {
	trades := make([]string, 0, len(q.Trades))
	for t := range q.Trades {
		trades = append(trades, t)
	}
	sort.Strings(trades)

	var out []FlatItem
	for _, t := range trades {
		for _, it := range q.Trades[t].Items {
			out = append(out, FlatItem{
				Trade:       t,
				Code:        it.Code,
				Description: it.Description,
				Unit:        it.Unit,
				Qty:         it.Quantity,
				Notes:       it.Notes,
			})
		}
	}
	return out
}

// Markups holds the overhead and profit percentages of a policy.
type Markups struct {
	OverheadPct float64 `json:"overhead_pct" yaml:"overhead_pct"`
	ProfitPct   float64 `json:"profit_pct" yaml:"profit_pct"`
}

// Policy is the declarative pricing configuration for one region.
// Loaded once per pricing run and never mutated.
type Policy struct {
	ID              string             `json:"policy_id" yaml:"policy_id"`
	Region          string             `json:"region" yaml:"region"`
	Markups         Markups            `json:"markups" yaml:"markups"`
	WasteDefaults   map[string]float64 `json:"waste_defaults" yaml:"waste_defaults"`
	TaxPct          float64            `json:"tax_pct" yaml:"tax_pct"`
	EscalationPct   float64            `json:"escalation_pct" yaml:"escalation_pct"`
	ResolutionOrder []string           `json:"resolution_order" yaml:"resolution_order"`
}

// WastePctFor resolves the waste percentage for a trade: per-trade
// override first, then the global default, then zero.
func (p *Policy) WastePctFor(trade string) float64 {
	t := strings.ToLower(trade)
	if pct, ok := p.WasteDefaults[t]; ok {
		return pct
	}
	return p.WasteDefaults["global_pct"]
}

// PricedLineItem is one fully cascaded estimate line. Source records which
// cost table won resolution and is carried on every total.
type PricedLineItem struct {
	Trade             string  `json:"trade"`
	Code              string  `json:"code"`
	Description       string  `json:"description"`
	Unit              string  `json:"unit"`
	Qty               float64 `json:"qty"`
	UnitCost          float64 `json:"unit_cost"`
	WastePct          float64 `json:"waste_pct"`
	ExtendedBase      float64 `json:"extended_base"`
	ExtendedWithWaste float64 `json:"extended_with_waste"`
	MarkupOverhead    float64 `json:"markup_overhead"`
	MarkupProfit      float64 `json:"markup_profit"`
	SubtotalBeforeTax float64 `json:"subtotal_before_tax"`
	Tax               float64 `json:"tax"`
	Total             float64 `json:"total"`
	Source            string  `json:"source"`
}

// TradeSubtotal is the summed line totals for one trade.
type TradeSubtotal struct {
	Trade    string  `json:"trade"`
	Subtotal float64 `json:"subtotal"`
}

// EstimateResponse is the v0 pricing result. Digests are content hashes
// of the canonical inputs so byte-identical runs are provably identical.
type EstimateResponse struct {
	Version    string            `json:"version"`
	PolicyID   string            `json:"policy_id"`
	Region     string            `json:"region"`
	Trades     []TradeSubtotal   `json:"trades"`
	LineItems  []PricedLineItem  `json:"line_items"`
	GrandTotal float64           `json:"grand_total"`
	Warnings   []string          `json:"warnings"`
	Digests    map[string]string `json:"digests"`
}

// VendorRow is one canonical, classified vendor-quote line item.
type VendorRow struct {
	Vendor      string  `json:"vendor"`
	Trade       string  `json:"trade"`
	Item        string  `json:"item"`
	Description string  `json:"description"`
	Unit        string  `json:"unit"`
	Qty         float64 `json:"qty"`
	UnitCost    float64 `json:"unit_cost,omitempty"`
	LineTotal   float64 `json:"line_total,omitempty"`
	QuotedTotal float64 `json:"quoted_total"`
	Notes       string  `json:"notes,omitempty"`
}

// CalibrationFactors is the derived multiplier table keyed "trade::item".
// Recomputed wholesale on every calibration run.
type CalibrationFactors struct {
	Type    string             `json:"type"`
	Factors map[string]float64 `json:"factors"`
	Meta    map[string]string  `json:"meta"`
}

// FactorsType is the only factors document type emitted.
const FactorsType = "per_trade_item_multiplier"

// TradeItemKey builds the canonical "trade::item" aggregation key.
func TradeItemKey(trade, item string) string {
	return fmt.Sprintf("%s::%s",
		strings.ToLower(strings.TrimSpace(trade)),
		strings.ToLower(strings.TrimSpace(item)))
}

// SplitTradeItemKey is the inverse of TradeItemKey.
func SplitTradeItemKey(key string) (trade, item string) {
	parts := strings.SplitN(key, "::", 2)
	trade = parts[0]
	if len(parts) > 1 {
		item = parts[1]
	}
	return trade, item
}

// PlanFile is a stored blueprint or vendor-quote PDF.
type PlanFile struct {
	ID          uuid.UUID `db:"id" json:"id"`
	ProjectID   string    `db:"project_id" json:"project_id"`
	Name        string    `db:"name" json:"name"`
	Kind        FileKind  `db:"kind" json:"kind"`
	ContentType string    `db:"content_type" json:"content_type"`
	SizeBytes   int64     `db:"size_bytes" json:"size_bytes"`
	StorageKey  string    `db:"storage_key" json:"storage_key"`
	Status      string    `db:"status" json:"status"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// EstimateRun is a persisted pricing run.
type EstimateRun struct {
	ID         uuid.UUID       `db:"id" json:"id"`
	ProjectID  string          `db:"project_id" json:"project_id"`
	PolicyID   string          `db:"policy_id" json:"policy_id"`
	Region     string          `db:"region" json:"region"`
	GrandTotal float64         `db:"grand_total" json:"grand_total"`
	Response   json.RawMessage `db:"response" json:"response"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
}

// CalibrationRun is a persisted calibration run with its factors document.
type CalibrationRun struct {
	ID        uuid.UUID       `db:"id" json:"id"`
	ProjectID string          `db:"project_id" json:"project_id"`
	Factors   json.RawMessage `db:"factors" json:"factors"`
	RowCount  int             `db:"row_count" json:"row_count"`
	FileCount int             `db:"file_count" json:"file_count"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}
