package pricing

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"jcwest/internal/domain"
)

// CostTable maps "trade::code" keys to unit costs.
type CostTable map[string]float64

// Lookup returns the unit cost for a trade/code pair.
func (t CostTable) Lookup(trade, code string) (float64, bool) {
	v, ok := t[domain.TradeItemKey(trade, code)]
	return v, ok
}

// ParseCostTable decodes a tabular cost document. The header row is
// required and must carry trade, code and unit_cost columns in any
// order; unparseable cost cells skip the row rather than failing the
// table.
func ParseCostTable(data []byte) (CostTable, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCostTableHeader, err)
	}
	cols := map[string]int{}
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	tradeIdx, okT := cols["trade"]
	codeIdx, okC := cols["code"]
	costIdx, okU := cols["unit_cost"]
	if !okT || !okC || !okU {
		return nil, fmt.Errorf("%w: need trade, code, unit_cost columns, got %v",
			domain.ErrCostTableHeader, header)
	}

	table := make(CostTable)
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading cost table: %w", err)
		}
		if len(rec) <= tradeIdx || len(rec) <= codeIdx || len(rec) <= costIdx {
			continue
		}
		trade := strings.TrimSpace(rec[tradeIdx])
		code := strings.TrimSpace(rec[codeIdx])
		if trade == "" || code == "" {
			continue
		}
		cost, err := strconv.ParseFloat(strings.TrimSpace(rec[costIdx]), 64)
		if err != nil {
			continue
		}
		table[domain.TradeItemKey(trade, code)] = cost
	}
	return table, nil
}

// LoadCostTable reads a cost table file, returning the raw bytes
// alongside the parsed table for digest computation.
func LoadCostTable(path string) (CostTable, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading cost table %s: %w", path, err)
	}
	table, err := ParseCostTable(data)
	if err != nil {
		return nil, nil, err
	}
	return table, data, nil
}
