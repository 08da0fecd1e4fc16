package calibration

import (
	"math"
	"sort"

	"jcwest/internal/domain"
)

// CompareRow joins estimate and vendor totals for one trade::item key.
type CompareRow struct {
	Trade         string  `json:"trade"`
	Item          string  `json:"item"`
	EstimateTotal float64 `json:"estimate_total"`
	VendorTotal   float64 `json:"vendor_total"`
	Delta         float64 `json:"delta"`
	DeltaPct      float64 `json:"delta_pct"`
	Multiplier    float64 `json:"multiplier,omitempty"`
}

// CompareReport is the estimate-versus-vendor reconciliation document.
type CompareReport struct {
	Rows          []CompareRow `json:"rows"`
	EstimateTotal float64      `json:"estimate_total"`
	VendorTotal   float64      `json:"vendor_total"`
	Delta         float64      `json:"delta"`
}

// BuildCompare joins estimate line totals against vendor quote totals on
// the trade::item key. The union of both key sets is reported, sorted,
// so one-sided rows (estimated but unquoted, or quoted but unestimated)
// stand out.
func BuildCompare(est *domain.EstimateResponse, rows []domain.VendorRow, factors *domain.CalibrationFactors) *CompareReport {
	estByKey := EstimateTotalsByKey(est)
	vendByKey := VendorTotalsByKey(rows)

	keySet := make(map[string]struct{}, len(estByKey)+len(vendByKey))
	for k := range estByKey {
		keySet[k] = struct{}{}
	}
	for k := range vendByKey {
		keySet[k] = struct{}{}
	}
	keys := make([]string, 0, len(keySet))
	for k := range keySet {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	report := &CompareReport{Rows: make([]CompareRow, 0, len(keys))}
	for _, key := range keys {
		trade, item := domain.SplitTradeItemKey(key)
		estTotal := round2(estByKey[key])
		vendTotal := round2(vendByKey[key])
		row := CompareRow{
			Trade:         trade,
			Item:          item,
			EstimateTotal: estTotal,
			VendorTotal:   vendTotal,
			Delta:         round2(vendTotal - estTotal),
		}
		if estTotal != 0 {
			row.DeltaPct = round2((vendTotal - estTotal) / estTotal * 100)
		}
		if factors != nil {
			row.Multiplier = factors.Factors[key]
		}
		report.Rows = append(report.Rows, row)
		report.EstimateTotal += estTotal
		report.VendorTotal += vendTotal
	}
	report.EstimateTotal = round2(report.EstimateTotal)
	report.VendorTotal = round2(report.VendorTotal)
	report.Delta = round2(report.VendorTotal - report.EstimateTotal)
	return report
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
