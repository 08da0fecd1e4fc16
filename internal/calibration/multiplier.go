package calibration

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"jcwest/internal/domain"
)

// Default multiplier band and floor. Estimate totals below the floor
// would produce unstable ratios, so those keys fall through to the next
// aggregation level instead.
const (
	DefaultClampMin    = 0.4
	DefaultClampMax    = 2.5
	DefaultMinEstimate = 1.0
)

// Options tunes factor computation. Zero values select the defaults.
type Options struct {
	ClampMin    float64
	ClampMax    float64
	MinEstimate float64
}

func (o Options) withDefaults() Options {
	if o.ClampMin <= 0 {
		o.ClampMin = DefaultClampMin
	}
	if o.ClampMax <= 0 {
		o.ClampMax = DefaultClampMax
	}
	if o.MinEstimate <= 0 {
		o.MinEstimate = DefaultMinEstimate
	}
	return o
}

// EstimateTotalsByKey sums priced line totals by "trade::code".
func EstimateTotalsByKey(est *domain.EstimateResponse) map[string]float64 {
	out := make(map[string]float64)
	for _, li := range est.LineItems {
		out[domain.TradeItemKey(li.Trade, li.Code)] += li.Total
	}
	return out
}

// VendorTotalsByKey sums quoted vendor totals by "trade::item".
func VendorTotalsByKey(rows []domain.VendorRow) map[string]float64 {
	out := make(map[string]float64)
	for _, r := range rows {
		out[domain.TradeItemKey(r.Trade, r.Item)] += r.QuotedTotal
	}
	return out
}

func totalsByTrade(byKey map[string]float64) map[string]float64 {
	out := make(map[string]float64)
	for key, total := range byKey {
		trade, _ := domain.SplitTradeItemKey(key)
		out[trade] += total
	}
	return out
}

func sum(m map[string]float64) float64 {
	var s float64
	for _, v := range m {
		s += v
	}
	return s
}

// ComputeFactors derives per-trade-item multipliers from an estimate and
// a set of canonical vendor rows. Every estimate trade::item key with a
// total at or above MinEstimate gets a factor, with the vendor numerator
// resolved at the tightest level with signal: the exact key total, then
// the trade-aggregate ratio, then the whole-batch global ratio. Keys
// with no vendor signal at any level are omitted, never defaulted.
// Multipliers are clamped to [ClampMin, ClampMax] and rounded to three
// decimals.
func ComputeFactors(est *domain.EstimateResponse, rows []domain.VendorRow, opts Options) *domain.CalibrationFactors {
	opts = opts.withDefaults()

	estByKey := EstimateTotalsByKey(est)
	vendByKey := VendorTotalsByKey(rows)
	estByTrade := totalsByTrade(estByKey)
	vendByTrade := totalsByTrade(vendByKey)
	estGrand := sum(estByKey)
	vendGrand := sum(vendByKey)

	keys := make([]string, 0, len(estByKey))
	for k := range estByKey {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	factors := make(map[string]float64, len(keys))
	for _, key := range keys {
		estTotal := estByKey[key]
		if estTotal < opts.MinEstimate {
			continue
		}
		trade, _ := domain.SplitTradeItemKey(key)

		var ratio float64
		switch {
		case vendByKey[key] > 0:
			ratio = vendByKey[key] / estTotal
		case vendByTrade[trade] > 0:
			ratio = vendByTrade[trade] / estByTrade[trade]
		case vendGrand > 0:
			ratio = vendGrand / estGrand
		default:
			continue
		}

		factors[key] = round3(clamp(ratio, opts.ClampMin, opts.ClampMax))
	}

	return &domain.CalibrationFactors{
		Type:    domain.FactorsType,
		Factors: factors,
		Meta: map[string]string{
			"computed_at":    time.Now().UTC().Format(time.RFC3339),
			"vendor_rows":    strconv.Itoa(len(rows)),
			"estimate_total": fmt.Sprintf("%.2f", estGrand),
			"vendor_total":   fmt.Sprintf("%.2f", vendGrand),
			"clamp":          fmt.Sprintf("%.1f..%.1f", opts.ClampMin, opts.ClampMax),
		},
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
