package pricing

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"jcwest/internal/domain"
)

// Inputs carries everything one pricing run consumes. Raw text fields
// feed digest computation and may be nil when the corresponding table
// was not supplied.
type Inputs struct {
	Quantities *domain.TradeQuantities
	Policy     *domain.Policy
	PolicyText []byte

	UnitCosts     CostTable
	UnitCostsText []byte

	VendorCosts     CostTable
	VendorCostsText []byte

	// Factors, when present, scale resolved unit costs per trade::item
	// key before the cascade runs.
	Factors *domain.CalibrationFactors
}

// Price runs the waste/markup/tax cascade over a quantities document and
// returns the v0 estimate response. Missing costs degrade to zero with a
// warning; only a malformed document is fatal.
func Price(in Inputs) (*domain.EstimateResponse, error) {
	q := in.Quantities
	if q == nil || in.Policy == nil {
		return nil, fmt.Errorf("%w: quantities and policy are required", domain.ErrSchemaViolation)
	}
	if q.Version != domain.QuantitiesVersion {
		return nil, fmt.Errorf("%w: quantities version %q", domain.ErrUnsupportedVersion, q.Version)
	}
	if q.Trades == nil {
		return nil, fmt.Errorf("%w: quantities document has no trades", domain.ErrSchemaViolation)
	}

	policy := in.Policy
	order := policy.ResolutionOrder
	if len(order) == 0 {
		order = domain.DefaultResolutionOrder
	}

	resp := &domain.EstimateResponse{
		Version:  domain.QuantitiesVersion,
		PolicyID: policy.ID,
		Region:   policy.Region,
		Warnings: []string{},
	}

	tradeTotals := make(map[string]float64)
	for _, item := range q.Flatten() {
		unitCost, source := resolveCost(order, in.VendorCosts, in.UnitCosts, item.Trade, item.Code)
		if source == domain.SourcePolicyDefaults {
			resp.Warnings = append(resp.Warnings,
				fmt.Sprintf("Missing cost for %s/%s; defaulted to 0.0", item.Trade, item.Code))
		}
		if in.Factors != nil {
			if factor, ok := in.Factors.Factors[domain.TradeItemKey(item.Trade, item.Code)]; ok {
				unitCost *= factor
			}
		}
		if unitCost < 0 {
			unitCost = 0
		}
		unitCost = round4(unitCost)

		wastePct := policy.WastePctFor(item.Trade)

		extendedBase := round2(item.Qty * unitCost)
		extendedWithWaste := round2(extendedBase * (1 + wastePct))
		overhead := round2(extendedWithWaste * policy.Markups.OverheadPct)
		profit := round2((extendedWithWaste + overhead) * policy.Markups.ProfitPct)
		subtotal := round2(extendedWithWaste + overhead + profit)
		tax := round2(subtotal * policy.TaxPct)
		escalation := round2(subtotal * policy.EscalationPct)
		total := round2(subtotal + tax + escalation)

		resp.LineItems = append(resp.LineItems, domain.PricedLineItem{
			Trade:             item.Trade,
			Code:              item.Code,
			Description:       item.Description,
			Unit:              item.Unit,
			Qty:               item.Qty,
			UnitCost:          unitCost,
			WastePct:          wastePct,
			ExtendedBase:      extendedBase,
			ExtendedWithWaste: extendedWithWaste,
			MarkupOverhead:    overhead,
			MarkupProfit:      profit,
			SubtotalBeforeTax: subtotal,
			Tax:               tax,
			Total:             total,
			Source:            string(source),
		})
		tradeTotals[item.Trade] += total
	}

	trades := make([]string, 0, len(tradeTotals))
	for t := range tradeTotals {
		trades = append(trades, t)
	}
	sort.Strings(trades)
	for _, t := range trades {
		subtotal := round2(tradeTotals[t])
		resp.Trades = append(resp.Trades, domain.TradeSubtotal{Trade: t, Subtotal: subtotal})
		resp.GrandTotal += subtotal
	}
	resp.GrandTotal = round2(resp.GrandTotal)

	digests, err := buildDigests(in)
	if err != nil {
		return nil, err
	}
	resp.Digests = digests
	return resp, nil
}

func resolveCost(order []string, vendor, unit CostTable, trade, code string) (float64, domain.CostSource) {
	for _, source := range order {
		switch strings.ToLower(strings.TrimSpace(source)) {
		case string(domain.SourceVendorQuotes):
			if vendor != nil {
				if cost, ok := vendor.Lookup(trade, code); ok {
					return cost, domain.SourceVendorQuotes
				}
			}
		case string(domain.SourceUnitCosts):
			if unit != nil {
				if cost, ok := unit.Lookup(trade, code); ok {
					return cost, domain.SourceUnitCosts
				}
			}
		case string(domain.SourcePolicyDefaults):
			return 0, domain.SourcePolicyDefaults
		}
	}
	return 0, domain.SourcePolicyDefaults
}

func buildDigests(in Inputs) (map[string]string, error) {
	digests := make(map[string]string)
	qd, err := DigestJSON(in.Quantities)
	if err != nil {
		return nil, err
	}
	digests[DigestQuantities] = qd
	if in.PolicyText != nil {
		digests[DigestPolicy] = SHA256Hex(in.PolicyText)
	} else {
		pd, err := DigestJSON(in.Policy)
		if err != nil {
			return nil, err
		}
		digests[DigestPolicy] = pd
	}
	if in.UnitCostsText != nil {
		digests[DigestUnitCosts] = SHA256Hex(in.UnitCostsText)
	}
	if in.VendorCostsText != nil {
		digests[DigestVendorCosts] = SHA256Hex(in.VendorCostsText)
	}
	return digests, nil
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round4(v float64) float64 { return math.Round(v*10000) / 10000 }
