package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jcwest/internal/domain"
)

func testPolicy() *domain.Policy {
	return &domain.Policy{
		ID:     "default_v1",
		Region: "national",
		Markups: domain.Markups{
			OverheadPct: 0.10,
			ProfitPct:   0.05,
		},
		WasteDefaults:   map[string]float64{"global_pct": 0.05},
		TaxPct:          0.0625,
		EscalationPct:   0,
		ResolutionOrder: domain.DefaultResolutionOrder,
	}
}

func testQuantities() *domain.TradeQuantities {
	return &domain.TradeQuantities{
		Version: domain.QuantitiesVersion,
		Meta:    domain.QuantitiesMeta{ProjectID: "p1", Source: "takeoff"},
		Trades: map[string]domain.TradeGroup{
			"framing": {Items: []domain.QuantityItem{
				{Code: "wall_linear", Description: "wall framing", Unit: "lf", Quantity: 10},
			}},
		},
	}
}

func TestPriceCascade(t *testing.T) {
	costs := CostTable{domain.TradeItemKey("framing", "wall_linear"): 180}

	resp, err := Price(Inputs{
		Quantities: testQuantities(),
		Policy:     testPolicy(),
		UnitCosts:  costs,
	})
	require.NoError(t, err)
	require.Len(t, resp.LineItems, 1)

	li := resp.LineItems[0]
	assert.Equal(t, 1800.00, li.ExtendedBase)
	assert.Equal(t, 1890.00, li.ExtendedWithWaste)
	assert.Equal(t, 189.00, li.MarkupOverhead)
	assert.Equal(t, 103.95, li.MarkupProfit)
	assert.Equal(t, 2182.95, li.SubtotalBeforeTax)
	assert.Equal(t, 136.43, li.Tax)
	assert.InDelta(t, 2319.38, li.Total, 0.001)
	assert.Equal(t, string(domain.SourceUnitCosts), li.Source)

	require.Len(t, resp.Trades, 1)
	assert.Equal(t, "framing", resp.Trades[0].Trade)
	assert.InDelta(t, 2319.38, resp.GrandTotal, 0.001)
	assert.Empty(t, resp.Warnings)
}

func TestPriceResolutionPrecedence(t *testing.T) {
	key := domain.TradeItemKey("framing", "wall_linear")
	unit := CostTable{key: 2500}
	vendor := CostTable{key: 2300}

	resp, err := Price(Inputs{
		Quantities:  testQuantities(),
		Policy:      testPolicy(),
		UnitCosts:   unit,
		VendorCosts: vendor,
	})
	require.NoError(t, err)
	require.Len(t, resp.LineItems, 1)
	assert.Equal(t, 2300.0, resp.LineItems[0].UnitCost)
	assert.Equal(t, string(domain.SourceVendorQuotes), resp.LineItems[0].Source)
}

func TestPriceMissingCostWarns(t *testing.T) {
	resp, err := Price(Inputs{
		Quantities: testQuantities(),
		Policy:     testPolicy(),
	})
	require.NoError(t, err)
	require.Len(t, resp.LineItems, 1)

	li := resp.LineItems[0]
	assert.Zero(t, li.UnitCost)
	assert.Zero(t, li.Total)
	assert.Equal(t, string(domain.SourcePolicyDefaults), li.Source)
	require.Len(t, resp.Warnings, 1)
	assert.Equal(t, "Missing cost for framing/wall_linear; defaulted to 0.0", resp.Warnings[0])
}

func TestPriceCalibrationFactors(t *testing.T) {
	costs := CostTable{domain.TradeItemKey("framing", "wall_linear"): 100}
	factors := &domain.CalibrationFactors{
		Type:    domain.FactorsType,
		Factors: map[string]float64{"framing::wall_linear": 1.25},
	}

	resp, err := Price(Inputs{
		Quantities: testQuantities(),
		Policy:     testPolicy(),
		UnitCosts:  costs,
		Factors:    factors,
	})
	require.NoError(t, err)
	assert.Equal(t, 125.0, resp.LineItems[0].UnitCost)
}

func TestPriceWastePerTradeOverride(t *testing.T) {
	policy := testPolicy()
	policy.WasteDefaults["framing"] = 0.12

	resp, err := Price(Inputs{
		Quantities: testQuantities(),
		Policy:     policy,
		UnitCosts:  CostTable{domain.TradeItemKey("framing", "wall_linear"): 100},
	})
	require.NoError(t, err)
	li := resp.LineItems[0]
	assert.Equal(t, 0.12, li.WastePct)
	assert.Equal(t, 1120.00, li.ExtendedWithWaste)
}

func TestPriceDeterminism(t *testing.T) {
	policyText := []byte("policy_id: default_v1\n")
	costText := []byte("trade,code,unit_cost\nframing,wall_linear,180\n")
	costs, err := ParseCostTable(costText)
	require.NoError(t, err)

	run := func() *domain.EstimateResponse {
		resp, err := Price(Inputs{
			Quantities:    testQuantities(),
			Policy:        testPolicy(),
			PolicyText:    policyText,
			UnitCosts:     costs,
			UnitCostsText: costText,
		})
		require.NoError(t, err)
		return resp
	}

	a, b := run(), run()
	assert.Equal(t, a.Digests, b.Digests)
	assert.Equal(t, a.GrandTotal, b.GrandTotal)
	assert.NotEmpty(t, a.Digests[DigestQuantities])
	assert.NotEmpty(t, a.Digests[DigestPolicy])
	assert.NotEmpty(t, a.Digests[DigestUnitCosts])
	assert.NotContains(t, a.Digests, DigestVendorCosts)
}

func TestPriceRejectsBadDocuments(t *testing.T) {
	t.Run("wrong version", func(t *testing.T) {
		q := testQuantities()
		q.Version = "v1"
		_, err := Price(Inputs{Quantities: q, Policy: testPolicy()})
		assert.ErrorIs(t, err, domain.ErrUnsupportedVersion)
	})

	t.Run("nil trades", func(t *testing.T) {
		q := testQuantities()
		q.Trades = nil
		_, err := Price(Inputs{Quantities: q, Policy: testPolicy()})
		assert.ErrorIs(t, err, domain.ErrSchemaViolation)
	})

	t.Run("missing policy", func(t *testing.T) {
		_, err := Price(Inputs{Quantities: testQuantities()})
		assert.ErrorIs(t, err, domain.ErrSchemaViolation)
	})
}
