package assemblies

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jcwest/internal/domain"
)

func TestEval(t *testing.T) {
	vars := map[string]float64{"slab_area": 1200, "thickness_in": 4}

	tests := []struct {
		expr string
		want float64
	}{
		{"2 + 3 * 4", 14},
		{"(2 + 3) * 4", 20},
		{"slab_area * thickness_in / 12 / 27", 1200 * 4.0 / 12 / 27},
		{"-5 + 10", 5},
		{"2 * -3", -6},
		{"1.5 * 4", 6},
	}
	for _, tc := range tests {
		t.Run(tc.expr, func(t *testing.T) {
			got, err := Eval(tc.expr, vars)
			require.NoError(t, err)
			assert.InDelta(t, tc.want, got, 0.0001)
		})
	}

	t.Run("unknown variable", func(t *testing.T) {
		_, err := Eval("missing * 2", vars)
		assert.ErrorContains(t, err, "unknown variable")
	})

	t.Run("division by zero", func(t *testing.T) {
		_, err := Eval("1 / (2 - 2)", vars)
		assert.ErrorContains(t, err, "division by zero")
	})

	t.Run("illegal character", func(t *testing.T) {
		_, err := Eval("__import__('os')", vars)
		assert.Error(t, err)
	})

	t.Run("trailing garbage", func(t *testing.T) {
		_, err := Eval("1 + 2 )", vars)
		assert.Error(t, err)
	})
}

func quantitiesFixture() *domain.TradeQuantities {
	return &domain.TradeQuantities{
		Version: domain.QuantitiesVersion,
		Trades: map[string]domain.TradeGroup{
			"concrete": {Items: []domain.QuantityItem{
				{Code: "slab_area", Unit: "sf", Quantity: 1200},
			}},
			"framing": {Items: []domain.QuantityItem{
				{Code: "wall_linear", Unit: "lf", Quantity: 300},
			}},
		},
	}
}

const catalogYAML = `
assemblies:
  - name: slab_concrete_volume
    project_types: [residential]
    trade: concrete
    item: slab_cy
    unit: cy
    description: slab concrete volume
    formula: slab_area * thickness_ft / 27
    variables:
      thickness_in: 4
      thickness_ft: thickness_in / 12
  - name: commercial_only
    project_types: [commercial]
    trade: concrete
    item: never_here
    unit: cy
    formula: slab_area
  - name: zero_result_skipped
    trade: framing
    item: nothing
    unit: lf
    formula: wall_linear - 300
`

func TestCatalogApply(t *testing.T) {
	c, err := ParseCatalog([]byte(catalogYAML))
	require.NoError(t, err)
	require.Len(t, c.Assemblies, 3)

	q := quantitiesFixture()
	c.Apply(q, "residential")

	concrete := q.Trades["concrete"]
	require.Len(t, concrete.Items, 2)

	derived := concrete.Items[1]
	assert.Equal(t, "slab_cy", derived.Code)
	assert.Equal(t, "cy", derived.Unit)
	// 1200 sf at 4 inches: 1200 * (4/12) / 27.
	assert.InDelta(t, 14.81, derived.Quantity, 0.01)
	assert.Equal(t, "assembly:slab_concrete_volume", derived.Notes)

	// Wrong project type never fires.
	for _, it := range concrete.Items {
		assert.NotEqual(t, "never_here", it.Code)
	}

	// Zero results are skipped.
	assert.Len(t, q.Trades["framing"].Items, 1)
}

func TestCatalogApplyBadFormulaSkips(t *testing.T) {
	c, err := ParseCatalog([]byte(`
assemblies:
  - name: broken
    trade: concrete
    item: bad
    unit: cy
    formula: slab_area / no_such_var
`))
	require.NoError(t, err)

	q := quantitiesFixture()
	c.Apply(q, "residential")
	assert.Len(t, q.Trades["concrete"].Items, 1)
}
