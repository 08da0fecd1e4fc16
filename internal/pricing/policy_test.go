package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jcwest/internal/domain"
)

const singleRegionYAML = `
policy_id: default_v1
region: national
markups:
  overhead_pct: 0.10
  profit_pct: 0.05
waste_defaults:
  global_pct: 0.05
  concrete: 0.08
tax_pct: 0.0625
escalation_pct: 0.01
resolution_order: [vendor_quotes, unit_costs, policy_defaults]
`

const multiRegionYAML = `
default_region: tx
regions:
  tx:
    policy_id: tx_v2
    markups: {overhead_pct: 0.10, profit_pct: 0.05}
    waste_defaults: {global_pct: 0.05}
    tax_pct: 0.0625
  ca:
    policy_id: ca_v2
    markups: {overhead_pct: 0.12, profit_pct: 0.06}
    waste_defaults: {global_pct: 0.07}
    tax_pct: 0.0875
`

func TestResolvePolicySingleRegion(t *testing.T) {
	p, err := ResolvePolicy([]byte(singleRegionYAML), "ignored")
	require.NoError(t, err)
	assert.Equal(t, "default_v1", p.ID)
	assert.Equal(t, "national", p.Region)
	assert.Equal(t, 0.10, p.Markups.OverheadPct)
	assert.Equal(t, 0.08, p.WasteDefaults["concrete"])
	assert.Equal(t, 0.01, p.EscalationPct)
	assert.Equal(t, domain.DefaultResolutionOrder, p.ResolutionOrder)
}

func TestResolvePolicyMultiRegion(t *testing.T) {
	t.Run("requested region", func(t *testing.T) {
		p, err := ResolvePolicy([]byte(multiRegionYAML), "CA")
		require.NoError(t, err)
		assert.Equal(t, "ca_v2", p.ID)
		assert.Equal(t, "ca", p.Region)
		assert.Equal(t, 0.0875, p.TaxPct)
	})

	t.Run("declared default on miss", func(t *testing.T) {
		p, err := ResolvePolicy([]byte(multiRegionYAML), "nowhere")
		require.NoError(t, err)
		assert.Equal(t, "tx_v2", p.ID)
		assert.Equal(t, "tx", p.Region)
	})

	t.Run("empty region selects default", func(t *testing.T) {
		p, err := ResolvePolicy([]byte(multiRegionYAML), "")
		require.NoError(t, err)
		assert.Equal(t, "tx_v2", p.ID)
	})

	t.Run("first declared when no default matches", func(t *testing.T) {
		doc := `
regions:
  ca:
    policy_id: ca_v2
    tax_pct: 0.0875
  tx:
    policy_id: tx_v2
`
		p, err := ResolvePolicy([]byte(doc), "nowhere")
		require.NoError(t, err)
		assert.Equal(t, "ca_v2", p.ID)
		assert.Equal(t, "ca", p.Region)
	})

	t.Run("resolution order defaulted", func(t *testing.T) {
		p, err := ResolvePolicy([]byte(multiRegionYAML), "tx")
		require.NoError(t, err)
		assert.Equal(t, domain.DefaultResolutionOrder, p.ResolutionOrder)
	})
}

func TestResolvePolicyInvalid(t *testing.T) {
	t.Run("not yaml", func(t *testing.T) {
		_, err := ResolvePolicy([]byte("{policy_id: [unclosed"), "")
		assert.ErrorIs(t, err, domain.ErrPolicyInvalid)
	})

	t.Run("missing policy_id", func(t *testing.T) {
		_, err := ResolvePolicy([]byte("region: national\n"), "")
		assert.ErrorIs(t, err, domain.ErrPolicyInvalid)
	})

	t.Run("empty regions map", func(t *testing.T) {
		_, err := ResolvePolicy([]byte("regions: {}\n"), "")
		assert.ErrorIs(t, err, domain.ErrPolicyInvalid)
	})
}

func TestWastePctFor(t *testing.T) {
	p, err := ResolvePolicy([]byte(singleRegionYAML), "")
	require.NoError(t, err)

	assert.Equal(t, 0.08, p.WastePctFor("concrete"))
	assert.Equal(t, 0.08, p.WastePctFor("Concrete"))
	assert.Equal(t, 0.05, p.WastePctFor("framing"))
}

func TestParseCostTable(t *testing.T) {
	t.Run("parses rows", func(t *testing.T) {
		table, err := ParseCostTable([]byte(
			"trade,code,unit_cost\n" +
				"concrete,slab_area,6.50\n" +
				"Framing,Wall_Linear,14.25\n"))
		require.NoError(t, err)
		require.Len(t, table, 2)

		cost, ok := table.Lookup("concrete", "slab_area")
		assert.True(t, ok)
		assert.Equal(t, 6.50, cost)

		// Keys are case-folded.
		cost, ok = table.Lookup("framing", "wall_linear")
		assert.True(t, ok)
		assert.Equal(t, 14.25, cost)
	})

	t.Run("column order free", func(t *testing.T) {
		table, err := ParseCostTable([]byte("unit_cost,trade,code\n9.99,plumbing,fixtures\n"))
		require.NoError(t, err)
		cost, ok := table.Lookup("plumbing", "fixtures")
		assert.True(t, ok)
		assert.Equal(t, 9.99, cost)
	})

	t.Run("bad cost cell skips row", func(t *testing.T) {
		table, err := ParseCostTable([]byte("trade,code,unit_cost\nconcrete,slab_area,abc\nframing,wall_linear,5\n"))
		require.NoError(t, err)
		assert.Len(t, table, 1)
	})

	t.Run("missing header column", func(t *testing.T) {
		_, err := ParseCostTable([]byte("trade,code,price\nconcrete,slab_area,5\n"))
		assert.ErrorIs(t, err, domain.ErrCostTableHeader)
	})
}
