package quantities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jcwest/internal/domain"
)

const mapShapedDoc = `{
  "version": "v0",
  "meta": {"project_id": "p1", "source": "takeoff", "plan_path": "plans/a.pdf"},
  "trades": {
    "Concrete": {
      "scope_notes": "foundation only",
      "items": [
        {"code": "slab_area", "description": "slab on grade", "unit": "SF", "quantity": 1200}
      ]
    },
    "plumbing": {
      "items": [
        {"code": "fixtures", "unit": "ea", "quantity": 9, "notes": "legend:fixtures:found"}
      ]
    }
  }
}`

const arrayShapedDoc = `{
  "version": "v0",
  "meta": {"project_id": "p1", "source": "takeoff"},
  "trades": [
    {"trade": "concrete", "items": [{"code": "slab_area", "unit": "sf", "quantity": 1200}]},
    {"trade": "plumbing", "items": [{"code": "fixtures", "unit": "ea", "quantity": 9}]}
  ]
}`

func TestParseMapShape(t *testing.T) {
	doc, err := Parse([]byte(mapShapedDoc))
	require.NoError(t, err)

	assert.Equal(t, domain.QuantitiesVersion, doc.Version)
	assert.Equal(t, "p1", doc.Meta.ProjectID)
	require.Len(t, doc.Trades, 2)

	// Trade keys and units are case-folded.
	concrete, ok := doc.Trades["concrete"]
	require.True(t, ok)
	assert.Equal(t, "foundation only", concrete.ScopeNotes)
	require.Len(t, concrete.Items, 1)
	assert.Equal(t, "sf", concrete.Items[0].Unit)
	assert.Equal(t, 1200.0, concrete.Items[0].Quantity)
}

func TestParseArrayShape(t *testing.T) {
	doc, err := Parse([]byte(arrayShapedDoc))
	require.NoError(t, err)
	require.Len(t, doc.Trades, 2)
	assert.Contains(t, doc.Trades, "concrete")
	assert.Contains(t, doc.Trades, "plumbing")
}

func TestParseShapesEquivalent(t *testing.T) {
	a, err := Parse([]byte(mapShapedDoc))
	require.NoError(t, err)
	b, err := Parse([]byte(arrayShapedDoc))
	require.NoError(t, err)

	ai, bi := a.Trades["plumbing"].Items[0], b.Trades["plumbing"].Items[0]
	assert.Equal(t, ai.Code, bi.Code)
	assert.Equal(t, ai.Unit, bi.Unit)
	assert.Equal(t, ai.Quantity, bi.Quantity)
}

func TestParseRejects(t *testing.T) {
	t.Run("wrong version", func(t *testing.T) {
		_, err := Parse([]byte(`{"version": "v1", "trades": {}}`))
		assert.ErrorIs(t, err, domain.ErrUnsupportedVersion)
	})

	t.Run("missing trades", func(t *testing.T) {
		_, err := Parse([]byte(`{"version": "v0"}`))
		assert.ErrorIs(t, err, domain.ErrSchemaViolation)
	})

	t.Run("unknown unit", func(t *testing.T) {
		_, err := Parse([]byte(`{
		  "version": "v0",
		  "trades": {"concrete": {"items": [{"code": "slab_area", "unit": "acre", "quantity": 1}]}}
		}`))
		assert.ErrorIs(t, err, domain.ErrSchemaViolation)
	})

	t.Run("negative quantity", func(t *testing.T) {
		_, err := Parse([]byte(`{
		  "version": "v0",
		  "trades": {"concrete": {"items": [{"code": "slab_area", "unit": "sf", "quantity": -5}]}}
		}`))
		assert.ErrorIs(t, err, domain.ErrSchemaViolation)
	})

	t.Run("array entry without trade name", func(t *testing.T) {
		_, err := Parse([]byte(`{
		  "version": "v0",
		  "trades": [{"items": [{"code": "x", "unit": "sf", "quantity": 1}]}]
		}`))
		assert.ErrorIs(t, err, domain.ErrSchemaViolation)
	})

	t.Run("not json", func(t *testing.T) {
		_, err := Parse([]byte(`{"version`))
		assert.ErrorIs(t, err, domain.ErrSchemaViolation)
	})
}

func TestFlattenDeterministic(t *testing.T) {
	doc, err := Parse([]byte(mapShapedDoc))
	require.NoError(t, err)

	flat := doc.Flatten()
	require.Len(t, flat, 2)
	assert.Equal(t, "concrete", flat[0].Trade)
	assert.Equal(t, "plumbing", flat[1].Trade)
	assert.Equal(t, "slab_area", flat[0].Code)
}
