package quotes

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsMetaLine(t *testing.T) {
	assert.True(t, IsMetaLine(""))
	assert.True(t, IsMetaLine("Phone: 555-867-5309"))
	assert.True(t, IsMetaLine("Page 2 of 3"))
	assert.True(t, IsMetaLine("Terms and Conditions"))
	assert.False(t, IsMetaLine("Install water heater 1 EA $2,400.00"))
}

func TestNormalizeUnit(t *testing.T) {
	assert.Equal(t, "LF", NormalizeUnit("ln ft"))
	assert.Equal(t, "SF", NormalizeUnit("sqft"))
	assert.Equal(t, "EA", NormalizeUnit("each"))
	assert.Equal(t, "CY", NormalizeUnit("cu yd"))
	assert.Equal(t, "", NormalizeUnit(""))
}

func TestClassifyLine(t *testing.T) {
	t.Run("dollar token anywhere wins", func(t *testing.T) {
		c := ClassifyLine("Rough-in plumbing 12 EA $8,400.00")
		assert.True(t, c.HasTotal)
		assert.InDelta(t, 8400.00, c.LineTotal, 0.001)
		assert.Equal(t, "EA", c.Unit)
		assert.True(t, c.HasQty)
		assert.InDelta(t, 12.0, c.Qty, 0.001)
	})

	t.Run("last dollar token wins", func(t *testing.T) {
		c := ClassifyLine("Slab pour $1,000.00 plus pump $350.00")
		assert.True(t, c.HasTotal)
		assert.InDelta(t, 350.00, c.LineTotal, 0.001)
	})

	t.Run("cue word with bare number", func(t *testing.T) {
		c := ClassifyLine("Framing labor total 18500")
		assert.True(t, c.HasTotal)
		assert.InDelta(t, 18500.0, c.LineTotal, 0.001)
	})

	t.Run("cue number above bound rejected", func(t *testing.T) {
		c := ClassifyLine("Job total 3600000")
		assert.False(t, c.HasTotal)
	})

	t.Run("price keyword rejects long bare integers", func(t *testing.T) {
		c := ClassifyLine("Install item ref 5558675309")
		assert.False(t, c.HasTotal)
	})

	t.Run("implausible each count dropped", func(t *testing.T) {
		c := ClassifyLine("Fixtures 55586 EA $1,200.00")
		assert.True(t, c.HasTotal)
		assert.False(t, c.HasQty)
	})

	t.Run("empty line", func(t *testing.T) {
		c := ClassifyLine("   ")
		assert.Empty(t, c.Description)
		assert.False(t, c.HasTotal)
	})

	t.Run("qty nearest unit token", func(t *testing.T) {
		c := ClassifyLine("2 coats paint 450 SF $900.00")
		assert.Equal(t, "SF", c.Unit)
		assert.True(t, c.HasQty)
		assert.InDelta(t, 450.0, c.Qty, 0.001)
	})
}
