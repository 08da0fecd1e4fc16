package quotes

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseMoney(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		want   float64
		reason DropReason
	}{
		{name: "us separators", in: "$12,345.67", want: 12345.67, reason: DropNone},
		{name: "eu separators", in: "12.345,67", want: 12345.67, reason: DropNone},
		{name: "plain integer", in: "1234567", want: 1234567.00, reason: DropNone},
		{name: "k suffix", in: "12.5k", want: 12500.00, reason: DropNone},
		{name: "m suffix", in: "1.2m", want: 1200000.00, reason: DropNone},
		{name: "parenthetical negation", in: "(1,234.00)", want: -1234.00, reason: DropNone},
		{name: "leading minus", in: "-450.25", want: -450.25, reason: DropNone},
		{name: "embedded in text", in: "Total due: $4,500.00 net 30", want: 4500.00, reason: DropNone},
		{name: "empty", in: "", want: 0, reason: DropEmpty},
		{name: "whitespace only", in: "   ", want: 0, reason: DropEmpty},
		{name: "no digits", in: "see attached", want: 0, reason: DropNoMatch},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, reason := ParseMoney(tc.in, 0)
			assert.Equal(t, tc.reason, reason)
			assert.InDelta(t, tc.want, got, 0.001)
		})
	}

	t.Run("over default cap", func(t *testing.T) {
		got, reason := ParseMoney("20000000", 0)
		assert.Zero(t, got)
		assert.True(t, IsGtMax(reason))
		assert.Equal(t, DropReason("gt-max-10000000"), reason)
	})

	t.Run("custom cap", func(t *testing.T) {
		got, reason := ParseMoney("500000", 200000)
		assert.Zero(t, got)
		assert.Equal(t, DropGtMax(200000), reason)

		got, reason = ParseMoney("150000", 200000)
		assert.Equal(t, DropNone, reason)
		assert.InDelta(t, 150000.0, got, 0.001)
	})
}
