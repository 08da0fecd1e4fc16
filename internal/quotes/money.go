package quotes

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// DropReason is a machine-readable reason a money token was rejected.
// Empty means the token parsed successfully.
type DropReason string

const (
	DropNone        DropReason = ""
	DropEmpty       DropReason = "empty"
	DropNoMatch     DropReason = "no-match"
	DropParseFailed DropReason = "parse-failed"
)

// DropGtMax builds the over-cap rejection reason for a given cap.
func DropGtMax(cap float64) DropReason {
	return DropReason(fmt.Sprintf("gt-max-%.0f", cap))
}

// IsGtMax reports whether a reason is an over-cap rejection.
func IsGtMax(r DropReason) bool {
	return strings.HasPrefix(string(r), "gt-max-")
}

// DefaultMaxLineAmount caps the absolute value a quote line may carry.
const DefaultMaxLineAmount = 10_000_000

// moneyTokenRe locates the first money-shaped substring: an optional open
// paren or sign, grouped or plain digits, optional 1-2 decimal digits, an
// optional k/m multiplier and an optional closing paren.
var moneyTokenRe = regexp.MustCompile(`[(]?\s*[-+]?\s*(?:\d{1,3}(?:[.,]\d{3})+|\d+)(?:[.,]\d{1,2})?\s*[kKmM]?\s*\)?`)

// ParseMoney normalizes an arbitrary text token into a numeric amount.
//
//	"$12,345.67" -> 12345.67    US separators
//	"12.345,67"  -> 12345.67    EU separators (comma is the last separator)
//	"12.5k"      -> 12500.00    k/m suffix multipliers
//	"(1,234.00)" -> -1234.00    parenthetical negation
//
// Magnitudes above maxAmount are rejected with a gt-max-<cap> reason so
// phone numbers and ids never become line totals. maxAmount <= 0 selects
// DefaultMaxLineAmount.
func ParseMoney(text string, maxAmount float64) (float64, DropReason) {
	if maxAmount <= 0 {
		maxAmount = DefaultMaxLineAmount
	}
	s := strings.TrimSpace(strings.ReplaceAll(text, "$", ""))
	if s == "" {
		return 0, DropEmpty
	}

	core := strings.TrimSpace(moneyTokenRe.FindString(s))
	if core == "" {
		return 0, DropNoMatch
	}

	neg := false
	if strings.HasPrefix(core, "(") && strings.HasSuffix(core, ")") {
		neg = true
		core = strings.TrimSpace(core[1 : len(core)-1])
	}
	core = strings.TrimPrefix(core, "(")
	core = strings.TrimSuffix(core, ")")
	core = strings.TrimSpace(core)
	if strings.HasPrefix(core, "-") {
		neg = true
	}
	core = strings.TrimSpace(strings.TrimLeft(core, "+-"))

	multiplier := 1.0
	switch {
	case strings.HasSuffix(strings.ToLower(core), "k"):
		multiplier = 1_000
		core = strings.TrimSpace(core[:len(core)-1])
	case strings.HasSuffix(strings.ToLower(core), "m"):
		multiplier = 1_000_000
		core = strings.TrimSpace(core[:len(core)-1])
	}

	// European convention when both separators appear and the comma is
	// the last one: 12.345,67. Otherwise commas are grouping only.
	lastComma := strings.LastIndex(core, ",")
	lastDot := strings.LastIndex(core, ".")
	if lastComma >= 0 && lastDot >= 0 && lastComma > lastDot {
		core = strings.ReplaceAll(core, ".", "")
		core = strings.ReplaceAll(core, ",", ".")
	} else {
		core = strings.ReplaceAll(core, ",", "")
	}

	val, err := strconv.ParseFloat(core, 64)
	if err != nil {
		return 0, DropParseFailed
	}
	val *= multiplier
	if neg {
		val = -val
	}

	if math.Abs(val) > maxAmount {
		return 0, DropGtMax(maxAmount)
	}
	return math.Round(val*100) / 100, DropNone
}
