package quotes

import (
	"regexp"
	"strconv"
	"strings"

	"jcwest/internal/domain"
)

// LineCandidate is the classifier's guess at the parts of one quote line.
type LineCandidate struct {
	Description string
	Unit        string
	Qty         float64
	LineTotal   float64
	HasQty      bool
	HasTotal    bool
}

// maxCueAmount bounds bare-number totals found via cue words so page
// numbers, dates and phone fragments are never promoted to line totals.
const maxCueAmount = 200_000

// maxEAQuantity rejects implausible each-counts (phones, ids).
const maxEAQuantity = 10_000

var (
	numRe = regexp.MustCompile(`[-+]?(?:\d{1,3}(?:,\d{3})+|\d+)(?:\.\d+)?`)

	// Explicit currency-marked tokens. moneyTrailRe requires the token to
	// stand alone at the end of the line; moneyAnywhereRe finds any.
	moneyTrailRe    = regexp.MustCompile(`^\s*\$\s*([-+]?(?:\d{1,3}(?:,\d{3})+|\d+)(?:\.\d{1,2})?)\s*$`)
	moneyAnywhereRe = regexp.MustCompile(`\$\s*([-+]?(?:\d{1,3}(?:,\d{3})+|\d+)(?:\.\d{1,2})?)`)

	// Metadata/noise lines discarded before classification.
	metaLineRe = regexp.MustCompile(`(?i)\b(phone|fax|email|date|page\s*\d+|address|proposal|quote|bid|contract|terms|conditions|warranty|acceptance|pricing)\b`)

	cueWordRe      = regexp.MustCompile(`(?i)\b(total|price|amount)\b`)
	priceKeywordRe = regexp.MustCompile(`(?i)\b(price|amount|total|labor|material|install|furnish|supply|provide|allowance|estimate)\b`)
	unitTokenRe    = regexp.MustCompile(`(?i)\b(ea|each|unit|lf|ln\s*ft|lnft|sf|sq\s*ft|sqft|cy|cu\s*yd|cuyd|sy)\b`)
)

// IsMetaLine reports whether a raw line looks like an address, phone or
// page-header line that should never be classified.
func IsMetaLine(line string) bool {
	if strings.TrimSpace(line) == "" {
		return true
	}
	return metaLineRe.MatchString(line)
}

// NormalizeUnit canonicalizes a unit token to its upper-case vendor form.
func NormalizeUnit(tok string) string {
	if tok == "" {
		return ""
	}
	t := strings.ToLower(strings.TrimSpace(tok))
	t = strings.ReplaceAll(t, "ln ft", "lf")
	t = strings.ReplaceAll(t, "lnft", "lf")
	t = strings.ReplaceAll(t, "sq ft", "sf")
	t = strings.ReplaceAll(t, "sqft", "sf")
	t = strings.ReplaceAll(t, "cu yd", "cy")
	if canon, ok := domain.UnitAliases[t]; ok {
		return canon
	}
	return strings.ToUpper(t)
}

// ClassifyLine segments one raw quote line into description, unit, qty
// and line-total candidates. Total detection runs in priority order: an
// explicit $ token anywhere (the last wins), a trailing bare $ token, a
// cue-word-triggered bounded number, then price-keyword fallback with
// long-integer rejection. Quantity is the numeric token nearest the unit
// token, with an implausibility guard for EA counts.
func ClassifyLine(line string) LineCandidate {
	original := strings.TrimSpace(line)
	if original == "" {
		return LineCandidate{}
	}

	var cand LineCandidate

	if m := unitTokenRe.FindStringSubmatch(original); m != nil {
		cand.Unit = NormalizeUnit(m[1])
	}

	tokens := strings.Fields(original)

	if ms := moneyAnywhereRe.FindAllStringSubmatch(original, -1); len(ms) > 0 {
		if v, ok := parseNumeric(ms[len(ms)-1][1]); ok {
			cand.LineTotal, cand.HasTotal = v, true
		}
	}
	if !cand.HasTotal && len(tokens) > 0 {
		if m := moneyTrailRe.FindStringSubmatch(tokens[len(tokens)-1]); m != nil {
			if v, ok := parseNumeric(m[1]); ok {
				cand.LineTotal, cand.HasTotal = v, true
				tokens = tokens[:len(tokens)-1]
			}
		}
	}
	if !cand.HasTotal && cueWordRe.MatchString(original) {
		nums := numRe.FindAllString(original, -1)
		for i := len(nums) - 1; i >= 0; i-- {
			if v, ok := parseNumeric(nums[i]); ok && v > 0 && v <= maxCueAmount {
				cand.LineTotal, cand.HasTotal = v, true
				break
			}
		}
	}
	if !cand.HasTotal && priceKeywordRe.MatchString(original) {
		nums := numRe.FindAllString(original, -1)
		for i := len(nums) - 1; i >= 0; i-- {
			n := nums[i]
			// Long bare integers are likely phone numbers or ids.
			digits := strings.NewReplacer(".", "", ",", "").Replace(n)
			if len(digits) >= 6 && !strings.Contains(n, ".") {
				continue
			}
			if v, ok := parseNumeric(n); ok && v > 0 && v <= maxCueAmount {
				cand.LineTotal, cand.HasTotal = v, true
				break
			}
		}
	}

	// Quantity: prefer the numeric token nearest the unit token (the last
	// candidate when a unit was found, the first otherwise).
	var numeric []float64
	for _, t := range tokens {
		bare := strings.ReplaceAll(t, ",", "")
		if numRe.FindString(bare) == bare && bare != "" {
			if v, ok := parseNumeric(t); ok {
				numeric = append(numeric, v)
			}
		}
	}
	if len(numeric) > 0 {
		if cand.Unit != "" {
			cand.Qty = numeric[len(numeric)-1]
		} else {
			cand.Qty = numeric[0]
		}
		cand.HasQty = true
	}
	if cand.HasQty && cand.Qty > maxEAQuantity && cand.Unit == "EA" {
		cand.Qty, cand.HasQty = 0, false
	}

	cand.Description = strings.TrimSpace(strings.Join(tokens, " "))
	return cand
}

func parseNumeric(s string) (float64, bool) {
	ss := strings.TrimSpace(s)
	ss = strings.ReplaceAll(ss, ",", "")
	ss = strings.ReplaceAll(ss, "$", "")
	v, err := strconv.ParseFloat(ss, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
