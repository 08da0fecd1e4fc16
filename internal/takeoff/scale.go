package takeoff

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"jcwest/internal/domain"
)

// DefaultScaleRatio is the assumed real-units-per-drawing-unit ratio
// when no scale notation is found: 1/8" = 1'-0".
const DefaultScaleRatio = 96.0

// ScaleResult is the detected (or assumed) drawing scale.
type ScaleResult struct {
	Label      string
	Ratio      float64
	Confidence float64
	Signal     string
}

var (
	// 1/8" = 1'-0"  or  3/16"=1'
	archScaleRe = regexp.MustCompile(`(?i)(\d+)\s*/\s*(\d+)\s*(?:"|in)?\s*=\s*(\d+)\s*'(?:\s*-?\s*(\d+)\s*(?:"|in)?)?`)
	// 1" = 20'  (whole-inch notation)
	inchScaleRe = regexp.MustCompile(`(?i)(\d+)\s*(?:"|in)\s*=\s*(\d+)\s*'`)
	// 1:100 ratio notation, bounded to avoid matching times like 1:30pm text
	ratioScaleRe = regexp.MustCompile(`(?i)\bscale[^\d]{0,10}(\d+)\s*:\s*(\d+)\b|\b(\d+)\s*:\s*(\d{2,4})\b`)
)

// DetectScale scans combined sheet text for scale notation in priority
// order: fractional architectural, whole-inch architectural, then ratio
// notation. No match yields the assumed default; never an error.
func DetectScale(text string) ScaleResult {
	if m := archScaleRe.FindStringSubmatch(text); m != nil {
		num, _ := strconv.ParseFloat(m[1], 64)
		den, _ := strconv.ParseFloat(m[2], 64)
		feet, _ := strconv.ParseFloat(m[3], 64)
		inches := 0.0
		if m[4] != "" {
			inches, _ = strconv.ParseFloat(m[4], 64)
		}
		if num > 0 && den > 0 && (feet > 0 || inches > 0) {
			ratio := (feet*12 + inches) / (num / den)
			return ScaleResult{
				Label:      fmt.Sprintf("%s_%sin_per_ft", m[1], m[2]),
				Ratio:      ratio,
				Confidence: 0.9,
				Signal:     domain.SignalScaleFound,
			}
		}
	}

	if m := inchScaleRe.FindStringSubmatch(text); m != nil {
		inchesOnPaper, _ := strconv.ParseFloat(m[1], 64)
		feet, _ := strconv.ParseFloat(m[2], 64)
		if inchesOnPaper > 0 && feet > 0 {
			return ScaleResult{
				Label:      fmt.Sprintf("%sin_%sft", m[1], m[2]),
				Ratio:      feet * 12 / inchesOnPaper,
				Confidence: 0.8,
				Signal:     domain.SignalScaleFound,
			}
		}
	}

	if m := ratioScaleRe.FindStringSubmatch(text); m != nil {
		a, b := m[1], m[2]
		if a == "" {
			a, b = m[3], m[4]
		}
		av, _ := strconv.ParseFloat(a, 64)
		bv, _ := strconv.ParseFloat(b, 64)
		if av > 0 && bv > 0 {
			return ScaleResult{
				Label:      fmt.Sprintf("%s_to_%s", a, b),
				Ratio:      bv / av,
				Confidence: 0.6,
				Signal:     domain.SignalScaleFound,
			}
		}
	}

	return ScaleResult{
		Label:      "assumed_1_8in_per_ft",
		Ratio:      DefaultScaleRatio,
		Confidence: 0.2,
		Signal:     domain.SignalScaleAssumed,
	}
}

// NormalizeScaleLabel renders a human scale string as a stable token.
func NormalizeScaleLabel(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.NewReplacer(
		`"`, "in", "'", "ft", "/", "_", ":", "_to_", " ", "", "=", "_per_",
	).Replace(s)
	return s
}
