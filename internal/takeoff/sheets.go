package takeoff

import (
	"regexp"
	"strings"
)

// sheetIDRe matches architectural sheet labels: A1.1, S-101, M2.
var sheetIDRe = regexp.MustCompile(`(?i)\b([ASMEP])[-. ]?(\d{1,3}(?:\.\d{1,2})?)\b`)

// PlanFeatures summarizes what the sheet index heuristics saw in a plan
// set. Purely advisory; nothing downstream fails on an empty result.
type PlanFeatures struct {
	SheetIDs       []string
	HasFloorPlan   bool
	HasFoundation  bool
	HasPlumbing    bool
	HasElectrical  bool
	HasSiteOrCivil bool
}

// DetectFeatures scans combined sheet text for sheet identifiers and
// discipline cues.
func DetectFeatures(text string) PlanFeatures {
	var f PlanFeatures
	seen := map[string]struct{}{}
	for _, m := range sheetIDRe.FindAllStringSubmatch(text, -1) {
		id := strings.ToUpper(m[1]) + m[2]
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		f.SheetIDs = append(f.SheetIDs, id)
	}

	lower := strings.ToLower(text)
	f.HasFloorPlan = strings.Contains(lower, "floor plan")
	f.HasFoundation = strings.Contains(lower, "foundation") || strings.Contains(lower, "slab")
	f.HasPlumbing = strings.Contains(lower, "plumbing") || CountFixtures(text) > 0
	f.HasElectrical = strings.Contains(lower, "electrical") || strings.Contains(lower, "panel schedule")
	f.HasSiteOrCivil = strings.Contains(lower, "site plan") || strings.Contains(lower, "grading")
	return f
}
