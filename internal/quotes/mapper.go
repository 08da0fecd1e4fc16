package quotes

import (
	"regexp"
	"strings"
)

// Apply rewrites text through the normalizer. An uncompiled pattern is
// treated as a literal substring.
func (n *Normalizer) Apply(text string) string {
	if n.Pattern == "" {
		return text
	}
	if n.re != nil {
		return n.re.ReplaceAllString(text, n.Replace)
	}
	return strings.ReplaceAll(text, n.Pattern, n.Replace)
}

// NormalizeDescription runs the ordered normalizer list over a raw
// description.
func (vm *VendorMap) NormalizeDescription(text string) string {
	s := text
	for i := range vm.Normalizers {
		s = vm.Normalizers[i].Apply(s)
	}
	return strings.TrimSpace(s)
}

// MapTradeItem matches the normalized description against the ordered
// rule list; the first rule whose condition matches wins. Rules with an
// uncompilable condition degrade to substring containment.
func (vm *VendorMap) MapTradeItem(desc string) (trade, item string, ok bool) {
	if desc == "" {
		return "", "", false
	}
	for i := range vm.Rules {
		r := &vm.Rules[i]
		if r.If == "" {
			continue
		}
		matched := false
		if r.re != nil {
			matched = r.re.MatchString(desc)
		} else {
			matched = strings.Contains(strings.ToLower(desc), strings.ToLower(r.If))
		}
		if matched && r.To.Trade != "" && r.To.Item != "" {
			return strings.TrimSpace(r.To.Trade), strings.TrimSpace(r.To.Item), true
		}
	}
	return "", "", false
}

// OverrideUnit applies configured unit overrides, falling back to alias
// canonicalization.
func (vm *VendorMap) OverrideUnit(unit string) string {
	u := strings.TrimSpace(unit)
	if u == "" {
		u = "EA"
	}
	if over, ok := vm.UnitOverrides[strings.ToLower(u)]; ok && over != "" {
		return over
	}
	return NormalizeUnit(u)
}

const maxItemSlugLen = 40

var slugSpaceRe = regexp.MustCompile(`\s+`)

// ItemSlug builds the fallback item key for unmapped lines: a truncated,
// lower-cased, underscore-joined description.
func ItemSlug(desc string) string {
	s := strings.TrimSpace(desc)
	if len(s) > maxItemSlugLen {
		s = s[:maxItemSlugLen]
	}
	s = strings.ToLower(strings.TrimSpace(s))
	return slugSpaceRe.ReplaceAllString(s, "_")
}
