package quotes

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Normalizer rewrites description text before mapping. An invalid regex
// degrades to literal substring replacement rather than failing the run.
type Normalizer struct {
	Pattern string `yaml:"pattern"`
	Replace string `yaml:"replace"`

	re *regexp.Regexp
}

// MapRule maps a normalized description to a canonical trade/item pair.
type MapRule struct {
	If string `yaml:"if"`
	To struct {
		Trade string `yaml:"trade"`
		Item  string `yaml:"item"`
	} `yaml:"to"`

	re *regexp.Regexp
}

// ClassifyRule assigns vendor and default trade from a quote file path.
type ClassifyRule struct {
	Match  string `yaml:"match"`
	Vendor string `yaml:"vendor"`
	Trade  string `yaml:"trade"`

	re *regexp.Regexp
}

// ParsingConfig tunes the quote line parser. Loaded once per run and
// treated as read-only afterwards.
type ParsingConfig struct {
	MaxLineAmount     float64  `yaml:"max_line_amount"`
	DropTotalKeywords []string `yaml:"drop_total_keywords"`
	DropLineKeywords  []string `yaml:"drop_line_keywords"`
	DedupeWindow      int      `yaml:"dedupe_window"`
	NumericDescMinLen int      `yaml:"numeric_only_desc_min_len"`
	PreferLatestFile  *bool    `yaml:"prefer_latest_file"`
}

// VendorMap is the taxonomy configuration for quote parsing: description
// normalizers, trade/item mapping rules, unit overrides and parser tuning.
type VendorMap struct {
	Normalizers   []Normalizer      `yaml:"normalizers"`
	Rules         []MapRule         `yaml:"rules"`
	UnitOverrides map[string]string `yaml:"unit_overrides"`
	Parsing       ParsingConfig     `yaml:"parsing"`
}

// VendorRules holds the per-file vendor/trade classification rules.
type VendorRules struct {
	Rules []ClassifyRule `yaml:"rules"`
}

// DefaultParsingConfig returns the parser tuning used when the vendor
// map omits a parsing block.
func DefaultParsingConfig() ParsingConfig {
	t := true
	return ParsingConfig{
		MaxLineAmount:     DefaultMaxLineAmount,
		DropTotalKeywords: []string{"total", "total bid", "proposal total", "grand total"},
		DedupeWindow:      10,
		NumericDescMinLen: 5,
		PreferLatestFile:  &t,
	}
}

func (p *ParsingConfig) applyDefaults() {
	def := DefaultParsingConfig()
	if p.MaxLineAmount <= 0 {
		p.MaxLineAmount = def.MaxLineAmount
	}
	if len(p.DropTotalKeywords) == 0 {
		p.DropTotalKeywords = def.DropTotalKeywords
	}
	if p.DedupeWindow <= 0 {
		p.DedupeWindow = def.DedupeWindow
	}
	if p.NumericDescMinLen <= 0 {
		p.NumericDescMinLen = def.NumericDescMinLen
	}
	if p.PreferLatestFile == nil {
		p.PreferLatestFile = def.PreferLatestFile
	}
}

// ParseVendorMap decodes and compiles a vendor map document.
func ParseVendorMap(data []byte) (*VendorMap, error) {
	var vm VendorMap
	if err := yaml.Unmarshal(data, &vm); err != nil {
		return nil, fmt.Errorf("parsing vendor map: %w", err)
	}
	vm.Parsing.applyDefaults()
	for i := range vm.Normalizers {
		if vm.Normalizers[i].Pattern == "" {
			continue
		}
		// Invalid patterns fall back to literal replacement in Apply.
		vm.Normalizers[i].re, _ = regexp.Compile("(?i)" + vm.Normalizers[i].Pattern)
	}
	for i := range vm.Rules {
		if vm.Rules[i].If == "" {
			continue
		}
		vm.Rules[i].re, _ = regexp.Compile("(?i)" + vm.Rules[i].If)
	}
	return &vm, nil
}

// LoadVendorMap reads a vendor map YAML file. A missing path yields the
// defaults rather than an error.
func LoadVendorMap(path string) (*VendorMap, error) {
	if path == "" {
		return ParseVendorMap(nil)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return ParseVendorMap(nil)
		}
		return nil, fmt.Errorf("reading vendor map %s: %w", path, err)
	}
	return ParseVendorMap(data)
}

// ParseVendorRules decodes and compiles vendor classification rules.
func ParseVendorRules(data []byte) (*VendorRules, error) {
	var vr VendorRules
	if err := yaml.Unmarshal(data, &vr); err != nil {
		return nil, fmt.Errorf("parsing vendor rules: %w", err)
	}
	for i := range vr.Rules {
		if vr.Rules[i].Match == "" {
			continue
		}
		vr.Rules[i].re, _ = regexp.Compile("(?i)" + vr.Rules[i].Match)
	}
	return &vr, nil
}

// LoadVendorRules reads a vendor rules YAML file. A missing path yields
// an empty rule set.
func LoadVendorRules(path string) (*VendorRules, error) {
	if path == "" {
		return &VendorRules{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &VendorRules{}, nil
		}
		return nil, fmt.Errorf("reading vendor rules %s: %w", path, err)
	}
	return ParseVendorRules(data)
}

// Classify assigns vendor and default trade from a quote file path. The
// first rule to fill each field wins; the file stem is the vendor of
// last resort.
func (vr *VendorRules) Classify(path string) (vendor, trade string) {
	lower := strings.ToLower(path)
	for _, r := range vr.Rules {
		matched := false
		if r.re != nil {
			matched = r.re.MatchString(lower)
		} else if r.Match != "" {
			matched = strings.Contains(lower, strings.ToLower(r.Match))
		}
		if matched {
			if vendor == "" {
				vendor = r.Vendor
			}
			if trade == "" {
				trade = r.Trade
			}
		}
	}
	if vendor == "" {
		vendor = fileStem(path)
	}
	return vendor, strings.ToLower(trade)
}

func fileStem(path string) string {
	base := path
	if i := strings.LastIndexAny(base, `/\`); i >= 0 {
		base = base[i+1:]
	}
	if i := strings.LastIndex(base, "."); i > 0 {
		base = base[:i]
	}
	return base
}
