package takeoff

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// fixtureKeywords is the fixed plumbing legend vocabulary. Word counts
// over combined sheet text approximate the fixture schedule.
var fixtureKeywords = []string{
	"fixtures", "toilet", "sink", "lav", "lavatory",
	"shower", "bath", "wh", "hose bibb",
}

// FixtureRule is one externally configured pattern that emits a discrete
// line candidate when matched.
type FixtureRule struct {
	Pattern string  `yaml:"pattern"`
	Trade   string  `yaml:"trade"`
	Item    string  `yaml:"item"`
	Unit    string  `yaml:"unit"`
	Qty     float64 `yaml:"qty"`

	re *regexp.Regexp
}

// FixtureRules is the loaded rule table.
type FixtureRules struct {
	Rules []FixtureRule `yaml:"rules"`
}

// FixtureCandidate is a discrete takeoff line emitted by a matched rule.
type FixtureCandidate struct {
	Trade string
	Item  string
	Unit  string
	Qty   float64
}

// ParseFixtureRules decodes and compiles a fixture rule table.
func ParseFixtureRules(data []byte) (*FixtureRules, error) {
	var fr FixtureRules
	if err := yaml.Unmarshal(data, &fr); err != nil {
		return nil, fmt.Errorf("parsing fixture rules: %w", err)
	}
	for i := range fr.Rules {
		if fr.Rules[i].Pattern == "" {
			continue
		}
		fr.Rules[i].re, _ = regexp.Compile("(?i)" + fr.Rules[i].Pattern)
	}
	return &fr, nil
}

// LoadFixtureRules reads a fixture rule file. A missing path yields an
// empty table.
func LoadFixtureRules(path string) (*FixtureRules, error) {
	if path == "" {
		return &FixtureRules{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &FixtureRules{}, nil
		}
		return nil, fmt.Errorf("reading fixture rules %s: %w", path, err)
	}
	return ParseFixtureRules(data)
}

// CountFixtures counts keyword occurrences in lower-cased text. Absence
// of matches is zero, never an error.
func CountFixtures(text string) int {
	lower := strings.ToLower(text)
	count := 0
	for _, kw := range fixtureKeywords {
		count += strings.Count(lower, kw)
	}
	return count
}

// Candidates applies the rule table against combined text. Each rule
// fires at most once; qty defaults to the match count when the rule
// leaves it zero.
func (fr *FixtureRules) Candidates(text string) []FixtureCandidate {
	var out []FixtureCandidate
	for i := range fr.Rules {
		r := &fr.Rules[i]
		if r.re == nil || r.Trade == "" || r.Item == "" {
			continue
		}
		matches := r.re.FindAllString(text, -1)
		if len(matches) == 0 {
			continue
		}
		qty := r.Qty
		if qty <= 0 {
			qty = float64(len(matches))
		}
		unit := strings.ToLower(strings.TrimSpace(r.Unit))
		if unit == "" {
			unit = "ea"
		}
		out = append(out, FixtureCandidate{
			Trade: strings.ToLower(strings.TrimSpace(r.Trade)),
			Item:  strings.ToLower(strings.TrimSpace(r.Item)),
			Unit:  unit,
			Qty:   qty,
		})
	}
	return out
}
