package quotes

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"

	"jcwest/internal/domain"
)

// Outlier records one dropped line with its machine-readable reason so
// downstream auditing never has to re-derive why a line vanished.
type Outlier struct {
	Reason string `json:"reason"`
	Vendor string `json:"vendor"`
	Desc   string `json:"desc"`
}

// Parser turns raw vendor-quote text into canonical vendor rows. The
// vendor map and rules are loaded once and treated as read-only; the
// Deduper carries state across documents within one run.
type Parser struct {
	Map     *VendorMap
	Rules   *VendorRules
	Deduper *Deduper

	Outliers []Outlier
}

// NewParser builds a Parser around a loaded vendor map and rule set.
func NewParser(vm *VendorMap, vr *VendorRules) *Parser {
	if vm == nil {
		vm, _ = ParseVendorMap(nil)
	}
	if vr == nil {
		vr = &VendorRules{}
	}
	return &Parser{
		Map:     vm,
		Rules:   vr,
		Deduper: NewDeduper(vm.Parsing.DedupeWindow),
	}
}

// ParseText extracts canonical rows from one document's text. vendor and
// trade come from path classification and may be empty; the mapper fills
// trade per line where a rule matches.
func (p *Parser) ParseText(text, vendor, trade string) []domain.VendorRow {
	var rows []domain.VendorRow
	if text == "" {
		return rows
	}
	cfg := p.Map.Parsing

	for _, rawLine := range strings.Split(text, "\n") {
		if IsMetaLine(rawLine) {
			continue
		}

		normLine := p.Map.NormalizeDescription(rawLine)
		if normLine == "" {
			normLine = rawLine
		}
		cand := ClassifyLine(normLine)
		if cand.Description == "" {
			continue
		}

		descLower := strings.ToLower(cand.Description)
		if containsAny(descLower, cfg.DropLineKeywords) {
			p.drop("non-scope-keyword", vendor, cand.Description)
			continue
		}
		if numericHeavy(cand.Description, cfg.NumericDescMinLen) {
			p.drop("desc-numeric-heavy", vendor, cand.Description)
			continue
		}
		if containsAny(descLower, cfg.DropTotalKeywords) {
			p.drop("summary-header", vendor, cand.Description)
			continue
		}

		// The money normalizer re-reads the tail of the line from the last
		// currency sign; it understands EU separators, k/m suffixes and
		// parenthetical negation that the classifier does not.
		if i := strings.LastIndex(rawLine, "$"); i >= 0 {
			start := i
			if i > 0 && rawLine[i-1] == '(' {
				start = i - 1
			}
			val, reason := ParseMoney(rawLine[start:], cfg.MaxLineAmount)
			if IsGtMax(reason) {
				p.drop(string(reason), vendor, cand.Description)
				continue
			}
			if reason == DropNone {
				cand.LineTotal, cand.HasTotal = val, true
			}
		}
		if !cand.HasTotal || cand.LineTotal <= 0 {
			continue
		}
		if cand.LineTotal > cfg.MaxLineAmount {
			p.drop(string(DropGtMax(cfg.MaxLineAmount)), vendor, cand.Description)
			continue
		}

		mappedTrade, mappedItem, mapped := p.Map.MapTradeItem(cand.Description)
		rowTrade := mappedTrade
		if rowTrade == "" {
			rowTrade = trade
		}
		rowItem := mappedItem
		if !mapped {
			rowItem = ItemSlug(cand.Description)
		}

		unit := p.Map.OverrideUnit(cand.Unit)

		key := MakeDedupeKey(vendor, cand.Description, cand.LineTotal, unit)
		if !p.Deduper.Admit(key) {
			p.drop("duplicate", vendor, cand.Description)
			continue
		}

		qty := 1.0
		if cand.HasQty {
			qty = cand.Qty
		}
		rows = append(rows, domain.VendorRow{
			Vendor:      vendor,
			Trade:       strings.TrimSpace(rowTrade),
			Item:        rowItem,
			Description: cand.Description,
			Unit:        unit,
			Qty:         qty,
			LineTotal:   cand.LineTotal,
			QuotedTotal: cand.LineTotal,
		})
	}
	return rows
}

func (p *Parser) drop(reason, vendor, desc string) {
	p.Outliers = append(p.Outliers, Outlier{Reason: reason, Vendor: vendor, Desc: desc})
}

func containsAny(haystack string, keywords []string) bool {
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" && strings.Contains(haystack, kw) {
			return true
		}
	}
	return false
}

// numericHeavy guards against OCR artifacts and bare ids ("360000")
// being treated as scope descriptions: no letters at all and at least
// half digits past the minimum length.
func numericHeavy(desc string, minLen int) bool {
	s := strings.TrimSpace(desc)
	if len(s) < minLen {
		return false
	}
	digits, letters := 0, 0
	for _, r := range s {
		switch {
		case unicode.IsDigit(r):
			digits++
		case unicode.IsLetter(r):
			letters++
		}
	}
	if letters > 0 {
		return false
	}
	threshold := minLen
	if half := len(s) / 2; half > threshold {
		threshold = half
	}
	return digits >= threshold
}

func lowerTrim(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// dateTokenRe matches YYYY.MM.DD or YY-MM-DD style tokens in file names.
// No word boundaries: underscores are word characters and would defeat
// them in names like lynn_2025.03.14_bid.
var dateTokenRe = regexp.MustCompile(`((?:20)?\d{2})[.\-_]([01]?\d)[.\-_]([0-3]?\d)`)

// QuoteFile pairs a quote path with its modification time for
// latest-file selection.
type QuoteFile struct {
	Path    string
	ModTime time.Time
}

// ChooseLatest keeps the newest quote file per vendor: a date token in
// the file name wins over modification time.
func ChooseLatest(files []QuoteFile, rules *VendorRules) []QuoteFile {
	type scored struct {
		file QuoteFile
		key  [3]int
	}
	best := make(map[string]scored)
	for _, f := range files {
		vendor, _ := rules.Classify(f.Path)
		key := [3]int{0, 0, int(f.ModTime.Unix())}
		if m := dateTokenRe.FindStringSubmatch(strings.ToLower(fileStem(f.Path))); m != nil {
			y, _ := strconv.Atoi(m[1])
			if y < 100 {
				y += 2000
			}
			mo, _ := strconv.Atoi(m[2])
			d, _ := strconv.Atoi(m[3])
			key = [3]int{y, mo, d}
		}
		cur, ok := best[vendor]
		if !ok || keyLess(cur.key, key) {
			best[vendor] = scored{file: f, key: key}
		}
	}
	vendors := make([]string, 0, len(best))
	for v := range best {
		vendors = append(vendors, v)
	}
	sort.Strings(vendors)
	out := make([]QuoteFile, 0, len(best))
	for _, v := range vendors {
		out = append(out, best[v].file)
	}
	return out
}

func keyLess(a, b [3]int) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}
