package quotes

import (
	"log"
	"math"
	"regexp"
)

// DedupeKey identifies a quote line for duplicate suppression.
type DedupeKey struct {
	Vendor      string
	Description string
	Amount      float64
	Unit        string
}

// Deduper suppresses repeated quote lines two ways: a global exact-key
// set for the whole run, and a bounded sliding window that catches
// near-adjacent repeats within a document without unbounded memory.
type Deduper struct {
	window  int
	seen    map[DedupeKey]struct{}
	recent  []DedupeKey
	dropped int
}

// DefaultDedupeWindow is the sliding-window size used when the vendor
// map does not configure one.
const DefaultDedupeWindow = 10

// NewDeduper creates a Deduper with the given window size (<=0 selects
// DefaultDedupeWindow).
func NewDeduper(window int) *Deduper {
	if window <= 0 {
		window = DefaultDedupeWindow
	}
	return &Deduper{
		window: window,
		seen:   make(map[DedupeKey]struct{}),
	}
}

var dedupeSpaceRe = regexp.MustCompile(`\s+`)

// MakeDedupeKey normalizes the identifying fields of a line into a key:
// whitespace-collapsed lower description and the amount rounded to cents.
func MakeDedupeKey(vendor, description string, amount float64, unit string) DedupeKey {
	desc := dedupeSpaceRe.ReplaceAllString(lowerTrim(description), " ")
	return DedupeKey{
		Vendor:      vendor,
		Description: desc,
		Amount:      math.Round(amount*100) / 100,
		Unit:        unit,
	}
}

// Admit records the key and reports whether the line should be kept.
// Every drop is logged with its key for audit.
func (d *Deduper) Admit(key DedupeKey) bool {
	if _, dup := d.seen[key]; dup {
		d.dropped++
		log.Printf("dedupe: exact duplicate dropped vendor=%q desc=%q amount=%.2f unit=%s",
			key.Vendor, key.Description, key.Amount, key.Unit)
		return false
	}
	for _, r := range d.recent {
		if r == key {
			d.dropped++
			log.Printf("dedupe: windowed duplicate dropped vendor=%q desc=%q amount=%.2f unit=%s",
				key.Vendor, key.Description, key.Amount, key.Unit)
			return false
		}
	}
	d.seen[key] = struct{}{}
	d.recent = append(d.recent, key)
	if len(d.recent) > d.window {
		d.recent = d.recent[1:]
	}
	return true
}

// Dropped returns the number of lines suppressed so far.
func (d *Deduper) Dropped() int { return d.dropped }
