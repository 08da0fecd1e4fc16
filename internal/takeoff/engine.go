package takeoff

import (
	"strings"

	"jcwest/internal/domain"
	"jcwest/internal/planpdf"
)

// Options tunes one takeoff run.
type Options struct {
	ProjectID    string
	MaxPages     int
	FixtureRules *FixtureRules
}

// Result is the full output of one takeoff run: the quantities document
// plus the intermediate detections for auditing.
type Result struct {
	Quantities *domain.TradeQuantities
	Scale      ScaleResult
	Geometry   GeometryResult
	Fixtures   int
	Features   PlanFeatures
}

// Run reads a plan PDF and builds its v0 quantities document.
func Run(path string, opts Options) (*Result, error) {
	doc, err := planpdf.Read(path, opts.MaxPages)
	if err != nil {
		return nil, err
	}
	return BuildQuantities(doc, opts), nil
}

// RunBytes is Run over an in-memory plan, as fetched from object storage.
func RunBytes(data []byte, name string, opts Options) (*Result, error) {
	doc, err := planpdf.ReadBytes(data, name, opts.MaxPages)
	if err != nil {
		return nil, err
	}
	return BuildQuantities(doc, opts), nil
}

// BuildQuantities composes scale, geometry and fixture detection into
// the TradeQuantities document. The three seed trades are always
// present; every item carries its originating signal in notes.
func BuildQuantities(doc *planpdf.Document, opts Options) *Result {
	text := doc.CombinedText()

	scale := DetectScale(text)
	geom := ExtractGeometry(doc)
	fixtures := CountFixtures(text)
	features := DetectFeatures(text)

	fixtureSignal := ""
	if fixtures > 0 {
		fixtureSignal = domain.SignalFixturesFound
	}

	trades := map[string]domain.TradeGroup{
		"concrete": {Items: []domain.QuantityItem{{
			Code:        "slab_area",
			Description: "slab on grade area",
			Unit:        string(domain.UnitSF),
			Quantity:    geom.SlabSF,
			Notes:       geom.Signal,
		}}},
		"framing": {Items: []domain.QuantityItem{{
			Code:        "wall_linear",
			Description: "wall framing length",
			Unit:        string(domain.UnitLF),
			Quantity:    geom.WallLF,
			Notes:       geom.Signal,
		}}},
		"plumbing": {Items: []domain.QuantityItem{{
			Code:        "fixtures",
			Description: "plumbing fixture count",
			Unit:        string(domain.UnitEA),
			Quantity:    float64(fixtures),
			Notes:       fixtureSignal,
		}}},
	}

	if opts.FixtureRules != nil {
		for _, c := range opts.FixtureRules.Candidates(text) {
			group := trades[c.Trade]
			group.Items = append(group.Items, domain.QuantityItem{
				Code:        c.Item,
				Description: "rule table match",
				Unit:        c.Unit,
				Quantity:    c.Qty,
				Notes:       domain.SignalFixturesFound,
			})
			trades[c.Trade] = group
		}
	}

	quantities := &domain.TradeQuantities{
		Version: domain.QuantitiesVersion,
		Meta: domain.QuantitiesMeta{
			ProjectID: opts.ProjectID,
			Source:    "takeoff",
			PlanPath:  doc.Path,
			Notes:     strings.Join([]string{scale.Signal, geom.Signal}, ","),
		},
		Trades: trades,
	}

	return &Result{
		Quantities: quantities,
		Scale:      scale,
		Geometry:   geom,
		Fixtures:   fixtures,
		Features:   features,
	}
}
