package domain

// Unit is a lower-case takeoff unit from the closed v0 set.
type Unit string

const (
	UnitSF Unit = "sf"
	UnitLF Unit = "lf"
	UnitEA Unit = "ea"
	UnitCY Unit = "cy"
	UnitSY Unit = "sy"
)

// AllowedUnits is the closed set of v0 quantity units.
var AllowedUnits = map[Unit]bool{
	UnitSF: true,
	UnitLF: true,
	UnitEA: true,
	UnitCY: true,
	UnitSY: true,
}

// UnitAliases maps common vendor-quote spellings to canonical upper-case
// vendor-row units. Quantity documents use the lower-case forms.
var UnitAliases = map[string]string{
	"ea": "EA", "each": "EA", "unit": "EA",
	"lf": "LF", "lnft": "LF", "ln ft": "LF",
	"sf": "SF", "sqft": "SF", "sq ft": "SF",
	"cy": "CY", "cuyd": "CY", "cu yd": "CY",
	"sy": "SY",
}

// CostSource identifies which table won cost resolution for a line.
type CostSource string

const (
	SourceVendorQuotes   CostSource = "vendor_quotes"
	SourceUnitCosts      CostSource = "unit_costs"
	SourcePolicyDefaults CostSource = "policy_defaults"
)

// DefaultResolutionOrder is used when a policy omits resolution_order.
var DefaultResolutionOrder = []string{
	string(SourceVendorQuotes),
	string(SourceUnitCosts),
	string(SourcePolicyDefaults),
}

// Detector signals recorded on takeoff results.
const (
	SignalScaleFound      = "titleblock:scale:found"
	SignalScaleAssumed    = "scale:assumed"
	SignalGeometryVector  = "geometry:vector:used"
	SignalGeometryFallback = "geometry:fallback"
	SignalFixturesFound   = "legend:fixtures:found"
)

// FileKind distinguishes stored PDFs by their role in the pipeline.
type FileKind string

const (
	FileKindPlan        FileKind = "plan"
	FileKindVendorQuote FileKind = "vendor_quote"
)

// QuantitiesVersion is the only schema version accepted or emitted.
const QuantitiesVersion = "v0"
