package takeoff

import (
	"math"

	"jcwest/internal/domain"
	"jcwest/internal/planpdf"
)

// Page-count heuristic rates used when no vector data is present.
const (
	fallbackWallLFPerPage = 300.0
	fallbackSlabSFPerPage = 1200.0
)

// GeometryResult carries the wall-length and slab-area proxies for a
// plan set, with the signal recording how they were derived.
type GeometryResult struct {
	WallLF float64
	SlabSF float64
	Signal string
}

// ExtractGeometry accumulates vector primitives into takeoff proxies:
// summed line-segment length over 12 becomes the wall-LF proxy, summed
// axis-aligned rectangle area over 144 the slab-SF proxy. The detected
// scale ratio is recorded as provenance but does not enter the
// arithmetic. Without vector data it substitutes the deterministic
// page-count heuristic. Outputs are clamped to >= 0.
func ExtractGeometry(doc *planpdf.Document) GeometryResult {
	if doc == nil || !doc.HasVectorGeometry() {
		pages := 1
		if doc != nil && doc.PageCount > 0 {
			pages = doc.PageCount
		}
		return GeometryResult{
			WallLF: float64(pages) * fallbackWallLFPerPage,
			SlabSF: float64(pages) * fallbackSlabSFPerPage,
			Signal: domain.SignalGeometryFallback,
		}
	}

	var wallUnits, slabUnits float64
	for _, page := range doc.Pages {
		for _, l := range page.Lines {
			wallUnits += math.Hypot(l.X2-l.X1, l.Y2-l.Y1)
		}
		for _, r := range page.Rects {
			slabUnits += math.Abs(r.W) * math.Abs(r.H)
		}
	}

	wallLF := wallUnits / 12.0
	slabSF := slabUnits / 144.0

	if wallLF < 0 {
		wallLF = 0
	}
	if slabSF < 0 {
		slabSF = 0
	}
	return GeometryResult{
		WallLF: round1(wallLF),
		SlabSF: round1(slabSF),
		Signal: domain.SignalGeometryVector,
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
