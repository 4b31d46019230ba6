package tessellate

import (
	"slices"

	"github.com/chazu/prismesh/pkg/options"
	"github.com/chazu/prismesh/pkg/structure"
	"github.com/samber/lo"
)

// BuildZLevels returns the elevations at which side-face rows are cut:
// evenly spaced levels from z0 to z1 at no more than TargetEdgeLengthZ
// apart, plus every constraint segment and auxiliary point elevation that
// lies strictly between z0 and z1. The result is ascending, starts at z0,
// ends at z1, and merges values closer than Epsilon. p may be nil.
func BuildZLevels(z0, z1 float64, opts options.Options, p *structure.Prism) []float64 {
	if !(z1 > z0) {
		return []float64{z0, z1}
	}
	eps := opts.Epsilon

	n := gridCount(z1-z0, opts.TargetEdgeLengthZ)
	levels := make([]float64, 0, n+1)
	for k := 0; k < n; k++ {
		levels = append(levels, z0+(z1-z0)*float64(k)/float64(n))
	}
	levels = append(levels, z1)

	if p != nil {
		extra := lo.Map(p.ConstraintSegments(), func(c structure.ConstraintSegment, _ int) float64 {
			return c.Z
		})
		if aux := p.Aux(); aux != nil {
			for _, pt := range aux.Points() {
				extra = append(extra, pt.Z)
			}
		}
		// Values within eps of an endpoint would be merged into it anyway.
		extra = lo.Filter(extra, func(z float64, _ int) bool {
			return z > z0+eps && z < z1-eps
		})
		levels = append(levels, extra...)
	}

	slices.Sort(levels)
	out := levels[:1]
	for _, z := range levels[1:] {
		if z-out[len(out)-1] < eps {
			continue
		}
		out = append(out, z)
	}
	// z1 may have been merged into a level just below it.
	if len(out) == 1 {
		return append(out, z1)
	}
	out[len(out)-1] = z1
	return out
}
