package tessellate

import (
	"github.com/chazu/prismesh/pkg/geom"
	"github.com/chazu/prismesh/pkg/kernel"
	"github.com/chazu/prismesh/pkg/options"
	"github.com/chazu/prismesh/pkg/structure"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// surfaceOutcome describes how a slab was meshed.
type surfaceOutcome struct {
	pairs    pairStats
	fallback bool // structured grid used instead of the triangulation
}

// planSurface meshes one internal surface with the triangulate and pair
// pipeline. When the triangulator yields nothing usable, a structured grid
// over the slab's bounding box takes over, max(2, ceil(side/L)) cells per
// axis; if no cell center of that grid lands in the slab the fixed 2x2
// grid is tried.
func planSurface(tri kernel.Triangulator, s structure.InternalSurface, opts options.Options, log *zap.Logger) (*plan, surfaceOutcome, error) {
	var out surfaceOutcome
	region, err := geom.NewRegion(s.Outer, s.Holes, opts.IndexResolution, opts.Epsilon)
	if err != nil {
		return nil, out, errors.Wrap(err, "tessellate: index surface")
	}

	pl, st, ok := planTessellated(tri, s.Outer, s.Holes, region, opts, log)
	out.pairs = st
	if ok && st.Usable > 0 {
		return pl, out, nil
	}

	out.fallback = true
	box := s.Outer.Bounds()
	size := box.Size()
	nx := max(2, gridCount(size.X, opts.TargetEdgeLengthXY))
	ny := max(2, gridCount(size.Y, opts.TargetEdgeLengthXY))
	pl = planBoxGrid(box.Min, size.X/float64(nx), size.Y/float64(ny), nx, ny, region)
	if pl.len() == 0 && (nx != 2 || ny != 2) {
		pl = planBoxGrid(box.Min, size.X/2, size.Y/2, 2, 2, region)
	}
	log.Warn("internal surface fell back to a structured grid",
		zap.Float64("elevation", s.Elevation),
		zap.Int("holes", len(s.Holes)),
		zap.Int("faces", pl.len()),
	)
	return pl, out, nil
}
