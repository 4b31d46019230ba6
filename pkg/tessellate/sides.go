package tessellate

import (
	"github.com/chazu/prismesh/pkg/geom"
	"github.com/chazu/prismesh/pkg/mesh"
	"github.com/chazu/prismesh/pkg/options"
	"github.com/chazu/prismesh/pkg/structure"
)

// SideFaceGenerator emits the vertical walls of a prism. zLevels is the
// output of BuildZLevels. It returns the number of faces written.
type SideFaceGenerator interface {
	GenerateSides(sink mesh.Sink, p *structure.Prism, zLevels []float64, opts options.Options) int
}

// WallGenerator walls the footprint and every hole with unscored quads.
// Each ring edge is split into pieces no longer than TargetEdgeLengthXY
// and each piece gets one quad per pair of consecutive Z-levels. Walls
// face away from the solid: outward on the footprint, into each hole.
type WallGenerator struct{}

// Compile-time interface check.
var _ SideFaceGenerator = WallGenerator{}

// GenerateSides implements SideFaceGenerator.
func (WallGenerator) GenerateSides(sink mesh.Sink, p *structure.Prism, zLevels []float64, opts options.Options) int {
	if len(zLevels) < 2 {
		return 0
	}
	n := wallRing(sink, p.Footprint().CCW(), zLevels, opts.TargetEdgeLengthXY)
	for _, h := range p.Holes() {
		n += wallRing(sink, h.CCW().Reversed(), zLevels, opts.TargetEdgeLengthXY)
	}
	return n
}

func wallRing(sink mesh.Sink, ring geom.Polygon, zLevels []float64, l float64) int {
	n := 0
	for _, e := range ring.Edges() {
		pieces := gridCount(e.Length(), l)
		step := e.B.Sub(e.A).MulScalar(1 / float64(pieces))
		for k := 0; k < pieces; k++ {
			a := e.A.Add(step.MulScalar(float64(k)))
			b := e.A.Add(step.MulScalar(float64(k + 1)))
			if k == pieces-1 {
				b = e.B
			}
			for zi := 0; zi+1 < len(zLevels); zi++ {
				z0, z1 := zLevels[zi], zLevels[zi+1]
				sink.AddQuad(lift(a, z0), lift(b, z0), lift(b, z1), lift(a, z1), mesh.NoScore)
				n++
			}
		}
	}
	return n
}
