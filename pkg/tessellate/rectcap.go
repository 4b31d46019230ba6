package tessellate

import (
	"github.com/chazu/prismesh/pkg/geom"
	"github.com/chazu/prismesh/pkg/options"
	"github.com/chazu/prismesh/pkg/quad"
	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
)

// cellClaim records which refinement grid, if any, owns a base cell.
type cellClaim uint8

const (
	claimNone cellClaim = iota
	claimHole
	claimSegment
)

// rectStats counts the cells a rectangle plan emitted per grid.
type rectStats struct {
	nx, ny       int
	baseCells    int
	holeCells    int
	segmentCells int
}

// rectGrid is the base grid over the footprint's bounding box.
type rectGrid struct {
	origin v2.Vec
	nx, ny int
	dx, dy float64
}

func newRectGrid(box sdf.Box2, l float64) rectGrid {
	size := box.Size()
	g := rectGrid{origin: box.Min, nx: gridCount(size.X, l), ny: gridCount(size.Y, l)}
	g.dx = size.X / float64(g.nx)
	g.dy = size.Y / float64(g.ny)
	return g
}

// cell returns the corners of base cell (i, j).
func (g rectGrid) cell(i, j int) (lo, hi v2.Vec) {
	lo = v2.Vec{X: g.origin.X + float64(i)*g.dx, Y: g.origin.Y + float64(j)*g.dy}
	hi = v2.Vec{X: lo.X + g.dx, Y: lo.Y + g.dy}
	return lo, hi
}

// addCell appends the cell [lo, hi] as a CCW quad when its center lies in
// region.
func addCell(pl *plan, region geom.Containment, lo, hi v2.Vec) bool {
	cx, cy := (lo.X+hi.X)/2, (lo.Y+hi.Y)/2
	if !region.Contains(cx, cy) {
		return false
	}
	a := lo
	b := v2.Vec{X: hi.X, Y: lo.Y}
	c := hi
	d := v2.Vec{X: lo.X, Y: hi.Y}
	pl.addQuad(a, b, c, d, quad.ScoreQuad(a, b, c, d))
	return true
}

// planRectCap lays a structured grid over an axis-aligned rectangular
// footprint. Base cells within HoleRefineBand of a hole edge, or within
// SegmentRefineBand of a constraint segment, are handed to a finer grid
// aligned with the base grid; hole claims win over segment claims, so each
// base cell is emitted by exactly one grid. Cells are kept when their
// center lies in region. Faces are ordered base grid, hole grid, segment
// grid. Either segment index may be nil.
func planRectCap(box sdf.Box2, region geom.Containment, holeSegs, constraintSegs *geom.SegmentIndex, opts options.Options) (*plan, rectStats) {
	g := newRectGrid(box, opts.TargetEdgeLengthXY)
	st := rectStats{nx: g.nx, ny: g.ny}
	claims := make([]cellClaim, g.nx*g.ny)

	claim := func(idx *geom.SegmentIndex, band float64, c cellClaim) {
		if idx == nil || idx.Len() == 0 {
			return
		}
		for j := 0; j < g.ny; j++ {
			for i := 0; i < g.nx; i++ {
				if claims[j*g.nx+i] != claimNone {
					continue
				}
				lo, hi := g.cell(i, j)
				if idx.WithinDistanceOfRect(lo, hi, band) {
					claims[j*g.nx+i] = c
				}
			}
		}
	}
	if opts.HoleRefinementEnabled() {
		claim(holeSegs, opts.HoleRefineBand, claimHole)
	}
	if opts.SegmentRefinementEnabled() {
		claim(constraintSegs, opts.SegmentRefineBand, claimSegment)
	}

	pl := &plan{}
	for j := 0; j < g.ny; j++ {
		for i := 0; i < g.nx; i++ {
			if claims[j*g.nx+i] != claimNone {
				continue
			}
			lo, hi := g.cell(i, j)
			if addCell(pl, region, lo, hi) {
				st.baseCells++
			}
		}
	}

	fine := func(c cellClaim, l float64) int {
		sx, sy := gridCount(g.dx, l), gridCount(g.dy, l)
		fx, fy := g.dx/float64(sx), g.dy/float64(sy)
		n := 0
		for j := 0; j < g.ny; j++ {
			for i := 0; i < g.nx; i++ {
				if claims[j*g.nx+i] != c {
					continue
				}
				base, _ := g.cell(i, j)
				for b := 0; b < sy; b++ {
					for a := 0; a < sx; a++ {
						lo := v2.Vec{X: base.X + float64(a)*fx, Y: base.Y + float64(b)*fy}
						hi := v2.Vec{X: lo.X + fx, Y: lo.Y + fy}
						if addCell(pl, region, lo, hi) {
							n++
						}
					}
				}
			}
		}
		return n
	}
	st.holeCells = fine(claimHole, opts.TargetEdgeLengthXYNearHoles)
	st.segmentCells = fine(claimSegment, opts.TargetEdgeLengthXYNearSegments)
	return pl, st
}

// planBoxGrid emits the nx by ny cells of size dx by dy starting at origin
// whose centers lie in region.
func planBoxGrid(origin v2.Vec, dx, dy float64, nx, ny int, region geom.Containment) *plan {
	g := rectGrid{origin: origin, nx: nx, ny: ny, dx: dx, dy: dy}
	pl := &plan{}
	for j := 0; j < g.ny; j++ {
		for i := 0; i < g.nx; i++ {
			lo, hi := g.cell(i, j)
			addCell(pl, region, lo, hi)
		}
	}
	return pl
}
