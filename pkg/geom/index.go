package geom

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
	"github.com/pkg/errors"
)

// DefaultIndexResolution is the number of grid cells per axis used when
// callers do not choose one.
const DefaultIndexResolution = 32

// ErrInvalidResolution is returned for a non-positive grid resolution.
var ErrInvalidResolution = errors.New("geom: index resolution must be positive")

type cellState uint8

const (
	cellOutside  cellState = iota // entirely outside the polygon
	cellInside                    // entirely inside, no edge within eps
	cellBoundary                  // an edge passes within eps; test exactly
)

// SpatialIndex answers point-in-polygon queries for one polygon through a
// uniform grid over its bounding box. Cells far from every edge cache
// their classification; cells near an edge defer to PointInPolygon, so
// every answer equals the direct test.
//
// A SpatialIndex is read-only after construction and safe for concurrent
// queries.
type SpatialIndex struct {
	poly   Polygon
	bounds sdf.Box2
	res    int
	cell   v2.Vec
	eps    float64
	cells  []cellState
}

// NewSpatialIndex builds the grid for poly with res cells per axis.
func NewSpatialIndex(poly Polygon, res int, eps float64) (*SpatialIndex, error) {
	if len(poly) == 0 {
		return nil, ErrEmptyPolygon
	}
	if res <= 0 {
		return nil, errors.Wrapf(ErrInvalidResolution, "got %d", res)
	}
	s := &SpatialIndex{
		poly:   poly,
		bounds: poly.Bounds(),
		res:    res,
		eps:    eps,
		cells:  make([]cellState, res*res),
	}
	size := s.bounds.Size()
	if size.X <= 0 || size.Y <= 0 {
		// Flat ring: nothing can be cached, every query is exact.
		s.cell = v2.Vec{X: 1, Y: 1}
		for i := range s.cells {
			s.cells[i] = cellBoundary
		}
		return s, nil
	}
	s.cell = v2.Vec{X: size.X / float64(res), Y: size.Y / float64(res)}
	s.classify()
	return s, nil
}

// classify marks every cell touched by an edge (grown by eps) as boundary
// and resolves the rest with a single exact test at the cell center.
func (s *SpatialIndex) classify() {
	// The slack covers rounding in cellOf so a query never lands in a
	// cached cell it sits just outside of.
	margin := math.Max(s.eps, 0) + 1e-9*math.Max(s.cell.X, s.cell.Y)
	for _, e := range s.poly.Edges() {
		lo := e.A.Min(e.B)
		hi := e.A.Max(e.B)
		i0, j0 := s.cellOf(lo.X-margin, lo.Y-margin)
		i1, j1 := s.cellOf(hi.X+margin, hi.Y+margin)
		for j := j0; j <= j1; j++ {
			for i := i0; i <= i1; i++ {
				clo, chi := s.cellRect(i, j)
				grow := v2.Vec{X: margin, Y: margin}
				if segmentIntersectsRect(e.A, e.B, clo.Sub(grow), chi.Add(grow)) {
					s.cells[j*s.res+i] = cellBoundary
				}
			}
		}
	}
	for j := 0; j < s.res; j++ {
		for i := 0; i < s.res; i++ {
			k := j*s.res + i
			if s.cells[k] == cellBoundary {
				continue
			}
			lo, hi := s.cellRect(i, j)
			c := lo.Add(hi).MulScalar(0.5)
			if PointInPolygon(s.poly, c.X, c.Y, s.eps) {
				s.cells[k] = cellInside
			} else {
				s.cells[k] = cellOutside
			}
		}
	}
}

// cellOf maps a point to its clamped cell coordinates.
func (s *SpatialIndex) cellOf(x, y float64) (int, int) {
	i := int(math.Floor((x - s.bounds.Min.X) / s.cell.X))
	j := int(math.Floor((y - s.bounds.Min.Y) / s.cell.Y))
	return clampInt(i, 0, s.res-1), clampInt(j, 0, s.res-1)
}

func (s *SpatialIndex) cellRect(i, j int) (v2.Vec, v2.Vec) {
	lo := v2.Vec{
		X: s.bounds.Min.X + float64(i)*s.cell.X,
		Y: s.bounds.Min.Y + float64(j)*s.cell.Y,
	}
	hi := v2.Vec{
		X: s.bounds.Min.X + float64(i+1)*s.cell.X,
		Y: s.bounds.Min.Y + float64(j+1)*s.cell.Y,
	}
	if i == s.res-1 {
		hi.X = s.bounds.Max.X
	}
	if j == s.res-1 {
		hi.Y = s.bounds.Max.Y
	}
	return lo, hi
}

// IsInside reports whether (x, y) is inside the polygon, boundary
// inclusive.
func (s *SpatialIndex) IsInside(x, y float64) bool {
	margin := math.Max(s.eps, 0)
	b := s.bounds
	if x < b.Min.X-margin || x > b.Max.X+margin || y < b.Min.Y-margin || y > b.Max.Y+margin {
		return false
	}
	if x < b.Min.X || x > b.Max.X || y < b.Min.Y || y > b.Max.Y {
		return PointInPolygon(s.poly, x, y, s.eps)
	}
	i, j := s.cellOf(x, y)
	switch s.cells[j*s.res+i] {
	case cellInside:
		return true
	case cellOutside:
		return false
	}
	return PointInPolygon(s.poly, x, y, s.eps)
}

// Contains implements Containment.
func (s *SpatialIndex) Contains(x, y float64) bool {
	return s.IsInside(x, y)
}

// Resolution returns the number of cells per axis.
func (s *SpatialIndex) Resolution() int {
	return s.res
}

// Polygon returns the indexed ring.
func (s *SpatialIndex) Polygon() Polygon {
	return s.poly
}

// BoundaryCells returns how many cells fall back to the exact test.
func (s *SpatialIndex) BoundaryCells() int {
	n := 0
	for _, c := range s.cells {
		if c == cellBoundary {
			n++
		}
	}
	return n
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
