package geom

import "github.com/pkg/errors"

// Containment answers point-in-polygon queries for one ring. Both the
// grid-backed SpatialIndex and a plain ring (ExactContainment) satisfy it,
// so callers choose speed or simplicity without changing their code.
type Containment interface {
	Contains(x, y float64) bool
}

// Compile-time interface checks.
var (
	_ Containment = (*SpatialIndex)(nil)
	_ Containment = ExactContainment{}
)

// ExactContainment runs the ray-casting test on every query.
type ExactContainment struct {
	Poly Polygon
	Eps  float64
}

// Contains implements Containment.
func (c ExactContainment) Contains(x, y float64) bool {
	return PointInPolygon(c.Poly, x, y, c.Eps)
}

// Region is a polygon with holes: a point belongs to it when the outer
// ring contains it and no hole does. Hole boundaries count as part of the
// hole, so cells centered on a hole edge are excluded.
type Region struct {
	Outer Containment
	Holes []Containment
}

// Contains reports whether (x, y) lies in the outer ring and outside
// every hole.
func (r *Region) Contains(x, y float64) bool {
	if r.Outer != nil && !r.Outer.Contains(x, y) {
		return false
	}
	return !InsideAnyHole(r.Holes, x, y)
}

// InsideAnyHole reports whether any of holes contains (x, y).
func InsideAnyHole(holes []Containment, x, y float64) bool {
	for _, h := range holes {
		if h.Contains(x, y) {
			return true
		}
	}
	return false
}

// NewRegion indexes outer and each hole once so a meshing pass can test
// thousands of cell centers cheaply.
func NewRegion(outer Polygon, holes []Polygon, res int, eps float64) (*Region, error) {
	oi, err := NewSpatialIndex(outer, res, eps)
	if err != nil {
		return nil, errors.Wrap(err, "geom: index outer ring")
	}
	r := &Region{Outer: oi, Holes: make([]Containment, 0, len(holes))}
	for i, h := range holes {
		hi, err := NewSpatialIndex(h, res, eps)
		if err != nil {
			return nil, errors.Wrapf(err, "geom: index hole %d", i)
		}
		r.Holes = append(r.Holes, hi)
	}
	return r, nil
}
