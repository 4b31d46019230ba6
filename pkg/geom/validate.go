package geom

import (
	"math"

	"github.com/pkg/errors"
)

var (
	// ErrEmptyPolygon is returned for rings with no vertices.
	ErrEmptyPolygon = errors.New("geom: polygon has no vertices")
	// ErrDegeneratePolygon is returned for rings that enclose no area.
	ErrDegeneratePolygon = errors.New("geom: degenerate polygon")
	// ErrSelfIntersecting is returned when two non-adjacent edges meet.
	ErrSelfIntersecting = errors.New("geom: self-intersecting polygon")
)

// ValidatePolygon checks that p is a simple ring enclosing more than eps
// of area: at least three vertices, no coincident neighbours and no
// crossing between non-adjacent edges.
func ValidatePolygon(p Polygon, eps float64) error {
	n := len(p)
	if n == 0 {
		return ErrEmptyPolygon
	}
	if n < 3 {
		return errors.Wrapf(ErrDegeneratePolygon, "%d vertices, need at least 3", n)
	}
	for i := 0; i < n; i++ {
		if p[i].Sub(p[(i+1)%n]).Length() <= eps {
			return errors.Wrapf(ErrDegeneratePolygon, "vertices %d and %d coincide", i, (i+1)%n)
		}
	}
	if a := math.Abs(PolygonArea(p)); a <= eps {
		return errors.Wrapf(ErrDegeneratePolygon, "area %g is not above %g", a, eps)
	}
	for i := 0; i < n; i++ {
		a, b := p[i], p[(i+1)%n]
		for j := i + 1; j < n; j++ {
			if j == i+1 || (i == 0 && j == n-1) {
				continue
			}
			c, d := p[j], p[(j+1)%n]
			if SegmentsIntersect(a, b, c, d) {
				return errors.Wrapf(ErrSelfIntersecting, "edges %d and %d cross", i, j)
			}
		}
	}
	return nil
}

// PolygonInside reports whether every vertex of inner lies inside outer
// (boundary inclusive) and no edges cross.
func PolygonInside(inner, outer Polygon, eps float64) bool {
	for _, v := range inner {
		if !PointInPolygon(outer, v.X, v.Y, eps) {
			return false
		}
	}
	return !edgesCross(inner, outer)
}

// PolygonsOverlap reports whether the interiors of a and b may overlap:
// an edge crossing or one ring holding a vertex of the other.
func PolygonsOverlap(a, b Polygon, eps float64) bool {
	if edgesCross(a, b) {
		return true
	}
	for _, v := range a {
		if PointInPolygon(b, v.X, v.Y, -1) && DistancePointToPolygonBoundary(v, b) > eps {
			return true
		}
	}
	for _, v := range b {
		if PointInPolygon(a, v.X, v.Y, -1) && DistancePointToPolygonBoundary(v, a) > eps {
			return true
		}
	}
	return false
}

// edgesCross reports a proper crossing between an edge of a and an edge
// of b. Touching at endpoints or along collinear runs is not a crossing.
func edgesCross(a, b Polygon) bool {
	for _, e := range a.Edges() {
		for _, f := range b.Edges() {
			d1 := orient(f.A, f.B, e.A)
			d2 := orient(f.A, f.B, e.B)
			d3 := orient(e.A, e.B, f.A)
			d4 := orient(e.A, e.B, f.B)
			if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
				((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
				return true
			}
		}
	}
	return false
}
