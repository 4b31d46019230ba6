package geom

import (
	"math"

	v2 "github.com/deadsy/sdfx/vec/v2"
	"github.com/pkg/errors"
)

// ErrResultLength is returned by the batch tests when the result buffer
// does not match the number of query points.
var ErrResultLength = errors.New("geom: result buffer length does not match point count")

// PointInPolygon reports whether (x, y) lies inside poly using the
// crossing-number rule: a horizontal ray towards +X is cast and an odd
// number of edge crossings means inside. Points within eps of an edge or
// vertex count as inside.
func PointInPolygon(poly Polygon, x, y, eps float64) bool {
	n := len(poly)
	if n < 3 {
		return false
	}
	p := v2.Vec{X: x, Y: y}
	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a := poly[j]
		b := poly[i]
		if DistancePointToSegment(p, a, b) <= eps {
			return true
		}
		if (b.Y > y) != (a.Y > y) {
			xCross := (a.X-b.X)*(y-b.Y)/(a.Y-b.Y) + b.X
			if x < xCross {
				inside = !inside
			}
		}
	}
	return inside
}

// PointsInPolygon runs PointInPolygon for every point and writes the
// answers into results, which must have the same length as pts.
func PointsInPolygon(poly Polygon, pts []v2.Vec, results []bool, eps float64) error {
	if len(results) != len(pts) {
		return errors.Wrapf(ErrResultLength, "%d points, %d results", len(pts), len(results))
	}
	for i, p := range pts {
		results[i] = PointInPolygon(poly, p.X, p.Y, eps)
	}
	return nil
}

// DistancePointToSegment returns the distance from p to segment ab. When
// the projection of p falls outside the segment the distance to the
// nearest endpoint is returned; a zero-length segment degrades to a
// point-to-point distance.
func DistancePointToSegment(p, a, b v2.Vec) float64 {
	ab := b.Sub(a)
	l2 := ab.Dot(ab)
	if l2 == 0 {
		return p.Sub(a).Length()
	}
	t := p.Sub(a).Dot(ab) / l2
	switch {
	case t <= 0:
		return p.Sub(a).Length()
	case t >= 1:
		return p.Sub(b).Length()
	}
	return p.Sub(a.Add(ab.MulScalar(t))).Length()
}

// DistancePointToPolygonBoundary returns the distance from p to the
// closest edge of poly.
func DistancePointToPolygonBoundary(p v2.Vec, poly Polygon) float64 {
	best := math.Inf(1)
	n := len(poly)
	for i := 0; i < n; i++ {
		d := DistancePointToSegment(p, poly[i], poly[(i+1)%n])
		if d < best {
			best = d
		}
	}
	return best
}

// SegmentsIntersect reports whether closed segments ab and cd share a
// point. Collinear overlaps count as intersections.
func SegmentsIntersect(a, b, c, d v2.Vec) bool {
	d1 := orient(c, d, a)
	d2 := orient(c, d, b)
	d3 := orient(a, b, c)
	d4 := orient(a, b, d)
	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}
	switch {
	case d1 == 0 && onSegment(c, d, a):
		return true
	case d2 == 0 && onSegment(c, d, b):
		return true
	case d3 == 0 && onSegment(a, b, c):
		return true
	case d4 == 0 && onSegment(a, b, d):
		return true
	}
	return false
}

// onSegment reports whether p, already known to be collinear with ab,
// lies within the bounding box of ab.
func onSegment(a, b, p v2.Vec) bool {
	return math.Min(a.X, b.X) <= p.X && p.X <= math.Max(a.X, b.X) &&
		math.Min(a.Y, b.Y) <= p.Y && p.Y <= math.Max(a.Y, b.Y)
}

// segmentIntersectsRect reports whether segment ab touches the closed
// rectangle [lo, hi]. Liang-Barsky clipping.
func segmentIntersectsRect(a, b, lo, hi v2.Vec) bool {
	t0, t1 := 0.0, 1.0
	d := b.Sub(a)
	clip := func(p, q float64) bool {
		if p == 0 {
			return q >= 0
		}
		r := q / p
		if p < 0 {
			if r > t1 {
				return false
			}
			if r > t0 {
				t0 = r
			}
		} else {
			if r < t0 {
				return false
			}
			if r < t1 {
				t1 = r
			}
		}
		return true
	}
	return clip(-d.X, a.X-lo.X) &&
		clip(d.X, hi.X-a.X) &&
		clip(-d.Y, a.Y-lo.Y) &&
		clip(d.Y, hi.Y-a.Y)
}

// DistanceSegmentToRect returns the distance between segment ab and the
// closed rectangle [lo, hi]; zero when they touch.
func DistanceSegmentToRect(a, b, lo, hi v2.Vec) float64 {
	if segmentIntersectsRect(a, b, lo, hi) {
		return 0
	}
	best := math.Min(distancePointToRect(a, lo, hi), distancePointToRect(b, lo, hi))
	corners := [4]v2.Vec{lo, {X: hi.X, Y: lo.Y}, hi, {X: lo.X, Y: hi.Y}}
	for _, c := range corners {
		if d := DistancePointToSegment(c, a, b); d < best {
			best = d
		}
	}
	return best
}

func distancePointToRect(p, lo, hi v2.Vec) float64 {
	dx := math.Max(math.Max(lo.X-p.X, 0), p.X-hi.X)
	dy := math.Max(math.Max(lo.Y-p.Y, 0), p.Y-hi.Y)
	return math.Hypot(dx, dy)
}
