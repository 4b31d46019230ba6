// Package geom holds the 2D primitives shared by the cap and surface
// generators: polygons, point-in-polygon tests, distances, the spatial
// containment index and the segment proximity index.
package geom

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
)

// Polygon is an implicitly closed ring of 2D points. The last vertex
// connects back to the first; callers never repeat the first vertex.
type Polygon []v2.Vec

// Segment is a 2D line segment.
type Segment struct {
	A, B v2.Vec
}

// Length returns the Euclidean length of the segment.
func (s Segment) Length() float64 {
	return s.B.Sub(s.A).Length()
}

// cross returns the z component of the cross product of a and b.
func cross(a, b v2.Vec) float64 {
	return a.X*b.Y - a.Y*b.X
}

// orient returns twice the signed area of triangle (a, b, c).
// Positive means c lies to the left of a->b.
func orient(a, b, c v2.Vec) float64 {
	return cross(b.Sub(a), c.Sub(a))
}

// PolygonArea returns the signed area of p (shoelace formula).
// Counter-clockwise rings have positive area.
func PolygonArea(p Polygon) float64 {
	n := len(p)
	if n < 3 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		a := p[i]
		b := p[(i+1)%n]
		sum += a.X*b.Y - b.X*a.Y
	}
	return sum / 2
}

// SignedArea returns the signed area of the ring.
func (p Polygon) SignedArea() float64 {
	return PolygonArea(p)
}

// Area returns the absolute area of the ring.
func (p Polygon) Area() float64 {
	return math.Abs(PolygonArea(p))
}

// IsCCW reports whether the ring winds counter-clockwise.
func (p Polygon) IsCCW() bool {
	return PolygonArea(p) > 0
}

// Reversed returns a copy of the ring with the opposite winding.
func (p Polygon) Reversed() Polygon {
	out := make(Polygon, len(p))
	for i, v := range p {
		out[len(p)-1-i] = v
	}
	return out
}

// CCW returns a copy of the ring wound counter-clockwise. Clockwise rings
// are reversed.
func (p Polygon) CCW() Polygon {
	if PolygonArea(p) < 0 {
		return p.Reversed()
	}
	return p.Clone()
}

// Clone returns an independent copy of the ring.
func (p Polygon) Clone() Polygon {
	if p == nil {
		return nil
	}
	out := make(Polygon, len(p))
	copy(out, p)
	return out
}

// Bounds returns the axis-aligned bounding box of the ring.
func (p Polygon) Bounds() sdf.Box2 {
	if len(p) == 0 {
		return sdf.Box2{}
	}
	lo, hi := p[0], p[0]
	for _, v := range p[1:] {
		lo = lo.Min(v)
		hi = hi.Max(v)
	}
	return sdf.Box2{Min: lo, Max: hi}
}

// Edges returns the closed edge list of the ring.
func (p Polygon) Edges() []Segment {
	n := len(p)
	if n < 2 {
		return nil
	}
	edges := make([]Segment, 0, n)
	for i := 0; i < n; i++ {
		edges = append(edges, Segment{A: p[i], B: p[(i+1)%n]})
	}
	return edges
}

// Centroid returns the area centroid of the ring. Degenerate rings fall
// back to the vertex average.
func (p Polygon) Centroid() v2.Vec {
	n := len(p)
	if n == 0 {
		return v2.Vec{}
	}
	a := PolygonArea(p)
	if math.Abs(a) < 1e-300 {
		var sum v2.Vec
		for _, v := range p {
			sum = sum.Add(v)
		}
		return sum.MulScalar(1 / float64(n))
	}
	var cx, cy float64
	for i := 0; i < n; i++ {
		u := p[i]
		w := p[(i+1)%n]
		f := u.X*w.Y - w.X*u.Y
		cx += (u.X + w.X) * f
		cy += (u.Y + w.Y) * f
	}
	return v2.Vec{X: cx / (6 * a), Y: cy / (6 * a)}
}

// RectangleBounds reports whether p is an axis-aligned rectangle within
// eps, returning its bounds when it is. Coincident and collinear vertices
// are ignored, so a rectangle with extra points along its sides still
// qualifies.
func RectangleBounds(p Polygon, eps float64) (sdf.Box2, bool) {
	corners := simplify(p, eps)
	if len(corners) != 4 {
		return sdf.Box2{}, false
	}
	bb := corners.Bounds()
	size := bb.Size()
	if size.X <= eps || size.Y <= eps {
		return sdf.Box2{}, false
	}
	for _, c := range corners {
		onX := math.Abs(c.X-bb.Min.X) <= eps || math.Abs(c.X-bb.Max.X) <= eps
		onY := math.Abs(c.Y-bb.Min.Y) <= eps || math.Abs(c.Y-bb.Max.Y) <= eps
		if !onX || !onY {
			return sdf.Box2{}, false
		}
	}
	// Every edge must run along an axis; this rejects bow-tie orderings
	// of the same four corners.
	for i := 0; i < 4; i++ {
		a := corners[i]
		b := corners[(i+1)%4]
		if math.Abs(a.X-b.X) > eps && math.Abs(a.Y-b.Y) > eps {
			return sdf.Box2{}, false
		}
	}
	return bb, true
}

// simplify drops coincident vertices and vertices collinear with their
// neighbours.
func simplify(p Polygon, eps float64) Polygon {
	var out Polygon
	for _, v := range p {
		if len(out) > 0 && out[len(out)-1].Sub(v).Length() <= eps {
			continue
		}
		out = append(out, v)
	}
	if len(out) > 1 && out[0].Sub(out[len(out)-1]).Length() <= eps {
		out = out[:len(out)-1]
	}
	for changed := true; changed && len(out) >= 3; {
		changed = false
		for i := 0; i < len(out); i++ {
			prev := out[(i+len(out)-1)%len(out)]
			next := out[(i+1)%len(out)]
			if math.Abs(orient(prev, out[i], next)) <= eps*prev.Sub(next).Length() {
				out = append(out[:i], out[i+1:]...)
				changed = true
				break
			}
		}
	}
	return out
}
