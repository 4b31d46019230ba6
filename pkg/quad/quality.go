// Package quad scores quadrilaterals and turns triangle soups into
// quad-dominant meshes by greedy best-first pairing of adjacent
// triangles.
package quad

import (
	"math"

	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// collapseTol is the relative distance under which two quad corners are
// treated as the same point.
const collapseTol = 1e-12

func cross(a, b v2.Vec) float64 {
	return a.X*b.Y - a.Y*b.X
}

func orient(a, b, c v2.Vec) float64 {
	return cross(b.Sub(a), c.Sub(a))
}

// ScoreTriangle returns the normalized shape quality of triangle abc:
// 4*sqrt(3)*area / sum of squared edge lengths. An equilateral triangle
// scores 1 and a collapsed one 0.
func ScoreTriangle(a, b, c v2.Vec) float64 {
	s := b.Sub(a).Dot(b.Sub(a)) + c.Sub(b).Dot(c.Sub(b)) + a.Sub(c).Dot(a.Sub(c))
	if s == 0 {
		return 0
	}
	q := 4 * math.Sqrt(3) * math.Abs(orient(a, b, c)) / 2 / s
	return clamp01(q)
}

// ScoreQuad returns the shape quality of quad p0-p1-p2-p3 in [0, 1]. It is
// the product of an aspect term (shortest side over longest side) and an
// angle-regularity term (1 minus the largest deviation from a right angle,
// normalized by 90 degrees). A unit square scores exactly 1.
//
// Non-convex, self-intersecting and zero-area quads score 0. A quad with
// one collapsed corner carries a triangle and scores half that triangle's
// quality.
func ScoreQuad(p0, p1, p2, p3 v2.Vec) float64 {
	pts := [4]v2.Vec{p0, p1, p2, p3}

	maxSide := 0.0
	for i := 0; i < 4; i++ {
		maxSide = math.Max(maxSide, pts[(i+1)%4].Sub(pts[i]).Length())
	}
	if maxSide == 0 {
		return 0
	}
	tol := collapseTol * (1 + maxSide)

	distinct := make([]v2.Vec, 0, 4)
	for i := 0; i < 4; i++ {
		if pts[(i+1)%4].Sub(pts[i]).Length() > tol {
			distinct = append(distinct, pts[i])
		}
	}
	switch len(distinct) {
	case 4:
	case 3:
		return 0.5 * ScoreTriangle(distinct[0], distinct[1], distinct[2])
	default:
		return 0
	}

	if !convex(pts, tol*maxSide) {
		return 0
	}

	minSide := math.Inf(1)
	maxDev := 0.0
	for i := 0; i < 4; i++ {
		prev := pts[(i+3)%4]
		next := pts[(i+1)%4]
		e := next.Sub(pts[i])
		minSide = math.Min(minSide, e.Length())

		u := prev.Sub(pts[i])
		cos := u.Dot(e) / (u.Length() * e.Length())
		ang := math.Acos(math.Max(-1, math.Min(1, cos)))
		maxDev = math.Max(maxDev, math.Abs(ang-math.Pi/2))
	}
	aspect := minSide / maxSide
	regularity := 1 - maxDev/(math.Pi/2)
	return clamp01(aspect * clamp01(regularity))
}

// convex reports whether the corners turn consistently in one direction
// with every turn larger than tol and enclose non-zero area.
func convex(pts [4]v2.Vec, tol float64) bool {
	sign := 0
	for i := 0; i < 4; i++ {
		o := orient(pts[i], pts[(i+1)%4], pts[(i+2)%4])
		if math.Abs(o) <= tol {
			return false
		}
		s := 1
		if o < 0 {
			s = -1
		}
		if sign == 0 {
			sign = s
		} else if s != sign {
			return false
		}
	}
	area := (orient(pts[0], pts[1], pts[2]) + orient(pts[0], pts[2], pts[3])) / 2
	return math.Abs(area) > tol
}

// Convex reports whether quad p0-p1-p2-p3 is strictly convex with area
// above eps.
func Convex(p0, p1, p2, p3 v2.Vec, eps float64) bool {
	return convex([4]v2.Vec{p0, p1, p2, p3}, eps)
}

// ScoreQuad3 scores a 3D quad. The corners are projected onto the plane
// given by the quad's Newell normal and scored with ScoreQuad; the result
// is then scaled by a planarity factor that falls from 1 to 0 as the
// largest out-of-plane distance approaches the mean side length.
func ScoreQuad3(p0, p1, p2, p3 v3.Vec) float64 {
	pts := [4]v3.Vec{p0, p1, p2, p3}

	var n v3.Vec
	var centroid v3.Vec
	for i := 0; i < 4; i++ {
		a, b := pts[i], pts[(i+1)%4]
		n.X += (a.Y - b.Y) * (a.Z + b.Z)
		n.Y += (a.Z - b.Z) * (a.X + b.X)
		n.Z += (a.X - b.X) * (a.Y + b.Y)
		centroid = centroid.Add(a)
	}
	centroid = centroid.MulScalar(0.25)
	if n.Length() == 0 {
		return 0
	}
	n = n.Normalize()

	// Any vector not parallel to n seeds the in-plane basis.
	seed := v3.Vec{X: 1}
	if math.Abs(n.X) > 0.9 {
		seed = v3.Vec{Y: 1}
	}
	ex := seed.Sub(n.MulScalar(seed.Dot(n))).Normalize()
	ey := n.Cross(ex)

	var flat [4]v2.Vec
	maxOff, perim := 0.0, 0.0
	for i, p := range pts {
		d := p.Sub(centroid)
		flat[i] = v2.Vec{X: d.Dot(ex), Y: d.Dot(ey)}
		maxOff = math.Max(maxOff, math.Abs(d.Dot(n)))
		perim += pts[(i+1)%4].Sub(p).Length()
	}
	planarity := 1.0
	if mean := perim / 4; mean > 0 {
		planarity = clamp01(1 - maxOff/mean)
	}
	return ScoreQuad(flat[0], flat[1], flat[2], flat[3]) * planarity
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
