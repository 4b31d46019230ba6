package quad

import (
	v2 "github.com/deadsy/sdfx/vec/v2"
)

// MakeQuadFromTrianglePair merges triangles a and b into a quad when they
// share exactly one edge. The quad is returned as four vertex indices in
// counter-clockwise order. It fails if an index is out of range, if either
// triangle repeats a vertex, if the triangles do not share exactly one
// edge, or if the merged quad is not strictly convex with area above eps.
func MakeQuadFromTrianglePair(a, b Triangle, verts []v2.Vec, eps float64) ([4]int, bool) {
	if !validTriangle(a, len(verts)) || !validTriangle(b, len(verts)) {
		return [4]int{}, false
	}

	// Find the vertex of a that b lacks; the other two form the shared edge.
	apex := -1
	shared := 0
	for k, v := range a {
		if contains(b, v) {
			shared++
		} else {
			apex = k
		}
	}
	if shared != 2 || apex < 0 {
		return [4]int{}, false
	}
	p := a[apex]
	s1 := a[(apex+1)%3]
	s2 := a[(apex+2)%3]

	q := -1
	for _, v := range b {
		if v != s1 && v != s2 {
			q = v
		}
	}
	if q < 0 || q == p {
		return [4]int{}, false
	}

	// Walking p, s1, q, s2 follows a's winding around the shared edge.
	idx := [4]int{p, s1, q, s2}
	pts := [4]v2.Vec{verts[p], verts[s1], verts[q], verts[s2]}
	area := (orient(pts[0], pts[1], pts[2]) + orient(pts[0], pts[2], pts[3])) / 2
	if area < 0 {
		idx = [4]int{p, s2, q, s1}
		pts = [4]v2.Vec{verts[p], verts[s2], verts[q], verts[s1]}
	}
	if !convex(pts, eps) {
		return [4]int{}, false
	}
	return idx, true
}

func validTriangle(t Triangle, n int) bool {
	for _, v := range t {
		if v < 0 || v >= n {
			return false
		}
	}
	return t[0] != t[1] && t[1] != t[2] && t[0] != t[2]
}

func contains(t Triangle, v int) bool {
	return t[0] == v || t[1] == v || t[2] == v
}
