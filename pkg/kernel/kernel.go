// Package kernel defines the abstract polygon triangulation interface.
// Implementations (earcut) turn a polygon with holes into a triangle soup
// behind this interface. The abstraction allows swapping triangulation
// backends without changing the cap and surface generators.
package kernel

import (
	"github.com/chazu/prismesh/pkg/geom"
	v2 "github.com/deadsy/sdfx/vec/v2"
)

// Triangulator is the abstract triangulation interface. The outer ring and
// every hole are passed as closed contours and combined with the even-odd
// winding rule, so ring orientation does not matter.
type Triangulator interface {
	Triangulate(outer geom.Polygon, holes []geom.Polygon) (*Result, error)
}

// Result is a triangle soup.
//
// Backends are allowed to return partial or odd output: a nil Result, nil
// arrays, an ElementCount that disagrees with Elements, or index slots
// holding -1. Consumers read triangles through Triangle, which checks
// every index.
type Result struct {
	Vertices     []v2.Vec // triangle corner positions
	Elements     []int    // [i0,i1,i2, ...] three vertex indices per triangle
	ElementCount int      // number of triangles
}

// Empty reports whether r carries no usable triangles.
func (r *Result) Empty() bool {
	return r == nil || r.ElementCount <= 0 || len(r.Vertices) == 0 || len(r.Elements) < 3
}

// Count returns the number of triangle slots that can be read: the
// smaller of ElementCount and len(Elements)/3.
func (r *Result) Count() int {
	if r == nil {
		return 0
	}
	n := len(r.Elements) / 3
	if r.ElementCount < n {
		n = r.ElementCount
	}
	if n < 0 {
		return 0
	}
	return n
}

// Triangle returns the vertex indices of triangle i, or false when the
// slot is out of range or references a missing vertex.
func (r *Result) Triangle(i int) ([3]int, bool) {
	if i < 0 || i >= r.Count() {
		return [3]int{}, false
	}
	t := [3]int{r.Elements[3*i], r.Elements[3*i+1], r.Elements[3*i+2]}
	for _, v := range t {
		if v < 0 || v >= len(r.Vertices) {
			return [3]int{}, false
		}
	}
	return t, true
}
