// Package earcut implements the kernel.Triangulator interface using the
// github.com/rclancey/earcut ear-clipping library.
package earcut

import (
	"sync"

	"github.com/chazu/prismesh/pkg/geom"
	"github.com/chazu/prismesh/pkg/kernel"
	v2 "github.com/deadsy/sdfx/vec/v2"
	"github.com/pkg/errors"
	libearcut "github.com/rclancey/earcut"
)

// Compile-time interface check.
var _ kernel.Triangulator = (*Triangulator)(nil)

// coordPool recycles the flat coordinate buffer earcut reads from. A
// buffer is checked out for one call and returned before Triangulate
// exits.
var coordPool = sync.Pool{
	New: func() any {
		s := make([]float64, 0, 256)
		return &s
	},
}

// Triangulator implements kernel.Triangulator using earcut.
type Triangulator struct{}

// New returns a new Triangulator.
func New() *Triangulator {
	return &Triangulator{}
}

// Triangulate flattens the outer ring followed by every hole into one
// coordinate array, records where each hole starts, and runs earcut.
// Output vertices are the input vertices in that order. An outer ring
// with fewer than three vertices yields an empty result.
func (t *Triangulator) Triangulate(outer geom.Polygon, holes []geom.Polygon) (*kernel.Result, error) {
	if len(outer) < 3 {
		return &kernel.Result{}, nil
	}

	n := len(outer)
	for _, h := range holes {
		n += len(h)
	}
	verts := make([]v2.Vec, 0, n)
	verts = append(verts, outer...)

	var holeIndices []int
	for _, h := range holes {
		if len(h) < 3 {
			continue
		}
		holeIndices = append(holeIndices, len(verts))
		verts = append(verts, h...)
	}

	bufp := coordPool.Get().(*[]float64)
	coords := (*bufp)[:0]
	for _, v := range verts {
		coords = append(coords, v.X, v.Y)
	}
	defer func() {
		*bufp = coords[:0]
		coordPool.Put(bufp)
	}()

	idx, err := libearcut.Earcut(coords, holeIndices, 2)
	if err != nil {
		return nil, errors.Wrapf(err, "earcut: triangulate %d vertices, %d holes", len(verts), len(holeIndices))
	}
	return &kernel.Result{
		Vertices:     verts,
		Elements:     idx,
		ElementCount: len(idx) / 3,
	}, nil
}
