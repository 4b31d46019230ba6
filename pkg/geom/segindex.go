package geom

import (
	"math"

	v2 "github.com/deadsy/sdfx/vec/v2"
	"github.com/dhconnelly/rtreego"
)

// SegmentIndex is an R-tree of 2D segments used for refinement-band
// queries ("is any hole edge within d of this cell?").
type SegmentIndex struct {
	tree *rtreego.Rtree
	pad  float64
	n    int
}

// indexedSegment adapts a Segment to rtreego.Spatial.
type indexedSegment struct {
	seg  Segment
	rect rtreego.Rect
}

func (s *indexedSegment) Bounds() rtreego.Rect {
	return s.rect
}

// boxRect builds an rtreego rectangle covering [lo, hi] grown by pad.
// rtreego rejects zero-length sides, so pad must be positive.
func boxRect(lo, hi v2.Vec, pad float64) rtreego.Rect {
	r, err := rtreego.NewRect(
		rtreego.Point{lo.X - pad, lo.Y - pad},
		[]float64{hi.X - lo.X + 2*pad, hi.Y - lo.Y + 2*pad},
	)
	if err != nil {
		// Only reachable with NaN coordinates.
		panic("geom: invalid segment bounds: " + err.Error())
	}
	return r
}

// NewSegmentIndex indexes segs. pad grows every bounding box so
// axis-parallel segments still have positive extent; it should be a
// small positive length such as the meshing epsilon.
func NewSegmentIndex(segs []Segment, pad float64) *SegmentIndex {
	if pad <= 0 {
		pad = 1e-9
	}
	idx := &SegmentIndex{tree: rtreego.NewTree(2, 4, 16), pad: pad}
	for _, s := range segs {
		idx.Insert(s)
	}
	return idx
}

// PolygonSegments collects the closed edge lists of rings.
func PolygonSegments(rings []Polygon) []Segment {
	var segs []Segment
	for _, r := range rings {
		segs = append(segs, r.Edges()...)
	}
	return segs
}

// Insert adds one segment to the index.
func (idx *SegmentIndex) Insert(s Segment) {
	idx.tree.Insert(&indexedSegment{seg: s, rect: boxRect(s.A.Min(s.B), s.A.Max(s.B), idx.pad)})
	idx.n++
}

// Len returns the number of indexed segments.
func (idx *SegmentIndex) Len() int {
	return idx.n
}

// WithinDistanceOfRect reports whether any segment lies within d of the
// rectangle [lo, hi].
func (idx *SegmentIndex) WithinDistanceOfRect(lo, hi v2.Vec, d float64) bool {
	if idx.n == 0 {
		return false
	}
	q := boxRect(lo, hi, math.Max(d, 0)+idx.pad)
	for _, hit := range idx.tree.SearchIntersect(q) {
		s := hit.(*indexedSegment).seg
		if DistanceSegmentToRect(s.A, s.B, lo, hi) <= d {
			return true
		}
	}
	return false
}

// WithinDistanceOfPoint reports whether any segment lies within d of p.
func (idx *SegmentIndex) WithinDistanceOfPoint(p v2.Vec, d float64) bool {
	return idx.WithinDistanceOfRect(p, p, d)
}

// Nearest returns the distance from p to the closest segment within
// maxDist, or +Inf when none is that close.
func (idx *SegmentIndex) Nearest(p v2.Vec, maxDist float64) float64 {
	best := math.Inf(1)
	if idx.n == 0 {
		return best
	}
	q := boxRect(p, p, math.Max(maxDist, 0)+idx.pad)
	for _, hit := range idx.tree.SearchIntersect(q) {
		s := hit.(*indexedSegment).seg
		if d := DistancePointToSegment(p, s.A, s.B); d <= maxDist && d < best {
			best = d
		}
	}
	return best
}
