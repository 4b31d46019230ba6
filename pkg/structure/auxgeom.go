package structure

import (
	"sync"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Segment3 is a 3D line segment.
type Segment3 struct {
	A, B v3.Vec
}

// AuxiliaryGeometry holds points and segments that are copied verbatim
// into the output mesh. It is never tessellated, but point elevations
// inside the prism become Z-levels. Safe for concurrent use.
type AuxiliaryGeometry struct {
	mu       sync.RWMutex
	points   []v3.Vec
	segments []Segment3
}

// NewAuxiliaryGeometry returns an empty container.
func NewAuxiliaryGeometry() *AuxiliaryGeometry {
	return &AuxiliaryGeometry{}
}

// AddPoint appends p.
func (a *AuxiliaryGeometry) AddPoint(p v3.Vec) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.points = append(a.points, p)
}

// AddSegment appends the segment from p to q.
func (a *AuxiliaryGeometry) AddSegment(p, q v3.Vec) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.segments = append(a.segments, Segment3{A: p, B: q})
}

// Points returns a snapshot of the points in insertion order.
func (a *AuxiliaryGeometry) Points() []v3.Vec {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]v3.Vec(nil), a.points...)
}

// Segments returns a snapshot of the segments in insertion order.
func (a *AuxiliaryGeometry) Segments() []Segment3 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]Segment3(nil), a.segments...)
}

// Len returns the number of points and segments.
func (a *AuxiliaryGeometry) Len() (points, segments int) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.points), len(a.segments)
}
