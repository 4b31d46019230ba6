// Package mesh collects the faces produced by the cap, surface and wall
// generators and converts them into indexed, render and file forms.
package mesh

import (
	"fmt"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Score is a face quality in [0, 1]. NoScore marks faces whose quality was
// never computed, such as side walls.
type Score float64

// NoScore is the Score of an unscored face.
const NoScore Score = -1

// Valid reports whether s carries a computed quality.
func (s Score) Valid() bool {
	return s >= 0
}

// Sink receives faces from the generators. Implementations are
// append-only; generators never read back what they emitted.
type Sink interface {
	AddQuad(p0, p1, p2, p3 v3.Vec, q Score)
	AddTriangle(p0, p1, p2 v3.Vec, q Score)
}

// FaceKind tags a Face as a quad or a triangle.
type FaceKind uint8

const (
	FaceQuad FaceKind = iota
	FaceTriangle
)

func (k FaceKind) String() string {
	switch k {
	case FaceQuad:
		return "quad"
	case FaceTriangle:
		return "triangle"
	default:
		return fmt.Sprintf("FaceKind(%d)", int(k))
	}
}

// Corners returns 4 for quads and 3 for triangles.
func (k FaceKind) Corners() int {
	if k == FaceTriangle {
		return 3
	}
	return 4
}

// Face is one emitted polygon. Triangles leave V[3] unset.
type Face struct {
	Kind    FaceKind
	V       [4]v3.Vec
	Quality Score
}

// Vertices returns the face corners in order.
func (f Face) Vertices() []v3.Vec {
	return f.V[:f.Kind.Corners()]
}

// Center returns the corner average.
func (f Face) Center() v3.Vec {
	var c v3.Vec
	vs := f.Vertices()
	for _, v := range vs {
		c = c.Add(v)
	}
	return c.MulScalar(1 / float64(len(vs)))
}

// Normal returns the unit normal from the first three corners, or the
// zero vector for a collapsed face.
func (f Face) Normal() v3.Vec {
	n := f.V[1].Sub(f.V[0]).Cross(f.V[2].Sub(f.V[0]))
	if f.Kind == FaceQuad {
		n = n.Add(f.V[2].Sub(f.V[0]).Cross(f.V[3].Sub(f.V[0])))
	}
	if l := n.Length(); l > 0 {
		return n.MulScalar(1 / l)
	}
	return v3.Vec{}
}

// Segment is a 3D segment carried through from auxiliary geometry.
type Segment struct {
	A, B v3.Vec
}

// Mesh is an ordered, append-only face list plus the auxiliary points and
// segments of the meshed structure.
type Mesh struct {
	Faces    []Face
	Points   []v3.Vec
	Segments []Segment
}

// Compile-time interface check.
var _ Sink = (*Mesh)(nil)

// New returns an empty mesh.
func New() *Mesh {
	return &Mesh{}
}

// AddQuad appends a quad.
func (m *Mesh) AddQuad(p0, p1, p2, p3 v3.Vec, q Score) {
	m.Faces = append(m.Faces, Face{Kind: FaceQuad, V: [4]v3.Vec{p0, p1, p2, p3}, Quality: q})
}

// AddTriangle appends a triangle.
func (m *Mesh) AddTriangle(p0, p1, p2 v3.Vec, q Score) {
	m.Faces = append(m.Faces, Face{Kind: FaceTriangle, V: [4]v3.Vec{p0, p1, p2}, Quality: q})
}

// AddPoint appends an auxiliary point.
func (m *Mesh) AddPoint(p v3.Vec) {
	m.Points = append(m.Points, p)
}

// AddSegment appends an auxiliary segment.
func (m *Mesh) AddSegment(a, b v3.Vec) {
	m.Segments = append(m.Segments, Segment{A: a, B: b})
}

// Append copies every face, point and segment of o onto m.
func (m *Mesh) Append(o *Mesh) {
	m.Faces = append(m.Faces, o.Faces...)
	m.Points = append(m.Points, o.Points...)
	m.Segments = append(m.Segments, o.Segments...)
}

// QuadCount returns the number of quad faces.
func (m *Mesh) QuadCount() int {
	return m.count(FaceQuad)
}

// TriangleCount returns the number of triangle faces.
func (m *Mesh) TriangleCount() int {
	return m.count(FaceTriangle)
}

func (m *Mesh) count(k FaceKind) int {
	n := 0
	for _, f := range m.Faces {
		if f.Kind == k {
			n++
		}
	}
	return n
}

// IsEmpty reports whether the mesh has no faces.
func (m *Mesh) IsEmpty() bool {
	return len(m.Faces) == 0
}
