// Package structure defines the prismatic solids that get meshed: a 2D
// footprint extruded between two elevations, with holes, horizontal
// constraint segments, internal slabs and auxiliary geometry carried
// through to the output.
//
// A Prism is immutable. Builder methods (AddHole, AddConstraintSegment,
// AddInternalSurface) return a new Prism and never touch the receiver, so
// one base structure can be extended along several branches safely. The
// attached AuxiliaryGeometry is the one exception: it is shared by every
// copy and accepts in-place additions.
package structure

import (
	"fmt"

	"github.com/chazu/prismesh/pkg/geom"
	v2 "github.com/deadsy/sdfx/vec/v2"
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// ErrInvalidElevations is returned when base is not strictly below top.
var ErrInvalidElevations = errors.New("structure: base elevation must be below top elevation")

// ConstraintSegment is a horizontal 2D segment at elevation Z. It forces an
// extra row of side faces at Z.
type ConstraintSegment struct {
	A, B v2.Vec
	Z    float64
}

// Segment returns the 2D part of the constraint.
func (c ConstraintSegment) Segment() geom.Segment {
	return geom.Segment{A: c.A, B: c.B}
}

// InternalSurface is a horizontal slab at a single elevation with its own
// outer ring and holes.
type InternalSurface struct {
	Outer     geom.Polygon
	Elevation float64
	Holes     []geom.Polygon
}

// NewInternalSurface builds a slab with every ring wound counter-clockwise.
func NewInternalSurface(outer geom.Polygon, elevation float64, holes ...geom.Polygon) InternalSurface {
	return InternalSurface{
		Outer:     outer.CCW(),
		Elevation: elevation,
		Holes:     ccwAll(holes),
	}
}

func (s InternalSurface) clone() InternalSurface {
	return InternalSurface{
		Outer:     s.Outer.Clone(),
		Elevation: s.Elevation,
		Holes:     clonePolygons(s.Holes),
	}
}

// Prism is an extruded footprint between Base and Top.
type Prism struct {
	footprint   geom.Polygon
	base, top   float64
	holes       []geom.Polygon
	constraints []ConstraintSegment
	surfaces    []InternalSurface
	aux         *AuxiliaryGeometry
}

// New returns a prism over footprint. The footprint is copied and wound
// counter-clockwise; its geometry is checked by Validate, not here.
func New(footprint geom.Polygon, base, top float64) (*Prism, error) {
	if !(base < top) {
		return nil, errors.Wrapf(ErrInvalidElevations, "base %g, top %g", base, top)
	}
	return &Prism{
		footprint: footprint.CCW(),
		base:      base,
		top:       top,
		aux:       NewAuxiliaryGeometry(),
	}, nil
}

// Footprint returns a copy of the outer ring.
func (p *Prism) Footprint() geom.Polygon { return p.footprint.Clone() }

// Base returns the bottom elevation.
func (p *Prism) Base() float64 { return p.base }

// Top returns the top elevation.
func (p *Prism) Top() float64 { return p.top }

// Height returns Top - Base.
func (p *Prism) Height() float64 { return p.top - p.base }

// Holes returns copies of the hole rings in insertion order.
func (p *Prism) Holes() []geom.Polygon { return clonePolygons(p.holes) }

// ConstraintSegments returns the constraints in insertion order.
func (p *Prism) ConstraintSegments() []ConstraintSegment {
	return append([]ConstraintSegment(nil), p.constraints...)
}

// InternalSurfaces returns copies of the slabs in insertion order.
func (p *Prism) InternalSurfaces() []InternalSurface {
	return lo.Map(p.surfaces, func(s InternalSurface, _ int) InternalSurface { return s.clone() })
}

// Aux returns the shared auxiliary geometry container.
func (p *Prism) Aux() *AuxiliaryGeometry { return p.aux }

// AddHole returns a copy of p with hole appended.
func (p *Prism) AddHole(hole geom.Polygon) *Prism {
	q := p.shallowCopy()
	q.holes = append(q.holes, hole.CCW())
	return q
}

// AddConstraintSegment returns a copy of p with a constraint from a to b
// at elevation z.
func (p *Prism) AddConstraintSegment(a, b v2.Vec, z float64) *Prism {
	q := p.shallowCopy()
	q.constraints = append(q.constraints, ConstraintSegment{A: a, B: b, Z: z})
	return q
}

// AddInternalSurface returns a copy of p with s appended.
func (p *Prism) AddInternalSurface(s InternalSurface) *Prism {
	q := p.shallowCopy()
	s = NewInternalSurface(s.Outer, s.Elevation, s.Holes...)
	q.surfaces = append(q.surfaces, s)
	return q
}

// shallowCopy clips every slice to its length so an append on the copy
// always reallocates instead of writing into the receiver's backing array.
func (p *Prism) shallowCopy() *Prism {
	return &Prism{
		footprint:   p.footprint,
		base:        p.base,
		top:         p.top,
		holes:       p.holes[:len(p.holes):len(p.holes)],
		constraints: p.constraints[:len(p.constraints):len(p.constraints)],
		surfaces:    p.surfaces[:len(p.surfaces):len(p.surfaces)],
		aux:         p.aux,
	}
}

// AllHoleSegments returns every hole edge, for refinement-band queries.
func (p *Prism) AllHoleSegments() []geom.Segment {
	return geom.PolygonSegments(p.holes)
}

// ConstraintSegments2D returns the 2D parts of the constraints.
func (p *Prism) ConstraintSegments2D() []geom.Segment {
	return lo.Map(p.constraints, func(c ConstraintSegment, _ int) geom.Segment { return c.Segment() })
}

// String summarizes the prism for logs.
func (p *Prism) String() string {
	return fmt.Sprintf("prism(%d vertices, z %g..%g, %d holes, %d constraints, %d surfaces)",
		len(p.footprint), p.base, p.top, len(p.holes), len(p.constraints), len(p.surfaces))
}

func clonePolygons(ps []geom.Polygon) []geom.Polygon {
	if ps == nil {
		return nil
	}
	return lo.Map(ps, func(p geom.Polygon, _ int) geom.Polygon { return p.Clone() })
}

func ccwAll(ps []geom.Polygon) []geom.Polygon {
	if len(ps) == 0 {
		return nil
	}
	return lo.Map(ps, func(p geom.Polygon, _ int) geom.Polygon { return p.CCW() })
}
