// Package tessellate turns prism definitions into quad-dominant meshes.
// A Mesher runs one synchronous pass per prism: Z-levels, bottom cap, top
// cap, internal surfaces, then side walls. Caps over axis-aligned
// rectangles use a structured grid; every other footprint is triangulated
// and paired into quads.
package tessellate

import (
	"context"
	"fmt"
	"runtime"

	"github.com/chazu/prismesh/pkg/geom"
	"github.com/chazu/prismesh/pkg/kernel"
	"github.com/chazu/prismesh/pkg/kernel/earcut"
	"github.com/chazu/prismesh/pkg/mesh"
	"github.com/chazu/prismesh/pkg/options"
	"github.com/chazu/prismesh/pkg/structure"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrInvalidInput is wrapped by every error Mesh returns before meshing
// starts: bad options, a nil prism or blocking validation findings.
var ErrInvalidInput = errors.New("tessellate: invalid input")

// CapPath names the algorithm used for the bottom and top caps.
type CapPath string

const (
	CapNone        CapPath = ""
	CapRectangle   CapPath = "rectangle"
	CapTessellated CapPath = "tessellated"
)

// Stats counts what one Mesh call produced. Pairing counters are per
// planned region (each cap plan is shared by the bottom and top passes),
// face counters are per emitted face.
type Stats struct {
	CapPath CapPath

	BottomFaces  int
	TopFaces     int
	SurfaceFaces int
	SideFaces    int

	GridX, GridY        int // base grid size on the rectangle path
	HoleRefinedCells    int
	SegmentRefinedCells int

	TriangleSlots      int
	SkippedTriangles   int
	UsableTriangles    int
	PairedQuads        int
	RejectedTriangles  int
	DegenerateQuads    int
	DroppedTriangles   int
	EmptyTessellations int
	SurfaceFallbacks   int

	Warnings int // advisory validation findings
}

func (s *Stats) addPairs(p pairStats) {
	s.TriangleSlots += p.Slots
	s.SkippedTriangles += p.Skipped
	s.UsableTriangles += p.Usable
	s.PairedQuads += p.Paired
	s.RejectedTriangles += p.Rejected
	s.DegenerateQuads += p.Degenerate
	s.DroppedTriangles += p.Dropped
}

// Result is the output of one Mesh call.
type Result struct {
	Mesh    *mesh.Mesh
	Indexed *mesh.IndexedMesh
	ZLevels []float64
	Stats   Stats
}

// Mesher meshes prisms. It holds no per-call state and is safe for
// concurrent use.
type Mesher struct {
	log   *zap.Logger
	tri   kernel.Triangulator
	sides SideFaceGenerator
}

// Option configures a Mesher.
type Option func(*Mesher)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(m *Mesher) {
		if l != nil {
			m.log = l
		}
	}
}

// WithTriangulator replaces the default earcut backend.
func WithTriangulator(t kernel.Triangulator) Option {
	return func(m *Mesher) {
		if t != nil {
			m.tri = t
		}
	}
}

// WithSideFaces replaces the wall generator; nil disables side faces.
func WithSideFaces(g SideFaceGenerator) Option {
	return func(m *Mesher) {
		m.sides = g
	}
}

// New returns a Mesher with the earcut triangulator and WallGenerator.
func New(opts ...Option) *Mesher {
	m := &Mesher{
		log:   zap.NewNop(),
		tri:   earcut.New(),
		sides: WallGenerator{},
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

func invalid(err error) error {
	return fmt.Errorf("%w: %w", ErrInvalidInput, err)
}

// Mesh validates p and opts, then meshes p. Invalid input fails before any
// face is generated. ctx is checked before each cap, between internal
// surfaces and before side faces; a cancelled call returns ctx.Err() and
// no mesh.
func (m *Mesher) Mesh(ctx context.Context, p *structure.Prism, opts options.Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, invalid(err)
	}
	if p == nil {
		return nil, invalid(errors.New("nil prism"))
	}
	vr := p.Validate(opts.Epsilon)
	if err := vr.Err(); err != nil {
		return nil, invalid(err)
	}
	log := m.log.With(zap.Stringer("prism", p))
	for _, w := range vr.Warnings {
		log.Warn("structure warning", zap.String("subject", w.Subject), zap.String("message", w.Message))
	}

	eps := opts.Epsilon
	footprint, holes := p.Footprint(), p.Holes()
	region, err := geom.NewRegion(footprint, holes, opts.IndexResolution, eps)
	if err != nil {
		return nil, invalid(err)
	}

	res := &Result{Mesh: mesh.New()}
	res.Stats.Warnings = len(vr.Warnings)
	res.ZLevels = BuildZLevels(p.Base(), p.Top(), opts, p)
	log.Debug("z-levels", zap.Int("count", len(res.ZLevels)))

	if opts.GenerateBottomCap || opts.GenerateTopCap {
		capPlan := m.planCap(footprint, holes, region, p, opts, &res.Stats, log)
		if opts.GenerateBottomCap {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			res.Stats.BottomFaces = capPlan.emit(res.Mesh, p.Base(), true)
		}
		if opts.GenerateTopCap {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			res.Stats.TopFaces = capPlan.emit(res.Mesh, p.Top(), false)
		}
	}

	for i, s := range p.InternalSurfaces() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pl, outcome, err := planSurface(m.tri, s, opts, log.With(zap.Int("surface", i)))
		if err != nil {
			// Validate has already accepted every surface ring.
			return nil, errors.Wrapf(err, "tessellate: surface %d", i)
		}
		res.Stats.addPairs(outcome.pairs)
		if outcome.fallback {
			res.Stats.SurfaceFallbacks++
		}
		res.Stats.SurfaceFaces += pl.emit(res.Mesh, s.Elevation, false)
	}

	if m.sides != nil {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res.Stats.SideFaces = m.sides.GenerateSides(res.Mesh, p, res.ZLevels, opts)
	}

	if aux := p.Aux(); aux != nil {
		for _, pt := range aux.Points() {
			res.Mesh.AddPoint(pt)
		}
		for _, s := range aux.Segments() {
			res.Mesh.AddSegment(s.A, s.B)
		}
	}

	res.Indexed = res.Mesh.Index(eps)
	log.Debug("meshed",
		zap.Int("faces", len(res.Mesh.Faces)),
		zap.Int("quads", res.Mesh.QuadCount()),
		zap.Int("triangles", res.Mesh.TriangleCount()),
		zap.Int("vertices", len(res.Indexed.Vertices)),
	)
	return res, nil
}

// planCap picks the structured grid for rectangular footprints and the
// triangulate and pair pipeline for everything else.
func (m *Mesher) planCap(footprint geom.Polygon, holes []geom.Polygon, region *geom.Region, p *structure.Prism, opts options.Options, st *Stats, log *zap.Logger) *plan {
	if box, ok := geom.RectangleBounds(footprint, opts.Epsilon); ok {
		st.CapPath = CapRectangle
		var holeSegs, constraintSegs *geom.SegmentIndex
		if opts.HoleRefinementEnabled() && len(holes) > 0 {
			holeSegs = geom.NewSegmentIndex(geom.PolygonSegments(holes), opts.Epsilon)
		}
		if opts.SegmentRefinementEnabled() {
			constraintSegs = geom.NewSegmentIndex(p.ConstraintSegments2D(), opts.Epsilon)
		}
		pl, rs := planRectCap(box, region, holeSegs, constraintSegs, opts)
		st.GridX, st.GridY = rs.nx, rs.ny
		st.HoleRefinedCells = rs.holeCells
		st.SegmentRefinedCells = rs.segmentCells
		log.Debug("rectangle cap",
			zap.Int("nx", rs.nx),
			zap.Int("ny", rs.ny),
			zap.Int("base_cells", rs.baseCells),
			zap.Int("hole_cells", rs.holeCells),
			zap.Int("segment_cells", rs.segmentCells),
		)
		return pl
	}

	st.CapPath = CapTessellated
	pl, ps, ok := planTessellated(m.tri, footprint, holes, region, opts, log)
	st.addPairs(ps)
	if !ok {
		st.EmptyTessellations++
		log.Warn("cap is empty after triangulation")
	}
	return pl
}

// MeshAll meshes independent prisms concurrently, at most limit at a time
// (GOMAXPROCS when limit <= 0). Results are in input order. The first
// error cancels the remaining work and is returned.
func (m *Mesher) MeshAll(ctx context.Context, prisms []*structure.Prism, opts options.Options, limit int) ([]*Result, error) {
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	out := make([]*Result, len(prisms))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, p := range prisms {
		g.Go(func() error {
			r, err := m.Mesh(gctx, p, opts)
			if err != nil {
				return errors.Wrapf(err, "prism %d", i)
			}
			out[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
