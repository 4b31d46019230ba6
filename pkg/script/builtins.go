package script

import (
	"fmt"
	"strings"

	"github.com/chazu/prismesh/pkg/geom"
	"github.com/chazu/prismesh/pkg/structure"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
	zygo "github.com/glycerine/zygomys/zygo"
	"github.com/samber/lo"
)

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

type sexpPoint struct {
	p v2.Vec
}

func (s *sexpPoint) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(pt %g %g)", s.p.X, s.p.Y)
}
func (s *sexpPoint) Type() *zygo.RegisteredType { return nil }

type sexpPoint3 struct {
	p v3.Vec
}

func (s *sexpPoint3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(pt3 %g %g %g)", s.p.X, s.p.Y, s.p.Z)
}
func (s *sexpPoint3) Type() *zygo.RegisteredType { return nil }

type sexpPolygon struct {
	poly geom.Polygon
}

func (s *sexpPolygon) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(polygon %d points)", len(s.poly))
}
func (s *sexpPolygon) Type() *zygo.RegisteredType { return nil }

type sexpHole struct {
	poly geom.Polygon
}

func (s *sexpHole) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(hole %d points)", len(s.poly))
}
func (s *sexpHole) Type() *zygo.RegisteredType { return nil }

type sexpConstraint struct {
	c structure.ConstraintSegment
}

func (s *sexpConstraint) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(constraint (pt %g %g) (pt %g %g) :z %g)", s.c.A.X, s.c.A.Y, s.c.B.X, s.c.B.Y, s.c.Z)
}
func (s *sexpConstraint) Type() *zygo.RegisteredType { return nil }

type sexpSlab struct {
	s structure.InternalSurface
}

func (s *sexpSlab) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(slab :z %g :holes %d)", s.s.Elevation, len(s.s.Holes))
}
func (s *sexpSlab) Type() *zygo.RegisteredType { return nil }

// sexpAux is either an auxiliary point (segment false) or a segment a-b.
type sexpAux struct {
	a, b    v3.Vec
	segment bool
}

func (s *sexpAux) SexpString(ps *zygo.PrintState) string {
	if s.segment {
		return fmt.Sprintf("(aux-segment (%g %g %g) (%g %g %g))", s.a.X, s.a.Y, s.a.Z, s.b.X, s.b.Y, s.b.Z)
	}
	return fmt.Sprintf("(aux-point %g %g %g)", s.a.X, s.a.Y, s.a.Z)
}
func (s *sexpAux) Type() *zygo.RegisteredType { return nil }

// sexpPrismRef is returned by (prism ...) so scripts can print or bind it.
type sexpPrismRef struct {
	name string
}

func (s *sexpPrismRef) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(prism %q)", s.name)
}
func (s *sexpPrismRef) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// isKW reports whether s is a preprocessed keyword and returns its name.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok || !strings.HasPrefix(str.S, kwPrefix) {
		return "", false
	}
	return str.S[len(kwPrefix):], true
}

type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates keyword pairs from positional arguments. A trailing
// keyword with no value maps to SexpNull.
func parseArgs(args []zygo.Sexp) kwArgs {
	res := kwArgs{kw: make(map[string]zygo.Sexp)}
	for i := 0; i < len(args); i++ {
		name, ok := isKW(args[i])
		if !ok {
			res.positional = append(res.positional, args[i])
			continue
		}
		if i+1 < len(args) {
			res.kw[name] = args[i+1]
			i++
		} else {
			res.kw[name] = zygo.SexpNull
		}
	}
	return res
}

// float returns the keyword value name as a number. present is false
// when the keyword was not given.
func (a kwArgs) float(name string) (f float64, present bool, err error) {
	s, ok := a.kw[name]
	if !ok {
		return 0, false, nil
	}
	f, err = toFloat64(s)
	return f, true, err
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

func describe(s zygo.Sexp) string {
	if s == nil {
		return "nil"
	}
	return fmt.Sprintf("%T (%s)", s, s.SexpString(nil))
}

// toFloat64 extracts a float64 from a SexpInt or SexpFloat.
func toFloat64(s zygo.Sexp) (float64, error) {
	switch x := s.(type) {
	case *zygo.SexpInt:
		return float64(x.Val), nil
	case *zygo.SexpFloat:
		return x.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %s", describe(s))
}

func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %s", describe(s))
}

func toPoint3(s zygo.Sexp) (v3.Vec, error) {
	if p, ok := s.(*sexpPoint3); ok {
		return p.p, nil
	}
	return v3.Vec{}, fmt.Errorf("expected pt3, got %s", describe(s))
}

func toPolygon(s zygo.Sexp) (geom.Polygon, error) {
	if p, ok := s.(*sexpPolygon); ok {
		return p.poly.Clone(), nil
	}
	return nil, fmt.Errorf("expected polygon, got %s", describe(s))
}

// sexpListToSlice converts a list or array to a Go slice. The empty list
// yields nil.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch x := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(x)
	case *zygo.SexpArray:
		return x.Val, nil
	case *zygo.SexpSentinel:
		if x == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %s", describe(s))
}

// flatten expands nested lists and arrays in args depth first.
func flatten(args []zygo.Sexp) ([]zygo.Sexp, error) {
	var out []zygo.Sexp
	for _, a := range args {
		switch a.(type) {
		case *zygo.SexpPair, *zygo.SexpArray:
			items, err := sexpListToSlice(a)
			if err != nil {
				return nil, err
			}
			inner, err := flatten(items)
			if err != nil {
				return nil, err
			}
			out = append(out, inner...)
		default:
			if a == zygo.SexpNull {
				continue
			}
			out = append(out, a)
		}
	}
	return out, nil
}

func numbers(form string, args []zygo.Sexp, names ...string) ([]float64, error) {
	if len(args) != len(names) {
		return nil, fmt.Errorf("%s requires exactly %d arguments, got %d", form, len(names), len(args))
	}
	out := make([]float64, len(args))
	for i, a := range args {
		f, err := toFloat64(a)
		if err != nil {
			return nil, fmt.Errorf("%s: %s: %w", form, names[i], err)
		}
		out[i] = f
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// builtinFailure keeps the first error raised by a DSL form so it can be
// reported verbatim.
type builtinFailure struct {
	err error
}

func (f *builtinFailure) fail(err error) (zygo.Sexp, error) {
	if f.err == nil {
		f.err = err
	}
	return zygo.SexpNull, err
}

// registerBuiltins installs the prism DSL forms. Prisms are added to d as
// their (prism ...) forms evaluate. Source must go through
// preprocessSource first so keywords arrive as tagged strings.
func registerBuiltins(env *zygo.Zlisp, d *Design, f *builtinFailure) {

	// (pt 1 2)
	env.AddFunction("pt", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		xy, err := numbers("pt", args, "x", "y")
		if err != nil {
			return f.fail(err)
		}
		return &sexpPoint{p: v2.Vec{X: xy[0], Y: xy[1]}}, nil
	})

	// (pt3 1 2 3)
	env.AddFunction("pt3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		xyz, err := numbers("pt3", args, "x", "y", "z")
		if err != nil {
			return f.fail(err)
		}
		return &sexpPoint3{p: v3.Vec{X: xyz[0], Y: xyz[1], Z: xyz[2]}}, nil
	})

	// (polygon (pt 0 0) (pt 4 0) (pt 4 3)) or (polygon (list ...))
	env.AddFunction("polygon", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		items, err := flatten(args)
		if err != nil {
			return f.fail(fmt.Errorf("polygon: %w", err))
		}
		poly := make(geom.Polygon, 0, len(items))
		for i, it := range items {
			p, ok := it.(*sexpPoint)
			if !ok {
				return f.fail(fmt.Errorf("polygon: point %d: expected pt, got %s", i, describe(it)))
			}
			poly = append(poly, p.p)
		}
		if len(poly) < 3 {
			return f.fail(fmt.Errorf("polygon requires at least 3 points, got %d", len(poly)))
		}
		return &sexpPolygon{poly: poly}, nil
	})

	// (rect x0 y0 x1 y1)
	env.AddFunction("rect", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		c, err := numbers("rect", args, "x0", "y0", "x1", "y1")
		if err != nil {
			return f.fail(err)
		}
		x0, x1 := min(c[0], c[2]), max(c[0], c[2])
		y0, y1 := min(c[1], c[3]), max(c[1], c[3])
		if x0 == x1 || y0 == y1 {
			return f.fail(fmt.Errorf("rect: zero area (%g,%g)-(%g,%g)", c[0], c[1], c[2], c[3]))
		}
		return &sexpPolygon{poly: geom.Polygon{{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1}}}, nil
	})

	// (hole (rect 2 2 4 4))
	env.AddFunction("hole", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return f.fail(fmt.Errorf("hole requires exactly 1 argument, got %d", len(args)))
		}
		poly, err := toPolygon(args[0])
		if err != nil {
			return f.fail(fmt.Errorf("hole: %w", err))
		}
		return &sexpHole{poly: poly}, nil
	})

	// (constraint (pt 0 5) (pt 10 5) :z 3.5)
	env.AddFunction("constraint", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 2 {
			return f.fail(fmt.Errorf("constraint requires two points, got %d", len(pa.positional)))
		}
		var ends [2]v2.Vec
		for i, s := range pa.positional {
			p, ok := s.(*sexpPoint)
			if !ok {
				return f.fail(fmt.Errorf("constraint: endpoint %d: expected pt, got %s", i, describe(s)))
			}
			ends[i] = p.p
		}
		z, ok, err := pa.float("z")
		if err != nil {
			return f.fail(fmt.Errorf("constraint: z: %w", err))
		}
		if !ok {
			return f.fail(fmt.Errorf("constraint: missing :z"))
		}
		return &sexpConstraint{c: structure.ConstraintSegment{A: ends[0], B: ends[1], Z: z}}, nil
	})

	// (slab (rect 0 0 10 10) :z 4 :holes (list (rect 2 2 4 4)))
	env.AddFunction("slab", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 1 {
			return f.fail(fmt.Errorf("slab requires one outline polygon, got %d", len(pa.positional)))
		}
		outer, err := toPolygon(pa.positional[0])
		if err != nil {
			return f.fail(fmt.Errorf("slab: outline: %w", err))
		}
		z, ok, err := pa.float("z")
		if err != nil {
			return f.fail(fmt.Errorf("slab: z: %w", err))
		}
		if !ok {
			return f.fail(fmt.Errorf("slab: missing :z"))
		}
		var holes []geom.Polygon
		if hs, ok := pa.kw["holes"]; ok {
			items, err := flatten([]zygo.Sexp{hs})
			if err != nil {
				return f.fail(fmt.Errorf("slab: holes: %w", err))
			}
			for i, it := range items {
				h, err := toPolygon(it)
				if err != nil {
					return f.fail(fmt.Errorf("slab: hole %d: %w", i, err))
				}
				holes = append(holes, h)
			}
		}
		return &sexpSlab{s: structure.NewInternalSurface(outer, z, holes...)}, nil
	})

	// (aux-point (pt3 1 2 3)) or (aux-point 1 2 3)
	env.AddFunction("aux_point", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) == 1 {
			p, err := toPoint3(args[0])
			if err != nil {
				return f.fail(fmt.Errorf("aux-point: %w", err))
			}
			return &sexpAux{a: p}, nil
		}
		xyz, err := numbers("aux-point", args, "x", "y", "z")
		if err != nil {
			return f.fail(err)
		}
		return &sexpAux{a: v3.Vec{X: xyz[0], Y: xyz[1], Z: xyz[2]}}, nil
	})

	// (aux-segment (pt3 0 0 1) (pt3 5 5 1))
	env.AddFunction("aux_segment", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return f.fail(fmt.Errorf("aux-segment requires exactly 2 points, got %d", len(args)))
		}
		a, err := toPoint3(args[0])
		if err != nil {
			return f.fail(fmt.Errorf("aux-segment: start: %w", err))
		}
		b, err := toPoint3(args[1])
		if err != nil {
			return f.fail(fmt.Errorf("aux-segment: end: %w", err))
		}
		return &sexpAux{a: a, b: b, segment: true}, nil
	})

	// (prism "name" :footprint poly :base 0 :top 10 children...)
	env.AddFunction("prism", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) == 0 {
			return f.fail(fmt.Errorf("prism requires a name"))
		}
		prismName, err := toString(pa.positional[0])
		if err != nil {
			return f.fail(fmt.Errorf("prism: name: %w", err))
		}
		fs, ok := pa.kw["footprint"]
		if !ok {
			return f.fail(fmt.Errorf("prism %q: missing :footprint", prismName))
		}
		footprint, err := toPolygon(fs)
		if err != nil {
			return f.fail(fmt.Errorf("prism %q: footprint: %w", prismName, err))
		}
		base, _, err := pa.float("base")
		if err != nil {
			return f.fail(fmt.Errorf("prism %q: base: %w", prismName, err))
		}
		top, ok, err := pa.float("top")
		if err != nil {
			return f.fail(fmt.Errorf("prism %q: top: %w", prismName, err))
		}
		if !ok {
			return f.fail(fmt.Errorf("prism %q: missing :top", prismName))
		}

		p, err := structure.New(footprint, base, top)
		if err != nil {
			return f.fail(fmt.Errorf("prism %q: %w", prismName, err))
		}

		children, err := flatten(pa.positional[1:])
		if err != nil {
			return f.fail(fmt.Errorf("prism %q: %w", prismName, err))
		}
		for i, c := range children {
			switch x := c.(type) {
			case *sexpHole:
				p = p.AddHole(x.poly)
			case *sexpConstraint:
				p = p.AddConstraintSegment(x.c.A, x.c.B, x.c.Z)
			case *sexpSlab:
				p = p.AddInternalSurface(x.s)
			case *sexpAux:
				if x.segment {
					p.Aux().AddSegment(x.a, x.b)
				} else {
					p.Aux().AddPoint(x.a)
				}
			default:
				return f.fail(fmt.Errorf("prism %q: child %d: unexpected %s", prismName, i, describe(c)))
			}
		}

		if err := d.add(prismName, p); err != nil {
			return f.fail(err)
		}
		return &sexpPrismRef{name: prismName}, nil
	})

	// (prisms) lists the names defined so far.
	env.AddFunction("prisms", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		items := lo.Map(d.Names(), func(n string, _ int) zygo.Sexp { return &zygo.SexpStr{S: n} })
		return zygo.MakeList(items), nil
	})
}
