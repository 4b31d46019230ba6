// Package app wires the prism DSL to the mesher: source in, per-prism
// meshes and diagnostics out. The CLI and any editor front end share it.
package app

import (
	"context"
	"fmt"

	"github.com/chazu/prismesh/pkg/mesh"
	"github.com/chazu/prismesh/pkg/options"
	"github.com/chazu/prismesh/pkg/script"
	"github.com/chazu/prismesh/pkg/structure"
	"github.com/chazu/prismesh/pkg/tessellate"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// colorPalette assigns distinct display colors to prisms.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// App evaluates DSL source and meshes every prism it defines.
type App struct {
	log    *zap.Logger
	engine *script.Engine
	mesher *tessellate.Mesher
	opts   options.Options
	limit  int
}

// MeshData is the JSON form of one meshed prism.
type MeshData struct {
	Vertices  []float32 `json:"vertices"`
	Normals   []float32 `json:"normals"`
	Indices   []uint32  `json:"indices"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	Quads     int       `json:"quads"`
	Triangles int       `json:"triangles"`
}

// EvalErrorData is a JSON-serializable diagnostic.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// PrismResult pairs a prism name with its mesher output.
type PrismResult struct {
	Name   string
	Result *tessellate.Result
}

// EvalResult is everything one Evaluate call produced. Prisms is for Go
// callers and is not serialized.
type EvalResult struct {
	Meshes   []MeshData      `json:"meshes"`
	Errors   []EvalErrorData `json:"errors"`
	Warnings []EvalErrorData `json:"warnings"`
	Prisms   []PrismResult   `json:"-"`
}

// OK reports whether the evaluation produced no errors.
func (r EvalResult) OK() bool { return len(r.Errors) == 0 }

// Option configures an App.
type Option func(*App)

// WithLogger sets the logger passed down to the mesher.
func WithLogger(l *zap.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.log = l
		}
	}
}

// WithOptions sets the meshing options.
func WithOptions(o options.Options) Option {
	return func(a *App) { a.opts = o }
}

// WithConcurrency bounds how many prisms are meshed at once.
func WithConcurrency(n int) Option {
	return func(a *App) { a.limit = n }
}

// New creates an App with default options and a no-op logger.
func New(opts ...Option) *App {
	a := &App{
		log:    zap.NewNop(),
		engine: script.NewEngine(),
		opts:   options.Default(),
	}
	for _, o := range opts {
		o(a)
	}
	a.mesher = tessellate.New(tessellate.WithLogger(a.log))
	return a
}

// Options returns the meshing options in use.
func (a *App) Options() options.Options { return a.opts }

// Evaluate runs source and meshes the resulting design.
func (a *App) Evaluate(ctx context.Context, source string) EvalResult {
	result := EvalResult{
		Meshes:   []MeshData{},
		Errors:   []EvalErrorData{},
		Warnings: []EvalErrorData{},
	}

	d, evalErrs, err := a.engine.Evaluate(source)
	if err != nil {
		a.log.Error("evaluate failed", zap.Error(err))
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}
	if len(evalErrs) > 0 {
		result.Errors = lo.Map(evalErrs, func(e script.EvalError, _ int) EvalErrorData {
			return EvalErrorData{Line: e.Line, Col: e.Col, Message: e.Message}
		})
		return result
	}

	return a.MeshDesign(ctx, d, result)
}

// MeshDesign meshes every prism in d and appends to into.
func (a *App) MeshDesign(ctx context.Context, d *script.Design, into EvalResult) EvalResult {
	prisms := lo.Map(d.Prisms, func(np script.NamedPrism, _ int) *structure.Prism { return np.Prism })
	results, err := a.mesher.MeshAll(ctx, prisms, a.opts, a.limit)
	if err != nil {
		a.log.Warn("meshing failed", zap.Error(err))
		into.Errors = append(into.Errors, EvalErrorData{Message: "meshing failed: " + err.Error()})
		return into
	}

	for i, r := range results {
		name := d.Prisms[i].Name
		into.Prisms = append(into.Prisms, PrismResult{Name: name, Result: r})
		into.Warnings = append(into.Warnings, warningsFor(name, r.Stats)...)

		rm := r.Mesh.Flatten(name)
		into.Meshes = append(into.Meshes, MeshData{
			Vertices:  rm.Vertices,
			Normals:   rm.Normals,
			Indices:   rm.Indices,
			Name:      name,
			Color:     colorPalette[i%len(colorPalette)],
			Quads:     r.Mesh.QuadCount(),
			Triangles: r.Mesh.TriangleCount(),
		})
	}
	return into
}

// Merged concatenates every prism mesh into one.
func (r EvalResult) Merged() *mesh.Mesh {
	m := mesh.New()
	for _, pr := range r.Prisms {
		m.Append(pr.Result.Mesh)
	}
	return m
}

func warningsFor(name string, st tessellate.Stats) []EvalErrorData {
	var out []EvalErrorData
	warn := func(n int, format string) {
		if n > 0 {
			out = append(out, EvalErrorData{Message: fmt.Sprintf("prism %q: "+format, name, n)})
		}
	}
	warn(st.Warnings, "%d structure warnings")
	warn(st.EmptyTessellations, "%d caps could not be triangulated")
	warn(st.SurfaceFallbacks, "%d slabs fell back to a grid")
	warn(st.DroppedTriangles, "%d low-quality triangles dropped")
	return out
}
