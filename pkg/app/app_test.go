package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/chazu/prismesh/pkg/options"
	"go.uber.org/zap/zaptest"
)

func newTestApp(t *testing.T, opts ...Option) *App {
	t.Helper()
	return New(append([]Option{WithLogger(zaptest.NewLogger(t))}, opts...)...)
}

// TestE2ECourtyardExample exercises the full pipeline on the shipped
// example: source -> script -> prisms -> mesher -> render meshes.
func TestE2ECourtyardExample(t *testing.T) {
	source, err := os.ReadFile("../../examples/courtyard.prism")
	if err != nil {
		t.Fatalf("failed to read courtyard.prism: %v", err)
	}

	result := newTestApp(t).Evaluate(context.Background(), string(source))
	if !result.OK() {
		for _, e := range result.Errors {
			t.Errorf("eval error (line %d): %s", e.Line, e.Message)
		}
		t.FailNow()
	}

	if len(result.Meshes) != 2 {
		t.Fatalf("expected 2 meshes, got %d", len(result.Meshes))
	}
	for i, want := range []string{"courtyard", "annex"} {
		m := result.Meshes[i]
		if m.Name != want {
			t.Errorf("mesh %d name = %q, want %q", i, m.Name, want)
		}
		if len(m.Vertices) == 0 || len(m.Normals) != len(m.Vertices) || len(m.Indices) == 0 {
			t.Errorf("mesh %q has empty or mismatched buffers", m.Name)
		}
		if m.Color == "" {
			t.Errorf("mesh %q has no color", m.Name)
		}
	}

	court := result.Prisms[0].Result
	if court.Mesh.Points == nil || len(court.Mesh.Points) != 1 {
		t.Errorf("aux points = %d, want 1", len(court.Mesh.Points))
	}
	if court.Stats.SurfaceFaces == 0 {
		t.Error("slab produced no faces")
	}
	if merged := result.Merged(); len(merged.Faces) != len(court.Mesh.Faces)+len(result.Prisms[1].Result.Mesh.Faces) {
		t.Error("Merged() should hold every prism's faces")
	}
}

func TestE2EBoxWithShaft(t *testing.T) {
	src := `(prism "box" :footprint (rect 0 0 4 4) :top 2 (hole (rect 1 1 3 3)))`
	result := newTestApp(t).Evaluate(context.Background(), src)
	if !result.OK() {
		t.Fatalf("errors: %v", result.Errors)
	}
	r := result.Prisms[0].Result
	// 12 cells per cap, 16 outer and 8 shaft wall panels on each of 2 rows.
	if r.Stats.BottomFaces != 12 || r.Stats.TopFaces != 12 || r.Stats.SideFaces != 48 {
		t.Errorf("faces = (%d, %d, %d), want (12, 12, 48)", r.Stats.BottomFaces, r.Stats.TopFaces, r.Stats.SideFaces)
	}
	if result.Meshes[0].Quads != 72 || result.Meshes[0].Triangles != 0 {
		t.Errorf("mesh = %d quads, %d triangles, want 72, 0", result.Meshes[0].Quads, result.Meshes[0].Triangles)
	}
	if adj := r.Indexed.BuildAdjacency(); !adj.Manifold() || len(adj.Boundary) != 0 {
		t.Errorf("box with shaft should be closed: %d boundary, %d non-manifold", len(adj.Boundary), len(adj.NonManifold))
	}
}

// ---------------------------------------------------------------------------
// Error and edge cases
// ---------------------------------------------------------------------------

func TestE2EEmptySource(t *testing.T) {
	for _, src := range []string{"", "  \n\t", ";; only a comment\n"} {
		result := newTestApp(t).Evaluate(context.Background(), src)
		if !result.OK() {
			t.Errorf("Evaluate(%q) errors: %v", src, result.Errors)
		}
		if len(result.Meshes) != 0 {
			t.Errorf("Evaluate(%q) produced %d meshes", src, len(result.Meshes))
		}
	}
}

func TestE2ESyntaxError(t *testing.T) {
	result := newTestApp(t).Evaluate(context.Background(), `(prism "p"`)
	if result.OK() {
		t.Fatal("expected eval errors for syntax error")
	}
	if len(result.Meshes) != 0 {
		t.Errorf("expected 0 meshes on error, got %d", len(result.Meshes))
	}
}

func TestE2EInvalidStructure(t *testing.T) {
	// The hole pokes out of the footprint, which only the mesher rejects.
	src := `(prism "p" :footprint (rect 0 0 4 4) :top 1 (hole (rect 3 3 6 6)))`
	result := newTestApp(t).Evaluate(context.Background(), src)
	if result.OK() {
		t.Fatal("expected a meshing error")
	}
	if !strings.Contains(result.Errors[0].Message, "meshing failed") {
		t.Errorf("message = %q", result.Errors[0].Message)
	}
}

func TestE2EOptionsApplied(t *testing.T) {
	o := options.Default()
	o.TargetEdgeLengthXY = 0.5
	o.GenerateTopCap = false
	src := `(prism "p" :footprint (rect 0 0 2 2) :top 1)`
	result := newTestApp(t, WithOptions(o), WithConcurrency(1)).Evaluate(context.Background(), src)
	if !result.OK() {
		t.Fatalf("errors: %v", result.Errors)
	}
	st := result.Prisms[0].Result.Stats
	if st.BottomFaces != 16 || st.TopFaces != 0 {
		t.Errorf("caps = (%d, %d), want (16, 0)", st.BottomFaces, st.TopFaces)
	}
}

func TestE2ECancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	result := newTestApp(t).Evaluate(ctx, `(prism "p" :footprint (rect 0 0 2 2) :top 1)`)
	if result.OK() {
		t.Error("expected an error for a cancelled context")
	}
}

func TestE2EColorPaletteWrapping(t *testing.T) {
	var b strings.Builder
	n := len(colorPalette) + 2
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "(prism \"p%d\" :footprint (rect %d 0 %d 1) :top 1)\n", i, 2*i, 2*i+1)
	}
	result := newTestApp(t).Evaluate(context.Background(), b.String())
	if !result.OK() {
		t.Fatalf("errors: %v", result.Errors)
	}
	if len(result.Meshes) != n {
		t.Fatalf("meshes = %d, want %d", len(result.Meshes), n)
	}
	if result.Meshes[0].Color != result.Meshes[len(colorPalette)].Color {
		t.Error("palette should wrap around")
	}
}

func TestEvalResultJSON(t *testing.T) {
	result := newTestApp(t).Evaluate(context.Background(), `(prism "p" :footprint (rect 0 0 1 1) :top 1)`)
	data, err := json.Marshal(result)
	if err != nil {
		t.Fatal(err)
	}
	s := string(data)
	for _, key := range []string{`"meshes"`, `"errors":[]`, `"warnings":[]`, `"name":"p"`} {
		if !strings.Contains(s, key) {
			t.Errorf("JSON missing %s", key)
		}
	}
	if strings.Contains(s, "Prisms") {
		t.Error("Prisms should not be serialized")
	}
}
