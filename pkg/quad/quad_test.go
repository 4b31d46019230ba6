package quad

import (
	"math"
	"testing"

	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

func p(x, y float64) v2.Vec { return v2.Vec{X: x, Y: y} }

// ---------------------------------------------------------------------------
// Quality
// ---------------------------------------------------------------------------

func TestScoreQuadUnitSquare(t *testing.T) {
	if got := ScoreQuad(p(0, 0), p(1, 0), p(1, 1), p(0, 1)); math.Abs(got-1) > 1e-12 {
		t.Errorf("ScoreQuad(unit square) = %g, want 1", got)
	}
	// Winding does not matter.
	if got := ScoreQuad(p(0, 0), p(0, 1), p(1, 1), p(1, 0)); math.Abs(got-1) > 1e-12 {
		t.Errorf("ScoreQuad(clockwise square) = %g, want 1", got)
	}
}

func TestScoreQuadBelowOneForNonSquares(t *testing.T) {
	tests := []struct {
		name           string
		a, b, c, d     v2.Vec
		wantZero       bool
		wantLowerThan1 bool
	}{
		{"rectangle 2x1", p(0, 0), p(2, 0), p(2, 1), p(0, 1), false, true},
		{"rhombus", p(0, 0), p(1, 0), p(1.5, 0.8), p(0.5, 0.8), false, true},
		{"trapezoid", p(0, 0), p(4, 0), p(3, 1), p(1, 1), false, true},
		{"kite", p(0, 0), p(1, -0.5), p(3, 0), p(1, 0.5), false, true},
		{"non-convex dart", p(0, 0), p(2, 1), p(4, 0), p(2, 3), true, true},
		{"bow tie", p(0, 0), p(1, 1), p(1, 0), p(0, 1), true, true},
		{"collinear", p(0, 0), p(1, 0), p(2, 0), p(3, 0), true, true},
		{"all same point", p(1, 1), p(1, 1), p(1, 1), p(1, 1), true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScoreQuad(tt.a, tt.b, tt.c, tt.d)
			if got < 0 || got > 1 {
				t.Fatalf("ScoreQuad() = %g, outside [0, 1]", got)
			}
			if tt.wantZero && got != 0 {
				t.Errorf("ScoreQuad() = %g, want 0", got)
			}
			if tt.wantLowerThan1 && got >= 1 {
				t.Errorf("ScoreQuad() = %g, want < 1", got)
			}
		})
	}

	rect := ScoreQuad(p(0, 0), p(2, 0), p(2, 1), p(0, 1))
	if math.Abs(rect-0.5) > 1e-12 {
		t.Errorf("2x1 rectangle = %g, want aspect 0.5", rect)
	}
}

func TestScoreQuadCollapsedCorner(t *testing.T) {
	a, b, c := p(0, 0), p(1, 0), p(0.5, math.Sqrt(3)/2)
	got := ScoreQuad(a, b, c, c)
	want := 0.5 * ScoreTriangle(a, b, c)
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("ScoreQuad(carrier) = %g, want %g", got, want)
	}
	if math.Abs(want-0.5) > 1e-9 {
		t.Errorf("equilateral carrier = %g, want 0.5", want)
	}
}

func TestScoreTriangle(t *testing.T) {
	if got := ScoreTriangle(p(0, 0), p(1, 0), p(0.5, math.Sqrt(3)/2)); math.Abs(got-1) > 1e-9 {
		t.Errorf("equilateral = %g, want 1", got)
	}
	if got := ScoreTriangle(p(0, 0), p(1, 0), p(2, 0)); got != 0 {
		t.Errorf("flat = %g, want 0", got)
	}
	if got := ScoreTriangle(p(0, 0), p(0, 0), p(0, 0)); got != 0 {
		t.Errorf("point = %g, want 0", got)
	}
}

func TestScoreQuad3(t *testing.T) {
	v := func(x, y, z float64) v3.Vec { return v3.Vec{X: x, Y: y, Z: z} }

	flat := ScoreQuad3(v(0, 0, 5), v(1, 0, 5), v(1, 1, 5), v(0, 1, 5))
	if math.Abs(flat-1) > 1e-9 {
		t.Errorf("horizontal unit square = %g, want 1", flat)
	}
	wall := ScoreQuad3(v(0, 0, 0), v(1, 0, 0), v(1, 0, 1), v(0, 0, 1))
	if math.Abs(wall-1) > 1e-9 {
		t.Errorf("vertical unit square = %g, want 1", wall)
	}
	warped := ScoreQuad3(v(0, 0, 0), v(1, 0, 0.3), v(1, 1, 0), v(0, 1, 0.3))
	if warped >= 1 || warped <= 0 {
		t.Errorf("warped quad = %g, want in (0, 1)", warped)
	}
}

// ---------------------------------------------------------------------------
// Edge mapping
// ---------------------------------------------------------------------------

func TestAddEdgeToTriangleMappingSymmetric(t *testing.T) {
	m := make(EdgeMap)
	AddEdgeToTriangleMapping(m, 3, 7, 0)
	AddEdgeToTriangleMapping(m, 7, 3, 1)
	if len(m) != 1 {
		t.Fatalf("len(map) = %d, want 1", len(m))
	}
	got := m[EdgeKey{A: 3, B: 7}]
	if len(got) != 2 || got[0] != 0 || got[1] != 1 {
		t.Errorf("incident = %v, want [0 1]", got)
	}

	AddEdgeToTriangleMapping(m, 5, 5, 2)
	if got := m[EdgeKey{A: 5, B: 5}]; len(got) != 1 || got[0] != 2 {
		t.Errorf("self-loop incident = %v, want [2]", got)
	}
}

func TestBuildEdgeMapFan(t *testing.T) {
	// A square split into four triangles around a center vertex 4.
	tris := []Triangle{{0, 1, 4}, {1, 2, 4}, {2, 3, 4}, {3, 0, 4}}
	m := make(EdgeMap)
	BuildEdgeMap(m, tris)

	boundary, interior, nonManifold := m.Counts()
	if boundary != 4 || interior != 4 || nonManifold != 0 {
		t.Errorf("Counts() = (%d, %d, %d), want (4, 4, 0)", boundary, interior, nonManifold)
	}
	if !m.Boundary(NewEdgeKey(1, 0)) {
		t.Error("outer edge 0-1 should be boundary")
	}
	if !m.Interior(NewEdgeKey(4, 2)) {
		t.Error("spoke 2-4 should be interior")
	}
}

// ---------------------------------------------------------------------------
// Triangle pairs
// ---------------------------------------------------------------------------

func TestMakeQuadFromTrianglePair(t *testing.T) {
	verts := []v2.Vec{p(0, 0), p(1, 0), p(1, 1), p(0, 1), p(2, 0.5), p(0.4, 0.4)}
	tests := []struct {
		name string
		a, b Triangle
		ok   bool
	}{
		{"square diagonal", Triangle{0, 1, 2}, Triangle{0, 2, 3}, true},
		{"square diagonal swapped", Triangle{0, 2, 3}, Triangle{0, 1, 2}, true},
		{"clockwise input", Triangle{0, 2, 1}, Triangle{0, 3, 2}, true},
		{"no shared edge", Triangle{0, 1, 2}, Triangle{3, 4, 5}, false},
		{"one shared vertex", Triangle{0, 1, 5}, Triangle{1, 4, 2}, false},
		{"identical", Triangle{0, 1, 2}, Triangle{0, 1, 2}, false},
		{"non-convex merge", Triangle{0, 1, 5}, Triangle{0, 5, 3}, false},
		{"out of range", Triangle{0, 1, 9}, Triangle{0, 9, 3}, false},
		{"negative index", Triangle{0, 1, -1}, Triangle{0, -1, 3}, false},
		{"repeated vertex", Triangle{0, 0, 1}, Triangle{0, 1, 2}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, ok := MakeQuadFromTrianglePair(tt.a, tt.b, verts, 1e-9)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if !ok {
				return
			}
			a := (orient(verts[q[0]], verts[q[1]], verts[q[2]]) + orient(verts[q[0]], verts[q[2]], verts[q[3]])) / 2
			if a <= 0 {
				t.Errorf("quad %v is not counter-clockwise (area %g)", q, a)
			}
			seen := map[int]bool{}
			for _, v := range q {
				seen[v] = true
			}
			if len(seen) != 4 {
				t.Errorf("quad %v does not have four distinct vertices", q)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Pairing
// ---------------------------------------------------------------------------

// gridTriangles splits an nx by ny unit grid into two triangles per cell.
func gridTriangles(nx, ny int) ([]Triangle, []v2.Vec) {
	var verts []v2.Vec
	for j := 0; j <= ny; j++ {
		for i := 0; i <= nx; i++ {
			verts = append(verts, p(float64(i), float64(j)))
		}
	}
	id := func(i, j int) int { return j*(nx+1) + i }
	var tris []Triangle
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			tris = append(tris,
				Triangle{id(i, j), id(i+1, j), id(i+1, j+1)},
				Triangle{id(i, j), id(i+1, j+1), id(i, j+1)},
			)
		}
	}
	return tris, verts
}

func checkComplete(t *testing.T, n int, res Pairing) {
	t.Helper()
	seen := make([]int, n)
	for _, q := range res.Quads {
		seen[q.A]++
		seen[q.B]++
	}
	for _, u := range res.Unpaired {
		seen[u]++
	}
	for i, c := range seen {
		if c != 1 {
			t.Errorf("triangle %d appears %d times, want exactly once", i, c)
		}
	}
}

func TestPairTrianglesGrid(t *testing.T) {
	tris, verts := gridTriangles(4, 3)
	res := PairTriangles(tris, verts, 0.3, 1e-9)
	checkComplete(t, len(tris), res)
	if len(res.Quads) != 12 {
		t.Errorf("quads = %d, want 12 (one per grid cell)", len(res.Quads))
	}
	for _, q := range res.Quads {
		if math.Abs(q.Score-1) > 1e-9 {
			t.Errorf("quad %v score = %g, want 1", q.Quad, q.Score)
		}
	}
	if len(res.Unpaired) != 0 {
		t.Errorf("unpaired = %v, want none", res.Unpaired)
	}
}

func TestPairTrianglesPrefersBetterPairs(t *testing.T) {
	// Triangle 1 could pair with 0 (a square) or with 2 (a skewed convex
	// quad). The square must win.
	verts := []v2.Vec{p(0, 0), p(1, 0), p(1, 1), p(0, 1), p(-0.3, 0.5)}
	tris := []Triangle{
		{0, 1, 2},
		{0, 2, 3},
		{0, 3, 4},
	}
	if _, ok := MakeQuadFromTrianglePair(tris[1], tris[2], verts, 1e-9); !ok {
		t.Fatal("setup: triangles 1 and 2 should merge into a convex quad")
	}
	res := PairTriangles(tris, verts, 0, 1e-9)
	checkComplete(t, len(tris), res)
	if len(res.Quads) != 1 {
		t.Fatalf("quads = %d, want 1", len(res.Quads))
	}
	q := res.Quads[0]
	if !(q.A == 0 && q.B == 1) {
		t.Errorf("accepted pair (%d, %d), want (0, 1)", q.A, q.B)
	}
	if len(res.Unpaired) != 1 || res.Unpaired[0] != 2 {
		t.Errorf("unpaired = %v, want [2]", res.Unpaired)
	}
}

func TestPairTrianglesQualityThreshold(t *testing.T) {
	tris, verts := gridTriangles(2, 1)
	// Stretch the grid so every merged quad is a 5:1 rectangle.
	for i := range verts {
		verts[i].X *= 5
	}
	res := PairTriangles(tris, verts, 0.5, 1e-9)
	checkComplete(t, len(tris), res)
	if len(res.Quads) != 0 {
		t.Errorf("quads = %d, want 0 below threshold", len(res.Quads))
	}
	if len(res.Unpaired) != len(tris) {
		t.Errorf("unpaired = %d, want %d", len(res.Unpaired), len(tris))
	}
}

func TestPairTrianglesDeterministic(t *testing.T) {
	tris, verts := gridTriangles(6, 6)
	first := PairTriangles(tris, verts, 0.3, 1e-9)
	for n := 0; n < 5; n++ {
		again := PairTriangles(tris, verts, 0.3, 1e-9)
		if len(again.Quads) != len(first.Quads) {
			t.Fatalf("run %d: %d quads, want %d", n, len(again.Quads), len(first.Quads))
		}
		for i := range first.Quads {
			if again.Quads[i] != first.Quads[i] {
				t.Fatalf("run %d: quad %d = %+v, want %+v", n, i, again.Quads[i], first.Quads[i])
			}
		}
	}
}

func TestPairTrianglesEmpty(t *testing.T) {
	res := PairTriangles(nil, nil, 0.3, 1e-9)
	if len(res.Quads) != 0 || len(res.Unpaired) != 0 {
		t.Errorf("PairTriangles(nil) = %+v, want empty", res)
	}
}
