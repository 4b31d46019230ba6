package tessellate

import (
	"math"

	"github.com/chazu/prismesh/pkg/mesh"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// gridSlack keeps exact multiples of the target length from gaining an
// extra row to rounding noise.
const gridSlack = 1e-9

// gridCount returns the number of cells of at most length l that cover w,
// never less than one.
func gridCount(w, l float64) int {
	if !(l > 0) || !(w > 0) {
		return 1
	}
	n := int(math.Ceil(w/l - gridSlack))
	if n < 1 {
		return 1
	}
	return n
}

// planFace is one horizontal face in the XY plane, wound counter-clockwise.
// Triangles leave p[3] unset.
type planFace struct {
	kind mesh.FaceKind
	p    [4]v2.Vec
	q    mesh.Score
}

// plan is the 2D layout of a cap or surface. It is computed once and
// emitted at every elevation that needs it.
type plan struct {
	faces []planFace
}

func (pl *plan) addQuad(a, b, c, d v2.Vec, q float64) {
	pl.faces = append(pl.faces, planFace{kind: mesh.FaceQuad, p: [4]v2.Vec{a, b, c, d}, q: mesh.Score(q)})
}

func (pl *plan) addTriangle(a, b, c v2.Vec, q float64) {
	pl.faces = append(pl.faces, planFace{kind: mesh.FaceTriangle, p: [4]v2.Vec{a, b, c}, q: mesh.Score(q)})
}

func (pl *plan) len() int {
	return len(pl.faces)
}

func lift(p v2.Vec, z float64) v3.Vec {
	return v3.Vec{X: p.X, Y: p.Y, Z: z}
}

// emit writes every face at elevation z. Faces point up (+Z) unless down
// is set, in which case the winding is reversed. Returns the number of
// faces written.
func (pl *plan) emit(sink mesh.Sink, z float64, down bool) int {
	for _, f := range pl.faces {
		a, b, c, d := lift(f.p[0], z), lift(f.p[1], z), lift(f.p[2], z), lift(f.p[3], z)
		switch {
		case f.kind == mesh.FaceTriangle && down:
			sink.AddTriangle(a, c, b, f.q)
		case f.kind == mesh.FaceTriangle:
			sink.AddTriangle(a, b, c, f.q)
		case down:
			sink.AddQuad(a, d, c, b, f.q)
		default:
			sink.AddQuad(a, b, c, d, f.q)
		}
	}
	return len(pl.faces)
}
