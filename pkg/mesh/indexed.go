package mesh

import (
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// IndexedFace references vertices of an IndexedMesh. Triangles leave V[3]
// at -1.
type IndexedFace struct {
	Kind    FaceKind
	V       [4]int
	Quality Score
}

// Indices returns the face's vertex indices in order.
func (f IndexedFace) Indices() []int {
	return f.V[:f.Kind.Corners()]
}

// IndexedMesh is a Mesh with shared vertices.
type IndexedMesh struct {
	Vertices []v3.Vec
	Faces    []IndexedFace
	Points   []v3.Vec
	Segments []Segment
	// Dropped counts faces that collapsed to fewer than three distinct
	// vertices after merging.
	Dropped int
}

type cellKey struct {
	x, y, z int64
}

// welder merges points closer than eps using a hash grid with eps-sized
// cells; a query inspects the 27 neighbouring cells.
type welder struct {
	eps   float64
	cell  float64
	grid  map[cellKey][]int
	verts []v3.Vec
}

func newWelder(eps float64) *welder {
	if eps <= 0 {
		eps = 1e-12
	}
	return &welder{eps: eps, cell: eps, grid: make(map[cellKey][]int)}
}

func (w *welder) key(p v3.Vec) cellKey {
	return cellKey{
		x: int64(math.Floor(p.X / w.cell)),
		y: int64(math.Floor(p.Y / w.cell)),
		z: int64(math.Floor(p.Z / w.cell)),
	}
}

// add returns the index of an existing vertex within eps of p, or appends p.
func (w *welder) add(p v3.Vec) int {
	k := w.key(p)
	for dx := int64(-1); dx <= 1; dx++ {
		for dy := int64(-1); dy <= 1; dy++ {
			for dz := int64(-1); dz <= 1; dz++ {
				for _, i := range w.grid[cellKey{k.x + dx, k.y + dy, k.z + dz}] {
					if w.verts[i].Sub(p).Length() <= w.eps {
						return i
					}
				}
			}
		}
	}
	i := len(w.verts)
	w.verts = append(w.verts, p)
	w.grid[k] = append(w.grid[k], i)
	return i
}

// Index merges vertices closer than eps and rewrites faces as index
// tuples. A quad whose corners merge down to three distinct vertices
// becomes a triangle; faces left with fewer than three are dropped and
// counted. Face order is preserved.
func (m *Mesh) Index(eps float64) *IndexedMesh {
	w := newWelder(eps)
	out := &IndexedMesh{
		Faces:    make([]IndexedFace, 0, len(m.Faces)),
		Points:   append([]v3.Vec(nil), m.Points...),
		Segments: append([]Segment(nil), m.Segments...),
	}
	for _, f := range m.Faces {
		var ids [4]int
		n := 0
		for _, v := range f.Vertices() {
			id := w.add(v)
			if n > 0 && ids[n-1] == id {
				continue
			}
			ids[n] = id
			n++
		}
		if n > 1 && ids[n-1] == ids[0] {
			n--
		}
		// A quad can still fold back on itself (a, b, a, c).
		if n == 4 && (ids[0] == ids[2] || ids[1] == ids[3]) {
			n = 0
		}
		switch n {
		case 4:
			out.Faces = append(out.Faces, IndexedFace{Kind: FaceQuad, V: ids, Quality: f.Quality})
		case 3:
			out.Faces = append(out.Faces, IndexedFace{Kind: FaceTriangle, V: [4]int{ids[0], ids[1], ids[2], -1}, Quality: f.Quality})
		default:
			out.Dropped++
		}
	}
	out.Vertices = w.verts
	return out
}

// QuadCount returns the number of quad faces.
func (im *IndexedMesh) QuadCount() int {
	n := 0
	for _, f := range im.Faces {
		if f.Kind == FaceQuad {
			n++
		}
	}
	return n
}

// TriangleCount returns the number of triangle faces.
func (im *IndexedMesh) TriangleCount() int {
	return len(im.Faces) - im.QuadCount()
}
