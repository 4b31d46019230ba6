package mesh

// RenderMesh is a triangle mesh suitable for rendering.
// All arrays are flat: vertices has 3 floats per vertex (x,y,z),
// normals has 3 floats per vertex, indices has 3 uint32s per triangle.
// Faces are flat shaded, so corners are not shared between triangles.
type RenderMesh struct {
	Vertices []float32 `json:"vertices"` // [x0,y0,z0, x1,y1,z1, ...]
	Normals  []float32 `json:"normals"`  // [nx0,ny0,nz0, ...]
	Indices  []uint32  `json:"indices"`  // [i0,i1,i2, ...] triangles
	Name     string    `json:"name"`     // which prism this came from
}

// VertexCount returns the number of vertices.
func (r *RenderMesh) VertexCount() int {
	return len(r.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (r *RenderMesh) TriangleCount() int {
	return len(r.Indices) / 3
}

// IsEmpty returns true if the mesh has no geometry.
func (r *RenderMesh) IsEmpty() bool {
	return len(r.Vertices) == 0
}

// Flatten splits every quad along its 0-2 diagonal and writes the
// triangles into render buffers with per-face normals.
func (m *Mesh) Flatten(name string) *RenderMesh {
	numTri := 0
	for _, f := range m.Faces {
		numTri += f.Kind.Corners() - 2
	}
	numVerts := numTri * 3
	r := &RenderMesh{
		Vertices: make([]float32, 0, numVerts*3),
		Normals:  make([]float32, 0, numVerts*3),
		Indices:  make([]uint32, 0, numVerts),
		Name:     name,
	}
	for _, tri := range m.triangles() {
		n := tri.Normal()
		nx, ny, nz := float32(n.X), float32(n.Y), float32(n.Z)
		for j := 0; j < 3; j++ {
			v := tri[j]
			r.Indices = append(r.Indices, uint32(len(r.Vertices)/3))
			r.Vertices = append(r.Vertices, float32(v.X), float32(v.Y), float32(v.Z))
			r.Normals = append(r.Normals, nx, ny, nz)
		}
	}
	return r
}
