package quad

// Triangle is a triple of vertex indices.
type Triangle [3]int

// EdgeKey is an undirected edge between two vertex indices, normalized so
// that A <= B. Self-loops (A == B) are legal keys.
type EdgeKey struct {
	A, B int
}

// NewEdgeKey returns the normalized key for edge (a, b).
func NewEdgeKey(a, b int) EdgeKey {
	if a > b {
		a, b = b, a
	}
	return EdgeKey{A: a, B: b}
}

// EdgeMap maps each undirected edge to the triangles incident to it, in
// insertion order.
type EdgeMap map[EdgeKey][]int

// AddEdgeToTriangleMapping records triangle tri as incident to edge (a, b),
// creating the entry on first use.
func AddEdgeToTriangleMapping(m EdgeMap, a, b, tri int) {
	k := NewEdgeKey(a, b)
	m[k] = append(m[k], tri)
}

// BuildEdgeMap adds the three edges of every triangle in tris to m, using
// each triangle's position in tris as its index.
func BuildEdgeMap(m EdgeMap, tris []Triangle) {
	for i, t := range tris {
		AddEdgeToTriangleMapping(m, t[0], t[1], i)
		AddEdgeToTriangleMapping(m, t[1], t[2], i)
		AddEdgeToTriangleMapping(m, t[2], t[0], i)
	}
}

// Interior reports whether k is shared by exactly two triangles.
func (m EdgeMap) Interior(k EdgeKey) bool {
	return len(m[k]) == 2
}

// Boundary reports whether k belongs to exactly one triangle.
func (m EdgeMap) Boundary(k EdgeKey) bool {
	return len(m[k]) == 1
}

// Counts returns how many edges are boundary (one triangle), interior
// (two) and non-manifold (three or more).
func (m EdgeMap) Counts() (boundary, interior, nonManifold int) {
	for _, ts := range m {
		switch {
		case len(ts) == 1:
			boundary++
		case len(ts) == 2:
			interior++
		case len(ts) > 2:
			nonManifold++
		}
	}
	return boundary, interior, nonManifold
}
