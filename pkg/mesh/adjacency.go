package mesh

import (
	"cmp"
	"slices"

	"github.com/chazu/prismesh/pkg/quad"
)

// Adjacency maps every undirected mesh edge to the faces that use it.
// Boundary edges have one face; NonManifold edges have three or more.
// Both lists are sorted by key.
type Adjacency struct {
	Edges       quad.EdgeMap
	Boundary    []quad.EdgeKey
	NonManifold []quad.EdgeKey
}

// BuildAdjacency runs the edge-to-face mapping over every face, the same
// primitive the cap generators use to find triangle pairs.
func (im *IndexedMesh) BuildAdjacency() Adjacency {
	edges := make(quad.EdgeMap, len(im.Faces)*2)
	for fi, f := range im.Faces {
		ids := f.Indices()
		for k := range ids {
			quad.AddEdgeToTriangleMapping(edges, ids[k], ids[(k+1)%len(ids)], fi)
		}
	}
	adj := Adjacency{Edges: edges}
	for k, faces := range edges {
		switch {
		case len(faces) == 1:
			adj.Boundary = append(adj.Boundary, k)
		case len(faces) > 2:
			adj.NonManifold = append(adj.NonManifold, k)
		}
	}
	byKey := func(a, b quad.EdgeKey) int {
		if c := cmp.Compare(a.A, b.A); c != 0 {
			return c
		}
		return cmp.Compare(a.B, b.B)
	}
	slices.SortFunc(adj.Boundary, byKey)
	slices.SortFunc(adj.NonManifold, byKey)
	return adj
}

// Manifold reports whether no edge is shared by more than two faces.
func (a Adjacency) Manifold() bool {
	return len(a.NonManifold) == 0
}
