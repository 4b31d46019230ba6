package quad

import (
	"cmp"
	"slices"
	"sync"

	v2 "github.com/deadsy/sdfx/vec/v2"
)

// Candidate is a scored merge of triangles A and B.
type Candidate struct {
	Score float64
	A, B  int
	Quad  [4]int
}

// Pairing is the outcome of PairTriangles. Quads are in acceptance order
// (best first); Unpaired lists the remaining triangle indices ascending.
// Every input triangle appears exactly once, either in one quad or in
// Unpaired.
type Pairing struct {
	Quads    []Candidate
	Unpaired []int
}

// Transient buffers are checked out per call and returned on exit, so
// concurrent callers never share one.
var (
	edgeMapPool = sync.Pool{
		New: func() any { return make(EdgeMap) },
	}
	candidatePool = sync.Pool{
		New: func() any { s := make([]Candidate, 0, 64); return &s },
	}
	claimedPool = sync.Pool{
		New: func() any { s := make([]bool, 0, 64); return &s },
	}
)

// PairTriangles greedily merges adjacent triangles into quads. Candidates
// come from every edge shared by exactly two triangles, in triangle order;
// a candidate is kept when MakeQuadFromTrianglePair accepts it and its
// ScoreQuad is at least minQuality. Candidates are then taken best first
// (stable on ties) and accepted only when neither triangle is already
// claimed.
//
// tris must reference valid indices into verts; invalid triangles are
// never paired and come back in Unpaired.
func PairTriangles(tris []Triangle, verts []v2.Vec, minQuality, eps float64) Pairing {
	edges := edgeMapPool.Get().(EdgeMap)
	candp := candidatePool.Get().(*[]Candidate)
	claimedp := claimedPool.Get().(*[]bool)
	defer func() {
		clear(edges)
		edgeMapPool.Put(edges)
		*candp = (*candp)[:0]
		candidatePool.Put(candp)
		*claimedp = (*claimedp)[:0]
		claimedPool.Put(claimedp)
	}()

	BuildEdgeMap(edges, tris)

	cands := (*candp)[:0]
	for i, t := range tris {
		for k := 0; k < 3; k++ {
			incident := edges[NewEdgeKey(t[k], t[(k+1)%3])]
			if len(incident) != 2 {
				continue
			}
			j := incident[0]
			if j == i {
				j = incident[1]
			}
			// Each shared edge is seen from both sides; keep one.
			if j <= i {
				continue
			}
			q, ok := MakeQuadFromTrianglePair(t, tris[j], verts, eps)
			if !ok {
				continue
			}
			s := ScoreQuad(verts[q[0]], verts[q[1]], verts[q[2]], verts[q[3]])
			if s < minQuality {
				continue
			}
			cands = append(cands, Candidate{Score: s, A: i, B: j, Quad: q})
		}
	}
	*candp = cands

	slices.SortStableFunc(cands, func(x, y Candidate) int {
		return cmp.Compare(y.Score, x.Score)
	})

	claimed := slices.Grow((*claimedp)[:0], len(tris))[:len(tris)]
	clear(claimed)
	*claimedp = claimed

	var out Pairing
	for _, c := range cands {
		if claimed[c.A] || claimed[c.B] {
			continue
		}
		claimed[c.A] = true
		claimed[c.B] = true
		out.Quads = append(out.Quads, c)
	}
	for i, c := range claimed {
		if !c {
			out.Unpaired = append(out.Unpaired, i)
		}
	}
	return out
}
