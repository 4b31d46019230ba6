package tessellate

import (
	"github.com/chazu/prismesh/pkg/geom"
	"github.com/chazu/prismesh/pkg/kernel"
	"github.com/chazu/prismesh/pkg/options"
	"github.com/chazu/prismesh/pkg/quad"
	v2 "github.com/deadsy/sdfx/vec/v2"
	"go.uber.org/zap"
)

// degenerateKeepThreshold is the MinCapQuadQuality at or above which
// unpaired triangles are kept as degenerate quads whatever their score.
const degenerateKeepThreshold = 0.9

// pairStats accounts for every triangle slot the triangulator returned.
// Usable = 2*Paired + Rejected + Degenerate + Dropped.
type pairStats struct {
	Slots      int // ElementCount reported by the triangulator
	Skipped    int // invalid indices, repeated corners or centroid outside the region
	Usable     int
	Paired     int // quads formed from two triangles
	Rejected   int // unpaired triangles emitted as triangles
	Degenerate int // unpaired triangles emitted as degenerate quads
	Dropped    int // unpaired triangles below the quality bar
}

// usableTriangles reads every slot of res through its bounds-checked
// accessor and keeps triangles with three distinct corners whose centroid
// lies in region. Kept triangles are wound counter-clockwise.
func usableTriangles(res *kernel.Result, region geom.Containment) ([]quad.Triangle, int) {
	skipped := 0
	if res.ElementCount > res.Count() {
		skipped = res.ElementCount - res.Count()
	}
	tris := make([]quad.Triangle, 0, res.Count())
	for i := 0; i < res.Count(); i++ {
		t, ok := res.Triangle(i)
		if !ok || t[0] == t[1] || t[1] == t[2] || t[0] == t[2] {
			skipped++
			continue
		}
		a, b, c := res.Vertices[t[0]], res.Vertices[t[1]], res.Vertices[t[2]]
		if m := centroid2(a, b, c); region != nil && !region.Contains(m.X, m.Y) {
			skipped++
			continue
		}
		if (b.X-a.X)*(c.Y-a.Y)-(b.Y-a.Y)*(c.X-a.X) < 0 {
			t[1], t[2] = t[2], t[1]
		}
		tris = append(tris, quad.Triangle(t))
	}
	return tris, skipped
}

// planTessellated triangulates outer with holes, pairs adjacent triangles
// into quads best first, and resolves every unpaired triangle:
//
//   - OutputRejectedCapTriangles emits it as a triangle.
//   - Otherwise it becomes a degenerate quad (last corner repeated) when
//     that quad scores at least MinCapQuadQuality, or when the threshold
//     is at least 0.9.
//   - Otherwise it is dropped.
//
// A failed or empty triangulation yields an empty plan and ok == false.
func planTessellated(tri kernel.Triangulator, outer geom.Polygon, holes []geom.Polygon, region geom.Containment, opts options.Options, log *zap.Logger) (pl *plan, st pairStats, ok bool) {
	pl = &plan{}
	res, err := tri.Triangulate(outer, holes)
	if err != nil {
		log.Warn("triangulation failed", zap.Error(err), zap.Int("holes", len(holes)))
		return pl, st, false
	}
	if res.Empty() {
		log.Warn("triangulation returned no triangles", zap.Int("holes", len(holes)))
		return pl, st, false
	}

	st.Slots = res.ElementCount
	tris, skipped := usableTriangles(res, region)
	st.Skipped = skipped
	st.Usable = len(tris)
	if skipped > 0 {
		log.Warn("skipped unusable triangles", zap.Int("skipped", skipped), zap.Int("slots", res.ElementCount))
	}
	if len(tris) == 0 {
		return pl, st, false
	}

	verts := res.Vertices
	pairing := quad.PairTriangles(tris, verts, opts.MinCapQuadQuality, opts.Epsilon)
	for _, c := range pairing.Quads {
		pl.addQuad(verts[c.Quad[0]], verts[c.Quad[1]], verts[c.Quad[2]], verts[c.Quad[3]], c.Score)
	}
	st.Paired = len(pairing.Quads)

	for _, idx := range pairing.Unpaired {
		t := tris[idx]
		a, b, c := verts[t[0]], verts[t[1]], verts[t[2]]
		if opts.OutputRejectedCapTriangles {
			pl.addTriangle(a, b, c, quad.ScoreTriangle(a, b, c))
			st.Rejected++
			continue
		}
		s := quad.ScoreQuad(a, b, c, c)
		if s >= opts.MinCapQuadQuality || opts.MinCapQuadQuality >= degenerateKeepThreshold {
			pl.addQuad(a, b, c, c, s)
			st.Degenerate++
			continue
		}
		st.Dropped++
	}

	log.Debug("paired triangles",
		zap.Int("usable", st.Usable),
		zap.Int("quads", st.Paired),
		zap.Int("rejected", st.Rejected),
		zap.Int("degenerate", st.Degenerate),
		zap.Int("dropped", st.Dropped),
	)
	return pl, st, true
}

// centroid2 is the corner average of a triangle.
func centroid2(a, b, c v2.Vec) v2.Vec {
	return a.Add(b).Add(c).MulScalar(1.0 / 3)
}
