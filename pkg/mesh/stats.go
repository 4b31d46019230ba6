package mesh

import (
	"math"

	"github.com/samber/lo"
)

// QualityStats summarizes the scored faces of a mesh.
type QualityStats struct {
	Quads     int
	Triangles int
	Scored    int     // faces with a computed quality
	Min       float64 // over scored faces; 0 when none
	Max       float64
	Mean      float64
	Below     int // scored faces under the threshold
}

// QualityStats reports face counts and the spread of computed quality
// scores. threshold only affects Below.
func (m *Mesh) QualityStats(threshold float64) QualityStats {
	s := QualityStats{
		Quads:     m.QuadCount(),
		Triangles: m.TriangleCount(),
	}
	scored := lo.Filter(m.Faces, func(f Face, _ int) bool { return f.Quality.Valid() })
	s.Scored = len(scored)
	if s.Scored == 0 {
		return s
	}
	q := lo.Map(scored, func(f Face, _ int) float64 { return float64(f.Quality) })
	s.Min, s.Max = math.Inf(1), math.Inf(-1)
	for _, v := range q {
		s.Min = math.Min(s.Min, v)
		s.Max = math.Max(s.Max, v)
	}
	s.Mean = lo.Sum(q) / float64(len(q))
	s.Below = lo.CountBy(q, func(v float64) bool { return v < threshold })
	return s
}
