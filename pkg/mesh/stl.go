package mesh

import (
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	"github.com/pkg/errors"
)

// triangles splits quads along the 0-2 diagonal.
func (m *Mesh) triangles() []*sdf.Triangle3 {
	out := make([]*sdf.Triangle3, 0, len(m.Faces)*2)
	for _, f := range m.Faces {
		out = append(out, &sdf.Triangle3{f.V[0], f.V[1], f.V[2]})
		if f.Kind == FaceQuad {
			out = append(out, &sdf.Triangle3{f.V[0], f.V[2], f.V[3]})
		}
	}
	return out
}

// WriteSTL saves the faces as a binary STL file. Auxiliary points and
// segments have no STL representation and are skipped.
func (m *Mesh) WriteSTL(path string) error {
	if m.IsEmpty() {
		return errors.New("mesh: nothing to write")
	}
	if err := render.SaveSTL(path, m.triangles()); err != nil {
		return errors.Wrapf(err, "mesh: write %s", path)
	}
	return nil
}
