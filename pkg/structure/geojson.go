package structure

import (
	"encoding/json"

	"github.com/chazu/prismesh/pkg/geom"
	v2 "github.com/deadsy/sdfx/vec/v2"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/pkg/errors"
)

// ErrNoPolygon is returned when a GeoJSON document holds no polygonal
// geometry.
var ErrNoPolygon = errors.New("structure: no polygon in geojson")

// FromGeoJSON builds a prism from the first polygonal geometry in data,
// which may be a bare Polygon or MultiPolygon geometry, a Feature or a
// FeatureCollection. Ring 0 becomes the footprint and any further rings
// become holes. Coordinates are taken as planar X/Y.
func FromGeoJSON(data []byte, base, top float64) (*Prism, error) {
	poly, err := firstPolygon(data)
	if err != nil {
		return nil, err
	}
	if len(poly) == 0 {
		return nil, ErrNoPolygon
	}
	p, err := New(ringToPolygon(poly[0]), base, top)
	if err != nil {
		return nil, err
	}
	for _, r := range poly[1:] {
		p = p.AddHole(ringToPolygon(r))
	}
	return p, nil
}

// firstPolygon sniffs the document type and returns the first polygon it
// carries.
func firstPolygon(data []byte) (orb.Polygon, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, errors.Wrap(err, "structure: parse geojson")
	}

	switch head.Type {
	case "FeatureCollection":
		fc, err := geojson.UnmarshalFeatureCollection(data)
		if err != nil {
			return nil, errors.Wrap(err, "structure: parse feature collection")
		}
		for _, f := range fc.Features {
			if p, ok := polygonOf(f.Geometry); ok {
				return p, nil
			}
		}
	case "Feature":
		f, err := geojson.UnmarshalFeature(data)
		if err != nil {
			return nil, errors.Wrap(err, "structure: parse feature")
		}
		if p, ok := polygonOf(f.Geometry); ok {
			return p, nil
		}
	default:
		g, err := geojson.UnmarshalGeometry(data)
		if err != nil {
			return nil, errors.Wrap(err, "structure: parse geometry")
		}
		if p, ok := polygonOf(g.Geometry()); ok {
			return p, nil
		}
	}
	return nil, ErrNoPolygon
}

func polygonOf(g orb.Geometry) (orb.Polygon, bool) {
	switch v := g.(type) {
	case orb.Polygon:
		return v, len(v) > 0
	case orb.MultiPolygon:
		for _, p := range v {
			if len(p) > 0 {
				return p, true
			}
		}
	}
	return nil, false
}

// ringToPolygon drops the closing vertex GeoJSON repeats.
func ringToPolygon(r orb.Ring) geom.Polygon {
	pts := []orb.Point(r)
	if len(pts) > 1 && r.Closed() {
		pts = pts[:len(pts)-1]
	}
	out := make(geom.Polygon, len(pts))
	for i, pt := range pts {
		out[i] = v2.Vec{X: pt[0], Y: pt[1]}
	}
	return out
}
