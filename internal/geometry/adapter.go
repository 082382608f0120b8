// Package geometry adapts stored polygon geometry into the coordinate form
// the rendering collaborator consumes.
package geometry

import (
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
)

// ErrNoGeometry reports that a shape has no renderable outline. Callers
// skip the neighborhood in visual output but keep it in textual summaries.
var ErrNoGeometry = eris.New("geometry: no renderable outline")

// LatLng is a renderer-facing coordinate pair, latitude first. Storage
// order is [longitude, latitude]; renderers expect the reverse, so the swap
// is performed exactly once, here.
type LatLng [2]float64

// Outline returns the first ring of the first polygon with each pair
// swapped from [lon, lat] to [lat, lng]. Nil, non-polygonal, or empty
// geometry yields ErrNoGeometry rather than panicking past this boundary.
func Outline(g geom.T) ([]LatLng, error) {
	ring, err := firstRing(g)
	if err != nil {
		return nil, err
	}

	out := make([]LatLng, 0, len(ring))
	for _, c := range ring {
		if len(c) < 2 {
			return nil, ErrNoGeometry
		}
		out = append(out, LatLng{c[1], c[0]})
	}
	return out, nil
}

func firstRing(g geom.T) ([]geom.Coord, error) {
	switch s := g.(type) {
	case *geom.Polygon:
		if s.NumLinearRings() == 0 {
			return nil, ErrNoGeometry
		}
		return ringCoords(s.LinearRing(0))
	case *geom.MultiPolygon:
		if s.NumPolygons() == 0 {
			return nil, ErrNoGeometry
		}
		p := s.Polygon(0)
		if p.NumLinearRings() == 0 {
			return nil, ErrNoGeometry
		}
		return ringCoords(p.LinearRing(0))
	case nil:
		return nil, ErrNoGeometry
	default:
		return nil, ErrNoGeometry
	}
}

func ringCoords(r *geom.LinearRing) ([]geom.Coord, error) {
	coords := r.Coords()
	if len(coords) == 0 {
		return nil, ErrNoGeometry
	}
	return coords, nil
}

// Equal reports whether two shapes carry identical flat coordinates. The
// aggregator uses it to verify that all rows of one neighborhood share the
// same geometry.
func Equal(a, b geom.T) bool {
	if a == nil || b == nil {
		return a == b
	}
	fa, fb := a.FlatCoords(), b.FlatCoords()
	if len(fa) != len(fb) {
		return false
	}
	for i := range fa {
		if fa[i] != fb[i] {
			return false
		}
	}
	return true
}
