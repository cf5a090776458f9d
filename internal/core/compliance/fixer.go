package compliance

import (
	"github.com/samirrijal/geoexport/internal/core/domain"
	"github.com/samirrijal/geoexport/internal/pkg/geospatial"
)

// Fix repairs every Polygon and MultiPolygon ring of fc: components are
// rounded to six decimals, then an open ring is closed by appending a copy
// of its first coordinate. Vertices are never removed or reordered. All
// other geometries pass through untouched, so Fix(Fix(x)) equals Fix(x).
// fc is not modified.
func Fix(fc domain.FeatureCollection) domain.FeatureCollection {
	out := domain.FeatureCollection{Features: make([]domain.Feature, len(fc.Features))}
	for i, f := range fc.Features {
		out.Features[i] = domain.Feature{
			Geometry:   FixGeometry(f.Geometry),
			Properties: f.Properties,
		}
	}
	return out
}

// FixGeometry applies the ring repairs to a single geometry.
func FixGeometry(g domain.Geometry) domain.Geometry {
	switch v := g.(type) {
	case domain.Polygon:
		return fixPolygon(v)
	case domain.MultiPolygon:
		polys := make([]domain.Polygon, len(v.Polygons))
		for i, p := range v.Polygons {
			polys[i] = fixPolygon(p)
		}
		return domain.MultiPolygon{Polygons: polys}
	case nil, domain.Point, domain.MultiPoint, domain.UnsupportedGeometry, domain.MalformedGeometry:
		return g
	}
	return g
}

func fixPolygon(p domain.Polygon) domain.Polygon {
	rings := make([]domain.Ring, len(p.Rings))
	for i, r := range p.Rings {
		rings[i] = FixRing(r)
	}
	return domain.Polygon{Rings: rings}
}

// FixRing rounds and closes a single ring. An empty ring stays empty.
func FixRing(r domain.Ring) domain.Ring {
	if len(r) == 0 {
		return r.Clone()
	}
	out := make(domain.Ring, len(r), len(r)+1)
	for i, c := range r {
		out[i] = domain.Coordinate{
			Lng: geospatial.RoundCoordinate(c.Lng),
			Lat: geospatial.RoundCoordinate(c.Lat),
		}
	}
	if !out.Closed() {
		out = append(out, out[0])
	}
	return out
}
