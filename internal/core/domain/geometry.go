package domain

import "encoding/json"

// GeometryKind names a geometry variant as it appears in the wire format.
type GeometryKind string

const (
	KindPoint        GeometryKind = "Point"
	KindMultiPoint   GeometryKind = "MultiPoint"
	KindPolygon      GeometryKind = "Polygon"
	KindMultiPolygon GeometryKind = "MultiPolygon"
)

// Coordinate is a WGS 84 position. It is encoded as [lng, lat].
type Coordinate struct {
	Lng float64 `json:"lng"`
	Lat float64 `json:"lat"`
}

// Ring is one boundary of a polygon. The first ring of a polygon is the
// outer boundary; any further ring is a hole.
type Ring []Coordinate

// Closed reports whether the first and last coordinates are equal.
func (r Ring) Closed() bool {
	if len(r) == 0 {
		return false
	}
	return r[0] == r[len(r)-1]
}

// Clone returns a copy that shares no backing array with r.
func (r Ring) Clone() Ring {
	if r == nil {
		return nil
	}
	out := make(Ring, len(r))
	copy(out, r)
	return out
}

// Geometry is the closed set of geometry variants the pipeline understands.
// Consumers type-switch over Point, MultiPoint, Polygon, MultiPolygon,
// UnsupportedGeometry and MalformedGeometry.
type Geometry interface {
	Type() string
	sealed()
}

// Point is a single position.
type Point struct {
	Coord Coordinate
}

// MultiPoint is an ordered set of positions.
type MultiPoint struct {
	Coords []Coordinate
}

// Polygon is an outer ring followed by optional holes.
type Polygon struct {
	Rings []Ring
}

// MultiPolygon is an ordered set of polygons.
type MultiPolygon struct {
	Polygons []Polygon
}

// UnsupportedGeometry carries a geometry of a type outside the allowed set
// (LineString, GeometryCollection, ...). Raw holds the original JSON so the
// geometry re-encodes with the same content.
type UnsupportedGeometry struct {
	Kind string
	Raw  json.RawMessage
}

// MalformedGeometry carries an allowed geometry type whose coordinates could
// not be decoded.
type MalformedGeometry struct {
	Kind   string
	Reason string
	Raw    json.RawMessage
}

func (Point) Type() string                 { return string(KindPoint) }
func (MultiPoint) Type() string            { return string(KindMultiPoint) }
func (Polygon) Type() string               { return string(KindPolygon) }
func (MultiPolygon) Type() string          { return string(KindMultiPolygon) }
func (g UnsupportedGeometry) Type() string { return g.Kind }
func (g MalformedGeometry) Type() string   { return g.Kind }

func (Point) sealed()               {}
func (MultiPoint) sealed()          {}
func (Polygon) sealed()             {}
func (MultiPolygon) sealed()        {}
func (UnsupportedGeometry) sealed() {}
func (MalformedGeometry) sealed()   {}

// OuterRing returns the polygon's outer boundary, or nil when it has none.
func (p Polygon) OuterRing() Ring {
	if len(p.Rings) == 0 {
		return nil
	}
	return p.Rings[0]
}

// Clone deep-copies the polygon's rings.
func (p Polygon) Clone() Polygon {
	rings := make([]Ring, len(p.Rings))
	for i, r := range p.Rings {
		rings[i] = r.Clone()
	}
	return Polygon{Rings: rings}
}

// Coordinates flattens every position of g in document order. Unsupported
// and malformed geometries have none.
func Coordinates(g Geometry) []Coordinate {
	switch v := g.(type) {
	case Point:
		return []Coordinate{v.Coord}
	case MultiPoint:
		return v.Coords
	case Polygon:
		var out []Coordinate
		for _, r := range v.Rings {
			out = append(out, r...)
		}
		return out
	case MultiPolygon:
		var out []Coordinate
		for _, p := range v.Polygons {
			for _, r := range p.Rings {
				out = append(out, r...)
			}
		}
		return out
	case UnsupportedGeometry, MalformedGeometry:
		return nil
	}
	return nil
}
