package geospatial

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/samirrijal/geoexport/internal/core/domain"
)

// ToOrbRing converts a ring to orb's [lng, lat] representation.
func ToOrbRing(r domain.Ring) orb.Ring {
	out := make(orb.Ring, len(r))
	for i, c := range r {
		out[i] = orb.Point{c.Lng, c.Lat}
	}
	return out
}

// FromOrbRing converts back from orb's representation.
func FromOrbRing(r orb.Ring) domain.Ring {
	out := make(domain.Ring, len(r))
	for i, p := range r {
		out[i] = domain.Coordinate{Lng: p.X(), Lat: p.Y()}
	}
	return out
}

// BoundingBoxMidpoint returns ((minLng+maxLng)/2, (minLat+maxLat)/2) over
// the ring's vertices. ok is false for an empty ring.
func BoundingBoxMidpoint(r domain.Ring) (c domain.Coordinate, ok bool) {
	if len(r) == 0 {
		return domain.Coordinate{}, false
	}
	center := ToOrbRing(r).Bound().Center()
	return domain.Coordinate{Lng: center.X(), Lat: center.Y()}, true
}

// AreaCentroid returns the area-weighted centroid of the polygon bounded by
// r. Rings enclosing no area fall back to the bounding-box midpoint.
func AreaCentroid(r domain.Ring) (c domain.Coordinate, ok bool) {
	if len(r) == 0 {
		return domain.Coordinate{}, false
	}
	ring := ToOrbRing(r)
	if !r.Closed() {
		ring = append(ring, ring[0])
	}
	center, area := planar.CentroidArea(orb.Polygon{ring})
	if area == 0 {
		return BoundingBoxMidpoint(r)
	}
	return domain.Coordinate{Lng: center.X(), Lat: center.Y()}, true
}
