package geospatial

import "github.com/samirrijal/geoexport/internal/core/domain"

// RingPerimeter returns the length of the ring's boundary in meters,
// following the vertices in order.
func RingPerimeter(r domain.Ring) float64 {
	var total float64
	for i := 1; i < len(r); i++ {
		total += Haversine(r[i-1].Lat, r[i-1].Lng, r[i].Lat, r[i].Lng)
	}
	return total
}
