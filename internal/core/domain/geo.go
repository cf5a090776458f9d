package domain

import "math"

// Bounds represents a geographic bounding box.
type Bounds struct {
	MinLat float64 `json:"min_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLat float64 `json:"max_lat"`
	MaxLon float64 `json:"max_lon"`
}

// BoundsOf returns the bounding box of every position in g. ok is false
// when g has no positions.
func BoundsOf(g Geometry) (b Bounds, ok bool) {
	coords := Coordinates(g)
	if len(coords) == 0 {
		return Bounds{}, false
	}
	b = Bounds{
		MinLat: math.Inf(1), MinLon: math.Inf(1),
		MaxLat: math.Inf(-1), MaxLon: math.Inf(-1),
	}
	for _, c := range coords {
		b.MinLat = math.Min(b.MinLat, c.Lat)
		b.MaxLat = math.Max(b.MaxLat, c.Lat)
		b.MinLon = math.Min(b.MinLon, c.Lng)
		b.MaxLon = math.Max(b.MaxLon, c.Lng)
	}
	return b, true
}
