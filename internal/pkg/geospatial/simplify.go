package geospatial

import (
	"slices"

	"github.com/paulmach/orb/planar"
	"github.com/paulmach/orb/simplify"

	"github.com/samirrijal/geoexport/internal/core/domain"
)

// MinRingVertices is the smallest legal ring: three distinct positions and
// the closing duplicate.
const MinRingVertices = 4

// SimplifyRing reduces the vertex count of a closed ring with
// Douglas-Peucker under tolerance, measured in degrees. The result is
// always closed and never shorter than MinRingVertices. When the
// tolerance would collapse the ring, the widest triangle of its vertices
// is kept instead, so a larger tolerance never yields more vertices.
func SimplifyRing(r domain.Ring, tolerance float64) domain.Ring {
	if tolerance <= 0 || len(r) <= MinRingVertices || !r.Closed() {
		return r.Clone()
	}
	out := FromOrbRing(simplify.DouglasPeucker(tolerance).Ring(ToOrbRing(r)))
	if len(out) > 0 && !out.Closed() {
		out = append(out, out[0])
	}
	if len(out) < MinRingVertices {
		return minimalRing(r)
	}
	if len(out) > len(r) {
		return r.Clone()
	}
	return out
}

// minimalRing keeps the first vertex, the vertex farthest from it and the
// vertex farthest from the segment between those two, in ring order.
// Degenerate rings with no such triangle are returned unchanged.
func minimalRing(r domain.Ring) domain.Ring {
	pts := ToOrbRing(r[:len(r)-1])

	far, farDist := 0, 0.0
	for i, p := range pts {
		if d := planar.DistanceSquared(pts[0], p); d > farDist {
			far, farDist = i, d
		}
	}
	if farDist == 0 {
		return r.Clone()
	}

	apex, apexDist := 0, 0.0
	for i, p := range pts {
		if i == 0 || i == far {
			continue
		}
		if d := planar.DistanceFromSegmentSquared(pts[0], pts[far], p); d > apexDist {
			apex, apexDist = i, d
		}
	}
	if apexDist == 0 {
		return r.Clone()
	}

	idx := []int{0, far, apex}
	slices.Sort(idx)
	out := make(domain.Ring, 0, MinRingVertices)
	for _, i := range idx {
		out = append(out, r[i])
	}
	return append(out, r[0])
}
