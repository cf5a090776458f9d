package compliance

import (
	"fmt"

	"github.com/samirrijal/geoexport/internal/core/domain"
	"github.com/samirrijal/geoexport/internal/pkg/geospatial"
)

// PointStrategy selects how a polygon is reduced to a representative point.
type PointStrategy int

const (
	// StrategyCentroid uses the area-weighted centroid of the outer ring.
	StrategyCentroid PointStrategy = iota
	// StrategyBoundingBox uses the midpoint of the outer ring's bounding box.
	StrategyBoundingBox
)

func (s PointStrategy) String() string {
	switch s {
	case StrategyCentroid:
		return "area centroid"
	case StrategyBoundingBox:
		return "bounding-box midpoint"
	}
	return "unknown"
}

// PolygonToPoint returns the representative point of p's outer ring,
// rounded to six decimals. ok is false when the polygon has no vertices.
func PolygonToPoint(p domain.Polygon, strategy PointStrategy) (domain.Point, bool) {
	outer := p.OuterRing()
	var (
		c  domain.Coordinate
		ok bool
	)
	switch strategy {
	case StrategyBoundingBox:
		c, ok = geospatial.BoundingBoxMidpoint(outer)
	default:
		c, ok = geospatial.AreaCentroid(outer)
	}
	if !ok {
		return domain.Point{}, false
	}
	return domain.Point{Coord: domain.Coordinate{
		Lng: geospatial.RoundCoordinate(c.Lng),
		Lat: geospatial.RoundCoordinate(c.Lat),
	}}, true
}

// Simplify reduces the vertex count of p's outer ring within tolerance
// degrees. Holes, if any, are kept as they are.
func Simplify(p domain.Polygon, tolerance float64) domain.Polygon {
	out := p.Clone()
	if len(out.Rings) == 0 {
		return out
	}
	out.Rings[0] = geospatial.SimplifyRing(p.Rings[0], tolerance)
	return out
}

// OptimizeOptions is the part of the export options the optimizer reads.
type OptimizeOptions struct {
	ConvertSmallToPoints       bool
	SmallPlotThresholdHectares float64
	SimplifyTolerance          *float64
	Strategy                   PointStrategy
}

// OptimizeOptionsFrom derives optimizer settings from export options.
func OptimizeOptionsFrom(o domain.ExportOptions) OptimizeOptions {
	return OptimizeOptions{
		ConvertSmallToPoints:       o.ConvertSmallToPoints,
		SmallPlotThresholdHectares: o.Threshold(),
		SimplifyTolerance:          o.SimplifyTolerance,
		Strategy:                   StrategyCentroid,
	}
}

// Optimizer applies area-aware geometry reductions before export.
type Optimizer struct {
	ParallelThreshold int
}

// OptimizeForExport converts small polygon plots to points and simplifies
// the remaining polygons. Conversion wins over simplification for a plot.
// Non-polygon features pass through. The returned notes describe every
// change in feature order.
func (o Optimizer) OptimizeForExport(fc domain.FeatureCollection, opts OptimizeOptions) (domain.FeatureCollection, []string) {
	threshold := opts.SmallPlotThresholdHectares
	if threshold <= 0 {
		threshold = domain.DefaultSmallPlotThresholdHectares
	}

	out := domain.FeatureCollection{Features: make([]domain.Feature, len(fc.Features))}
	notes := make([]string, len(fc.Features))
	forEach(len(fc.Features), o.ParallelThreshold, func(i int) {
		f := fc.Features[i]
		out.Features[i] = f

		poly, isPolygon := f.Geometry.(domain.Polygon)
		if !isPolygon {
			return
		}
		name := displayName(f.Properties.PlaceName, i)

		if opts.ConvertSmallToPoints && f.Properties.AreaHectares <= threshold {
			if pt, ok := PolygonToPoint(poly, opts.Strategy); ok {
				out.Features[i].Geometry = pt
				notes[i] = fmt.Sprintf("Converted %s from polygon to point (%.2f ha <= %.2f ha, %s)",
					name, f.Properties.AreaHectares, threshold, opts.Strategy)
				return
			}
		}

		if opts.SimplifyTolerance != nil && *opts.SimplifyTolerance > 0 {
			simplified := Simplify(poly, *opts.SimplifyTolerance)
			before, after := len(poly.OuterRing()), len(simplified.OuterRing())
			if after == before {
				return
			}
			out.Features[i].Geometry = simplified
			notes[i] = fmt.Sprintf("Simplified %s polygon from %d to %d vertices (tolerance %g)",
				name, before, after, *opts.SimplifyTolerance)
		}
	})

	changes := make([]string, 0)
	for _, n := range notes {
		if n != "" {
			changes = append(changes, n)
		}
	}
	return out, changes
}

// OptimizeForExport runs a default Optimizer.
func OptimizeForExport(fc domain.FeatureCollection, opts OptimizeOptions) (domain.FeatureCollection, []string) {
	return Optimizer{ParallelThreshold: DefaultParallelThreshold}.OptimizeForExport(fc, opts)
}

func displayName(name string, index int) string {
	if name == "" {
		return fmt.Sprintf("feature %d", index)
	}
	return name
}
