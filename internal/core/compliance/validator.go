package compliance

import (
	"fmt"

	"github.com/samirrijal/geoexport/internal/core/domain"
	"github.com/samirrijal/geoexport/internal/pkg/geospatial"
)

// Validator applies the compliance rule set. The zero value validates
// serially; set ParallelThreshold to fan out on large collections.
type Validator struct {
	ParallelThreshold int
}

// Validate checks fc with a default Validator.
func Validate(fc domain.FeatureCollection) domain.ValidationOutcome {
	return Validator{ParallelThreshold: DefaultParallelThreshold}.Validate(fc)
}

// Validate evaluates every feature independently and collects all errors
// and warnings in feature order. It never mutates fc.
func (v Validator) Validate(fc domain.FeatureCollection) domain.ValidationOutcome {
	type result struct {
		errors   []domain.ValidationIssue
		warnings []domain.ValidationIssue
	}
	results := make([]result, len(fc.Features))
	forEach(len(fc.Features), v.ParallelThreshold, func(i int) {
		c := checker{index: i, name: fc.Features[i].Properties.PlaceName}
		c.check(fc.Features[i])
		results[i] = result{errors: c.errors, warnings: c.warnings}
	})

	out := domain.ValidationOutcome{
		Errors:   []domain.ValidationIssue{},
		Warnings: []domain.ValidationIssue{},
	}
	for _, r := range results {
		out.Errors = append(out.Errors, r.errors...)
		out.Warnings = append(out.Warnings, r.warnings...)
	}
	out.Valid = len(out.Errors) == 0
	return out
}

// checker accumulates the issues of a single feature.
type checker struct {
	index    int
	name     string
	errors   []domain.ValidationIssue
	warnings []domain.ValidationIssue
}

func (c *checker) fail(code domain.ErrorCode, format string, args ...any) {
	c.errors = append(c.errors, c.issue(code, format, args...))
}

func (c *checker) warn(code domain.ErrorCode, format string, args ...any) {
	c.warnings = append(c.warnings, c.issue(code, format, args...))
}

func (c *checker) issue(code domain.ErrorCode, format string, args ...any) domain.ValidationIssue {
	return domain.ValidationIssue{
		Code:         code,
		Message:      fmt.Sprintf(format, args...),
		FeatureIndex: c.index,
		FeatureName:  c.name,
	}
}

func (c *checker) check(f domain.Feature) {
	switch g := f.Geometry.(type) {
	case nil:
		c.fail(domain.CodeInvalidGeometry, "Feature has no geometry")
	case domain.MalformedGeometry:
		c.fail(domain.CodeInvalidGeometry, "Invalid %s geometry: %s", kindLabel(g.Kind), g.Reason)
	case domain.UnsupportedGeometry:
		if g.Kind == "LineString" || g.Kind == "MultiLineString" {
			c.fail(domain.CodeLineStringNotAllowed, "%s geometry is not allowed, use Point or Polygon", g.Kind)
		} else {
			c.fail(domain.CodeGeometryTypeNotAllowed, "%s geometry is not allowed, use Point, MultiPoint, Polygon or MultiPolygon", kindLabel(g.Kind))
		}
	case domain.Point:
		c.checkCoordinates([]domain.Coordinate{g.Coord})
		if f.Properties.AreaHectares > domain.LargePlotThresholdHectares {
			c.fail(domain.CodeLargePlotNeedsPolygon,
				"Plot of %.2f ha is larger than %.0f ha and must be described by a polygon",
				f.Properties.AreaHectares, domain.LargePlotThresholdHectares)
		}
	case domain.MultiPoint:
		if len(g.Coords) == 0 {
			c.fail(domain.CodeInvalidGeometry, "MultiPoint geometry has no positions")
		}
		c.checkCoordinates(g.Coords)
	case domain.Polygon:
		c.checkCoordinates(domain.Coordinates(g))
		c.checkPolygon(g, "")
	case domain.MultiPolygon:
		if len(g.Polygons) == 0 {
			c.fail(domain.CodeInvalidGeometry, "MultiPolygon geometry has no polygons")
		}
		c.checkCoordinates(domain.Coordinates(g))
		for i, p := range g.Polygons {
			c.checkPolygon(p, fmt.Sprintf("polygon %d ", i))
		}
	}
}

func (c *checker) checkCoordinates(coords []domain.Coordinate) {
	for _, pt := range coords {
		if pt.Lat < -90 || pt.Lat > 90 {
			c.fail(domain.CodeCoordinateOutOfBounds, "Latitude %v is outside [-90, 90]", pt.Lat)
		}
		if pt.Lng < -180 || pt.Lng > 180 {
			c.fail(domain.CodeCoordinateOutOfBounds, "Longitude %v is outside [-180, 180]", pt.Lng)
		}
		if geospatial.FractionalDigits(pt.Lat) < geospatial.RequiredDecimals ||
			geospatial.FractionalDigits(pt.Lng) < geospatial.RequiredDecimals {
			c.warn(domain.CodePrecisionTooLow, "Coordinate [%v, %v] has fewer than %d decimal places",
				pt.Lng, pt.Lat, geospatial.RequiredDecimals)
		}
	}
}

func (c *checker) checkPolygon(p domain.Polygon, label string) {
	if len(p.Rings) == 0 {
		c.fail(domain.CodePolygonTooFewVertices, "Polygon %shas no outer ring, at least %d vertices are required",
			label, geospatial.MinRingVertices)
		return
	}
	for i, r := range p.Rings {
		if !r.Closed() {
			c.fail(domain.CodePolygonNotClosed, "Polygon %sring %d is not closed (first and last points differ)", label, i)
		}
		if len(r) < geospatial.MinRingVertices {
			c.fail(domain.CodePolygonTooFewVertices, "Polygon %sring %d has %d vertices, at least %d are required",
				label, i, len(r), geospatial.MinRingVertices)
		}
		if i > 0 {
			c.fail(domain.CodePolygonHasHoles, "Polygon %shas a hole (ring %d), holes are not allowed", label, i)
		}
	}
}

func kindLabel(kind string) string {
	if kind == "" {
		return "untyped"
	}
	return kind
}
