package compliance_test

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/geoexport/internal/core/compliance"
	"github.com/samirrijal/geoexport/internal/core/domain"
	"github.com/samirrijal/geoexport/internal/pkg/geojson"
)

func pt(lng, lat float64) domain.Coordinate { return domain.Coordinate{Lng: lng, Lat: lat} }

func feature(g domain.Geometry, name string, area float64) domain.Feature {
	return domain.Feature{
		Geometry:   g,
		Properties: domain.Properties{PlaceName: name, AreaHectares: area, ProducerCountry: "BR"},
	}
}

func collection(fs ...domain.Feature) domain.FeatureCollection {
	return domain.FeatureCollection{Features: fs}
}

func codes(issues []domain.ValidationIssue) []domain.ErrorCode {
	out := make([]domain.ErrorCode, 0, len(issues))
	for _, i := range issues {
		out = append(out, i.Code)
	}
	return out
}

func countCode(issues []domain.ValidationIssue, code domain.ErrorCode) int {
	n := 0
	for _, i := range issues {
		if i.Code == code {
			n++
		}
	}
	return n
}

var validSquare = domain.Polygon{Rings: []domain.Ring{{
	pt(-60.100001, -10.100001), pt(-60.200001, -10.100001),
	pt(-60.200001, -10.200001), pt(-60.100001, -10.200001),
	pt(-60.100001, -10.100001),
}}}

func TestValidate_ValidPolygon(t *testing.T) {
	out := compliance.Validate(collection(feature(validSquare, "Fazenda Boa Vista", 12)))
	assert.True(t, out.Valid)
	assert.Empty(t, out.Errors)
	assert.Empty(t, out.Warnings)
}

func TestValidate_MissingGeometry(t *testing.T) {
	out := compliance.Validate(collection(feature(nil, "Empty", 1)))
	require.False(t, out.Valid)
	assert.Equal(t, []domain.ErrorCode{domain.CodeInvalidGeometry}, codes(out.Errors))
	assert.Equal(t, "Empty", out.Errors[0].FeatureName)
	assert.Equal(t, 0, out.Errors[0].FeatureIndex)
}

func TestValidate_MalformedGeometry(t *testing.T) {
	g := domain.MalformedGeometry{Kind: "Polygon", Reason: "coordinates must be an array of rings"}
	out := compliance.Validate(collection(feature(g, "Broken", 1)))
	assert.Equal(t, []domain.ErrorCode{domain.CodeInvalidGeometry}, codes(out.Errors))
	assert.Contains(t, out.Errors[0].Message, "coordinates must be an array of rings")
}

func TestValidate_DisallowedTypes(t *testing.T) {
	line := domain.UnsupportedGeometry{Kind: "LineString", Raw: json.RawMessage(`{"type":"LineString","coordinates":[[0,0],[1,1]]}`)}
	coll := domain.UnsupportedGeometry{Kind: "GeometryCollection", Raw: json.RawMessage(`{"type":"GeometryCollection","geometries":[]}`)}

	out := compliance.Validate(collection(feature(line, "Road", 1), feature(coll, "Mixed", 1)))
	assert.False(t, out.Valid)
	assert.Equal(t, []domain.ErrorCode{domain.CodeLineStringNotAllowed, domain.CodeGeometryTypeNotAllowed}, codes(out.Errors))
	assert.Equal(t, 1, out.Errors[1].FeatureIndex)
}

func TestValidate_CoordinateBounds(t *testing.T) {
	t.Run("longitude out of range", func(t *testing.T) {
		out := compliance.Validate(collection(feature(domain.Point{Coord: pt(-200, -10)}, "West", 1)))
		assert.Equal(t, 1, countCode(out.Errors, domain.CodeCoordinateOutOfBounds))
	})

	t.Run("in range with full precision", func(t *testing.T) {
		out := compliance.Validate(collection(feature(domain.Point{Coord: pt(-60.123456, -10.654321)}, "Ok", 1)))
		assert.Zero(t, countCode(out.Errors, domain.CodeCoordinateOutOfBounds))
		assert.True(t, out.Valid)
		assert.Empty(t, out.Warnings)
	})

	t.Run("both axes out of range", func(t *testing.T) {
		out := compliance.Validate(collection(feature(domain.Point{Coord: pt(200.000001, 95.000001)}, "Nowhere", 1)))
		assert.Equal(t, 2, countCode(out.Errors, domain.CodeCoordinateOutOfBounds))
	})

	t.Run("boundary values are allowed", func(t *testing.T) {
		out := compliance.Validate(collection(feature(domain.Point{Coord: pt(180, -90)}, "Edge", 1)))
		assert.Zero(t, countCode(out.Errors, domain.CodeCoordinateOutOfBounds))
	})
}

func TestValidate_OneValidOneOutOfRangePoint(t *testing.T) {
	out := compliance.Validate(collection(
		feature(domain.Point{Coord: pt(-60.123456, -10.654321)}, "Good", 1),
		feature(domain.Point{Coord: pt(-200.123456, -10.654321)}, "Bad", 1),
	))
	assert.False(t, out.Valid)
	require.Len(t, out.Errors, 1)
	assert.Equal(t, domain.CodeCoordinateOutOfBounds, out.Errors[0].Code)
	assert.Equal(t, 1, out.Errors[0].FeatureIndex)
	assert.Equal(t, "Bad", out.Errors[0].FeatureName)
}

func TestValidate_PrecisionIsAWarning(t *testing.T) {
	out := compliance.Validate(collection(feature(domain.Point{Coord: pt(-60.1, -10.2)}, "Coarse", 1)))
	assert.True(t, out.Valid)
	assert.Empty(t, out.Errors)
	assert.Equal(t, []domain.ErrorCode{domain.CodePrecisionTooLow}, codes(out.Warnings))
}

func TestValidate_PolygonNotClosed(t *testing.T) {
	open := domain.Polygon{Rings: []domain.Ring{{
		pt(0.000001, 0.000001), pt(1.000001, 0.000001), pt(1.000001, 1.000001), pt(0.000001, 1.000001),
	}}}
	out := compliance.Validate(collection(feature(open, "Open", 10)))
	assert.Equal(t, []domain.ErrorCode{domain.CodePolygonNotClosed}, codes(out.Errors))
}

func TestValidate_TooFewVertices(t *testing.T) {
	tri := domain.Polygon{Rings: []domain.Ring{{pt(0.000001, 0.000001), pt(1.000001, 0.000001), pt(0.000001, 0.000001)}}}
	out := compliance.Validate(collection(feature(tri, "Sliver", 10)))
	assert.Equal(t, []domain.ErrorCode{domain.CodePolygonTooFewVertices}, codes(out.Errors))
}

func TestValidate_EmptyGeometriesAreErrors(t *testing.T) {
	cases := []struct {
		name string
		doc  string
		want domain.ErrorCode
	}{
		{"polygon", `{"type":"Polygon","coordinates":[]}`, domain.CodePolygonTooFewVertices},
		{"multipolygon", `{"type":"MultiPolygon","coordinates":[]}`, domain.CodeInvalidGeometry},
		{"multipolygon with empty part", `{"type":"MultiPolygon","coordinates":[[]]}`, domain.CodePolygonTooFewVertices},
		{"multipoint", `{"type":"MultiPoint","coordinates":[]}`, domain.CodeInvalidGeometry},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g := geojson.DecodeGeometry(json.RawMessage(tc.doc))
			out := compliance.Validate(collection(feature(g, "Empty", 10)))
			assert.False(t, out.Valid)
			assert.Equal(t, []domain.ErrorCode{tc.want}, codes(out.Errors))
		})
	}
}

func TestValidate_HolesOnePerExtraRing(t *testing.T) {
	hole := domain.Ring{
		pt(-60.150001, -10.150001), pt(-60.160001, -10.150001),
		pt(-60.160001, -10.160001), pt(-60.150001, -10.150001),
	}
	for extra := 1; extra <= 3; extra++ {
		t.Run(fmt.Sprintf("%d holes", extra), func(t *testing.T) {
			p := validSquare.Clone()
			for i := 0; i < extra; i++ {
				p.Rings = append(p.Rings, hole.Clone())
			}
			out := compliance.Validate(collection(feature(p, "Donut", 10)))
			assert.Equal(t, extra, countCode(out.Errors, domain.CodePolygonHasHoles))
			assert.Len(t, out.Errors, extra)
		})
	}
}

func TestValidate_MultiPolygonRings(t *testing.T) {
	open := domain.Polygon{Rings: []domain.Ring{{pt(0.000001, 0.000001), pt(1.000001, 0.000001), pt(1.000001, 1.000001), pt(0.000001, 1.000001)}}}
	mp := domain.MultiPolygon{Polygons: []domain.Polygon{validSquare, open}}
	out := compliance.Validate(collection(feature(mp, "Two parcels", 20)))
	assert.Equal(t, []domain.ErrorCode{domain.CodePolygonNotClosed}, codes(out.Errors))
	assert.Contains(t, out.Errors[0].Message, "polygon 1")
}

func TestValidate_LargePlotNeedsPolygon(t *testing.T) {
	p := domain.Point{Coord: pt(-60.123456, -10.654321)}

	out := compliance.Validate(collection(feature(p, "Big", 10)))
	assert.Equal(t, []domain.ErrorCode{domain.CodeLargePlotNeedsPolygon}, codes(out.Errors))

	out = compliance.Validate(collection(feature(p, "Small", 2)))
	assert.True(t, out.Valid)

	out = compliance.Validate(collection(feature(p, "Exactly four", 4)))
	assert.True(t, out.Valid)
}

func TestValidate_CollectsAcrossFeatures(t *testing.T) {
	out := compliance.Validate(collection(
		feature(nil, "A", 1),
		feature(domain.Point{Coord: pt(-200.123456, 0.123456)}, "B", 10),
		feature(validSquare, "C", 10),
	))
	assert.Equal(t, []domain.ErrorCode{
		domain.CodeInvalidGeometry,
		domain.CodeCoordinateOutOfBounds,
		domain.CodeLargePlotNeedsPolygon,
	}, codes(out.Errors))
	assert.Equal(t, []int{0, 1, 1}, []int{out.Errors[0].FeatureIndex, out.Errors[1].FeatureIndex, out.Errors[2].FeatureIndex})
}

func TestValidate_DoesNotMutateInput(t *testing.T) {
	p := validSquare.Clone()
	fc := collection(feature(p, "Same", 1))
	_ = compliance.Validate(fc)
	assert.Equal(t, validSquare, fc.Features[0].Geometry)
}

func TestValidate_ParallelMatchesSerial(t *testing.T) {
	var fs []domain.Feature
	for i := 0; i < 200; i++ {
		switch i % 4 {
		case 0:
			fs = append(fs, feature(validSquare, fmt.Sprintf("p%d", i), 10))
		case 1:
			fs = append(fs, feature(domain.Point{Coord: pt(-200.1, 91.2)}, fmt.Sprintf("p%d", i), 10))
		case 2:
			fs = append(fs, feature(nil, fmt.Sprintf("p%d", i), 1))
		default:
			fs = append(fs, feature(domain.Point{Coord: pt(1.5, 2.5)}, fmt.Sprintf("p%d", i), 1))
		}
	}
	fc := collection(fs...)

	serial := compliance.Validator{}.Validate(fc)
	parallel := compliance.Validator{ParallelThreshold: 10}.Validate(fc)
	assert.Equal(t, serial, parallel)
}
