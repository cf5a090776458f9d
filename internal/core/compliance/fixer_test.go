package compliance_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/geoexport/internal/core/compliance"
	"github.com/samirrijal/geoexport/internal/core/domain"
)

func TestFix_ClosesOpenRing(t *testing.T) {
	open := domain.Polygon{Rings: []domain.Ring{{pt(0, 0), pt(1, 0), pt(1, 1), pt(0, 1)}}}

	fixed := compliance.Fix(collection(feature(open, "Open", 1)))
	p, ok := fixed.Features[0].Geometry.(domain.Polygon)
	require.True(t, ok)
	assert.Equal(t, domain.Ring{pt(0, 0), pt(1, 0), pt(1, 1), pt(0, 1), pt(0, 0)}, p.Rings[0])
}

func TestFix_RoundsToSixDecimals(t *testing.T) {
	ring := domain.Ring{pt(0.123456789, -10.9999999), pt(1, 0), pt(1, 1), pt(0.123456789, -10.9999999)}
	fixed := compliance.FixGeometry(domain.Polygon{Rings: []domain.Ring{ring}})

	p := fixed.(domain.Polygon)
	assert.Equal(t, 0.123457, p.Rings[0][0].Lng)
	assert.Equal(t, -11.0, p.Rings[0][0].Lat)
	assert.Len(t, p.Rings[0], 4, "ring was already closed")
}

func TestFix_RoundingCanCloseRing(t *testing.T) {
	ring := domain.Ring{pt(0.1234561, 0), pt(1, 0), pt(1, 1), pt(0.1234562, 0)}
	p := compliance.FixGeometry(domain.Polygon{Rings: []domain.Ring{ring}}).(domain.Polygon)
	assert.Len(t, p.Rings[0], 4)
	assert.True(t, p.Rings[0].Closed())
}

func TestFix_NeverRemovesVertices(t *testing.T) {
	ring := domain.Ring{pt(0, 0), pt(0, 0), pt(1, 0), pt(1, 1), pt(0, 1)}
	p := compliance.FixGeometry(domain.Polygon{Rings: []domain.Ring{ring}}).(domain.Polygon)
	assert.Len(t, p.Rings[0], 6)
	assert.Equal(t, ring[:5], p.Rings[0][:5])
}

func TestFix_MultiPolygonAndHoles(t *testing.T) {
	mp := domain.MultiPolygon{Polygons: []domain.Polygon{
		{Rings: []domain.Ring{
			{pt(0, 0), pt(4, 0), pt(4, 4), pt(0, 4)},
			{pt(1, 1), pt(2, 1), pt(2, 2)},
		}},
		{Rings: []domain.Ring{{pt(10, 10), pt(11, 10), pt(11, 11), pt(10, 10)}}},
	}}
	got := compliance.FixGeometry(mp).(domain.MultiPolygon)
	for _, p := range got.Polygons {
		for _, r := range p.Rings {
			assert.True(t, r.Closed())
		}
	}
	assert.Len(t, got.Polygons[0].Rings[1], 4)
	assert.Len(t, got.Polygons[1].Rings[0], 4)
}

func TestFix_OtherGeometriesPassThrough(t *testing.T) {
	raw := json.RawMessage(`{"type":"LineString","coordinates":[[0.1,0.2],[1,1]]}`)
	fc := collection(
		feature(domain.Point{Coord: pt(0.123456789, 1)}, "Point", 1),
		feature(domain.MultiPoint{Coords: []domain.Coordinate{pt(0.1, 0.2)}}, "Multi", 1),
		feature(domain.UnsupportedGeometry{Kind: "LineString", Raw: raw}, "Line", 1),
		feature(domain.MalformedGeometry{Kind: "Polygon", Reason: "bad"}, "Bad", 1),
		feature(nil, "None", 1),
	)
	fixed := compliance.Fix(fc)
	assert.Equal(t, fc, fixed)
}

func TestFix_Idempotent(t *testing.T) {
	fc := collection(
		feature(domain.Polygon{Rings: []domain.Ring{{pt(0.123456789, 0), pt(1.0000005, 0), pt(1, 1)}}}, "A", 1),
		feature(domain.Polygon{Rings: []domain.Ring{{}}}, "Empty ring", 1),
		feature(domain.MultiPolygon{Polygons: []domain.Polygon{{Rings: []domain.Ring{{pt(-60.55555555, -10.4444444), pt(-60, -10), pt(-61, -10)}}}}}, "B", 1),
	)
	once := compliance.Fix(fc)
	twice := compliance.Fix(once)
	assert.Equal(t, once, twice)
}

func TestFix_DoesNotMutateInput(t *testing.T) {
	ring := domain.Ring{pt(0.123456789, 0), pt(1, 0), pt(1, 1)}
	fc := collection(feature(domain.Polygon{Rings: []domain.Ring{ring}}, "A", 1))
	_ = compliance.Fix(fc)
	assert.Equal(t, 0.123456789, fc.Features[0].Geometry.(domain.Polygon).Rings[0][0].Lng)
	assert.Len(t, fc.Features[0].Geometry.(domain.Polygon).Rings[0], 3)
}

func TestFix_ThenValidateClearsRepairableErrors(t *testing.T) {
	open := domain.Polygon{Rings: []domain.Ring{{
		pt(-60.1234567, -10.1234567), pt(-60.2234567, -10.1234567),
		pt(-60.2234567, -10.2234567), pt(-60.1234567, -10.2234567),
	}}}
	fc := collection(feature(open, "Repairable", 10))

	before := compliance.Validate(fc)
	assert.Equal(t, 1, before.CountByCode()[domain.CodePolygonNotClosed])

	after := compliance.Validate(compliance.Fix(fc))
	assert.True(t, after.Valid)
	assert.Empty(t, after.Warnings)
}
