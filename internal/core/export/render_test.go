package export_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/geoexport/internal/core/domain"
	"github.com/samirrijal/geoexport/internal/core/export"
)

func TestCoordinatePreview(t *testing.T) {
	tests := []struct {
		name string
		geom domain.Geometry
		want string
	}{
		{"nil", nil, ""},
		{"point", domain.Point{Coord: c(-60.1, -10.25)}, "-10.250000,-60.100000"},
		{"three points", domain.MultiPoint{Coords: []domain.Coordinate{c(1, 2), c(3, 4), c(5, 6)}},
			"2.000000,1.000000; 4.000000,3.000000; 6.000000,5.000000"},
		{"truncated polygon", lShape,
			"-10.000000,-60.000000; -10.000000,-58.000000; -9.000000,-58.000000..."},
		{"unsupported", domain.UnsupportedGeometry{Kind: "LineString"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, export.CoordinatePreview(tt.geom))
		})
	}
}

func TestRenderSummary(t *testing.T) {
	ps := places()
	fc, _ := export.MapPlaces(ps, domain.ExportOptions{})

	data, err := export.RenderSummary(ps, fc)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "ProductionPlace,Supplier,Country,Area(ha),GeometryType,Coordinates,DateCollected,ValidationStatus", lines[0])
	assert.Equal(t, `Small plot,Cooperativa Verde,BR,2.00,Polygon,"-10.000000,-60.000000; -10.000000,-58.000000; -9.000000,-58.000000...",2025-11-02,Validated`, lines[1])
	assert.Equal(t, `Farm gate,Abidjan Cocoa,CI,1.25,Point,"6.654321,-5.123456",,Validated`, lines[3])
}

func TestRenderSummary_MisalignedInput(t *testing.T) {
	_, err := export.RenderSummary(places(), domain.FeatureCollection{})
	assert.Error(t, err)
}

func TestRenderReport_Valid(t *testing.T) {
	fc, _ := export.MapPlaces(places(), domain.ExportOptions{})
	outcome := domain.ValidationOutcome{Valid: true}

	report := string(export.RenderReport(fc, outcome, nil, fixedNow))
	assert.True(t, strings.HasPrefix(report, "Geolocation Compliance Validation Report\n====="))
	assert.Contains(t, report, "Generated: 2026-03-14T09:30:00Z\n")
	assert.Contains(t, report, "Features: 3\n")
	assert.Contains(t, report, "Status: VALID\n")
	assert.NotContains(t, report, "Errors:")
	assert.NotContains(t, report, "Optimizations:")
	assert.Contains(t, report, "Compliance checklist:\n[x] Coordinates use WGS 84 (EPSG:4326)\n")
	assert.Contains(t, report, "[x] Polygons have no self-intersections\n")
}

func TestRenderReport_ErrorsWarningsAndChanges(t *testing.T) {
	outcome := domain.ValidationOutcome{
		Valid: false,
		Errors: []domain.ValidationIssue{
			{Code: domain.CodePolygonHasHoles, Message: "Polygon has a hole (ring 1), holes are not allowed", FeatureIndex: 0, FeatureName: "Donut"},
			{Code: domain.CodeInvalidGeometry, Message: "Feature has no geometry", FeatureIndex: 4},
		},
		Warnings: []domain.ValidationIssue{
			{Code: domain.CodePrecisionTooLow, Message: "Coordinate [1, 2] has fewer than 6 decimal places", FeatureIndex: 1, FeatureName: "Coarse"},
		},
	}
	report := string(export.RenderReport(domain.FeatureCollection{}, outcome, []string{"Converted A from polygon to point"}, time.Unix(0, 0)))

	assert.Contains(t, report, "Status: INVALID (2 errors)\n")
	assert.Contains(t, report, "Errors:\n- Donut: Polygon has a hole (ring 1), holes are not allowed\n- feature 4: Feature has no geometry\n")
	assert.Contains(t, report, "Warnings:\n- Coarse: Coordinate [1, 2] has fewer than 6 decimal places\n")
	assert.Contains(t, report, "Optimizations:\n- Converted A from polygon to point\n")
	assert.Less(t, strings.Index(report, "Errors:"), strings.Index(report, "Compliance checklist:"))
}

func TestPack_RoundTrip(t *testing.T) {
	files := []domain.ArtifactFile{
		{Name: export.FileGeometry, Data: []byte(strings.Repeat(`{"type":"Point"}`, 200))},
		{Name: export.FileSummary, Data: []byte("a,b\n")},
	}
	archive, err := export.Pack(files, fixedNow)
	require.NoError(t, err)
	assert.Less(t, len(archive), len(files[0].Data))

	got, err := export.Unpack(archive)
	require.NoError(t, err)
	assert.Equal(t, files, got)
}

func TestPerimeter(t *testing.T) {
	assert.Zero(t, export.Perimeter(nil))
	assert.Zero(t, export.Perimeter(domain.Point{Coord: c(0, 0)}))

	unit := domain.Polygon{Rings: []domain.Ring{{c(0, 0), c(1, 0), c(1, 1), c(0, 1), c(0, 0)}}}
	single := export.Perimeter(unit)
	assert.InDelta(t, 4*111195.0, single, 200)
	assert.InDelta(t, 2*single, export.Perimeter(domain.MultiPolygon{Polygons: []domain.Polygon{unit, unit}}), 1e-6)
}
