package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/samirrijal/geoexport/internal/core/domain"
)

// StatusValidated is written to the ValidationStatus column of every row.
const StatusValidated = "Validated"

const maxPreviewCoordinates = 3

var summaryHeader = []string{
	"ProductionPlace",
	"Supplier",
	"Country",
	"Area(ha)",
	"GeometryType",
	"Coordinates",
	"DateCollected",
	"ValidationStatus",
}

// RenderSummary writes one CSV row per feature. places and fc must be
// index-aligned; the geometry column describes the exported geometry.
func RenderSummary(places []domain.SourcePlace, fc domain.FeatureCollection) ([]byte, error) {
	if len(places) != fc.Len() {
		return nil, fmt.Errorf("summary: %d places but %d features", len(places), fc.Len())
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(summaryHeader); err != nil {
		return nil, err
	}
	for i, p := range places {
		g := fc.Features[i].Geometry
		row := []string{
			p.PlaceName,
			p.SupplierName,
			p.Country,
			strconv.FormatFloat(p.AreaHectares, 'f', 2, 64),
			geometryLabel(g),
			CoordinatePreview(g),
			collectedDate(p),
			StatusValidated,
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// CoordinatePreview formats up to three positions of g as "lat,lng" pairs
// joined by "; ", appending "..." when more positions exist.
func CoordinatePreview(g domain.Geometry) string {
	coords := domain.Coordinates(g)
	n := min(len(coords), maxPreviewCoordinates)
	pairs := make([]string, 0, n)
	for _, c := range coords[:n] {
		pairs = append(pairs, fmt.Sprintf("%.6f,%.6f", c.Lat, c.Lng))
	}
	out := strings.Join(pairs, "; ")
	if len(coords) > maxPreviewCoordinates {
		out += "..."
	}
	return out
}

func geometryLabel(g domain.Geometry) string {
	if g == nil {
		return "None"
	}
	return g.Type()
}

func collectedDate(p domain.SourcePlace) string {
	if p.CollectedAt.IsZero() {
		return ""
	}
	return p.CollectedAt.UTC().Format("2006-01-02")
}
