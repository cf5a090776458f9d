package export

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/samirrijal/geoexport/internal/core/domain"
	"github.com/samirrijal/geoexport/internal/pkg/geospatial"
)

// AuditLog is the provenance record written as audit_log.json.
type AuditLog struct {
	GeneratedAt  time.Time            `json:"generated_at"`
	FeatureCount int                  `json:"feature_count"`
	Options      domain.ExportOptions `json:"options"`
	Changes      []string             `json:"changes"`
	Entries      []AuditEntry         `json:"entries"`
}

// AuditEntry describes one exported feature and where it came from.
type AuditEntry struct {
	Index              int            `json:"index"`
	PlaceID            string         `json:"place_id"`
	PlaceName          string         `json:"place_name"`
	SupplierID         string         `json:"supplier_id"`
	SupplierName       string         `json:"supplier_name"`
	Country            string         `json:"country"`
	AreaHectares       float64        `json:"area_hectares"`
	SourceGeometryType string         `json:"source_geometry_type"`
	GeometryType       string         `json:"geometry_type"`
	VertexCount        int            `json:"vertex_count"`
	PerimeterMeters    float64        `json:"perimeter_meters"`
	Bounds             *domain.Bounds `json:"bounds,omitempty"`
	CollectedAt        *time.Time     `json:"collected_at,omitempty"`
	ExportedAt         time.Time      `json:"exported_at"`
}

// RenderAuditLog writes the provenance log for places, index-aligned with
// the exported collection fc.
func RenderAuditLog(places []domain.SourcePlace, fc domain.FeatureCollection, changes []string, opts domain.ExportOptions, generatedAt time.Time) ([]byte, error) {
	if len(places) != fc.Len() {
		return nil, fmt.Errorf("audit log: %d places but %d features", len(places), fc.Len())
	}
	record := AuditLog{
		GeneratedAt:  generatedAt.UTC(),
		FeatureCount: fc.Len(),
		Options:      opts,
		Changes:      changes,
		Entries:      make([]AuditEntry, 0, len(places)),
	}
	if record.Changes == nil {
		record.Changes = []string{}
	}
	for i, p := range places {
		g := fc.Features[i].Geometry
		entry := AuditEntry{
			Index:              i,
			PlaceID:            p.ID,
			PlaceName:          p.PlaceName,
			SupplierID:         p.SupplierID,
			SupplierName:       p.SupplierName,
			Country:            p.Country,
			AreaHectares:       p.AreaHectares,
			SourceGeometryType: geometryLabel(p.Geometry),
			GeometryType:       geometryLabel(g),
			VertexCount:        len(domain.Coordinates(g)),
			PerimeterMeters:    math.Round(Perimeter(g)*100) / 100,
			ExportedAt:         generatedAt.UTC(),
		}
		if b, ok := domain.BoundsOf(g); ok {
			entry.Bounds = &b
		}
		if !p.CollectedAt.IsZero() {
			t := p.CollectedAt.UTC()
			entry.CollectedAt = &t
		}
		record.Entries = append(record.Entries, entry)
	}
	return json.MarshalIndent(record, "", "  ")
}

// Perimeter returns the outer boundary length of a polygonal geometry in
// meters, summed over the parts of a MultiPolygon. Other kinds have none.
func Perimeter(g domain.Geometry) float64 {
	switch v := g.(type) {
	case domain.Polygon:
		return geospatial.RingPerimeter(v.OuterRing())
	case domain.MultiPolygon:
		var total float64
		for _, p := range v.Polygons {
			total += geospatial.RingPerimeter(p.OuterRing())
		}
		return total
	case nil, domain.Point, domain.MultiPoint, domain.UnsupportedGeometry, domain.MalformedGeometry:
		return 0
	}
	return 0
}
