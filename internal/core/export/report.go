package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/samirrijal/geoexport/internal/core/domain"
)

const reportTitle = "Geolocation Compliance Validation Report"

// checklist is printed in every report. It restates the rule set and is
// not a per-rule result.
var checklist = []string{
	"Coordinates use WGS 84 (EPSG:4326)",
	"Latitude within [-90, 90] and longitude within [-180, 180]",
	"Coordinates carry at least 6 decimal places",
	"Polygon rings are closed",
	"Polygon rings have at least 4 vertices",
	"Polygons have no holes",
	"Polygons have no self-intersections",
	"Only Point, MultiPoint, Polygon and MultiPolygon geometries",
	"Plots larger than 4 ha are described by polygons",
}

const reportClosing = "This report was generated automatically from the exported geolocation data. " +
	"Features listed under Errors must be corrected before submission."

// RenderReport writes the plain-text validation report.
func RenderReport(fc domain.FeatureCollection, outcome domain.ValidationOutcome, changes []string, generatedAt time.Time) []byte {
	var b bytes.Buffer

	fmt.Fprintln(&b, reportTitle)
	fmt.Fprintln(&b, underline(reportTitle))
	fmt.Fprintf(&b, "Generated: %s\n", generatedAt.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "Features: %d\n", fc.Len())
	fmt.Fprintln(&b)

	if outcome.Valid {
		fmt.Fprintln(&b, "Status: VALID")
	} else {
		fmt.Fprintf(&b, "Status: INVALID (%d errors)\n", len(outcome.Errors))
	}

	if len(outcome.Errors) > 0 {
		fmt.Fprintln(&b)
		fmt.Fprintln(&b, "Errors:")
		for _, e := range outcome.Errors {
			fmt.Fprintf(&b, "- %s: %s\n", issueLabel(e), e.Message)
		}
	}
	if len(outcome.Warnings) > 0 {
		fmt.Fprintln(&b)
		fmt.Fprintln(&b, "Warnings:")
		for _, w := range outcome.Warnings {
			fmt.Fprintf(&b, "- %s: %s\n", issueLabel(w), w.Message)
		}
	}
	if len(changes) > 0 {
		fmt.Fprintln(&b)
		fmt.Fprintln(&b, "Optimizations:")
		for _, c := range changes {
			fmt.Fprintf(&b, "- %s\n", c)
		}
	}

	fmt.Fprintln(&b)
	fmt.Fprintln(&b, "Compliance checklist:")
	for _, item := range checklist {
		fmt.Fprintf(&b, "[x] %s\n", item)
	}

	fmt.Fprintln(&b)
	fmt.Fprintln(&b, reportClosing)
	return b.Bytes()
}

func issueLabel(i domain.ValidationIssue) string {
	if i.FeatureName == "" {
		return fmt.Sprintf("feature %d", i.FeatureIndex)
	}
	return i.FeatureName
}

func underline(s string) string {
	return string(bytes.Repeat([]byte("="), len(s)))
}
