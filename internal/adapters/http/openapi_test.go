package http_test

import (
	"context"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/samirrijal/geoexport/api"
)

func loadDocument(t *testing.T) *openapi3.T {
	t.Helper()
	loader := &openapi3.Loader{IsExternalRefsAllowed: false}
	doc, err := loader.LoadFromData(api.OpenAPI)
	if err != nil {
		t.Fatalf("failed to parse OpenAPI document: %v", err)
	}
	return doc
}

// TestOpenAPIDocument validates the OpenAPI document and checks it covers the
// registered routes.
func TestOpenAPIDocument(t *testing.T) {
	doc := loadDocument(t)

	if err := doc.Validate(context.Background()); err != nil {
		t.Fatalf("OpenAPI document validation failed: %v", err)
	}

	expectedPaths := []string{
		"/v1/health",
		"/v1/ready",
		"/v1/geometry/validate",
		"/v1/geometry/fix",
		"/v1/geometry/optimize",
		"/v1/validate",
		"/v1/exports",
		"/v1/exports/async",
		"/v1/exports/{id}",
		"/v1/suppliers",
		"/v1/suppliers/{id}",
		"/graphql",
	}
	for _, path := range expectedPaths {
		if item := doc.Paths.Find(path); item == nil {
			t.Errorf("expected path %s not found in doc", path)
		}
	}

	expectedSchemas := []string{
		"APIError",
		"Pagination",
		"FeatureCollection",
		"ValidationIssue",
		"ValidationReport",
		"FixResult",
		"OptimizeResult",
		"ExportOptions",
		"ExportRecord",
		"ExportResult",
		"Supplier",
		"ImportSummary",
	}
	for _, schema := range expectedSchemas {
		if doc.Components.Schemas[schema] == nil {
			t.Errorf("expected schema %s not found", schema)
		}
	}

	if op := doc.Paths.Find("/v1/validate").Post; op == nil || !op.Deprecated {
		t.Error("expected POST /v1/validate to be marked deprecated")
	}
}

// TestOpenAPIInfo verifies doc metadata.
func TestOpenAPIInfo(t *testing.T) {
	doc := loadDocument(t)

	if doc.Info.Title != "Geoexport Compliance API" {
		t.Errorf("unexpected title %q", doc.Info.Title)
	}
	if doc.Info.Version != "1.0.0" {
		t.Errorf("expected version 1.0.0, got %q", doc.Info.Version)
	}
	if len(doc.Servers) == 0 {
		t.Error("expected at least one server")
	}
}
