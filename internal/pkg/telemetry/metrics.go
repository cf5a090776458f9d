package telemetry

// Span and attribute names used for instrumentation.
const (
	// Spans
	SpanExportRun      = "export.run"
	SpanExportAssemble = "export.assemble"
	SpanExportUpload   = "export.upload"
	SpanValidate       = "geometry.validate"
	SpanFix            = "geometry.fix"
	SpanOptimize       = "geometry.optimize"
	SpanIngestSupplier = "ingest.supplier"

	// Attributes
	AttrClientID     = "geoexport.client_id"
	AttrExportID     = "geoexport.export_id"
	AttrFeatureCount = "geoexport.feature_count"
	AttrErrorCount   = "geoexport.error_count"
	AttrArchiveBytes = "geoexport.archive_bytes"
	AttrCacheHit     = "geoexport.cache_hit"
)
