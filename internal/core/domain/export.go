package domain

import (
	"slices"
	"time"
)

// DefaultSmallPlotThresholdHectares is the area at or below which a polygon
// plot may be exported as a single point.
const DefaultSmallPlotThresholdHectares = 4.0

// LargePlotThresholdHectares is the area above which a plot must be
// described by a polygon.
const LargePlotThresholdHectares = 4.0

// SourcePlace is a production place as loaded by the place repository.
type SourcePlace struct {
	ID           string    `json:"id"`
	PlaceName    string    `json:"place_name"`
	AreaHectares float64   `json:"area_hectares"`
	Geometry     Geometry  `json:"-"`
	Country      string    `json:"country"`
	SupplierID   string    `json:"supplier_id"`
	SupplierName string    `json:"supplier_name"`
	Commodity    string    `json:"commodity,omitempty"`
	CollectedAt  time.Time `json:"collected_at"`
}

// PlaceFilter narrows the places loaded for an export.
type PlaceFilter struct {
	SupplierIDs []string
	Commodity   string
}

// ExportOptions controls optimization and packaging of an export.
type ExportOptions struct {
	SupplierIDs                []string `json:"supplier_ids,omitempty"`
	Commodity                  string   `json:"commodity,omitempty"`
	ConvertSmallToPoints       bool     `json:"convert_small_to_points"`
	SimplifyTolerance          *float64 `json:"simplify_tolerance,omitempty"`
	IncludeProvenanceLog       bool     `json:"include_provenance_log"`
	SmallPlotThresholdHectares float64  `json:"small_plot_threshold_hectares"`
}

// Threshold returns the small plot threshold, defaulting when unset.
func (o ExportOptions) Threshold() float64 {
	if o.SmallPlotThresholdHectares <= 0 {
		return DefaultSmallPlotThresholdHectares
	}
	return o.SmallPlotThresholdHectares
}

// Filter returns the place filter part of the options.
func (o ExportOptions) Filter() PlaceFilter {
	return PlaceFilter{SupplierIDs: o.SupplierIDs, Commodity: o.Commodity}
}

// ArtifactFile is one named payload inside an export archive.
type ArtifactFile struct {
	Name string
	Data []byte
}

// ArtifactMetadata summarizes an export. Area and country counts are taken
// from the source places, never from optimized geometry.
type ArtifactMetadata struct {
	TotalAreaHectares float64        `json:"total_area_hectares"`
	FeatureCount      int            `json:"feature_count"`
	CountryCounts     map[string]int `json:"country_counts"`
	ByteSize          int64          `json:"byte_size"`
	Valid             bool           `json:"valid"`
	ErrorCount        int            `json:"error_count"`
	WarningCount      int            `json:"warning_count"`
}

// ExportArtifact is everything produced by one export invocation.
type ExportArtifact struct {
	Files      []ArtifactFile
	Archive    []byte
	Metadata   ArtifactMetadata
	Validation ValidationOutcome
	Changes    []string
}

// File returns the named payload, if present.
func (a *ExportArtifact) File(name string) ([]byte, bool) {
	for _, f := range a.Files {
		if f.Name == name {
			return f.Data, true
		}
	}
	return nil, false
}

// ValidationSummary is the compact validation record persisted per export.
type ValidationSummary struct {
	Valid             bool           `json:"valid"`
	ErrorCount        int            `json:"error_count"`
	WarningCount      int            `json:"warning_count"`
	FeatureCount      int            `json:"feature_count"`
	TotalAreaHectares float64        `json:"total_area_hectares"`
	CountryCounts     map[string]int `json:"country_counts"`
}

// SummaryFromMetadata builds the persisted summary for an artifact.
func SummaryFromMetadata(m ArtifactMetadata) ValidationSummary {
	return ValidationSummary{
		Valid:             m.Valid,
		ErrorCount:        m.ErrorCount,
		WarningCount:      m.WarningCount,
		FeatureCount:      m.FeatureCount,
		TotalAreaHectares: m.TotalAreaHectares,
		CountryCounts:     m.CountryCounts,
	}
}

// ExportRecord is a historical export kept by the persistence layer.
type ExportRecord struct {
	ID                string            `json:"id"`
	ClientID          string            `json:"client_id"`
	FileURL           string            `json:"file_url"`
	FileSizeBytes     int64             `json:"file_size_bytes"`
	Commodity         string            `json:"commodity,omitempty"`
	SupplierIDs       []string          `json:"supplier_ids"`
	ValidationSummary ValidationSummary `json:"validation_summary"`
	CreatedAt         time.Time         `json:"created_at"`
}

// ExportRequest asks for an export to be produced for a client.
type ExportRequest struct {
	RequestID string        `json:"request_id"`
	ClientID  string        `json:"client_id"`
	Options   ExportOptions `json:"options"`
}

// StoredExport describes an archive that has been uploaded but not
// necessarily recorded yet.
type StoredExport struct {
	ExportID      string            `json:"export_id"`
	ClientID      string            `json:"client_id"`
	StorageKey    string            `json:"storage_key"`
	FileURL       string            `json:"file_url"`
	FileSizeBytes int64             `json:"file_size_bytes"`
	Commodity     string            `json:"commodity,omitempty"`
	SupplierIDs   []string          `json:"supplier_ids"`
	Summary       ValidationSummary `json:"validation_summary"`
	Changes       []string          `json:"changes"`
}

// Record converts a stored export into its persisted record.
func (s StoredExport) Record(createdAt time.Time) ExportRecord {
	ids := s.SupplierIDs
	if ids == nil {
		ids = []string{}
	}
	return ExportRecord{
		ID:                s.ExportID,
		ClientID:          s.ClientID,
		FileURL:           s.FileURL,
		FileSizeBytes:     s.FileSizeBytes,
		Commodity:         s.Commodity,
		SupplierIDs:       ids,
		ValidationSummary: s.Summary,
		CreatedAt:         createdAt,
	}
}

// Commodities lists the commodity names accepted by export filters.
var Commodities = []string{"cattle", "cocoa", "coffee", "oil_palm", "rubber", "soya", "wood"}

// IsCommodity reports whether name is a known commodity.
func IsCommodity(name string) bool {
	return slices.Contains(Commodities, name)
}
