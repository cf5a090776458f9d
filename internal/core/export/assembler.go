// Package export turns source production places into the compliance
// artifact: a geometry document, a tabular summary, a validation report and
// an optional audit log, bundled into one zip archive.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/samirrijal/geoexport/internal/core/compliance"
	"github.com/samirrijal/geoexport/internal/core/domain"
	"github.com/samirrijal/geoexport/internal/pkg/geojson"
)

// Archive entry names.
const (
	FileGeometry = "geolocation.geojson"
	FileSummary  = "summary.csv"
	FileReport   = "validation_report.txt"
	FileAuditLog = "audit_log.json"
)

// Assembler runs the export pipeline. It holds no per-export state and is
// safe for concurrent use.
type Assembler struct {
	validator compliance.Validator
	optimizer compliance.Optimizer
	now       func() time.Time
	logger    *slog.Logger
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithClock replaces the wall clock used for report and audit timestamps.
func WithClock(now func() time.Time) Option {
	return func(a *Assembler) { a.now = now }
}

// WithParallelThreshold sets the feature count above which validation and
// optimization fan out.
func WithParallelThreshold(n int) Option {
	return func(a *Assembler) {
		a.validator.ParallelThreshold = n
		a.optimizer.ParallelThreshold = n
	}
}

// WithLogger sets the logger used for stage diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(a *Assembler) { a.logger = l }
}

// NewAssembler creates an Assembler.
func NewAssembler(opts ...Option) *Assembler {
	a := &Assembler{
		validator: compliance.Validator{ParallelThreshold: compliance.DefaultParallelThreshold},
		optimizer: compliance.Optimizer{ParallelThreshold: compliance.DefaultParallelThreshold},
		now:       time.Now,
		logger:    slog.Default(),
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Assemble produces the artifact for places, which the caller has already
// selected. An invalid collection still yields an artifact; only an
// internal failure returns an error, wrapped in domain.ErrPipelineFailure,
// and in that case no artifact at all.
func (a *Assembler) Assemble(ctx context.Context, places []domain.SourcePlace, opts domain.ExportOptions) (artifact *domain.ExportArtifact, err error) {
	defer func() {
		if r := recover(); r != nil {
			artifact = nil
			err = fmt.Errorf("%w: panic: %v", domain.ErrPipelineFailure, r)
		}
	}()

	generatedAt := a.now().UTC()

	fc, changes := MapPlaces(places, opts)

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrPipelineFailure, err)
	}
	optimized, notes := a.optimizer.OptimizeForExport(fc, compliance.OptimizeOptionsFrom(opts))
	changes = append(changes, notes...)

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrPipelineFailure, err)
	}
	outcome := a.validator.Validate(optimized)
	a.logger.DebugContext(ctx, "export validated",
		"features", optimized.Len(),
		"valid", outcome.Valid,
		"errors", len(outcome.Errors),
		"warnings", len(outcome.Warnings),
	)

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrPipelineFailure, err)
	}
	files, err := a.render(places, optimized, outcome, changes, opts, generatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrPipelineFailure, err)
	}

	archive, err := Pack(files, generatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrPipelineFailure, err)
	}

	meta := Metrics(places)
	meta.ByteSize = int64(len(archive))
	meta.Valid = outcome.Valid
	meta.ErrorCount = len(outcome.Errors)
	meta.WarningCount = len(outcome.Warnings)

	return &domain.ExportArtifact{
		Files:      files,
		Archive:    archive,
		Metadata:   meta,
		Validation: outcome,
		Changes:    changes,
	}, nil
}

func (a *Assembler) render(
	places []domain.SourcePlace,
	fc domain.FeatureCollection,
	outcome domain.ValidationOutcome,
	changes []string,
	opts domain.ExportOptions,
	generatedAt time.Time,
) ([]domain.ArtifactFile, error) {
	geo, err := geojson.Encode(OuterRingsOnly(fc))
	if err != nil {
		return nil, fmt.Errorf("render geometry: %w", err)
	}
	summary, err := RenderSummary(places, fc)
	if err != nil {
		return nil, fmt.Errorf("render summary: %w", err)
	}
	report := RenderReport(fc, outcome, changes, generatedAt)

	files := []domain.ArtifactFile{
		{Name: FileGeometry, Data: geo},
		{Name: FileSummary, Data: summary},
		{Name: FileReport, Data: report},
	}
	if opts.IncludeProvenanceLog {
		audit, err := RenderAuditLog(places, fc, changes, opts, generatedAt)
		if err != nil {
			return nil, fmt.Errorf("render audit log: %w", err)
		}
		files = append(files, domain.ArtifactFile{Name: FileAuditLog, Data: audit})
	}
	return files, nil
}

// OuterRingsOnly returns fc with every polygon reduced to its outer ring.
// The geometry document never carries holes; they are still reported by
// validation, which runs on the full geometry.
func OuterRingsOnly(fc domain.FeatureCollection) domain.FeatureCollection {
	out := domain.FeatureCollection{Features: make([]domain.Feature, len(fc.Features))}
	for i, f := range fc.Features {
		out.Features[i] = f
		switch g := f.Geometry.(type) {
		case domain.Polygon:
			out.Features[i].Geometry = outerRing(g)
		case domain.MultiPolygon:
			mp := domain.MultiPolygon{Polygons: make([]domain.Polygon, len(g.Polygons))}
			for j, p := range g.Polygons {
				mp.Polygons[j] = outerRing(p)
			}
			out.Features[i].Geometry = mp
		}
	}
	return out
}

func outerRing(p domain.Polygon) domain.Polygon {
	if len(p.Rings) <= 1 {
		return p
	}
	return domain.Polygon{Rings: []domain.Ring{p.Rings[0]}}
}

// MapPlaces builds the feature collection for places using the fixed
// property schema. When small plots are to be exported as points, polygon
// places at or below the threshold are replaced by their bounding-box
// midpoint here, before the optimizer runs.
func MapPlaces(places []domain.SourcePlace, opts domain.ExportOptions) (domain.FeatureCollection, []string) {
	threshold := opts.Threshold()
	fc := domain.FeatureCollection{Features: make([]domain.Feature, 0, len(places))}
	changes := make([]string, 0)

	for i, p := range places {
		geom := p.Geometry
		if poly, ok := geom.(domain.Polygon); ok && opts.ConvertSmallToPoints && p.AreaHectares <= threshold {
			if pt, ok := compliance.PolygonToPoint(poly, compliance.StrategyBoundingBox); ok {
				geom = pt
				changes = append(changes, fmt.Sprintf("Converted %s from polygon to point (%.2f ha <= %.2f ha, %s)",
					placeLabel(p, i), p.AreaHectares, threshold, compliance.StrategyBoundingBox))
			}
		}
		fc.Features = append(fc.Features, domain.Feature{
			Geometry: geom,
			Properties: domain.Properties{
				PlaceName:       p.PlaceName,
				AreaHectares:    p.AreaHectares,
				ProducerCountry: p.Country,
			},
		})
	}
	return fc, changes
}

// Metrics computes the declared totals of places. Geometry is not
// consulted, so the result is the same whichever optimization ran.
func Metrics(places []domain.SourcePlace) domain.ArtifactMetadata {
	m := domain.ArtifactMetadata{
		FeatureCount:  len(places),
		CountryCounts: make(map[string]int),
	}
	for _, p := range places {
		m.TotalAreaHectares += p.AreaHectares
		m.CountryCounts[p.Country]++
	}
	return m
}

func placeLabel(p domain.SourcePlace, index int) string {
	if p.PlaceName == "" {
		return fmt.Sprintf("feature %d", index)
	}
	return p.PlaceName
}
