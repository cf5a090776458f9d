package usecases

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/samirrijal/geoexport/internal/core/compliance"
	"github.com/samirrijal/geoexport/internal/core/domain"
	"github.com/samirrijal/geoexport/internal/core/ports"
	"github.com/samirrijal/geoexport/internal/pkg/geojson"
	"github.com/samirrijal/geoexport/internal/pkg/metrics"
	"github.com/samirrijal/geoexport/internal/pkg/telemetry"
)

// ValidationReport is the outcome of validating one document.
type ValidationReport struct {
	domain.ValidationOutcome
	FeatureCount int `json:"feature_count"`
}

// FixResult carries the repaired document and its validation before and
// after repair.
type FixResult struct {
	Document json.RawMessage          `json:"document"`
	Before   domain.ValidationOutcome `json:"before"`
	After    domain.ValidationOutcome `json:"after"`
}

// OptimizeResult carries the optimized document and the change notes.
type OptimizeResult struct {
	Document   json.RawMessage          `json:"document"`
	Changes    []string                 `json:"changes"`
	Validation domain.ValidationOutcome `json:"validation"`
}

// ValidationService runs the compliance rules over uploaded documents.
type ValidationService struct {
	cache     ports.CacheService
	ttl       int
	validator compliance.Validator
	optimizer compliance.Optimizer
}

// NewValidationService creates a new ValidationService. cache may be nil.
func NewValidationService(cache ports.CacheService, ttlSeconds, parallelThreshold int) *ValidationService {
	return &ValidationService{
		cache:     cache,
		ttl:       ttlSeconds,
		validator: compliance.Validator{ParallelThreshold: parallelThreshold},
		optimizer: compliance.Optimizer{ParallelThreshold: parallelThreshold},
	}
}

// Validate checks a feature-collection document. Outcomes are cached by
// the document's SHA-256, so resubmitting the same bytes is cheap.
func (s *ValidationService) Validate(ctx context.Context, document []byte) (*ValidationReport, error) {
	ctx, span := telemetry.Tracer().Start(ctx, telemetry.SpanValidate)
	defer span.End()

	cacheKey := "validate:" + DocumentHash(document)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var report ValidationReport
			if err := json.Unmarshal(data, &report); err == nil {
				metrics.CacheHits.WithLabelValues("validate").Inc()
				span.SetAttributes(attribute.Bool(telemetry.AttrCacheHit, true))
				return &report, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("validate").Inc()
	}

	fc, err := geojson.Decode(document)
	if err != nil {
		return nil, err
	}
	report := &ValidationReport{ValidationOutcome: s.validator.Validate(fc), FeatureCount: fc.Len()}
	recordIssues(report.ValidationOutcome)
	metrics.DocumentsValidated.WithLabelValues("validate").Inc()
	span.SetAttributes(
		attribute.Int(telemetry.AttrFeatureCount, report.FeatureCount),
		attribute.Int(telemetry.AttrErrorCount, len(report.Errors)),
	)

	if s.cache != nil {
		if data, err := json.Marshal(report); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, s.ttl)
		}
	}
	return report, nil
}

// Fix repairs ring closure and coordinate precision.
func (s *ValidationService) Fix(ctx context.Context, document []byte) (*FixResult, error) {
	_, span := telemetry.Tracer().Start(ctx, telemetry.SpanFix)
	defer span.End()

	fc, err := geojson.Decode(document)
	if err != nil {
		return nil, err
	}
	fixed := compliance.Fix(fc)
	out, err := geojson.Encode(fixed)
	if err != nil {
		return nil, fmt.Errorf("encode fixed document: %w", err)
	}
	metrics.DocumentsValidated.WithLabelValues("fix").Inc()
	return &FixResult{
		Document: out,
		Before:   s.validator.Validate(fc),
		After:    s.validator.Validate(fixed),
	}, nil
}

// Optimize applies the export optimizations to a document.
func (s *ValidationService) Optimize(ctx context.Context, document []byte, opts compliance.OptimizeOptions) (*OptimizeResult, error) {
	_, span := telemetry.Tracer().Start(ctx, telemetry.SpanOptimize)
	defer span.End()

	if opts.SimplifyTolerance != nil && *opts.SimplifyTolerance < 0 {
		return nil, fmt.Errorf("%w: simplify_tolerance must not be negative", domain.ErrInvalidFilter)
	}
	fc, err := geojson.Decode(document)
	if err != nil {
		return nil, err
	}
	optimized, changes := s.optimizer.OptimizeForExport(fc, opts)
	out, err := geojson.Encode(optimized)
	if err != nil {
		return nil, fmt.Errorf("encode optimized document: %w", err)
	}
	metrics.DocumentsValidated.WithLabelValues("optimize").Inc()
	return &OptimizeResult{
		Document:   out,
		Changes:    changes,
		Validation: s.validator.Validate(optimized),
	}, nil
}

// DocumentHash returns the hex SHA-256 of a document.
func DocumentHash(document []byte) string {
	sum := sha256.Sum256(document)
	return hex.EncodeToString(sum[:])
}

func recordIssues(o domain.ValidationOutcome) {
	for _, e := range o.Errors {
		metrics.ValidationIssues.WithLabelValues(string(e.Code), "error").Inc()
	}
	for _, w := range o.Warnings {
		metrics.ValidationIssues.WithLabelValues(string(w.Code), "warning").Inc()
	}
}
