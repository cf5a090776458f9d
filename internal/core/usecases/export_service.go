package usecases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/samirrijal/geoexport/internal/core/domain"
	"github.com/samirrijal/geoexport/internal/core/export"
	"github.com/samirrijal/geoexport/internal/core/ports"
	"github.com/samirrijal/geoexport/internal/pkg/metrics"
	"github.com/samirrijal/geoexport/internal/pkg/telemetry"
)

// ErrAsyncUnavailable is returned by Request when no broker is configured.
var ErrAsyncUnavailable = errors.New("asynchronous exports are unavailable")

// ExportResult is returned by a synchronous export.
type ExportResult struct {
	Record     *domain.ExportRecord     `json:"export"`
	Validation domain.ValidationOutcome `json:"validation"`
	Changes    []string                 `json:"changes"`
}

// ExportService selects places, assembles the compliance archive, stores it
// and records it.
type ExportService struct {
	places    ports.PlaceRepository
	exports   ports.ExportRepository
	storage   ports.ObjectStorage
	publisher ports.EventPublisher
	assembler *export.Assembler
	now       func() time.Time
}

// NewExportService creates a new ExportService. publisher may be nil.
func NewExportService(
	places ports.PlaceRepository,
	exports ports.ExportRepository,
	storage ports.ObjectStorage,
	publisher ports.EventPublisher,
	assembler *export.Assembler,
) *ExportService {
	return &ExportService{
		places:    places,
		exports:   exports,
		storage:   storage,
		publisher: publisher,
		assembler: assembler,
		now:       time.Now,
	}
}

// ValidateOptions rejects malformed export parameters before any place is
// loaded.
func ValidateOptions(opts domain.ExportOptions) error {
	for _, id := range opts.SupplierIDs {
		if _, err := uuid.Parse(id); err != nil {
			return fmt.Errorf("%w: supplier id %q is not a UUID", domain.ErrInvalidFilter, id)
		}
	}
	if opts.Commodity != "" && !domain.IsCommodity(opts.Commodity) {
		return fmt.Errorf("%w: unknown commodity %q", domain.ErrInvalidFilter, opts.Commodity)
	}
	if opts.SimplifyTolerance != nil && *opts.SimplifyTolerance < 0 {
		return fmt.Errorf("%w: simplify_tolerance must not be negative", domain.ErrInvalidFilter)
	}
	if opts.SmallPlotThresholdHectares < 0 {
		return fmt.Errorf("%w: small_plot_threshold_hectares must not be negative", domain.ErrInvalidFilter)
	}
	return nil
}

// Produce assembles the archive for clientID and uploads it. Nothing is
// recorded; the caller decides whether to keep or discard the upload.
func (s *ExportService) Produce(ctx context.Context, clientID string, opts domain.ExportOptions) (*domain.StoredExport, *domain.ExportArtifact, error) {
	if clientID == "" {
		return nil, nil, fmt.Errorf("%w: client id is required", domain.ErrInvalidFilter)
	}
	if err := ValidateOptions(opts); err != nil {
		return nil, nil, err
	}

	ctx, span := telemetry.Tracer().Start(ctx, telemetry.SpanExportAssemble)
	defer span.End()
	span.SetAttributes(attribute.String(telemetry.AttrClientID, clientID))

	places, err := s.places.Query(ctx, clientID, opts.Filter())
	if err != nil {
		span.RecordError(err)
		return nil, nil, fmt.Errorf("query places: %w", err)
	}

	art, err := s.assembler.Assemble(ctx, places, opts)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "assemble failed")
		return nil, nil, err
	}
	span.SetAttributes(
		attribute.Int(telemetry.AttrFeatureCount, art.Metadata.FeatureCount),
		attribute.Int(telemetry.AttrErrorCount, art.Metadata.ErrorCount),
		attribute.Int64(telemetry.AttrArchiveBytes, art.Metadata.ByteSize),
	)

	exportID := uuid.NewString()
	key := StorageKey(clientID, exportID)
	uctx, uspan := telemetry.Tracer().Start(ctx, telemetry.SpanExportUpload)
	url, err := s.storage.Upload(uctx, key, art.Archive)
	uspan.End()
	if err != nil {
		span.RecordError(err)
		return nil, nil, fmt.Errorf("upload archive: %w", err)
	}

	return &domain.StoredExport{
		ExportID:      exportID,
		ClientID:      clientID,
		StorageKey:    key,
		FileURL:       url,
		FileSizeBytes: art.Metadata.ByteSize,
		Commodity:     opts.Commodity,
		SupplierIDs:   opts.SupplierIDs,
		Summary:       domain.SummaryFromMetadata(art.Metadata),
		Changes:       art.Changes,
	}, art, nil
}

// Record persists the export record for a stored archive.
func (s *ExportService) Record(ctx context.Context, stored *domain.StoredExport) (*domain.ExportRecord, error) {
	rec := stored.Record(s.now().UTC())
	if err := s.exports.Create(ctx, &rec); err != nil {
		return nil, fmt.Errorf("record export: %w", err)
	}
	return &rec, nil
}

// Discard removes an uploaded archive that will not be recorded.
func (s *ExportService) Discard(ctx context.Context, key string) error {
	if err := s.storage.Delete(ctx, key); err != nil {
		return fmt.Errorf("delete archive %s: %w", key, err)
	}
	return nil
}

// NotifyCompleted publishes the completion event (best-effort).
func (s *ExportService) NotifyCompleted(ctx context.Context, requestID string, rec *domain.ExportRecord) {
	if s.publisher == nil {
		return
	}
	event := &domain.ExportCompleted{
		RequestID:   requestID,
		ExportID:    rec.ID,
		ClientID:    rec.ClientID,
		FileURL:     rec.FileURL,
		Summary:     rec.ValidationSummary,
		CompletedAt: s.now().UTC(),
	}
	if err := s.publisher.PublishExportCompleted(ctx, event); err != nil {
		slog.WarnContext(ctx, "publish export completed failed", "export_id", rec.ID, "error", err)
	}
}

// NotifyFailed publishes the failure of an asynchronous export (best-effort).
func (s *ExportService) NotifyFailed(ctx context.Context, req *domain.ExportRequest, reason error) {
	metrics.ExportsTotal.WithLabelValues("failed").Inc()
	if s.publisher == nil {
		return
	}
	event := &domain.ExportFailed{
		RequestID: req.RequestID,
		ClientID:  req.ClientID,
		Reason:    reason.Error(),
		FailedAt:  s.now().UTC(),
	}
	if err := s.publisher.PublishExportFailed(ctx, event); err != nil {
		slog.WarnContext(ctx, "publish export failed event failed", "request_id", req.RequestID, "error", err)
	}
}

// Run produces, records and announces an export in one call. If recording
// fails the uploaded archive is deleted again.
func (s *ExportService) Run(ctx context.Context, clientID string, opts domain.ExportOptions) (*ExportResult, error) {
	start := time.Now()
	ctx, span := telemetry.Tracer().Start(ctx, telemetry.SpanExportRun)
	defer span.End()

	stored, art, err := s.Produce(ctx, clientID, opts)
	if err != nil {
		if !errors.Is(err, domain.ErrInvalidFilter) {
			metrics.ExportsTotal.WithLabelValues("failed").Inc()
		}
		return nil, err
	}

	rec, err := s.Record(ctx, stored)
	if err != nil {
		metrics.ExportsTotal.WithLabelValues("failed").Inc()
		if derr := s.Discard(ctx, stored.StorageKey); derr != nil {
			slog.ErrorContext(ctx, "compensation failed", "key", stored.StorageKey, "error", derr)
		}
		return nil, err
	}
	span.SetAttributes(attribute.String(telemetry.AttrExportID, rec.ID))

	outcome := "valid"
	if !art.Validation.Valid {
		outcome = "invalid"
	}
	metrics.ExportsTotal.WithLabelValues(outcome).Inc()
	metrics.ExportDuration.Observe(time.Since(start).Seconds())
	metrics.ExportArchiveBytes.Observe(float64(rec.FileSizeBytes))
	metrics.ExportFeatures.Observe(float64(art.Metadata.FeatureCount))

	s.NotifyCompleted(ctx, "", rec)

	slog.InfoContext(ctx, "export completed",
		"export_id", rec.ID,
		"client_id", clientID,
		"features", art.Metadata.FeatureCount,
		"valid", art.Validation.Valid,
		"bytes", rec.FileSizeBytes,
	)

	return &ExportResult{Record: rec, Validation: art.Validation, Changes: art.Changes}, nil
}

// Request validates an asynchronous export request and hands it to the
// broker. It returns the request id the completion event will carry.
func (s *ExportService) Request(ctx context.Context, clientID string, opts domain.ExportOptions) (string, error) {
	if clientID == "" {
		return "", fmt.Errorf("%w: client id is required", domain.ErrInvalidFilter)
	}
	if err := ValidateOptions(opts); err != nil {
		return "", err
	}
	if s.publisher == nil {
		return "", ErrAsyncUnavailable
	}
	req := &domain.ExportRequest{RequestID: uuid.NewString(), ClientID: clientID, Options: opts}
	if err := s.publisher.PublishExportRequested(ctx, req); err != nil {
		return "", fmt.Errorf("publish export request: %w", err)
	}
	return req.RequestID, nil
}

// Get returns one of the client's exports.
func (s *ExportService) Get(ctx context.Context, clientID, id string) (*domain.ExportRecord, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	rec, err := s.exports.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.ClientID != clientID {
		return nil, domain.ErrNotFound
	}
	return rec, nil
}

// ExportPage is one page of a client's export history.
type ExportPage struct {
	Records []domain.ExportRecord
	Total   int
	Limit   int
	Offset  int
}

// List returns a page of the client's exports, newest first.
func (s *ExportService) List(ctx context.Context, clientID string, limit, offset int) (*ExportPage, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	records, err := s.exports.ListByClient(ctx, clientID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list exports: %w", err)
	}
	total, err := s.exports.CountByClient(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("count exports: %w", err)
	}
	if records == nil {
		records = []domain.ExportRecord{}
	}
	return &ExportPage{Records: records, Total: total, Limit: limit, Offset: offset}, nil
}

// StorageKey is the object key of an export archive.
func StorageKey(clientID, exportID string) string {
	return fmt.Sprintf("%s/%s.zip", clientID, exportID)
}
