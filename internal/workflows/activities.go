package workflows

import (
	"context"
	"errors"
	"fmt"

	"go.temporal.io/sdk/temporal"

	"github.com/samirrijal/geoexport/internal/core/domain"
	"github.com/samirrijal/geoexport/internal/core/usecases"
	"github.com/samirrijal/geoexport/internal/pkg/metrics"
)

// ExportActivities holds the activity implementations for the export workflow.
type ExportActivities struct {
	Exports *usecases.ExportService
}

// ProduceExport assembles and uploads the archive. Invalid filters and
// pipeline failures are not retried.
func (a *ExportActivities) ProduceExport(ctx context.Context, req domain.ExportRequest) (*domain.StoredExport, error) {
	stored, _, err := a.Exports.Produce(ctx, req.ClientID, req.Options)
	switch {
	case errors.Is(err, domain.ErrInvalidFilter):
		return nil, temporal.NewNonRetryableApplicationError(err.Error(), "InvalidFilter", err)
	case errors.Is(err, domain.ErrPipelineFailure):
		return nil, temporal.NewNonRetryableApplicationError(err.Error(), "PipelineFailure", err)
	case err != nil:
		return nil, err
	}
	return stored, nil
}

// RecordExport persists the record for an uploaded archive.
func (a *ExportActivities) RecordExport(ctx context.Context, stored domain.StoredExport) (*domain.ExportRecord, error) {
	return a.Exports.Record(ctx, &stored)
}

// DiscardExport deletes an uploaded archive (saga compensation).
func (a *ExportActivities) DiscardExport(ctx context.Context, key string) error {
	if err := a.Exports.Discard(ctx, key); err != nil {
		return fmt.Errorf("discard export: %w", err)
	}
	return nil
}

// NotifyExportCompleted publishes the completion event.
func (a *ExportActivities) NotifyExportCompleted(ctx context.Context, requestID string, rec domain.ExportRecord) error {
	outcome := "valid"
	if !rec.ValidationSummary.Valid {
		outcome = "invalid"
	}
	metrics.ExportsTotal.WithLabelValues(outcome).Inc()
	a.Exports.NotifyCompleted(ctx, requestID, &rec)
	return nil
}

// NotifyExportFailed publishes the failure event.
func (a *ExportActivities) NotifyExportFailed(ctx context.Context, req domain.ExportRequest, reason string) error {
	a.Exports.NotifyFailed(ctx, &req, errors.New(reason))
	return nil
}
