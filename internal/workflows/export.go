// Package workflows runs asynchronous exports as Temporal workflows.
package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/samirrijal/geoexport/internal/core/domain"
)

// Activity names as registered by ExportActivities.
const (
	ActivityProduceExport         = "ProduceExport"
	ActivityRecordExport          = "RecordExport"
	ActivityDiscardExport         = "DiscardExport"
	ActivityNotifyExportCompleted = "NotifyExportCompleted"
	ActivityNotifyExportFailed    = "NotifyExportFailed"
)

// ExportWorkflow produces the archive for a queued request, records it and
// announces the result. When recording fails the uploaded archive is
// deleted again (saga compensation) and the failure is announced.
func ExportWorkflow(ctx workflow.Context, req domain.ExportRequest) (*domain.ExportRecord, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting export workflow", "requestID", req.RequestID, "clientID", req.ClientID)

	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 5 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval: 2 * time.Second,
			MaximumAttempts: 3,
		},
	})

	// Step 1: assemble and upload
	var stored domain.StoredExport
	if err := workflow.ExecuteActivity(ctx, ActivityProduceExport, req).Get(ctx, &stored); err != nil {
		notifyFailed(ctx, req, err)
		return nil, err
	}

	// Step 2: record
	var rec domain.ExportRecord
	if err := workflow.ExecuteActivity(ctx, ActivityRecordExport, stored).Get(ctx, &rec); err != nil {
		logger.Warn("recording export failed, compensating", "key", stored.StorageKey, "error", err)
		dctx, _ := workflow.NewDisconnectedContext(ctx)
		if derr := workflow.ExecuteActivity(dctx, ActivityDiscardExport, stored.StorageKey).Get(dctx, nil); derr != nil {
			logger.Error("compensation failed", "key", stored.StorageKey, "error", derr)
		}
		notifyFailed(ctx, req, err)
		return nil, err
	}

	// Step 3: announce
	if err := workflow.ExecuteActivity(ctx, ActivityNotifyExportCompleted, req.RequestID, rec).Get(ctx, nil); err != nil {
		logger.Warn("completion notice failed", "exportID", rec.ID, "error", err)
	}

	logger.Info("Export recorded", "exportID", rec.ID)
	return &rec, nil
}

func notifyFailed(ctx workflow.Context, req domain.ExportRequest, cause error) {
	dctx, _ := workflow.NewDisconnectedContext(ctx)
	if err := workflow.ExecuteActivity(dctx, ActivityNotifyExportFailed, req, cause.Error()).Get(dctx, nil); err != nil {
		workflow.GetLogger(ctx).Warn("failure notice failed", "requestID", req.RequestID, "error", err)
	}
}
