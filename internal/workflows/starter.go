package workflows

import (
	"context"
	"errors"
	"fmt"

	enumspb "go.temporal.io/api/enums/v1"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"

	"github.com/samirrijal/geoexport/internal/core/domain"
)

// WorkflowID is the workflow id of an export request. Redelivered
// requests map to the same id and are not run twice.
func WorkflowID(requestID string) string {
	return "export-" + requestID
}

// Starter launches export workflows for queued requests.
type Starter struct {
	Client    client.Client
	TaskQueue string
}

// Start begins the export workflow for req without waiting for it. A
// request whose workflow already ran is acknowledged without a new run.
func (s *Starter) Start(ctx context.Context, req *domain.ExportRequest) error {
	opts := client.StartWorkflowOptions{
		ID:                    WorkflowID(req.RequestID),
		TaskQueue:             s.TaskQueue,
		WorkflowIDReusePolicy: enumspb.WORKFLOW_ID_REUSE_POLICY_REJECT_DUPLICATE,
	}
	_, err := s.Client.ExecuteWorkflow(ctx, opts, ExportWorkflow, *req)
	var started *serviceerror.WorkflowExecutionAlreadyStarted
	if errors.As(err, &started) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("start export workflow %s: %w", opts.ID, err)
	}
	return nil
}
