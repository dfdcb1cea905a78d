// Package temporal hands status change notifications to a Temporal workflow
// so delivery is retried durably outside the request path.
package temporal

import (
	"context"
	"errors"
	"fmt"

	oteltrace "go.opentelemetry.io/otel/trace"
	enumspb "go.temporal.io/api/enums/v1"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"

	"github.com/potgreen/nursery-backend/internal/domains/orders/ports"
	orderworkflows "github.com/potgreen/nursery-backend/internal/platform/temporal/workflows/orders"
)

var _ ports.Notifier = (*Notifier)(nil)

// WorkflowStarter is the part of client.Client the notifier uses.
type WorkflowStarter interface {
	ExecuteWorkflow(ctx context.Context, options client.StartWorkflowOptions, workflow interface{}, args ...interface{}) (client.WorkflowRun, error)
}

// Notifier starts one notification workflow per committed change and does
// not wait for it to finish.
type Notifier struct {
	client    WorkflowStarter
	taskQueue string
}

// NewNotifier wires a Temporal client into the notifier.
func NewNotifier(c WorkflowStarter) *Notifier {
	return &Notifier{client: c, taskQueue: orderworkflows.StatusNotificationTaskQueue}
}

// NotifyStatusChanged starts the workflow. A duplicate start for the same
// change is treated as success.
func (n *Notifier) NotifyStatusChanged(ctx context.Context, event ports.StatusChangedEvent) error {
	if n == nil || n.client == nil {
		return errors.New("temporal notifier not configured")
	}
	options := client.StartWorkflowOptions{
		ID:                    workflowID(event),
		TaskQueue:             n.taskQueue,
		WorkflowIDReusePolicy: enumspb.WORKFLOW_ID_REUSE_POLICY_REJECT_DUPLICATE,
	}
	_, err := n.client.ExecuteWorkflow(ctx, options, orderworkflows.StatusNotificationWorkflow, orderworkflows.StatusNotificationWorkflowInput{
		Event:   event,
		TraceID: traceID(ctx),
	})
	if err != nil {
		var alreadyStarted *serviceerror.WorkflowExecutionAlreadyStarted
		if errors.As(err, &alreadyStarted) {
			return nil
		}
		return fmt.Errorf("start status notification workflow: %w", err)
	}
	return nil
}

func workflowID(event ports.StatusChangedEvent) string {
	return fmt.Sprintf("order-status-%s-%s-%d", event.OrderID, event.Status, event.ChangedAt.UnixMicro())
}

func traceID(ctx context.Context) string {
	spanCtx := oteltrace.SpanContextFromContext(ctx)
	if !spanCtx.IsValid() {
		return ""
	}
	return spanCtx.TraceID().String()
}
