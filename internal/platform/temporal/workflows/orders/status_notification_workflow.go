package orders

import (
	"go.temporal.io/sdk/workflow"

	"github.com/potgreen/nursery-backend/internal/domains/orders/ports"
	"github.com/potgreen/nursery-backend/internal/platform/temporal/sequences"
)

const (
	// StatusNotificationWorkflowName is the public identifier for registering the workflow.
	StatusNotificationWorkflowName = "orders.workflows.StatusNotification"
	// StatusNotificationTaskQueue is the queue consumed by the notification worker.
	StatusNotificationTaskQueue = "ORDER_STATUS_NOTIFICATIONS"
)

// StatusNotificationWorkflowInput carries the committed change.
type StatusNotificationWorkflowInput struct {
	Event   ports.StatusChangedEvent
	TraceID string
}

// StatusNotificationWorkflow delivers one status change notification.
func StatusNotificationWorkflow(ctx workflow.Context, input StatusNotificationWorkflowInput) error {
	logger := workflow.GetLogger(ctx)
	orderID := input.Event.OrderID
	logger.Info("StatusNotificationWorkflow started", withTraceID(input.TraceID, "orderId", orderID)...)
	if err := sequences.RunStatusNotificationSequence(ctx, input.Event); err != nil {
		logger.Error("StatusNotificationWorkflow failed", withTraceID(input.TraceID, "orderId", orderID, "error", err)...)
		return err
	}
	logger.Info("StatusNotificationWorkflow completed", withTraceID(input.TraceID, "orderId", orderID)...)
	return nil
}

func withTraceID(traceID string, keyvals ...interface{}) []interface{} {
	if traceID == "" {
		return keyvals
	}
	return append(keyvals, "traceId", traceID)
}
