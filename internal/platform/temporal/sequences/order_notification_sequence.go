package sequences

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/potgreen/nursery-backend/internal/domains/orders/ports"
	orderactivities "github.com/potgreen/nursery-backend/internal/platform/temporal/activities/orders"
)

// RunStatusNotificationSequence delivers a committed status change with a
// bounded retry policy.
func RunStatusNotificationSequence(ctx workflow.Context, event ports.StatusChangedEvent) error {
	logger := workflow.GetLogger(ctx)
	logger.Info("status notification sequence started", "orderId", event.OrderID, "status", string(event.Status))
	options := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    time.Minute,
			MaximumAttempts:    10,
		},
	}

	err := workflow.ExecuteActivity(workflow.WithActivityOptions(ctx, options), orderactivities.DeliverStatusChangeActivityName, event).Get(ctx, nil)
	if err != nil {
		logger.Error("status notification sequence failed", "orderId", event.OrderID, "error", err)
		return err
	}
	logger.Info("status notification sequence delivered", "orderId", event.OrderID)
	return nil
}
