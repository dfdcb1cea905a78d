package orders

import (
	"context"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	"github.com/potgreen/nursery-backend/internal/domains/orders/ports"
)

const (
	// DeliverStatusChangeActivityName hands a committed status change to the notification sink.
	DeliverStatusChangeActivityName = "orders.activities.DeliverStatusChange"
)

// Activities groups activities that operate on order notifications.
type Activities struct {
	sink ports.Notifier
}

// NewActivities wires the delivery sink (broker publisher or log) into the
// Temporal activities bundle.
func NewActivities(sink ports.Notifier) *Activities {
	return &Activities{sink: sink}
}

// DeliverStatusChange pushes the event to the sink. A completed delivery is
// recorded in the heartbeat so a retried attempt does not publish twice.
func (a *Activities) DeliverStatusChange(ctx context.Context, event ports.StatusChangedEvent) error {
	logger := activity.GetLogger(ctx)
	if a == nil || a.sink == nil {
		logger.Error("status notification activity not initialized", "orderId", event.OrderID)
		return temporal.NewNonRetryableApplicationError("status notification activity not initialized", "NotInitialized", nil)
	}

	var hb deliveryHeartbeat
	if activity.HasHeartbeatDetails(ctx) {
		_ = activity.GetHeartbeatDetails(ctx, &hb)
	}
	if hb.Delivered {
		logger.Info("DeliverStatusChange already completed in prior attempt; skipping", "orderId", event.OrderID)
		return nil
	}

	logger.Info("DeliverStatusChange activity started", "orderId", event.OrderID, "status", string(event.Status))
	if err := a.sink.NotifyStatusChanged(ctx, event); err != nil {
		logger.Error("DeliverStatusChange failed", "orderId", event.OrderID, "error", err)
		return err
	}
	activity.RecordHeartbeat(ctx, deliveryHeartbeat{Delivered: true})
	logger.Info("DeliverStatusChange activity completed", "orderId", event.OrderID)
	return nil
}

type deliveryHeartbeat struct {
	Delivered bool
}
