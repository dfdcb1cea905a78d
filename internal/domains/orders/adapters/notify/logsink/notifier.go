// Package logsink records status changes in the structured log. It is the
// default channel when no broker is configured.
package logsink

import (
	"context"
	"log/slog"

	"github.com/potgreen/nursery-backend/internal/domains/orders/ports"
)

var _ ports.Notifier = (*Notifier)(nil)

type Notifier struct {
	logger *slog.Logger
}

func New(logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{logger: logger}
}

func (n *Notifier) NotifyStatusChanged(ctx context.Context, event ports.StatusChangedEvent) error {
	n.logger.LogAttrs(ctx, slog.LevelInfo, "order status changed",
		slog.String("order_id", event.OrderID),
		slog.String("previous_status", event.PreviousStatus.String()),
		slog.String("status", event.Status.String()),
		slog.String("changed_by", event.ChangedBy),
		slog.Time("changed_at", event.ChangedAt),
	)
	return nil
}
