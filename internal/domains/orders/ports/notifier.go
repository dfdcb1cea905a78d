package ports

import (
	"context"
	"time"

	"github.com/potgreen/nursery-backend/internal/domains/orders/domain"
)

// StatusChangedEvent is emitted after a transition commits.
type StatusChangedEvent struct {
	OrderID        string        `json:"orderId"`
	PreviousStatus domain.Status `json:"previousStatus"`
	Status         domain.Status `json:"status"`
	CustomerEmail  string        `json:"customerEmail"`
	ChangedBy      string        `json:"changedBy"`
	ChangedAt      time.Time     `json:"changedAt"`
}

// Notifier informs the notification subsystem about status changes. Callers
// treat failures as non-fatal.
type Notifier interface {
	NotifyStatusChanged(ctx context.Context, event StatusChangedEvent) error
}

// NoopNotifier is the default when no notification channel is configured.
var NoopNotifier Notifier = noopNotifier{}

type noopNotifier struct{}

func (noopNotifier) NotifyStatusChanged(context.Context, StatusChangedEvent) error { return nil }
