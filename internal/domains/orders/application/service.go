package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/potgreen/nursery-backend/internal/domains/access"
	"github.com/potgreen/nursery-backend/internal/domains/orders/domain"
	"github.com/potgreen/nursery-backend/internal/domains/orders/ports"
)

const (
	DefaultStoreTimeout  = 5 * time.Second
	DefaultNotifyTimeout = 3 * time.Second
)

// Authorizer resolves a caller credential to an administrator identity.
type Authorizer interface {
	Authorize(ctx context.Context, credential string) (*access.AdminIdentity, error)
}

// Service orchestrates the order lifecycle use cases.
type Service struct {
	repo          ports.Repository
	authorizer    Authorizer
	notifier      ports.Notifier
	logger        *slog.Logger
	now           func() time.Time
	storeTimeout  time.Duration
	notifyTimeout time.Duration
}

// Option customizes the service.
type Option func(*Service)

// WithNotifier sets the channel that receives committed status changes.
func WithNotifier(n ports.Notifier) Option {
	return func(s *Service) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithLogger sets the logger used for notification failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithStoreTimeout bounds every repository call.
func WithStoreTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.storeTimeout = d
		}
	}
}

// WithNotifyTimeout bounds each notification attempt.
func WithNotifyTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.notifyTimeout = d
		}
	}
}

// NewService wires the orders service with its dependencies.
func NewService(repo ports.Repository, authorizer Authorizer, opts ...Option) *Service {
	s := &Service{
		repo:          repo,
		authorizer:    authorizer,
		notifier:      ports.NoopNotifier,
		logger:        slog.Default(),
		now:           time.Now,
		storeTimeout:  DefaultStoreTimeout,
		notifyTimeout: DefaultNotifyTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// UpdateStatus moves an order to the requested status when the transition
// table allows it.
func (s *Service) UpdateStatus(ctx context.Context, input ports.UpdateStatusInput) (*domain.Order, error) {
	identity, err := s.authorizer.Authorize(ctx, input.Credential)
	if err != nil {
		return nil, mapError(err)
	}
	orderID, err := requireOrderID(input.OrderID)
	if err != nil {
		return nil, mapError(err)
	}
	requested, err := domain.ParseStatus(input.Status)
	if err != nil {
		return nil, mapError(&ValidationError{Fields: map[string]string{
			"status": fmt.Sprintf("unknown status %q; expected one of %s", input.Status, domain.JoinStatuses(domain.Statuses())),
		}})
	}

	current, err := s.load(ctx, orderID)
	if err != nil {
		return nil, mapError(err)
	}
	previous := current.Status
	updated, err := s.transition(ctx, current, requested)
	if err != nil {
		return nil, mapError(err)
	}

	s.notify(ctx, ports.StatusChangedEvent{
		OrderID:        updated.ID,
		PreviousStatus: previous,
		Status:         updated.Status,
		CustomerEmail:  updated.Customer.Email,
		ChangedBy:      identity.Subject,
		ChangedAt:      updated.UpdatedAt,
	})
	return updated, nil
}

// transition validates and writes the change. A stale write is re-read once:
// if the status is still the one validated against, the write is retried with
// the fresh version, otherwise a concurrent transition won.
func (s *Service) transition(ctx context.Context, current *domain.Order, requested domain.Status) (*domain.Order, error) {
	for attempt := 0; ; attempt++ {
		if !domain.IsValidTransition(current.Status, requested) {
			return nil, domain.NewTransitionError(current.Status, requested)
		}
		updated, err := s.write(ctx, ports.StatusChange{
			OrderID:         current.ID,
			ExpectedStatus:  current.Status,
			ExpectedVersion: current.Version,
			NextStatus:      requested,
			UpdatedAt:       s.nextUpdatedAt(current.UpdatedAt),
		})
		if err == nil {
			return updated, nil
		}
		if !errors.Is(err, ports.ErrStaleWrite) {
			return nil, err
		}

		fresh, err := s.load(ctx, current.ID)
		if err != nil {
			return nil, err
		}
		if attempt > 0 || fresh.Status != current.Status {
			return nil, &ConflictError{
				OrderID:   current.ID,
				Expected:  current.Status,
				Current:   fresh.Status,
				Requested: requested,
				Allowed:   fresh.AllowedTransitions(),
			}
		}
		current = fresh
	}
}

// ListOrders returns one page of orders matching the filter.
func (s *Service) ListOrders(ctx context.Context, input ports.ListOrdersInput) (*ports.OrderPage, error) {
	if _, err := s.authorizer.Authorize(ctx, input.Credential); err != nil {
		return nil, mapError(err)
	}
	criteria, err := parseListInput(input)
	if err != nil {
		return nil, mapError(err)
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()
	items, total, err := s.repo.List(storeCtx, criteria.query)
	if err != nil {
		return nil, mapError(storeError(storeCtx, err))
	}
	if items == nil {
		items = []*domain.Order{}
	}
	return &ports.OrderPage{
		Items:      items,
		Total:      total,
		Page:       criteria.page,
		PageSize:   criteria.pageSize,
		TotalPages: totalPages(total, criteria.pageSize),
	}, nil
}

// GetOrder loads a single order.
func (s *Service) GetOrder(ctx context.Context, input ports.GetOrderInput) (*domain.Order, error) {
	if _, err := s.authorizer.Authorize(ctx, input.Credential); err != nil {
		return nil, mapError(err)
	}
	orderID, err := requireOrderID(input.OrderID)
	if err != nil {
		return nil, mapError(err)
	}
	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, mapError(err)
	}
	return order, nil
}

func (s *Service) load(ctx context.Context, id string) (*domain.Order, error) {
	storeCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()
	order, err := s.repo.GetByID(storeCtx, id)
	if err != nil {
		return nil, storeError(storeCtx, err)
	}
	return order, nil
}

func (s *Service) write(ctx context.Context, change ports.StatusChange) (*domain.Order, error) {
	storeCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()
	order, err := s.repo.UpdateStatus(storeCtx, change)
	if err != nil {
		return nil, storeError(storeCtx, err)
	}
	return order, nil
}

func (s *Service) notify(ctx context.Context, event ports.StatusChangedEvent) {
	notifyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.notifyTimeout)
	defer cancel()
	if err := s.notifier.NotifyStatusChanged(notifyCtx, event); err != nil {
		s.logger.WarnContext(ctx, "order status notification failed",
			slog.String("order_id", event.OrderID),
			slog.String("status", event.Status.String()),
			slog.String("error", err.Error()),
		)
	}
}

// nextUpdatedAt keeps UpdatedAt strictly increasing at the store's
// microsecond precision even when the clock stalls or steps back.
func (s *Service) nextUpdatedAt(prev time.Time) time.Time {
	now := s.now().UTC().Truncate(time.Microsecond)
	if !now.After(prev) {
		return prev.Add(time.Microsecond)
	}
	return now
}

func storeError(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) && !errors.Is(err, ports.ErrStoreTimeout) {
		return fmt.Errorf("%w: %w", ports.ErrStoreTimeout, err)
	}
	return err
}

func requireOrderID(raw string) (string, error) {
	id := strings.TrimSpace(raw)
	if id == "" {
		return "", &ValidationError{Fields: map[string]string{"id": "order id is required"}}
	}
	return id, nil
}

func totalPages(total, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}

var _ ports.Service = (*Service)(nil)
