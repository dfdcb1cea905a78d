package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/potgreen/nursery-backend/internal/domains/access"
	"github.com/potgreen/nursery-backend/internal/domains/orders/domain"
	"github.com/potgreen/nursery-backend/internal/domains/orders/ports"
)

var (
	ErrUnauthorized      = errors.New("unauthorized")
	ErrNotFound          = errors.New("order not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrConflict          = errors.New("order status changed concurrently")
	ErrTimeout           = errors.New("order store timed out")
	ErrValidation        = errors.New("invalid order request")
	// ErrUnavailable marks storage failures the caller may retry with backoff.
	ErrUnavailable = errors.New("order store unavailable")
)

// ConflictError reports a lost race. Current is the status observed after
// the competing write; Allowed is what may follow it.
type ConflictError struct {
	OrderID   string
	Expected  domain.Status
	Current   domain.Status
	Requested domain.Status
	Allowed   []domain.Status
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("order %s changed from %s to %s while moving to %s; re-fetch before retrying",
		e.OrderID, e.Expected, e.Current, e.Requested)
}

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

func mapError(err error) error {
	if err == nil {
		return nil
	}
	var transitionErr *domain.TransitionError
	switch {
	case errors.As(err, &transitionErr):
		return fmt.Errorf("%w: %w", ErrInvalidTransition, err)
	case errors.Is(err, access.ErrUnauthorized):
		return fmt.Errorf("%w: %w", ErrUnauthorized, err)
	case errors.Is(err, ports.ErrNotFound):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case errors.Is(err, ports.ErrStoreTimeout), errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	case errors.Is(err, domain.ErrInvalidStatus):
		return fmt.Errorf("%w: %w", ErrValidation, err)
	case errors.Is(err, ErrConflict), errors.Is(err, ErrValidation):
		return err
	}
	return fmt.Errorf("%w: %w", ErrUnavailable, err)
}
