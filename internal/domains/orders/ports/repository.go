package ports

import (
	"context"
	"errors"
	"time"

	"github.com/potgreen/nursery-backend/internal/domains/orders/domain"
)

var (
	ErrNotFound = errors.New("order not found")
	// ErrStaleWrite reports that a conditional status write found the order
	// changed since it was read.
	ErrStaleWrite = errors.New("order changed since it was read")
	// ErrDuplicateID reports an attempt to create an order with an existing id.
	ErrDuplicateID = errors.New("order id already exists")
	// ErrStoreTimeout reports that the backend did not answer in time.
	ErrStoreTimeout = errors.New("order store timed out")
)

// StatusChange is a compare-and-set status write. It applies only when the
// stored order still has ExpectedStatus and ExpectedVersion.
type StatusChange struct {
	OrderID         string
	ExpectedStatus  domain.Status
	ExpectedVersion int64
	NextStatus      domain.Status
	UpdatedAt       time.Time
}

// ListQuery restricts and pages a listing. CreatedFrom is inclusive and
// CreatedUntil exclusive; nil bounds are open.
type ListQuery struct {
	Status       *domain.Status
	CreatedFrom  *time.Time
	CreatedUntil *time.Time
	Search       string
	Offset       int
	Limit        int
}

// Repository persists orders. Results are ordered by CreatedAt descending
// then ID ascending.
type Repository interface {
	Create(ctx context.Context, order *domain.Order) (*domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	// UpdateStatus bumps Version by one and sets Status and UpdatedAt in a
	// single atomic write. It returns ErrStaleWrite when no row matches the
	// id, status and version guard, including when the order is gone; the
	// caller re-reads to tell the cases apart.
	UpdateStatus(ctx context.Context, change StatusChange) (*domain.Order, error)
	// List returns one page of matches and the total match count.
	List(ctx context.Context, query ListQuery) ([]*domain.Order, int, error)
}
