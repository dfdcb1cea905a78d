package ports

import (
	"context"

	"github.com/potgreen/nursery-backend/internal/domains/orders/domain"
)

// UpdateStatusInput carries a guarded transition request.
type UpdateStatusInput struct {
	Credential string
	OrderID    string
	Status     string
}

// ListOrdersInput carries raw listing parameters as received from callers.
// Dates accept YYYY-MM-DD or RFC 3339. Malformed names the paging
// parameters ("page", "limit") whose values were not integers.
type ListOrdersInput struct {
	Credential string
	Status     string
	StartDate  string
	EndDate    string
	Search     string
	Page       int
	PageSize   int
	Malformed  []string
}

// GetOrderInput identifies a single order lookup.
type GetOrderInput struct {
	Credential string
	OrderID    string
}

// OrderPage is one page of a listing. Total counts matches before paging.
type OrderPage struct {
	Items      []*domain.Order
	Total      int
	Page       int
	PageSize   int
	TotalPages int
}

// Service exposes order lifecycle use cases to adapters.
type Service interface {
	UpdateStatus(ctx context.Context, input UpdateStatusInput) (*domain.Order, error)
	ListOrders(ctx context.Context, input ListOrdersInput) (*OrderPage, error)
	GetOrder(ctx context.Context, input GetOrderInput) (*domain.Order, error)
}
