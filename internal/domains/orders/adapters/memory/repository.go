package memory

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"

	"github.com/potgreen/nursery-backend/internal/domains/orders/domain"
	"github.com/potgreen/nursery-backend/internal/domains/orders/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory order persistence adapter. Status writes are
// compare-and-set under the write lock.
type Repository struct {
	mu     sync.RWMutex
	orders map[string]*domain.Order
}

func NewRepository() *Repository {
	return &Repository{orders: map[string]*domain.Order{}}
}

// Reset drops every stored order.
func (r *Repository) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	clear(r.orders)
}

func (r *Repository) Create(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if order == nil {
		return nil, errors.New("order is nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.orders[order.ID]; exists {
		return nil, ports.ErrDuplicateID
	}
	r.orders[order.ID] = order.Clone()
	return order.Clone(), nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return order.Clone(), nil
}

func (r *Repository) UpdateStatus(ctx context.Context, change ports.StatusChange) (*domain.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[change.OrderID]
	if !ok || order.Status != change.ExpectedStatus || order.Version != change.ExpectedVersion {
		return nil, ports.ErrStaleWrite
	}
	order.Status = change.NextStatus
	order.UpdatedAt = change.UpdatedAt
	order.Version++
	return order.Clone(), nil
}

func (r *Repository) List(ctx context.Context, query ports.ListQuery) ([]*domain.Order, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	r.mu.RLock()
	matches := make([]*domain.Order, 0, len(r.orders))
	for _, order := range r.orders {
		if matchesQuery(order, query) {
			matches = append(matches, order.Clone())
		}
	}
	r.mu.RUnlock()

	slices.SortFunc(matches, func(a, b *domain.Order) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})

	total := len(matches)
	start := min(max(query.Offset, 0), total)
	end := total
	if query.Limit > 0 {
		end = min(start+query.Limit, total)
	}
	return matches[start:end], total, nil
}

func matchesQuery(order *domain.Order, query ports.ListQuery) bool {
	if query.Status != nil && order.Status != *query.Status {
		return false
	}
	if query.CreatedFrom != nil && order.CreatedAt.Before(*query.CreatedFrom) {
		return false
	}
	if query.CreatedUntil != nil && !order.CreatedAt.Before(*query.CreatedUntil) {
		return false
	}
	return order.MatchesSearch(query.Search)
}
