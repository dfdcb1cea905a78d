// Package seed loads sample nursery orders for local development, standing
// in for the checkout flow that normally creates them.
package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/potgreen/nursery-backend/internal/domains/orders/domain"
	"github.com/potgreen/nursery-backend/internal/domains/orders/ports"
)

type plant struct {
	id    string
	name  string
	price string
}

var catalog = []plant{
	{"monstera-deliciosa", "Monstera Deliciosa", "34.99"},
	{"fiddle-leaf-fig", "Fiddle Leaf Fig", "42.50"},
	{"snake-plant", "Snake Plant", "18.00"},
	{"pothos-golden", "Golden Pothos", "12.75"},
	{"lavender", "English Lavender", "6.25"},
	{"terracotta-pot-20", "Terracotta Pot 20cm", "9.90"},
}

var customers = []domain.Customer{
	{FirstName: "Rosa", LastName: "Canina", Email: "rosa@example.com"},
	{FirstName: "Fern", LastName: "Gully", Email: "fern@example.com"},
	{FirstName: "Ivy", LastName: "Hedera", Email: "ivy@example.com"},
	{FirstName: "Basil", LastName: "Ocimum", Email: "basil@example.com"},
}

// lifecycle paths applied to successive seeded orders.
var paths = [][]domain.Status{
	nil,
	{domain.StatusProcessing},
	{domain.StatusProcessing, domain.StatusShipped},
	{domain.StatusProcessing, domain.StatusShipped, domain.StatusDelivered},
	{domain.StatusCancelled},
	{domain.StatusProcessing, domain.StatusShipped, domain.StatusDelivered, domain.StatusRefunded},
}

// Orders creates count orders spread over the days before now and walks
// some of them along the lifecycle with conditional writes.
func Orders(ctx context.Context, repo ports.Repository, count int, now time.Time) ([]*domain.Order, error) {
	created := make([]*domain.Order, 0, count)
	for i := 0; i < count; i++ {
		p := catalog[i%len(catalog)]
		extra := catalog[(i+3)%len(catalog)]
		items := []domain.LineItem{
			{ProductID: p.id, ProductName: p.name, Quantity: int32(1 + i%3), UnitPrice: decimal.RequireFromString(p.price)},
		}
		if i%2 == 0 {
			items = append(items, domain.LineItem{ProductID: extra.id, ProductName: extra.name, Quantity: 1, UnitPrice: decimal.RequireFromString(extra.price)})
		}
		createdAt := now.Add(-time.Duration(count-i) * 6 * time.Hour)
		order, err := domain.NewOrder(customers[i%len(customers)], items, createdAt)
		if err != nil {
			return created, fmt.Errorf("build seed order %d: %w", i, err)
		}
		order, err = repo.Create(ctx, order)
		if err != nil {
			return created, fmt.Errorf("create seed order %d: %w", i, err)
		}
		for step, next := range paths[i%len(paths)] {
			order, err = repo.UpdateStatus(ctx, ports.StatusChange{
				OrderID:         order.ID,
				ExpectedStatus:  order.Status,
				ExpectedVersion: order.Version,
				NextStatus:      next,
				UpdatedAt:       createdAt.Add(time.Duration(step+1) * time.Hour).UTC().Truncate(time.Microsecond),
			})
			if err != nil {
				return created, fmt.Errorf("advance seed order %d to %s: %w", i, next, err)
			}
		}
		created = append(created, order)
	}
	return created, nil
}
