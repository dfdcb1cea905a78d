package mapper

import (
	"encoding/json"
	"time"

	"github.com/potgreen/nursery-backend/internal/domains/orders/domain"
	"github.com/potgreen/nursery-backend/internal/domains/orders/ports"
)

// Customer is the HTTP representation of the purchaser snapshot.
type Customer struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

// LineItem is the HTTP representation of a purchased product.
type LineItem struct {
	ProductID   string      `json:"productId"`
	ProductName string      `json:"productName,omitempty"`
	Quantity    int32       `json:"quantity"`
	UnitPrice   json.Number `json:"unitPrice"`
}

// Order is the HTTP representation of an order. AllowedTransitions lets the
// console render only legal next statuses.
type Order struct {
	ID                 string      `json:"id"`
	Customer           Customer    `json:"customer"`
	Items              []LineItem  `json:"items"`
	TotalAmount        json.Number `json:"totalAmount"`
	Status             string      `json:"status"`
	AllowedTransitions []string    `json:"allowedTransitions"`
	Version            int64       `json:"version"`
	CreatedAt          time.Time   `json:"createdAt"`
	UpdatedAt          time.Time   `json:"updatedAt"`
}

// UpdateStatusRequest is the body of a status change.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// OrderResponse wraps a single order.
type OrderResponse struct {
	Success bool  `json:"success"`
	Order   Order `json:"order"`
}

// ListResponse wraps a page of orders.
type ListResponse struct {
	Success    bool    `json:"success"`
	Orders     []Order `json:"orders"`
	Total      int     `json:"total"`
	Page       int     `json:"page"`
	Limit      int     `json:"limit"`
	TotalPages int     `json:"totalPages"`
}

// FromDomainOrder maps a domain order into its transport shape.
func FromDomainOrder(o *domain.Order) Order {
	items := make([]LineItem, 0, len(o.LineItems))
	for _, item := range o.LineItems {
		items = append(items, LineItem{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   json.Number(item.UnitPrice.StringFixed(2)),
		})
	}
	return Order{
		ID: o.ID,
		Customer: Customer{
			FirstName: o.Customer.FirstName,
			LastName:  o.Customer.LastName,
			Email:     o.Customer.Email,
		},
		Items:              items,
		TotalAmount:        json.Number(o.TotalAmount.StringFixed(2)),
		Status:             string(o.Status),
		AllowedTransitions: StatusStrings(o.AllowedTransitions()),
		Version:            o.Version,
		CreatedAt:          o.CreatedAt,
		UpdatedAt:          o.UpdatedAt,
	}
}

// NewOrderResponse builds the single order envelope.
func NewOrderResponse(o *domain.Order) OrderResponse {
	return OrderResponse{Success: true, Order: FromDomainOrder(o)}
}

// NewListResponse builds the listing envelope.
func NewListResponse(page *ports.OrderPage) ListResponse {
	orders := make([]Order, 0, len(page.Items))
	for _, o := range page.Items {
		orders = append(orders, FromDomainOrder(o))
	}
	return ListResponse{
		Success:    true,
		Orders:     orders,
		Total:      page.Total,
		Page:       page.Page,
		Limit:      page.PageSize,
		TotalPages: page.TotalPages,
	}
}

// StatusStrings renders statuses for JSON; never nil.
func StatusStrings(statuses []domain.Status) []string {
	out := make([]string, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, string(s))
	}
	return out
}
