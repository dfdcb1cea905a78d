package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrEmptyLineItems   = errors.New("order must contain at least one line item")
	ErrInvalidQuantity  = errors.New("quantity must be greater than zero")
	ErrInvalidUnitPrice = errors.New("unit price must not be negative")
	ErrMissingProduct   = errors.New("line item product id is required")
	ErrMissingCustomer  = errors.New("customer email is required")
)

// Customer is the purchaser snapshot copied onto the order at checkout.
// Later profile edits never reach existing orders.
type Customer struct {
	FirstName string
	LastName  string
	Email     string
}

// LineItem is a single purchased product at its checkout price.
type LineItem struct {
	ProductID   string
	ProductName string
	Quantity    int32
	UnitPrice   decimal.Decimal
}

// Subtotal returns quantity times unit price.
func (li LineItem) Subtotal() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt32(li.Quantity))
}

// Order models the purchase aggregate. Only Status, Version and UpdatedAt
// change after creation.
type Order struct {
	ID          string
	Customer    Customer
	LineItems   []LineItem
	TotalAmount decimal.Decimal
	Status      Status
	Version     int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewOrder builds a pending order, assigning its id and deriving the total.
func NewOrder(customer Customer, items []LineItem, now time.Time) (*Order, error) {
	customer = Customer{
		FirstName: strings.TrimSpace(customer.FirstName),
		LastName:  strings.TrimSpace(customer.LastName),
		Email:     strings.TrimSpace(customer.Email),
	}
	if customer.Email == "" {
		return nil, ErrMissingCustomer
	}
	if len(items) == 0 {
		return nil, ErrEmptyLineItems
	}
	lineItems := make([]LineItem, len(items))
	total := decimal.Zero
	for i, item := range items {
		if strings.TrimSpace(item.ProductID) == "" {
			return nil, ErrMissingProduct
		}
		if item.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
		if item.UnitPrice.IsNegative() {
			return nil, ErrInvalidUnitPrice
		}
		lineItems[i] = item
		total = total.Add(item.Subtotal())
	}
	now = now.UTC().Truncate(time.Microsecond)
	return &Order{
		ID:          uuid.NewString(),
		Customer:    customer,
		LineItems:   lineItems,
		TotalAmount: total,
		Status:      StatusPending,
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// AllowedTransitions lists the statuses the order may move to next.
func (o *Order) AllowedTransitions() []Status {
	return AllowedTransitions(o.Status)
}

// Clone returns a deep copy so callers never share line item storage.
func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	clone := *o
	clone.LineItems = make([]LineItem, len(o.LineItems))
	copy(clone.LineItems, o.LineItems)
	return &clone
}

// MatchesSearch reports whether term is a case-insensitive substring of the
// order id or any customer field. An empty term matches everything.
func (o *Order) MatchesSearch(term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	for _, field := range []string{o.ID, o.Customer.FirstName, o.Customer.LastName, o.Customer.Email} {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}
