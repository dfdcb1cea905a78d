package domain

import (
	"errors"
	"strings"
)

// Status enumerates order fulfillment progression.
type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
	StatusRefunded   Status = "refunded"
)

// ErrInvalidStatus is returned when a string does not name a known status.
var ErrInvalidStatus = errors.New("order status is invalid")

// Statuses lists every declared status in display order.
func Statuses() []Status {
	return []Status{
		StatusPending,
		StatusConfirmed,
		StatusProcessing,
		StatusShipped,
		StatusDelivered,
		StatusCancelled,
		StatusRefunded,
	}
}

// ParseStatus normalizes and validates a raw status value.
func ParseStatus(raw string) (Status, error) {
	status := Status(strings.ToLower(strings.TrimSpace(raw)))
	if !status.IsKnown() {
		return "", ErrInvalidStatus
	}
	return status, nil
}

// IsKnown reports whether the status is one of the declared values.
func (s Status) IsKnown() bool {
	for _, known := range Statuses() {
		if s == known {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no transition leaves the status.
func (s Status) IsTerminal() bool {
	return s == StatusCancelled || s == StatusRefunded
}

func (s Status) String() string { return string(s) }
