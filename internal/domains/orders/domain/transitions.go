package domain

import (
	"fmt"
	"strings"
)

// transitions is the complete lifecycle rule set. A pair not listed here,
// including every self-loop, is rejected. confirmed is declared but has no
// edges in either direction.
var transitions = map[Status][]Status{
	StatusPending:    {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered, StatusCancelled},
	StatusDelivered:  {StatusRefunded},
	StatusCancelled:  {},
	StatusRefunded:   {},
	StatusConfirmed:  {},
}

// AllowedTransitions returns the statuses reachable in one step from current.
// The result is a fresh slice and is empty for terminal or unknown statuses.
func AllowedTransitions(current Status) []Status {
	next := transitions[current]
	out := make([]Status, len(next))
	copy(out, next)
	return out
}

// IsValidTransition reports whether current -> requested is an edge of the
// lifecycle. It is defined for every pair of inputs.
func IsValidTransition(current, requested Status) bool {
	for _, candidate := range transitions[current] {
		if candidate == requested {
			return true
		}
	}
	return false
}

// TransitionError describes a rejected status change.
type TransitionError struct {
	Current   Status
	Requested Status
	Allowed   []Status
}

// NewTransitionError builds the rejection for current -> requested.
func NewTransitionError(current, requested Status) *TransitionError {
	return &TransitionError{
		Current:   current,
		Requested: requested,
		Allowed:   AllowedTransitions(current),
	}
}

func (e *TransitionError) Error() string {
	if len(e.Allowed) == 0 {
		return fmt.Sprintf("invalid status transition from %s to %s: %s has no further transitions", e.Current, e.Requested, e.Current)
	}
	return fmt.Sprintf("invalid status transition from %s to %s: valid transitions from %s are %s",
		e.Current, e.Requested, e.Current, JoinStatuses(e.Allowed))
}

// JoinStatuses renders statuses as a comma separated list.
func JoinStatuses(statuses []Status) string {
	parts := make([]string, 0, len(statuses))
	for _, s := range statuses {
		parts = append(parts, string(s))
	}
	return strings.Join(parts, ", ")
}
