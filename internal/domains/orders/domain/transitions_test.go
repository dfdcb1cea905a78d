package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var expectedEdges = map[Status][]Status{
	StatusPending:    {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered, StatusCancelled},
	StatusDelivered:  {StatusRefunded},
}

func TestIsValidTransition_AllPairs(t *testing.T) {
	for _, from := range Statuses() {
		for _, to := range Statuses() {
			want := false
			for _, allowed := range expectedEdges[from] {
				if allowed == to {
					want = true
				}
			}
			assert.Equal(t, want, IsValidTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestIsValidTransition_SelfLoopsRejected(t *testing.T) {
	for _, s := range Statuses() {
		assert.False(t, IsValidTransition(s, s), s)
	}
}

func TestIsValidTransition_UnknownStatus(t *testing.T) {
	assert.False(t, IsValidTransition("archived", StatusPending))
	assert.False(t, IsValidTransition(StatusPending, "archived"))
	assert.Empty(t, AllowedTransitions("archived"))
}

func TestAllowedTransitions_TerminalAndConfirmed(t *testing.T) {
	assert.Empty(t, AllowedTransitions(StatusCancelled))
	assert.Empty(t, AllowedTransitions(StatusRefunded))
	assert.Empty(t, AllowedTransitions(StatusConfirmed))
	for _, from := range Statuses() {
		assert.False(t, IsValidTransition(from, StatusConfirmed), "%s -> confirmed", from)
	}
}

func TestAllowedTransitions_ReturnsCopy(t *testing.T) {
	next := AllowedTransitions(StatusPending)
	require.Len(t, next, 2)
	next[0] = StatusRefunded
	assert.Equal(t, []Status{StatusProcessing, StatusCancelled}, AllowedTransitions(StatusPending))
}

func TestTransitionError_Message(t *testing.T) {
	err := NewTransitionError(StatusPending, StatusShipped)
	assert.Equal(t, []Status{StatusProcessing, StatusCancelled}, err.Allowed)
	assert.Contains(t, err.Error(), "from pending to shipped")
	assert.Contains(t, err.Error(), "processing, cancelled")

	terminal := NewTransitionError(StatusRefunded, StatusPending)
	assert.Contains(t, terminal.Error(), "no further transitions")
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus(" Shipped ")
	require.NoError(t, err)
	assert.Equal(t, StatusShipped, s)

	_, err = ParseStatus("lost")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}
