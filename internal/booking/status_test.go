package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusTransitions(t *testing.T) {
	tests := []struct {
		from    Status
		to      Status
		allowed bool
	}{
		{StatusReserved, StatusFilled, true},
		{StatusReserved, StatusCanceled, true},
		{StatusReserved, StatusReserved, true},
		{StatusReserved, StatusPaid, false},
		{StatusFilled, StatusPaid, true},
		{StatusFilled, StatusReserved, true},
		{StatusFilled, StatusCanceled, true},
		{StatusPaid, StatusCanceled, false},
		{StatusPaid, StatusFilled, false},
		{StatusCanceled, StatusReserved, false},
		{StatusCanceled, StatusPaid, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to),
			"%s -> %s", tt.from, tt.to)
	}
}

func TestStatusClassification(t *testing.T) {
	assert.True(t, StatusReserved.IsActive())
	assert.True(t, StatusFilled.IsActive())
	assert.False(t, StatusPaid.IsActive())
	assert.False(t, StatusCanceled.IsActive())

	assert.True(t, StatusPaid.IsTerminal())
	assert.True(t, StatusCanceled.IsTerminal())
	assert.False(t, StatusReserved.IsTerminal())
	assert.False(t, StatusFilled.IsTerminal())

	assert.True(t, StatusReserved.IsValid())
	assert.False(t, Status("EXPIRED").IsValid())
}
