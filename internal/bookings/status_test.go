package bookings

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusLifecycle(t *testing.T) {
	cases := []struct {
		from    Status
		to      Status
		allowed bool
	}{
		{StatusRequested, StatusConfirmed, true},
		{StatusRequested, StatusCanceled, true},
		{StatusRequested, StatusPaid, false},
		{StatusConfirmed, StatusPaid, true},
		{StatusConfirmed, StatusCompleted, false},
		{StatusPaid, StatusCompleted, true},
		{StatusPaid, StatusCanceled, true},
		{StatusCompleted, StatusCanceled, false},
		{StatusCanceled, StatusRequested, false},
	}

	for _, tc := range cases {
		got := tc.from.CanTransitionTo(tc.to)
		assert.Equal(t, tc.allowed, got, "%s -> %s", tc.from, tc.to)
	}
}

func TestValidateTransitionError(t *testing.T) {
	err := ValidateTransition(StatusCompleted, StatusPaid)
	require.Error(t, err)

	var transitionErr *InvalidTransitionError
	require.True(t, errors.As(err, &transitionErr))
	assert.Equal(t, StatusCompleted, transitionErr.From)
	assert.Equal(t, StatusPaid, transitionErr.To)
}

func TestTerminalStatuses(t *testing.T) {
	assert.True(t, StatusCompleted.IsTerminal())
	assert.True(t, StatusCanceled.IsTerminal())
	assert.False(t, StatusRequested.IsTerminal())
	assert.False(t, StatusPaid.IsTerminal())
}
