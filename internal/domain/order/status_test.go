package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	for _, raw := range []string{"PENDING", "PAID", "SHIPPED", "COMPLETED", "CANCELLED"} {
		s, err := ParseStatus(raw)
		require.NoError(t, err)
		assert.Equal(t, Status(raw), s)
	}

	_, err := ParseStatus("REFUNDED")
	require.Error(t, err)

	_, err = ParseStatus("pending")
	require.Error(t, err, "status literals are case-sensitive")
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, StatusPending.IsTerminal())
	assert.False(t, StatusPaid.IsTerminal())
	assert.False(t, StatusShipped.IsTerminal())
	assert.True(t, StatusCompleted.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
}

func TestAllowAnyTransition(t *testing.T) {
	p := AllowAnyTransition{}

	// Operators can force any status, including backwards corrections.
	assert.NoError(t, p.Allow(StatusCompleted, StatusPending))
	assert.NoError(t, p.Allow(StatusCancelled, StatusPaid))
	assert.NoError(t, p.Allow(StatusPaid, StatusPaid))
}

func TestGuardedTransitions_ForwardPath(t *testing.T) {
	p := GuardedTransitions{}

	assert.NoError(t, p.Allow(StatusPending, StatusPaid))
	assert.NoError(t, p.Allow(StatusPaid, StatusShipped))
	assert.NoError(t, p.Allow(StatusShipped, StatusCompleted))
}

func TestGuardedTransitions_SameStatusAlwaysAllowed(t *testing.T) {
	p := GuardedTransitions{}

	for _, s := range []Status{StatusPending, StatusPaid, StatusShipped, StatusCompleted, StatusCancelled} {
		assert.NoError(t, p.Allow(s, s))
	}
}

func TestGuardedTransitions_CancelFromNonTerminal(t *testing.T) {
	p := GuardedTransitions{}

	assert.NoError(t, p.Allow(StatusPending, StatusCancelled))
	assert.NoError(t, p.Allow(StatusPaid, StatusCancelled))
	assert.NoError(t, p.Allow(StatusShipped, StatusCancelled))

	var itErr *InvalidTransitionError
	require.ErrorAs(t, p.Allow(StatusCompleted, StatusCancelled), &itErr)
	assert.Equal(t, StatusCompleted, itErr.From)
}

func TestGuardedTransitions_RejectsSkipsAndBackwards(t *testing.T) {
	p := GuardedTransitions{}

	var itErr *InvalidTransitionError
	require.ErrorAs(t, p.Allow(StatusPending, StatusShipped), &itErr)
	require.ErrorAs(t, p.Allow(StatusShipped, StatusPaid), &itErr)
	require.ErrorAs(t, p.Allow(StatusCancelled, StatusPaid), &itErr)
}
