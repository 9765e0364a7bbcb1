//go:build unit

package retry

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseState(t *testing.T) {
	t.Parallel()

	state, err := ParseState("awaiting_backoff")
	require.NoError(t, err)
	require.Equal(t, StateAwaitingBackoff, state)

	_, err = ParseState("UNKNOWN")
	require.ErrorIs(t, err, ErrStateInvalid)
}

func TestState_IsValid(t *testing.T) {
	t.Parallel()

	require.True(t, StateIdle.IsValid())
	require.True(t, StateAttempting.IsValid())
	require.True(t, StateAwaitingBackoff.IsValid())
	require.True(t, StateSucceeded.IsValid())
	require.True(t, StateFailed.IsValid())
	require.True(t, StateInterrupted.IsValid())
	require.False(t, State("BROKEN").IsValid())
}

func TestState_IsTerminal(t *testing.T) {
	t.Parallel()

	require.False(t, StateIdle.IsTerminal())
	require.False(t, StateAttempting.IsTerminal())
	require.False(t, StateAwaitingBackoff.IsTerminal())
	require.True(t, StateSucceeded.IsTerminal())
	require.True(t, StateFailed.IsTerminal())
	require.True(t, StateInterrupted.IsTerminal())
}

func TestState_String(t *testing.T) {
	t.Parallel()

	require.Equal(t, "awaiting_backoff", StateAwaitingBackoff.String())
}

func TestState_CanTransitionTo(t *testing.T) {
	t.Parallel()

	// The loop enters the first attempt from idle.
	require.True(t, StateIdle.CanTransitionTo(StateAttempting))
	require.False(t, StateIdle.CanTransitionTo(StateSucceeded))
	require.False(t, StateIdle.CanTransitionTo(StateAwaitingBackoff))

	// An attempt ends in success, a wait, or a terminal failure kind.
	require.True(t, StateAttempting.CanTransitionTo(StateSucceeded))
	require.True(t, StateAttempting.CanTransitionTo(StateAwaitingBackoff))
	require.True(t, StateAttempting.CanTransitionTo(StateFailed))
	require.True(t, StateAttempting.CanTransitionTo(StateInterrupted))
	require.False(t, StateAttempting.CanTransitionTo(StateIdle))

	// A wait either loops back or is interrupted; it never fails directly.
	require.True(t, StateAwaitingBackoff.CanTransitionTo(StateAttempting))
	require.True(t, StateAwaitingBackoff.CanTransitionTo(StateInterrupted))
	require.False(t, StateAwaitingBackoff.CanTransitionTo(StateFailed))
	require.False(t, StateAwaitingBackoff.CanTransitionTo(StateSucceeded))

	// Terminal states allow nothing.
	for _, terminal := range []State{StateSucceeded, StateFailed, StateInterrupted} {
		for _, next := range []State{StateIdle, StateAttempting, StateAwaitingBackoff, StateSucceeded, StateFailed, StateInterrupted} {
			require.False(t, terminal.CanTransitionTo(next))
		}
	}

	// Unknown states allow nothing.
	require.False(t, State("BROKEN").CanTransitionTo(StateAttempting))
}
