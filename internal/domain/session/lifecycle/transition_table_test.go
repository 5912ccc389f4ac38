// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransitionTable_NoDuplicates(t *testing.T) {
	seen := map[State]map[EventKind]struct{}{}
	for _, tr := range transitionsTable {
		if _, ok := seen[tr.From]; !ok {
			seen[tr.From] = map[EventKind]struct{}{}
		}
		if _, exists := seen[tr.From][tr.Event]; exists {
			t.Fatalf("duplicate transition: %s + %s", tr.From, tr.Event)
		}
		seen[tr.From][tr.Event] = struct{}{}
	}
}

func TestTransitionTable_Coverage(t *testing.T) {
	for _, state := range States() {
		for _, ev := range AllEvents() {
			d := DecisionFor(state, ev)
			_, ok := TransitionFor(state, ev)
			require.Equal(t, ok, d.Allowed, "%s + %s", state, ev)
			if !d.Allowed {
				require.NotEmpty(t, d.Reason, "ignored event must have reason for %s + %s", state, ev)
			}
		}
	}
}

func TestStartAcceptedOnlyFromIdleAndError(t *testing.T) {
	for _, state := range States() {
		tr, ok := TransitionFor(state, EvStart)
		if state.AcceptsStart() {
			require.True(t, ok, state)
			assert.Equal(t, StateValidating, tr.To)
			continue
		}
		assert.False(t, ok, "START must be ignored in %s", state)
	}
}

func TestResetFromEveryNonCompletedState(t *testing.T) {
	for _, state := range States() {
		tr, ok := TransitionFor(state, EvReset)
		if state == StateCompleted {
			assert.False(t, ok)
			continue
		}
		require.True(t, ok, state)
		assert.Equal(t, StateIdle, tr.To)
	}
}

func TestCompletedOnlyAutoTransitions(t *testing.T) {
	for _, ev := range AllEvents() {
		tr, ok := TransitionFor(StateCompleted, ev)
		if ev == EvAutoIdle {
			require.True(t, ok)
			assert.Equal(t, StateIdle, tr.To)
			continue
		}
		assert.False(t, ok, "completed must ignore %s", ev)
		assert.Equal(t, IgnoredCompletedAbsorbing, DecisionFor(StateCompleted, ev).Reason)
	}
}

func TestIdleIgnoresPauseAndEnd(t *testing.T) {
	for _, ev := range []EventKind{EvPause, EvEnd, EvResume, EvPersistComplete, EvUpdateRecordingState} {
		assert.False(t, DecisionFor(StateIdle, ev).Allowed, ev)
	}
}

func TestFailingTasksLeadToError(t *testing.T) {
	cases := map[State]EventKind{
		StateValidating:          EvValidationFailed,
		StateCheckingPermissions: EvPermissionsDenied,
		StateStarting:            EvStartFailed,
		StatePausing:             EvPauseFailed,
		StateResuming:            EvResumeFailed,
	}
	for from, ev := range cases {
		tr, ok := TransitionFor(from, ev)
		require.True(t, ok, "%s + %s", from, ev)
		assert.Equal(t, StateError, tr.To)
	}
	// Stop is best-effort and never fails the ending transition.
	_, ok := TransitionFor(StateEnding, EvServicesStopped)
	assert.True(t, ok)
}

func TestUpdateRecordingStateIsInternal(t *testing.T) {
	tr, ok := TransitionFor(StateActive, EvUpdateRecordingState)
	require.True(t, ok)
	assert.True(t, tr.Internal)
	assert.Equal(t, StateActive, tr.To)

	for _, tr := range Transitions() {
		if tr.Internal {
			assert.Equal(t, tr.From, tr.To, "internal transitions must not change state")
		}
	}
}

func TestDecisionFor_UnknownEvent(t *testing.T) {
	d := DecisionFor(StateActive, EventKind("bogus"))
	assert.False(t, d.Allowed)
	assert.Equal(t, IgnoredUnknownEvent, d.Reason)

	d = DecisionFor(StateIdle, EvServicesStarted)
	assert.Equal(t, IgnoredStaleCompletion, d.Reason)
}
