// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package lifecycle

// State is a session machine state.
type State string

const (
	StateIdle                State = "idle"
	StateValidating          State = "validating"
	StateCheckingPermissions State = "checking_permissions"
	StateStarting            State = "starting"
	StateActive              State = "active"
	StatePausing             State = "pausing"
	StatePaused              State = "paused"
	StateResuming            State = "resuming"
	StateEnding              State = "ending"
	StatePersisting          State = "persisting"
	StateCompleted           State = "completed"
	StateError               State = "error"
)

// States lists every machine state.
func States() []State {
	return []State{
		StateIdle, StateValidating, StateCheckingPermissions, StateStarting,
		StateActive, StatePausing, StatePaused, StateResuming,
		StateEnding, StatePersisting, StateCompleted, StateError,
	}
}

// IsTransient reports whether the state is waiting on an invoked task.
func (s State) IsTransient() bool {
	switch s {
	case StateValidating, StateCheckingPermissions, StateStarting,
		StatePausing, StateResuming, StateEnding:
		return true
	}
	return false
}

// IsRecording reports whether capture services are expected to be running.
func (s State) IsRecording() bool {
	return s == StateActive || s == StatePaused || s == StatePausing || s == StateResuming
}

// AcceptsStart reports whether a fresh START is accepted.
func (s State) AcceptsStart() bool {
	return s == StateIdle || s == StateError
}
