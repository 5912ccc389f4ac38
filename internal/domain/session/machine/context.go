// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package machine

import (
	"time"

	"github.com/ManuGH/recap/internal/domain/session/lifecycle"
	"github.com/ManuGH/recap/internal/domain/session/model"
	"github.com/ManuGH/recap/internal/domain/session/ports"
)

// ErrorKind classifies why the machine entered the error state, so callers
// can route permission failures to the OS settings flow.
type ErrorKind string

const (
	ErrorKindNone          ErrorKind = ""
	ErrorKindValidation    ErrorKind = "validation"
	ErrorKindPermission    ErrorKind = "permission"
	ErrorKindServiceStart  ErrorKind = "service_start"
	ErrorKindServicePause  ErrorKind = "service_pause"
	ErrorKindServiceResume ErrorKind = "service_resume"
)

// MachineError is one failure reported by an invoked task.
type MachineError struct {
	Kind    ErrorKind
	Message string
}

func (e MachineError) Error() string { return e.Message }

// Context is the data owned by the machine. Only the actor goroutine writes it.
type Context struct {
	// SessionID is empty until validation succeeds.
	SessionID string
	Config    model.SessionConfig
	Session   *model.SessionRecord
	Callbacks *ports.CaptureCallbacks
	StartTime time.Time
	EndTime   time.Time
	Errors    []string
	ErrorKind ErrorKind
	// Warnings holds non-fatal validation notes such as device fallbacks.
	Warnings  []string
	Recording model.RecordingState
}

func defaultContext() Context {
	return Context{Recording: model.IdleRecordingState()}
}

func (c Context) clone() Context {
	out := c
	out.Config = c.Config.Clone()
	out.Errors = append([]string(nil), c.Errors...)
	out.Warnings = append([]string(nil), c.Warnings...)
	return out
}

// Snapshot is an immutable view of the machine after an event was processed.
type Snapshot struct {
	State   lifecycle.State
	Context Context
	// Seq increases with every processed event that changed the snapshot.
	Seq uint64
}

// Matches reports whether the snapshot is in one of states.
func (s Snapshot) Matches(states ...lifecycle.State) bool {
	for _, st := range states {
		if s.State == st {
			return true
		}
	}
	return false
}
