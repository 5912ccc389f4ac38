// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package machine runs the session lifecycle as a single-goroutine actor.
//
// Every state change happens while processing one event from the mailbox.
// Service calls run as invoked tasks in their own goroutines and report back
// through the mailbox; a generation counter drops completions that arrive
// after the machine has already left the state that invoked them.
package machine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ManuGH/recap/internal/domain/session/lifecycle"
	"github.com/ManuGH/recap/internal/domain/session/model"
	"github.com/ManuGH/recap/internal/domain/session/ports"
	"github.com/ManuGH/recap/internal/log"
	"github.com/ManuGH/recap/internal/metrics"
)

var (
	ErrStopped        = errors.New("session machine stopped")
	ErrNotPublicEvent = errors.New("event kind is not accepted from callers")
)

const (
	DefaultHealthInterval = 10 * time.Second
	DefaultActionTimeout  = 30 * time.Second
	mailboxSize           = 64
	subscriberBuffer      = 16
)

// Deps are the collaborators the machine invokes.
type Deps struct {
	Services    ports.Services
	Permissions ports.PermissionChecker
	// Devices is optional; without it audio devices are not probed.
	Devices ports.AudioDeviceProber
	// Storage is optional; if it implements ports.Flusher it is flushed on END.
	Storage ports.Storage
}

// Options tune timing and identity generation.
type Options struct {
	HealthInterval time.Duration
	// ActionTimeout bounds each invoked task. Negative disables the bound.
	ActionTimeout time.Duration
	Now           func() time.Time
	NewSessionID  func() string
	Logger        *zerolog.Logger
}

func (o Options) withDefaults() Options {
	if o.HealthInterval <= 0 {
		o.HealthInterval = DefaultHealthInterval
	}
	if o.ActionTimeout == 0 {
		o.ActionTimeout = DefaultActionTimeout
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.NewSessionID == nil {
		o.NewSessionID = model.NewSessionID
	}
	return o
}

// Machine is the session lifecycle actor.
type Machine struct {
	deps   Deps
	opts   Options
	logger zerolog.Logger

	mailbox chan Event
	quit    chan struct{}
	done    chan struct{}
	closeMu sync.Once

	baseCtx    context.Context
	cancelBase context.CancelFunc
	tasks      sync.WaitGroup

	// owned by the actor goroutine
	state         lifecycle.State
	data          Context
	gen           uint64
	seq           uint64
	cancelMonitor context.CancelFunc

	mu          sync.RWMutex
	snap        Snapshot
	subscribers map[int]chan Snapshot
	nextSubID   int
}

// New creates the machine in idle and starts its actor goroutine.
func New(deps Deps, opts Options) *Machine {
	opts = opts.withDefaults()
	logger := log.WithComponent("machine")
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	baseCtx, cancel := context.WithCancel(context.Background())
	m := &Machine{
		deps:        deps,
		opts:        opts,
		logger:      logger,
		mailbox:     make(chan Event, mailboxSize),
		quit:        make(chan struct{}),
		done:        make(chan struct{}),
		baseCtx:     baseCtx,
		cancelBase:  cancel,
		state:       lifecycle.StateIdle,
		data:        defaultContext(),
		subscribers: make(map[int]chan Snapshot),
	}
	m.snap = Snapshot{State: m.state, Context: m.data.clone()}
	go m.run()
	return m
}

// Send enqueues a public event. It returns once the event is queued, not
// once it is processed. Events the current state does not accept are
// dropped without error.
func (m *Machine) Send(ev Event) error {
	if !ev.Kind.IsPublic() {
		return fmt.Errorf("%w: %s", ErrNotPublicEvent, ev.Kind)
	}
	ev.internal = false
	ev.result = nil
	select {
	case <-m.quit:
		return ErrStopped
	default:
	}
	select {
	case m.mailbox <- ev:
		return nil
	case <-m.quit:
		return ErrStopped
	}
}

// Snapshot returns the state after the most recently processed event.
func (m *Machine) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Snapshot{State: m.snap.State, Context: m.snap.Context.clone(), Seq: m.snap.Seq}
}

// Subscribe returns a channel receiving a snapshot after every processed
// event. Slow subscribers lose the oldest buffered snapshots. The channel is
// closed by cancel or when the machine stops.
func (m *Machine) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, subscriberBuffer)
	m.mu.Lock()
	select {
	case <-m.done:
		m.mu.Unlock()
		close(ch)
		return ch, func() {}
	default:
	}
	id := m.nextSubID
	m.nextSubID++
	m.subscribers[id] = ch
	m.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			m.mu.Lock()
			if c, ok := m.subscribers[id]; ok {
				delete(m.subscribers, id)
				close(c)
			}
			m.mu.Unlock()
		})
	}
}

// WaitForState blocks until the machine reaches one of states.
func (m *Machine) WaitForState(ctx context.Context, states ...lifecycle.State) (Snapshot, error) {
	ch, cancel := m.Subscribe()
	defer cancel()

	if s := m.Snapshot(); s.Matches(states...) {
		return s, nil
	}
	for {
		select {
		case s, ok := <-ch:
			if !ok {
				return m.Snapshot(), ErrStopped
			}
			if s.Matches(states...) {
				return s, nil
			}
		case <-ctx.Done():
			return m.Snapshot(), ctx.Err()
		}
	}
}

// Stop disposes the actor: the health monitor and in-flight tasks are
// cancelled and Stop waits for them to return. It is safe to call twice.
func (m *Machine) Stop() {
	m.closeMu.Do(func() {
		close(m.quit)
		m.cancelBase()
	})
	<-m.done
	m.tasks.Wait()
}

func (m *Machine) run() {
	defer func() {
		m.stopMonitor()
		m.mu.Lock()
		close(m.done)
		for id, ch := range m.subscribers {
			close(ch)
			delete(m.subscribers, id)
		}
		m.mu.Unlock()
	}()

	for {
		select {
		case <-m.quit:
			return
		case ev := <-m.mailbox:
			m.handle(ev)
		}
	}
}

// deliver hands a task completion back to the actor.
func (m *Machine) deliver(ev Event) bool {
	select {
	case m.mailbox <- ev:
		return true
	case <-m.quit:
		return false
	}
}

func (m *Machine) handle(ev Event) {
	if ev.internal && ev.gen != m.gen {
		m.logger.Debug().
			Str(log.FieldEvent, string(ev.Kind)).
			Str("state", string(m.state)).
			Str("reason", lifecycle.IgnoredStaleCompletion).
			Msg("dropped stale task completion")
		metrics.IncSessionEventIgnored(string(m.state), string(ev.Kind))
		return
	}

	tr, ok := lifecycle.TransitionFor(m.state, ev.Kind)
	if !ok {
		d := lifecycle.DecisionFor(m.state, ev.Kind)
		m.logger.Debug().
			Str(log.FieldEvent, string(ev.Kind)).
			Str("state", string(m.state)).
			Str("reason", d.Reason).
			Msg("event ignored")
		metrics.IncSessionEventIgnored(string(m.state), string(ev.Kind))
		return
	}

	if tr.Internal {
		m.apply(ev)
		m.publish()
		return
	}

	from := m.state
	m.exit(from)
	m.apply(ev)
	m.state = tr.To
	m.gen++
	metrics.IncSessionTransition(string(from), string(tr.To))
	m.logger.Info().
		Str(log.FieldSessionID, m.data.SessionID).
		Str(log.FieldEvent, string(ev.Kind)).
		Str(log.FieldOldState, string(from)).
		Str(log.FieldNewState, string(tr.To)).
		Msg("session state changed")
	m.publish()
	m.enter(tr.To)
}

// apply runs the transition actions for ev against the machine context.
func (m *Machine) apply(ev Event) {
	switch ev.Kind {
	case lifecycle.EvStart:
		m.data = defaultContext()
		m.data.Config = ev.Config
		m.data.Session = ev.Session
		m.data.Callbacks = ev.Callbacks

	case lifecycle.EvUpdateRecordingState:
		m.data.Recording = m.data.Recording.Merge(ev.Update)

	case lifecycle.EvValidated:
		m.data.SessionID = ev.result.sessionID
		if ev.result.config != nil {
			m.data.Config = *ev.result.config
		}
		m.data.Warnings = append(m.data.Warnings, ev.result.warnings...)

	case lifecycle.EvServicesStarted:
		m.data.StartTime = ev.result.at
		m.data.Recording = ev.result.recording

	case lifecycle.EvServicesPaused, lifecycle.EvServicesResumed:
		m.data.Recording = ev.result.recording

	case lifecycle.EvServicesStopped:
		m.data.EndTime = ev.result.at
		m.data.Recording = ev.result.recording

	case lifecycle.EvValidationFailed, lifecycle.EvPermissionsDenied,
		lifecycle.EvStartFailed, lifecycle.EvPauseFailed, lifecycle.EvResumeFailed:
		if ev.result == nil {
			return
		}
		if ev.result.recording != (model.RecordingState{}) {
			m.data.Recording = ev.result.recording
		}
		for _, e := range ev.result.errs {
			m.data.Errors = append(m.data.Errors, e.Message)
			m.data.ErrorKind = e.Kind
		}

	case lifecycle.EvRetry, lifecycle.EvDismiss, lifecycle.EvReset, lifecycle.EvAutoIdle:
		m.data = defaultContext()
	}
}

func (m *Machine) exit(from lifecycle.State) {
	if from == lifecycle.StateActive {
		m.stopMonitor()
	}
}

func (m *Machine) enter(to lifecycle.State) {
	cfg := m.data.Config.Clone()
	switch to {
	case lifecycle.StateValidating:
		m.invoke(lifecycle.EvValidationFailed, ErrorKindValidation, m.validateTask(cfg))
	case lifecycle.StateCheckingPermissions:
		m.invoke(lifecycle.EvPermissionsDenied, ErrorKindPermission, m.permissionsTask(cfg))
	case lifecycle.StateStarting:
		m.invoke(lifecycle.EvStartFailed, ErrorKindServiceStart, m.startTask(m.handleFor(cfg)))
	case lifecycle.StateActive:
		m.startMonitor(cfg)
	case lifecycle.StatePausing:
		m.invoke(lifecycle.EvPauseFailed, ErrorKindServicePause, m.pauseTask(cfg, m.data.Recording))
	case lifecycle.StateResuming:
		m.invoke(lifecycle.EvResumeFailed, ErrorKindServiceResume, m.resumeTask(cfg, m.data.Recording))
	case lifecycle.StateEnding:
		m.invoke(lifecycle.EvServicesStopped, ErrorKindNone, m.stopTask(cfg))
	case lifecycle.StateCompleted:
		// completed is final for this session; the machine is ready for a new START
		m.handle(Event{Kind: lifecycle.EvAutoIdle, internal: true, gen: m.gen})
	}
}

func (m *Machine) handleFor(cfg model.SessionConfig) ports.SessionHandle {
	return ports.SessionHandle{
		SessionID: m.data.SessionID,
		Config:    cfg,
		Session:   m.data.Session,
		Callbacks: m.data.Callbacks,
	}
}

// invoke runs fn in its own goroutine and feeds its completion event back,
// tagged with the generation of the state that invoked it. A panic in fn is
// reported as failKind.
func (m *Machine) invoke(failKind lifecycle.EventKind, errKind ErrorKind, fn func(ctx context.Context) Event) {
	gen := m.gen
	ctx := m.baseCtx
	var cancel context.CancelFunc = func() {}
	if m.opts.ActionTimeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, m.opts.ActionTimeout)
	}
	ctx = log.ContextWithSessionID(ctx, m.data.SessionID)

	m.tasks.Add(1)
	go func() {
		defer m.tasks.Done()
		defer cancel()

		ev := func() (ev Event) {
			defer func() {
				if r := recover(); r != nil {
					m.logger.Error().Interface("panic", r).Str(log.FieldEvent, string(failKind)).Msg("invoked task panicked")
					ev = failure(failKind, errKind, fmt.Sprintf("internal error: %v", r))
				}
			}()
			return fn(ctx)
		}()
		ev.internal = true
		ev.gen = gen
		m.deliver(ev)
	}()
}

func (m *Machine) publish() {
	m.seq++
	snap := Snapshot{State: m.state, Context: m.data.clone(), Seq: m.seq}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap = snap
	for _, ch := range m.subscribers {
		select {
		case ch <- snap:
			continue
		default:
		}
		// drop the oldest buffered snapshot to make room
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snap:
		default:
		}
	}
}

func failure(kind lifecycle.EventKind, errKind ErrorKind, msgs ...string) Event {
	res := &taskResult{}
	for _, msg := range msgs {
		res.errs = append(res.errs, MachineError{Kind: errKind, Message: msg})
	}
	return Event{Kind: kind, result: res}
}
