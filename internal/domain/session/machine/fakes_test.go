// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package machine

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/ManuGH/recap/internal/domain/session/ports"
)

type fakeService struct {
	mu        sync.Mutex
	startErr  error
	stopErr   error
	pauseErr  error
	resumeErr error
	starts    int
	stops     int
	pauses    int
	resumes   int
	handle    ports.SessionHandle
	startGate chan struct{}

	dead       atomic.Bool
	panicAlive atomic.Bool
	aliveCalls atomic.Int64
}

func (f *fakeService) Start(ctx context.Context, h ports.SessionHandle) error {
	if f.startGate != nil {
		select {
		case <-f.startGate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.starts++
	f.handle = h
	return f.startErr
}

func (f *fakeService) Stop(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops++
	return f.stopErr
}

func (f *fakeService) Pause(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pauses++
	return f.pauseErr
}

func (f *fakeService) Resume(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resumes++
	return f.resumeErr
}

func (f *fakeService) IsAlive() bool {
	f.aliveCalls.Add(1)
	if f.panicAlive.Load() {
		panic("probe exploded")
	}
	return !f.dead.Load()
}

func (f *fakeService) counts() (starts, stops, pauses, resumes int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.starts, f.stops, f.pauses, f.resumes
}

type fakePermissions struct {
	mu           sync.Mutex
	screen       bool
	mic          bool
	grantOnAsk   bool
	screenErr    error
	screenChecks int
	micChecks    int
	micRequests  int
	invalidated  int
}

func (p *fakePermissions) HasScreenRecordingPermission(context.Context) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.screenChecks++
	return p.screen, p.screenErr
}

func (p *fakePermissions) HasMicrophonePermission(context.Context) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.micChecks++
	return p.mic, nil
}

func (p *fakePermissions) RequestMicrophonePermission(context.Context) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.micRequests++
	if p.grantOnAsk {
		p.mic = true
	}
	return p.mic, nil
}

func (p *fakePermissions) Invalidate(ports.PermissionKind) {}

func (p *fakePermissions) InvalidateAll() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.invalidated++
}

func (p *fakePermissions) set(screen, mic bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.screen, p.mic = screen, mic
}

func (p *fakePermissions) checks() (screen, mic, requests int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.screenChecks, p.micChecks, p.micRequests
}

type flushingStorage struct {
	flushes atomic.Int64
}

func (s *flushingStorage) Load(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (s *flushingStorage) Save(context.Context, string, []byte) error         { return nil }
func (s *flushingStorage) Flush(context.Context) error {
	s.flushes.Add(1)
	return nil
}

type staticDevices struct {
	inputs []ports.AudioDevice
}

func (d staticDevices) InputDevices(context.Context) ([]ports.AudioDevice, error) {
	return d.inputs, nil
}

func (d staticDevices) OutputDevices(context.Context) ([]ports.AudioDevice, error) {
	return nil, nil
}
