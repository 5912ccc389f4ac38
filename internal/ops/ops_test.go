// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package ops

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/recap/internal/domain/session/model"
	"github.com/ManuGH/recap/internal/domain/session/store"
	"github.com/ManuGH/recap/internal/enrichment"
	"github.com/ManuGH/recap/internal/enrichment/cost"
)

type fakeEnrichment struct {
	mu          sync.Mutex
	checkpoints map[string]*model.EnrichmentCheckpoint
	cancelled   []string
	lastOpts    enrichment.Options
	cancelErr   error
}

func (f *fakeEnrichment) CanEnrich(rec *model.SessionRecord) enrichment.Capability {
	return enrichment.CanEnrich(rec)
}

func (f *fakeEnrichment) EstimateCost(_ *model.SessionRecord, opts enrichment.Options) (cost.Estimate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastOpts = opts
	return cost.Estimate{Audio: 0.25, Total: 0.25, ExceedsThreshold: opts.MaxCost > 0 && opts.MaxCost < 0.25}, nil
}

func (f *fakeEnrichment) Checkpoint(_ context.Context, id string) (*model.EnrichmentCheckpoint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp, ok := f.checkpoints[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", enrichment.ErrCheckpointNotFound, id)
	}
	return cp, nil
}

func (f *fakeEnrichment) Cancel(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelled = append(f.cancelled, id)
	return f.cancelErr
}

type fakeSessions map[string]*model.SessionRecord

func (s fakeSessions) Get(_ context.Context, id string) (*model.SessionRecord, error) {
	rec, ok := s[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", store.ErrSessionNotFound, id)
	}
	return rec, nil
}

func newTestServer(t *testing.T, mutate func(*Config, *Deps)) (*Server, *fakeEnrichment) {
	t.Helper()
	enr := &fakeEnrichment{checkpoints: map[string]*model.EnrichmentCheckpoint{
		"s1": {ID: "ckpt-s1-abcd", SessionID: "s1", Stage: model.StageAudio, Progress: 30, CanResume: true},
	}}
	cfg := Config{Addr: "127.0.0.1:0"}
	deps := Deps{
		Enrichment: enr,
		Sessions: fakeSessions{"s1": {
			ID:            "s1",
			AudioSegments: []model.AudioSegment{{ID: "a", Duration: 120}},
		}},
	}
	if mutate != nil {
		mutate(&cfg, &deps)
	}
	return New(cfg, deps), enr
}

func do(t *testing.T, h http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(method, target, nil))
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body
}

func TestProbes(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rr := do(t, srv.Handler(), http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.NotEmpty(t, rr.Header().Get(headerCorrelationID))

	rr = do(t, srv.Handler(), http.MethodGet, "/readyz")
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = do(t, srv.Handler(), http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestReadyz_ReportsBackendFailure(t *testing.T) {
	srv, _ := newTestServer(t, func(_ *Config, d *Deps) {
		d.Ready = func(context.Context) error { return errors.New("sqlite unreachable") }
	})

	rr := do(t, srv.Handler(), http.MethodGet, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Equal(t, "not_ready", decodeError(t, rr).Error)
}

func TestCorrelationIDIsPropagated(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(headerCorrelationID, "corr-42")
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, req)
	assert.Equal(t, "corr-42", rr.Header().Get(headerCorrelationID))
}

func TestCapability(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rr := do(t, srv.Handler(), http.MethodGet, "/api/v1/sessions/s1/capability")
	require.Equal(t, http.StatusOK, rr.Code)
	var c enrichment.Capability
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &c))
	assert.True(t, c.Audio)
	assert.False(t, c.Video)
	assert.Len(t, c.Reasons, 1)

	rr = do(t, srv.Handler(), http.MethodGet, "/api/v1/sessions/missing/capability")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "session_not_found", decodeError(t, rr).Error)

	rr = do(t, srv.Handler(), http.MethodGet, "/api/v1/sessions/bad.id/capability")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestEstimate(t *testing.T) {
	srv, enr := newTestServer(t, nil)

	rr := do(t, srv.Handler(), http.MethodGet, "/api/v1/sessions/s1/estimate?maxCost=0.1&video=false")
	require.Equal(t, http.StatusOK, rr.Code)
	var est cost.Estimate
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &est))
	assert.True(t, est.ExceedsThreshold)
	assert.InDelta(t, 0.1, enr.lastOpts.MaxCost, 1e-9)
	assert.False(t, enr.lastOpts.IncludeVideo)
	assert.True(t, enr.lastOpts.IncludeAudio)

	tests := []struct {
		name  string
		query string
		code  string
	}{
		{"negative max cost", "maxCost=-1", "invalid_max_cost"},
		{"non-numeric max cost", "maxCost=abc", "invalid_max_cost"},
		{"bad flag", "audio=maybe", "invalid_flag"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, srv.Handler(), http.MethodGet, "/api/v1/sessions/s1/estimate?"+tt.query)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Equal(t, tt.code, decodeError(t, rr).Error)
		})
	}
}

func TestCheckpoint(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rr := do(t, srv.Handler(), http.MethodGet, "/api/v1/sessions/s1/checkpoint")
	require.Equal(t, http.StatusOK, rr.Code)
	var cp model.EnrichmentCheckpoint
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &cp))
	assert.Equal(t, "ckpt-s1-abcd", cp.ID)
	assert.True(t, cp.CanResume)

	rr = do(t, srv.Handler(), http.MethodGet, "/api/v1/sessions/s2/checkpoint")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "checkpoint_not_found", decodeError(t, rr).Error)
}

func TestCancel(t *testing.T) {
	srv, enr := newTestServer(t, nil)

	rr := do(t, srv.Handler(), http.MethodPost, "/api/v1/sessions/s1/enrichment/cancel")
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, []string{"s1"}, enr.cancelled)

	rr = do(t, srv.Handler(), http.MethodGet, "/api/v1/sessions/s1/enrichment/cancel")
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)

	enr.cancelErr = errors.New("lock backend down")
	rr = do(t, srv.Handler(), http.MethodPost, "/api/v1/sessions/s1/enrichment/cancel")
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "internal", decodeError(t, rr).Error)
}

func TestAPIRateLimit(t *testing.T) {
	srv, _ := newTestServer(t, func(c *Config, _ *Deps) { c.APIRateLimit = 2 })

	for i := 0; i < 2; i++ {
		rr := do(t, srv.Handler(), http.MethodGet, "/api/v1/sessions/s1/capability")
		require.Equal(t, http.StatusOK, rr.Code)
	}
	rr := do(t, srv.Handler(), http.MethodGet, "/api/v1/sessions/s1/capability")
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "60", rr.Header().Get("Retry-After"))
	assert.Equal(t, "rate_limit_exceeded", decodeError(t, rr).Error)

	// probes are outside the limited group
	rr = do(t, srv.Handler(), http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
