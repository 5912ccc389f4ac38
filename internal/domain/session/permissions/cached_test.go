// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package permissions

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/recap/internal/cache"
	"github.com/ManuGH/recap/internal/domain/session/ports"
)

type countingChecker struct {
	mu       sync.Mutex
	screen   bool
	mic      bool
	err      error
	calls    map[string]int
	requests int
}

func newCountingChecker() *countingChecker {
	return &countingChecker{screen: true, mic: true, calls: map[string]int{}}
}

func (c *countingChecker) HasScreenRecordingPermission(context.Context) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls["screen"]++
	return c.screen, c.err
}

func (c *countingChecker) HasMicrophonePermission(context.Context) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls["mic"]++
	return c.mic, c.err
}

func (c *countingChecker) RequestMicrophonePermission(context.Context) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.requests++
	c.mic = true
	return true, nil
}

func (c *countingChecker) set(screen, mic bool) {
	c.mu.Lock()
	c.screen, c.mic = screen, mic
	c.mu.Unlock()
}

func (c *countingChecker) count(k string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[k]
}

func TestCachedChecker_CachesWithinTTL(t *testing.T) {
	inner := newCountingChecker()
	mem := cache.NewMemoryCache(0)
	defer func() { _ = mem.Close() }()
	c := NewCachedChecker(inner, mem, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := c.HasScreenRecordingPermission(ctx)
		require.NoError(t, err)
		assert.True(t, ok)
	}
	assert.Equal(t, 1, inner.count("screen"))
}

func TestCachedChecker_InvalidateSeesRevocation(t *testing.T) {
	inner := newCountingChecker()
	mem := cache.NewMemoryCache(0)
	defer func() { _ = mem.Close() }()
	c := NewCachedChecker(inner, mem, time.Minute)
	ctx := context.Background()

	ok, _ := c.HasMicrophonePermission(ctx)
	require.True(t, ok)

	inner.set(true, false)
	ok, _ = c.HasMicrophonePermission(ctx)
	assert.True(t, ok, "stale value is served until invalidated")

	c.Invalidate(ports.PermissionMicrophone)
	ok, _ = c.HasMicrophonePermission(ctx)
	assert.False(t, ok)

	inner.set(false, false)
	c.InvalidateAll()
	ok, _ = c.HasScreenRecordingPermission(ctx)
	assert.False(t, ok)
}

func TestCachedChecker_ErrorsAreNotCached(t *testing.T) {
	inner := newCountingChecker()
	inner.err = errors.New("tcc unavailable")
	mem := cache.NewMemoryCache(0)
	defer func() { _ = mem.Close() }()
	c := NewCachedChecker(inner, mem, time.Minute)

	_, err := c.HasScreenRecordingPermission(context.Background())
	require.Error(t, err)
	_, err = c.HasScreenRecordingPermission(context.Background())
	require.Error(t, err)
	assert.Equal(t, 2, inner.count("screen"))
}

func TestCachedChecker_RequestRefreshesCache(t *testing.T) {
	inner := newCountingChecker()
	inner.set(true, false)
	mem := cache.NewMemoryCache(0)
	defer func() { _ = mem.Close() }()
	c := NewCachedChecker(inner, mem, time.Minute)
	ctx := context.Background()

	ok, _ := c.HasMicrophonePermission(ctx)
	require.False(t, ok)

	granted, err := c.RequestMicrophonePermission(ctx)
	require.NoError(t, err)
	assert.True(t, granted)

	ok, _ = c.HasMicrophonePermission(ctx)
	assert.True(t, ok)
	assert.Equal(t, 1, inner.count("mic"), "request result is served from cache")
}

func TestCachedChecker_RedisBackend(t *testing.T) {
	mr := miniredis.RunT(t)
	rc := cache.NewRedisCache(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "recap:perm:", zerolog.Nop())
	defer func() { _ = rc.Close() }()

	inner := newCountingChecker()
	c := NewCachedChecker(inner, rc, 5*time.Second)
	ctx := context.Background()

	ok, err := c.HasScreenRecordingPermission(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = c.HasScreenRecordingPermission(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, inner.count("screen"))

	mr.FastForward(6 * time.Second)
	_, _ = c.HasScreenRecordingPermission(ctx)
	assert.Equal(t, 2, inner.count("screen"))
}
