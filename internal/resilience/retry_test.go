// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func fastPolicy(retries int) RetryPolicy {
	return RetryPolicy{MaxRetries: retries, InitialBackoff: time.Millisecond, MaxBackoff: 5 * time.Millisecond}
}

func TestRetry_SucceedsAfterFailures(t *testing.T) {
	calls := 0
	var notified []int
	p := fastPolicy(2)
	p.OnRetry = func(attempt int, _ error, _ time.Duration) { notified = append(notified, attempt) }

	v, err := Retry(context.Background(), p, func(context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", errBoom
		}
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []int{1, 2}, notified)
}

func TestRetry_ExhaustsBudget(t *testing.T) {
	calls := 0
	_, err := Retry(context.Background(), fastPolicy(2), func(context.Context) (int, error) {
		calls++
		return 0, errBoom
	})
	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, 3, calls, "first attempt plus two retries")
}

func TestRetry_PermanentStopsImmediately(t *testing.T) {
	calls := 0
	_, err := Retry(context.Background(), fastPolicy(5), func(context.Context) (int, error) {
		calls++
		return 0, Permanent(errBoom)
	})
	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, 1, calls)
}

func TestRetry_ZeroRetries(t *testing.T) {
	calls := 0
	_, err := Retry(context.Background(), fastPolicy(0), func(context.Context) (int, error) {
		calls++
		return 0, errBoom
	})
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestGuard_OpenBreakerEndsRetries(t *testing.T) {
	cb := NewCircuitBreaker("test-guard", 1, time.Hour)
	g := Guard{Breaker: cb, Policy: fastPolicy(3), Limiter: rate.NewLimiter(rate.Inf, 1)}

	calls := 0
	_, err := Do(context.Background(), g, func(context.Context) (int, error) {
		calls++
		return 0, errBoom
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCircuitOpen), "second attempt is rejected by the open breaker")
	assert.Equal(t, 1, calls)
}

func TestGuard_LimiterHonoursContext(t *testing.T) {
	lim := rate.NewLimiter(rate.Every(time.Hour), 1)
	require.True(t, lim.Allow())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := Do(ctx, Guard{Limiter: lim, Policy: fastPolicy(2)}, func(context.Context) (int, error) {
		return 1, nil
	})
	require.Error(t, err)
}
