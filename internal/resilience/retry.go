// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package resilience

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// RetryPolicy bounds exponential backoff for a collaborator call.
type RetryPolicy struct {
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	// OnRetry, if set, is called before each wait.
	OnRetry func(attempt int, err error, wait time.Duration)
}

func (p RetryPolicy) newBackOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	if p.InitialBackoff > 0 {
		b.InitialInterval = p.InitialBackoff
	}
	if p.MaxBackoff > 0 {
		b.MaxInterval = p.MaxBackoff
	}
	b.Multiplier = 2
	return b
}

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	return backoff.Permanent(err)
}

// Retry runs fn until it succeeds, returns a permanent error, ctx ends, or
// the policy's retry budget is spent. The last error is returned.
func Retry[T any](ctx context.Context, p RetryPolicy, fn func(context.Context) (T, error)) (T, error) {
	retries := p.MaxRetries
	if retries < 0 {
		retries = 0
	}
	attempt := 0
	op := func() (T, error) {
		attempt++
		v, err := fn(ctx)
		if err != nil && errors.Is(err, ErrCircuitOpen) {
			return v, backoff.Permanent(err)
		}
		return v, err
	}
	opts := []backoff.RetryOption{
		backoff.WithBackOff(p.newBackOff()),
		backoff.WithMaxTries(uint(retries + 1)),
		backoff.WithMaxElapsedTime(0),
	}
	if p.OnRetry != nil {
		opts = append(opts, backoff.WithNotify(func(err error, wait time.Duration) {
			p.OnRetry(attempt, err, wait)
		}))
	}
	return backoff.Retry(ctx, op, opts...)
}
