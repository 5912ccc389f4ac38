// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package resilience

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// Guard wraps collaborator calls with a shared rate limiter, a per-collaborator
// circuit breaker and a retry policy. Any of the three may be nil or zero.
type Guard struct {
	Limiter *rate.Limiter
	Breaker *CircuitBreaker
	Policy  RetryPolicy
}

// Do runs fn under the guard. Each attempt waits for a limiter token and
// passes through the breaker; an open breaker ends retries immediately.
func Do[T any](ctx context.Context, g Guard, fn func(context.Context) (T, error)) (T, error) {
	attempt := func(ctx context.Context) (T, error) {
		var zero T
		if g.Limiter != nil {
			if err := g.Limiter.Wait(ctx); err != nil {
				return zero, Permanent(fmt.Errorf("rate limiter: %w", err))
			}
		}
		if g.Breaker == nil {
			return fn(ctx)
		}
		var out T
		err := g.Breaker.ExecuteContext(ctx, func(ctx context.Context) error {
			v, err := fn(ctx)
			out = v
			return err
		})
		return out, err
	}
	return Retry(ctx, g.Policy, attempt)
}
