// Package ratelimit provides request pacing for upstream provider calls.
//
// Pacing is expressed as a token bucket rather than fixed sleeps so that
// batch jobs can be unit-tested with a fake pacer and no wall-clock
// delays.
package ratelimit

import (
	"context"

	"golang.org/x/time/rate"
)

// Pacer gates the start of each upstream call.
type Pacer interface {
	// Wait blocks until the next call is allowed or ctx is done.
	Wait(ctx context.Context) error
}

// TokenBucket paces calls at a fixed sustained rate.
type TokenBucket struct {
	limiter *rate.Limiter
}

// NewTokenBucket creates a pacer allowing perSec calls per second with
// a burst of one, which serializes calls at a steady interval.
func NewTokenBucket(perSec float64) *TokenBucket {
	return &TokenBucket{
		limiter: rate.NewLimiter(rate.Limit(perSec), 1),
	}
}

// Wait blocks until a token is available
func (t *TokenBucket) Wait(ctx context.Context) error {
	return t.limiter.Wait(ctx)
}

// Nop is a pacer that never waits. Used in tests and one-off CLI calls.
type Nop struct{}

// Wait returns immediately
func (Nop) Wait(ctx context.Context) error {
	return ctx.Err()
}
