// Package retry provides connect-time retry with exponential backoff.
// Retrying is reserved for establishing the connection; statement
// execution is never retried automatically, re-running a failed script
// is an operator decision.
package retry

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// Backoff computes delays for retry attempts: initial * multiplier^attempt,
// capped at max, with a small random jitter to avoid lockstep reconnects.
type Backoff struct {
	Initial     time.Duration
	Max         time.Duration
	Multiplier  float64
	MaxAttempts int

	// Jitter is the +/- fraction of randomness applied to each delay.
	Jitter float64

	// rand returns values in [0, 1); tests replace it for determinism.
	rand func() float64
}

// DefaultBackoff returns the backoff used for connection establishment:
// 3 attempts starting at 100ms, doubling, capped at 5s.
func DefaultBackoff() Backoff {
	return Backoff{
		Initial:     100 * time.Millisecond,
		Max:         5 * time.Second,
		Multiplier:  2.0,
		MaxAttempts: 3,
		Jitter:      0.1,
	}
}

// Delay returns the delay before the given zero-based retry attempt.
func (b Backoff) Delay(attempt int) time.Duration {
	ms := float64(b.Initial.Milliseconds()) * math.Pow(b.Multiplier, float64(attempt))
	if maxMs := float64(b.Max.Milliseconds()); ms > maxMs {
		ms = maxMs
	}
	if b.Jitter > 0 {
		rnd := b.rand
		if rnd == nil {
			rnd = rand.Float64
		}
		ms *= 1.0 + b.Jitter*(rnd()-0.5)*2.0
	}
	return time.Duration(ms) * time.Millisecond
}

// Do runs fn, retrying transient failures per the backoff schedule.
// Non-transient errors and context cancellation stop immediately.
func Do(ctx context.Context, b Backoff, fn func(context.Context) error) error {
	var err error
	for attempt := 0; ; attempt++ {
		err = fn(ctx)
		if err == nil {
			return nil
		}
		if attempt >= b.MaxAttempts-1 || !Transient(err) {
			return err
		}

		timer := time.NewTimer(b.Delay(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
