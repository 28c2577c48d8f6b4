// Package backoff provides the shared retry delay computation used by the
// replay engine and by direct backend calls.
package backoff

import (
	"math"
	"math/rand/v2"
	"time"
)

// DefaultMaxDelay caps the computed delay regardless of attempt count or
// jitter.
const DefaultMaxDelay = 30 * time.Second

// Delay computes the wait before the next retry using exponential growth
// with multiplicative jitter, capped at DefaultMaxDelay.
//
// The raw delay is base * 2^attempt, where attempt is the zero-based
// count of prior failed attempts (the first retry uses attempt 0, i.e.
// the base delay). The result is perturbed by 1 + jitter*(r-0.5) with r
// uniform in [0,1), then clamped into [0, DefaultMaxDelay]. With jitter 0
// the result is deterministic.
//
// Parameters:
//   - base: Base delay for the first retry
//   - attempt: Zero-based prior failure count
//   - jitter: Jitter ratio, typically 0.25 for +/-12.5%
//
// Returns:
//   - time.Duration: The delay, never negative
func Delay(base time.Duration, attempt int, jitter float64) time.Duration {
	return DelayMax(base, attempt, jitter, DefaultMaxDelay)
}

// DelayMax is Delay with a caller-supplied maximum.
//
// Misconfigured inputs never produce a negative or NaN delay: negative
// base, negative jitter overshoot, and overflow all clamp to the [0, max]
// range.
//
// Parameters:
//   - base: Base delay for the first retry
//   - attempt: Zero-based prior failure count
//   - jitter: Jitter ratio
//   - max: Upper bound applied after jitter
//
// Returns:
//   - time.Duration: The delay, within [0, max]
func DelayMax(base time.Duration, attempt int, jitter float64, max time.Duration) time.Duration {
	return delayWithRand(base, attempt, jitter, max, rand.Float64)
}

// delayWithRand computes the jittered delay from an injected random
// source. Tests pass a fixed source for determinism.
func delayWithRand(base time.Duration, attempt int, jitter float64, max time.Duration, rng func() float64) time.Duration {
	if base < 0 {
		base = 0
	}
	if attempt < 0 {
		attempt = 0
	}
	if max < 0 {
		max = 0
	}

	raw := float64(base) * math.Pow(2, float64(attempt))
	d := raw * (1 + jitter*(rng()-0.5))

	if math.IsNaN(d) || d < 0 {
		return 0
	}
	if d > float64(max) {
		return max
	}

	return time.Duration(d)
}
