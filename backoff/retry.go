package backoff

import (
	"context"
	"time"
)

// Policy configures Retry.
type Policy struct {
	// MaxAttempts is the total number of attempts, including the first.
	// Default: 3
	MaxAttempts int

	// Base is the delay before the first retry.
	// Default: 400ms
	Base time.Duration

	// Jitter is the jitter ratio applied to each delay.
	// Default: 0.25
	Jitter float64

	// Max caps each computed delay.
	// Default: DefaultMaxDelay
	Max time.Duration
}

// DefaultPolicy returns the default retry policy.
//
// Returns:
//   - Policy: Default policy matching the replay engine defaults
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 3,
		Base:        400 * time.Millisecond,
		Jitter:      0.25,
		Max:         DefaultMaxDelay,
	}
}

// Retry runs fn until it succeeds, the attempt budget is exhausted, or
// the context is canceled, sleeping the computed backoff delay between
// attempts.
//
// It is the sibling utility to the replay engine for direct backend
// calls: same delay curve, same defaults, but for a single operation
// rather than a queue.
//
// Parameters:
//   - ctx: Context for cancellation; checked before each attempt and
//     during each backoff sleep
//   - policy: Retry policy; zero fields take their defaults
//   - fn: The operation to attempt
//
// Returns:
//   - error: nil once fn succeeds, ctx.Err() on cancellation, or the
//     last fn error when the budget is exhausted
func Retry(ctx context.Context, policy Policy, fn func(ctx context.Context) error) error {
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = 3
	}
	if policy.Base <= 0 {
		policy.Base = 400 * time.Millisecond
	}
	if policy.Max <= 0 {
		policy.Max = DefaultMaxDelay
	}

	var lastErr error
	for attempt := 0; attempt < policy.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}

		if attempt == policy.MaxAttempts-1 {
			break
		}

		delay := DelayMax(policy.Base, attempt, policy.Jitter, policy.Max)
		if err := Sleep(ctx, delay); err != nil {
			return err
		}
	}

	return lastErr
}

// Sleep waits for d or until the context is canceled, whichever comes
// first.
//
// Returns:
//   - error: ctx.Err() on cancellation, nil after a full sleep
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
