package backoff_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tytsxai/telegram-ui-builder/backoff"
)

func fastPolicy(attempts int) backoff.Policy {
	return backoff.Policy{
		MaxAttempts: attempts,
		Base:        time.Millisecond,
		Jitter:      0,
		Max:         5 * time.Millisecond,
	}
}

func TestRetrySucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := backoff.Retry(context.Background(), fastPolicy(3), func(_ context.Context) error {
		calls++

		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetryRecoversAfterFailures(t *testing.T) {
	calls := 0
	err := backoff.Retry(context.Background(), fastPolicy(3), func(_ context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("flaky")
		}

		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryExhaustsBudget(t *testing.T) {
	sentinel := errors.New("still down")
	calls := 0
	err := backoff.Retry(context.Background(), fastPolicy(3), func(_ context.Context) error {
		calls++

		return sentinel
	})

	require.ErrorIs(t, err, sentinel)
	assert.Equal(t, 3, calls)
}

func TestRetryCanceledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := backoff.Retry(ctx, fastPolicy(3), func(_ context.Context) error {
		calls++

		return nil
	})

	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, calls)
}

func TestRetryCanceledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	policy := backoff.Policy{MaxAttempts: 3, Base: time.Minute, Max: time.Minute}
	var calls atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- backoff.Retry(ctx, policy, func(_ context.Context) error {
			calls.Add(1)

			return errors.New("down")
		})
	}()

	// Let the first attempt fail, then cancel during the long sleep.
	require.Eventually(t, func() bool {
		return calls.Load() == 1
	}, 2*time.Second, 5*time.Millisecond)
	cancel()

	require.ErrorIs(t, <-done, context.Canceled)
	assert.Equal(t, int32(1), calls.Load())
}

func TestSleepZeroReturnsImmediately(t *testing.T) {
	start := time.Now()
	require.NoError(t, backoff.Sleep(context.Background(), 0))
	assert.Less(t, time.Since(start), 50*time.Millisecond)
}
