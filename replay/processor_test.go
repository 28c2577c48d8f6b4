package replay_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	uibuilder "github.com/tytsxai/telegram-ui-builder"
	"github.com/tytsxai/telegram-ui-builder/replay"
	"github.com/tytsxai/telegram-ui-builder/storage"
	"github.com/tytsxai/telegram-ui-builder/test/testutil"
	"github.com/tytsxai/telegram-ui-builder/types"
)

// newSeededQueue returns a queue preloaded with n save items named
// "id-1".."id-n" for the given owner.
func newSeededQueue(t *testing.T, n int, owner types.OwnerID) *uibuilder.Queue {
	t.Helper()

	seq := 0
	q := uibuilder.NewQueue(
		uibuilder.WithStorage(storage.NewMemoryBackend()),
		uibuilder.WithIDFunc(func() string {
			seq++

			return fmt.Sprintf("id-%d", seq)
		}),
	)
	for i := range n {
		_, err := q.EnqueueSave(json.RawMessage(fmt.Sprintf(`{"n":%d}`, i)), owner)
		require.NoError(t, err)
	}

	return q
}

// fastOpts keeps retry delays negligible so tests run instantly.
func fastOpts(extra ...replay.Option) []replay.Option {
	opts := []replay.Option{
		replay.WithBaseDelay(time.Microsecond),
		replay.WithJitterRatio(0),
	}

	return append(opts, extra...)
}

func TestProcessDrainsInOrder(t *testing.T) {
	q := newSeededQueue(t, 3, "u1")

	var executed []string
	p := replay.New(q, func(_ context.Context, item types.PendingItem) error {
		executed = append(executed, item.ID)

		return nil
	}, fastOpts()...)

	remaining := p.Process(context.Background(), "u1")

	assert.Empty(t, remaining)
	assert.Equal(t, []string{"id-1", "id-2", "id-3"}, executed)
	assert.Empty(t, q.Read("u1"))
}

func TestProcessSuccessCallbackAndRemoval(t *testing.T) {
	q := newSeededQueue(t, 2, "u1")

	var succeeded []string
	p := replay.New(q, func(_ context.Context, _ types.PendingItem) error {
		return nil
	}, fastOpts(replay.WithOnSuccess(func(item types.PendingItem) {
		succeeded = append(succeeded, item.ID)
	}))...)

	p.Process(context.Background(), "u1")

	assert.Equal(t, []string{"id-1", "id-2"}, succeeded)
}

func TestProcessRetriesSameItemBeforeAdvancing(t *testing.T) {
	q := newSeededQueue(t, 2, "u1")

	// id-1 fails twice before succeeding; id-2 must not run until id-1 is
	// resolved.
	var executed []string
	failures := 0
	p := replay.New(q, func(_ context.Context, item types.PendingItem) error {
		executed = append(executed, item.ID)
		if item.ID == "id-1" && failures < 2 {
			failures++

			return errors.New("transient")
		}

		return nil
	}, fastOpts()...)

	remaining := p.Process(context.Background(), "u1")

	assert.Empty(t, remaining)
	assert.Equal(t, []string{"id-1", "id-1", "id-1", "id-2"}, executed)
}

func TestProcessRetryTermination(t *testing.T) {
	q := newSeededQueue(t, 1, "u1")
	recorder := testutil.NewTelemetryRecorder()

	var permanent []types.PendingItem
	var attempts []time.Duration

	p := replay.New(q, func(_ context.Context, _ types.PendingItem) error {
		return errors.New("backend rejects everything")
	}, fastOpts(
		replay.WithMaxAttempts(2),
		replay.WithTelemetry(recorder),
		replay.WithOnItemFailure(func(_ types.PendingItem, delay time.Duration) {
			attempts = append(attempts, delay)
		}),
		replay.WithOnPermanentFailure(func(item types.PendingItem) {
			permanent = append(permanent, item)
		}),
	)...)

	remaining := p.Process(context.Background(), "u1")

	// The item exhausted its budget and was dropped.
	assert.Empty(t, remaining)
	assert.Empty(t, q.Read("u1"))

	require.Len(t, permanent, 1)
	assert.Equal(t, "id-1", permanent[0].ID)
	assert.Equal(t, 2, permanent[0].Attempts)
	assert.Equal(t, "backend rejects everything", permanent[0].LastError)
	require.Len(t, permanent[0].Failures, 2)

	// One failure callback per attempt; the terminal one carries no delay.
	require.Len(t, attempts, 2)
	assert.Positive(t, attempts[0])
	assert.Zero(t, attempts[1])

	assert.Len(t, recorder.ByStatus("item_failed"), 2)
	assert.Len(t, recorder.ByStatus("dropped"), 1)
}

func TestProcessFailureStatePersistedBetweenAttempts(t *testing.T) {
	q := newSeededQueue(t, 1, "u1")
	ctx, cancel := context.WithCancel(context.Background())

	p := replay.New(q, func(_ context.Context, _ types.PendingItem) error {
		return errors.New("down")
	}, fastOpts(
		replay.WithMaxAttempts(3),
		replay.WithOnItemFailure(func(_ types.PendingItem, _ time.Duration) {
			// Cancel after the first failed attempt so the run stops
			// during backoff with the item still queued.
			cancel()
		}),
	)...)

	remaining := p.Process(ctx, "u1")

	require.Len(t, remaining, 1)
	assert.Equal(t, 1, remaining[0].Attempts)
	assert.Equal(t, "down", remaining[0].LastError)

	// The mutated attempt state survived to durable storage.
	stored := q.Read("u1")
	require.Len(t, stored, 1)
	assert.Equal(t, 1, stored[0].Attempts)
	require.Len(t, stored[0].Failures, 1)
	assert.Equal(t, "down", stored[0].Failures[0].Message)
}

func TestProcessCancellationPreCheck(t *testing.T) {
	q := newSeededQueue(t, 3, "u1")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	executed := 0
	p := replay.New(q, func(_ context.Context, _ types.PendingItem) error {
		executed++

		return nil
	}, fastOpts()...)

	remaining := p.Process(ctx, "u1")

	assert.Zero(t, executed)
	assert.Len(t, remaining, 3)
	assert.Len(t, q.Read("u1"), 3)
}

func TestProcessCancellationBetweenItems(t *testing.T) {
	q := newSeededQueue(t, 3, "u1")

	ctx, cancel := context.WithCancel(context.Background())

	executed := 0
	p := replay.New(q, func(_ context.Context, _ types.PendingItem) error {
		executed++
		if executed == 1 {
			cancel()
		}

		return nil
	}, fastOpts()...)

	remaining := p.Process(ctx, "u1")

	// The first item completed and stays removed; the rest were never
	// attempted.
	assert.Equal(t, 1, executed)
	require.Len(t, remaining, 2)
	assert.Equal(t, "id-2", remaining[0].ID)
	assert.Len(t, q.Read("u1"), 2)
}

type requestIDError struct {
	msg string
	id  string
}

func (e *requestIDError) Error() string     { return e.msg }
func (e *requestIDError) RequestID() string { return e.id }

func TestProcessRecordsRequestID(t *testing.T) {
	q := newSeededQueue(t, 1, "u1")

	var permanent []types.PendingItem
	p := replay.New(q, func(_ context.Context, _ types.PendingItem) error {
		return fmt.Errorf("save failed: %w", &requestIDError{msg: "HTTP 500", id: "req-abc123"})
	}, fastOpts(
		replay.WithMaxAttempts(1),
		replay.WithOnPermanentFailure(func(item types.PendingItem) {
			permanent = append(permanent, item)
		}),
	)...)

	p.Process(context.Background(), "u1")

	require.Len(t, permanent, 1)
	require.Len(t, permanent[0].Failures, 1)
	assert.Equal(t, "req-abc123", permanent[0].Failures[0].RequestID)
	assert.Equal(t, "save failed: HTTP 500", permanent[0].Failures[0].Message)
}

func TestProcessEmptyQueueNoExecution(t *testing.T) {
	q := uibuilder.NewQueue(uibuilder.WithStorage(storage.NewMemoryBackend()))

	p := replay.New(q, func(_ context.Context, _ types.PendingItem) error {
		t.Fatal("execute must not run for an empty queue")

		return nil
	})

	assert.Empty(t, p.Process(context.Background(), "u1"))
}

func TestProcessMixedOutcomes(t *testing.T) {
	q := newSeededQueue(t, 3, "u1")
	recorder := testutil.NewTelemetryRecorder()

	// id-1 succeeds, id-2 always fails, id-3 succeeds after the drop.
	p := replay.New(q, func(_ context.Context, item types.PendingItem) error {
		if item.ID == "id-2" {
			return errors.New("poisoned item")
		}

		return nil
	}, fastOpts(
		replay.WithMaxAttempts(2),
		replay.WithTelemetry(recorder),
	)...)

	remaining := p.Process(context.Background(), "u1")

	assert.Empty(t, remaining)
	assert.Empty(t, q.Read("u1"))
	assert.Len(t, recorder.ByStatus("dropped"), 1)
	assert.Len(t, recorder.ByStatus("item_failed"), 2)
}

func TestProcessFixedTimestampsInFailureLog(t *testing.T) {
	q := newSeededQueue(t, 1, "u1")
	at := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	var permanent []types.PendingItem
	p := replay.New(q, func(_ context.Context, _ types.PendingItem) error {
		return errors.New("nope")
	}, fastOpts(
		replay.WithMaxAttempts(1),
		replay.WithNowFunc(func() time.Time { return at }),
		replay.WithOnPermanentFailure(func(item types.PendingItem) {
			permanent = append(permanent, item)
		}),
	)...)

	p.Process(context.Background(), "u1")

	require.Len(t, permanent, 1)
	require.Len(t, permanent[0].Failures, 1)
	assert.Equal(t, at, permanent[0].Failures[0].At)
	require.NotNil(t, permanent[0].LastAttemptAt)
	assert.Equal(t, at, *permanent[0].LastAttemptAt)
}
