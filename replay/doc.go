// Package replay provides the engine that drains the offline pending
// queue against a live backend.
//
// A Processor reads an owner's queue once, then walks it in order with a
// single item in flight. The actual backend call is injected as an
// ExecuteFunc; the processor only classifies outcomes and maintains
// retry state:
//
//	Pending -> Executing -> Succeeded (removed)
//	                     -> Failed, retryable (Pending again, after delay)
//	                     -> Failed, terminal (removed, reported)
//
// A retryable failure repeats the same item after an exponential backoff
// delay with jitter (package backoff); an item that reaches the retry
// budget is dropped and reported through OnPermanentFailure. Ordering is
// strict: a later-queued item never executes before an earlier one still
// pending retry.
//
// # Usage
//
//	proc := replay.New(queue, executeScreenOp,
//	    replay.WithMaxAttempts(5),
//	    replay.WithBaseDelay(200*time.Millisecond),
//	    replay.WithOnPermanentFailure(func(it types.PendingItem) {
//	        log.Printf("giving up on %s: %s", it.ID, it.LastError)
//	    }),
//	)
//	remaining := proc.Process(ctx, owner)
//
// Process never returns an error. Execution failures are recorded on the
// item and reported via callbacks and telemetry; persistence failures
// during a run are logged and absorbed. The returned slice is the queue
// that remains after the run.
package replay
