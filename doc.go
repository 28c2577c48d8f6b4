// Package uibuilder provides the offline write queue core of the
// Telegram flow-builder client.
//
// When the backend is unreachable, screen save and update operations are
// buffered in a durable per-owner queue and replayed later in order with
// bounded retries. The package exposes two cooperating components:
//
//   - Queue: the durable queue store (this package)
//   - replay.Processor: the replay engine (package replay)
//
// # Basic Usage
//
//	// Persist queues in a local Pebble store
//	backend, err := storage.OpenPebbleBackend("/var/lib/app/pending")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer backend.Close()
//
//	queue := uibuilder.NewQueue(uibuilder.WithStorage(backend))
//
//	// Buffer operations while offline
//	item, err := queue.EnqueueSave(screenJSON, "user-42")
//	item, err = queue.EnqueueUpdate("screen-7", patchJSON, "user-42")
//
//	// Drain once the backend is reachable again
//	proc := replay.New(queue, func(ctx context.Context, it types.PendingItem) error {
//	    return api.ApplyScreenOp(ctx, it)
//	})
//	remaining := proc.Process(ctx, "user-42")
//
// # Persistence and Degradation
//
// Queues are stored as JSON arrays under versioned keys
// ("<prefix>_v2_<owner>") in a pluggable string key/value backend
// (package storage). Three degradation paths keep the queue usable when
// persistence misbehaves:
//
//   - No backend configured: the queue runs from its in-memory fallback.
//   - Backend out of space: writes switch the owner to the in-memory
//     fallback and succeed; a telemetry warning is published.
//   - Unreadable stored data: reads filter malformed entries, or return
//     an empty queue; reads never fail.
//
// Only one error crosses the store boundary: *types.PersistError from an
// enqueue whose durable write failed for a reason other than quota
// exhaustion.
//
// # Ordering
//
// Enqueue operations serialize their read-modify-write cycles on a
// per-queue mutex, so the persisted order equals the order the lock was
// acquired. A newly enqueued update replaces any queued update for the
// same screen, so replay applies only the latest desired state.
//
// # Legacy Migration
//
// The first read that finds no versioned data converts the unversioned
// legacy layout ("<prefix>_<owner>", entries of {kind, payload}) to the
// v2 layout, persists it, and deletes the legacy key. The conversion is
// idempotent: later reads find the versioned key and skip migration.
package uibuilder
