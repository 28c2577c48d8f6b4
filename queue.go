package uibuilder

import (
	"encoding/json"
	"sync"

	"github.com/tytsxai/telegram-ui-builder/internal/telemetry"
	"github.com/tytsxai/telegram-ui-builder/storage"
	"github.com/tytsxai/telegram-ui-builder/types"
)

// Queue is the durable per-owner queue of pending screen operations.
//
// Each owner's queue is an ordered sequence of pending items; the order
// is enqueue order and defines replay order. Queues are persisted as a
// JSON array under a versioned storage key, with a process-local
// in-memory fallback that takes over when the backend rejects writes for
// lack of space.
//
// A Queue owns its own enqueue lock and fallback cache; independent
// instances do not share state. All methods are safe for concurrent use.
type Queue struct {
	config QueueConfig

	// mu serializes the read-modify-write cycle of enqueue operations so
	// interleaved enqueues cannot lose updates. Read/Write themselves are
	// not guarded: the replay engine reads once and owns its snapshot for
	// the duration of a run.
	mu sync.Mutex

	// fmu guards the fallback map.
	fmu      sync.Mutex
	fallback map[string][]types.PendingItem
}

// NewQueue creates a queue store.
//
// With no WithStorage option the queue operates entirely in memory:
// every read and write is served from the fallback cache and nothing
// survives the process.
//
// Parameters:
//   - opts: Optional configuration options
//
// Returns:
//   - *Queue: A new queue store
func NewQueue(opts ...QueueOption) *Queue {
	config := DefaultQueueConfig()
	for _, opt := range opts {
		opt(&config)
	}
	if config.Prefix == "" {
		config.Prefix = DefaultPrefix
	}
	if config.MaxItems <= 0 {
		config.MaxItems = DefaultMaxItems
	}
	if config.Logger == nil {
		config.Logger = DefaultQueueConfig().Logger
	}
	if config.Metrics == nil {
		config.Metrics = DefaultQueueConfig().Metrics
	}
	if config.Telemetry == nil {
		config.Telemetry = DefaultQueueConfig().Telemetry
	}
	if config.Now == nil {
		config.Now = DefaultQueueConfig().Now
	}
	if config.NewID == nil {
		config.NewID = NewItemID
	}

	return &Queue{
		config:   config,
		fallback: make(map[string][]types.PendingItem),
	}
}

// Read returns the current queue for an owner.
//
// Read never fails: storage errors, unparseable blobs, and malformed
// entries all degrade to an empty or partially filtered result. While the
// in-memory fallback is active for the owner, its snapshot is returned
// directly (the durable backend is considered out of sync). A read that
// finds no versioned data triggers the one-time legacy migration.
//
// Parameters:
//   - owner: The owner identity; "" maps to AnonymousOwner
//
// Returns:
//   - []types.PendingItem: The queue in replay order, possibly empty
func (q *Queue) Read(owner types.OwnerID) []types.PendingItem {
	owner = owner.Normalize()
	key := storageKey(q.config.Prefix, owner)

	if items, ok := q.fallbackGet(key); ok {
		return items
	}
	if q.config.Storage == nil {
		return nil
	}

	raw, ok, err := q.config.Storage.GetItem(key)
	if err != nil {
		q.config.Logger.Warn("queue read failed", "key", key, "error", err.Error())

		return nil
	}
	if !ok {
		return q.migrateLegacy(owner, key)
	}

	items, dropped, err := decodeItems(raw)
	if err != nil {
		q.config.Logger.Warn("queue data unparseable, treating as empty", "key", key, "error", err.Error())

		return nil
	}
	if dropped > 0 {
		q.config.Logger.Warn("filtered malformed queue entries", "key", key, "dropped", dropped)
	}

	if evicted := len(items) - q.config.MaxItems; evicted > 0 {
		items = items[evicted:]
		q.notifyEviction(owner, evicted)
		// Persist the trimmed queue; read still never fails.
		if perr := q.persist(items, key); perr != nil {
			q.config.Logger.Warn("persisting trimmed queue failed", "key", key, "error", perr.Error())
		}
	}

	return items
}

// Write persists the full queue for an owner, applying the length cap
// with oldest-first eviction.
//
// A write rejected for lack of space switches the owner to the in-memory
// fallback and succeeds; any other storage failure is returned as a
// *types.PersistError.
//
// Parameters:
//   - items: The full queue to persist, in replay order
//   - owner: The owner identity
//
// Returns:
//   - error: *types.PersistError on a fatal durable write failure
func (q *Queue) Write(items []types.PendingItem, owner types.OwnerID) error {
	owner = owner.Normalize()
	key := storageKey(q.config.Prefix, owner)

	if evicted := len(items) - q.config.MaxItems; evicted > 0 {
		items = items[evicted:]
		q.notifyEviction(owner, evicted)
	}

	err := q.persist(items, key)
	q.config.Metrics.SetQueueDepth(owner, len(items))

	return err
}

// Clear removes the owner's queue from both the fallback cache and
// durable storage. Clearing is best-effort and never fails.
//
// Parameters:
//   - owner: The owner identity
func (q *Queue) Clear(owner types.OwnerID) {
	owner = owner.Normalize()
	key := storageKey(q.config.Prefix, owner)

	q.fallbackDelete(key)

	if q.config.Storage != nil {
		if err := q.config.Storage.RemoveItem(key); err != nil {
			q.config.Logger.Debug("queue clear failed", "key", key, "error", err.Error())
		}
	}

	q.config.Metrics.SetQueueDepth(owner, 0)
}

// Len returns the current queue length for an owner.
func (q *Queue) Len(owner types.OwnerID) int {
	return len(q.Read(owner))
}

// EnqueueSave appends a save operation carrying a full screen payload.
//
// The read-modify-write cycle runs under the queue's enqueue lock, so
// concurrent enqueues complete in lock acquisition order.
//
// Parameters:
//   - screen: The full screen entity, opaque to the queue
//   - owner: The owner identity
//
// Returns:
//   - types.PendingItem: The created item
//   - error: *types.PersistError on a fatal durable write failure
func (q *Queue) EnqueueSave(screen json.RawMessage, owner types.OwnerID) (types.PendingItem, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	owner = owner.Normalize()
	items := q.Read(owner)

	item := types.PendingItem{
		ID:        q.config.NewID(),
		Kind:      types.KindSave,
		Screen:    append(json.RawMessage(nil), screen...),
		CreatedAt: q.config.Now(),
	}
	items = append(items, item)

	if err := q.Write(items, owner); err != nil {
		return types.PendingItem{}, err
	}

	q.config.Metrics.IncEnqueued(types.KindSave)

	return item, nil
}

// EnqueueUpdate appends an update operation for the screen identified by
// targetID, atomically replacing any queued update for the same target.
// Replay therefore always applies the latest desired state, never
// intermediate stale updates.
//
// Parameters:
//   - targetID: The id of the screen being updated
//   - patch: The partial screen fields, opaque to the queue
//   - owner: The owner identity
//
// Returns:
//   - types.PendingItem: The created item
//   - error: types.ErrMissingTargetID for an empty target id, or
//     *types.PersistError on a fatal durable write failure
func (q *Queue) EnqueueUpdate(targetID string, patch json.RawMessage, owner types.OwnerID) (types.PendingItem, error) {
	if targetID == "" {
		return types.PendingItem{}, types.ErrMissingTargetID
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	owner = owner.Normalize()
	items := q.Read(owner)

	kept := items[:0:len(items)]
	for _, it := range items {
		if it.Kind == types.KindUpdate && it.TargetID == targetID {
			continue
		}
		kept = append(kept, it)
	}

	item := types.PendingItem{
		ID:        q.config.NewID(),
		Kind:      types.KindUpdate,
		Screen:    append(json.RawMessage(nil), patch...),
		TargetID:  targetID,
		CreatedAt: q.config.Now(),
	}
	kept = append(kept, item)

	if err := q.Write(kept, owner); err != nil {
		return types.PendingItem{}, err
	}

	q.config.Metrics.IncEnqueued(types.KindUpdate)

	return item, nil
}

// persist writes the queue snapshot under key, classifying failures.
// Quota exhaustion swaps the key to the in-memory fallback and succeeds;
// any other failure is a *types.PersistError. A successful durable write
// drops the key's fallback entry (backend back in sync).
func (q *Queue) persist(items []types.PendingItem, key string) error {
	if items == nil {
		items = []types.PendingItem{}
	}

	if q.config.Storage == nil {
		q.fallbackSet(key, items)

		return nil
	}

	data, err := json.Marshal(items)
	if err != nil {
		q.config.Metrics.IncPersistError()

		return &types.PersistError{Key: key, Cause: err}
	}

	if err := q.config.Storage.SetItem(key, string(data)); err != nil {
		if storage.IsQuotaError(err) {
			q.fallbackSet(key, items)
			q.config.Metrics.IncQuotaFallback()
			q.config.Logger.Warn("storage quota exceeded, using memory fallback", "key", key, "error", err.Error())
			telemetry.Publish(q.config.Telemetry, types.TelemetryEvent{
				Scope:  types.ScopeQueue,
				Status: "quota_fallback",
				Meta:   map[string]any{"key": key, "items": len(items)},
			})

			return nil
		}

		q.config.Metrics.IncPersistError()

		return &types.PersistError{Key: key, Cause: err}
	}

	q.fallbackDelete(key)

	return nil
}

// notifyEviction reports one trim event. Fires exactly once per trim.
func (q *Queue) notifyEviction(owner types.OwnerID, dropped int) {
	q.config.Metrics.AddEvicted(dropped)
	q.config.Logger.Info("queue over capacity, evicted oldest items", "owner", owner.String(), "dropped", dropped)
	telemetry.Publish(q.config.Telemetry, types.TelemetryEvent{
		Scope:  types.ScopeQueue,
		Status: "evicted",
		Meta:   map[string]any{"owner": owner.String(), "dropped": dropped},
	})
}

// decodeItems parses a persisted JSON array, filtering entries that do
// not validate instead of failing the whole read, and hydrating the
// failure log of items persisted before the failures field existed.
func decodeItems(raw string) (items []types.PendingItem, dropped int, err error) {
	var entries []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, 0, err
	}

	for _, entry := range entries {
		var it types.PendingItem
		if err := json.Unmarshal(entry, &it); err != nil {
			dropped++

			continue
		}
		if err := it.Validate(); err != nil {
			dropped++

			continue
		}

		it.HydrateFailures()
		items = append(items, it)
	}

	return items, dropped, nil
}

// fallbackGet returns a deep copy of the fallback snapshot for key.
func (q *Queue) fallbackGet(key string) ([]types.PendingItem, bool) {
	q.fmu.Lock()
	defer q.fmu.Unlock()

	items, ok := q.fallback[key]
	if !ok {
		return nil, false
	}

	return types.CloneItems(items), true
}

// fallbackSet stores a deep copy of items under key.
func (q *Queue) fallbackSet(key string, items []types.PendingItem) {
	q.fmu.Lock()
	defer q.fmu.Unlock()

	q.fallback[key] = types.CloneItems(items)
}

// fallbackDelete drops the fallback entry for key.
func (q *Queue) fallbackDelete(key string) {
	q.fmu.Lock()
	defer q.fmu.Unlock()

	delete(q.fallback, key)
}
