package uibuilder

import (
	"encoding/json"

	"github.com/tytsxai/telegram-ui-builder/internal/telemetry"
	"github.com/tytsxai/telegram-ui-builder/types"
)

// legacyEntry is the unversioned pre-v2 queue entry: just a kind tag and
// a payload, with no id, attempt state, or timestamps.
type legacyEntry struct {
	Kind    string          `json:"kind"`
	Payload json.RawMessage `json:"payload"`
}

// migrateLegacy performs the one-time conversion of an owner's legacy
// queue into the versioned layout. Called from Read when no versioned
// data exists.
//
// Each legacy entry is converted by filling defaults for the missing
// fields; entries whose shape does not map to a known kind are dropped.
// The converted list is persisted under the versioned key and the legacy
// key is deleted, so repeated reads find the versioned key and skip
// migration entirely. When persisting the converted list fails fatally,
// the legacy key is kept so the next read can retry.
func (q *Queue) migrateLegacy(owner types.OwnerID, versionedKey string) []types.PendingItem {
	legacyKey := legacyStorageKey(q.config.Prefix, owner)

	raw, ok, err := q.config.Storage.GetItem(legacyKey)
	if err != nil {
		q.config.Logger.Warn("legacy queue read failed", "key", legacyKey, "error", err.Error())

		return nil
	}
	if !ok {
		return nil
	}

	var entries []legacyEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		q.config.Logger.Warn("legacy queue unparseable, discarding", "key", legacyKey, "error", err.Error())
		q.removeLegacy(legacyKey)

		return nil
	}

	var items []types.PendingItem
	dropped := 0
	for _, entry := range entries {
		item, ok := q.convertLegacy(entry)
		if !ok {
			dropped++

			continue
		}
		items = append(items, item)
	}

	if err := q.persist(items, versionedKey); err != nil {
		q.config.Logger.Error("persisting migrated queue failed", "key", versionedKey, "error", err.Error())

		return items
	}

	q.removeLegacy(legacyKey)
	q.config.Metrics.IncLegacyMigration()
	q.config.Logger.Info("migrated legacy queue", "owner", owner.String(), "items", len(items), "dropped", dropped)
	telemetry.Publish(q.config.Telemetry, types.TelemetryEvent{
		Scope:  types.ScopeQueue,
		Status: "migrated",
		Meta:   map[string]any{"owner": owner.String(), "items": len(items), "dropped": dropped},
	})

	return items
}

// convertLegacy maps one legacy entry onto a PendingItem, assigning a
// fresh id and zeroed attempt state. Updates derive their target id from
// the "id" field inside the payload; entries with an unknown kind or an
// update payload without an id do not convert.
func (q *Queue) convertLegacy(entry legacyEntry) (types.PendingItem, bool) {
	item := types.PendingItem{
		ID:        q.config.NewID(),
		Kind:      types.ItemKind(entry.Kind),
		Screen:    entry.Payload,
		CreatedAt: q.config.Now(),
	}

	switch item.Kind {
	case types.KindSave:
	case types.KindUpdate:
		var probe struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(entry.Payload, &probe); err != nil || probe.ID == "" {
			return types.PendingItem{}, false
		}
		item.TargetID = probe.ID
	default:
		return types.PendingItem{}, false
	}

	return item, true
}

// removeLegacy deletes the legacy key, best-effort.
func (q *Queue) removeLegacy(legacyKey string) {
	if err := q.config.Storage.RemoveItem(legacyKey); err != nil {
		q.config.Logger.Debug("legacy key removal failed", "key", legacyKey, "error", err.Error())
	}
}
