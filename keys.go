package uibuilder

import "github.com/tytsxai/telegram-ui-builder/types"

const (
	// DefaultPrefix is the default storage key prefix.
	DefaultPrefix = "tgui_pending"

	// DefaultMaxItems is the default per-owner queue length cap.
	DefaultMaxItems = 100

	// schemaVersion is the on-disk layout version segment. Keys without
	// a version segment are the legacy layout, read once for migration.
	schemaVersion = "v2"
)

// storageKey returns the versioned key an owner's queue is persisted
// under: "<prefix>_v2_<owner|anon>".
func storageKey(prefix string, owner types.OwnerID) string {
	return prefix + "_" + schemaVersion + "_" + owner.Normalize().String()
}

// legacyStorageKey returns the unversioned pre-migration key:
// "<prefix>_<owner|anon>".
func legacyStorageKey(prefix string, owner types.OwnerID) string {
	return prefix + "_" + owner.Normalize().String()
}
