package storage

import (
	"errors"
	"fmt"

	"github.com/cockroachdb/pebble"
)

// PebbleBackend is a durable Backend on top of a Pebble key/value store.
//
// Values survive process restarts. Writes are synced to disk before
// SetItem returns, matching the synchronous contract of the Backend
// interface.
//
// Disk-full failures from the filesystem are surfaced as-is; the queue
// store recognizes them through IsQuotaError and falls back to memory.
type PebbleBackend struct {
	db *pebble.DB
}

// OpenPebbleBackend opens (or creates) a Pebble database at path.
//
// Parameters:
//   - path: Directory for the Pebble store
//
// Returns:
//   - *PebbleBackend: A new backend instance
//   - error: Open failure
func OpenPebbleBackend(path string) (*PebbleBackend, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("storage: open pebble at %s: %w", path, err)
	}

	return &PebbleBackend{db: db}, nil
}

// Compile-time assertion that PebbleBackend implements Backend.
var _ Backend = (*PebbleBackend)(nil)

// GetItem returns the value stored under key.
func (p *PebbleBackend) GetItem(key string) (string, bool, error) {
	val, closer, err := p.db.Get([]byte(key))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return "", false, nil
		}

		return "", false, fmt.Errorf("storage: pebble get %s: %w", key, err)
	}

	out := string(val)
	if cerr := closer.Close(); cerr != nil {
		return "", false, fmt.Errorf("storage: pebble get %s: %w", key, cerr)
	}

	return out, true, nil
}

// SetItem stores value under key with a synced write.
func (p *PebbleBackend) SetItem(key, value string) error {
	if err := p.db.Set([]byte(key), []byte(value), pebble.Sync); err != nil {
		return fmt.Errorf("storage: pebble set %s: %w", key, err)
	}

	return nil
}

// RemoveItem deletes the value stored under key with a synced write.
func (p *PebbleBackend) RemoveItem(key string) error {
	if err := p.db.Delete([]byte(key), pebble.Sync); err != nil {
		return fmt.Errorf("storage: pebble delete %s: %w", key, err)
	}

	return nil
}

// Close closes the underlying Pebble database.
func (p *PebbleBackend) Close() error {
	return p.db.Close()
}
