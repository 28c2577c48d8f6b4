package storage

import (
	"errors"
	"strings"
)

// Backend is a synchronous string-keyed string-value store.
//
// The queue store persists each owner's queue as a JSON array under a
// single key. Backends may be entirely absent (the queue store treats a
// nil backend as memory-only operation), so implementations never need to
// handle that case themselves.
type Backend interface {
	// GetItem returns the value stored under key.
	//
	// Returns:
	//   - string: The stored value
	//   - bool: false when the key is absent
	//   - error: Backend read failure
	GetItem(key string) (string, bool, error)

	// SetItem stores value under key, replacing any previous value.
	//
	// Returns ErrQuotaExceeded (or an error recognized by IsQuotaError)
	// when the backend is out of space.
	SetItem(key, value string) error

	// RemoveItem deletes the value stored under key. Removing an absent
	// key is not an error.
	RemoveItem(key string) error
}

// ErrQuotaExceeded indicates a write rejected because the backend is at
// its size or quota limit. The queue store handles it by switching to the
// in-memory fallback; it is never surfaced to callers.
var ErrQuotaExceeded = errors.New("storage: quota exceeded")

// quotaHints are substrings matched case-insensitively against error text
// to recognize quota-like failures from backends that do not return
// ErrQuotaExceeded directly.
var quotaHints = []string{
	"quota",
	"storage full",
	"disk full",
	"no space",
	"maximum bytes",
	"max bytes",
}

// IsQuotaError reports whether err looks like a storage-exhaustion
// failure.
//
// This is a best-effort heuristic: ErrQuotaExceeded matches exactly via
// errors.Is, anything else is recognized by substring matching on the
// error text. Quota-like errors that match neither are treated as fatal
// persistence failures by the queue store, not silently downgraded.
func IsQuotaError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrQuotaExceeded) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, hint := range quotaHints {
		if strings.Contains(msg, hint) {
			return true
		}
	}

	return false
}
