package storage

import "sync"

// MemoryBackend is an in-process Backend backed by a map.
//
// Suitable for tests, development, and non-durable deployments. An
// optional byte budget makes the backend reject writes with
// ErrQuotaExceeded once the budget would be exceeded, mimicking
// quota-limited stores.
//
// All methods are safe for concurrent use.
type MemoryBackend struct {
	mu       sync.Mutex
	items    map[string]string
	maxBytes int
}

// MemoryOption configures a MemoryBackend.
type MemoryOption func(*MemoryBackend)

// WithMaxBytes sets the total byte budget (keys + values) for the
// backend. Writes that would exceed the budget fail with
// ErrQuotaExceeded.
//
// Default: 0 (unlimited)
//
// Parameters:
//   - n: Budget in bytes
//
// Returns:
//   - MemoryOption: Configuration option
func WithMaxBytes(n int) MemoryOption {
	return func(m *MemoryBackend) {
		m.maxBytes = n
	}
}

// NewMemoryBackend creates an empty in-memory backend.
//
// Parameters:
//   - opts: Optional configuration options
//
// Returns:
//   - *MemoryBackend: A new backend instance
func NewMemoryBackend(opts ...MemoryOption) *MemoryBackend {
	m := &MemoryBackend{
		items: make(map[string]string),
	}
	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Compile-time assertion that MemoryBackend implements Backend.
var _ Backend = (*MemoryBackend)(nil)

// GetItem returns the value stored under key.
func (m *MemoryBackend) GetItem(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.items[key]

	return v, ok, nil
}

// SetItem stores value under key.
//
// Returns ErrQuotaExceeded when a byte budget is configured and the write
// would exceed it.
func (m *MemoryBackend) SetItem(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.maxBytes > 0 {
		projected := m.usedLocked() - len(m.items[key]) + len(value)
		if _, ok := m.items[key]; !ok {
			projected += len(key)
		}
		if projected > m.maxBytes {
			return ErrQuotaExceeded
		}
	}

	m.items[key] = value

	return nil
}

// RemoveItem deletes the value stored under key.
func (m *MemoryBackend) RemoveItem(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.items, key)

	return nil
}

// Len returns the number of stored keys.
func (m *MemoryBackend) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.items)
}

// usedLocked sums the stored key and value sizes. Caller holds mu.
func (m *MemoryBackend) usedLocked() int {
	used := 0
	for k, v := range m.items {
		used += len(k) + len(v)
	}

	return used
}
