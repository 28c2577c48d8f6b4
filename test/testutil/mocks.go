package testutil

import (
	"sync"

	"github.com/tytsxai/telegram-ui-builder/storage"
	"github.com/tytsxai/telegram-ui-builder/types"
)

// FlakyBackend wraps a storage.Backend and injects configurable failures.
//
// Zero-value hooks pass operations straight through to the inner
// backend, so a test can flip one operation at a time.
type FlakyBackend struct {
	mu    sync.Mutex
	inner storage.Backend

	// GetErr, when non-nil, is returned by every GetItem call.
	GetErr error

	// SetErr, when non-nil, is returned by every SetItem call. Set it to
	// storage.ErrQuotaExceeded to simulate an exhausted store.
	SetErr error

	// RemoveErr, when non-nil, is returned by every RemoveItem call.
	RemoveErr error

	sets    int
	removes int
}

// Compile-time assertion that FlakyBackend implements storage.Backend.
var _ storage.Backend = (*FlakyBackend)(nil)

// NewFlakyBackend wraps inner with failure injection hooks.
//
// Parameters:
//   - inner: The backend to delegate to; nil uses a fresh MemoryBackend
//
// Returns:
//   - *FlakyBackend: A new wrapper instance
func NewFlakyBackend(inner storage.Backend) *FlakyBackend {
	if inner == nil {
		inner = storage.NewMemoryBackend()
	}

	return &FlakyBackend{inner: inner}
}

// GetItem delegates to the inner backend unless GetErr is set.
func (f *FlakyBackend) GetItem(key string) (string, bool, error) {
	f.mu.Lock()
	err := f.GetErr
	f.mu.Unlock()

	if err != nil {
		return "", false, err
	}

	return f.inner.GetItem(key)
}

// SetItem delegates to the inner backend unless SetErr is set.
func (f *FlakyBackend) SetItem(key, value string) error {
	f.mu.Lock()
	f.sets++
	err := f.SetErr
	f.mu.Unlock()

	if err != nil {
		return err
	}

	return f.inner.SetItem(key, value)
}

// RemoveItem delegates to the inner backend unless RemoveErr is set.
func (f *FlakyBackend) RemoveItem(key string) error {
	f.mu.Lock()
	f.removes++
	err := f.RemoveErr
	f.mu.Unlock()

	if err != nil {
		return err
	}

	return f.inner.RemoveItem(key)
}

// Fail configures errors for subsequent operations. Pass nil to restore
// pass-through behavior.
func (f *FlakyBackend) Fail(get, set, remove error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.GetErr = get
	f.SetErr = set
	f.RemoveErr = remove
}

// Sets returns the number of SetItem calls observed.
func (f *FlakyBackend) Sets() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.sets
}

// Removes returns the number of RemoveItem calls observed.
func (f *FlakyBackend) Removes() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.removes
}

// TelemetryRecorder is a TelemetryPublisher that records every event for
// later assertions.
type TelemetryRecorder struct {
	mu     sync.Mutex
	events []types.TelemetryEvent
}

// Compile-time assertion that TelemetryRecorder implements
// types.TelemetryPublisher.
var _ types.TelemetryPublisher = (*TelemetryRecorder)(nil)

// NewTelemetryRecorder creates an empty recorder.
func NewTelemetryRecorder() *TelemetryRecorder {
	return &TelemetryRecorder{}
}

// Publish records the event.
func (r *TelemetryRecorder) Publish(event types.TelemetryEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, event)
}

// Events returns a snapshot of all recorded events.
func (r *TelemetryRecorder) Events() []types.TelemetryEvent {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]types.TelemetryEvent(nil), r.events...)
}

// ByStatus returns the recorded events with the given status.
func (r *TelemetryRecorder) ByStatus(status string) []types.TelemetryEvent {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []types.TelemetryEvent
	for _, ev := range r.events {
		if ev.Status == status {
			out = append(out, ev)
		}
	}

	return out
}

// PanickingPublisher is a TelemetryPublisher whose Publish always
// panics. Used to verify that telemetry never propagates into the
// caller.
type PanickingPublisher struct{}

// Publish panics unconditionally.
func (PanickingPublisher) Publish(_ types.TelemetryEvent) {
	panic("telemetry sink exploded")
}
