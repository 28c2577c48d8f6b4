// Package telemetry provides internal telemetry utilities for the
// offline queue library.
package telemetry

import "github.com/tytsxai/telegram-ui-builder/types"

// NopPublisher is a no-op telemetry publisher that discards all events.
//
// This is used as the default publisher when no publisher is configured,
// avoiding nil checks throughout the codebase.
type NopPublisher struct{}

// Compile-time assertion that NopPublisher implements types.TelemetryPublisher.
var _ types.TelemetryPublisher = (*NopPublisher)(nil)

// NewNopPublisher creates a new no-op publisher.
//
// Returns:
//   - *NopPublisher: A publisher that discards all events
func NewNopPublisher() *NopPublisher {
	return &NopPublisher{}
}

// Publish discards the event.
func (p *NopPublisher) Publish(_ types.TelemetryEvent) {}

// Publish delivers an event to a publisher, isolating the caller from a
// panicking implementation. Telemetry is fire-and-forget: a broken sink
// must never take the queue down with it.
func Publish(p types.TelemetryPublisher, event types.TelemetryEvent) {
	if p == nil {
		return
	}

	defer func() {
		_ = recover()
	}()

	p.Publish(event)
}
