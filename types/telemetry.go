package types

// ScopeQueue is the telemetry scope used for all queue core events.
const ScopeQueue = "queue"

// TelemetryEvent is a fire-and-forget diagnostic event.
//
// The queue core publishes events for retryable and terminal replay
// failures, queue eviction, quota fallback, and legacy migration.
type TelemetryEvent struct {
	// Scope groups events by subsystem. The queue core uses "queue".
	Scope string

	// Status names the event within its scope, e.g. "item_failed",
	// "dropped", "evicted", "quota_fallback", "migrated".
	Status string

	// Meta carries event-specific fields (item id, attempt counts, ...).
	Meta map[string]any
}

// TelemetryPublisher receives diagnostic events from the queue core.
//
// Publishers must be safe for concurrent use. A panicking publisher never
// propagates into the caller; the core isolates every Publish call.
type TelemetryPublisher interface {
	// Publish delivers one event. Implementations should return quickly;
	// slow sinks should buffer internally.
	Publish(event TelemetryEvent)
}

// Logger defines the structured logging interface used throughout the
// library. Methods accept an event message followed by alternating
// key/value pairs.
type Logger interface {
	// Debug logs fine-grained diagnostic messages.
	Debug(msg string, args ...any)

	// Info logs normal operational messages.
	Info(msg string, args ...any)

	// Warn logs recoverable anomalies (quota fallback, filtered entries).
	Warn(msg string, args ...any)

	// Error logs failures that affect durability or replay.
	Error(msg string, args ...any)

	// Fatal logs unrecoverable failures. Implementations decide whether
	// to exit the process.
	Fatal(msg string, args ...any)
}
