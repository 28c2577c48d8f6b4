package uibuilder

import (
	"time"

	"github.com/tytsxai/telegram-ui-builder/internal/logging"
	"github.com/tytsxai/telegram-ui-builder/internal/metrics"
	"github.com/tytsxai/telegram-ui-builder/internal/telemetry"
	"github.com/tytsxai/telegram-ui-builder/storage"
	"github.com/tytsxai/telegram-ui-builder/types"
)

// IDFunc generates item identifiers.
//
// The default generator prefers a cryptographically sourced random UUID
// and falls back to a timestamp + random-suffix composite that never
// fails.
type IDFunc func() string

// NowFunc provides timestamps for enqueue and failure records.
//
// The default provider is time.Now.
type NowFunc func() time.Time

// QueueConfig holds configuration for a Queue.
type QueueConfig struct {
	// Prefix is the storage key prefix. Queues are persisted under
	// "<prefix>_v2_<owner>"; the unversioned "<prefix>_<owner>" key is
	// read once for legacy migration.
	// Default: "tgui_pending"
	Prefix string

	// MaxItems caps the queue length per owner. Exceeding the cap evicts
	// the oldest items first.
	// Default: 100
	MaxItems int

	// Storage is the durable backend. When nil, the queue operates
	// entirely from its in-memory fallback (non-durable).
	Storage storage.Backend

	// Logger receives structured log events. Defaults to a nop logger.
	Logger types.Logger

	// Metrics receives operational metrics. Defaults to a nop collector.
	Metrics types.MetricsCollector

	// Telemetry receives fire-and-forget diagnostic events (eviction,
	// quota fallback, migration). Defaults to a nop publisher.
	Telemetry types.TelemetryPublisher

	// Now provides timestamps. Defaults to time.Now.
	Now NowFunc

	// NewID generates item ids. Defaults to NewItemID.
	NewID IDFunc
}

// DefaultQueueConfig returns a QueueConfig with sensible defaults.
//
// Returns:
//   - QueueConfig: Configuration with default settings
func DefaultQueueConfig() QueueConfig {
	return QueueConfig{
		Prefix:    DefaultPrefix,
		MaxItems:  DefaultMaxItems,
		Logger:    logging.NewNopLogger(),
		Metrics:   metrics.NewNopMetrics(),
		Telemetry: telemetry.NewNopPublisher(),
		Now:       time.Now,
		NewID:     NewItemID,
	}
}

// QueueOption configures a Queue.
type QueueOption func(*QueueConfig)

// WithPrefix sets the storage key prefix.
//
// Parameters:
//   - prefix: Key prefix for persisted queues
//
// Returns:
//   - QueueOption: Configuration option
func WithPrefix(prefix string) QueueOption {
	return func(c *QueueConfig) {
		c.Prefix = prefix
	}
}

// WithMaxItems sets the per-owner queue length cap.
//
// Parameters:
//   - n: Maximum queue length
//
// Returns:
//   - QueueOption: Configuration option
func WithMaxItems(n int) QueueOption {
	return func(c *QueueConfig) {
		c.MaxItems = n
	}
}

// WithStorage sets the durable storage backend.
//
// Parameters:
//   - backend: The backend to persist queues into
//
// Returns:
//   - QueueOption: Configuration option
func WithStorage(backend storage.Backend) QueueOption {
	return func(c *QueueConfig) {
		c.Storage = backend
	}
}

// WithLogger sets the structured logger.
//
// Parameters:
//   - logger: The logger to use
//
// Returns:
//   - QueueOption: Configuration option
func WithLogger(logger types.Logger) QueueOption {
	return func(c *QueueConfig) {
		c.Logger = logger
	}
}

// WithMetrics sets the metrics collector.
//
// Parameters:
//   - collector: The collector to use
//
// Returns:
//   - QueueOption: Configuration option
func WithMetrics(collector types.MetricsCollector) QueueOption {
	return func(c *QueueConfig) {
		c.Metrics = collector
	}
}

// WithTelemetry sets the telemetry publisher.
//
// Parameters:
//   - publisher: The publisher to use
//
// Returns:
//   - QueueOption: Configuration option
func WithTelemetry(publisher types.TelemetryPublisher) QueueOption {
	return func(c *QueueConfig) {
		c.Telemetry = publisher
	}
}

// WithNowFunc sets the timestamp provider. Useful for deterministic
// tests.
//
// Parameters:
//   - now: The timestamp provider
//
// Returns:
//   - QueueOption: Configuration option
func WithNowFunc(now NowFunc) QueueOption {
	return func(c *QueueConfig) {
		c.Now = now
	}
}

// WithIDFunc sets the item id generator. Useful for deterministic tests.
//
// Parameters:
//   - fn: The id generator
//
// Returns:
//   - QueueOption: Configuration option
func WithIDFunc(fn IDFunc) QueueOption {
	return func(c *QueueConfig) {
		c.NewID = fn
	}
}
