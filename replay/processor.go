package replay

import (
	"context"
	"time"

	"github.com/tytsxai/telegram-ui-builder/backoff"
	"github.com/tytsxai/telegram-ui-builder/internal/logging"
	"github.com/tytsxai/telegram-ui-builder/internal/metrics"
	"github.com/tytsxai/telegram-ui-builder/internal/telemetry"
	"github.com/tytsxai/telegram-ui-builder/types"
)

// ExecuteFunc applies one pending item against the backend.
//
// Returning an error marks the attempt as failed; the error text becomes
// the item's lastError and, when the error implements
// types.RequestIDCarrier, the request id is recorded in the failure log.
type ExecuteFunc func(ctx context.Context, item types.PendingItem) error

// Store is the queue access the processor needs. *uibuilder.Queue
// implements it.
type Store interface {
	// Read returns the owner's queue in replay order.
	Read(owner types.OwnerID) []types.PendingItem

	// Write persists the owner's full queue.
	Write(items []types.PendingItem, owner types.OwnerID) error
}

// Config configures a Processor.
type Config struct {
	// MaxAttempts is the per-item retry budget. An item whose attempt
	// count reaches the budget is dropped and reported as a permanent
	// failure.
	// Default: 3
	MaxAttempts int

	// BaseDelay is the delay before the first retry of an item.
	// Default: 400ms
	BaseDelay time.Duration

	// JitterRatio randomizes each delay to avoid synchronized retry
	// storms.
	// Default: 0.25
	JitterRatio float64

	// MaxDelay caps each computed delay.
	// Default: backoff.DefaultMaxDelay (30s)
	MaxDelay time.Duration

	// OnSuccess is called after an item is executed and removed
	// (optional).
	OnSuccess func(item types.PendingItem)

	// OnItemFailure is called after every failed attempt (optional). For
	// a retryable failure, delay is the wait before the next attempt;
	// for a terminal failure, delay is zero and OnPermanentFailure
	// follows.
	OnItemFailure func(item types.PendingItem, delay time.Duration)

	// OnPermanentFailure is called when an item exhausts its retry
	// budget and is dropped (optional). Receives the final item state.
	OnPermanentFailure func(item types.PendingItem)

	// Metrics is the metrics collector for replay statistics.
	// If nil, no metrics are recorded.
	Metrics types.MetricsCollector

	// Logger is the structured logger for replay events.
	// If nil, no logs are emitted.
	Logger types.Logger

	// Telemetry receives a fire-and-forget event for every retryable and
	// terminal failure. If nil, no events are published.
	Telemetry types.TelemetryPublisher

	// Now provides timestamps for failure records. Defaults to time.Now.
	Now func() time.Time
}

// DefaultConfig returns the default processor configuration.
//
// Returns:
//   - Config: Configuration with default settings
func DefaultConfig() Config {
	return Config{
		MaxAttempts: 3,
		BaseDelay:   400 * time.Millisecond,
		JitterRatio: 0.25,
		MaxDelay:    backoff.DefaultMaxDelay,
		Now:         time.Now,
	}
}

// Option configures a Config.
type Option func(*Config)

// WithMaxAttempts sets the per-item retry budget.
//
// Parameters:
//   - n: Total attempts per item
//
// Returns:
//   - Option: Configuration option
func WithMaxAttempts(n int) Option {
	return func(c *Config) {
		c.MaxAttempts = n
	}
}

// WithBaseDelay sets the delay before an item's first retry.
//
// Parameters:
//   - d: Base delay
//
// Returns:
//   - Option: Configuration option
func WithBaseDelay(d time.Duration) Option {
	return func(c *Config) {
		c.BaseDelay = d
	}
}

// WithJitterRatio sets the delay jitter ratio.
//
// Parameters:
//   - r: Jitter ratio, typically 0.25
//
// Returns:
//   - Option: Configuration option
func WithJitterRatio(r float64) Option {
	return func(c *Config) {
		c.JitterRatio = r
	}
}

// WithMaxDelay caps each computed retry delay.
//
// Parameters:
//   - d: Maximum delay
//
// Returns:
//   - Option: Configuration option
func WithMaxDelay(d time.Duration) Option {
	return func(c *Config) {
		c.MaxDelay = d
	}
}

// WithOnSuccess sets the success callback.
func WithOnSuccess(fn func(types.PendingItem)) Option {
	return func(c *Config) {
		c.OnSuccess = fn
	}
}

// WithOnItemFailure sets the per-attempt failure callback.
func WithOnItemFailure(fn func(types.PendingItem, time.Duration)) Option {
	return func(c *Config) {
		c.OnItemFailure = fn
	}
}

// WithOnPermanentFailure sets the terminal failure callback.
func WithOnPermanentFailure(fn func(types.PendingItem)) Option {
	return func(c *Config) {
		c.OnPermanentFailure = fn
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m types.MetricsCollector) Option {
	return func(c *Config) {
		c.Metrics = m
	}
}

// WithLogger sets the logger.
func WithLogger(l types.Logger) Option {
	return func(c *Config) {
		c.Logger = l
	}
}

// WithTelemetry sets the telemetry publisher.
func WithTelemetry(p types.TelemetryPublisher) Option {
	return func(c *Config) {
		c.Telemetry = p
	}
}

// WithNowFunc sets the timestamp provider. Useful for deterministic
// tests.
func WithNowFunc(now func() time.Time) Option {
	return func(c *Config) {
		c.Now = now
	}
}

// Processor drains a queue in order against an injected execute
// callback, applying the retry budget and backoff policy per item.
type Processor struct {
	store   Store
	execute ExecuteFunc
	config  Config
}

// New creates a processor for the given store and execute callback.
//
// Parameters:
//   - store: The queue store to drain (typically *uibuilder.Queue)
//   - execute: The backend call applied to each item
//   - opts: Optional configuration options
//
// Returns:
//   - *Processor: A new processor instance
func New(store Store, execute ExecuteFunc, opts ...Option) *Processor {
	config := DefaultConfig()
	for _, opt := range opts {
		opt(&config)
	}

	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 3
	}
	if config.BaseDelay <= 0 {
		config.BaseDelay = 400 * time.Millisecond
	}
	if config.MaxDelay <= 0 {
		config.MaxDelay = backoff.DefaultMaxDelay
	}
	if config.Metrics == nil {
		config.Metrics = metrics.NewNopMetrics()
	}
	if config.Logger == nil {
		config.Logger = logging.NewNopLogger()
	}
	if config.Now == nil {
		config.Now = time.Now
	}

	return &Processor{
		store:   store,
		execute: execute,
		config:  config,
	}
}

// Process drains the owner's queue, one item in flight at a time, in
// strict queue order.
//
// For each item: success removes it and advances; a retryable failure
// updates the item's attempt state, persists it, waits the backoff
// delay, and retries the same item; a failure at the retry budget drops
// the item and advances without delay. A later-queued item is never
// executed before an earlier one still pending retry.
//
// Cancellation is checked between items and during backoff waits, never
// mid-execute. A context already canceled on entry attempts zero items
// and returns the queue unchanged. Items removed before cancellation
// stay removed.
//
// Process never returns an error: execution failures are reported via
// callbacks and telemetry, persistence failures are logged and absorbed.
//
// Parameters:
//   - ctx: Context for cancellation
//   - owner: The owner whose queue to drain
//
// Returns:
//   - []types.PendingItem: The remaining queue after the run
func (p *Processor) Process(ctx context.Context, owner types.OwnerID) []types.PendingItem {
	owner = owner.Normalize()

	// Single read at the start: the processor owns this working copy for
	// the duration of the run. Enqueues racing with an active run are
	// picked up by the next Process call.
	items := p.store.Read(owner)

	// Loop invariant: items[:i] is empty (processed items are removed in
	// place), items[i] is the current item. Success and terminal drop
	// keep i pointing at the next item; a retryable failure repeats i.
	i := 0
	for i < len(items) {
		if ctx.Err() != nil {
			p.config.Logger.Info("replay canceled", "owner", owner.String(), "remaining", len(items))

			return items
		}

		item := items[i]

		start := time.Now()
		err := p.execute(ctx, item)
		p.config.Metrics.ObserveReplayDuration(time.Since(start).Seconds())

		if err == nil {
			items = append(items[:i], items[i+1:]...)
			p.persist(items, owner)
			p.config.Metrics.IncReplaySuccess()
			if p.config.OnSuccess != nil {
				p.config.OnSuccess(item)
			}

			continue
		}

		now := p.config.Now()
		item.RecordFailure(now, err.Error(), types.FailureRequestID(err))
		p.config.Metrics.IncReplayError()
		p.config.Logger.Warn("replay execution failed",
			"owner", owner.String(),
			"item", item.ID,
			"attempt", item.Attempts,
			"maxAttempts", p.config.MaxAttempts,
			"error", err.Error(),
		)
		telemetry.Publish(p.config.Telemetry, types.TelemetryEvent{
			Scope:  types.ScopeQueue,
			Status: "item_failed",
			Meta: map[string]any{
				"item":        item.ID,
				"kind":        string(item.Kind),
				"attempt":     item.Attempts,
				"maxAttempts": p.config.MaxAttempts,
				"error":       err.Error(),
			},
		})

		if item.Attempts >= p.config.MaxAttempts {
			items = append(items[:i], items[i+1:]...)
			p.persist(items, owner)
			p.config.Metrics.IncReplayDropped()
			telemetry.Publish(p.config.Telemetry, types.TelemetryEvent{
				Scope:  types.ScopeQueue,
				Status: "dropped",
				Meta:   map[string]any{"item": item.ID, "attempts": item.Attempts},
			})
			if p.config.OnItemFailure != nil {
				p.config.OnItemFailure(item, 0)
			}
			if p.config.OnPermanentFailure != nil {
				p.config.OnPermanentFailure(item)
			}

			continue
		}

		items[i] = item
		p.persist(items, owner)

		// attemptIndex is zero-based: the first retry waits the base
		// delay.
		delay := backoff.DelayMax(p.config.BaseDelay, item.Attempts-1, p.config.JitterRatio, p.config.MaxDelay)
		if p.config.OnItemFailure != nil {
			p.config.OnItemFailure(item, delay)
		}

		if ctx.Err() != nil {
			return items
		}
		if err := backoff.Sleep(ctx, delay); err != nil {
			return items
		}
	}

	return items
}

// persist writes the working copy back. Quota exhaustion is absorbed by
// the store's fallback; any other persistence failure is logged and
// absorbed here, since nothing but enqueue surfaces persistence errors.
func (p *Processor) persist(items []types.PendingItem, owner types.OwnerID) {
	if err := p.store.Write(items, owner); err != nil {
		p.config.Logger.Error("persisting replay state failed", "owner", owner.String(), "error", err.Error())
		telemetry.Publish(p.config.Telemetry, types.TelemetryEvent{
			Scope:  types.ScopeQueue,
			Status: "persist_failed",
			Meta:   map[string]any{"owner": owner.String(), "error": err.Error()},
		})
	}
}
