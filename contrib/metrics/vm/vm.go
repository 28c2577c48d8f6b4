package vm

import (
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/VictoriaMetrics/metrics"

	"github.com/tytsxai/telegram-ui-builder/types"
)

// Option configures a Collector.
type Option func(*Collector)

// WithPrefix sets the metric name prefix.
//
// Default: "uibuilder"
//
// Parameters:
//   - prefix: The prefix to use for all metric names
//
// Returns:
//   - Option: A configuration option
func WithPrefix(prefix string) Option {
	return func(c *Collector) {
		c.prefix = prefix
	}
}

// WithMetricsSet sets the metrics set to use.
//
// If provided, the collector will register metrics with this set instead
// of creating a new one. The caller is responsible for exposing this set
// (e.g., via metrics.WritePrometheus or a custom handler).
//
// Parameters:
//   - set: The metrics set to use
//
// Returns:
//   - Option: A configuration option
func WithMetricsSet(set *metrics.Set) Option {
	return func(c *Collector) {
		c.set = set
	}
}

// Collector implements types.MetricsCollector using VictoriaMetrics.
//
// Scalar metrics are pre-created at initialization time; the per-owner
// queue depth gauges are created lazily on first use. Thread-safe for
// concurrent use.
type Collector struct {
	set    *metrics.Set
	prefix string

	// Queue store metrics
	enqueuedSave    *metrics.Counter
	enqueuedUpdate  *metrics.Counter
	evicted         *metrics.Counter
	quotaFallback   *metrics.Counter
	legacyMigration *metrics.Counter
	persistErrors   *metrics.Counter

	// Per-owner queue depth gauges, created on first SetQueueDepth.
	depthMu sync.Mutex
	depths  map[types.OwnerID]*atomic.Int64

	// Replay metrics
	replaySuccess  *metrics.Counter
	replayErrors   *metrics.Counter
	replayDropped  *metrics.Counter
	replayDuration *metrics.Histogram
}

// Compile-time assertion that Collector implements types.MetricsCollector.
var _ types.MetricsCollector = (*Collector)(nil)

// New creates a new VictoriaMetrics-based metrics collector.
//
// The collector creates its own metrics.Set and registers it globally
// unless one is provided via WithMetricsSet.
//
// Parameters:
//   - opts: Configuration options (e.g., WithPrefix)
//
// Returns:
//   - *Collector: A new metrics collector ready for use
//
// Example:
//
//	collector := vm.New(vm.WithPrefix("myapp"))
//	queue := uibuilder.NewQueue(uibuilder.WithMetrics(collector))
func New(opts ...Option) *Collector {
	c := &Collector{
		prefix: "uibuilder",
		depths: make(map[types.OwnerID]*atomic.Int64),
	}

	for _, opt := range opts {
		opt(c)
	}

	// If no set is provided, create a new one and register it globally.
	// If a set is provided, we assume the caller manages it.
	if c.set == nil {
		c.set = metrics.NewSet()
		metrics.RegisterSet(c.set)
	}

	c.initMetrics()

	return c
}

// initMetrics pre-creates the scalar metrics with the configured prefix.
func (c *Collector) initMetrics() {
	p := c.prefix

	c.enqueuedSave = c.set.NewCounter(fmt.Sprintf(`%s_enqueued_total{kind="save"}`, p))
	c.enqueuedUpdate = c.set.NewCounter(fmt.Sprintf(`%s_enqueued_total{kind="update"}`, p))
	c.evicted = c.set.NewCounter(fmt.Sprintf(`%s_evicted_total`, p))
	c.quotaFallback = c.set.NewCounter(fmt.Sprintf(`%s_quota_fallback_total`, p))
	c.legacyMigration = c.set.NewCounter(fmt.Sprintf(`%s_legacy_migration_total`, p))
	c.persistErrors = c.set.NewCounter(fmt.Sprintf(`%s_persist_errors_total`, p))

	c.replaySuccess = c.set.NewCounter(fmt.Sprintf(`%s_replay_success_total`, p))
	c.replayErrors = c.set.NewCounter(fmt.Sprintf(`%s_replay_errors_total`, p))
	c.replayDropped = c.set.NewCounter(fmt.Sprintf(`%s_replay_dropped_total`, p))
	c.replayDuration = c.set.NewHistogram(fmt.Sprintf(`%s_replay_duration_seconds`, p))
}

// Set returns the underlying metrics set.
func (c *Collector) Set() *metrics.Set {
	return c.set
}

// Handler returns an HTTP handler that exposes metrics in Prometheus format.
//
// Example:
//
//	http.HandleFunc("/metrics", collector.Handler)
func (c *Collector) Handler(w http.ResponseWriter, _ *http.Request) {
	c.set.WritePrometheus(w)
}

// WritePrometheus writes all metrics in Prometheus format to the given writer.
//
// Parameters:
//   - w: The writer to write metrics to
func (c *Collector) WritePrometheus(w io.Writer) {
	c.set.WritePrometheus(w)
}

// IncEnqueued increments the enqueue counter for the given kind.
func (c *Collector) IncEnqueued(kind types.ItemKind) {
	if kind == types.KindUpdate {
		c.enqueuedUpdate.Inc()

		return
	}
	c.enqueuedSave.Inc()
}

// AddEvicted adds the number of items dropped by a trim event.
func (c *Collector) AddEvicted(count int) {
	if count > 0 {
		c.evicted.Add(count)
	}
}

// IncQuotaFallback increments the quota fallback counter.
func (c *Collector) IncQuotaFallback() {
	c.quotaFallback.Inc()
}

// IncLegacyMigration increments the legacy migration counter.
func (c *Collector) IncLegacyMigration() {
	c.legacyMigration.Inc()
}

// IncPersistError increments the fatal persistence failure counter.
func (c *Collector) IncPersistError() {
	c.persistErrors.Inc()
}

// SetQueueDepth sets the queue depth gauge for an owner, creating the
// gauge on first use.
func (c *Collector) SetQueueDepth(owner types.OwnerID, depth int) {
	c.depthMu.Lock()
	gauge, ok := c.depths[owner]
	if !ok {
		gauge = &atomic.Int64{}
		c.depths[owner] = gauge
		c.set.NewGauge(fmt.Sprintf(`%s_queue_depth{owner=%q}`, c.prefix, owner.String()), func() float64 {
			return float64(gauge.Load())
		})
	}
	c.depthMu.Unlock()

	gauge.Store(int64(depth))
}

// IncReplaySuccess increments the replay success counter.
func (c *Collector) IncReplaySuccess() {
	c.replaySuccess.Inc()
}

// IncReplayError increments the replay error counter.
func (c *Collector) IncReplayError() {
	c.replayErrors.Inc()
}

// IncReplayDropped increments the replay dropped counter.
func (c *Collector) IncReplayDropped() {
	c.replayDropped.Inc()
}

// ObserveReplayDuration records one execute call duration in seconds.
func (c *Collector) ObserveReplayDuration(seconds float64) {
	c.replayDuration.Update(seconds)
}
