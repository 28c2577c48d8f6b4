// Package metrics provides internal metrics utilities for the offline
// queue library.
package metrics

import "github.com/tytsxai/telegram-ui-builder/types"

// NopMetrics is a no-op metrics collector that discards all metrics.
//
// This is used as the default metrics collector when no collector is
// configured, avoiding nil checks throughout the codebase.
type NopMetrics struct{}

// Compile-time assertion that NopMetrics implements types.MetricsCollector.
var _ types.MetricsCollector = (*NopMetrics)(nil)

// NewNopMetrics creates a new no-op metrics collector.
//
// Returns:
//   - *NopMetrics: A collector that discards all metrics
func NewNopMetrics() *NopMetrics {
	return &NopMetrics{}
}

// IncEnqueued discards the metric.
func (m *NopMetrics) IncEnqueued(_ types.ItemKind) {}

// AddEvicted discards the metric.
func (m *NopMetrics) AddEvicted(_ int) {}

// IncQuotaFallback discards the metric.
func (m *NopMetrics) IncQuotaFallback() {}

// IncLegacyMigration discards the metric.
func (m *NopMetrics) IncLegacyMigration() {}

// IncPersistError discards the metric.
func (m *NopMetrics) IncPersistError() {}

// SetQueueDepth discards the metric.
func (m *NopMetrics) SetQueueDepth(_ types.OwnerID, _ int) {}

// IncReplaySuccess discards the metric.
func (m *NopMetrics) IncReplaySuccess() {}

// IncReplayError discards the metric.
func (m *NopMetrics) IncReplayError() {}

// IncReplayDropped discards the metric.
func (m *NopMetrics) IncReplayDropped() {}

// ObserveReplayDuration discards the metric.
func (m *NopMetrics) ObserveReplayDuration(_ float64) {}
