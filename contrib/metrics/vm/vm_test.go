package vm_test

import (
	"strings"
	"testing"

	"github.com/VictoriaMetrics/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tytsxai/telegram-ui-builder/contrib/metrics/vm"
	"github.com/tytsxai/telegram-ui-builder/types"
)

// newCollector builds a collector on a private set so tests do not touch
// the global registry.
func newCollector(opts ...vm.Option) *vm.Collector {
	opts = append([]vm.Option{vm.WithMetricsSet(metrics.NewSet())}, opts...)

	return vm.New(opts...)
}

func render(c *vm.Collector) string {
	var sb strings.Builder
	c.WritePrometheus(&sb)

	return sb.String()
}

func TestCollectorCounters(t *testing.T) {
	c := newCollector()

	c.IncEnqueued(types.KindSave)
	c.IncEnqueued(types.KindSave)
	c.IncEnqueued(types.KindUpdate)
	c.AddEvicted(3)
	c.AddEvicted(0)
	c.IncQuotaFallback()
	c.IncLegacyMigration()
	c.IncPersistError()
	c.IncReplaySuccess()
	c.IncReplayError()
	c.IncReplayDropped()

	out := render(c)
	assert.Contains(t, out, `uibuilder_enqueued_total{kind="save"} 2`)
	assert.Contains(t, out, `uibuilder_enqueued_total{kind="update"} 1`)
	assert.Contains(t, out, `uibuilder_evicted_total 3`)
	assert.Contains(t, out, `uibuilder_quota_fallback_total 1`)
	assert.Contains(t, out, `uibuilder_legacy_migration_total 1`)
	assert.Contains(t, out, `uibuilder_persist_errors_total 1`)
	assert.Contains(t, out, `uibuilder_replay_success_total 1`)
	assert.Contains(t, out, `uibuilder_replay_errors_total 1`)
	assert.Contains(t, out, `uibuilder_replay_dropped_total 1`)
}

func TestCollectorQueueDepthGauges(t *testing.T) {
	c := newCollector()

	c.SetQueueDepth("u1", 7)
	c.SetQueueDepth("u2", 2)
	// Re-setting an existing owner updates the same gauge.
	c.SetQueueDepth("u1", 4)

	out := render(c)
	assert.Contains(t, out, `uibuilder_queue_depth{owner="u1"} 4`)
	assert.Contains(t, out, `uibuilder_queue_depth{owner="u2"} 2`)
}

func TestCollectorCustomPrefix(t *testing.T) {
	c := newCollector(vm.WithPrefix("myapp"))

	c.IncReplaySuccess()

	out := render(c)
	assert.Contains(t, out, `myapp_replay_success_total 1`)
	assert.NotContains(t, out, "uibuilder_")
}

func TestCollectorReplayDurationHistogram(t *testing.T) {
	c := newCollector()

	c.ObserveReplayDuration(0.05)
	c.ObserveReplayDuration(0.2)

	out := render(c)
	require.Contains(t, out, `uibuilder_replay_duration_seconds_sum`)
	assert.Contains(t, out, `uibuilder_replay_duration_seconds_count 2`)
}
