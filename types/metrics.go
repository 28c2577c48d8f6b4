package types

// MetricsCollector defines methods for collecting operational metrics.
//
// Implementations should be thread-safe as methods may be called
// concurrently.
//
// Example usage with VictoriaMetrics (via contrib/metrics/vm):
//
//	import vmmetrics "github.com/tytsxai/telegram-ui-builder/contrib/metrics/vm"
//
//	collector := vmmetrics.New(vmmetrics.WithPrefix("uibuilder"))
//	queue := uibuilder.NewQueue(uibuilder.WithMetrics(collector))
//
//	// Expose metrics via HTTP
//	http.HandleFunc("/metrics", collector.Handler)
type MetricsCollector interface {
	// ----------------------
	// Queue Store
	// ----------------------

	// IncEnqueued increments the enqueue counter for the given kind.
	IncEnqueued(kind ItemKind)

	// AddEvicted adds the number of items dropped by a FIFO trim event.
	AddEvicted(count int)

	// IncQuotaFallback increments the counter when a durable write falls
	// back to memory due to storage exhaustion.
	IncQuotaFallback()

	// IncLegacyMigration increments the counter when a legacy-format
	// queue is converted to the versioned layout.
	IncLegacyMigration()

	// IncPersistError increments the counter for fatal persistence
	// failures.
	IncPersistError()

	// SetQueueDepth sets the current queue depth gauge for an owner.
	SetQueueDepth(owner OwnerID, depth int)

	// ----------------------
	// Replay
	// ----------------------

	// IncReplaySuccess increments the counter when a replayed item
	// succeeds.
	IncReplaySuccess()

	// IncReplayError increments the counter when a replay attempt fails.
	IncReplayError()

	// IncReplayDropped increments the counter when an item exhausts its
	// retry budget and is dropped.
	IncReplayDropped()

	// ObserveReplayDuration records one execute call duration in seconds.
	ObserveReplayDuration(seconds float64)
}
