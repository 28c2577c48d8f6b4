// Package vm provides a VictoriaMetrics implementation of
// types.MetricsCollector.
//
// The collector pre-creates counters and histograms for the queue store
// and replay engine, and exposes them in Prometheus text format via
// Handler or WritePrometheus. Per-owner queue depth gauges are created
// lazily on first use.
//
// # Usage
//
//	collector := vm.New(vm.WithPrefix("myapp"))
//
//	queue := uibuilder.NewQueue(
//	    uibuilder.WithStorage(backend),
//	    uibuilder.WithMetrics(collector),
//	)
//
//	http.HandleFunc("/metrics", collector.Handler)
package vm
