// Package testutil provides shared test helpers for the offline queue
// library: an embedded NATS server with JetStream for storage backend
// tests, a failure-injecting storage wrapper, and a telemetry recorder.
//
// This package is intended for tests only and should not be imported by
// production code.
package testutil
