// Package storage provides the persistence backends for the offline
// queue store.
//
// The queue store persists each owner's queue as a JSON array of pending
// items under a single string key, so a Backend is just a synchronous
// string key/value store:
//
//	type Backend interface {
//	    GetItem(key string) (string, bool, error)
//	    SetItem(key, value string) error
//	    RemoveItem(key string) error
//	}
//
// # Implementations
//
//   - MemoryBackend: process-local map, optional byte quota. For tests,
//     development, and as the implicit fallback when no backend is
//     configured.
//   - PebbleBackend: durable local store on Pebble with synced writes.
//   - NATSBackend: durable shared store on a NATS JetStream key/value
//     bucket.
//
// # Quota Classification
//
// Writes rejected because the backlog no longer fits are reported via
// ErrQuotaExceeded or recognized heuristically by IsQuotaError. The queue
// store treats those as recoverable (it switches to its in-memory
// fallback); every other write error is a fatal persistence failure.
package storage
