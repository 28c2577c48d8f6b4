package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"
)

// NATSBackendConfig configures the NATS JetStream KV backend.
type NATSBackendConfig struct {
	// Bucket is the JetStream key/value bucket name.
	// Default: "uibuilder-pending"
	Bucket string

	// MaxBytes is the maximum total size of the bucket in bytes. Writes
	// beyond the limit fail with a quota-like error and trigger the queue
	// store's memory fallback.
	// Default: 0 (server default, effectively unlimited)
	MaxBytes int64

	// Replicas is the number of bucket replicas (for fault tolerance).
	// Default: 1 (use 3 for production clusters)
	Replicas int

	// OpTimeout bounds each KV operation. The Backend interface is
	// synchronous, so every call runs under its own timeout context.
	// Default: 5 seconds
	OpTimeout time.Duration
}

// DefaultNATSBackendConfig returns the default configuration.
//
// Returns:
//   - NATSBackendConfig: Default configuration with reasonable defaults
func DefaultNATSBackendConfig() NATSBackendConfig {
	return NATSBackendConfig{
		Bucket:    "uibuilder-pending",
		Replicas:  1,
		OpTimeout: 5 * time.Second,
	}
}

// NATSBackendOption configures a NATSBackend.
type NATSBackendOption func(*NATSBackendConfig)

// WithBucket sets the JetStream KV bucket name.
//
// Parameters:
//   - name: Bucket name
//
// Returns:
//   - NATSBackendOption: Configuration option
func WithBucket(name string) NATSBackendOption {
	return func(c *NATSBackendConfig) {
		c.Bucket = name
	}
}

// WithBucketMaxBytes sets the bucket size limit in bytes.
//
// Parameters:
//   - n: Maximum total bucket size
//
// Returns:
//   - NATSBackendOption: Configuration option
func WithBucketMaxBytes(n int64) NATSBackendOption {
	return func(c *NATSBackendConfig) {
		c.MaxBytes = n
	}
}

// WithReplicas sets the number of bucket replicas.
//
// Parameters:
//   - n: Replica count
//
// Returns:
//   - NATSBackendOption: Configuration option
func WithReplicas(n int) NATSBackendOption {
	return func(c *NATSBackendConfig) {
		c.Replicas = n
	}
}

// WithOpTimeout sets the per-operation timeout.
//
// Parameters:
//   - d: Timeout duration
//
// Returns:
//   - NATSBackendOption: Configuration option
func WithOpTimeout(d time.Duration) NATSBackendOption {
	return func(c *NATSBackendConfig) {
		c.OpTimeout = d
	}
}

// NATSBackend is a durable Backend on top of a NATS JetStream key/value
// bucket.
//
// Unlike MemoryBackend, values persisted to JetStream survive process
// crashes and are visible to every client of the same bucket. This is the
// recommended backend for deployments that already run NATS.
type NATSBackend struct {
	kv     jetstream.KeyValue
	config NATSBackendConfig
}

// NewNATSBackend creates (or binds to) the configured KV bucket.
//
// Parameters:
//   - ctx: Context for bucket creation
//   - js: A JetStream context (created via jetstream.New(conn))
//   - opts: Optional configuration options
//
// Returns:
//   - *NATSBackend: A new backend instance
//   - error: Bucket creation failure
func NewNATSBackend(ctx context.Context, js jetstream.JetStream, opts ...NATSBackendOption) (*NATSBackend, error) {
	config := DefaultNATSBackendConfig()
	for _, opt := range opts {
		opt(&config)
	}

	kv, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:   config.Bucket,
		MaxBytes: config.MaxBytes,
		Replicas: config.Replicas,
	})
	if err != nil {
		return nil, fmt.Errorf("storage: create kv bucket %s: %w", config.Bucket, err)
	}

	return &NATSBackend{kv: kv, config: config}, nil
}

// Compile-time assertion that NATSBackend implements Backend.
var _ Backend = (*NATSBackend)(nil)

// GetItem returns the value stored under key.
func (n *NATSBackend) GetItem(key string) (string, bool, error) {
	ctx, cancel := n.opContext()
	defer cancel()

	entry, err := n.kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return "", false, nil
		}

		return "", false, fmt.Errorf("storage: nats get %s: %w", key, err)
	}

	return string(entry.Value()), true, nil
}

// SetItem stores value under key.
//
// A bucket that is at its MaxBytes limit fails with an error recognized
// by IsQuotaError ("maximum bytes exceeded").
func (n *NATSBackend) SetItem(key, value string) error {
	ctx, cancel := n.opContext()
	defer cancel()

	if _, err := n.kv.PutString(ctx, key, value); err != nil {
		return fmt.Errorf("storage: nats put %s: %w", key, err)
	}

	return nil
}

// RemoveItem deletes the value stored under key.
func (n *NATSBackend) RemoveItem(key string) error {
	ctx, cancel := n.opContext()
	defer cancel()

	if err := n.kv.Delete(ctx, key); err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return nil
		}

		return fmt.Errorf("storage: nats delete %s: %w", key, err)
	}

	return nil
}

// Bucket returns the configured bucket name.
func (n *NATSBackend) Bucket() string {
	return n.config.Bucket
}

// opContext returns a timeout-bounded context for one KV operation.
func (n *NATSBackend) opContext() (context.Context, context.CancelFunc) {
	timeout := n.config.OpTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	return context.WithTimeout(context.Background(), timeout)
}
