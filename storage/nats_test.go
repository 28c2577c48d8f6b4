package storage_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tytsxai/telegram-ui-builder/storage"
	"github.com/tytsxai/telegram-ui-builder/test/testutil"
)

func TestNATSBackendRoundTrip(t *testing.T) {
	js := testutil.StartEmbeddedNATS(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	b, err := storage.NewNATSBackend(ctx, js, storage.WithBucket("roundtrip"))
	require.NoError(t, err)
	require.Equal(t, "roundtrip", b.Bucket())

	_, ok, err := b.GetItem("missing")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, b.SetItem("k", "v1"))

	v, ok, err := b.GetItem("k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "v1", v)

	require.NoError(t, b.SetItem("k", "v2"))

	v, ok, err = b.GetItem("k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "v2", v)

	require.NoError(t, b.RemoveItem("k"))

	_, ok, err = b.GetItem("k")
	require.NoError(t, err)
	require.False(t, ok)

	// Deleting an absent key is a no-op.
	require.NoError(t, b.RemoveItem("k"))
}

func TestNATSBackendSharedBucket(t *testing.T) {
	js := testutil.StartEmbeddedNATS(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	first, err := storage.NewNATSBackend(ctx, js, storage.WithBucket("shared"))
	require.NoError(t, err)
	require.NoError(t, first.SetItem("k", "from-first"))

	// A second backend bound to the same bucket sees the same data.
	second, err := storage.NewNATSBackend(ctx, js, storage.WithBucket("shared"))
	require.NoError(t, err)

	v, ok, err := second.GetItem("k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "from-first", v)
}

func TestNATSBackendQuota(t *testing.T) {
	js := testutil.StartEmbeddedNATS(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	b, err := storage.NewNATSBackend(ctx, js,
		storage.WithBucket("tiny"),
		storage.WithBucketMaxBytes(512),
	)
	require.NoError(t, err)

	// Small writes fit.
	require.NoError(t, b.SetItem("k", "small"))

	// A write past the bucket limit is rejected with a quota-like error.
	big := make([]byte, 4096)
	for i := range big {
		big[i] = 'x'
	}

	err = b.SetItem("k", string(big))
	require.Error(t, err)
	require.True(t, storage.IsQuotaError(err), "expected quota error, got: %v", err)
}
