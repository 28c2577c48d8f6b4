package storage_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tytsxai/telegram-ui-builder/storage"
)

func TestMemoryBackendRoundTrip(t *testing.T) {
	m := storage.NewMemoryBackend()

	_, ok, err := m.GetItem("missing")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, m.SetItem("k", "v1"))

	v, ok, err := m.GetItem("k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "v1", v)

	// Overwrite keeps a single entry.
	require.NoError(t, m.SetItem("k", "v2"))
	require.Equal(t, 1, m.Len())

	v, ok, err = m.GetItem("k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "v2", v)

	require.NoError(t, m.RemoveItem("k"))
	_, ok, err = m.GetItem("k")
	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, 0, m.Len())
}

func TestMemoryBackendRemoveMissingKey(t *testing.T) {
	m := storage.NewMemoryBackend()
	require.NoError(t, m.RemoveItem("never-set"))
}

func TestMemoryBackendQuota(t *testing.T) {
	// Budget fits "k" + "1234" exactly.
	m := storage.NewMemoryBackend(storage.WithMaxBytes(5))

	require.NoError(t, m.SetItem("k", "1234"))

	// A second key would exceed the budget.
	err := m.SetItem("x", "y")
	require.ErrorIs(t, err, storage.ErrQuotaExceeded)
	require.True(t, storage.IsQuotaError(err))

	// Shrinking the existing value is always allowed.
	require.NoError(t, m.SetItem("k", "12"))

	// Growing it past the budget is not.
	require.ErrorIs(t, m.SetItem("k", "123456"), storage.ErrQuotaExceeded)

	// Rejected writes must not alter state.
	v, ok, err := m.GetItem("k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "12", v)

	// Freeing space makes room again.
	require.NoError(t, m.RemoveItem("k"))
	require.NoError(t, m.SetItem("x", "yyyy"))
}
