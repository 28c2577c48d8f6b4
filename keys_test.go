package uibuilder

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStorageKey(t *testing.T) {
	assert.Equal(t, "tgui_pending_v2_u42", storageKey(DefaultPrefix, "u42"))
	assert.Equal(t, "tgui_pending_v2_anon", storageKey(DefaultPrefix, ""))
	assert.Equal(t, "custom_v2_u42", storageKey("custom", "u42"))
}

func TestLegacyStorageKey(t *testing.T) {
	assert.Equal(t, "tgui_pending_u42", legacyStorageKey(DefaultPrefix, "u42"))
	assert.Equal(t, "tgui_pending_anon", legacyStorageKey(DefaultPrefix, ""))
}
