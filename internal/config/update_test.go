package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", GlobalConfigFile)

	cfg := DefaultConfig()
	cfg.UpdateMs = 1200
	cfg.ProcTree = true
	cfg.ProcSorting = "threads"
	cfg.Changed = true

	require.NoError(t, Save(cfg, path))
	assert.False(t, cfg.NeedsSave())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# Config file for rtop.")
	assert.Contains(t, string(data), "update_ms: 1200")

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1200, loaded.UpdateMs)
	assert.True(t, loaded.ProcTree)
	assert.Equal(t, "threads", loaded.ProcSorting)
	assert.False(t, loaded.Recreate, "a freshly saved file has every key")
	assert.Empty(t, loaded.Warnings)
}

func TestSave_NoChanges(t *testing.T) {
	path := filepath.Join(t.TempDir(), GlobalConfigFile)

	cfg := DefaultConfig()
	require.NoError(t, Save(cfg, path))

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "unchanged config should not be written")
}
