package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultMatchesSpecDefaults(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "127.0.0.1", cfg.Address)
	assert.Equal(t, 55555, cfg.Port)
	assert.Equal(t, 10, cfg.SubscriberQueueDepth)
}

func TestLoadMissingFileReturnsDefault(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.json"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"address": "0.0.0.0",
		"port": 8090,
		"subscriberQueueDepth": 64,
		"metadataFiles": ["./vss.json"]
	}`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0", cfg.Address)
	assert.Equal(t, 8090, cfg.Port)
	assert.Equal(t, 64, cfg.SubscriberQueueDepth)
	assert.Equal(t, []string{"./vss.json"}, cfg.MetadataFiles)
}

func TestLoadRejectsUnknownField(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"not-a-real-field": true}`), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsBadPort(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"port": 99999}`), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
