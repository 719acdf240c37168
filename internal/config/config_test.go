package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadServiceConfig_EmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := LoadServiceConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultServiceConfig(), cfg)
}

func TestLoadServiceConfig_OverridesOnlySetFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "service.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_buckets: 2000\nseeding: false\n"), 0o600))

	cfg, err := LoadServiceConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 2000, cfg.MaxBuckets)
	assert.False(t, cfg.Seeding)
	assert.Equal(t, 50, cfg.MaxPrefixLen) // untouched default
}

func TestLoadServiceConfig_MissingFileErrors(t *testing.T) {
	_, err := LoadServiceConfig(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	assert.Error(t, err)
}

func TestDefaultPluginConfig_MatchesSpecDefaults(t *testing.T) {
	cfg := DefaultPluginConfig()
	assert.Equal(t, 15, cfg.TimeoutMS)
	assert.Equal(t, 1000, cfg.ConnectTimeoutMS)
}

func TestLoadPluginConfig_ParsesTimeoutMS(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plugin.yaml")
	require.NoError(t, os.WriteFile(path, []byte("timeout_ms: 25\n"), 0o600))

	cfg, err := LoadPluginConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 25, cfg.TimeoutMS)
}
