package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetDefaultConfigIsValid(t *testing.T) {
	cfg := GetDefaultConfig()
	require.NoError(t, Validate(cfg))
	assert.Equal(t, "INFO", cfg.Logging.Level)
	assert.Greater(t, cfg.Tunables.OutboundHighWaterMark, cfg.Tunables.OutboundLowWaterMark)
}

func TestValidateRejectsBadLowHighWaterOrdering(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Tunables.OutboundLowWaterMark = cfg.Tunables.OutboundHighWaterMark + 1
	assert.Error(t, Validate(cfg))
}

func TestValidateRejectsBadLogLevel(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Logging.Level = "VERBOSE"
	assert.Error(t, Validate(cfg))
}

func TestLoadFallsBackToDefaultsWhenNoFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	assert.Equal(t, GetDefaultConfig().Logging.Level, cfg.Logging.Level)
}

func TestLoadReadsYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: DEBUG\n  format: json\n  output: stderr\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "DEBUG", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Positive(t, cfg.Tunables.SyncBatchSize, "defaults still apply to fields absent from the file")
}

func TestSaveConfigRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "config.yaml")
	cfg := GetDefaultConfig()
	cfg.Logging.Level = "WARN"

	require.NoError(t, SaveConfig(cfg, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "WARN", loaded.Logging.Level)
}
