package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mgmtd/beadapter/internal/clientid"
)

func TestLoadRegistryFallsBackToSeed(t *testing.T) {
	m, err := LoadRegistry(RegistryConfig{})
	require.NoError(t, err)
	assert.Equal(t, 3, m.Len())
}

func TestLoadRegistryFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.yaml")
	content := "patterns:\n  - pattern: \"/frr-vrf:lib/*\"\n    clients: [\"staticd\"]\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	m, err := LoadRegistry(RegistryConfig{Path: path})
	require.NoError(t, err)
	require.Equal(t, 1, m.Len())

	got := m.Resolve("/frr-vrf:lib/vrf[name='default']")
	require.Contains(t, got, clientid.STATICD)
}

func TestLoadRegistryUnknownClientErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.yaml")
	content := "patterns:\n  - pattern: \"/x/*\"\n    clients: [\"not-a-real-client\"]\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	_, err := LoadRegistry(RegistryConfig{Path: path})
	assert.Error(t, err)
}
