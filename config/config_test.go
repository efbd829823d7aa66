package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "harness.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadDefaultsWithoutAFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "", cfg.ExternalOriginURL)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout())
	assert.Equal(t, 5*time.Second, cfg.BrowserTimeout())
	assert.Equal(t, 5*time.Second, cfg.FetchTimeout())
	assert.Equal(t, 10*time.Second, cfg.StartupTimeout())
}

func TestLoadReadsYAMLAndKeepsDefaultsForUnsetFields(t *testing.T) {
	path := writeConfigFile(t,
		"externalOriginUrl: https://origin.example.com\nrequestTimeoutMs: 250\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://origin.example.com", cfg.ExternalOriginURL)
	assert.Equal(t, 250*time.Millisecond, cfg.RequestTimeout())
	assert.Equal(t, 5*time.Second, cfg.BrowserTimeout())
}

func TestEnvOverridesBeatTheFile(t *testing.T) {
	path := writeConfigFile(t, "requestTimeoutMs: 250\n")
	t.Setenv("ROUTE_CONTRACT_REQUEST_TIMEOUT_MS", "750")
	t.Setenv("ROUTE_CONTRACT_EXTERNAL_URL", "http://127.0.0.1:9999")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 750*time.Millisecond, cfg.RequestTimeout())
	assert.Equal(t, "http://127.0.0.1:9999", cfg.ExternalOriginURL)
}

func TestLoadRejectsBadInput(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.Error(t, err)
	})
	t.Run("unparseable yaml", func(t *testing.T) {
		_, err := Load(writeConfigFile(t, "{{not yaml"))
		assert.Error(t, err)
	})
	t.Run("zero timeout", func(t *testing.T) {
		_, err := Load(writeConfigFile(t, "requestTimeoutMs: 0\n"))
		assert.Error(t, err)
	})
	t.Run("negative timeout", func(t *testing.T) {
		_, err := Load(writeConfigFile(t, "browserTimeoutMs: -1\n"))
		assert.Error(t, err)
	})
	t.Run("relative origin URL", func(t *testing.T) {
		_, err := Load(writeConfigFile(t, "externalOriginUrl: not-a-url\n"))
		assert.Error(t, err)
	})
	t.Run("unparseable env override", func(t *testing.T) {
		t.Setenv("ROUTE_CONTRACT_STARTUP_TIMEOUT_MS", "soon")
		_, err := Load("")
		assert.Error(t, err)
	})
}
