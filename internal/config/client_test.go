package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadClient_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lifesync.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  url: https://status.example.com
  client_token: phone-1
  password: pw
sync:
  wifi_only: true
  interval: 45m
`), 0o600))

	cfg, err := LoadClient(path)

	require.NoError(t, err)
	assert.Equal(t, "https://status.example.com", cfg.Server.URL)
	assert.True(t, cfg.Sync.WifiOnly)
	assert.True(t, cfg.Sync.Enabled)
	assert.Equal(t, 45*time.Minute, cfg.Sync.Interval)
	assert.Equal(t, 30*time.Second, cfg.Server.Timeout)
	assert.True(t, cfg.Configured())
}

func TestLoadClient_EnvOverridesDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("LIFESYNC_SERVER_URL", "http://localhost:8080")
	t.Setenv("LIFESYNC_SYNC_ENABLED", "false")

	cfg, err := LoadClient("")

	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080", cfg.Server.URL)
	assert.False(t, cfg.Sync.Enabled)
	assert.Equal(t, 30*time.Minute, cfg.Sync.Interval)
	assert.False(t, cfg.Configured(), "credentials missing")
}

func TestLoadClient_MissingExplicitFile(t *testing.T) {
	_, err := LoadClient(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
