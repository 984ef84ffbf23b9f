package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "data/collateral.db", cfg.Database.Path)
	assert.Equal(t, 5*time.Minute, cfg.Notifications.CacheTTL)
	assert.Equal(t, "generated_reports", cfg.Report.OutputDir)
	assert.Equal(t, "info", cfg.Logger.Level)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: 9090
database:
  path: ""
notifications:
  cache_ttl: 30s
  recipients:
    broker:
      - broker@example.com
      - backup@example.com
logger:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Empty(t, cfg.Database.Path)
	assert.Equal(t, 30*time.Second, cfg.Notifications.CacheTTL)
	assert.Equal(t, []string{"broker@example.com", "backup@example.com"}, cfg.Notifications.Recipients["broker"])
	assert.Equal(t, "debug", cfg.Logger.Level)
}

func TestLoadRejectsInvalidPort(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: -1\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.port")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
