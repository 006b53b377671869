package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "eventstock.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, "server:\n  port: \"9090\"\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "release", cfg.Server.Mode)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "file", cfg.Storage.Backend)
	assert.Equal(t, "data", cfg.Storage.DataDir)
	assert.Equal(t, "pl", cfg.Query.Locale)
	assert.Equal(t, "xlsx", cfg.Export.DefaultFormat)
}

func TestLoad_FileValues(t *testing.T) {
	path := writeConfig(t, `
storage:
  backend: postgres
  cache: true
database:
  host: db.local
  port: 5433
  user: florist
  password: secret
  name: stock
redis:
  ttl: 30s
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Storage.Backend)
	assert.True(t, cfg.Storage.Cache)
	assert.Equal(t, 30*time.Second, cfg.Redis.TTL)
	assert.Equal(t,
		"host=db.local port=5433 user=florist password=secret dbname=stock sslmode=disable",
		cfg.Database.ConnectionString())
}

func TestLoad_EnvOverride(t *testing.T) {
	path := writeConfig(t, "database:\n  password: from-file\n")
	t.Setenv("EVENTSTOCK_DATABASE_PASSWORD", "from-env")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Database.Password)
}

func TestLoad_RejectsUnknownBackend(t *testing.T) {
	path := writeConfig(t, "storage:\n  backend: sqlite\n")

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
