package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventstock/eventstock/config"
	"github.com/eventstock/eventstock/internal/core/query"
	"github.com/eventstock/eventstock/internal/export"
	"github.com/eventstock/eventstock/internal/storage/filestore"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Storage: config.StorageConfig{Backend: "file", DataDir: t.TempDir()},
		Export:  config.ExportConfig{ImageDir: "images", DefaultFormat: "xlsx"},
		Query:   config.QueryConfig{Locale: "pl"},
	}
}

func TestOpen_FileBackend(t *testing.T) {
	cfg := testConfig(t)
	ctx := context.Background()

	a, err := Open(ctx, cfg, nil)
	require.NoError(t, err)
	defer a.Close()

	assert.IsType(t, &filestore.Store{}, a.Store)
	assert.Equal(t, export.DirSource{Root: "images"}, a.Images)
	assert.Nil(t, a.Objects)

	_, err = a.Collections.Create(ctx, "dostawcy", query.Record{"nazwa": "Hurtownia"})
	require.NoError(t, err)

	records, err := a.Store.Load(ctx, "dostawcy")
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestOpen_InvalidLocale(t *testing.T) {
	cfg := testConfig(t)
	cfg.Query.Locale = "not a locale!"

	_, err := Open(context.Background(), cfg, nil)
	assert.Error(t, err)
}

func TestOpen_CacheFallsBackWithoutRedis(t *testing.T) {
	cfg := testConfig(t)
	cfg.Storage.Cache = true
	cfg.Redis.Addr = "127.0.0.1:1"

	a, err := Open(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer a.Close()

	assert.IsType(t, &filestore.Store{}, a.Store)
}
