package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/eventstock/eventstock/config"
)

func TestNew_Level(t *testing.T) {
	logger, err := New(config.LoggerConfig{Mode: "production", Level: "warn"})
	require.NoError(t, err)

	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))
}

func TestNew_InvalidLevel(t *testing.T) {
	_, err := New(config.LoggerConfig{Level: "loud"})
	assert.Error(t, err)
}

func TestNew_FileOutputIsJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eventstock.log")
	logger, err := New(config.LoggerConfig{Mode: "development", Level: "info", FileEnable: true, Filename: path})
	require.NoError(t, err)

	logger.Info("collection loaded", zap.String("collection", "kwiaty"))
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	line := strings.TrimSpace(strings.Split(string(data), "\n")[0])
	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &entry))
	assert.Equal(t, "collection loaded", entry["msg"])
	assert.Equal(t, "kwiaty", entry["collection"])
}

func TestSetup_ReplacesGlobal(t *testing.T) {
	prev := zap.L()
	t.Cleanup(func() { zap.ReplaceGlobals(prev) })

	logger, err := Setup(config.LoggerConfig{Level: "debug"})
	require.NoError(t, err)
	assert.Same(t, logger, zap.L())
}
