package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyike/WealthGo/config"
)

func TestNewJSONRespectsLevel(t *testing.T) {
	cfg := *config.DefaultConfigWithRoot(t.TempDir())
	cfg.LogFormat = "json"
	cfg.LogLevel = "warn"

	var buf bytes.Buffer
	logger, err := New(cfg, &buf)
	require.NoError(t, err)

	logger.Info("dropped")
	logger.Warn("kept")
	require.NoError(t, logger.Sync())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "kept", entry["msg"])
	assert.Equal(t, "warn", entry["level"])
}

func TestNewDebugOverridesLevel(t *testing.T) {
	cfg := *config.DefaultConfigWithRoot(t.TempDir())
	cfg.LogLevel = "error"
	cfg.Debug = true

	var buf bytes.Buffer
	logger, err := New(cfg, &buf)
	require.NoError(t, err)

	logger.Debug("verbose")
	assert.Contains(t, buf.String(), "verbose")
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	cfg := *config.DefaultConfigWithRoot(t.TempDir())
	cfg.LogLevel = "loud"

	_, err := New(cfg, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestNewFileWritesIntoDataDir(t *testing.T) {
	cfg := *config.DefaultConfigWithRoot(t.TempDir())

	logger, closeFn, err := NewFile(cfg)
	require.NoError(t, err)
	logger.Info("to file")
	require.NoError(t, closeFn())

	data, err := os.ReadFile(cfg.LogFile())
	require.NoError(t, err)
	assert.Contains(t, string(data), "to file")
}
