package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelFromString(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, LevelFromString(in), in)
	}
}

func TestNewFormats(t *testing.T) {
	var text bytes.Buffer
	New(&text, "info", "text").Info("version done", "version", "1.0")
	assert.Contains(t, text.String(), "version=1.0")

	var js bytes.Buffer
	logger := New(&js, "warn", "json")
	logger.Info("hidden")
	logger.Warn("tool exited", "code", 2)
	var rec map[string]any
	require.NoError(t, json.Unmarshal(js.Bytes(), &rec))
	assert.Equal(t, "tool exited", rec["msg"])
	assert.EqualValues(t, 2, rec["code"])
}

func TestFileLoggerTees(t *testing.T) {
	var console bytes.Buffer
	path := filepath.Join(t.TempDir(), "logs", "run.log")

	logger, closer, err := NewFileLogger(NewHandler(&console, slog.LevelInfo, "text"), path)
	require.NoError(t, err)
	logger.With("project", "lang").Debug("resolved", "drops", 3)
	logger.Info("stored")
	require.NoError(t, closer.Close())

	assert.NotContains(t, console.String(), "resolved")
	assert.Contains(t, console.String(), "stored")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"project":"lang"`)
}

func TestNewDiscard(t *testing.T) {
	NewDiscard().Error("nothing happens")
}
