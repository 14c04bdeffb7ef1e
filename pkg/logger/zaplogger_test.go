package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		entry := map[string]any{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		out = append(out, entry)
	}
	return out
}

func TestLogger_InfoWritesFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewZapLogger(Options{AppName: "weather-lookup", AppEnv: "test", Writers: []io.Writer{&buf}})

	l.Info("city saved", map[string]any{"location_id": 2801268})

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "info", entries[0]["level"])
	assert.Equal(t, "city saved", entries[0]["msg"])
	assert.Equal(t, "weather-lookup", entries[0]["app_name"])
	assert.Equal(t, "test", entries[0]["app_env"])
	assert.EqualValues(t, 2801268, entries[0]["location_id"])
	assert.Contains(t, entries[0]["caller_func"], "TestLogger_InfoWritesFields")
}

func TestLogger_LevelFiltersDebug(t *testing.T) {
	var buf bytes.Buffer
	l := NewZapLogger(Options{Level: "warn", Writers: []io.Writer{&buf}})

	l.Debug("dropped")
	l.Info("dropped too")
	l.Warning("kept")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "kept", entries[0]["msg"])
}

func TestLogger_ErrorCarriesErrorText(t *testing.T) {
	var buf bytes.Buffer
	l := NewZapLogger(Options{Writers: []io.Writer{&buf}})

	l.Error(errors.New("search failed"), map[string]any{"query": "Lon"})

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "error", entries[0]["level"])
	assert.Equal(t, "search failed", entries[0]["error"])
	assert.Equal(t, "Lon", entries[0]["query"])
	assert.Contains(t, entries[0]["caller_func"], "TestLogger_ErrorCarriesErrorText")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zapcore.ErrorLevel, ParseLevel(" error "))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel(""))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("verbose"))
}
