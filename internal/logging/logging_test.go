package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormlogger "gorm.io/gorm/logger"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("bogus"))
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "info", "json")
	l.Debug("hidden")
	l.Info("autosave skipped", "reason", "unchanged")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "autosave skipped", entry["msg"])
	assert.Equal(t, "unchanged", entry["reason"])
	assert.Equal(t, "rentals", entry["service"])
}

func TestGormLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Info, GormLevel("debug"))
	assert.Equal(t, gormlogger.Warn, GormLevel("info"))
	assert.Equal(t, gormlogger.Error, GormLevel("error"))
}
