package logger

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetByName(t *testing.T) {
	defer Level.Set(slog.LevelInfo)

	assert.True(t, Level.SetByName("DEBUG"))
	assert.True(t, Level.Enabled(slog.LevelDebug))

	assert.True(t, Level.SetByName("warning"))
	assert.False(t, Level.Enabled(slog.LevelInfo))
	assert.True(t, Level.Enabled(slog.LevelError))

	assert.False(t, Level.SetByName("verbose"))
	assert.False(t, Level.Enabled(slog.LevelInfo), "unknown name keeps the level")
}

func TestNewWritesPlainTextToBuffers(t *testing.T) {
	defer Level.Set(slog.LevelInfo)
	Level.Set(slog.LevelInfo)

	var buf bytes.Buffer
	l := New(&buf)
	l.Debug("hidden")
	l.Info("test failed", "test", "TestA")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "level=info")
	assert.Contains(t, out, "test=TestA")
}
