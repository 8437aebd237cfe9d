package main

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventLogAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.log")
	el := NewEventLog(path)
	_, err := el.Write([]byte("one\n"))
	require.NoError(t, err)
	_, err = el.Write([]byte("two\n"))
	require.NoError(t, err)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "one\ntwo\n", string(b))
}

func TestLoggerRenamesErrorKey(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, slog.LevelDebug).Error("poll", "error", errors.New("boom"))
	assert.Contains(t, buf.String(), "err=boom")
	assert.NotContains(t, buf.String(), "error=boom")
}

func TestLoggerLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, parseLevel("warn"))
	logger.Info("hidden")
	logger.Warn("shown")
	assert.False(t, strings.Contains(buf.String(), "hidden"))
	assert.True(t, strings.Contains(buf.String(), "shown"))

	assert.Equal(t, slog.LevelDebug, parseLevel("debug"))
	assert.Equal(t, slog.LevelInfo, parseLevel("chatty"))
}

func TestFallibleWriterSwallowsErrors(t *testing.T) {
	el := NewEventLog(filepath.Join(t.TempDir(), "missing", "events.log"))
	n, err := fallibleWriter{el}.Write([]byte("x\n"))
	assert.NoError(t, err)
	assert.Equal(t, 2, n)
}
