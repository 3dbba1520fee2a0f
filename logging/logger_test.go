package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ Logger = (*StructuredLogger)(nil)
	_ Logger = (*SlogAdapter)(nil)
	_ Logger = NoOpLogger{}

	_ GenerationLogger = (*StructuredLogger)(nil)
	_ ToolCallLogger   = (*StructuredLogger)(nil)
)

func newBufferLogger(level LogLevel) (*StructuredLogger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	cfg := DefaultLoggerConfig()
	cfg.Output = buf
	cfg.Level = level
	cfg.AddSource = false
	return NewLogger(cfg), buf
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var entries []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		entry := map[string]any{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		entries = append(entries, entry)
	}
	return entries
}

func TestStructuredLogger_KeyValueArgs(t *testing.T) {
	l, buf := newBufferLogger(LogLevelDebug)
	l.WithComponent("parser").WithContext("request", "r1").Info("parser.call.detected", "function", "ping")

	entries := decodeLines(t, buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "parser.call.detected", entries[0]["msg"])
	assert.Equal(t, "parser", entries[0]["component"])
	assert.Equal(t, "r1", entries[0]["request"])
	assert.Equal(t, "ping", entries[0]["function"])
}

func TestStructuredLogger_LevelFiltering(t *testing.T) {
	l, buf := newBufferLogger(LogLevelWarn)
	l.Debug("hidden")
	l.Info("hidden")
	l.Warn("shown")
	l.Error("shown too")

	entries := decodeLines(t, buf)
	require.Len(t, entries, 2)
	assert.Equal(t, "WARN", entries[0]["level"])
	assert.Equal(t, "ERROR", entries[1]["level"])
}

func TestStructuredLogger_WithDoesNotLeak(t *testing.T) {
	base, buf := newBufferLogger(LogLevelInfo)
	_ = base.WithContext("k", "v")
	base.Info("plain")

	entries := decodeLines(t, buf)
	require.Len(t, entries, 1)
	_, ok := entries[0]["k"]
	assert.False(t, ok)
}

func TestStructuredLogger_LogToolCall(t *testing.T) {
	l, buf := newBufferLogger(LogLevelInfo)
	l.LogToolCall("get_weather", 5*time.Millisecond, nil)
	l.LogToolCall("get_weather", time.Millisecond, errors.New("boom"), "code", "EXECUTION")

	entries := decodeLines(t, buf)
	require.Len(t, entries, 2)
	assert.Equal(t, "Tool execution completed", entries[0]["msg"])
	assert.Equal(t, true, entries[0]["success"])
	assert.Equal(t, "Tool execution failed", entries[1]["msg"])
	assert.Equal(t, "boom", entries[1]["error"])
	assert.Equal(t, "EXECUTION", entries[1]["code"])
}

func TestStructuredLogger_LogGeneration(t *testing.T) {
	l, buf := newBufferLogger(LogLevelInfo)
	l.LogGeneration("gemma", 12, 3*time.Millisecond, nil, "operation", "assistant.generate")
	l.LogGeneration("gemma", 0, time.Millisecond, errors.New("offline"))

	entries := decodeLines(t, buf)
	require.Len(t, entries, 2)

	assert.Equal(t, "Generation completed", entries[0]["msg"])
	assert.Equal(t, "gemma", entries[0]["model"])
	assert.Equal(t, float64(12), entries[0]["response_chars"])
	assert.Equal(t, "assistant.generate", entries[0]["operation"])
	assert.Equal(t, true, entries[0]["success"])

	assert.Equal(t, "Generation failed", entries[1]["msg"])
	assert.Equal(t, "ERROR", entries[1]["level"])
	assert.Equal(t, "offline", entries[1]["error"])
	assert.Equal(t, false, entries[1]["success"])
}

func TestLogLevelString(t *testing.T) {
	assert.Equal(t, "DEBUG", LogLevelDebug.String())
	assert.Equal(t, "ERROR", LogLevelError.String())
	assert.Equal(t, "UNKNOWN", LogLevel(42).String())
}

func TestOrNoOp(t *testing.T) {
	assert.Equal(t, NoOpLogger{}, OrNoOp(nil))
	l, _ := newBufferLogger(LogLevelInfo)
	assert.Same(t, l, OrNoOp(l))
}
