package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ Logger = NoOpLogger{}
	_ Logger = (*SlogAdapter)(nil)
	_ Logger = (*StructuredLogger)(nil)
)

func newBufferLogger(level LogLevel) (*StructuredLogger, *bytes.Buffer) {
	var buf bytes.Buffer
	cfg := DefaultLoggerConfig()
	cfg.Output = &buf
	cfg.Level = level
	cfg.AddSource = false
	return NewLogger(cfg), &buf
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &m))
	return m
}

func TestStructuredLogger_KeyValueArgs(t *testing.T) {
	l, buf := newBufferLogger(LogLevelInfo)
	l.WithComponent("engine").WithSession("s1", "t1").Info("turn started", "role", "casual_visitor")

	m := decodeLine(t, buf)
	assert.Equal(t, "turn started", m["msg"])
	assert.Equal(t, "engine", m["component"])
	assert.Equal(t, "s1", m["session_id"])
	assert.Equal(t, "t1", m["turn_id"])
	assert.Equal(t, "casual_visitor", m["role"])
}

func TestStructuredLogger_LevelFiltering(t *testing.T) {
	l, buf := newBufferLogger(LogLevelWarn)
	l.Info("hidden")
	assert.Zero(t, buf.Len())
	l.Warn("shown")
	assert.NotZero(t, buf.Len())
}

func TestStructuredLogger_WithContextIsolation(t *testing.T) {
	base, _ := newBufferLogger(LogLevelInfo)
	child := base.WithContext("k", "v")
	assert.Empty(t, base.context)
	assert.Equal(t, "v", child.context["k"])
}

func TestStructuredLogger_LogActionExecution(t *testing.T) {
	l, buf := newBufferLogger(LogLevelInfo)
	l.LogActionExecution("notify_sms", 5*time.Millisecond, "failed", errors.New("boom"))

	m := decodeLine(t, buf)
	assert.Equal(t, "Action execution failed", m["msg"])
	assert.Equal(t, "notify_sms", m["action"])
	assert.Equal(t, "boom", m["error"])
	assert.Equal(t, "WARN", m["level"])
}

func TestStructuredLogger_LogTurnDegraded(t *testing.T) {
	l, buf := newBufferLogger(LogLevelInfo)
	l.LogTurn("software_developer", 8, time.Millisecond, []string{"retrieval"})

	m := decodeLine(t, buf)
	assert.Equal(t, "Turn completed degraded", m["msg"])
	assert.Equal(t, float64(8), m["stage_count"])
}

func TestStructuredLogger_LogStageTransition(t *testing.T) {
	l, buf := newBufferLogger(LogLevelInfo)
	l.LogStageTransition("retrieving", "planning", time.Millisecond)
	assert.Zero(t, buf.Len())

	l, buf = newBufferLogger(LogLevelDebug)
	l.LogStageTransition("retrieving", "planning", time.Millisecond)
	m := decodeLine(t, buf)
	assert.Equal(t, "Stage transition", m["msg"])
	assert.Equal(t, "retrieving", m["from"])
	assert.Equal(t, "planning", m["to"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LogLevelDebug, ParseLevel("debug"))
	assert.Equal(t, LogLevelWarn, ParseLevel("warning"))
	assert.Equal(t, LogLevelError, ParseLevel("ERROR"))
	assert.Equal(t, LogLevelInfo, ParseLevel("nonsense"))
	assert.Equal(t, "WARN", LogLevelWarn.String())
}

func TestOrNoOp(t *testing.T) {
	assert.IsType(t, NoOpLogger{}, OrNoOp(nil))
	l, _ := newBufferLogger(LogLevelInfo)
	assert.Same(t, l, OrNoOp(l))
}

func TestStructuredLogger_LogLLMCall(t *testing.T) {
	l, buf := newBufferLogger(LogLevelInfo)
	l.LogLLMCall("gpt-4o-mini", 0, time.Second, false, errors.New("503"))

	m := decodeLine(t, buf)
	assert.Equal(t, "LLM call failed", m["msg"])
	assert.Equal(t, "gpt-4o-mini", m["model"])
	assert.Equal(t, false, m["success"])
	assert.Equal(t, "ERROR", m["level"])
}

func TestSlogAdapter(t *testing.T) {
	var buf bytes.Buffer
	l := NewSlogAdapter(slog.New(slog.NewJSONHandler(&buf, nil)))
	l.Info("hello", "k", 1)

	m := decodeLine(t, &buf)
	assert.Equal(t, "hello", m["msg"])
	assert.Equal(t, float64(1), m["k"])
}
