package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/go-logr/zapr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	return out
}

func TestClientLogger_KeyValueArgsAndContext(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&LoggerConfig{Level: LogLevelDebug, Output: &buf}).
		WithComponent("client").
		WithSession("demo", "s1").
		WithContext("host", "local")

	l.Info("created session", "status", 200)

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "created session", lines[0]["msg"])
	assert.Equal(t, "client", lines[0]["component"])
	assert.Equal(t, "demo", lines[0]["app_name"])
	assert.Equal(t, "s1", lines[0]["session_id"])
	assert.Equal(t, "local", lines[0]["host"])
	assert.Equal(t, float64(200), lines[0]["status"])
}

func TestClientLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&LoggerConfig{Level: LogLevelWarn, Output: &buf})
	l.Debug("d")
	l.Info("i")
	l.Warn("w")
	l.Error("e")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "w", lines[0]["msg"])
	assert.Equal(t, "e", lines[1]["msg"])
}

func TestClientLogger_WithDoesNotMutateParent(t *testing.T) {
	var buf bytes.Buffer
	parent := NewLogger(&LoggerConfig{Level: LogLevelInfo, Output: &buf})
	_ = parent.WithContext("k", "v").WithComponent("child")
	parent.Info("parent")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.NotContains(t, lines[0], "k")
	assert.NotContains(t, lines[0], "component")
}

func TestClientLogger_LogHTTPCall(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&LoggerConfig{Level: LogLevelDebug, Output: &buf})
	l.LogHTTPCall("POST", "/run", 200, 5*time.Millisecond, nil)
	l.LogHTTPCall("DELETE", "/apps/a/users/u/sessions/s", 0, time.Millisecond, errors.New("refused"))

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "DEBUG", lines[0]["level"])
	assert.Equal(t, "/run", lines[0]["path"])
	assert.Equal(t, "ERROR", lines[1]["level"])
	assert.Equal(t, "refused", lines[1]["error"])
}

func TestClientLogger_LogRun(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&LoggerConfig{Level: LogLevelInfo, Format: "json", Output: &buf})
	l.LogRun("s1", 3, 2, time.Second, nil)

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "Run completed", lines[0]["msg"])
	assert.Equal(t, float64(3), lines[0]["event_count"])
	assert.Equal(t, true, lines[0]["success"])
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]LogLevel{"debug": LogLevelDebug, "INFO": LogLevelInfo, "": LogLevelInfo, "warning": LogLevelWarn, "error": LogLevelError} {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestZapAdapter(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	var l Logger = NewZapAdapter(zap.New(core))

	l.Info("created session", "session_id", "s1")
	l.Error("run failed", "status", 500)

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "created session", entries[0].Message)
	assert.Equal(t, "s1", entries[0].ContextMap()["session_id"])
	assert.Equal(t, int64(500), entries[1].ContextMap()["status"])
}

func TestLogrAdapter(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	var l Logger = NewLogrAdapter(zapr.NewLogger(zap.New(core)))

	l.Debug("request sent", "path", "/run")
	l.Warn("event error", "code", "RATE_LIMIT")
	l.Error("run failed", "status", 500, "error", errors.New("boom"))

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, zap.DebugLevel, entries[0].Level)
	assert.Equal(t, "/run", entries[0].ContextMap()["path"])
	assert.Equal(t, "warn", entries[1].ContextMap()["level"])
	assert.Equal(t, zap.ErrorLevel, entries[2].Level)
	assert.Equal(t, "boom", entries[2].ContextMap()["error"])
	assert.Equal(t, int64(500), entries[2].ContextMap()["status"])
}

func TestSlogAdapter(t *testing.T) {
	var buf bytes.Buffer
	l := NewSlogAdapter(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	l.Debug("probe", "path", "/list-apps")
	l.Error("request failed", "status", 502)

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "DEBUG", lines[0]["level"])
	assert.Equal(t, "/list-apps", lines[0]["path"])
	assert.Equal(t, "ERROR", lines[1]["level"])
	assert.Equal(t, float64(502), lines[1]["status"])
}

func TestLoggersSatisfyInterface(t *testing.T) {
	var _ Logger = NoOpLogger{}
	var _ Logger = &SlogAdapter{}
	var _ Logger = &ClientLogger{}
	var _ Logger = &ZapAdapter{}
	var _ Logger = &LogrAdapter{}
}
