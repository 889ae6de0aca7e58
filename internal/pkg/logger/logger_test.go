// internal/pkg/logger/logger_test.go
package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out), buf.String())
	return out
}

func TestNew_JSONWithContext(t *testing.T) {
	var buf bytes.Buffer
	log := New(LogConfig{Level: "info", Format: "json", Writer: &buf, ServiceName: "optica-pos", Environment: "test"})

	ctx := WithRequestID(context.Background(), "req-123")
	ctx = WithUser(ctx, 42, "employee")

	log.InfoContext(ctx, "sale committed", slog.Int64("sale_id", 7))

	line := decodeLine(t, &buf)
	assert.Equal(t, "INFO", line["severity"])
	assert.Equal(t, "sale committed", line["msg"])
	assert.Equal(t, "req-123", line["request_id"])
	assert.Equal(t, float64(42), line["user_id"])
	assert.Equal(t, "employee", line["role"])
	assert.Equal(t, float64(7), line["sale_id"])
	assert.Equal(t, "optica-pos", line["service_name"])
	assert.Equal(t, "test", line["env"])
}

func TestNew_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	log := New(LogConfig{Level: "warn", Format: "json", Writer: &buf})

	log.Info("hidden")
	assert.Zero(t, buf.Len())

	log.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestSanitizationHandler(t *testing.T) {
	var buf bytes.Buffer
	log := New(LogConfig{Level: "debug", Format: "json", Writer: &buf})

	log.Info("login attempt password=hunter2",
		slog.String("password", "hunter2"),
		slog.String("session_token", "abc"),
		slog.String("email", "caja@optica.mx"))

	line := decodeLine(t, &buf)
	assert.Equal(t, "***REDACTED***", line["password"])
	assert.Equal(t, "***REDACTED***", line["session_token"])
	assert.Equal(t, "caja@optica.mx", line["email"])
	assert.NotContains(t, line["msg"], "hunter2")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("nonsense"))
}

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	log := New(LogConfig{Format: "json", Writer: &buf})

	ctx := WithLogger(context.Background(), log)
	assert.Same(t, log, FromContext(ctx))
	assert.NotNil(t, FromContext(context.Background()))
	assert.Equal(t, "", RequestID(context.Background()))
}

func TestFanOut_RespectsSinkLevels(t *testing.T) {
	var a, b bytes.Buffer
	h := fanOut{
		slog.NewJSONHandler(&a, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewJSONHandler(&b, &slog.HandlerOptions{Level: slog.LevelError}),
	}
	log := slog.New(h)

	log.Info("only a")
	assert.Contains(t, a.String(), "only a")
	assert.Zero(t, b.Len())
}

func TestNew_MultipleOutputs(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first.log")
	second := filepath.Join(dir, "second.log")

	log := New(LogConfig{Output: "file:" + first + ", file:" + second, ServiceName: "optica-test"})
	log.Info("stock received", slog.Int64("product_id", 7))

	for _, path := range []string{first, second} {
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		var rec map[string]any
		require.NoError(t, json.Unmarshal(bytes.TrimSpace(data), &rec), string(data))
		assert.Equal(t, "stock received", rec["msg"])
		assert.Equal(t, "optica-test", rec["service_name"])
	}
}

func TestSampling_KeepsWarningsAndEveryNthInfo(t *testing.T) {
	var buf bytes.Buffer
	log := New(LogConfig{Level: "info", Format: "json", Writer: &buf, SampleRate: 0.25})

	for i := 0; i < 8; i++ {
		log.Info("stock checked")
	}
	log.Warn("stock low")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "stock checked")
	assert.Contains(t, lines[1], "stock checked")
	assert.Contains(t, lines[2], "stock low")
}

func TestRedaction_GroupsAndLoggerAttrs(t *testing.T) {
	var buf bytes.Buffer
	log := New(LogConfig{Format: "json", Writer: &buf}).
		With(slog.String("smtp_password", "mailpass"))

	log.Info("request",
		slog.Group("headers",
			slog.String("Authorization", "Bearer abc.def"),
			slog.String("Cookie", "optica_session=xyz"),
			slog.String("Accept", "application/json")),
		slog.String("note", "retry with Bearer abc.def"))

	line := decodeLine(t, &buf)
	assert.Equal(t, redacted, line["smtp_password"])
	headers, ok := line["headers"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, redacted, headers["Authorization"])
	assert.Equal(t, redacted, headers["Cookie"])
	assert.Equal(t, "application/json", headers["Accept"])
	assert.NotContains(t, line["note"], "abc.def")
}

func TestNew_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	log := New(LogConfig{Format: "text", Writer: &buf, ServiceName: "optica-api"})

	log.Info("sale committed", slog.Int64("sale_id", 7))

	out := buf.String()
	assert.Contains(t, out, `msg="sale committed"`)
	assert.Contains(t, out, "sale_id=7")
	assert.Contains(t, out, "service_name=optica-api")
}
