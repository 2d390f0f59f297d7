package logger_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	echo_log "github.com/labstack/gommon/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/swordgate/internal/logger"
)

func consoleOnly(level string) *logger.LoggingConfig {
	return &logger.LoggingConfig{
		DefaultLevel: level,
		Timezone:     "UTC",
		Console:      &logger.ConsoleOutput{Enabled: true, Level: level},
		FileOutput:   &logger.FileOutput{Enabled: false},
	}
}

func TestCentralLogger_ModuleScoping(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	cl, err := logger.NewCentralLogger(consoleOnly("debug"), logger.WithConsoleWriter(&buf))
	require.NoError(t, err)
	t.Cleanup(func() { _ = cl.Close() })

	log := cl.Module("sword").Module("cache")
	log.Debug("cache miss", logger.String("notification_id", "abc"))

	out := buf.String()
	assert.Contains(t, out, "module=sword.cache")
	assert.Contains(t, out, "notification_id=abc")
	assert.Contains(t, out, "cache miss")
	assert.NotContains(t, out, "time=", "console output carries no timestamps")
}

func TestCentralLogger_RedactsSensitiveFields(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	cl, err := logger.NewCentralLogger(consoleOnly("info"), logger.WithConsoleWriter(&buf))
	require.NoError(t, err)
	t.Cleanup(func() { _ = cl.Close() })

	log := cl.Module("jper").With(logger.String("api_key", "persistent-secret"))
	log.Info("router request", logger.String("token", "call-secret"), logger.String("operation", "validate"))

	out := buf.String()
	assert.NotContains(t, out, "persistent-secret")
	assert.NotContains(t, out, "call-secret")
	assert.Contains(t, out, "api_key=[REDACTED]")
	assert.Contains(t, out, "operation=validate")
}

func TestCentralLogger_LevelFiltering(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	cfg := consoleOnly("info")
	cfg.ModuleLevels = map[string]string{"jper": "debug"}
	cfg.Console.Level = "debug"

	cl, err := logger.NewCentralLogger(cfg, logger.WithConsoleWriter(&buf))
	require.NoError(t, err)
	t.Cleanup(func() { _ = cl.Close() })

	cl.Module("api").Debug("hidden")
	cl.Module("jper").Debug("visible")
	cl.Module("api").Log(logger.LogLevelWarn, "explicit warn")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "visible")
	assert.Contains(t, out, "explicit warn")
}

func TestCentralLogger_WithContextAddsTraceID(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	cl, err := logger.NewCentralLogger(consoleOnly("info"), logger.WithConsoleWriter(&buf))
	require.NoError(t, err)

	ctx := logger.WithTraceID(t.Context(), "req-42")
	cl.Module("api").WithContext(ctx).Info("handled")
	cl.Module("api").WithContext(t.Context()).Info("no trace")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "trace_id=req-42")
	assert.NotContains(t, lines[1], "trace_id")
	assert.Equal(t, "req-42", logger.TraceIDFromContext(ctx))
}

func TestCentralLogger_ModuleFileOutputIsJSON(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	accessLog := filepath.Join(dir, "nested", "access.log")

	cfg := consoleOnly("info")
	cfg.ModuleOutputs = map[string]logger.ModuleOutput{
		"access": {Enabled: true, FilePath: accessLog, Level: "info"},
	}

	var console bytes.Buffer
	cl, err := logger.NewCentralLogger(cfg, logger.WithConsoleWriter(&console))
	require.NoError(t, err)

	cl.Module("access").Info("request", logger.Int("status", 201), logger.Duration("latency", 1500*time.Millisecond))
	require.NoError(t, cl.Close())

	data, err := os.ReadFile(accessLog)
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(data), &entry))
	assert.Equal(t, "request", entry["msg"])
	assert.Equal(t, "access", entry["module"])
	assert.EqualValues(t, 201, entry["status"])
	assert.Equal(t, "1.5s", entry["latency"])
	assert.Empty(t, console.String(), "module with its own file must not log to console unless asked")
}

func TestNewCentralLogger_Errors(t *testing.T) {
	t.Parallel()

	_, err := logger.NewCentralLogger(nil)
	require.Error(t, err)

	cfg := consoleOnly("info")
	cfg.Timezone = "Mars/Olympus"
	_, err = logger.NewCentralLogger(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid timezone")
}

func TestSlogLogger_WithFields(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.NewSlogLogger(&buf, logger.LogLevelTrace, nil)

	child := log.With(logger.String("collection", "notify"))
	child.Trace("trace line")
	child.Info("deposit", logger.Bool("created", true), logger.Error(nil))

	out := buf.String()
	assert.Contains(t, out, "level=TRACE")
	assert.Contains(t, out, "collection=notify")
	assert.Contains(t, out, "created=true")
}

func TestEchoLoggerAdapter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	adapter := logger.NewEchoLoggerAdapter(logger.NewSlogLogger(&buf, logger.LogLevelDebug, nil))

	adapter.SetLevel(echo_log.DEBUG)
	assert.Equal(t, echo_log.DEBUG, adapter.Level())

	adapter.Infof("listening on %s", ":8080")
	adapter.Warn("slow")
	assert.Contains(t, buf.String(), "listening on :8080")
	assert.Contains(t, buf.String(), "slow")

	assert.Panics(t, func() { adapter.Fatal("boom") })
}
