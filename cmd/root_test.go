package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/swordgate/internal/buildinfo"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	root := RootCommand(&buildinfo.Context{Version: "1.4.0", BuildDate: "2026-10-01"})
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)

	err := root.ExecuteContext(t.Context())
	return out.String(), err
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "swordgate.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestVersionCommand(t *testing.T) {
	t.Parallel()

	out, err := execute(t, "version", "--config", "/does/not/exist.yaml")
	require.NoError(t, err, "version never loads settings")
	assert.Equal(t, "swordgate 1.4.0 (built 2026-10-01)\n", out)
}

func TestConfigDefaultCommand(t *testing.T) {
	t.Parallel()

	out, err := execute(t, "config", "default", "--config", "/does/not/exist.yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "workspace_title: DeepGreen Prototype")
}

func TestConfigCommand_FlagsOverrideFile(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
jper:
  api_url: https://from-file.example.org/api/v1
sentry:
  dsn: https://secret@sentry.example.org/1
`)

	out, err := execute(t, "config", "--config", path,
		"--api-url", "https://from-flag.example.org/api/v1",
		"--port", "9100",
		"--base-url", "https://sword.example.org/")
	require.NoError(t, err)

	assert.Contains(t, out, "api_url: https://from-flag.example.org/api/v1")
	assert.Contains(t, out, `port: "9100"`)
	assert.Contains(t, out, "base_url: https://sword.example.org/")
	assert.NotContains(t, out, "secret@sentry")
}

func TestConfigCommand_InvalidFile(t *testing.T) {
	t.Parallel()

	_, err := execute(t, "config", "--config", writeConfig(t, "webserver:\n  port: \"http\"\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "webserver.port")
}
