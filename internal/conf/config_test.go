package conf

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	gbytes "github.com/labstack/gommon/bytes"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_ShippedConfigIsValid(t *testing.T) {
	t.Parallel()

	data, err := DefaultConfigYAML()
	require.NoError(t, err)

	settings, err := Load(writeConfig(t, string(data)))
	require.NoError(t, err)

	assert.Equal(t, "jper", settings.Sword.Namespace)
	assert.Equal(t, "/swordv2", settings.Sword.RoutePrefix)
	assert.Equal(t, "DeepGreen Prototype", settings.Sword.WorkspaceTitle)
	assert.Equal(t, "https://datahub.deepgreen.org/api/v1", settings.JPER.APIURL)
	assert.Equal(t, 30*time.Second, settings.JPER.Timeout)
	assert.Equal(t, "8080", settings.WebServer.Port)
	assert.Len(t, settings.Sword.AcceptPackaging, 3)
	require.NotNil(t, settings.Logging.Console)
	assert.True(t, settings.Logging.Console.Enabled)
	assert.NotEmpty(t, settings.ConfigFile)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
sword:
  base_url: https://sword.example.org/
  route_prefix: sword/
  namespace: router.example.org
  max_upload_size: 2GB
  state:
    pending_uri: http://router2.example.ac.uk/swordv2/state/pending
jper:
  api_url: https://router.example.org/api/v1
  timeout: 5s
  rate_limit: 2.5
  rate_burst: 4
webserver:
  port: "9000"
`)

	settings, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/sword", settings.Sword.RoutePrefix, "prefix is normalized")
	assert.Equal(t, "http://router2.example.ac.uk/swordv2/state/pending", settings.Sword.State.PendingURI)
	assert.Equal(t, "http://datahub.deepgreen.org/sword/state/routed", settings.Sword.State.RoutedURI, "unset keys keep defaults")

	sc := settings.SwordConfig()
	assert.Equal(t, "https://sword.example.org/", sc.BaseURL)
	assert.Equal(t, "router.example.org", sc.Namespace)
	wantSize, err := gbytes.Parse("2GB")
	require.NoError(t, err)
	assert.Equal(t, wantSize, sc.MaxUploadSize)
	assert.Equal(t, settings.Sword.State.PendingURI, sc.PendingStateURI)

	jc := settings.JPERConfig()
	assert.Equal(t, "https://router.example.org/api/v1", jc.APIURL)
	assert.Equal(t, 5*time.Second, jc.Timeout)
	assert.InDelta(t, 2.5, jc.RateLimit, 0.0001)
	assert.Equal(t, 4, jc.RateBurst)
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	path := writeConfig(t, `
jper:
  api_url: https://from-file.example.org/api/v1
`)
	t.Setenv("SWORDGATE_JPER_API_URL", "https://from-env.example.org/api/v1")
	t.Setenv("SWORDGATE_WEBSERVER_PORT", "9999")
	t.Setenv("SWORDGATE_SWORD_WORKSPACE_TITLE", "Staging Router")

	settings, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://from-env.example.org/api/v1", settings.JPER.APIURL)
	assert.Equal(t, "9999", settings.WebServer.Port)
	assert.Equal(t, "Staging Router", settings.Sword.WorkspaceTitle)
}

func TestLoad_InvalidEnvironment(t *testing.T) {
	t.Setenv("SWORDGATE_JPER_TIMEOUT", "soon")

	_, err := Load(writeConfig(t, "debug: false\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SWORDGATE_JPER_TIMEOUT")
}

func TestLoadWith_FlagsWin(t *testing.T) {
	t.Parallel()

	v := viper.New()
	v.Set("webserver.port", "7000")
	v.Set("debug", true)

	settings, err := LoadWith(v, writeConfig(t, "webserver:\n  port: \"8000\"\n"))
	require.NoError(t, err)
	assert.Equal(t, "7000", settings.WebServer.Port)
	assert.True(t, settings.Debug)
	assert.Equal(t, "debug", settings.Logging.DefaultLevel, "debug raises the log level")
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()

	t.Run("missing explicit file", func(t *testing.T) {
		t.Parallel()
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		t.Parallel()
		_, err := Load(writeConfig(t, "sword: [unclosed\n"))
		require.Error(t, err)
	})

	t.Run("invalid values", func(t *testing.T) {
		t.Parallel()
		_, err := Load(writeConfig(t, `
sword:
  base_url: ftp://nope
  namespace: "a/b"
jper:
  timeout: -1s
`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sword.base_url")
		assert.Contains(t, err.Error(), "sword.namespace")
		assert.Contains(t, err.Error(), "jper.timeout")
	})
}

func TestJPERConfig_UserAgentCarriesVersion(t *testing.T) {
	t.Parallel()

	s := &Settings{Version: "1.2.3", JPER: JPERSettings{UserAgent: "swordgate"}}
	assert.Equal(t, "swordgate/1.2.3", s.JPERConfig().UserAgent)

	s.JPER.UserAgent = "custom/9"
	assert.Equal(t, "custom/9", s.JPERConfig().UserAgent)
}

func TestDump_RedactsSecrets(t *testing.T) {
	t.Parallel()

	settings, err := Load(writeConfig(t, `
sentry:
  enabled: true
  dsn: https://public@sentry.example.org/42
`))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Dump(&buf, settings))

	out := buf.String()
	assert.NotContains(t, out, "public@sentry.example.org")
	assert.Contains(t, out, "[REDACTED]")
	assert.Contains(t, out, "timeout: 30s")

	var parsed map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &parsed))
	assert.Contains(t, parsed, "sword")
	assert.Contains(t, parsed, "jper")
}
