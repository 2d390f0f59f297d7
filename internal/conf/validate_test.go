package conf

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/swordgate/internal/logger"
)

func validSettings() *Settings {
	return &Settings{
		Sword: SwordSettings{
			BaseURL:        "https://sword.example.org/",
			Namespace:      "jper",
			MaxUploadSize:  "100MB",
			WorkspaceTitle: "DeepGreen Prototype",
			State: StateSettings{
				PendingURI: "http://datahub.deepgreen.org/sword/state/pending",
				RoutedURI:  "http://datahub.deepgreen.org/sword/state/routed",
			},
		},
		JPER:      JPERSettings{APIURL: "https://router.example.org/api/v1", Timeout: time.Second},
		WebServer: WebServerSettings{Port: "8080", BodyLimit: "10M"},
		Logging:   logger.LoggingConfig{DefaultLevel: "info", Timezone: "UTC"},
	}
}

func TestValidateSettings(t *testing.T) {
	t.Parallel()

	require.NoError(t, ValidateSettings(validSettings()))

	tests := []struct {
		name   string
		mutate func(*Settings)
		want   string
	}{
		{"empty base url", func(s *Settings) { s.Sword.BaseURL = "" }, "sword.base_url"},
		{"relative base url", func(s *Settings) { s.Sword.BaseURL = "/sword" }, "sword.base_url"},
		{"namespace with space", func(s *Settings) { s.Sword.Namespace = "a b" }, "sword.namespace"},
		{"upload size", func(s *Settings) { s.Sword.MaxUploadSize = "lots" }, "sword.max_upload_size"},
		{"zero upload size", func(s *Settings) { s.Sword.MaxUploadSize = "0" }, "sword.max_upload_size"},
		{"relative state uri", func(s *Settings) { s.Sword.State.RoutedURI = "routed" }, "sword.state.routed_uri"},
		{"api url", func(s *Settings) { s.JPER.APIURL = "router" }, "jper.api_url"},
		{"negative rate", func(s *Settings) { s.JPER.RateLimit = -1 }, "jper.rate_limit"},
		{"port", func(s *Settings) { s.WebServer.Port = "http" }, "webserver.port"},
		{"port range", func(s *Settings) { s.WebServer.Port = "70000" }, "webserver.port"},
		{"body limit", func(s *Settings) { s.WebServer.BodyLimit = "big" }, "webserver.body_limit"},
		{"metrics listen", func(s *Settings) { s.Metrics = MetricsSettings{Enabled: true, Listen: "9090"} }, "metrics.listen"},
		{"sentry dsn", func(s *Settings) { s.Sentry.Enabled = true }, "sentry.dsn"},
		{"log level", func(s *Settings) { s.Logging.DefaultLevel = "loud" }, "logging.default_level"},
		{"module level", func(s *Settings) { s.Logging.ModuleLevels = map[string]string{"jper": "chatty"} }, "logging.module_levels.jper"},
		{"timezone", func(s *Settings) { s.Logging.Timezone = "Nowhere/Special" }, "logging.timezone"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := validSettings()
			tt.mutate(s)

			err := ValidateSettings(s)
			require.Error(t, err)

			var ve ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestEnvValidators(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		validate func(string) error
		good     []string
		bad      []string
	}{
		{"bool", validateEnvBool, []string{"true", "0", "FALSE"}, []string{"yes", ""}},
		{"url", validateEnvURL, []string{"https://a.example.org/x", "http://localhost:8080"}, []string{"ftp://a", "localhost", "https://"}},
		{"duration", validateEnvDuration, []string{"30s", "1m30s"}, []string{"30", "-5s", "0s"}},
		{"port", validateEnvPort, []string{"1", "8080", "65535"}, []string{"0", "65536", "http"}},
		{"rate", validateEnvRate, []string{"0", "2.5"}, []string{"-1", "fast"}},
		{"size", validateEnvSize, []string{"10MB", "512KB", "1GB"}, []string{"0", "huge"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			for _, v := range tt.good {
				assert.NoError(t, tt.validate(v), v)
			}
			for _, v := range tt.bad {
				assert.Error(t, tt.validate(v), v)
			}
		})
	}
}
