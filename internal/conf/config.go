// config.go: settings for the swordgate service and the functions that load them.
package conf

import (
	"embed"
	"io/fs"
	"strings"
	"time"

	"github.com/labstack/gommon/bytes"
	"github.com/spf13/viper"

	"github.com/tphakala/swordgate/internal/errors"
	"github.com/tphakala/swordgate/internal/jper"
	"github.com/tphakala/swordgate/internal/logger"
	"github.com/tphakala/swordgate/internal/sword"
)

//go:embed config.yaml
var configFiles embed.FS

// StateSettings holds the statement state URIs.
type StateSettings struct {
	PendingURI string `mapstructure:"pending_uri" yaml:"pending_uri"`
	RoutedURI  string `mapstructure:"routed_uri" yaml:"routed_uri"`
}

// SwordSettings describes the SWORD service as clients see it.
type SwordSettings struct {
	BaseURL          string        `mapstructure:"base_url" yaml:"base_url"`         // public base URL of this service
	Namespace        string        `mapstructure:"namespace" yaml:"namespace"`       // tag URI authority for atom ids
	RoutePrefix      string        `mapstructure:"route_prefix" yaml:"route_prefix"` // path prefix of all SWORD routes
	Version          string        `mapstructure:"version" yaml:"version"`
	MaxUploadSize    string        `mapstructure:"max_upload_size" yaml:"max_upload_size"` // e.g. 100MB
	Accept           []string      `mapstructure:"accept" yaml:"accept"`
	MultipartAccept  []string      `mapstructure:"multipart_accept" yaml:"multipart_accept"`
	AcceptPackaging  []string      `mapstructure:"accept_packaging" yaml:"accept_packaging"`
	Mediation        bool          `mapstructure:"mediation" yaml:"mediation"`
	WorkspaceTitle   string        `mapstructure:"workspace_title" yaml:"workspace_title"`
	GeneratorURI     string        `mapstructure:"generator_uri" yaml:"generator_uri"`
	GeneratorVersion string        `mapstructure:"generator_version" yaml:"generator_version"`
	State            StateSettings `mapstructure:"state" yaml:"state"`
}

// JPERSettings configures the router API client.
type JPERSettings struct {
	APIURL    string        `mapstructure:"api_url" yaml:"api_url"`
	Timeout   time.Duration `mapstructure:"timeout" yaml:"timeout"`
	UserAgent string        `mapstructure:"user_agent" yaml:"user_agent"`
	RateLimit float64       `mapstructure:"rate_limit" yaml:"rate_limit"` // requests per second, 0 disables
	RateBurst int           `mapstructure:"rate_burst" yaml:"rate_burst"`
}

// WebServerSettings configures the HTTP listener.
type WebServerSettings struct {
	Host         string        `mapstructure:"host" yaml:"host"`
	Port         string        `mapstructure:"port" yaml:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout" yaml:"idle_timeout"`
	BodyLimit    string        `mapstructure:"body_limit" yaml:"body_limit"` // echo body limit, e.g. 100M
}

// MetricsSettings configures the Prometheus endpoint.
type MetricsSettings struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Listen  string `mapstructure:"listen" yaml:"listen"` // host:port of the metrics listener
}

// SentrySettings configures error telemetry.
type SentrySettings struct {
	Enabled     bool   `mapstructure:"enabled" yaml:"enabled"`
	DSN         string `mapstructure:"dsn" yaml:"dsn"`
	Environment string `mapstructure:"environment" yaml:"environment"`
}

// Settings is the complete service configuration.
type Settings struct {
	Debug bool `mapstructure:"debug" yaml:"debug"`

	// Runtime values, not stored in config file
	Version   string `mapstructure:"-" yaml:"-"`
	BuildDate string `mapstructure:"-" yaml:"-"`

	Sword     SwordSettings        `mapstructure:"sword" yaml:"sword"`
	JPER      JPERSettings         `mapstructure:"jper" yaml:"jper"`
	WebServer WebServerSettings    `mapstructure:"webserver" yaml:"webserver"`
	Metrics   MetricsSettings      `mapstructure:"metrics" yaml:"metrics"`
	Sentry    SentrySettings       `mapstructure:"sentry" yaml:"sentry"`
	Logging   logger.LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// ConfigFile is the file the settings were read from, empty when none was found
	ConfigFile string `mapstructure:"-" yaml:"-"`
}

// Load reads settings from configFile, or from the default search paths when
// configFile is empty.
func Load(configFile string) (*Settings, error) {
	return LoadWith(viper.New(), configFile)
}

// LoadWith reads settings through v, so callers can bind command line flags
// to it first. Precedence: flags, environment, config file, defaults.
func LoadWith(v *viper.Viper, configFile string) (*Settings, error) {
	setDefaultConfig(v)

	if err := configureEnvironmentVariables(v); err != nil {
		return nil, errors.New(err).
			Component("conf").
			Category(errors.CategoryConfiguration).
			Context("operation", "bind-environment").
			Build()
	}

	if err := readConfigFile(v, configFile); err != nil {
		return nil, err
	}

	settings := &Settings{}
	if err := v.Unmarshal(settings); err != nil {
		return nil, errors.Newf("error unmarshaling config into struct: %w", err).
			Component("conf").
			Category(errors.CategoryConfiguration).
			Build()
	}
	settings.ConfigFile = v.ConfigFileUsed()

	normalizeSettings(settings)

	if err := ValidateSettings(settings); err != nil {
		return nil, errors.Newf("error validating settings: %w", err).
			Component("conf").
			Category(errors.CategoryValidation).
			Build()
	}

	return settings, nil
}

// readConfigFile reads the YAML config. A missing file on the default search
// path is fine; a missing explicitly named file is not.
func readConfigFile(v *viper.Viper, configFile string) error {
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		for _, path := range GetDefaultConfigPaths() {
			v.AddConfigPath(path)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return errors.Newf("error reading config file: %w", err).
			Component("conf").
			Category(errors.CategoryFileParsing).
			Context("config_file", configFile).
			Build()
	}
	return nil
}

// normalizeSettings trims values whose exact spelling is significant.
func normalizeSettings(s *Settings) {
	s.Sword.BaseURL = strings.TrimSpace(s.Sword.BaseURL)
	s.Sword.RoutePrefix = strings.TrimRight(strings.TrimSpace(s.Sword.RoutePrefix), "/")
	if s.Sword.RoutePrefix != "" && !strings.HasPrefix(s.Sword.RoutePrefix, "/") {
		s.Sword.RoutePrefix = "/" + s.Sword.RoutePrefix
	}
	s.JPER.APIURL = strings.TrimSpace(s.JPER.APIURL)

	if s.Debug {
		s.Logging.DefaultLevel = "debug"
		if s.Logging.Console != nil {
			s.Logging.Console.Level = "debug"
		}
	}
}

// SwordConfig derives the adapter configuration. Settings must have passed
// ValidateSettings.
func (s *Settings) SwordConfig() sword.Config {
	maxUpload, _ := bytes.Parse(s.Sword.MaxUploadSize)

	return sword.Config{
		BaseURL:          s.Sword.BaseURL,
		RoutePrefix:      s.Sword.RoutePrefix,
		Namespace:        s.Sword.Namespace,
		Version:          s.Sword.Version,
		MaxUploadSize:    maxUpload,
		Accept:           s.Sword.Accept,
		MultipartAccept:  s.Sword.MultipartAccept,
		AcceptPackaging:  s.Sword.AcceptPackaging,
		Mediation:        s.Sword.Mediation,
		WorkspaceTitle:   s.Sword.WorkspaceTitle,
		GeneratorURI:     s.Sword.GeneratorURI,
		GeneratorVersion: s.Sword.GeneratorVersion,
		PendingStateURI:  s.Sword.State.PendingURI,
		RoutedStateURI:   s.Sword.State.RoutedURI,
	}
}

// JPERConfig derives the router client configuration.
func (s *Settings) JPERConfig() jper.Config {
	userAgent := s.JPER.UserAgent
	if s.Version != "" && !strings.Contains(userAgent, "/") {
		userAgent += "/" + s.Version
	}

	return jper.Config{
		APIURL:    s.JPER.APIURL,
		Timeout:   s.JPER.Timeout,
		UserAgent: userAgent,
		RateLimit: s.JPER.RateLimit,
		RateBurst: s.JPER.RateBurst,
	}
}

// DefaultConfigYAML returns the annotated example configuration shipped with the binary.
func DefaultConfigYAML() ([]byte, error) {
	return fs.ReadFile(configFiles, "config.yaml")
}
