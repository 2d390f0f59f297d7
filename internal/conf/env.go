// env.go - Environment variable configuration and validation
package conf

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/gommon/bytes"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. SWORDGATE_JPER_API_URL.
const EnvPrefix = "SWORDGATE"

// envBinding holds metadata for environment variable bindings (internal use)
type envBinding struct {
	ConfigKey string             // Viper config key
	EnvVar    string             // Environment variable name
	Validate  func(string) error // Optional validation function
}

// getEnvBindings returns all environment variable bindings with validation
func getEnvBindings() []envBinding {
	return []envBinding{
		{"debug", "SWORDGATE_DEBUG", validateEnvBool},

		// SWORD service
		{"sword.base_url", "SWORDGATE_SWORD_BASE_URL", validateEnvURL},
		{"sword.namespace", "SWORDGATE_SWORD_NAMESPACE", nil},
		{"sword.max_upload_size", "SWORDGATE_SWORD_MAX_UPLOAD_SIZE", validateEnvSize},

		// Router client
		{"jper.api_url", "SWORDGATE_JPER_API_URL", validateEnvURL},
		{"jper.timeout", "SWORDGATE_JPER_TIMEOUT", validateEnvDuration},
		{"jper.rate_limit", "SWORDGATE_JPER_RATE_LIMIT", validateEnvRate},

		// Listeners
		{"webserver.port", "SWORDGATE_WEBSERVER_PORT", validateEnvPort},
		{"metrics.enabled", "SWORDGATE_METRICS_ENABLED", validateEnvBool},
		{"metrics.listen", "SWORDGATE_METRICS_LISTEN", nil},

		// Telemetry
		{"sentry.enabled", "SWORDGATE_SENTRY_ENABLED", validateEnvBool},
		{"sentry.dsn", "SWORDGATE_SENTRY_DSN", nil},
	}
}

// bindEnvVars sets up environment variable bindings with validation (internal)
func bindEnvVars(v *viper.Viper) error {
	var warnings []string

	for _, binding := range getEnvBindings() {
		if err := v.BindEnv(binding.ConfigKey, binding.EnvVar); err != nil {
			warnings = append(warnings, fmt.Sprintf("Failed to bind %s: %v", binding.EnvVar, err))
			continue
		}

		if binding.Validate != nil {
			if envValue := os.Getenv(binding.EnvVar); envValue != "" {
				if err := binding.Validate(envValue); err != nil {
					warnings = append(warnings, fmt.Sprintf("Invalid %s value '%s': %v", binding.EnvVar, envValue, err))
				}
			}
		}
	}

	if len(warnings) > 0 {
		return fmt.Errorf("environment variable issues:\n  - %s", strings.Join(warnings, "\n  - "))
	}

	return nil
}

// Environment variable validation functions

func validateEnvBool(value string) error {
	if _, err := strconv.ParseBool(value); err != nil {
		return fmt.Errorf("must be true or false")
	}
	return nil
}

func validateEnvURL(value string) error {
	u, err := url.Parse(value)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("must be an http or https URL")
	}
	if u.Host == "" {
		return fmt.Errorf("missing host")
	}
	return nil
}

func validateEnvDuration(value string) error {
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("must be a duration like 30s")
	}
	if d <= 0 {
		return fmt.Errorf("must be positive")
	}
	return nil
}

func validateEnvPort(value string) error {
	port, err := strconv.Atoi(value)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("must be a port number between 1 and 65535")
	}
	return nil
}

func validateEnvRate(value string) error {
	rate, err := strconv.ParseFloat(value, 64)
	if err != nil || rate < 0 {
		return fmt.Errorf("must be a non-negative number")
	}
	return nil
}

func validateEnvSize(value string) error {
	size, err := bytes.Parse(value)
	if err != nil {
		return err
	}
	if size <= 0 {
		return fmt.Errorf("must be positive")
	}
	return nil
}

// configureEnvironmentVariables sets up environment variable support for Viper.
// Every key is reachable as SWORDGATE_<KEY> with dots turned into underscores;
// the explicit bindings above are additionally validated.
func configureEnvironmentVariables(v *viper.Viper) error {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return bindEnvVars(v)
}
