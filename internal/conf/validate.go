// conf/validate.go

package conf

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/gommon/bytes"
)

// ValidationError represents a collection of validation errors
type ValidationError struct {
	Errors []string
}

// Error returns a string representation of the validation errors
func (ve ValidationError) Error() string {
	return fmt.Sprintf("Validation errors: %v", ve.Errors)
}

// ValidateSettings validates the entire Settings struct
func ValidateSettings(settings *Settings) error {
	ve := ValidationError{}

	validators := []func(*Settings) error{
		func(s *Settings) error { return validateSwordSettings(&s.Sword) },
		func(s *Settings) error { return validateJPERSettings(&s.JPER) },
		func(s *Settings) error { return validateWebServerSettings(&s.WebServer) },
		func(s *Settings) error { return validateMetricsSettings(&s.Metrics) },
		func(s *Settings) error { return validateSentrySettings(&s.Sentry) },
		func(s *Settings) error { return validateLoggingSettings(s) },
	}

	for _, validate := range validators {
		if err := validate(settings); err != nil {
			ve.Errors = append(ve.Errors, err.Error())
		}
	}

	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

func validateSwordSettings(s *SwordSettings) error {
	var problems []string

	if err := validateAbsoluteURL(s.BaseURL); err != nil {
		problems = append(problems, fmt.Sprintf("sword.base_url: %v", err))
	}
	if s.Namespace == "" || strings.ContainsAny(s.Namespace, "/ ") {
		problems = append(problems, "sword.namespace must be a non-empty token without slashes or spaces")
	}
	if size, err := bytes.Parse(s.MaxUploadSize); err != nil || size <= 0 {
		problems = append(problems, fmt.Sprintf("sword.max_upload_size %q is not a positive size", s.MaxUploadSize))
	}
	if s.WorkspaceTitle == "" {
		problems = append(problems, "sword.workspace_title must not be empty")
	}
	for key, uri := range map[string]string{
		"sword.state.pending_uri": s.State.PendingURI,
		"sword.state.routed_uri":  s.State.RoutedURI,
	} {
		if u, err := url.Parse(uri); err != nil || !u.IsAbs() {
			problems = append(problems, fmt.Sprintf("%s must be an absolute URI", key))
		}
	}

	return joinProblems(problems)
}

func validateJPERSettings(s *JPERSettings) error {
	var problems []string

	if err := validateAbsoluteURL(s.APIURL); err != nil {
		problems = append(problems, fmt.Sprintf("jper.api_url: %v", err))
	}
	if s.Timeout <= 0 {
		problems = append(problems, "jper.timeout must be positive")
	}
	if s.RateLimit < 0 {
		problems = append(problems, "jper.rate_limit must not be negative")
	}
	if s.RateBurst < 0 {
		problems = append(problems, "jper.rate_burst must not be negative")
	}

	return joinProblems(problems)
}

func validateWebServerSettings(s *WebServerSettings) error {
	var problems []string

	if port, err := strconv.Atoi(s.Port); err != nil || port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("webserver.port %q is not a valid port", s.Port))
	}
	for key, d := range map[string]time.Duration{
		"webserver.read_timeout":  s.ReadTimeout,
		"webserver.write_timeout": s.WriteTimeout,
		"webserver.idle_timeout":  s.IdleTimeout,
	} {
		if d < 0 {
			problems = append(problems, key+" must not be negative")
		}
	}
	if s.BodyLimit != "" {
		if _, err := bytes.Parse(s.BodyLimit); err != nil {
			problems = append(problems, fmt.Sprintf("webserver.body_limit %q is not a size", s.BodyLimit))
		}
	}

	return joinProblems(problems)
}

func validateMetricsSettings(s *MetricsSettings) error {
	if !s.Enabled {
		return nil
	}
	if _, _, err := net.SplitHostPort(s.Listen); err != nil {
		return fmt.Errorf("metrics.listen %q must be host:port", s.Listen)
	}
	return nil
}

func validateSentrySettings(s *SentrySettings) error {
	if s.Enabled && strings.TrimSpace(s.DSN) == "" {
		return fmt.Errorf("sentry.dsn is required when sentry is enabled")
	}
	return nil
}

func validateLoggingSettings(s *Settings) error {
	levels := map[string]string{"logging.default_level": s.Logging.DefaultLevel}
	if s.Logging.Console != nil {
		levels["logging.console.level"] = s.Logging.Console.Level
	}
	for module, level := range s.Logging.ModuleLevels {
		levels["logging.module_levels."+module] = level
	}

	var problems []string
	for key, level := range levels {
		if level == "" {
			continue
		}
		switch strings.ToLower(level) {
		case "trace", "debug", "info", "warn", "warning", "error":
		default:
			problems = append(problems, fmt.Sprintf("%s %q is not a log level", key, level))
		}
	}
	if _, err := time.LoadLocation(s.Logging.Timezone); s.Logging.Timezone != "" && err != nil {
		problems = append(problems, fmt.Sprintf("logging.timezone %q is unknown", s.Logging.Timezone))
	}

	return joinProblems(problems)
}

func validateAbsoluteURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("must not be empty")
	}
	return validateEnvURL(raw)
}

func joinProblems(problems []string) error {
	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("%s", strings.Join(problems, "; "))
}
