// sensitive.go
package logger

import (
	"regexp"
	"strings"
)

// SensitiveDataPatterns contains regex patterns for credentials that should be redacted in logs.
// The first capture group is kept, the rest of the match is replaced.
var SensitiveDataPatterns = []*regexp.Regexp{
	// Authorization header values
	regexp.MustCompile(`(?i)(bearer\s+)([A-Za-z0-9\-._~+/]+=*)`),
	regexp.MustCompile(`(\bBasic\s+)([A-Za-z0-9+/]+=*)`),

	// API keys forwarded to the backing service as query parameters, and similar secrets
	regexp.MustCompile(`(?i)((?:api[_-]?key|token|passw(?:or)?d|secret|dsn)=)([^&;,\s]+)`),
}

// SensitiveKeywords are keywords that indicate fields may contain sensitive data
var SensitiveKeywords = []string{
	"password", "passwd", "secret", "credential", "token", "api_key",
	"apikey", "authorization", "dsn",
}

// RedactSensitiveData replaces sensitive information with "[REDACTED]"
func RedactSensitiveData(input string) string {
	if input == "" {
		return input
	}

	for _, pattern := range SensitiveDataPatterns {
		input = pattern.ReplaceAllString(input, "${1}[REDACTED]")
	}

	return input
}

// IsSensitiveKey reports whether a field or config key names a secret
func IsSensitiveKey(key string) bool {
	keyLower := strings.ToLower(key)
	for _, sensitiveKey := range SensitiveKeywords {
		if strings.Contains(keyLower, sensitiveKey) {
			return true
		}
	}
	return false
}

// RedactSensitiveFields returns a copy of fields with string values of sensitive keys redacted
func RedactSensitiveFields(fields []Field) []Field {
	result := make([]Field, len(fields))
	copy(result, fields)

	for i := range result {
		if value, ok := result[i].Value.(string); ok && value != "" && IsSensitiveKey(result[i].Key) {
			result[i].Value = "[REDACTED]"
		}
	}

	return result
}
