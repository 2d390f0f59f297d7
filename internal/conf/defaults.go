// conf/defaults.go default values for settings
package conf

import (
	"time"

	"github.com/spf13/viper"

	"github.com/tphakala/swordgate/internal/logger"
)

// Package format URIs advertised in the service document by default.
const (
	PackagingFilesAndJATS = "https://pubrouter.jisc.ac.uk/FilesAndJATS"
	PackagingSimpleZip    = "http://purl.org/net/sword/package/SimpleZip"
	PackagingBinary       = "http://purl.org/net/sword/package/Binary"
)

// Sets default values for the configuration.
func setDefaultConfig(v *viper.Viper) {
	v.SetDefault("debug", false)

	v.SetDefault("sword.base_url", "http://localhost:8080/")
	v.SetDefault("sword.namespace", "jper")
	v.SetDefault("sword.route_prefix", "/swordv2")
	v.SetDefault("sword.version", "2.0")
	v.SetDefault("sword.max_upload_size", "100MB")
	v.SetDefault("sword.accept", []string{"*/*"})
	v.SetDefault("sword.multipart_accept", []string{"*/*"})
	v.SetDefault("sword.accept_packaging", []string{PackagingFilesAndJATS, PackagingSimpleZip, PackagingBinary})
	v.SetDefault("sword.mediation", false)
	v.SetDefault("sword.workspace_title", "DeepGreen Prototype")
	v.SetDefault("sword.generator_uri", "https://github.com/tphakala/swordgate")
	v.SetDefault("sword.generator_version", "1.0")
	v.SetDefault("sword.state.pending_uri", "http://datahub.deepgreen.org/sword/state/pending")
	v.SetDefault("sword.state.routed_uri", "http://datahub.deepgreen.org/sword/state/routed")

	v.SetDefault("jper.api_url", "https://datahub.deepgreen.org/api/v1")
	v.SetDefault("jper.timeout", 30*time.Second)
	v.SetDefault("jper.user_agent", "swordgate")
	v.SetDefault("jper.rate_limit", 0.0)
	v.SetDefault("jper.rate_burst", 1)

	v.SetDefault("webserver.host", "")
	v.SetDefault("webserver.port", "8080")
	v.SetDefault("webserver.read_timeout", 60*time.Second)
	v.SetDefault("webserver.write_timeout", 5*time.Minute)
	v.SetDefault("webserver.idle_timeout", 120*time.Second)
	v.SetDefault("webserver.body_limit", "100M")

	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.listen", "127.0.0.1:9090")

	v.SetDefault("sentry.enabled", false)
	v.SetDefault("sentry.dsn", "")
	v.SetDefault("sentry.environment", "production")

	v.SetDefault("logging.timezone", "Local")
	v.SetDefault("logging.default_level", logger.DefaultLogLevel)
	v.SetDefault("logging.console.enabled", logger.DefaultConsoleEnabled)
	v.SetDefault("logging.console.level", logger.DefaultLogLevel)
	v.SetDefault("logging.file_output.enabled", logger.DefaultFileEnabled)
	v.SetDefault("logging.file_output.path", logger.DefaultLogPath)
	v.SetDefault("logging.file_output.level", logger.DefaultLogLevel)
	v.SetDefault("logging.modules.access.enabled", false)
	v.SetDefault("logging.modules.access.file_path", logger.DefaultAccessLogPath)
	v.SetDefault("logging.modules.access.level", logger.DefaultLogLevel)
}
