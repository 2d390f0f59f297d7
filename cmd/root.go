package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tphakala/swordgate/cmd/check"
	configcmd "github.com/tphakala/swordgate/cmd/config"
	"github.com/tphakala/swordgate/cmd/serve"
	"github.com/tphakala/swordgate/cmd/version"
	"github.com/tphakala/swordgate/internal/buildinfo"
	"github.com/tphakala/swordgate/internal/conf"
)

// SkipSettings marks commands that run without loading the configuration.
const SkipSettings = "skip-settings"

// RootCommand creates and returns the root command. Settings are loaded once
// flags are parsed and shared with every subcommand through settings.
func RootCommand(build *buildinfo.Context) *cobra.Command {
	v := viper.New()
	settings := &conf.Settings{}
	var configFile string

	rootCmd := &cobra.Command{
		Use:           "swordgate",
		Short:         "SWORD v2 deposit endpoint for the JPER notification router",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Set up the global flags for the root command.
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to the configuration file")
	if err := setupFlags(rootCmd, v); err != nil {
		panic(err)
	}

	versionCmd := version.Command(build)
	configCmd := configcmd.Command(settings)
	markSkipSettings(versionCmd)
	if defaultCmd, _, err := configCmd.Find([]string{"default"}); err == nil && defaultCmd != configCmd {
		markSkipSettings(defaultCmd)
	}

	rootCmd.AddCommand(
		serve.Command(settings, build),
		configCmd,
		check.Command(settings),
		versionCmd,
	)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if skipsSettings(cmd) {
			return nil
		}

		loaded, err := conf.LoadWith(v, configFile)
		if err != nil {
			return err
		}
		loaded.Version = build.GetVersion()
		loaded.BuildDate = build.GetBuildDate()
		*settings = *loaded
		return nil
	}

	return rootCmd
}

// setupFlags defines flags that are global to the command line interface and
// binds them to their configuration keys.
func setupFlags(rootCmd *cobra.Command, v *viper.Viper) error {
	flags := rootCmd.PersistentFlags()
	flags.BoolP("debug", "d", false, "Enable debug output")
	flags.String("port", "", "Port the SWORD endpoint listens on")
	flags.String("base-url", "", "Public base URL of the SWORD endpoint")
	flags.String("api-url", "", "Base URL of the router API")

	bindings := map[string]string{
		"debug":    "debug",
		"port":     "webserver.port",
		"base-url": "sword.base_url",
		"api-url":  "jper.api_url",
	}
	for flag, key := range bindings {
		if err := v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			return fmt.Errorf("error binding flag %s: %w", flag, err)
		}
	}

	return nil
}

func markSkipSettings(cmd *cobra.Command) {
	if cmd.Annotations == nil {
		cmd.Annotations = map[string]string{}
	}
	cmd.Annotations[SkipSettings] = "true"
}

func skipsSettings(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[SkipSettings] == "true" {
			return true
		}
	}
	return false
}
