// Package config implements the command that prints the configuration.
package config

import (
	"github.com/spf13/cobra"

	"github.com/tphakala/swordgate/internal/conf"
)

// Command creates the config command and its default subcommand.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long:  "Print the configuration after defaults, the config file, environment and flags are merged. Secrets are redacted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return conf.Dump(cmd.OutOrStdout(), settings)
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "default",
		Short: "Print the annotated default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := conf.DefaultConfigYAML()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	})

	return cmd
}
