// Package check implements the preflight command.
package check

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/spf13/cobra"

	"github.com/tphakala/swordgate/internal/buildinfo"
	"github.com/tphakala/swordgate/internal/conf"
	"github.com/tphakala/swordgate/internal/jper"
)

const pingTimeout = 10 * time.Second

// Command creates the check command. Loading the settings already validated
// them; check adds the findings that need the network or judgement.
func Command(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check the configuration and that the router API is reachable",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), pingTimeout)
			defer cancel()

			result := Run(ctx, settings, nil)
			report(cmd.OutOrStdout(), result)
			if !result.Valid {
				return fmt.Errorf("check failed with %d error(s)", len(result.Errors))
			}
			return nil
		},
	}
}

// Run performs the preflight checks. pinger defaults to a router client built
// from settings.
func Run(ctx context.Context, settings *conf.Settings, pinger interface{ Ping(context.Context) error }) *buildinfo.ValidationResult {
	result := buildinfo.NewValidationResult()

	if settings.ConfigFile == "" {
		result.AddWarning("no configuration file found, running on defaults and environment")
	}
	if u, err := url.Parse(settings.Sword.BaseURL); err == nil && u.Scheme == "http" && u.Hostname() != "localhost" && u.Hostname() != "127.0.0.1" {
		result.AddWarning(fmt.Sprintf("sword.base_url %s is not https; basic auth credentials travel in clear text", settings.Sword.BaseURL))
	}

	if pinger == nil {
		client, err := jper.NewClient(settings.JPERConfig())
		if err != nil {
			result.AddError(err.Error())
			return result
		}
		defer client.Close()
		pinger = client
	}

	if err := pinger.Ping(ctx); err != nil {
		result.AddError(fmt.Sprintf("router API %s is not reachable: %v", settings.JPER.APIURL, err))
	}

	return result
}

func report(w io.Writer, result *buildinfo.ValidationResult) {
	for _, warning := range result.Warnings {
		_, _ = fmt.Fprintf(w, "warning: %s\n", warning)
	}
	for _, e := range result.Errors {
		_, _ = fmt.Fprintf(w, "error: %s\n", e)
	}
	if result.Valid {
		_, _ = fmt.Fprintln(w, "ok")
	}
}
