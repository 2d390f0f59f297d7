package version

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tphakala/swordgate/internal/buildinfo"
)

// Command creates a new cobra.Command to print build information.
func Command(build buildinfo.BuildInfo) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version of swordgate",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "swordgate %s (built %s)\n", build.GetVersion(), build.GetBuildDate())
			return err
		},
	}
}
