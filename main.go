package main

import (
	"fmt"
	"os"

	"github.com/tphakala/swordgate/cmd"
	"github.com/tphakala/swordgate/internal/buildinfo"
)

// Set at build time with -ldflags "-X main.version=... -X main.buildDate=..."
var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	rootCmd := cmd.RootCommand(buildinfo.NewContext(version, buildDate))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "swordgate: %v\n", err)
		os.Exit(1)
	}
}
