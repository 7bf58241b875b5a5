// Package cmd implements the netcall command line.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version information
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// NewRootCommand creates the root command for the netcall application
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "netcall",
		Short: "netcall - send HTTP calls through the networking client pipeline",
		Long: `netcall sends a single HTTP call through the networking client pipeline.
Configuration is read from a YAML, TOML or JSON file and from environment
variables, so the same settings can be shared with services using the library.`,
		Version:       PrintVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	cmd.SetVersionTemplate("{{.Version}}\n")

	cmd.AddCommand(NewSendCommand())
	cmd.AddCommand(NewConfigCommand())

	return cmd
}

// PrintVersion returns version information
func PrintVersion() string {
	return fmt.Sprintf("netcall v%s (commit: %s, built on: %s)", Version, Commit, Date)
}
