// Package main is the entry point for the liveboard CLI.
//
// Usage:
//
//	liveboard run -c liveboard.yaml       # Monitor today's matches
//	liveboard targets -c liveboard.yaml   # Print the monitoring targets
//	liveboard validate -c liveboard.yaml  # Validate configuration
//	liveboard version                     # Show version info
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information - set at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCmd is the base command when called without subcommands.
var rootCmd = &cobra.Command{
	Use:   "liveboard",
	Short: "Live text board crawler",
	Long: `liveboard watches the live text pages of today's matches and publishes
a structured snapshot of each board on its own channel every few seconds.

One headless browser is shared by all matches; each match gets its own tab.
Snapshots are published as JSON on "live_board:<match id>".

Quick start:
  1. Create a config file (liveboard.yaml)
  2. Run: liveboard validate -c liveboard.yaml
  3. Run: liveboard run -c liveboard.yaml

Example config:
  poll_interval: 5s
  events:
    source: file
    file: matches.yaml
  publish:
    driver: redis
    redis:
      addr: localhost:6379`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// cobra already printed the error
		os.Exit(1)
	}
}

func main() {
	Execute()
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version, commit hash, and build date of this liveboard binary.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "liveboard %s\n", version)
		fmt.Fprintf(cmd.OutOrStdout(), "  commit: %s\n", commit)
		fmt.Fprintf(cmd.OutOrStdout(), "  built:  %s\n", date)
	},
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "liveboard.yaml", "path to config file")
	rootCmd.PersistentFlags().String("env-file", "", "dotenv file to load (default .env.local, or .env.production when APP_ENV=production)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level: debug, info, warn, error")

	rootCmd.AddCommand(versionCmd)
}
