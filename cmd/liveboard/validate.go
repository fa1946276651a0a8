package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// validateCmd validates a config file without connecting to anything.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a config file",
	Long: `Validate a liveboard configuration file without starting the crawler.

This command loads the dotenv file, parses the YAML, expands environment
variables, and validates all fields. It's useful for CI/CD pipelines or
pre-deployment checks.

Exit codes:
  0 - Config is valid
  1 - Config is invalid (error details printed to stderr)

Example:
  liveboard validate -c liveboard.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "(default)"
	}
	serverDesc := "disabled"
	if cfg.Server.Port > 0 {
		serverDesc = fmt.Sprintf("port %d", cfg.Server.Port)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Config is valid!\n")
	fmt.Fprintf(out, "  Poll interval: %s\n", cfg.PollInterval.Duration())
	fmt.Fprintf(out, "  Tick timeout:  %s\n", cfg.TickTimeout.Duration())
	fmt.Fprintf(out, "  Base URL:      %s\n", baseURL)
	fmt.Fprintf(out, "  Events:        %s (%s)\n", cfg.Events.Source, cfg.Events.Timezone)
	fmt.Fprintf(out, "  Publish:       %s\n", cfg.Publish.Driver)
	fmt.Fprintf(out, "  Server:        %s\n", serverDesc)

	return nil
}
