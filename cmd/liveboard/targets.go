package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/liveboard"
)

var targetsCmd = &cobra.Command{
	Use:   "targets",
	Short: "Print today's monitoring targets",
	Long: `Resolve today's matches from the configured events source and print the
channel and page address each one would be monitored on. No browser is
started and nothing is published.

Example:
  liveboard targets -c liveboard.yaml`,
	RunE: runTargets,
}

func init() {
	rootCmd.AddCommand(targetsCmd)
}

func runTargets(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	evs, err := loadEvents(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("failed to load events: %w", err)
	}

	out := cmd.OutOrStdout()
	targets := liveboard.BuildTargets(cfg.BaseURL, evs)
	if len(targets) == 0 {
		fmt.Fprintln(out, "No matches today.")
		return nil
	}

	for _, t := range targets {
		fmt.Fprintf(out, "%-8d %-6s @ %-6s %s\n", t.Event.ID, t.Event.AwayCode, t.Event.HomeCode, t.Channel())
		fmt.Fprintf(out, "         %s\n", t.Address)
	}
	fmt.Fprintf(out, "%d target(s)\n", len(targets))
	return nil
}
