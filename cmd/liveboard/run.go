package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/jpalmerr/liveboard"
	"github.com/jpalmerr/liveboard/config"
	"github.com/jpalmerr/liveboard/internal/browser"
	"github.com/jpalmerr/liveboard/internal/publish"
	"github.com/jpalmerr/liveboard/internal/server"
)

// shutdownGrace is added to the tick timeout when waiting for the crawler
// to finish after a signal.
const shutdownGrace = 10 * time.Second

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Monitor today's matches",
	Long: `Monitor today's matches until every board has stopped or the process is
interrupted.

The command will:
  - Load the dotenv file and the YAML configuration
  - Read today's matches from the configured events source
  - Launch a headless browser and open one tab per match
  - Publish a snapshot of every board on each poll interval
  - Serve the status API when server.port is set

SIGINT and SIGTERM close every tab and then the browser before exiting.

Example:
  liveboard run -c liveboard.yaml
  APP_ENV=production liveboard run -c /etc/liveboard/liveboard.yaml`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	level, _ := cmd.Flags().GetString("log-level")
	logger, err := newLogger(level)
	if err != nil {
		return err
	}
	logger = logger.With("run_id", uuid.NewString())

	cfg, envFile, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger.Info("config loaded",
		"env_file", envFile,
		"events_source", cfg.Events.Source,
		"publish_driver", cfg.Publish.Driver,
		"poll_interval", cfg.PollInterval.Duration().String(),
	)

	// set up context with signal handling - cancel on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	evs, err := loadEvents(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to load events: %w", err)
	}
	logger.Info("events loaded", "count", len(evs))

	var hub *publish.Hub
	if cfg.Server.Port > 0 || cfg.Publish.Driver == config.DriverMemory {
		hub = publish.NewHub()
	}

	pub, closePub, err := openPublisher(ctx, cfg, hub, logger)
	if err != nil {
		return fmt.Errorf("failed to open publisher: %w", err)
	}
	defer func() {
		if err := closePub(); err != nil {
			logger.Warn("publisher close failed", "error", err)
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	opts := append(config.CrawlerOptions(cfg),
		liveboard.WithEvents(evs...),
		liveboard.WithLauncher(browser.Launcher(config.BrowserOptions(cfg))),
		liveboard.WithPublisher(pub),
		liveboard.WithLogger(logger),
		liveboard.WithRegisterer(reg),
	)

	crawler, err := liveboard.New(opts...)
	if err != nil {
		return fmt.Errorf("failed to create crawler: %w", err)
	}

	if cfg.Server.Port > 0 {
		srv := server.NewServer(crawler, hub, reg, cfg.Server.Port, logger)
		if err := srv.Start(ctx); err != nil {
			return err
		}
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- crawler.Run(ctx)
	}()

	select {
	case err := <-errChan:
		return err

	case <-ctx.Done():
		// signal received, the crawler is closing its sessions
		timeout := cfg.TickTimeout.Duration() + shutdownGrace
		select {
		case err := <-errChan:
			return err
		case <-time.After(timeout):
			logger.Warn("shutdown timed out",
				"timeout", timeout.String(),
				"action", "forcing exit",
			)
			return nil
		}
	}
}
