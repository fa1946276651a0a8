package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/liveboard"
	"github.com/jpalmerr/liveboard/config"
	"github.com/jpalmerr/liveboard/internal/events"
	"github.com/jpalmerr/liveboard/internal/publish"
)

// newLogger creates a JSON logger for CLI use.
func newLogger(level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		return nil, fmt.Errorf("invalid log level %q", level)
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: lvl,
	})), nil
}

// loadConfig loads the dotenv file and then the YAML config named by the
// command's flags.
func loadConfig(cmd *cobra.Command) (*config.Config, string, error) {
	envFile, _ := cmd.Flags().GetString("env-file")
	loaded, err := config.LoadEnv(envFile)
	if err != nil {
		return nil, "", err
	}

	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, "", err
	}
	return cfg, loaded, nil
}

// loadEvents reads today's events from the configured source.
func loadEvents(ctx context.Context, cfg *config.Config) ([]liveboard.EventDescriptor, error) {
	loc, err := cfg.Events.Location()
	if err != nil {
		return nil, err
	}

	switch cfg.Events.Source {
	case config.SourceFile:
		return events.NewFile(cfg.Events.File).Events(ctx)

	case config.SourceMySQL:
		db, err := events.OpenMySQL(ctx, cfg.Events.DSN, loc)
		if err != nil {
			return nil, err
		}
		defer db.Close()
		return db.Events(ctx)

	default:
		return nil, fmt.Errorf("unknown events source %q", cfg.Events.Source)
	}
}

// openPublisher connects the configured sink. When hub is non-nil every
// payload is also delivered to it. The returned func releases the sink.
func openPublisher(ctx context.Context, cfg *config.Config, hub *publish.Hub, logger *slog.Logger) (liveboard.Publisher, func() error, error) {
	noop := func() error { return nil }

	var sink publish.Publisher
	closeSink := noop

	switch cfg.Publish.Driver {
	case config.DriverRedis:
		r, err := publish.NewRedis(ctx, publish.RedisOptions{
			Addr:     cfg.Publish.Redis.Addr,
			Password: cfg.Publish.Redis.Password,
			DB:       cfg.Publish.Redis.DB,
		})
		if err != nil {
			return nil, nil, err
		}
		sink, closeSink = r, r.Close

	case config.DriverNATS:
		n, err := publish.NewNATS(publish.NATSOptions{
			URL:  cfg.Publish.NATS.URL,
			Name: cfg.Publish.NATS.Name,
		}, logger)
		if err != nil {
			return nil, nil, err
		}
		sink, closeSink = n, n.Close

	case config.DriverMemory:
		if hub == nil {
			hub = publish.NewHub()
		}
		return hub, noop, nil

	default:
		return nil, nil, fmt.Errorf("unknown publish driver %q", cfg.Publish.Driver)
	}

	if hub == nil {
		return sink, closeSink, nil
	}
	return publish.Multi{sink, hub}, closeSink, nil
}
