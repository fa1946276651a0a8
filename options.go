package liveboard

import (
	"errors"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// crawlerConfig holds mutable state during Crawler construction.
type crawlerConfig struct {
	events            []EventDescriptor
	baseURL           string
	interval          time.Duration
	tickTimeout       time.Duration
	navigationTimeout time.Duration
	launcher          Launcher
	publisher         Publisher
	logger            *slog.Logger
	registerer        prometheus.Registerer
	callbacks         []func(Payload)
}

// Option configures a [Crawler] during construction.
//
// Options return an error if validation fails. Built-in options:
// [WithEvents], [WithBaseURL], [WithPollInterval], [WithTickTimeout],
// [WithNavigationTimeout], [WithLauncher], [WithPublisher], [WithLogger],
// [WithRegisterer], [WithSnapshotCallback].
type Option func(*crawlerConfig) error

// WithEvents adds events to monitor. May be called multiple times.
//
// The crawler consumes the list once, at the start of [Crawler.Run].
func WithEvents(events ...EventDescriptor) Option {
	return func(cfg *crawlerConfig) error {
		cfg.events = append(cfg.events, events...)
		return nil
	}
}

// WithBaseURL overrides the live board page addresses are built on.
// Defaults to [DefaultBaseURL].
func WithBaseURL(baseURL string) Option {
	return func(cfg *crawlerConfig) error {
		if baseURL == "" {
			return errors.New("base url cannot be empty")
		}
		cfg.baseURL = baseURL
		return nil
	}
}

// WithPollInterval sets the delay between the end of one tick and the start
// of the next. Defaults to 5 seconds.
//
// Returns an error if the duration is zero or negative.
func WithPollInterval(d time.Duration) Option {
	return func(cfg *crawlerConfig) error {
		if d <= 0 {
			return errors.New("poll interval must be positive")
		}
		cfg.interval = d
		return nil
	}
}

// WithTickTimeout bounds a single extract-publish cycle. A tick that
// exceeds it fails, which ends its task. Defaults to 30 seconds.
func WithTickTimeout(d time.Duration) Option {
	return func(cfg *crawlerConfig) error {
		if d <= 0 {
			return errors.New("tick timeout must be positive")
		}
		cfg.tickTimeout = d
		return nil
	}
}

// WithNavigationTimeout bounds opening a session and loading its target at
// startup. Defaults to 30 seconds.
func WithNavigationTimeout(d time.Duration) Option {
	return func(cfg *crawlerConfig) error {
		if d <= 0 {
			return errors.New("navigation timeout must be positive")
		}
		cfg.navigationTimeout = d
		return nil
	}
}

// WithLauncher sets the function that starts the shared [Browser]. Required.
func WithLauncher(l Launcher) Option {
	return func(cfg *crawlerConfig) error {
		if l == nil {
			return errors.New("launcher cannot be nil")
		}
		cfg.launcher = l
		return nil
	}
}

// WithPublisher sets the sink snapshots are published to. Required.
func WithPublisher(p Publisher) Option {
	return func(cfg *crawlerConfig) error {
		if p == nil {
			return errors.New("publisher cannot be nil")
		}
		cfg.publisher = p
		return nil
	}
}

// WithLogger sets a custom [slog.Logger]. If not specified, [slog.Default]
// is used.
//
// Returns an error if the logger is nil.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *crawlerConfig) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		cfg.logger = logger
		return nil
	}
}

// WithRegisterer registers the crawler's Prometheus collectors on reg.
// Without it no metrics are recorded.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(cfg *crawlerConfig) error {
		if reg == nil {
			return errors.New("registerer cannot be nil")
		}
		cfg.registerer = reg
		return nil
	}
}

// WithSnapshotCallback registers a function called after every successful
// publish with the payload that was sent.
//
// Callbacks run synchronously on the publishing task's goroutine, in
// registration order, and delay that task's next tick while they run.
// Panics are recovered and logged. Nil callbacks are ignored.
//
// A callback may call [Crawler.Stop]; it must not wait on [Crawler.Done],
// since shutdown waits for the callback's task to return.
func WithSnapshotCallback(cb func(Payload)) Option {
	return func(cfg *crawlerConfig) error {
		if cb == nil {
			return nil
		}
		cfg.callbacks = append(cfg.callbacks, cb)
		return nil
	}
}
