package config

import (
	"github.com/jpalmerr/liveboard"
	"github.com/jpalmerr/liveboard/internal/browser"
)

// CrawlerOptions converts parsed configuration into crawler options.
//
// Events, launcher, publisher, and logger are wired by the caller.
func CrawlerOptions(cfg *Config) []liveboard.Option {
	opts := []liveboard.Option{
		liveboard.WithPollInterval(cfg.PollInterval.Duration()),
		liveboard.WithTickTimeout(cfg.TickTimeout.Duration()),
		liveboard.WithNavigationTimeout(cfg.NavigationTimeout.Duration()),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, liveboard.WithBaseURL(cfg.BaseURL))
	}
	return opts
}

// BrowserOptions converts the browser section into launch options.
func BrowserOptions(cfg *Config) browser.Options {
	return browser.Options{
		ExecPath: cfg.Browser.ExecPath,
		Headless: cfg.Browser.IsHeadless(),
		Args:     append([]string(nil), cfg.Browser.Args...),
	}
}
