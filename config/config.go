// Package config provides YAML configuration parsing for the liveboard CLI.
//
// Example configuration:
//
//	poll_interval: 5s
//	tick_timeout: 30s
//	navigation_timeout: 30s
//
//	browser:
//	  exec_path: ${CHROMIUM_PATH}
//	  headless: true
//
//	events:
//	  source: mysql
//	  dsn: "${DB_USERNAME}:${DB_PASSWORD}@tcp(${DB_HOST}:${DB_PORT})/${DB_DATABASE}"
//	  timezone: Asia/Seoul
//
//	publish:
//	  driver: redis
//	  redis:
//	    addr: "${REDIS_HOST}:${REDIS_PORT:-6379}"
//
//	server:
//	  port: 8080
package config

import (
	"fmt"
	"net/url"
	"os"
	"regexp"
	"time"
	_ "time/tzdata" // timezone names must resolve in minimal containers

	"gopkg.in/yaml.v3"
)

// minPollInterval is the minimum allowed polling interval. The live board
// page itself refreshes no faster than this.
const minPollInterval = 1 * time.Second

// Event sources.
const (
	SourceMySQL = "mysql"
	SourceFile  = "file"
)

// Publish drivers.
const (
	DriverRedis  = "redis"
	DriverNATS   = "nats"
	DriverMemory = "memory"
)

// Config is the root configuration structure.
//
// It maps directly to the YAML configuration file structure.
// Use [Load] or [Parse] to create a Config from YAML.
type Config struct {
	// PollInterval is the pause between the end of one tick and the start
	// of the next. Defaults to 5s.
	PollInterval Duration `yaml:"poll_interval"`

	// TickTimeout bounds a single extract-publish cycle. Defaults to 30s.
	TickTimeout Duration `yaml:"tick_timeout"`

	// NavigationTimeout bounds loading a page at startup. Defaults to 30s.
	NavigationTimeout Duration `yaml:"navigation_timeout"`

	// BaseURL is the live text page addresses are built on.
	// Defaults to the KBO live text page.
	BaseURL string `yaml:"base_url"`

	Browser BrowserConfig `yaml:"browser"`
	Events  EventsConfig  `yaml:"events"`
	Publish PublishConfig `yaml:"publish"`
	Server  ServerConfig  `yaml:"server"`
}

// BrowserConfig configures the headless browser.
type BrowserConfig struct {
	// ExecPath is the Chrome/Chromium binary. Empty searches the PATH.
	ExecPath string `yaml:"exec_path"`

	// Headless runs without a window. Defaults to true.
	Headless *bool `yaml:"headless"`

	// Args are extra switches without the leading "--".
	Args []string `yaml:"args"`
}

// IsHeadless reports whether the browser runs headless.
func (b BrowserConfig) IsHeadless() bool {
	return b.Headless == nil || *b.Headless
}

// EventsConfig selects where today's matches come from.
type EventsConfig struct {
	// Source is "mysql" or "file". Defaults to "mysql".
	Source string `yaml:"source"`

	// DSN is the go-sql-driver/mysql data source name (source: mysql).
	DSN string `yaml:"dsn"`

	// File is the path of a YAML events document (source: file).
	File string `yaml:"file"`

	// Timezone defines "today" and the game id date. Defaults to Asia/Seoul.
	Timezone string `yaml:"timezone"`
}

// Location resolves Timezone.
func (e EventsConfig) Location() (*time.Location, error) {
	return time.LoadLocation(e.Timezone)
}

// PublishConfig selects and configures the publish sink.
type PublishConfig struct {
	// Driver is "redis", "nats", or "memory". Defaults to "redis".
	Driver string `yaml:"driver"`

	Redis RedisConfig `yaml:"redis"`
	NATS  NATSConfig  `yaml:"nats"`
}

// RedisConfig configures the Redis publisher.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// NATSConfig configures the NATS publisher.
type NATSConfig struct {
	URL  string `yaml:"url"`
	Name string `yaml:"name"`
}

// ServerConfig configures the status server.
type ServerConfig struct {
	// Port is the HTTP port. 0 disables the server.
	Port int `yaml:"port"`
}

// Duration wraps time.Duration for YAML unmarshalling.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}

	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns.
// Group 1: variable name
// Group 2: the ":-default" part (if present, indicates a default was specified)
// Group 3: the default value (may be empty for ${VAR:-})
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(:-([^}]*))?\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} patterns with environment values.
func expandEnvVars(s string) (string, error) {
	var firstErr error

	result := envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		if firstErr != nil {
			return match
		}

		submatches := envVarPattern.FindStringSubmatch(match)
		if len(submatches) < 2 {
			return match
		}

		varName := submatches[1]
		hasDefault := len(submatches) > 2 && submatches[2] != ""
		defaultVal := ""
		if hasDefault && len(submatches) > 3 {
			defaultVal = submatches[3]
		}

		value, exists := os.LookupEnv(varName)
		if !exists {
			if hasDefault {
				return defaultVal
			}
			firstErr = fmt.Errorf("environment variable %q is not set", varName)
			return match
		}
		return value
	})

	if firstErr != nil {
		return "", firstErr
	}
	return result, nil
}

// Load reads and parses a YAML configuration file.
//
// Environment variables in string fields are expanded after parsing.
// Returns an error if the file cannot be read, parsed, or validated.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML configuration data, applies defaults, expands
// environment variables, and validates the result.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.expandAndValidate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.PollInterval == 0 {
		c.PollInterval = Duration(5 * time.Second)
	}
	if c.TickTimeout == 0 {
		c.TickTimeout = Duration(30 * time.Second)
	}
	if c.NavigationTimeout == 0 {
		c.NavigationTimeout = Duration(30 * time.Second)
	}
	if c.Events.Source == "" {
		c.Events.Source = SourceMySQL
	}
	if c.Events.Timezone == "" {
		c.Events.Timezone = "Asia/Seoul"
	}
	if c.Publish.Driver == "" {
		c.Publish.Driver = DriverRedis
	}
}

// expandAndValidate expands environment variables and validates the config.
func (c *Config) expandAndValidate() error {
	if c.PollInterval.Duration() < minPollInterval {
		return fmt.Errorf("poll_interval must be at least %s, got %s", minPollInterval, c.PollInterval.Duration())
	}
	if c.TickTimeout.Duration() < time.Second {
		return fmt.Errorf("tick_timeout must be at least 1s, got %s", c.TickTimeout.Duration())
	}
	if c.NavigationTimeout.Duration() < time.Second {
		return fmt.Errorf("navigation_timeout must be at least 1s, got %s", c.NavigationTimeout.Duration())
	}

	expand := func(field string, s *string) error {
		expanded, err := expandEnvVars(*s)
		if err != nil {
			return fmt.Errorf("%s: %w", field, err)
		}
		*s = expanded
		return nil
	}

	for field, s := range map[string]*string{
		"base_url":               &c.BaseURL,
		"browser.exec_path":      &c.Browser.ExecPath,
		"events.dsn":             &c.Events.DSN,
		"events.file":            &c.Events.File,
		"publish.redis.addr":     &c.Publish.Redis.Addr,
		"publish.redis.password": &c.Publish.Redis.Password,
		"publish.nats.url":       &c.Publish.NATS.URL,
	} {
		if err := expand(field, s); err != nil {
			return err
		}
	}
	for i := range c.Browser.Args {
		if err := expand(fmt.Sprintf("browser.args[%d]", i), &c.Browser.Args[i]); err != nil {
			return err
		}
	}

	if c.BaseURL != "" {
		parsedURL, err := url.Parse(c.BaseURL)
		if err != nil {
			return fmt.Errorf("base_url: invalid url: %w", err)
		}
		if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
			return fmt.Errorf("base_url: scheme must be http or https, got %q", parsedURL.Scheme)
		}
	}

	switch c.Events.Source {
	case SourceMySQL:
		if c.Events.DSN == "" {
			return fmt.Errorf("events.dsn is required for source %q", SourceMySQL)
		}
	case SourceFile:
		if c.Events.File == "" {
			return fmt.Errorf("events.file is required for source %q", SourceFile)
		}
	default:
		return fmt.Errorf("events.source must be %q or %q, got %q", SourceMySQL, SourceFile, c.Events.Source)
	}

	if _, err := c.Events.Location(); err != nil {
		return fmt.Errorf("events.timezone: %w", err)
	}

	switch c.Publish.Driver {
	case DriverRedis:
		if c.Publish.Redis.Addr == "" {
			return fmt.Errorf("publish.redis.addr is required for driver %q", DriverRedis)
		}
		if c.Publish.Redis.DB < 0 {
			return fmt.Errorf("publish.redis.db cannot be negative, got %d", c.Publish.Redis.DB)
		}
	case DriverNATS:
		if c.Publish.NATS.URL == "" {
			return fmt.Errorf("publish.nats.url is required for driver %q", DriverNATS)
		}
	case DriverMemory:
	default:
		return fmt.Errorf("publish.driver must be %q, %q, or %q, got %q",
			DriverRedis, DriverNATS, DriverMemory, c.Publish.Driver)
	}

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 0 and 65535, got %d", c.Server.Port)
	}

	return nil
}
