package liveboard

import (
	"strings"
	"testing"
	"time"
)

func newTestCrawler(t *testing.T, opts ...Option) *Crawler {
	t.Helper()
	base := []Option{
		WithLauncher((&fakeBrowser{}).launcher()),
		WithPublisher(&recordingPublisher{}),
		WithLogger(testLogger()),
	}
	c, err := New(append(base, opts...)...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return c
}

func TestNew_Defaults(t *testing.T) {
	c := newTestCrawler(t)

	if c.interval != 5*time.Second {
		t.Errorf("interval = %v, want 5s", c.interval)
	}
	if c.tickTimeout != 30*time.Second {
		t.Errorf("tickTimeout = %v, want 30s", c.tickTimeout)
	}
	if c.navigationTimeout != 30*time.Second {
		t.Errorf("navigationTimeout = %v, want 30s", c.navigationTimeout)
	}
	if c.baseURL != DefaultBaseURL {
		t.Errorf("baseURL = %q, want %q", c.baseURL, DefaultBaseURL)
	}
	if len(c.Targets()) != 0 {
		t.Errorf("Targets() = %v, want none", c.Targets())
	}
}

func TestNew_RequiresLauncherAndPublisher(t *testing.T) {
	if _, err := New(WithPublisher(&recordingPublisher{})); err == nil || !strings.Contains(err.Error(), "launcher") {
		t.Errorf("New() without launcher error = %v", err)
	}
	if _, err := New(WithLauncher((&fakeBrowser{}).launcher())); err == nil || !strings.Contains(err.Error(), "publisher") {
		t.Errorf("New() without publisher error = %v", err)
	}
}

func TestNew_DuplicateEventIDs(t *testing.T) {
	_, err := New(
		WithLauncher((&fakeBrowser{}).launcher()),
		WithPublisher(&recordingPublisher{}),
		WithEvents(testEvent(1, "HT", "LG")),
		WithEvents(testEvent(1, "SK", "NC")),
	)
	if err == nil || !strings.Contains(err.Error(), "duplicate event id") {
		t.Errorf("New() error = %v, want duplicate event id", err)
	}
}

func TestOptions_Validation(t *testing.T) {
	tests := []struct {
		name string
		opt  Option
	}{
		{name: "zero poll interval", opt: WithPollInterval(0)},
		{name: "negative poll interval", opt: WithPollInterval(-time.Second)},
		{name: "zero tick timeout", opt: WithTickTimeout(0)},
		{name: "zero navigation timeout", opt: WithNavigationTimeout(0)},
		{name: "empty base url", opt: WithBaseURL("")},
		{name: "nil launcher", opt: WithLauncher(nil)},
		{name: "nil publisher", opt: WithPublisher(nil)},
		{name: "nil logger", opt: WithLogger(nil)},
		{name: "nil registerer", opt: WithRegisterer(nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.opt(&crawlerConfig{}); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestOptions_Applied(t *testing.T) {
	c := newTestCrawler(t,
		WithPollInterval(2*time.Second),
		WithTickTimeout(3*time.Second),
		WithNavigationTimeout(4*time.Second),
		WithBaseURL("https://example.com/live"),
		WithEvents(testEvent(1, "HT", "LG"), testEvent(2, "SK", "NC")),
		WithSnapshotCallback(nil),
		WithSnapshotCallback(func(Payload) {}),
	)

	if c.interval != 2*time.Second || c.tickTimeout != 3*time.Second || c.navigationTimeout != 4*time.Second {
		t.Errorf("timings = %v/%v/%v", c.interval, c.tickTimeout, c.navigationTimeout)
	}
	if len(c.callbacks) != 1 {
		t.Errorf("len(callbacks) = %d, want 1 (nil ignored)", len(c.callbacks))
	}

	targets := c.Targets()
	if len(targets) != 2 {
		t.Fatalf("len(Targets()) = %d, want 2", len(targets))
	}
	if !strings.HasPrefix(targets[0].Address, "https://example.com/live?") {
		t.Errorf("Address = %q, want configured base url", targets[0].Address)
	}
}
