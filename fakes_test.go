package liveboard

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// testLogger returns a logger that discards all output for clean test output.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeBrowser hands out fakeSessions whose behavior is chosen by the address
// they navigate to.
type fakeBrowser struct {
	// htmlFor returns the document served for an address. Defaults to
	// liveBoardHTML.
	htmlFor func(address string) (string, error)

	// navErrFor fails navigation for an address when it returns non-nil.
	navErrFor func(address string) error

	closeErr error

	mu       sync.Mutex
	sessions []*fakeSession
	closes   atomic.Int32
}

func (b *fakeBrowser) NewSession(ctx context.Context) (Session, error) {
	if b.closes.Load() > 0 {
		return nil, errors.New("browser closed")
	}
	s := &fakeSession{browser: b}
	b.mu.Lock()
	b.sessions = append(b.sessions, s)
	b.mu.Unlock()
	return s, nil
}

func (b *fakeBrowser) Close() error {
	b.closes.Add(1)
	return b.closeErr
}

// session returns the session that navigated to an address containing
// gameID, or nil.
func (b *fakeBrowser) session(gameID string) *fakeSession {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, s := range b.sessions {
		if strings.Contains(s.Address(), gameID) {
			return s
		}
	}
	return nil
}

func (b *fakeBrowser) allSessions() []*fakeSession {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]*fakeSession(nil), b.sessions...)
}

func (b *fakeBrowser) launcher() Launcher {
	return func(context.Context) (Browser, error) { return b, nil }
}

type fakeSession struct {
	browser *fakeBrowser

	mu      sync.Mutex
	address string

	reads    atomic.Int32
	inFlight atomic.Int32
	overlap  atomic.Bool
	closes   atomic.Int32
}

func (s *fakeSession) Navigate(_ context.Context, address string) error {
	s.mu.Lock()
	s.address = address
	s.mu.Unlock()
	if s.browser.navErrFor != nil {
		return s.browser.navErrFor(address)
	}
	return nil
}

func (s *fakeSession) HTML(context.Context) (string, error) {
	if s.inFlight.Add(1) > 1 {
		s.overlap.Store(true)
	}
	defer s.inFlight.Add(-1)
	s.reads.Add(1)

	if s.browser.htmlFor != nil {
		return s.browser.htmlFor(s.Address())
	}
	return liveBoardHTML, nil
}

func (s *fakeSession) Close() error {
	s.closes.Add(1)
	return nil
}

func (s *fakeSession) Address() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.address
}

type published struct {
	channel string
	payload []byte
}

// recordingPublisher records every publish. failFor makes Publish fail for a
// channel when it returns non-nil.
type recordingPublisher struct {
	failFor func(channel string) error

	mu   sync.Mutex
	msgs []published
}

func (p *recordingPublisher) Publish(_ context.Context, channel string, payload []byte) error {
	if p.failFor != nil {
		if err := p.failFor(channel); err != nil {
			return err
		}
	}
	p.mu.Lock()
	p.msgs = append(p.msgs, published{channel: channel, payload: append([]byte(nil), payload...)})
	p.mu.Unlock()
	return nil
}

func (p *recordingPublisher) on(channel string) []published {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []published
	for _, m := range p.msgs {
		if m.channel == channel {
			out = append(out, m)
		}
	}
	return out
}

// waitFor polls cond until it holds or the timeout expires.
func waitFor(t *testing.T, timeout time.Duration, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", msg)
}

// startRun runs c in the background and returns a channel with its result.
func startRun(ctx context.Context, c *Crawler) <-chan error {
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()
	return done
}

func waitRun(t *testing.T, done <-chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(3 * time.Second):
		t.Fatal("Run() did not return")
		return nil
	}
}

func hasTask(c *Crawler, eventID int64) bool {
	for _, ti := range c.Tasks() {
		if ti.EventID == eventID {
			return true
		}
	}
	return false
}

func testEvent(id int64, away, home string) EventDescriptor {
	return EventDescriptor{
		ID:       id,
		AwayName: away + " team",
		AwayCode: away,
		HomeName: home + " team",
		HomeCode: home,
		Start:    time.Date(2024, 5, 1, 18, 30, 0, 0, time.UTC),
	}
}
