package liveboard

import "context"

// Browser is the session factory shared by all poll tasks. Each task owns
// exactly one [Session] drawn from it.
type Browser interface {
	// NewSession opens a fresh tab.
	NewSession(ctx context.Context) (Session, error)

	// Close shuts the browser down. Sessions still open are invalidated.
	Close() error
}

// Session is one browser tab bound to a single event's live board.
type Session interface {
	// Navigate loads address and returns once the document is ready.
	Navigate(ctx context.Context, address string) error

	// HTML returns the currently rendered document markup. Extraction runs
	// against this markup.
	HTML(ctx context.Context) (string, error)

	// Close releases the tab.
	Close() error
}

// Launcher starts a [Browser]. The context passed in bounds the browser's
// lifetime, so callers should not hand it a context that is cancelled by the
// shutdown signal.
type Launcher func(ctx context.Context) (Browser, error)

// Publisher delivers encoded payloads to a named channel.
type Publisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}
