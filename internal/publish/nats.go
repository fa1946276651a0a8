package publish

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

// NATSOptions configure the NATS connection.
type NATSOptions struct {
	URL           string
	Name          string
	MaxReconnects int
	ReconnectWait time.Duration
}

// NATS publishes payloads on the subject equal to the channel name.
type NATS struct {
	conn *nats.Conn
}

// NewNATS connects to the NATS server at opts.URL.
func NewNATS(opts NATSOptions, logger *slog.Logger) (*NATS, error) {
	if opts.Name == "" {
		opts.Name = "liveboard"
	}
	if opts.MaxReconnects == 0 {
		opts.MaxReconnects = 10
	}
	if opts.ReconnectWait == 0 {
		opts.ReconnectWait = 2 * time.Second
	}

	conn, err := nats.Connect(opts.URL,
		nats.Name(opts.Name),
		nats.MaxReconnects(opts.MaxReconnects),
		nats.ReconnectWait(opts.ReconnectWait),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("nats reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats at %s: %w", opts.URL, err)
	}
	return &NATS{conn: conn}, nil
}

// Publish sends payload on the subject channel and flushes, so a dead
// connection surfaces as an error on this tick rather than a later one.
func (n *NATS) Publish(ctx context.Context, channel string, payload []byte) error {
	if err := n.conn.Publish(channel, payload); err != nil {
		return fmt.Errorf("nats publish: %w", err)
	}
	var err error
	if _, ok := ctx.Deadline(); ok {
		err = n.conn.FlushWithContext(ctx)
	} else {
		err = n.conn.Flush() // FlushWithContext rejects contexts without a deadline
	}
	if err != nil {
		return fmt.Errorf("nats flush: %w", err)
	}
	return nil
}

// Close drains pending messages and closes the connection.
func (n *NATS) Close() error {
	return n.conn.Drain()
}
