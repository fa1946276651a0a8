package publish

import (
	"context"
	"errors"
)

// Publisher is the method set shared by every sink in this package.
type Publisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// Multi publishes to every sink in order.
//
// All sinks are attempted even when an earlier one fails; the failures are
// joined into the returned error.
type Multi []Publisher

// Publish sends payload to every sink.
func (m Multi) Publish(ctx context.Context, channel string, payload []byte) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, channel, payload); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
