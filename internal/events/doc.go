// Package events resolves which matches the crawler should monitor.
//
// Two sources are provided:
//
//   - [MySQL]: today's matches from the matches/teams tables
//   - [File]: a YAML list of match descriptors, for local runs and replays
//
// Both return liveboard.EventDescriptor values ready for the crawler; no
// validation beyond decoding is performed here.
package events

import (
	"context"

	"github.com/jpalmerr/liveboard"
)

// Source returns the events to monitor.
type Source interface {
	Events(ctx context.Context) ([]liveboard.EventDescriptor, error)
}
