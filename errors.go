package liveboard

import "fmt"

// LaunchError reports that the browser could not be started. It is the only
// failure that aborts a whole run.
type LaunchError struct {
	Err error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("launch browser: %v", e.Err)
}

func (e *LaunchError) Unwrap() error { return e.Err }

// NavigationError reports that a session could not be opened or could not
// load its target address. The target is skipped; other targets continue.
type NavigationError struct {
	EventID int64
	Address string
	Err     error
}

func (e *NavigationError) Error() string {
	return fmt.Sprintf("event %d: navigate to %s: %v", e.EventID, e.Address, e.Err)
}

func (e *NavigationError) Unwrap() error { return e.Err }

// ExtractionError reports that a tick could not produce a [Snapshot].
//
// CorrelationID is set when the failure was a recovered panic; the full stack
// is logged under the same id.
type ExtractionError struct {
	EventID       int64
	CorrelationID string
	Err           error
}

func (e *ExtractionError) Error() string {
	if e.CorrelationID != "" {
		return fmt.Sprintf("event %d: extract (correlation_id: %s): %v", e.EventID, e.CorrelationID, e.Err)
	}
	return fmt.Sprintf("event %d: extract: %v", e.EventID, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// PublishError reports that a snapshot was extracted but could not be
// delivered. It ends the task exactly like an [ExtractionError].
type PublishError struct {
	EventID int64
	Channel string
	Err     error
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("event %d: publish to %s: %v", e.EventID, e.Channel, e.Err)
}

func (e *PublishError) Unwrap() error { return e.Err }
