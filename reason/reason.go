// Package reason provides the machine-readable prefixes used in OK and CLOSED
// envelopes. The prefix tells the client whether an event was rejected as
// malformed, accepted but already known, or failed due to a relay-side error.
package reason

import "fmt"

// R is a reason prefix for OK and CLOSED envelope messages.
type R string

const (
	// Invalid marks events or filters that fail structural or cryptographic
	// validation.
	Invalid R = "invalid"
	// Duplicate marks events that were accepted but not newly stored.
	Duplicate R = "duplicate"
	// Error marks relay-side failures, usually storage.
	Error R = "error"
)

// F formats a message with the reason prefix prepended.
func (r R) F(format string, params ...any) string {
	return string(r) + ": " + fmt.Sprintf(format, params...)
}

// Err formats an error with the reason prefix prepended.
func (r R) Err(format string, params ...any) error {
	return fmt.Errorf(string(r)+": "+format, params...)
}
