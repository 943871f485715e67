// Package closeenvelope is the codec for the inbound ["CLOSE", sub] frame.
package closeenvelope

import (
	"encoding/json"
	"fmt"
)

// L is the label of the envelope.
const L = "CLOSE"

// T is a CLOSE envelope carrying the subscription id to remove.
type T struct {
	Sub string
}

// New creates an empty CLOSE envelope ready to unmarshal into.
func New() (t *T) { return &T{} }

// Unmarshal decodes the rest of an identified CLOSE frame.
func (t *T) Unmarshal(rest []json.RawMessage) (err error) {
	if len(rest) != 1 {
		return fmt.Errorf("CLOSE requires exactly one element, got %d", len(rest))
	}
	if err = json.Unmarshal(rest[0], &t.Sub); err != nil {
		return fmt.Errorf("subscription id is not a string: %w", err)
	}
	return
}
