// Package reqenvelope is the codec for the inbound
// ["REQ", sub, filter, ...] subscription frame.
package reqenvelope

import (
	"encoding/json"
	"fmt"

	"seqrelay.dev/filter"
)

// L is the label of the envelope.
const L = "REQ"

// T is a REQ envelope: a subscription id and one or more filters.
type T struct {
	Sub     string
	Filters filter.S
}

// New creates an empty REQ envelope ready to unmarshal into.
func New() (t *T) { return &T{} }

// Unmarshal decodes the rest of an identified REQ frame.
func (t *T) Unmarshal(rest []json.RawMessage) (err error) {
	if len(rest) < 2 {
		return fmt.Errorf(
			"REQ requires a subscription id and at least one filter",
		)
	}
	if err = json.Unmarshal(rest[0], &t.Sub); err != nil {
		return fmt.Errorf("subscription id is not a string: %w", err)
	}
	for i, raw := range rest[1:] {
		f := filter.New()
		if err = json.Unmarshal(raw, f); err != nil {
			return fmt.Errorf("failed to decode filter %d: %w", i, err)
		}
		t.Filters = append(t.Filters, f)
	}
	return
}
