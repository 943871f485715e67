// Package envelopes identifies inbound command frames and provides the shared
// array marshaler the per-envelope packages build their wire form with.
package envelopes

import (
	"encoding/json"
	"fmt"

	"seqrelay.dev/event"
)

// Identify parses a frame as a JSON array and returns its label (the first
// element, which must be a string) and the remaining elements.
func Identify(b []byte) (label string, rest []json.RawMessage, err error) {
	var arr []json.RawMessage
	if err = json.Unmarshal(b, &arr); err != nil {
		err = fmt.Errorf("frame is not a JSON array: %w", err)
		return
	}
	if len(arr) == 0 {
		err = fmt.Errorf("frame is an empty array")
		return
	}
	if err = json.Unmarshal(arr[0], &label); err != nil {
		err = fmt.Errorf("frame label is not a string: %w", err)
		return
	}
	rest = arr[1:]
	return
}

// Marshal renders a JSON array frame from the given elements, minified and
// without HTML escaping.
func Marshal(items ...any) (b []byte, err error) {
	return event.MarshalCompact(items)
}
