// Package eventenvelope is the codec for the two EVENT frames: the inbound
// ["EVENT", event] submission and the outbound ["EVENT", sub, event] result.
package eventenvelope

import (
	"encoding/json"
	"fmt"

	"seqrelay.dev/envelopes"
	"seqrelay.dev/event"
	"seqrelay.dev/interfaces/listener"
)

// L is the label of the envelope.
const L = "EVENT"

// Submission is an inbound event submission from a client.
type Submission struct {
	E *event.E
}

// NewSubmission creates an empty submission ready to unmarshal into.
func NewSubmission() (s *Submission) { return &Submission{E: event.New()} }

// Unmarshal decodes the rest of an identified EVENT frame.
func (s *Submission) Unmarshal(rest []json.RawMessage) (err error) {
	if len(rest) != 1 {
		return fmt.Errorf("EVENT requires exactly one element, got %d", len(rest))
	}
	if err = json.Unmarshal(rest[0], s.E); err != nil {
		return fmt.Errorf("failed to decode event: %w", err)
	}
	return
}

// Result is an outbound event carrying the subscription id it matched.
type Result struct {
	Sub string
	E   *event.E
}

// NewResultWith creates a result envelope for a subscription.
func NewResultWith(sub string, ev *event.E) (r *Result) {
	return &Result{Sub: sub, E: ev}
}

// Marshal renders the envelope to its wire form.
func (r *Result) Marshal() (b []byte, err error) {
	return envelopes.Marshal(L, r.Sub, r.E)
}

// Write sends the envelope to a listener.
func (r *Result) Write(lis listener.I) (err error) {
	var b []byte
	if b, err = r.Marshal(); err != nil {
		return
	}
	_, err = lis.Write(b)
	return
}
