// Package okenvelope is the codec for the ["OK", id, accepted, reason]
// acknowledgement frame.
package okenvelope

import (
	"seqrelay.dev/envelopes"
	"seqrelay.dev/interfaces/listener"
)

// L is the label of the envelope.
const L = "OK"

// T is an OK envelope: the acknowledgement of an EVENT submission.
type T struct {
	EventId  string
	Accepted bool
	Reason   string
}

// NewFrom creates an OK envelope. reason is optional; a clean accept carries
// the empty string.
func NewFrom(eventId string, accepted bool, reason ...string) (t *T) {
	t = &T{EventId: eventId, Accepted: accepted}
	if len(reason) > 0 {
		t.Reason = reason[0]
	}
	return
}

// Marshal renders the envelope to its wire form.
func (t *T) Marshal() (b []byte, err error) {
	return envelopes.Marshal(L, t.EventId, t.Accepted, t.Reason)
}

// Write sends the envelope to a listener.
func (t *T) Write(lis listener.I) (err error) {
	var b []byte
	if b, err = t.Marshal(); err != nil {
		return
	}
	_, err = lis.Write(b)
	return
}
