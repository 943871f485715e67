// Package closedenvelope is the codec for the ["CLOSED", sub, reason] frame
// sent when a subscription is refused or torn down by the relay.
package closedenvelope

import (
	"seqrelay.dev/envelopes"
	"seqrelay.dev/interfaces/listener"
)

// L is the label of the envelope.
const L = "CLOSED"

// T is a CLOSED envelope.
type T struct {
	Sub    string
	Reason string
}

// NewFrom creates a CLOSED envelope for a subscription.
func NewFrom(sub, reason string) (t *T) { return &T{Sub: sub, Reason: reason} }

// Marshal renders the envelope to its wire form.
func (t *T) Marshal() (b []byte, err error) {
	return envelopes.Marshal(L, t.Sub, t.Reason)
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
