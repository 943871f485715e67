// Package eoseenvelope is the codec for the ["EOSE", sub] sentinel marking
// the end of stored-event replay for a subscription.
package eoseenvelope

import (
	"seqrelay.dev/envelopes"
	"seqrelay.dev/interfaces/listener"
)

// L is the label of the envelope.
const L = "EOSE"

// T is an EOSE envelope.
type T struct {
	Sub string
}

// NewFrom creates an EOSE envelope for a subscription.
func NewFrom(sub string) (t *T) { return &T{Sub: sub} }

// Marshal renders the envelope to its wire form.
func (t *T) Marshal() (b []byte, err error) {
	return envelopes.Marshal(L, t.Sub)
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
