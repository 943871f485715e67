// Package noticeenvelope is the codec for the ["NOTICE", text] frame used for
// human-readable errors that are not tied to a command acknowledgement.
package noticeenvelope

import (
	"seqrelay.dev/envelopes"
	"seqrelay.dev/interfaces/listener"
)

// L is the label of the envelope.
const L = "NOTICE"

// T is a NOTICE envelope.
type T struct {
	Text string
}

// NewFrom creates a NOTICE envelope.
func NewFrom(text string) (t *T) { return &T{Text: text} }

// Marshal renders the envelope to its wire form.
func (t *T) Marshal() (b []byte, err error) {
	return envelopes.Marshal(L, t.Text)
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
