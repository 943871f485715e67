// Package changesenvelope is the codec for the change-feed frames: one-shot
// CHANGES, LASTSEQ, and the continuous CHANGES_SUB stream with its
// CHANGES_EVENT and CHANGES_EOSE frames.
package changesenvelope

import (
	"encoding/json"
	"fmt"

	"seqrelay.dev/envelopes"
	"seqrelay.dev/interfaces/listener"
	"seqrelay.dev/interfaces/store"
)

// Labels of the change-feed envelopes.
const (
	L      = "CHANGES"
	LSeq   = "LASTSEQ"
	LSub   = "CHANGES_SUB"
	LUnsub = "CHANGES_UNSUB"
	LEvent = "CHANGES_EVENT"
	LEose  = "CHANGES_EOSE"
)

// Options is the wire form of change-feed options for CHANGES and
// CHANGES_SUB.
type Options struct {
	Since   uint64   `json:"since,omitempty"`
	Limit   *int     `json:"limit,omitempty"`
	Kinds   []int    `json:"kinds,omitempty"`
	Authors []string `json:"authors,omitempty"`
}

// DecodeOptions decodes an options object from a frame element.
func DecodeOptions(raw json.RawMessage) (o *Options, err error) {
	o = &Options{}
	if err = json.Unmarshal(raw, o); err != nil {
		err = fmt.Errorf("changes options are not an object: %w", err)
	}
	return
}

// Result is the one-shot ["CHANGES", {changes, lastSeq}] response.
type Result struct {
	Changes []store.Change `json:"changes"`
	LastSeq uint64         `json:"lastSeq"`
}

// NewResult creates a one-shot changes response. A nil changes slice encodes
// as an empty array.
func NewResult(changes []store.Change, lastSeq uint64) (r *Result) {
	if changes == nil {
		changes = []store.Change{}
	}
	return &Result{Changes: changes, LastSeq: lastSeq}
}

// Marshal renders the envelope to its wire form.
func (r *Result) Marshal() (b []byte, err error) {
	return envelopes.Marshal(L, r)
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

// LastSeq is the ["LASTSEQ", n] response.
type LastSeq struct {
	Seq uint64
}

// Marshal renders the envelope to its wire form.
func (l *LastSeq) Marshal() (b []byte, err error) {
	return envelopes.Marshal(LSeq, l.Seq)
}

// Write sends the envelope to a listener.
func (l *LastSeq) Write(lis listener.I) (err error) {
	var b []byte
	if b, err = l.Marshal(); err != nil {
		return
	}
	_, err = lis.Write(b)
	return
}

// Event is a ["CHANGES_EVENT", sub, {seq, event}] frame of a continuous
// change-feed subscription.
type Event struct {
	Sub    string
	Change store.Change
}

// Marshal renders the envelope to its wire form.
func (e *Event) Marshal() (b []byte, err error) {
	return envelopes.Marshal(LEvent, e.Sub, e.Change)
}

// Write sends the envelope to a listener.
func (e *Event) Write(lis listener.I) (err error) {
	var b []byte
	if b, err = e.Marshal(); err != nil {
		return
	}
	_, err = lis.Write(b)
	return
}

// Eose is the ["CHANGES_EOSE", sub, {lastSeq}] sentinel that ends the replay
// phase of a continuous change-feed subscription.
type Eose struct {
	Sub     string
	LastSeq uint64
}

// Marshal renders the envelope to its wire form.
func (e *Eose) Marshal() (b []byte, err error) {
	return envelopes.Marshal(
		LEose, e.Sub, map[string]uint64{"lastSeq": e.LastSeq},
	)
}

// Write sends the envelope to a listener.
func (e *Eose) Write(lis listener.I) (err error) {
	var b []byte
	if b, err = e.Marshal(); err != nil {
		return
	}
	_, err = lis.Write(b)
	return
}
