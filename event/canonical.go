package event

import (
	"encoding/hex"
)

// Canonical renders the form of the event that is hashed to produce its Id:
// the JSON array [0, pubkey, created_at, kind, tags, content] with no
// extraneous whitespace, preserving tag order.
func (ev *E) Canonical() (b []byte) {
	tags := ev.Tags
	if tags == nil {
		tags = [][]string{}
	}
	b, _ = MarshalCompact(
		[]any{0, ev.Pubkey, ev.CreatedAt, ev.Kind, tags, ev.Content},
	)
	return
}

// GetIdBytes computes the canonical hash of the event.
func (ev *E) GetIdBytes() (id []byte) { return Hash(ev.Canonical()) }

// GetIdHex computes the canonical hash of the event as lowercase hex.
func (ev *E) GetIdHex() (id string) {
	return hex.EncodeToString(ev.GetIdBytes())
}

// CheckId returns whether the event Id matches the hash of its canonical
// serialization.
func (ev *E) CheckId() (ok bool) { return ev.Id == ev.GetIdHex() }
