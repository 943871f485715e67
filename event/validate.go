package event

import (
	"seqrelay.dev/reason"
)

// MaxFutureSeconds is how far ahead of the relay clock an event timestamp may
// be before it is rejected.
const MaxFutureSeconds = 900

// IsLowerHex reports whether s is entirely lowercase hex characters.
func IsLowerHex(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

// Validate performs the structural checks on an event: hex field lengths and
// case, kind range, and tag shape. It does not verify the Id hash or the
// signature and performs no I/O.
func (ev *E) Validate() (err error) {
	if len(ev.Id) != 64 || !IsLowerHex(ev.Id) {
		return reason.Invalid.Err("id must be 64 lowercase hex characters")
	}
	if len(ev.Pubkey) != 64 || !IsLowerHex(ev.Pubkey) {
		return reason.Invalid.Err("pubkey must be 64 lowercase hex characters")
	}
	if len(ev.Sig) != 128 || !IsLowerHex(ev.Sig) {
		return reason.Invalid.Err("sig must be 128 lowercase hex characters")
	}
	if ev.Kind < 0 || ev.Kind > 65535 {
		return reason.Invalid.Err("kind %d out of range", ev.Kind)
	}
	if ev.Tags == nil {
		return reason.Invalid.Err("tags must be an array")
	}
	for _, t := range ev.Tags {
		if len(t) < 1 {
			return reason.Invalid.Err("tags may not be empty")
		}
	}
	return
}

// CheckSigned runs the full validation sequence: structure, Id hash, and
// signature. now is the relay clock, used for the future-timestamp bound.
func (ev *E) CheckSigned(now int64) (err error) {
	if err = ev.Validate(); err != nil {
		return
	}
	if !ev.CheckId() {
		return reason.Invalid.Err("event id is computed incorrectly")
	}
	var ok bool
	if ok, err = ev.Verify(); err != nil {
		return reason.Invalid.Err("failed to verify signature: %s", err)
	} else if !ok {
		return reason.Invalid.Err("signature is invalid")
	}
	if ev.CreatedAt > now+MaxFutureSeconds {
		return reason.Invalid.Err(
			"event created_at %d is more than %d seconds in the future",
			ev.CreatedAt, MaxFutureSeconds,
		)
	}
	return
}
