// Package event provides the codec for signed events: the JSON wire format,
// the canonical form that is hashed to generate the Id, and BIP-340 signature
// creation and verification over that hash.
package event

import (
	"bytes"
	"encoding/json"

	"github.com/minio/sha256-simd"
)

// E is the primary datatype of the relay. The field layout matches the JSON
// wire format; Id, Pubkey and Sig are lowercase hex strings.
type E struct {

	// Id is the SHA256 hash of the canonical serialization of the event.
	Id string `json:"id"`

	// Pubkey is the BIP-340 x-only public key of the event creator.
	Pubkey string `json:"pubkey"`

	// CreatedAt is the UNIX timestamp of the event according to the event
	// creator (never trust a timestamp!).
	CreatedAt int64 `json:"created_at"`

	// Kind is the protocol code for the type of event, which selects its
	// retention class. See kind.Classify.
	Kind int `json:"kind"`

	// Tags are a list of tags, each a list of strings; the first element is
	// the tag name, the second its primary value.
	Tags [][]string `json:"tags"`

	// Content is an arbitrary string.
	Content string `json:"content"`

	// Sig is the signature on the Id hash that validates as coming from the
	// Pubkey.
	Sig string `json:"sig"`
}

// S is an array of event.E that sorts in reverse chronological order, with the
// Id string as ascending tiebreak.
type S []*E

// Len returns the length of the event.S.
func (ev S) Len() int { return len(ev) }

// Less returns whether the first is newer than the second (larger unix
// timestamp), breaking ties by ascending Id.
func (ev S) Less(i, j int) bool {
	if ev[i].CreatedAt != ev[j].CreatedAt {
		return ev[i].CreatedAt > ev[j].CreatedAt
	}
	return ev[i].Id < ev[j].Id
}

// Swap two indexes of the event.S with each other.
func (ev S) Swap(i, j int) { ev[i], ev[j] = ev[j], ev[i] }

// New makes a new event.E.
func New() (ev *E) { return &E{Tags: [][]string{}} }

// Serialize renders an event.E into minified JSON without HTML escaping.
func (ev *E) Serialize() (b []byte) {
	b, _ = MarshalCompact(ev)
	return
}

// Tag returns the first tag whose name matches, or nil.
func (ev *E) Tag(name string) (t []string) {
	for _, tag := range ev.Tags {
		if len(tag) > 0 && tag[0] == name {
			return tag
		}
	}
	return
}

// TagValue returns the value (second element) of the first tag whose name
// matches, and whether such a tag with a value exists.
func (ev *E) TagValue(name string) (v string, ok bool) {
	for _, tag := range ev.Tags {
		if len(tag) > 1 && tag[0] == name {
			return tag[1], true
		}
	}
	return
}

// DTag returns the d tag value of the event, or the empty string if it has
// none; addressable and syncable events are keyed by it.
func (ev *E) DTag() (d string) {
	d, _ = ev.TagValue("d")
	return
}

// Hash returns the SHA256 of the input as a slice.
func Hash(in []byte) (out []byte) {
	h := sha256.Sum256(in)
	return h[:]
}

// MarshalCompact encodes a value as minified JSON with HTML escaping disabled,
// so content strings round-trip byte for byte.
func MarshalCompact(v any) (b []byte, err error) {
	buf := new(bytes.Buffer)
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err = enc.Encode(v); err != nil {
		return
	}
	b = bytes.TrimRight(buf.Bytes(), "\n")
	return
}
