// Package relayinfo defines the capability document served to clients that
// ask for it on the initial request instead of upgrading to a websocket.
package relayinfo

// ContentType is the Accept header value that selects the capability
// document.
const ContentType = "application/nostr+json"

// Commands lists the command names the relay understands.
var Commands = []string{
	"EVENT", "REQ", "CLOSE", "CHANGES", "LASTSEQ", "CHANGES_SUB",
	"CHANGES_UNSUB",
}

// T is the relay information document.
type T struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Software    string   `json:"software"`
	Version     string   `json:"version"`
	Commands    []string `json:"commands"`
	Limitation  Limits   `json:"limitation"`
}

// Limits describes the relay's enforced limits.
type Limits struct {
	MaxLimit       int `json:"max_limit,omitempty"`
	MaxSubidLength int `json:"max_subid_length,omitempty"`
	CreatedAtUpper int `json:"created_at_upper_offset,omitempty"`
}
