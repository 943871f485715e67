// Package version carries the version string and description reported in the
// relay information document.
package version

var (
	// V is the current version of the relay.
	V = "v0.1.0"

	// Description is a short blurb about what this relay is.
	Description = "signed-event relay with a sequence-ordered change feed"

	// URL is the canonical location of the relay source.
	URL = "https://seqrelay.dev"
)
