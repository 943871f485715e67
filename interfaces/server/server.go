// Package server defines the interface the socket API uses to reach the
// relay: storage, the publisher, and the ingest pipeline.
package server

import (
	"context"
	"net/http"

	"seqrelay.dev/event"
	"seqrelay.dev/interfaces/store"
	"seqrelay.dev/publish"
)

// I is the server as seen by a connection handler.
type I interface {
	// Context returns the root context of the relay process.
	Context() context.Context

	// Storage returns the event store.
	Storage() store.I

	// Publisher returns the subscription registry and broadcaster.
	Publisher() *publish.S

	// MaxLimit is the cap applied to filter and change-feed limits.
	MaxLimit() int

	// AddEvent runs a validated event through the ingest pipeline and
	// broadcasts it on success. message carries the duplicate or rejection
	// reason; it is empty on a clean accept.
	AddEvent(c context.Context, ev *event.E, remote string) (
		accepted bool, message string,
	)

	// HandleRelayInfo serves the capability document.
	HandleRelayInfo(w http.ResponseWriter, r *http.Request)
}
