// Package store defines the interface of the event store and the types of the
// change feed it exposes.
package store

import (
	"context"
	"io"

	"seqrelay.dev/event"
	"seqrelay.dev/filter"
)

// Change is one entry of the change feed: a persisted event and the sequence
// number it was assigned at insert.
type Change struct {
	Seq   uint64   `json:"seq"`
	Event *event.E `json:"event"`
}

// ChangesFilter selects a slice of the change feed. Since is the last
// sequence the caller has observed; Kinds and Authors restrict which events
// are returned but never which sequences are scanned.
type ChangesFilter struct {
	Since uint64
	// Until bounds the scan inclusively; zero means unbounded. The
	// continuous feed uses it to fence replay against live delivery.
	Until   uint64
	Limit   int
	Kinds   []int
	Authors []string
}

// Accepts reports whether an event passes the Kinds/Authors restriction.
func (cf *ChangesFilter) Accepts(ev *event.E) bool {
	if len(cf.Kinds) > 0 {
		ok := false
		for _, k := range cf.Kinds {
			if k == ev.Kind {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	if len(cf.Authors) > 0 {
		ok := false
		for _, a := range cf.Authors {
			if a == ev.Pubkey {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	return true
}

// I is the interface of the event store.
type I interface {
	// AcceptEvent runs the full retention pipeline for a validated,
	// non-ephemeral event in one transaction: duplicate check, purge,
	// replaceable/addressable supersession, insert with the next seq.
	// stored is false when the event was accepted without being newly
	// persisted; message then carries the duplicate reason.
	AcceptEvent(c context.Context, ev *event.E) (
		seq uint64, stored bool, message string, err error,
	)

	// SaveEvent inserts an event unconditionally, assigning the next seq and
	// materializing its tag index entries.
	SaveEvent(c context.Context, ev *event.E) (seq uint64, err error)

	// GetEventById returns the stored event with the given id, or nil.
	GetEventById(c context.Context, id string) (ev *event.E, err error)

	// DeleteEvent removes an event and cascades its tag index entries.
	DeleteEvent(c context.Context, id string) (err error)

	// QueryEvents returns the union of events matching any filter, sorted by
	// (created_at desc, id asc).
	QueryEvents(c context.Context, ff filter.S) (evs event.S, err error)

	// QueryChanges returns up to Limit events with seq > Since in ascending
	// seq order, and the cursor the caller should resume from.
	QueryChanges(c context.Context, cf *ChangesFilter) (
		changes []Change, lastSeq uint64, err error,
	)

	// LastSeq returns the highest assigned seq, or 0 if none.
	LastSeq(c context.Context) (seq uint64, err error)

	// PurgeDocument deletes every event of a syncable document.
	PurgeDocument(c context.Context, pubkey string, k int, doc string) (
		deleted int, err error,
	)

	// Export writes all stored events to w as JSONL in seq order.
	Export(c context.Context, w io.Writer) (err error)

	// Import reads JSONL events from r and runs them through AcceptEvent.
	Import(c context.Context, r io.Reader) (err error)

	// Path returns the location of the database file.
	Path() string

	// Close releases the store.
	Close() (err error)
}
