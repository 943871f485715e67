package socketapi

import (
	"context"
	"encoding/json"
	"fmt"

	log "github.com/sirupsen/logrus"

	"seqrelay.dev/envelopes/changesenvelope"
	"seqrelay.dev/envelopes/closedenvelope"
	"seqrelay.dev/interfaces/listener"
	"seqrelay.dev/interfaces/store"
	"seqrelay.dev/reason"
)

// HandleChangesSub registers a continuous change-feed subscription, replays
// persisted changes after the client's cursor, emits CHANGES_EOSE, and then
// switches the subscription to live delivery.
//
// The subscription is registered before the last-seq snapshot is taken and
// the replay is bounded by that snapshot, so an event committing during
// replay lands either in the replay (seq <= snapshot) or in the live buffer
// (seq > snapshot), never both and never neither.
func (a *A) HandleChangesSub(
	c context.Context, lis listener.I, rest []json.RawMessage,
) (notice string) {
	if len(rest) != 2 {
		return fmt.Sprintf(
			"CHANGES_SUB requires a subscription id and an options object, got %d elements",
			len(rest),
		)
	}
	var sub string
	if err := json.Unmarshal(rest[0], &sub); err != nil {
		return fmt.Sprintf("subscription id is not a string: %s", err)
	}
	closed := func(why string) {
		if err := closedenvelope.NewFrom(sub, why).Write(lis); err != nil {
			log.WithError(err).WithField("remote", lis.Remote()).
				Debug("failed to write CLOSED")
		}
	}
	if !subIdValid(sub) {
		closed(reason.Invalid.F("subscription id must be 1..64 characters"))
		return
	}
	opts, err := changesenvelope.DecodeOptions(rest[1])
	if err != nil {
		closed(reason.Invalid.F("%s", err))
		return
	}
	cs := a.Publisher().SubscribeChanges(lis, sub, opts.Kinds, opts.Authors)
	snapshot, err := a.Storage().LastSeq(c)
	if err != nil {
		a.Publisher().UnsubscribeChanges(lis, sub)
		closed(reason.Error.F("failed to read last seq"))
		return
	}
	changes, _, err := a.Storage().QueryChanges(
		c, &store.ChangesFilter{
			Since:   opts.Since,
			Until:   snapshot,
			Kinds:   opts.Kinds,
			Authors: opts.Authors,
		},
	)
	if err != nil {
		a.Publisher().UnsubscribeChanges(lis, sub)
		closed(reason.Error.F("failed to scan changes"))
		return
	}
	for _, ch := range changes {
		env := &changesenvelope.Event{Sub: sub, Change: ch}
		if err = env.Write(lis); err != nil {
			// a subscription that never goes live would buffer forever
			a.Publisher().UnsubscribeChanges(lis, sub)
			return
		}
	}
	eose := &changesenvelope.Eose{Sub: sub, LastSeq: snapshot}
	if err = eose.Write(lis); err != nil {
		log.WithError(err).WithField("remote", lis.Remote()).
			Debug("failed to write CHANGES_EOSE")
		a.Publisher().UnsubscribeChanges(lis, sub)
		return
	}
	cs.GoLive(snapshot)
	return
}

// HandleChangesUnsub removes a change-feed subscription; silent if absent.
func (a *A) HandleChangesUnsub(
	lis *Listener, rest []json.RawMessage,
) (notice string) {
	if len(rest) != 1 {
		return fmt.Sprintf(
			"CHANGES_UNSUB requires exactly one element, got %d", len(rest),
		)
	}
	var sub string
	if err := json.Unmarshal(rest[0], &sub); err != nil {
		return fmt.Sprintf("subscription id is not a string: %s", err)
	}
	a.Publisher().UnsubscribeChanges(lis, sub)
	return
}
