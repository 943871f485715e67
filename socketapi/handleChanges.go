package socketapi

import (
	"context"
	"encoding/json"
	"fmt"

	log "github.com/sirupsen/logrus"

	"seqrelay.dev/envelopes/changesenvelope"
	"seqrelay.dev/interfaces/store"
)

// clampLimit applies the relay's limit cap; an absent limit gets the cap.
func (a *A) clampLimit(lim *int) int {
	max := a.MaxLimit()
	if lim == nil || *lim > max {
		return max
	}
	return *lim
}

// HandleChanges serves the one-shot ["CHANGES", options] scan of the change
// feed.
func (a *A) HandleChanges(
	c context.Context, lis *Listener, rest []json.RawMessage,
) (notice string) {
	if len(rest) != 1 {
		return fmt.Sprintf(
			"CHANGES requires exactly one options object, got %d elements",
			len(rest),
		)
	}
	opts, err := changesenvelope.DecodeOptions(rest[0])
	if err != nil {
		return err.Error()
	}
	changes, lastSeq, err := a.Storage().QueryChanges(
		c, &store.ChangesFilter{
			Since:   opts.Since,
			Limit:   a.clampLimit(opts.Limit),
			Kinds:   opts.Kinds,
			Authors: opts.Authors,
		},
	)
	if err != nil {
		log.WithError(err).WithField("remote", lis.Remote()).
			Error("failed to scan changes")
		return "failed to scan changes"
	}
	if err = changesenvelope.NewResult(changes, lastSeq).Write(lis); err != nil {
		log.WithError(err).WithField("remote", lis.Remote()).
			Debug("failed to write CHANGES")
	}
	return
}

// HandleLastSeq serves ["LASTSEQ"] with the relay's current cursor.
func (a *A) HandleLastSeq(
	c context.Context, lis *Listener, rest []json.RawMessage,
) (notice string) {
	if len(rest) != 0 {
		return "LASTSEQ takes no parameters"
	}
	seq, err := a.Storage().LastSeq(c)
	if err != nil {
		log.WithError(err).WithField("remote", lis.Remote()).
			Error("failed to read last seq")
		return "failed to read last seq"
	}
	if err = (&changesenvelope.LastSeq{Seq: seq}).Write(lis); err != nil {
		log.WithError(err).WithField("remote", lis.Remote()).
			Debug("failed to write LASTSEQ")
	}
	return
}
