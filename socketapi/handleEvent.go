package socketapi

import (
	"context"
	"encoding/json"
	"time"

	log "github.com/sirupsen/logrus"

	"seqrelay.dev/envelopes/eventenvelope"
	"seqrelay.dev/envelopes/okenvelope"
)

// HandleEvent processes an EVENT submission: validate, ingest, acknowledge.
// Validation failures are acknowledged with OK false; only a malformed frame
// shape produces a notice.
func (a *A) HandleEvent(
	c context.Context, lis *Listener, rest []json.RawMessage,
) (notice string) {
	env := eventenvelope.NewSubmission()
	if err := env.Unmarshal(rest); err != nil {
		return err.Error()
	}
	ev := env.E
	if err := ev.CheckSigned(time.Now().Unix()); err != nil {
		if werr := okenvelope.NewFrom(
			ev.Id, false, err.Error(),
		).Write(lis); werr != nil {
			log.WithError(werr).WithField("remote", lis.Remote()).
				Debug("failed to write OK")
		}
		return
	}
	accepted, message := a.AddEvent(c, ev, lis.Remote())
	log.WithFields(log.Fields{
		"remote": lis.Remote(), "id": ev.Id, "accepted": accepted,
	}).Debug("event acknowledged")
	if err := okenvelope.NewFrom(
		ev.Id, accepted, message,
	).Write(lis); err != nil {
		log.WithError(err).WithField("remote", lis.Remote()).
			Debug("failed to write OK")
	}
	return
}
