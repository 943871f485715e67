package socketapi

import (
	"context"
	"encoding/json"

	log "github.com/sirupsen/logrus"

	"seqrelay.dev/envelopes/closedenvelope"
	"seqrelay.dev/envelopes/eoseenvelope"
	"seqrelay.dev/envelopes/eventenvelope"
	"seqrelay.dev/envelopes/reqenvelope"
	"seqrelay.dev/reason"
)

// subIdValid checks the 1..64 character bound on subscription ids.
func subIdValid(id string) bool { return len(id) >= 1 && len(id) <= 64 }

// HandleReq registers a subscription, replays matching stored events, and
// closes the replay with EOSE. The subscription is registered before the
// query so no event ingested after the replay snapshot is missed.
func (a *A) HandleReq(
	c context.Context, lis *Listener, rest []json.RawMessage,
) (notice string) {
	env := reqenvelope.New()
	if err := env.Unmarshal(rest); err != nil {
		return err.Error()
	}
	closed := func(why string) {
		if err := closedenvelope.NewFrom(env.Sub, why).Write(lis); err != nil {
			log.WithError(err).WithField("remote", lis.Remote()).
				Debug("failed to write CLOSED")
		}
	}
	if !subIdValid(env.Sub) {
		closed(reason.Invalid.F("subscription id must be 1..64 characters"))
		return
	}
	for _, f := range env.Filters {
		if err := f.Validate(); err != nil {
			closed(err.Error())
			return
		}
	}
	max := a.MaxLimit()
	for _, f := range env.Filters {
		if f.Limit == nil || *f.Limit > max {
			lim := max
			f.Limit = &lim
		}
	}
	a.Publisher().Subscribe(lis, env.Sub, env.Filters)
	evs, err := a.Storage().QueryEvents(c, env.Filters)
	if err != nil {
		log.WithError(err).WithField("remote", lis.Remote()).
			Error("failed to query events")
		a.Publisher().Unsubscribe(lis, env.Sub)
		closed(reason.Error.F("failed to query events"))
		return
	}
	for _, ev := range evs {
		if err = eventenvelope.NewResultWith(env.Sub, ev).Write(lis); err != nil {
			return
		}
	}
	if err = eoseenvelope.NewFrom(env.Sub).Write(lis); err != nil {
		log.WithError(err).WithField("remote", lis.Remote()).
			Debug("failed to write EOSE")
	}
	return
}
