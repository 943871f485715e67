package server

import (
	"context"
	"strings"

	log "github.com/sirupsen/logrus"

	"seqrelay.dev/event"
	"seqrelay.dev/kind"
	"seqrelay.dev/reason"
)

// AddEvent runs a validated event through the retention pipeline and, when
// the event is newly persisted (or ephemeral), fans it out to matching
// subscriptions. Duplicate and superseded events are acknowledged but not
// re-broadcast.
func (s *S) AddEvent(c context.Context, ev *event.E, remote string) (
	accepted bool, message string,
) {
	class := kind.Classify(ev.Kind)
	if class == kind.Invalid {
		message = reason.Invalid.F("unsupported kind %d", ev.Kind)
		return
	}
	if class == kind.Ephemeral {
		// broadcast only, never persisted, carries no seq
		accepted = true
		s.publisher.Deliver(0, ev)
		return
	}
	// two ingests must fan out in the order their seqs were assigned, so the
	// commit and the delivery happen under one lock
	s.dispatchMx.Lock()
	defer s.dispatchMx.Unlock()
	seq, stored, msg, err := s.store.AcceptEvent(c, ev)
	if err != nil {
		if strings.HasPrefix(err.Error(), string(reason.Invalid)+":") {
			message = err.Error()
			return
		}
		log.WithError(err).WithFields(log.Fields{
			"remote": remote, "id": ev.Id,
		}).Error("failed to store event")
		message = reason.Error.F("failed to store event")
		return
	}
	accepted = true
	message = msg
	if stored {
		log.WithFields(log.Fields{
			"id": ev.Id, "kind": ev.Kind, "seq": seq, "class": class.String(),
		}).Debug("event stored")
		s.publisher.Deliver(seq, ev)
	}
	return
}
