package publish

import (
	"sync"

	log "github.com/sirupsen/logrus"

	"seqrelay.dev/envelopes/changesenvelope"
	"seqrelay.dev/event"
	"seqrelay.dev/interfaces/listener"
	"seqrelay.dev/interfaces/store"
)

// ChangesSub is one change-feed subscription. Between registration and
// GoLive it buffers deliveries so the replay phase can finish and emit its
// CHANGES_EOSE before any live frame goes out; GoLive then flushes the
// buffer, dropping anything the replay already covered.
type ChangesSub struct {
	lis     listener.I
	id      string
	kinds   []int
	authors []string

	mx      sync.Mutex
	live    bool
	fence   uint64
	pending []store.Change
}

// Id returns the subscription id.
func (cs *ChangesSub) Id() string { return cs.id }

// accepts reports whether an event passes the kinds/authors restriction of
// the subscription. since never applies to live events.
func (cs *ChangesSub) accepts(ev *event.E) bool {
	cf := store.ChangesFilter{Kinds: cs.kinds, Authors: cs.authors}
	return cf.Accepts(ev)
}

// deliver hands a change to the subscription: buffered while replaying,
// written as a CHANGES_EVENT frame once live. Writes happen under mx so the
// flush in GoLive and live deliveries cannot reorder. Changes at or below
// the fence were covered by the replay and are dropped, wherever the
// delivery arrives relative to GoLive.
func (cs *ChangesSub) deliver(ch store.Change) {
	cs.mx.Lock()
	defer cs.mx.Unlock()
	if !cs.live {
		cs.pending = append(cs.pending, ch)
		return
	}
	if ch.Seq <= cs.fence {
		return
	}
	cs.write(ch)
}

// GoLive ends the replay phase. fence is the seq snapshot the replay was
// bounded by; buffered deliveries at or below it were already replayed and
// are dropped, the rest are flushed in order before the subscription switches
// to direct delivery.
func (cs *ChangesSub) GoLive(fence uint64) {
	cs.mx.Lock()
	defer cs.mx.Unlock()
	cs.fence = fence
	for _, ch := range cs.pending {
		if ch.Seq > fence {
			cs.write(ch)
		}
	}
	cs.pending = nil
	cs.live = true
}

func (cs *ChangesSub) write(ch store.Change) {
	env := &changesenvelope.Event{Sub: cs.id, Change: ch}
	if err := env.Write(cs.lis); err != nil {
		log.WithError(err).WithField("remote", cs.lis.Remote()).
			Debug("failed to deliver change")
	}
}
