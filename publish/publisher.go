// Package publish keeps track of the subscriptions of every connection and
// fans newly accepted events out to the ones whose filters match.
package publish

import (
	"sync"

	"github.com/puzpuzpuz/xsync/v3"
	log "github.com/sirupsen/logrus"

	"seqrelay.dev/envelopes/eventenvelope"
	"seqrelay.dev/event"
	"seqrelay.dev/filter"
	"seqrelay.dev/interfaces/listener"
	"seqrelay.dev/interfaces/store"
)

// S is the connection registry. Broadcast enumerates connections without a
// global lock; per-connection state has its own small mutex.
type S struct {
	conns *xsync.MapOf[listener.I, *Conn]
}

// Conn is the per-connection subscription state: regular filter subscriptions
// and change-feed subscriptions, both keyed by subscription id.
type Conn struct {
	mx      sync.Mutex
	subs    map[string]filter.S
	changes map[string]*ChangesSub
}

// NewPublisher creates an empty registry.
func NewPublisher() (p *S) {
	return &S{conns: xsync.NewMapOf[listener.I, *Conn]()}
}

func (p *S) conn(lis listener.I) (c *Conn) {
	c, _ = p.conns.LoadOrCompute(
		lis, func() *Conn {
			return &Conn{
				subs:    make(map[string]filter.S),
				changes: make(map[string]*ChangesSub),
			}
		},
	)
	return
}

// Subscribe registers a regular subscription, replacing any prior
// subscription with the same id on this connection.
func (p *S) Subscribe(lis listener.I, id string, ff filter.S) {
	c := p.conn(lis)
	c.mx.Lock()
	c.subs[id] = ff
	c.mx.Unlock()
	log.WithFields(log.Fields{"remote": lis.Remote(), "sub": id}).
		Debug("subscription registered")
}

// Unsubscribe removes a regular subscription; silent if absent.
func (p *S) Unsubscribe(lis listener.I, id string) {
	if c, ok := p.conns.Load(lis); ok {
		c.mx.Lock()
		delete(c.subs, id)
		c.mx.Unlock()
	}
}

// SubscribeChanges registers a change-feed subscription in the replaying
// state, replacing any prior one with the same id on this connection. Live
// events arriving before GoLive are buffered on the subscription.
func (p *S) SubscribeChanges(
	lis listener.I, id string, kinds []int, authors []string,
) (cs *ChangesSub) {
	cs = &ChangesSub{lis: lis, id: id, kinds: kinds, authors: authors}
	c := p.conn(lis)
	c.mx.Lock()
	c.changes[id] = cs
	c.mx.Unlock()
	log.WithFields(log.Fields{"remote": lis.Remote(), "sub": id}).
		Debug("change-feed subscription registered")
	return
}

// HasChangesSub reports whether a change-feed subscription with the given id
// is registered on the connection.
func (p *S) HasChangesSub(lis listener.I, id string) (ok bool) {
	if c, have := p.conns.Load(lis); have {
		c.mx.Lock()
		_, ok = c.changes[id]
		c.mx.Unlock()
	}
	return
}

// UnsubscribeChanges removes a change-feed subscription; silent if absent.
func (p *S) UnsubscribeChanges(lis listener.I, id string) {
	if c, ok := p.conns.Load(lis); ok {
		c.mx.Lock()
		delete(c.changes, id)
		c.mx.Unlock()
	}
}

// RemoveListener drops a connection and all its subscriptions.
func (p *S) RemoveListener(lis listener.I) {
	p.conns.Delete(lis)
}

// Deliver fans an accepted event out to every connection with a matching
// subscription. seq is 0 for ephemeral events, which are broadcast to regular
// subscriptions but never to change-feed subscriptions.
//
// A connection receives at most one EVENT frame per event across its regular
// subscriptions: after the first matching subscription the rest are skipped.
// Change-feed subscriptions deliver independently of that cap and of each
// other.
func (p *S) Deliver(seq uint64, ev *event.E) {
	p.conns.Range(
		func(lis listener.I, c *Conn) bool {
			var matched string
			var haveMatch bool
			var feeds []*ChangesSub
			c.mx.Lock()
			for id, ff := range c.subs {
				if ff.Match(ev) {
					matched = id
					haveMatch = true
					break
				}
			}
			if seq > 0 {
				for _, cs := range c.changes {
					if cs.accepts(ev) {
						feeds = append(feeds, cs)
					}
				}
			}
			c.mx.Unlock()
			if haveMatch {
				res := eventenvelope.NewResultWith(matched, ev)
				if err := res.Write(lis); err != nil {
					log.WithError(err).WithField("remote", lis.Remote()).
						Debug("failed to deliver event")
				}
			}
			for _, cs := range feeds {
				cs.deliver(store.Change{Seq: seq, Event: ev})
			}
			return true
		},
	)
}
