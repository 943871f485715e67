package publish

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seqrelay.dev/event"
	"seqrelay.dev/filter"
	"seqrelay.dev/interfaces/store"
)

// fakeListener records every frame written to it.
type fakeListener struct {
	frames []string
}

func (f *fakeListener) Write(b []byte) (int, error) {
	f.frames = append(f.frames, string(b))
	return len(b), nil
}

func (f *fakeListener) Remote() string { return "test" }
func (f *fakeListener) Close() error   { return nil }

func TestDeliverMatchesFilter(t *testing.T) {
	p := NewPublisher()
	lis := &fakeListener{}
	p.Subscribe(lis, "s1", filter.S{{Kinds: []int{1}}})
	ev := &event.E{Id: "aa", Kind: 1, Tags: [][]string{}}

	p.Deliver(1, ev)
	require.Len(t, lis.frames, 1)
	assert.True(t, strings.HasPrefix(lis.frames[0], `["EVENT","s1",`))

	p.Deliver(2, &event.E{Id: "bb", Kind: 7, Tags: [][]string{}})
	assert.Len(t, lis.frames, 1, "non-matching event is not delivered")
}

func TestDeliverAtMostOncePerConnection(t *testing.T) {
	p := NewPublisher()
	lis := &fakeListener{}
	// both subscriptions match, but the connection gets a single frame
	p.Subscribe(lis, "s1", filter.S{{Kinds: []int{1}}})
	p.Subscribe(lis, "s2", filter.S{{}})
	p.Deliver(1, &event.E{Id: "aa", Kind: 1, Tags: [][]string{}})
	assert.Len(t, lis.frames, 1)
}

func TestDeliverFansOutToConnections(t *testing.T) {
	p := NewPublisher()
	a := &fakeListener{}
	b := &fakeListener{}
	p.Subscribe(a, "s", filter.S{{}})
	p.Subscribe(b, "s", filter.S{{}})
	p.Deliver(1, &event.E{Id: "aa", Kind: 1, Tags: [][]string{}})
	assert.Len(t, a.frames, 1)
	assert.Len(t, b.frames, 1)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	p := NewPublisher()
	lis := &fakeListener{}
	p.Subscribe(lis, "s1", filter.S{{}})
	p.Unsubscribe(lis, "s1")
	p.Deliver(1, &event.E{Id: "aa", Kind: 1, Tags: [][]string{}})
	assert.Empty(t, lis.frames)
}

func TestSubscribeReplacesSameId(t *testing.T) {
	p := NewPublisher()
	lis := &fakeListener{}
	p.Subscribe(lis, "s1", filter.S{{Kinds: []int{1}}})
	p.Subscribe(lis, "s1", filter.S{{Kinds: []int{7}}})
	p.Deliver(1, &event.E{Id: "aa", Kind: 1, Tags: [][]string{}})
	assert.Empty(t, lis.frames)
	p.Deliver(2, &event.E{Id: "bb", Kind: 7, Tags: [][]string{}})
	assert.Len(t, lis.frames, 1)
}

func TestRemoveListenerDropsAllSubs(t *testing.T) {
	p := NewPublisher()
	lis := &fakeListener{}
	p.Subscribe(lis, "s1", filter.S{{}})
	p.SubscribeChanges(lis, "c1", nil, nil)
	p.RemoveListener(lis)
	p.Deliver(1, &event.E{Id: "aa", Kind: 1, Tags: [][]string{}})
	assert.Empty(t, lis.frames)
}

func TestChangesSubBuffersUntilLive(t *testing.T) {
	p := NewPublisher()
	lis := &fakeListener{}
	cs := p.SubscribeChanges(lis, "c1", nil, nil)
	assert.Equal(t, "c1", cs.Id())

	// deliveries during replay are buffered, not written
	p.Deliver(5, &event.E{Id: "aa", Kind: 1, Tags: [][]string{}})
	p.Deliver(6, &event.E{Id: "bb", Kind: 1, Tags: [][]string{}})
	assert.Empty(t, lis.frames)

	// the replay covered seq 5, so GoLive flushes only seq 6
	cs.GoLive(5)
	require.Len(t, lis.frames, 1)
	assert.Contains(t, lis.frames[0], `"seq":6`)

	// live from here on
	p.Deliver(7, &event.E{Id: "cc", Kind: 1, Tags: [][]string{}})
	require.Len(t, lis.frames, 2)
	assert.Contains(t, lis.frames[1], `"seq":7`)
}

func TestChangesSubLiveDropsReplayedSeqs(t *testing.T) {
	p := NewPublisher()
	lis := &fakeListener{}
	cs := p.SubscribeChanges(lis, "c1", nil, nil)
	// the replay covered everything up to seq 7; a delivery for seq 7 that
	// lands after the handoff must not produce a second frame
	cs.GoLive(7)
	p.Deliver(7, &event.E{Id: "aa", Kind: 1, Tags: [][]string{}})
	assert.Empty(t, lis.frames)
	p.Deliver(8, &event.E{Id: "bb", Kind: 1, Tags: [][]string{}})
	require.Len(t, lis.frames, 1)
	assert.Contains(t, lis.frames[0], `"seq":8`)
}

func TestChangesSubKindAuthorRestriction(t *testing.T) {
	p := NewPublisher()
	lis := &fakeListener{}
	cs := p.SubscribeChanges(lis, "c1", []int{7}, []string{"pub1"})
	cs.GoLive(0)
	p.Deliver(1, &event.E{Id: "aa", Kind: 7, Pubkey: "pub1", Tags: [][]string{}})
	p.Deliver(2, &event.E{Id: "bb", Kind: 1, Pubkey: "pub1", Tags: [][]string{}})
	p.Deliver(3, &event.E{Id: "cc", Kind: 7, Pubkey: "pub2", Tags: [][]string{}})
	require.Len(t, lis.frames, 1)
	assert.Contains(t, lis.frames[0], `"seq":1`)
}

func TestEphemeralNeverReachesChangesFeed(t *testing.T) {
	p := NewPublisher()
	lis := &fakeListener{}
	cs := p.SubscribeChanges(lis, "c1", nil, nil)
	cs.GoLive(0)
	p.Subscribe(lis, "s1", filter.S{{}})
	// ephemeral events deliver with seq 0
	p.Deliver(0, &event.E{Id: "aa", Kind: 20001, Tags: [][]string{}})
	require.Len(t, lis.frames, 1)
	assert.True(t, strings.HasPrefix(lis.frames[0], `["EVENT",`))
}

func TestRegularAndChangesDeliverIndependently(t *testing.T) {
	p := NewPublisher()
	lis := &fakeListener{}
	p.Subscribe(lis, "s1", filter.S{{}})
	cs := p.SubscribeChanges(lis, "c1", nil, nil)
	cs.GoLive(0)
	p.Deliver(1, &event.E{Id: "aa", Kind: 1, Tags: [][]string{}})
	require.Len(t, lis.frames, 2)
	assert.True(t, strings.HasPrefix(lis.frames[0], `["EVENT",`))
	assert.True(t, strings.HasPrefix(lis.frames[1], `["CHANGES_EVENT",`))
}

func TestChangesSubFlushPreservesOrder(t *testing.T) {
	p := NewPublisher()
	lis := &fakeListener{}
	cs := p.SubscribeChanges(lis, "c1", nil, nil)
	for seq := uint64(3); seq <= 6; seq++ {
		cs.deliver(store.Change{
			Seq:   seq,
			Event: &event.E{Id: "x", Kind: 1, Tags: [][]string{}},
		})
	}
	cs.GoLive(4)
	require.Len(t, lis.frames, 2)
	assert.Contains(t, lis.frames[0], `"seq":5`)
	assert.Contains(t, lis.frames[1], `"seq":6`)
}
