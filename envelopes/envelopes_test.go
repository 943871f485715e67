package envelopes_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seqrelay.dev/envelopes"
	"seqrelay.dev/envelopes/changesenvelope"
	"seqrelay.dev/envelopes/eventenvelope"
	"seqrelay.dev/envelopes/okenvelope"
	"seqrelay.dev/event"
	"seqrelay.dev/interfaces/store"
)

func TestIdentify(t *testing.T) {
	label, rest, err := envelopes.Identify(
		[]byte(`["EVENT",{"kind":1},"extra"]`),
	)
	require.NoError(t, err)
	assert.Equal(t, "EVENT", label)
	assert.Len(t, rest, 2)

	_, _, err = envelopes.Identify([]byte(`{"not":"an array"}`))
	assert.Error(t, err)

	_, _, err = envelopes.Identify([]byte(`[]`))
	assert.Error(t, err)

	_, _, err = envelopes.Identify([]byte(`[1,2]`))
	assert.Error(t, err)
}

func TestOkMarshal(t *testing.T) {
	b, err := okenvelope.NewFrom("abcd", false, "invalid: bad signature").Marshal()
	require.NoError(t, err)
	assert.Equal(t, `["OK","abcd",false,"invalid: bad signature"]`, string(b))

	b, err = okenvelope.NewFrom("abcd", true).Marshal()
	require.NoError(t, err)
	assert.Equal(t, `["OK","abcd",true,""]`, string(b))
}

func TestEventSubmissionUnmarshal(t *testing.T) {
	_, rest, err := envelopes.Identify([]byte(`["EVENT",{"kind":1,"content":"hi"}]`))
	require.NoError(t, err)
	sub := eventenvelope.NewSubmission()
	require.NoError(t, sub.Unmarshal(rest))
	assert.Equal(t, 1, sub.E.Kind)
	assert.Equal(t, "hi", sub.E.Content)

	assert.Error(t, sub.Unmarshal(nil))
	assert.Error(t, sub.Unmarshal(rest[:0]))
}

func TestEventResultMarshal(t *testing.T) {
	ev := &event.E{Kind: 1, Tags: [][]string{}, Content: "<raw>"}
	b, err := eventenvelope.NewResultWith("sub1", ev).Marshal()
	require.NoError(t, err)
	assert.Contains(t, string(b), `["EVENT","sub1",{`)
	// HTML characters must not be escaped on the wire
	assert.Contains(t, string(b), `"<raw>"`)
}

func TestChangesResultMarshal(t *testing.T) {
	r := changesenvelope.NewResult(nil, 7)
	b, err := r.Marshal()
	require.NoError(t, err)
	assert.Equal(t, `["CHANGES",{"changes":[],"lastSeq":7}]`, string(b))

	ev := &event.E{Kind: 1, Tags: [][]string{}}
	r = changesenvelope.NewResult([]store.Change{{Seq: 3, Event: ev}}, 3)
	b, err = r.Marshal()
	require.NoError(t, err)
	assert.Contains(t, string(b), `"seq":3`)
	assert.Contains(t, string(b), `"lastSeq":3`)
}

func TestChangesEoseMarshal(t *testing.T) {
	b, err := (&changesenvelope.Eose{Sub: "s", LastSeq: 12}).Marshal()
	require.NoError(t, err)
	assert.Equal(t, `["CHANGES_EOSE","s",{"lastSeq":12}]`, string(b))
}

func TestLastSeqMarshal(t *testing.T) {
	b, err := (&changesenvelope.LastSeq{Seq: 42}).Marshal()
	require.NoError(t, err)
	assert.Equal(t, `["LASTSEQ",42]`, string(b))
}

func TestDecodeOptions(t *testing.T) {
	o, err := changesenvelope.DecodeOptions(
		json.RawMessage(`{"since":5,"limit":10,"kinds":[1],"authors":["aa"]}`),
	)
	require.NoError(t, err)
	assert.EqualValues(t, 5, o.Since)
	require.NotNil(t, o.Limit)
	assert.Equal(t, 10, *o.Limit)
	assert.Equal(t, []int{1}, o.Kinds)

	o, err = changesenvelope.DecodeOptions(json.RawMessage(`{}`))
	require.NoError(t, err)
	assert.Zero(t, o.Since)
	assert.Nil(t, o.Limit)

	_, err = changesenvelope.DecodeOptions(json.RawMessage(`[1]`))
	assert.Error(t, err)
}
