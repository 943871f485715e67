package filter

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seqrelay.dev/event"
)

func int64p(v int64) *int64 { return &v }

func TestUnmarshalTagKeys(t *testing.T) {
	var f F
	err := json.Unmarshal(
		[]byte(`{"kinds":[1,40001],"#d":["doc1"],"#e":["aa","bb"],"unknown":true}`),
		&f,
	)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 40001}, f.Kinds)
	assert.Equal(t, []string{"doc1"}, f.Tags["d"])
	assert.Equal(t, []string{"aa", "bb"}, f.Tags["e"])
	assert.Len(t, f.Tags, 2)
}

func TestUnmarshalIgnoresMultiLetterTagKeys(t *testing.T) {
	var f F
	require.NoError(t, json.Unmarshal([]byte(`{"#dd":["x"],"#1":["y"]}`), &f))
	assert.Empty(t, f.Tags)
}

func TestMarshalRoundTrip(t *testing.T) {
	f := &F{
		Kinds: []int{1},
		Since: int64p(5),
		Tags:  map[string][]string{"d": {"doc1"}},
	}
	b, err := json.Marshal(f)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"#d":["doc1"]`)
	var back F
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, f.Kinds, back.Kinds)
	assert.Equal(t, f.Tags, back.Tags)
	require.NotNil(t, back.Since)
	assert.EqualValues(t, 5, *back.Since)
}

func TestValidate(t *testing.T) {
	f := New()
	require.NoError(t, f.Validate())

	f = &F{Ids: []string{"zz"}}
	assert.Error(t, f.Validate())

	f = &F{Authors: []string{strings.ToUpper(strings.Repeat("ab", 32))}}
	assert.Error(t, f.Validate())

	neg := -1
	f = &F{Limit: &neg}
	assert.Error(t, f.Validate())
}

func TestMatchConjunction(t *testing.T) {
	ev := &event.E{
		Id:        strings.Repeat("a1", 32),
		Pubkey:    strings.Repeat("b2", 32),
		CreatedAt: 100,
		Kind:      1,
		Tags:      [][]string{{"d", "doc1"}, {"e", "ref"}},
	}
	f := &F{
		Kinds:   []int{1, 2},
		Authors: []string{ev.Pubkey},
		Since:   int64p(50),
		Until:   int64p(150),
		Tags:    map[string][]string{"d": {"doc1", "doc2"}},
	}
	assert.True(t, f.Match(ev))

	// every predicate participates; any miss fails the match
	miss := *f
	miss.Kinds = []int{2}
	assert.False(t, miss.Match(ev))

	miss = *f
	miss.Since = int64p(101)
	assert.False(t, miss.Match(ev))

	miss = *f
	miss.Until = int64p(99)
	assert.False(t, miss.Match(ev))

	miss = *f
	miss.Tags = map[string][]string{"d": {"other"}}
	assert.False(t, miss.Match(ev))

	miss = *f
	miss.Tags = map[string][]string{"x": {"doc1"}}
	assert.False(t, miss.Match(ev))
}

func TestMatchEmptyTagPredicateImposesNoConstraint(t *testing.T) {
	ev := &event.E{Kind: 1, Tags: [][]string{{"d", "doc1"}}}
	f := &F{Tags: map[string][]string{"e": {}}}
	assert.True(t, f.Match(ev))
	// an empty set alongside a real predicate changes nothing
	f = &F{Tags: map[string][]string{"e": {}, "d": {"doc1"}}}
	assert.True(t, f.Match(ev))
	f = &F{Tags: map[string][]string{"e": {}, "d": {"other"}}}
	assert.False(t, f.Match(ev))
}

func TestMatchEmptyFilterMatchesAll(t *testing.T) {
	assert.True(t, New().Match(&event.E{Kind: 1}))
	assert.False(t, New().Match(nil))
}

func TestSetDisjunction(t *testing.T) {
	ev := &event.E{Kind: 7}
	set := S{{Kinds: []int{1}}, {Kinds: []int{7}}}
	assert.True(t, set.Match(ev))
	set = S{{Kinds: []int{1}}, {Kinds: []int{2}}}
	assert.False(t, set.Match(ev))
	assert.False(t, S{}.Match(ev))
}

func TestIsTagKey(t *testing.T) {
	assert.True(t, IsTagKey("#d"))
	assert.True(t, IsTagKey("#Z"))
	assert.False(t, IsTagKey("#dd"))
	assert.False(t, IsTagKey("d"))
	assert.False(t, IsTagKey("#1"))
	assert.False(t, IsTagKey("#"))
}
