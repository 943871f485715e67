package event

import (
	"encoding/hex"
	"encoding/json"
	"sort"
	"strings"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedEvent(t *testing.T, k int, createdAt int64, content string,
	tags [][]string) (ev *E, sec *btcec.PrivateKey) {

	t.Helper()
	sec, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	if tags == nil {
		tags = [][]string{}
	}
	ev = &E{Kind: k, CreatedAt: createdAt, Content: content, Tags: tags}
	require.NoError(t, ev.Sign(sec))
	return
}

func TestCanonicalForm(t *testing.T) {
	pk := strings.Repeat("ab", 32)
	ev := &E{
		Pubkey:    pk,
		CreatedAt: 100,
		Kind:      1,
		Tags:      [][]string{{"d", "doc1"}, {"i", "1-aaa"}},
		Content:   "hi <&> there",
	}
	// no extraneous whitespace, no HTML escaping, tag order preserved
	assert.Equal(
		t,
		`[0,"`+pk+`",100,1,[["d","doc1"],["i","1-aaa"]],"hi <&> there"]`,
		string(ev.Canonical()),
	)
}

func TestCanonicalNilTags(t *testing.T) {
	ev := &E{Content: "x"}
	assert.Contains(t, string(ev.Canonical()), "[],")
}

func TestSignAndVerify(t *testing.T) {
	ev, _ := signedEvent(t, 1, 100, "hi", nil)
	assert.Len(t, ev.Id, 64)
	assert.Len(t, ev.Sig, 128)
	assert.True(t, ev.CheckId())
	valid, err := ev.Verify()
	require.NoError(t, err)
	assert.True(t, valid)
}

func TestVerifyRejectsTampering(t *testing.T) {
	ev, _ := signedEvent(t, 1, 100, "hi", nil)
	ev.Content = "tampered"
	assert.False(t, ev.CheckId())
	// restore the id to match the tampered content and the signature must
	// fail instead
	ev.Id = ev.GetIdHex()
	valid, err := ev.Verify()
	require.NoError(t, err)
	assert.False(t, valid)
}

func TestCheckSigned(t *testing.T) {
	now := int64(1000000)
	ev, _ := signedEvent(t, 1, now, "hi", nil)
	require.NoError(t, ev.CheckSigned(now))

	future, _ := signedEvent(t, 1, now+MaxFutureSeconds+1, "hi", nil)
	err := future.CheckSigned(now)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid:")
	assert.Contains(t, err.Error(), "future")
}

func TestValidateStructure(t *testing.T) {
	ev, _ := signedEvent(t, 1, 100, "hi", nil)
	require.NoError(t, ev.Validate())

	bad := *ev
	bad.Id = "ABCD" + ev.Id[4:] // uppercase hex is rejected
	assert.Error(t, bad.Validate())

	bad = *ev
	bad.Sig = bad.Sig[:127]
	assert.Error(t, bad.Validate())

	bad = *ev
	bad.Tags = nil
	assert.Error(t, bad.Validate())

	bad = *ev
	bad.Tags = [][]string{{}}
	assert.Error(t, bad.Validate())
}

func TestTagAccessors(t *testing.T) {
	ev := &E{Tags: [][]string{{"d", "doc1"}, {"k", "40001"}, {"deleted"}}}
	v, ok := ev.TagValue("d")
	assert.True(t, ok)
	assert.Equal(t, "doc1", v)
	assert.Equal(t, "doc1", ev.DTag())
	_, ok = ev.TagValue("deleted")
	assert.False(t, ok)
	assert.NotNil(t, ev.Tag("deleted"))
	assert.Nil(t, ev.Tag("x"))
}

func TestSortOrder(t *testing.T) {
	evs := S{
		{Id: "bb", CreatedAt: 100},
		{Id: "aa", CreatedAt: 100},
		{Id: "cc", CreatedAt: 200},
	}
	sort.Sort(evs)
	assert.Equal(t, "cc", evs[0].Id)
	assert.Equal(t, "aa", evs[1].Id)
	assert.Equal(t, "bb", evs[2].Id)
}

func TestSerializeRoundTrip(t *testing.T) {
	ev, _ := signedEvent(t, 1, 100, "hi <>&", [][]string{{"d", "x"}})
	var back E
	require.NoError(t, json.Unmarshal(ev.Serialize(), &back))
	assert.Equal(t, *ev, back)
}

func TestPubkeySerialization(t *testing.T) {
	sec, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	pk := hex.EncodeToString(schnorr.SerializePubKey(sec.PubKey()))
	ev := &E{Kind: 1, Tags: [][]string{}}
	require.NoError(t, ev.Sign(sec))
	assert.Equal(t, pk, ev.Pubkey)
}
