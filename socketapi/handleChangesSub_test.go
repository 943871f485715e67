package socketapi

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seqrelay.dev/database"
	"seqrelay.dev/server"
	"seqrelay.dev/tests"
)

// brokenListener fails every write after the first allowed ones.
type brokenListener struct {
	allowed int
	writes  int
}

func (b *brokenListener) Write(p []byte) (int, error) {
	b.writes++
	if b.writes > b.allowed {
		return 0, errors.New("connection gone")
	}
	return len(p), nil
}

func (b *brokenListener) Remote() string { return "test" }
func (b *brokenListener) Close() error   { return nil }

func newTestAPI(t *testing.T) (a *A) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	d, err := database.New(ctx, cancel, filepath.Join(t.TempDir(), "events.db"))
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })
	srv := server.NewServer(
		&server.Params{Ctx: ctx, Cancel: cancel, Store: d, MaxLimit: 512},
	)
	a = New(srv, "/", srv.Mux())

	sec, _, err := tests.NewSigner()
	require.NoError(t, err)
	ev, err := tests.SignedEvent(sec, 1, 100, "stored", nil)
	require.NoError(t, err)
	_, _, _, err = d.AcceptEvent(ctx, ev)
	require.NoError(t, err)
	return
}

func changesSubFrame(sub string) []json.RawMessage {
	return []json.RawMessage{
		json.RawMessage(`"` + sub + `"`), json.RawMessage(`{}`),
	}
}

func TestChangesSubUnwindsOnReplayWriteFailure(t *testing.T) {
	a := newTestAPI(t)
	lis := &brokenListener{allowed: 0}
	a.HandleChangesSub(context.Background(), lis, changesSubFrame("c1"))
	assert.False(t, a.Publisher().HasChangesSub(lis, "c1"),
		"a subscription whose replay failed must not linger buffering")
}

func TestChangesSubUnwindsOnEoseWriteFailure(t *testing.T) {
	a := newTestAPI(t)
	// the one replayed CHANGES_EVENT goes through, the CHANGES_EOSE fails
	lis := &brokenListener{allowed: 1}
	a.HandleChangesSub(context.Background(), lis, changesSubFrame("c1"))
	assert.False(t, a.Publisher().HasChangesSub(lis, "c1"))
}

func TestChangesSubStaysRegisteredOnSuccess(t *testing.T) {
	a := newTestAPI(t)
	lis := &brokenListener{allowed: 1 << 20}
	a.HandleChangesSub(context.Background(), lis, changesSubFrame("c1"))
	assert.True(t, a.Publisher().HasChangesSub(lis, "c1"))
	assert.Equal(t, 2, lis.writes, "one replayed event and the EOSE")
}
