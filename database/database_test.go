package database_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/stretchr/testify/require"

	"seqrelay.dev/database"
	"seqrelay.dev/event"
	"seqrelay.dev/tests"
)

func newTestDB(t *testing.T) (d *database.D) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	d, err := database.New(ctx, cancel, filepath.Join(t.TempDir(), "events.db"))
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })
	return
}

func newSigner(t *testing.T) (sec *btcec.PrivateKey, pubkey string) {
	t.Helper()
	sec, pubkey, err := tests.NewSigner()
	require.NoError(t, err)
	return
}

func signed(
	t *testing.T, sec *btcec.PrivateKey, k int, createdAt int64,
	content string, tags [][]string,
) (ev *event.E) {
	t.Helper()
	ev, err := tests.SignedEvent(sec, k, createdAt, content, tags)
	require.NoError(t, err)
	return
}

// accept stores an event expecting it to be newly persisted.
func accept(t *testing.T, d *database.D, ev *event.E) (seq uint64) {
	t.Helper()
	seq, stored, message, err := d.AcceptEvent(context.Background(), ev)
	require.NoError(t, err)
	require.True(t, stored, "expected event to be stored: %s", message)
	require.Empty(t, message)
	return
}
