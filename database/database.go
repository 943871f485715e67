// Package database implements the event store on a single-file journalled
// SQLite database. Events are assigned a monotonic seq by an AUTOINCREMENT
// primary key, so sequence numbers are durable across restarts and never
// reused after deletes. Single-letter tag names are materialized into an
// event_tags index table.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3"
	log "github.com/sirupsen/logrus"
)

const schema = `
CREATE TABLE IF NOT EXISTS events (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	id TEXT NOT NULL UNIQUE,
	pubkey TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	kind INTEGER NOT NULL,
	tags TEXT NOT NULL,
	content TEXT NOT NULL,
	sig TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS event_tags (
	event_id TEXT NOT NULL,
	name TEXT NOT NULL,
	value TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_events_pubkey ON events(pubkey);
CREATE INDEX IF NOT EXISTS idx_events_kind ON events(kind);
CREATE INDEX IF NOT EXISTS idx_events_created_at ON events(created_at);
CREATE INDEX IF NOT EXISTS idx_events_kind_pubkey ON events(kind, pubkey);
CREATE INDEX IF NOT EXISTS idx_events_kind_pubkey_created
	ON events(kind, pubkey, created_at);
CREATE INDEX IF NOT EXISTS idx_event_tags_name_value ON event_tags(name, value);
CREATE INDEX IF NOT EXISTS idx_event_tags_event_id ON event_tags(event_id);
`

// D is the event store. Mutating operations serialize on mx; the single
// connection below serializes reads against writes as well, which is the
// simple and correct mode for SQLite.
type D struct {
	ctx    context.Context
	cancel context.CancelFunc
	dbPath string
	mx     sync.Mutex
	*sql.DB
}

// New opens (creating if necessary) the database at dbPath and prepares the
// schema. The store closes itself when ctx is done.
func New(ctx context.Context, cancel context.CancelFunc, dbPath string) (
	d *D, err error,
) {
	d = &D{ctx: ctx, cancel: cancel, dbPath: dbPath}
	if err = os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}
	dsn := fmt.Sprintf(
		"file:%s?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=ON",
		dbPath,
	)
	if d.DB, err = sql.Open("sqlite3", dsn); err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	d.DB.SetMaxOpenConns(1)
	if _, err = d.DB.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("failed to prepare schema: %w", err)
	}
	log.WithField("path", dbPath).Info("event store open")
	go func() {
		<-d.ctx.Done()
		if err := d.DB.Close(); err != nil {
			log.WithError(err).Warn("failed to close event store")
		}
	}()
	return
}

// Path returns the path of the database file.
func (d *D) Path() string { return d.dbPath }

// Close releases the store.
func (d *D) Close() (err error) {
	d.cancel()
	return nil
}

// LastSeq returns the highest assigned sequence number, or 0 if no event has
// ever been stored.
func (d *D) LastSeq(c context.Context) (seq uint64, err error) {
	row := d.DB.QueryRowContext(
		c, `SELECT COALESCE(MAX(seq), 0) FROM events`,
	)
	if err = row.Scan(&seq); err != nil {
		err = fmt.Errorf("failed to read last seq: %w", err)
	}
	return
}
