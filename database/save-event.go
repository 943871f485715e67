package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"seqrelay.dev/event"
)

// eventColumns is the column list every event select uses, in scanEvent order.
const eventColumns = `seq, id, pubkey, created_at, kind, tags, content, sig`

// SaveEvent inserts an event unconditionally, assigning the next seq and
// materializing tag index entries for single-letter tag names. Fails if an
// event with the same id is already stored.
func (d *D) SaveEvent(c context.Context, ev *event.E) (seq uint64, err error) {
	d.mx.Lock()
	defer d.mx.Unlock()
	var tx *sql.Tx
	if tx, err = d.DB.BeginTx(c, nil); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()
	if seq, err = insertEventTx(tx, ev); err != nil {
		return
	}
	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit event: %w", err)
	}
	return
}

// insertEventTx writes the event row and its tag index entries within an open
// transaction and returns the assigned seq.
func insertEventTx(tx *sql.Tx, ev *event.E) (seq uint64, err error) {
	tags := ev.Tags
	if tags == nil {
		tags = [][]string{}
	}
	var tagsJSON []byte
	if tagsJSON, err = event.MarshalCompact(tags); err != nil {
		return 0, fmt.Errorf("failed to encode tags: %w", err)
	}
	var res sql.Result
	if res, err = tx.Exec(
		`INSERT INTO events(id, pubkey, created_at, kind, tags, content, sig)
		 VALUES(?, ?, ?, ?, ?, ?, ?)`,
		ev.Id, ev.Pubkey, ev.CreatedAt, ev.Kind, string(tagsJSON),
		ev.Content, ev.Sig,
	); err != nil {
		return 0, fmt.Errorf("failed to insert event: %w", err)
	}
	var last int64
	if last, err = res.LastInsertId(); err != nil {
		return 0, fmt.Errorf("failed to read assigned seq: %w", err)
	}
	seq = uint64(last)
	for _, t := range tags {
		if len(t) < 2 || !isIndexableTagName(t[0]) {
			continue
		}
		if _, err = tx.Exec(
			`INSERT INTO event_tags(event_id, name, value) VALUES(?, ?, ?)`,
			ev.Id, t[0], t[1],
		); err != nil {
			return 0, fmt.Errorf("failed to insert tag index entry: %w", err)
		}
	}
	return
}

// isIndexableTagName reports whether a tag name is a single ASCII letter.
func isIndexableTagName(name string) bool {
	if len(name) != 1 {
		return false
	}
	c := name[0]
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanEvent reads one eventColumns row into an event and its seq.
func scanEvent(row rowScanner) (ev *event.E, seq uint64, err error) {
	ev = &event.E{}
	var tagsJSON string
	if err = row.Scan(
		&seq, &ev.Id, &ev.Pubkey, &ev.CreatedAt, &ev.Kind, &tagsJSON,
		&ev.Content, &ev.Sig,
	); err != nil {
		return nil, 0, err
	}
	if err = json.Unmarshal([]byte(tagsJSON), &ev.Tags); err != nil {
		return nil, 0, fmt.Errorf("failed to decode stored tags: %w", err)
	}
	return
}
