package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"seqrelay.dev/event"
	"seqrelay.dev/interfaces/store"
)

// QueryChanges scans the change feed for events with seq > cf.Since matching
// the kinds/authors restriction, in ascending seq order, up to cf.Limit.
//
// lastSeq is the highest seq among the returned changes; when nothing
// matches it is the relay's global last seq, so a client whose filter
// matches nothing still advances its cursor past the scanned range.
func (d *D) QueryChanges(c context.Context, cf *store.ChangesFilter) (
	changes []store.Change, lastSeq uint64, err error,
) {
	var b strings.Builder
	var args []any
	b.WriteString(`SELECT ` + eventColumns + ` FROM events WHERE seq > ?`)
	args = append(args, cf.Since)
	if cf.Until > 0 {
		b.WriteString(` AND seq <= ?`)
		args = append(args, cf.Until)
	}
	if len(cf.Kinds) > 0 {
		b.WriteString(` AND kind IN (` + placeholders(len(cf.Kinds)) + `)`)
		for _, k := range cf.Kinds {
			args = append(args, k)
		}
	}
	if len(cf.Authors) > 0 {
		b.WriteString(` AND pubkey IN (` + placeholders(len(cf.Authors)) + `)`)
		for _, a := range cf.Authors {
			args = append(args, a)
		}
	}
	b.WriteString(` ORDER BY seq ASC`)
	if cf.Limit > 0 {
		b.WriteString(` LIMIT ?`)
		args = append(args, cf.Limit)
	}
	var rows *sql.Rows
	if rows, err = d.DB.QueryContext(c, b.String(), args...); err != nil {
		err = fmt.Errorf("failed to scan changes: %w", err)
		return
	}
	defer rows.Close()
	for rows.Next() {
		var ev *event.E
		var seq uint64
		if ev, seq, err = scanEvent(rows); err != nil {
			return
		}
		changes = append(changes, store.Change{Seq: seq, Event: ev})
	}
	if err = rows.Err(); err != nil {
		return
	}
	if len(changes) > 0 {
		lastSeq = changes[len(changes)-1].Seq
		return
	}
	lastSeq, err = d.LastSeq(c)
	return
}
