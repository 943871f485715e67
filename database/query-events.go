package database

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"seqrelay.dev/event"
	"seqrelay.dev/filter"
)

// QueryEvents retrieves events matching any of the provided filters. Each
// filter runs as its own indexed select with its own limit; results are
// unioned by id and sorted by (created_at desc, id asc).
func (d *D) QueryEvents(c context.Context, ff filter.S) (
	evs event.S, err error,
) {
	seen := make(map[string]*event.E)
	for _, f := range ff {
		q, args := buildFilterQuery(f)
		var rows *sql.Rows
		if rows, err = d.DB.QueryContext(c, q, args...); err != nil {
			err = fmt.Errorf("failed to query events: %w", err)
			return
		}
		for rows.Next() {
			var ev *event.E
			if ev, _, err = scanEvent(rows); err != nil {
				rows.Close()
				return
			}
			seen[ev.Id] = ev
		}
		if err = rows.Err(); err != nil {
			rows.Close()
			return
		}
		rows.Close()
	}
	for _, ev := range seen {
		evs = append(evs, ev)
	}
	sort.Sort(evs)
	return
}

// buildFilterQuery renders one filter as a select over the events table.
// Predicates within the filter conjoin; the values of one set predicate
// disjoin via IN. Tag predicates become correlated EXISTS subqueries against
// the event_tags index.
func buildFilterQuery(f *filter.F) (q string, args []any) {
	var b strings.Builder
	b.WriteString(`SELECT ` + eventColumns + ` FROM events WHERE 1=1`)
	if len(f.Ids) > 0 {
		b.WriteString(` AND id IN (` + placeholders(len(f.Ids)) + `)`)
		for _, id := range f.Ids {
			args = append(args, id)
		}
	}
	if len(f.Authors) > 0 {
		b.WriteString(` AND pubkey IN (` + placeholders(len(f.Authors)) + `)`)
		for _, a := range f.Authors {
			args = append(args, a)
		}
	}
	if len(f.Kinds) > 0 {
		b.WriteString(` AND kind IN (` + placeholders(len(f.Kinds)) + `)`)
		for _, k := range f.Kinds {
			args = append(args, k)
		}
	}
	if f.Since != nil {
		b.WriteString(` AND created_at >= ?`)
		args = append(args, *f.Since)
	}
	if f.Until != nil {
		b.WriteString(` AND created_at <= ?`)
		args = append(args, *f.Until)
	}
	// iterate tag names in a stable order so the generated SQL is
	// deterministic for identical filters
	names := make([]string, 0, len(f.Tags))
	for name := range f.Tags {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		vals := f.Tags[name]
		if len(vals) == 0 {
			continue
		}
		b.WriteString(
			` AND EXISTS (SELECT 1 FROM event_tags t WHERE` +
				` t.event_id = events.id AND t.name = ? AND t.value IN (` +
				placeholders(len(vals)) + `))`,
		)
		args = append(args, name)
		for _, v := range vals {
			args = append(args, v)
		}
	}
	b.WriteString(` ORDER BY created_at DESC, id ASC`)
	if f.Limit != nil {
		b.WriteString(` LIMIT ?`)
		args = append(args, *f.Limit)
	}
	q = b.String()
	return
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
