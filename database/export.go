package database

import (
	"context"
	"database/sql"
	"fmt"
	"io"

	"seqrelay.dev/event"
)

// Export writes every stored event to w as JSON lines in seq order, suitable
// for backup and for feeding back through Import.
func (d *D) Export(c context.Context, w io.Writer) (err error) {
	var rows *sql.Rows
	if rows, err = d.DB.QueryContext(
		c, `SELECT `+eventColumns+` FROM events ORDER BY seq ASC`,
	); err != nil {
		return fmt.Errorf("failed to scan events for export: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var ev *event.E
		if ev, _, err = scanEvent(rows); err != nil {
			return
		}
		if _, err = w.Write(append(ev.Serialize(), '\n')); err != nil {
			return fmt.Errorf("failed to write export line: %w", err)
		}
	}
	return rows.Err()
}
