package database

import (
	"context"
	"database/sql"
	"fmt"
)

// DeleteEvent removes an event and all its tag index entries.
func (d *D) DeleteEvent(c context.Context, id string) (err error) {
	d.mx.Lock()
	defer d.mx.Unlock()
	var tx *sql.Tx
	if tx, err = d.DB.BeginTx(c, nil); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()
	if err = deleteEventTx(tx, id); err != nil {
		return
	}
	return tx.Commit()
}

// deleteEventTx removes an event row and its tag index entries within an open
// transaction.
func deleteEventTx(tx *sql.Tx, id string) (err error) {
	if _, err = tx.Exec(
		`DELETE FROM event_tags WHERE event_id = ?`, id,
	); err != nil {
		return fmt.Errorf("failed to delete tag index entries: %w", err)
	}
	if _, err = tx.Exec(`DELETE FROM events WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	return
}
