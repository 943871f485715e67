package database

import (
	"context"
	"database/sql"
	"fmt"
)

// PurgeDocument deletes every stored event of the syncable document
// (pubkey, kind, doc), cascading their tag index entries, and returns how
// many events were removed.
func (d *D) PurgeDocument(
	c context.Context, pubkey string, k int, doc string,
) (deleted int, err error) {
	d.mx.Lock()
	defer d.mx.Unlock()
	var tx *sql.Tx
	if tx, err = d.DB.BeginTx(c, nil); err != nil {
		err = fmt.Errorf("failed to begin transaction: %w", err)
		return
	}
	defer tx.Rollback()
	if deleted, err = purgeDocumentTx(tx, pubkey, k, doc); err != nil {
		return
	}
	err = tx.Commit()
	return
}

// purgeDocumentTx deletes the document revisions within an open transaction.
func purgeDocumentTx(tx *sql.Tx, pubkey string, k int, doc string) (
	deleted int, err error,
) {
	var rows *sql.Rows
	if rows, err = tx.Query(
		`SELECT id FROM events
		 WHERE pubkey = ? AND kind = ?
		 AND EXISTS (
			SELECT 1 FROM event_tags t
			WHERE t.event_id = events.id AND t.name = 'd' AND t.value = ?
		 )`,
		pubkey, k, doc,
	); err != nil {
		err = fmt.Errorf("failed to find document revisions: %w", err)
		return
	}
	var ids []string
	for rows.Next() {
		var id string
		if err = rows.Scan(&id); err != nil {
			rows.Close()
			return
		}
		ids = append(ids, id)
	}
	if err = rows.Err(); err != nil {
		return
	}
	rows.Close()
	for _, id := range ids {
		if err = deleteEventTx(tx, id); err != nil {
			return
		}
		deleted++
	}
	return
}
