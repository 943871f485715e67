package database

import (
	"context"
	"database/sql"
	"errors"

	"seqrelay.dev/event"
)

// GetEventById returns the stored event with the given id, or nil if the
// relay does not have it.
func (d *D) GetEventById(c context.Context, id string) (
	ev *event.E, err error,
) {
	row := d.DB.QueryRowContext(
		c, `SELECT `+eventColumns+` FROM events WHERE id = ?`, id,
	)
	if ev, _, err = scanEvent(row); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return
}
