package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"seqrelay.dev/event"
	"seqrelay.dev/kind"
	"seqrelay.dev/reason"
)

// AcceptEvent runs the retention pipeline for a validated, non-ephemeral
// event within a single transaction: duplicate check, purge handling,
// replaceable/addressable supersession, then insert with the next seq.
//
// stored is false when the event was accepted without being newly persisted;
// message then carries the duplicate reason. Rejections are returned as
// errors carrying an "invalid:" prefix; any other error is a storage failure.
func (d *D) AcceptEvent(c context.Context, ev *event.E) (
	seq uint64, stored bool, message string, err error,
) {
	d.mx.Lock()
	defer d.mx.Unlock()
	var tx *sql.Tx
	if tx, err = d.DB.BeginTx(c, nil); err != nil {
		err = fmt.Errorf("failed to begin transaction: %w", err)
		return
	}
	defer tx.Rollback()

	// an event already stored under this id is acknowledged with its seq but
	// not stored or broadcast again
	var existingSeq uint64
	var have bool
	if existingSeq, have, err = getSeqByIdTx(tx, ev.Id); err != nil {
		return
	}
	if have {
		seq = existingSeq
		message = reason.Duplicate.F("already have this event")
		return
	}

	switch kind.Classify(ev.Kind) {
	case kind.Purge:
		if err = purgeTargetsTx(tx, ev); err != nil {
			return
		}
	case kind.Replaceable:
		var keep bool
		if keep, err = supersedeTx(tx, ev, findReplaceableTx); err != nil {
			return
		}
		if !keep {
			message = reason.Duplicate.F(
				"have a newer version of this replaceable event",
			)
			return
		}
	case kind.Addressable:
		var keep bool
		if keep, err = supersedeTx(tx, ev, findAddressableTx); err != nil {
			return
		}
		if !keep {
			message = reason.Duplicate.F(
				"have a newer version of this addressable event",
			)
			return
		}
	case kind.Invalid:
		err = reason.Invalid.Err("unsupported kind %d", ev.Kind)
		return
	}

	if seq, err = insertEventTx(tx, ev); err != nil {
		return
	}
	if err = tx.Commit(); err != nil {
		err = fmt.Errorf("failed to commit event: %w", err)
		return
	}
	stored = true
	return
}

// supersedeTx resolves a replaceable or addressable conflict. The incoming
// event wins if its (created_at desc, id asc) tuple orders before the stored
// one; the loser is deleted. keep reports whether the incoming event should
// be stored.
func supersedeTx(
	tx *sql.Tx, ev *event.E,
	find func(tx *sql.Tx, ev *event.E) (id string, createdAt int64, have bool, err error),
) (keep bool, err error) {
	var existingId string
	var existingCreatedAt int64
	var have bool
	if existingId, existingCreatedAt, have, err = find(tx, ev); err != nil {
		return
	}
	if !have {
		keep = true
		return
	}
	if existingWins(existingCreatedAt, existingId, ev.CreatedAt, ev.Id) {
		return
	}
	if err = deleteEventTx(tx, existingId); err != nil {
		return
	}
	keep = true
	return
}

// existingWins compares two events by (created_at desc, id asc); the smaller
// tuple wins and is kept. Ids compare as plain strings.
func existingWins(aCreatedAt int64, aId string, bCreatedAt int64, bId string) bool {
	if aCreatedAt != bCreatedAt {
		return aCreatedAt > bCreatedAt
	}
	return aId < bId
}

// findReplaceableTx locates the stored event for (pubkey, kind), if any.
func findReplaceableTx(tx *sql.Tx, ev *event.E) (
	id string, createdAt int64, have bool, err error,
) {
	row := tx.QueryRow(
		`SELECT id, created_at FROM events WHERE pubkey = ? AND kind = ?`,
		ev.Pubkey, ev.Kind,
	)
	if err = row.Scan(&id, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", 0, false, nil
		}
		return "", 0, false, fmt.Errorf("failed to find replaceable: %w", err)
	}
	have = true
	return
}

// findAddressableTx locates the stored event for (pubkey, kind, d tag), if
// any. An event with no d tag is keyed by the empty string.
func findAddressableTx(tx *sql.Tx, ev *event.E) (
	id string, createdAt int64, have bool, err error,
) {
	d := ev.DTag()
	var row *sql.Row
	if d == "" {
		row = tx.QueryRow(
			`SELECT id, created_at FROM events
			 WHERE pubkey = ? AND kind = ?
			 AND NOT EXISTS (
				SELECT 1 FROM event_tags t
				WHERE t.event_id = events.id AND t.name = 'd'
			 )`,
			ev.Pubkey, ev.Kind,
		)
	} else {
		row = tx.QueryRow(
			`SELECT id, created_at FROM events
			 WHERE pubkey = ? AND kind = ?
			 AND EXISTS (
				SELECT 1 FROM event_tags t
				WHERE t.event_id = events.id AND t.name = 'd' AND t.value = ?
			 )`,
			ev.Pubkey, ev.Kind, d,
		)
	}
	if err = row.Scan(&id, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", 0, false, nil
		}
		return "", 0, false, fmt.Errorf("failed to find addressable: %w", err)
	}
	have = true
	return
}

// purgeTargetsTx validates a purge event's d and k tags and deletes every
// revision of the targeted document. The purge event itself is inserted by
// the caller so peers converge.
func purgeTargetsTx(tx *sql.Tx, ev *event.E) (err error) {
	doc, ok := ev.TagValue("d")
	if !ok {
		return reason.Invalid.Err("purge event requires a d tag")
	}
	kval, ok := ev.TagValue("k")
	if !ok {
		return reason.Invalid.Err("purge event requires a k tag")
	}
	var k int
	if k, err = strconv.Atoi(kval); err != nil {
		return reason.Invalid.Err("purge k tag %q is not an integer", kval)
	}
	if !kind.IsSyncable(k) {
		return reason.Invalid.Err("purge k tag %d out of syncable range", k)
	}
	_, err = purgeDocumentTx(tx, ev.Pubkey, k, doc)
	return
}

// getSeqByIdTx returns the seq of a stored event id, if present.
func getSeqByIdTx(tx *sql.Tx, id string) (
	seq uint64, have bool, err error,
) {
	row := tx.QueryRow(`SELECT seq FROM events WHERE id = ?`, id)
	if err = row.Scan(&seq); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to look up event id: %w", err)
	}
	have = true
	return
}
