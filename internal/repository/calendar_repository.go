package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/waste-pickup-service/internal/model"
)

// CalendarRepo stores the pickup dates each local body offers.  The table
// carries a unique key on (localbody_id, pickup_date); inserts rely on it
// instead of a read-then-write check so concurrent administrators cannot
// create the same date twice.
type CalendarRepo struct {
	db *sql.DB
}

// NewCalendarRepo returns a new CalendarRepo bound to the given database.
func NewCalendarRepo(db *sql.DB) *CalendarRepo { return &CalendarRepo{db: db} }

// CalendarDate is a calendar entry annotated with whether a specific
// customer has already booked it.
type CalendarDate struct {
	model.CalendarEntry
	Picked bool
}

// ListByLocalBody returns every entry of a local body ordered by date.
// Picked is derived from the customer's bookings; pass customerID 0 for an
// administrator view where nothing is picked.
func (r *CalendarRepo) ListByLocalBody(ctx context.Context, localBodyID, customerID uint64) ([]CalendarDate, error) {
	const q = `SELECT c.id, c.localbody_id, c.pickup_date,
	                  EXISTS(SELECT 1 FROM pickup_bookings b
	                         WHERE b.calendar_entry_id = c.id AND b.customer_id = ?) AS picked
	           FROM calendar_entries c
	           WHERE c.localbody_id = ?
	           ORDER BY c.pickup_date`
	rows, err := r.db.QueryContext(ctx, q, customerID, localBodyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []CalendarDate{}
	for rows.Next() {
		var d CalendarDate
		if err := rows.Scan(&d.ID, &d.LocalBodyID, &d.Date, &d.Picked); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByID loads a single entry.  It returns ErrCalendarEntryNotFound when
// no row matches.
func (r *CalendarRepo) GetByID(ctx context.Context, id uint64) (model.CalendarEntry, error) {
	return getCalendarEntry(ctx, r.db, id, false)
}

// CreateIfMissing inserts the date for the local body unless it already
// exists.  The boolean reports whether a new row was written; when it is
// false the existing entry is returned unchanged.
func (r *CalendarRepo) CreateIfMissing(ctx context.Context, localBodyID uint64, date time.Time) (model.CalendarEntry, bool, error) {
	return createCalendarEntryIfMissing(ctx, r.db, localBodyID, date)
}

// CreateRange applies CreateIfMissing to every day in days inside one
// transaction and returns only the entries that were newly created.
func (r *CalendarRepo) CreateRange(ctx context.Context, localBodyID uint64, days []time.Time) ([]model.CalendarEntry, error) {
	created := []model.CalendarEntry{}
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		for _, day := range days {
			entry, isNew, err := createCalendarEntryIfMissing(ctx, tx, localBodyID, day)
			if err != nil {
				return err
			}
			if isNew {
				created = append(created, entry)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// UpdateDate moves an entry to a new date.  It returns ErrConflict when
// another entry of the same local body already uses that date and
// ErrCalendarEntryNotFound when the entry does not exist.  The entry row is
// locked for the duration of the check; a duplicate-key error from a
// concurrent writer is reported as ErrConflict as well.
func (r *CalendarRepo) UpdateDate(ctx context.Context, id uint64, date time.Time) (model.CalendarEntry, error) {
	var entry model.CalendarEntry
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		var err error
		entry, err = getCalendarEntry(ctx, tx, id, true)
		if err != nil {
			return err
		}
		var taken int
		const dup = `SELECT COUNT(*) FROM calendar_entries WHERE localbody_id = ? AND pickup_date = ? AND id <> ?`
		if err := tx.QueryRowContext(ctx, dup, entry.LocalBodyID, date.Format(model.DateLayout), id).Scan(&taken); err != nil {
			return err
		}
		if taken > 0 {
			return ErrConflict
		}
		if _, err := tx.ExecContext(ctx, `UPDATE calendar_entries SET pickup_date = ? WHERE id = ?`, date.Format(model.DateLayout), id); err != nil {
			if isDuplicateKey(err) {
				return ErrConflict
			}
			return err
		}
		entry.Date = date
		return nil
	})
	if err != nil {
		return model.CalendarEntry{}, err
	}
	return entry, nil
}

// Delete removes an entry together with every booking made against it.
// It returns ErrCalendarEntryNotFound when the entry does not exist.
func (r *CalendarRepo) Delete(ctx context.Context, id uint64) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM pickup_bookings WHERE calendar_entry_id = ?`, id); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM calendar_entries WHERE id = ?`, id)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrCalendarEntryNotFound
		}
		return nil
	})
}

func getCalendarEntry(ctx context.Context, q queryer, id uint64, forUpdate bool) (model.CalendarEntry, error) {
	query := `SELECT id, localbody_id, pickup_date FROM calendar_entries WHERE id = ?`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	var e model.CalendarEntry
	err := q.QueryRowContext(ctx, query, id).Scan(&e.ID, &e.LocalBodyID, &e.Date)
	if errors.Is(err, sql.ErrNoRows) {
		return model.CalendarEntry{}, ErrCalendarEntryNotFound
	}
	if err != nil {
		return model.CalendarEntry{}, err
	}
	return e, nil
}

// createCalendarEntryIfMissing uses INSERT IGNORE so a duplicate date is a
// zero-row insert rather than an error, then reads the surviving row.  The
// IGNORE also silences a foreign-key failure, which surfaces here as a
// missing row and is reported as ErrLocalBodyNotFound.
func createCalendarEntryIfMissing(ctx context.Context, q queryer, localBodyID uint64, date time.Time) (model.CalendarEntry, bool, error) {
	day := date.Format(model.DateLayout)
	res, err := q.ExecContext(ctx,
		`INSERT IGNORE INTO calendar_entries (localbody_id, pickup_date) VALUES (?, ?)`,
		localBodyID, day)
	if err != nil {
		return model.CalendarEntry{}, false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return model.CalendarEntry{}, false, err
	}
	if n == 1 {
		id, err := res.LastInsertId()
		if err != nil {
			return model.CalendarEntry{}, false, err
		}
		return model.CalendarEntry{ID: uint64(id), LocalBodyID: localBodyID, Date: date}, true, nil
	}
	// locking read: a plain SELECT inside CreateRange's transaction would
	// miss a day committed by another writer after the snapshot
	var e model.CalendarEntry
	err = q.QueryRowContext(ctx,
		`SELECT id, localbody_id, pickup_date FROM calendar_entries WHERE localbody_id = ? AND pickup_date = ?
		 LOCK IN SHARE MODE`,
		localBodyID, day).Scan(&e.ID, &e.LocalBodyID, &e.Date)
	if errors.Is(err, sql.ErrNoRows) {
		// nothing to collide with, so the ignored error was the foreign key
		return model.CalendarEntry{}, false, ErrLocalBodyNotFound
	}
	if err != nil {
		return model.CalendarEntry{}, false, err
	}
	return e, false, nil
}
