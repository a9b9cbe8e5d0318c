package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/waste-pickup-service/internal/model"
)

// BookingRepo is the booking ledger: it records which customer booked
// which calendar entry.  The unique key on (customer_id, calendar_entry_id)
// is the duplicate guard; an insert that trips it is downgraded to a no-op
// so two simultaneous submissions of the same date leave exactly one row
// and surface no error to either caller.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// LedgerResult reports what happened to each calendar entry id handed to
// BookEach or ReplaceForProfile.  Ids appear in submission order.
type LedgerResult struct {
	Created []model.Booking // bookings written by this call
	Skipped []uint64        // entries the customer had already booked
	Missing []uint64        // ids that do not resolve to a calendar entry
}

// BookedDate is a booking joined with its calendar date and local body.
type BookedDate struct {
	BookingID       uint64  `json:"booking_id"`
	CalendarEntryID uint64  `json:"calendar_entry_id"`
	LocalBodyID     uint64  `json:"localbody_id"`
	Date            string  `json:"date"`
	WasteProfileID  *uint64 `json:"waste_profile_id,omitempty"`
}

// Book records a booking of entryID by customerID.  It returns
// ErrCalendarEntryNotFound when the entry does not exist.  When the
// customer already holds a booking for the entry, that booking is returned
// with created=false and no row is written.
func (r *BookingRepo) Book(ctx context.Context, customerID, entryID uint64, profileID *uint64) (model.Booking, bool, error) {
	return bookEntry(ctx, r.db, customerID, entryID, profileID)
}

// BookEach books every id for the customer inside one transaction.  Missing
// entries and duplicates are reported in the result and never abort the
// remaining ids.
func (r *BookingRepo) BookEach(ctx context.Context, customerID uint64, profileID *uint64, entryIDs []uint64) (LedgerResult, error) {
	var res LedgerResult
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		var err error
		res, err = bookAll(ctx, tx, customerID, profileID, entryIDs)
		return err
	})
	return res, err
}

// ReplaceForProfile deletes every booking tied to the profile and books
// entryIDs in its place.  Delete and re-insert share one transaction, so
// readers see either the old set or the new one, never an empty gap.
// Entries the customer booked through another profile are left alone and
// reported as skipped.
func (r *BookingRepo) ReplaceForProfile(ctx context.Context, profileID, customerID uint64, entryIDs []uint64) (LedgerResult, error) {
	var res LedgerResult
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM pickup_bookings WHERE waste_profile_id = ?`, profileID); err != nil {
			return err
		}
		var err error
		res, err = bookAll(ctx, tx, customerID, &profileID, entryIDs)
		return err
	})
	return res, err
}

// Cancel deletes a booking owned by the customer.  It returns
// ErrBookingNotFound when no such booking exists for that customer.
func (r *BookingRepo) Cancel(ctx context.Context, bookingID, customerID uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM pickup_bookings WHERE id = ? AND customer_id = ?`, bookingID, customerID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrBookingNotFound
	}
	return nil
}

// ListForProfile returns the bookings made with a waste profile ordered by
// pickup date.
func (r *BookingRepo) ListForProfile(ctx context.Context, profileID uint64) ([]BookedDate, error) {
	const q = `SELECT b.id, b.calendar_entry_id, c.localbody_id, c.pickup_date, b.waste_profile_id
	           FROM pickup_bookings b
	           JOIN calendar_entries c ON c.id = b.calendar_entry_id
	           WHERE b.waste_profile_id = ?
	           ORDER BY c.pickup_date`
	return r.listBooked(ctx, q, profileID)
}

// ListForCustomer returns every booking of a customer ordered by pickup date.
func (r *BookingRepo) ListForCustomer(ctx context.Context, customerID uint64) ([]BookedDate, error) {
	const q = `SELECT b.id, b.calendar_entry_id, c.localbody_id, c.pickup_date, b.waste_profile_id
	           FROM pickup_bookings b
	           JOIN calendar_entries c ON c.id = b.calendar_entry_id
	           WHERE b.customer_id = ?
	           ORDER BY c.pickup_date`
	return r.listBooked(ctx, q, customerID)
}

func (r *BookingRepo) listBooked(ctx context.Context, q string, arg uint64) ([]BookedDate, error) {
	rows, err := r.db.QueryContext(ctx, q, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []BookedDate{}
	for rows.Next() {
		var (
			d       BookedDate
			day     time.Time
			profile sql.NullInt64
		)
		if err := rows.Scan(&d.BookingID, &d.CalendarEntryID, &d.LocalBodyID, &day, &profile); err != nil {
			return nil, err
		}
		d.Date = day.Format(model.DateLayout)
		d.WasteProfileID = scanNullableID(profile)
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func bookAll(ctx context.Context, q queryer, customerID uint64, profileID *uint64, entryIDs []uint64) (LedgerResult, error) {
	res := LedgerResult{Created: []model.Booking{}, Skipped: []uint64{}, Missing: []uint64{}}
	for _, id := range entryIDs {
		b, created, err := bookEntry(ctx, q, customerID, id, profileID)
		switch {
		case errors.Is(err, ErrCalendarEntryNotFound):
			res.Missing = append(res.Missing, id)
		case err != nil:
			return LedgerResult{}, err
		case created:
			res.Created = append(res.Created, b)
		default:
			res.Skipped = append(res.Skipped, id)
		}
	}
	return res, nil
}

func bookEntry(ctx context.Context, q queryer, customerID, entryID uint64, profileID *uint64) (model.Booking, bool, error) {
	var found uint64
	err := q.QueryRowContext(ctx, `SELECT id FROM calendar_entries WHERE id = ?`, entryID).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Booking{}, false, ErrCalendarEntryNotFound
	}
	if err != nil {
		return model.Booking{}, false, err
	}

	res, err := q.ExecContext(ctx,
		`INSERT INTO pickup_bookings (customer_id, waste_profile_id, calendar_entry_id) VALUES (?, ?, ?)`,
		customerID, nullableID(profileID), entryID)
	if err != nil {
		if isDuplicateKey(err) {
			existing, lookupErr := bookingByCustomerAndEntry(ctx, q, customerID, entryID)
			if errors.Is(lookupErr, ErrBookingNotFound) {
				// the winning row was cancelled after our insert lost
				return model.Booking{CustomerID: customerID, WasteProfileID: profileID, CalendarEntryID: entryID}, false, nil
			}
			if lookupErr != nil {
				return model.Booking{}, false, lookupErr
			}
			return existing, false, nil
		}
		// entry deleted between the lookup and the insert
		if isMissingReference(err) {
			return model.Booking{}, false, ErrCalendarEntryNotFound
		}
		return model.Booking{}, false, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Booking{}, false, err
	}
	return model.Booking{
		ID:              uint64(id),
		CustomerID:      customerID,
		WasteProfileID:  profileID,
		CalendarEntryID: entryID,
		CreatedAt:       time.Now().UTC(),
	}, true, nil
}

// bookingByCustomerAndEntry uses a locking read so that, inside a
// transaction, it sees a row committed after the snapshot was taken.
func bookingByCustomerAndEntry(ctx context.Context, q queryer, customerID, entryID uint64) (model.Booking, error) {
	const sel = `SELECT id, customer_id, waste_profile_id, calendar_entry_id, created_at
	             FROM pickup_bookings WHERE customer_id = ? AND calendar_entry_id = ?
	             LOCK IN SHARE MODE`
	var (
		b       model.Booking
		profile sql.NullInt64
	)
	err := q.QueryRowContext(ctx, sel, customerID, entryID).Scan(&b.ID, &b.CustomerID, &profile, &b.CalendarEntryID, &b.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Booking{}, ErrBookingNotFound
	}
	if err != nil {
		return model.Booking{}, err
	}
	b.WasteProfileID = scanNullableID(profile)
	return b, nil
}
