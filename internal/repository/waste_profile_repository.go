package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/waste-pickup-service/internal/model"
)

// WasteProfileRepo persists customer waste profiles.  Deleting a profile
// removes its bookings and location history through ON DELETE CASCADE.
type WasteProfileRepo struct {
	db *sql.DB
}

// NewWasteProfileRepo returns a new WasteProfileRepo bound to the given database.
func NewWasteProfileRepo(db *sql.DB) *WasteProfileRepo { return &WasteProfileRepo{db: db} }

// ProfileListing is a profile row joined with its owner for the admin list.
type ProfileListing struct {
	model.WasteProfile
	CustomerName  string `json:"customer_name"`
	ContactNumber string `json:"contact_number"`
}

const profileColumns = `p.id, p.user_id, p.full_name, p.secondary_number, p.pickup_address, p.landmark,
	p.pincode, p.latitude, p.longitude, p.state_id, p.district_id, p.localbody_id, p.ward,
	p.number_of_bags, p.waste_type, p.comments, p.status, p.assigned_collector_id,
	p.created_at, p.updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(s rowScanner, extra ...any) (model.WasteProfile, error) {
	var (
		p         model.WasteProfile
		lat, lng  sql.NullFloat64
		comments  sql.NullString
		collector sql.NullInt64
	)
	dest := []any{&p.ID, &p.UserID, &p.FullName, &p.SecondaryNumber, &p.PickupAddress, &p.Landmark,
		&p.Pincode, &lat, &lng, &p.StateID, &p.DistrictID, &p.LocalBodyID, &p.Ward,
		&p.NumberOfBags, &p.WasteType, &comments, &p.Status, &collector,
		&p.CreatedAt, &p.UpdatedAt}
	if err := s.Scan(append(dest, extra...)...); err != nil {
		return model.WasteProfile{}, err
	}
	if lat.Valid && lng.Valid {
		p.Latitude = &lat.Float64
		p.Longitude = &lng.Float64
	}
	p.Comments = comments.String
	p.AssignedCollectorID = scanNullableID(collector)
	return p, nil
}

func nullableFloat(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

// Create inserts the profile and, when history is non-nil, the first
// location history row in the same transaction.  It returns the new id.
func (r *WasteProfileRepo) Create(ctx context.Context, p model.WasteProfile, history *model.LocationHistory) (uint64, error) {
	var id uint64
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		status := p.Status
		if status == "" {
			status = model.ProfileStatusPending
		}
		res, err := tx.ExecContext(ctx,
			`INSERT INTO waste_profiles
			   (user_id, full_name, secondary_number, pickup_address, landmark, pincode, latitude, longitude,
			    state_id, district_id, localbody_id, ward, number_of_bags, waste_type, comments, status)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			p.UserID, p.FullName, p.SecondaryNumber, p.PickupAddress, p.Landmark, p.Pincode,
			nullableFloat(p.Latitude), nullableFloat(p.Longitude),
			p.StateID, p.DistrictID, p.LocalBodyID, p.Ward, p.NumberOfBags, p.WasteType, p.Comments, status)
		if err != nil {
			if isMissingReference(err) {
				return ErrNotFound
			}
			return err
		}
		lastID, err := res.LastInsertId()
		if err != nil {
			return err
		}
		id = uint64(lastID)
		if history != nil {
			history.WasteProfileID = id
			return insertLocationHistory(ctx, tx, *history)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// Update overwrites the editable fields of a profile and appends history
// when it is non-nil.  It returns ErrProfileNotFound when the id is unknown.
func (r *WasteProfileRepo) Update(ctx context.Context, p model.WasteProfile, history *model.LocationHistory) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		var exists uint64
		err := tx.QueryRowContext(ctx, `SELECT id FROM waste_profiles WHERE id = ? FOR UPDATE`, p.ID).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrProfileNotFound
		}
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx,
			`UPDATE waste_profiles SET full_name = ?, secondary_number = ?, pickup_address = ?, landmark = ?,
			   pincode = ?, latitude = ?, longitude = ?, state_id = ?, district_id = ?, localbody_id = ?,
			   ward = ?, number_of_bags = ?, waste_type = ?, comments = ?
			 WHERE id = ?`,
			p.FullName, p.SecondaryNumber, p.PickupAddress, p.Landmark, p.Pincode,
			nullableFloat(p.Latitude), nullableFloat(p.Longitude), p.StateID, p.DistrictID, p.LocalBodyID,
			p.Ward, p.NumberOfBags, p.WasteType, p.Comments, p.ID)
		if err != nil {
			if isMissingReference(err) {
				return ErrNotFound
			}
			return err
		}
		if history != nil {
			history.WasteProfileID = p.ID
			return insertLocationHistory(ctx, tx, *history)
		}
		return nil
	})
}

// GetByID loads a profile or returns ErrProfileNotFound.
func (r *WasteProfileRepo) GetByID(ctx context.Context, id uint64) (model.WasteProfile, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+profileColumns+` FROM waste_profiles p WHERE p.id = ?`, id)
	p, err := scanProfile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.WasteProfile{}, ErrProfileNotFound
	}
	if err != nil {
		return model.WasteProfile{}, err
	}
	return p, nil
}

// GetForUser loads a profile owned by userID.  A profile owned by someone
// else is reported as ErrForbidden.
func (r *WasteProfileRepo) GetForUser(ctx context.Context, id, userID uint64) (model.WasteProfile, error) {
	p, err := r.GetByID(ctx, id)
	if err != nil {
		return model.WasteProfile{}, err
	}
	if p.UserID != userID {
		return model.WasteProfile{}, ErrForbidden
	}
	return p, nil
}

// ListByUser returns the profiles of a customer, newest first.
func (r *WasteProfileRepo) ListByUser(ctx context.Context, userID uint64) ([]model.WasteProfile, error) {
	return r.list(ctx, `SELECT `+profileColumns+` FROM waste_profiles p WHERE p.user_id = ? ORDER BY p.id DESC`, userID)
}

// ListGeolocatedByUser returns the customer's profiles that carry both
// coordinates.
func (r *WasteProfileRepo) ListGeolocatedByUser(ctx context.Context, userID uint64) ([]model.WasteProfile, error) {
	return r.list(ctx, `SELECT `+profileColumns+` FROM waste_profiles p
		WHERE p.user_id = ? AND p.latitude IS NOT NULL AND p.longitude IS NOT NULL
		ORDER BY p.id DESC`, userID)
}

// ListByCollector returns the profiles assigned to a collector.
func (r *WasteProfileRepo) ListByCollector(ctx context.Context, collectorID uint64) ([]model.WasteProfile, error) {
	return r.list(ctx, `SELECT `+profileColumns+` FROM waste_profiles p
		WHERE p.assigned_collector_id = ? ORDER BY p.id DESC`, collectorID)
}

func (r *WasteProfileRepo) list(ctx context.Context, q string, args ...any) ([]model.WasteProfile, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.WasteProfile{}
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Search returns one page of profiles ordered by id descending along with
// the total match count.  A non-empty term matches the owner's first or
// last name, contact number, or the pickup address.
func (r *WasteProfileRepo) Search(ctx context.Context, term string, page, pageSize int) ([]ProfileListing, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	where := ""
	args := []any{}
	if term = strings.TrimSpace(term); term != "" {
		like := "%" + term + "%"
		where = ` WHERE u.first_name LIKE ? OR u.last_name LIKE ? OR u.contact_number LIKE ? OR p.pickup_address LIKE ?`
		args = append(args, like, like, like, like)
	}

	var total int
	countQ := `SELECT COUNT(*) FROM waste_profiles p JOIN users u ON u.id = p.user_id` + where
	if err := r.db.QueryRowContext(ctx, countQ, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	listQ := `SELECT ` + profileColumns + `, CONCAT(u.first_name, ' ', u.last_name), u.contact_number
		FROM waste_profiles p JOIN users u ON u.id = p.user_id` + where + `
		ORDER BY p.id DESC LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, listQ, append(args, pageSize, (page-1)*pageSize)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	out := []ProfileListing{}
	for rows.Next() {
		var l ProfileListing
		p, err := scanProfile(rows, &l.CustomerName, &l.ContactNumber)
		if err != nil {
			return nil, 0, err
		}
		l.WasteProfile = p
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// Delete removes a profile.  It returns ErrProfileNotFound when the id is
// unknown.
func (r *WasteProfileRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM waste_profiles WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return expectOneRow(res, ErrProfileNotFound)
}

// DeleteForUser removes a profile only if userID owns it.
func (r *WasteProfileRepo) DeleteForUser(ctx context.Context, id, userID uint64) error {
	if _, err := r.GetForUser(ctx, id, userID); err != nil {
		return err
	}
	return r.Delete(ctx, id)
}

// AssignCollector sets the collector of a profile and marks it assigned.
func (r *WasteProfileRepo) AssignCollector(ctx context.Context, id, collectorID uint64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE waste_profiles SET assigned_collector_id = ?, status = ? WHERE id = ?`,
		collectorID, model.ProfileStatusAssigned, id)
	if err != nil {
		return err
	}
	return expectOneRow(res, ErrProfileNotFound)
}

// MarkCollected flags a profile as collected.
func (r *WasteProfileRepo) MarkCollected(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE waste_profiles SET status = ? WHERE id = ?`, model.ProfileStatusCollected, id)
	if err != nil {
		return err
	}
	return expectOneRow(res, ErrProfileNotFound)
}

// expectOneRow maps a zero-row write to notFound.  The connection is opened
// with clientFoundRows, so an UPDATE that matches but changes nothing still
// counts as one row.
func expectOneRow(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
