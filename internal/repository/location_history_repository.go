package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/waste-pickup-service/internal/model"
)

// LocationHistoryRepo reads the coordinate trail of waste profiles.  Rows
// are written by WasteProfileRepo inside its own transactions.
type LocationHistoryRepo struct {
	db *sql.DB
}

func NewLocationHistoryRepo(db *sql.DB) *LocationHistoryRepo { return &LocationHistoryRepo{db: db} }

// ListByProfile returns history rows newest first.  A limit of zero or
// less returns every row.
func (r *LocationHistoryRepo) ListByProfile(ctx context.Context, profileID uint64, limit int) ([]model.LocationHistory, error) {
	q := `SELECT id, waste_profile_id, latitude, longitude, changed_by, changed_at
	      FROM location_history WHERE waste_profile_id = ?
	      ORDER BY changed_at DESC, id DESC`
	args := []any{profileID}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.LocationHistory{}
	for rows.Next() {
		var (
			h  model.LocationHistory
			by sql.NullInt64
		)
		if err := rows.Scan(&h.ID, &h.WasteProfileID, &h.Latitude, &h.Longitude, &by, &h.ChangedAt); err != nil {
			return nil, err
		}
		h.ChangedBy = scanNullableID(by)
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func insertLocationHistory(ctx context.Context, q queryer, h model.LocationHistory) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO location_history (waste_profile_id, latitude, longitude, changed_by) VALUES (?, ?, ?, ?)`,
		h.WasteProfileID, h.Latitude, h.Longitude, nullableID(h.ChangedBy))
	return err
}
