package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/waste-pickup-service/internal/model"
)

// CollectionRepo stores waste collections recorded by collectors and
// aggregates them for reports.
type CollectionRepo struct {
	db *sql.DB
}

func NewCollectionRepo(db *sql.DB) *CollectionRepo { return &CollectionRepo{db: db} }

// CollectionListing is a collection joined with the customer's name.
type CollectionListing struct {
	model.WasteCollection
	CustomerName string `json:"customer_name"`
}

// ReportFilter narrows a report.  Zero values mean "no filter".  Start and
// End are inclusive calendar days compared against the collection date.
type ReportFilter struct {
	Start       *time.Time
	End         *time.Time
	StateID     uint64
	DistrictID  uint64
	LocalBodyID uint64
}

// ReportRow is one state/district/local body/day bucket.
type ReportRow struct {
	State       string  `json:"state"`
	District    string  `json:"district"`
	LocalBody   string  `json:"localbody"`
	Day         string  `json:"date"`
	TotalWeight float64 `json:"total_weight"`
	OrderCount  int     `json:"order_count"`
}

// ReportSummary totals every collection matching the filter.
type ReportSummary struct {
	TotalWeight float64 `json:"total_weight"`
	TotalOrders int     `json:"total_orders"`
}

// Create records a collection and returns its id.
func (r *CollectionRepo) Create(ctx context.Context, c model.WasteCollection) (uint64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO waste_collections (customer_id, collector_id, waste_profile_id, kg) VALUES (?, ?, ?, ?)`,
		c.CustomerID, c.CollectorID, nullableID(c.WasteProfileID), c.Kg)
	if err != nil {
		if isMissingReference(err) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// ListAll returns every collection newest first.
func (r *CollectionRepo) ListAll(ctx context.Context) ([]CollectionListing, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT c.id, c.customer_id, c.collector_id, c.waste_profile_id, c.kg, c.created_at,
		        CONCAT(u.first_name, ' ', u.last_name)
		 FROM waste_collections c JOIN users u ON u.id = c.customer_id
		 ORDER BY c.created_at DESC, c.id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []CollectionListing{}
	for rows.Next() {
		var (
			l       CollectionListing
			profile sql.NullInt64
		)
		if err := rows.Scan(&l.ID, &l.CustomerID, &l.CollectorID, &profile, &l.Kg, &l.CreatedAt, &l.CustomerName); err != nil {
			return nil, err
		}
		l.WasteProfileID = scanNullableID(profile)
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Report aggregates collections by state, district, local body and day.
// Collections are located through the waste profile they were made for.
func (r *CollectionRepo) Report(ctx context.Context, f ReportFilter) ([]ReportRow, ReportSummary, error) {
	from := ` FROM waste_collections c
		JOIN waste_profiles p ON p.id = c.waste_profile_id
		JOIN states s ON s.id = p.state_id
		JOIN districts d ON d.id = p.district_id
		JOIN local_bodies lb ON lb.id = p.localbody_id
		WHERE 1=1`
	args := []any{}
	if f.Start != nil {
		from += ` AND DATE(c.created_at) >= ?`
		args = append(args, f.Start.Format(model.DateLayout))
	}
	if f.End != nil {
		from += ` AND DATE(c.created_at) <= ?`
		args = append(args, f.End.Format(model.DateLayout))
	}
	if f.StateID != 0 {
		from += ` AND p.state_id = ?`
		args = append(args, f.StateID)
	}
	if f.DistrictID != 0 {
		from += ` AND p.district_id = ?`
		args = append(args, f.DistrictID)
	}
	if f.LocalBodyID != 0 {
		from += ` AND p.localbody_id = ?`
		args = append(args, f.LocalBodyID)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT s.name, d.name, lb.name, DATE(c.created_at) AS day, SUM(c.kg), COUNT(c.id)`+from+`
		 GROUP BY s.name, d.name, lb.name, day
		 ORDER BY s.name, d.name, lb.name, day`, args...)
	if err != nil {
		return nil, ReportSummary{}, err
	}
	defer rows.Close()
	out := []ReportRow{}
	for rows.Next() {
		var (
			row ReportRow
			day time.Time
		)
		if err := rows.Scan(&row.State, &row.District, &row.LocalBody, &day, &row.TotalWeight, &row.OrderCount); err != nil {
			return nil, ReportSummary{}, err
		}
		row.Day = day.Format(model.DateLayout)
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, ReportSummary{}, err
	}

	var (
		sum     ReportSummary
		totalKg sql.NullFloat64
	)
	if err := r.db.QueryRowContext(ctx, `SELECT SUM(c.kg), COUNT(c.id)`+from, args...).Scan(&totalKg, &sum.TotalOrders); err != nil {
		return nil, ReportSummary{}, err
	}
	sum.TotalWeight = totalKg.Float64
	return out, sum, nil
}
