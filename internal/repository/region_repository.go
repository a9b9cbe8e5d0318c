package repository

import (
    "context"
    "database/sql"
    "errors"

    "github.com/iliyamo/waste-pickup-service/internal/model"
)

// RegionRepo reads the State → District → LocalBody hierarchy.  The
// hierarchy is seeded outside this service and treated as read-only.
type RegionRepo struct {
    db *sql.DB
}

// NewRegionRepo returns a new RegionRepo bound to the given database.
func NewRegionRepo(db *sql.DB) *RegionRepo { return &RegionRepo{db: db} }

// ListStates returns all states ordered by name.
func (r *RegionRepo) ListStates(ctx context.Context) ([]model.State, error) {
    rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM states ORDER BY name`)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := []model.State{}
    for rows.Next() {
        var s model.State
        if err := rows.Scan(&s.ID, &s.Name); err != nil {
            return nil, err
        }
        out = append(out, s)
    }
    return out, rows.Err()
}

// ListDistricts returns the districts of a state ordered by name.
func (r *RegionRepo) ListDistricts(ctx context.Context, stateID uint64) ([]model.District, error) {
    rows, err := r.db.QueryContext(ctx,
        `SELECT id, state_id, name FROM districts WHERE state_id = ? ORDER BY name`, stateID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := []model.District{}
    for rows.Next() {
        var d model.District
        if err := rows.Scan(&d.ID, &d.StateID, &d.Name); err != nil {
            return nil, err
        }
        out = append(out, d)
    }
    return out, rows.Err()
}

// ListLocalBodies returns the local bodies of a district ordered by name.
func (r *RegionRepo) ListLocalBodies(ctx context.Context, districtID uint64) ([]model.LocalBody, error) {
    rows, err := r.db.QueryContext(ctx,
        `SELECT id, district_id, name, body_type FROM local_bodies WHERE district_id = ? ORDER BY name`, districtID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := []model.LocalBody{}
    for rows.Next() {
        var lb model.LocalBody
        if err := rows.Scan(&lb.ID, &lb.DistrictID, &lb.Name, &lb.BodyType); err != nil {
            return nil, err
        }
        out = append(out, lb)
    }
    return out, rows.Err()
}

// GetLocalBody loads one local body or returns ErrLocalBodyNotFound.
func (r *RegionRepo) GetLocalBody(ctx context.Context, id uint64) (model.LocalBody, error) {
    var lb model.LocalBody
    err := r.db.QueryRowContext(ctx,
        `SELECT id, district_id, name, body_type FROM local_bodies WHERE id = ?`, id).
        Scan(&lb.ID, &lb.DistrictID, &lb.Name, &lb.BodyType)
    if errors.Is(err, sql.ErrNoRows) {
        return model.LocalBody{}, ErrLocalBodyNotFound
    }
    if err != nil {
        return model.LocalBody{}, err
    }
    return lb, nil
}

// LocalBodyInDistrict reports whether the local body belongs to the
// district and the district to the state.  Profile submissions use it to
// reject mismatched region selections.
func (r *RegionRepo) LocalBodyInDistrict(ctx context.Context, stateID, districtID, localBodyID uint64) (bool, error) {
    var n int
    err := r.db.QueryRowContext(ctx,
        `SELECT COUNT(*) FROM local_bodies lb
         JOIN districts d ON d.id = lb.district_id
         WHERE lb.id = ? AND d.id = ? AND d.state_id = ?`,
        localBodyID, districtID, stateID).Scan(&n)
    if err != nil {
        return false, err
    }
    return n > 0, nil
}
