package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/waste-pickup-service/internal/model"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// ErrUserExists is returned when the email or contact number is taken.
var ErrUserExists = errors.New("email or contact number already exists")

const userColumns = "id,first_name,last_name,email,contact_number,password_hash,role,is_active,created_at,updated_at"

func scanUser(s rowScanner) (model.User, error) {
	var u model.User
	err := s.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.ContactNumber, &u.PasswordHash,
		&u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// Create inserts a user whose password is already hashed and returns its ID.
func (r *UserRepo) Create(ctx context.Context, u model.User) (uint64, error) {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (first_name,last_name,email,contact_number,password_hash,role,is_active) VALUES (?,?,?,?,?,?,?)",
		u.FirstName, u.LastName, u.Email, strings.TrimSpace(u.ContactNumber), u.PasswordHash, u.Role, u.IsActive)
	if err != nil {
		if isDuplicateKey(err) {
			return 0, ErrUserExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// Update saves name, email, contact number and active flag.  The password
// hash is only replaced when the given one is non-empty.
func (r *UserRepo) Update(ctx context.Context, u model.User) error {
	q := "UPDATE users SET first_name=?, last_name=?, email=?, contact_number=?, is_active=?"
	args := []any{u.FirstName, u.LastName, strings.ToLower(strings.TrimSpace(u.Email)), strings.TrimSpace(u.ContactNumber), u.IsActive}
	if u.PasswordHash != "" {
		q += ", password_hash=?"
		args = append(args, u.PasswordHash)
	}
	q += " WHERE id=?"
	args = append(args, u.ID)
	res, err := r.DB.ExecContext(ctx, q, args...)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrUserExists
		}
		return err
	}
	return expectOneRow(res, ErrUserNotFound)
}

// SetRole changes the role of a user.
func (r *UserRepo) SetRole(ctx context.Context, id uint64, role model.Role) error {
	res, err := r.DB.ExecContext(ctx, "UPDATE users SET role=? WHERE id=?", role, id)
	if err != nil {
		return err
	}
	return expectOneRow(res, ErrUserNotFound)
}

// Delete removes a user; their profiles and bookings cascade.
func (r *UserRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM users WHERE id=?", id)
	if err != nil {
		return err
	}
	return expectOneRow(res, ErrUserNotFound)
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return r.getOne(ctx, "SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id)
}

// GetByContact fetches a user by contact number.
func (r *UserRepo) GetByContact(ctx context.Context, contact string) (model.User, error) {
	return r.getOne(ctx, "SELECT "+userColumns+" FROM users WHERE contact_number=? LIMIT 1", strings.TrimSpace(contact))
}

func (r *UserRepo) getOne(ctx context.Context, q string, arg any) (model.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx, q, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrUserNotFound
	}
	return u, err
}

// List returns users ordered by id.  A nil role lists everyone.
func (r *UserRepo) List(ctx context.Context, role *model.Role) ([]model.User, error) {
	q := "SELECT " + userColumns + " FROM users"
	args := []any{}
	if role != nil {
		q += " WHERE role=?"
		args = append(args, *role)
	}
	q += " ORDER BY id"
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
