// Package repository defines the MySQL data access layer and the error
// values shared across repositories.  Sentinel values allow higher layers
// such as services and handlers to distinguish failure scenarios without
// inspecting driver errors.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is the root of every "row does not exist" error.  Entity
// specific values wrap it, so errors.Is(err, ErrNotFound) matches all of them.
var ErrNotFound = errors.New("not found")

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own.  Handlers translate it into 403.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when an insert or update would violate a
// uniqueness rule, such as moving a calendar entry onto a date its local
// body already offers.  Handlers translate it into 409.
var ErrConflict = errors.New("conflict")

var (
	ErrCalendarEntryNotFound = fmt.Errorf("calendar entry %w", ErrNotFound)
	ErrBookingNotFound       = fmt.Errorf("booking %w", ErrNotFound)
	ErrLocalBodyNotFound     = fmt.Errorf("local body %w", ErrNotFound)
	ErrProfileNotFound       = fmt.Errorf("waste profile %w", ErrNotFound)
	ErrUserNotFound          = fmt.Errorf("user %w", ErrNotFound)
)

// MySQL server error numbers the repositories react to.
const (
	errDuplicateEntry  = 1062
	errNoReferencedRow = 1452
)

// isDuplicateKey reports whether err is a unique-key violation.
func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == errDuplicateEntry
}

// isMissingReference reports whether err is a foreign-key violation on
// insert, i.e. the referenced parent row does not exist.
func isMissingReference(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == errNoReferencedRow
}

// queryer is satisfied by both *sql.DB and *sql.Tx so single-row helpers
// can run inside or outside a transaction.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// withTx runs fn inside a transaction and commits when fn returns nil.
// Any error, including a failed commit, rolls the transaction back.
func withTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// nullableID converts an optional id to a driver value.
func nullableID(id *uint64) any {
	if id == nil {
		return nil
	}
	return *id
}

// scanNullableID converts a scanned NULL-able id column back to *uint64.
func scanNullableID(v sql.NullInt64) *uint64 {
	if !v.Valid {
		return nil
	}
	id := uint64(v.Int64)
	return &id
}
