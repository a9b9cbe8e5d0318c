package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func day(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

func q(s string) string { return regexp.QuoteMeta(s) }

func TestCalendarCreateIfMissingInserts(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(q("INSERT IGNORE INTO calendar_entries")).
		WithArgs(7, "2025-03-01").
		WillReturnResult(sqlmock.NewResult(11, 1))

	entry, created, err := NewCalendarRepo(db).CreateIfMissing(context.Background(), 7, day("2025-03-01"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !created || entry.ID != 11 || entry.DateString() != "2025-03-01" {
		t.Fatalf("got %+v created=%v", entry, created)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestCalendarCreateIfMissingReturnsExisting(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(q("INSERT IGNORE INTO calendar_entries")).
		WithArgs(7, "2025-03-01").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(q("FROM calendar_entries WHERE localbody_id = ? AND pickup_date = ?")).
		WithArgs(7, "2025-03-01").
		WillReturnRows(sqlmock.NewRows([]string{"id", "localbody_id", "pickup_date"}).AddRow(4, 7, day("2025-03-01")))

	entry, created, err := NewCalendarRepo(db).CreateIfMissing(context.Background(), 7, day("2025-03-01"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created {
		t.Fatal("existing date reported as created")
	}
	if entry.ID != 4 {
		t.Fatalf("expected existing entry 4, got %d", entry.ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestCalendarCreateIfMissingUnknownLocalBody(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(q("INSERT IGNORE INTO calendar_entries")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(q("FROM calendar_entries WHERE localbody_id = ?")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "localbody_id", "pickup_date"}))

	_, _, err := NewCalendarRepo(db).CreateIfMissing(context.Background(), 99, day("2025-03-01"))
	if !errors.Is(err, ErrLocalBodyNotFound) || !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected local body not found, got %v", err)
	}
}

func TestCalendarCreateRangeReturnsOnlyNewEntries(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectExec(q("INSERT IGNORE INTO calendar_entries")).
		WithArgs(7, "2025-03-01").WillReturnResult(sqlmock.NewResult(21, 1))
	mock.ExpectExec(q("INSERT IGNORE INTO calendar_entries")).
		WithArgs(7, "2025-03-02").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(q("FROM calendar_entries WHERE localbody_id = ?")).
		WithArgs(7, "2025-03-02").
		WillReturnRows(sqlmock.NewRows([]string{"id", "localbody_id", "pickup_date"}).AddRow(5, 7, day("2025-03-02")))
	mock.ExpectExec(q("INSERT IGNORE INTO calendar_entries")).
		WithArgs(7, "2025-03-03").WillReturnResult(sqlmock.NewResult(22, 1))
	mock.ExpectCommit()

	days := []time.Time{day("2025-03-01"), day("2025-03-02"), day("2025-03-03")}
	created, err := NewCalendarRepo(db).CreateRange(context.Background(), 7, days)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(created) != 2 || created[0].ID != 21 || created[1].ID != 22 {
		t.Fatalf("unexpected created entries: %+v", created)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestCalendarCreateRangeSeesDayCommittedMidTransaction(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectExec(q("INSERT IGNORE INTO calendar_entries")).
		WithArgs(7, "2025-03-01").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(q("WHERE localbody_id = ? AND pickup_date = ?") + `\s+LOCK IN SHARE MODE`).
		WithArgs(7, "2025-03-01").
		WillReturnRows(sqlmock.NewRows([]string{"id", "localbody_id", "pickup_date"}).AddRow(5, 7, day("2025-03-01")))
	// another admin commits 03-02 after the snapshot above
	mock.ExpectExec(q("INSERT IGNORE INTO calendar_entries")).
		WithArgs(7, "2025-03-02").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(q("WHERE localbody_id = ? AND pickup_date = ?") + `\s+LOCK IN SHARE MODE`).
		WithArgs(7, "2025-03-02").
		WillReturnRows(sqlmock.NewRows([]string{"id", "localbody_id", "pickup_date"}).AddRow(6, 7, day("2025-03-02")))
	mock.ExpectCommit()

	days := []time.Time{day("2025-03-01"), day("2025-03-02")}
	created, err := NewCalendarRepo(db).CreateRange(context.Background(), 7, days)
	if err != nil {
		t.Fatalf("concurrently created day must not fail the range: %v", err)
	}
	if len(created) != 0 {
		t.Fatalf("expected nothing new, got %+v", created)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestCalendarUpdateDateConflict(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery(q("FROM calendar_entries WHERE id = ? FOR UPDATE")).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"id", "localbody_id", "pickup_date"}).AddRow(3, 7, day("2025-03-01")))
	mock.ExpectQuery(q("SELECT COUNT(*) FROM calendar_entries")).
		WithArgs(7, "2025-03-05", 3).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(1))
	mock.ExpectRollback()

	_, err := NewCalendarRepo(db).UpdateDate(context.Background(), 3, day("2025-03-05"))
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestCalendarUpdateDateRacedDuplicateIsConflict(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery(q("FOR UPDATE")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "localbody_id", "pickup_date"}).AddRow(3, 7, day("2025-03-01")))
	mock.ExpectQuery(q("SELECT COUNT(*)")).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(0))
	mock.ExpectExec(q("UPDATE calendar_entries SET pickup_date = ?")).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})
	mock.ExpectRollback()

	_, err := NewCalendarRepo(db).UpdateDate(context.Background(), 3, day("2025-03-05"))
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestCalendarUpdateDateMoves(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery(q("FOR UPDATE")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "localbody_id", "pickup_date"}).AddRow(3, 7, day("2025-03-01")))
	mock.ExpectQuery(q("SELECT COUNT(*)")).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(0))
	mock.ExpectExec(q("UPDATE calendar_entries SET pickup_date = ?")).
		WithArgs("2025-03-05", 3).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	entry, err := NewCalendarRepo(db).UpdateDate(context.Background(), 3, day("2025-03-05"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.DateString() != "2025-03-05" || entry.LocalBodyID != 7 {
		t.Fatalf("unexpected entry %+v", entry)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestCalendarUpdateDateMissing(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery(q("FOR UPDATE")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "localbody_id", "pickup_date"}))
	mock.ExpectRollback()

	_, err := NewCalendarRepo(db).UpdateDate(context.Background(), 3, day("2025-03-05"))
	if !errors.Is(err, ErrCalendarEntryNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCalendarDeleteRemovesBookingsFirst(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectExec(q("DELETE FROM pickup_bookings WHERE calendar_entry_id = ?")).
		WithArgs(3).WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(q("DELETE FROM calendar_entries WHERE id = ?")).
		WithArgs(3).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := NewCalendarRepo(db).Delete(context.Background(), 3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestCalendarDeleteMissing(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectExec(q("DELETE FROM pickup_bookings")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(q("DELETE FROM calendar_entries")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := NewCalendarRepo(db).Delete(context.Background(), 3)
	if !errors.Is(err, ErrCalendarEntryNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestCalendarListMarksPicked(t *testing.T) {
	db, mock := newMock(t)
	rows := sqlmock.NewRows([]string{"id", "localbody_id", "pickup_date", "picked"}).
		AddRow(1, 7, day("2025-03-01"), false).
		AddRow(2, 7, day("2025-03-08"), true)
	mock.ExpectQuery(q("FROM calendar_entries c")).WithArgs(3, 7).WillReturnRows(rows)

	dates, err := NewCalendarRepo(db).ListByLocalBody(context.Background(), 7, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(dates) != 2 {
		t.Fatalf("expected 2 dates, got %d", len(dates))
	}
	if dates[0].Picked || !dates[1].Picked {
		t.Fatalf("picked flags wrong: %+v", dates)
	}
	if dates[1].DateString() != "2025-03-08" {
		t.Fatalf("unexpected date %s", dates[1].DateString())
	}
}
