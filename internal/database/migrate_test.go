package database

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestStatementsSplitSchema(t *testing.T) {
	stmts := Statements()
	if len(stmts) != 9 {
		t.Fatalf("expected 9 statements, got %d", len(stmts))
	}
	for i, s := range stmts {
		if !strings.HasPrefix(s, "CREATE TABLE IF NOT EXISTS") {
			t.Errorf("statement %d does not start with CREATE TABLE: %.40q", i, s)
		}
		if strings.Contains(s, "--") {
			t.Errorf("statement %d still carries a comment", i)
		}
	}
}

func TestSchemaDeclaresBookingConstraints(t *testing.T) {
	joined := strings.Join(Statements(), "\n")
	for _, want := range []string{
		"UNIQUE KEY uq_calendar_localbody_date (localbody_id, pickup_date)",
		"UNIQUE KEY uq_booking_customer_entry (customer_id, calendar_entry_id)",
		"REFERENCES calendar_entries (id) ON DELETE CASCADE",
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("schema missing %q", want)
		}
	}
}

func TestMigrateStopsOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS states").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS districts").WillReturnError(errors.New("boom"))

	err = Migrate(context.Background(), db)
	if err == nil || !strings.Contains(err.Error(), "schema statement 2") {
		t.Fatalf("expected wrapped error for statement 2, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}
