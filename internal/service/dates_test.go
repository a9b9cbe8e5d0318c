package service

import (
	"errors"
	"testing"
	"time"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := ParseDate(s)
	if err != nil {
		t.Fatalf("ParseDate(%q): %v", s, err)
	}
	return d
}

func TestParseDate(t *testing.T) {
	cases := []struct {
		in      string
		wantErr bool
	}{
		{"2025-01-01", false},
		{" 2025-01-31 ", false},
		{"", true},
		{"2025-02-30", true},
		{"01/02/2025", true},
		{"2025-01-01T10:00:00Z", true},
	}
	for _, c := range cases {
		_, err := ParseDate(c.in)
		if (err != nil) != c.wantErr {
			t.Errorf("ParseDate(%q) err=%v, wantErr=%v", c.in, err, c.wantErr)
		}
		if err != nil && !errors.Is(err, ErrInvalidInput) {
			t.Errorf("ParseDate(%q) error is not ErrInvalidInput: %v", c.in, err)
		}
	}
}

func TestParseDatePrefixKeepsDatePart(t *testing.T) {
	d, err := ParseDatePrefix("2025-03-01T00:00:00+05:30")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := d.Format("2006-01-02"); got != "2025-03-01" {
		t.Fatalf("got %s", got)
	}
	if d.Location() != time.UTC {
		t.Fatalf("expected UTC, got %s", d.Location())
	}
}

func TestExpandRangeInclusive(t *testing.T) {
	days, err := ExpandRange(mustDate(t, "2025-01-01"), mustDate(t, "2025-01-03"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"2025-01-01", "2025-01-02", "2025-01-03"}
	if len(days) != len(want) {
		t.Fatalf("expected %d days, got %d", len(want), len(days))
	}
	for i, d := range days {
		if d.Format("2006-01-02") != want[i] {
			t.Errorf("day %d = %s, want %s", i, d.Format("2006-01-02"), want[i])
		}
	}
}

func TestExpandRangeSingleDayAndMonthBoundary(t *testing.T) {
	days, err := ExpandRange(mustDate(t, "2024-02-28"), mustDate(t, "2024-03-01"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(days) != 3 {
		t.Fatalf("leap year range: expected 3 days, got %d", len(days))
	}
	one, err := ExpandRange(mustDate(t, "2025-05-05"), mustDate(t, "2025-05-05"))
	if err != nil || len(one) != 1 {
		t.Fatalf("single day: got %v, %v", one, err)
	}
}

func TestExpandRangeRejects(t *testing.T) {
	if _, err := ExpandRange(mustDate(t, "2025-01-03"), mustDate(t, "2025-01-01")); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("start after end: expected ErrInvalidInput, got %v", err)
	}
	if _, err := ExpandRange(mustDate(t, "2025-01-01"), mustDate(t, "2026-01-02")); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("367 days: expected ErrInvalidInput, got %v", err)
	}
	if _, err := ExpandRange(mustDate(t, "2024-01-01"), mustDate(t, "2024-12-31")); err != nil {
		t.Fatalf("366 days must be accepted: %v", err)
	}
}
