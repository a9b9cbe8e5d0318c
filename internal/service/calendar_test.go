package service

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/iliyamo/waste-pickup-service/internal/repository"
	"github.com/iliyamo/waste-pickup-service/pkg/logger"
	"github.com/iliyamo/waste-pickup-service/pkg/metrics"
)

func newCalendarService(store *memStore) (*CalendarService, *metrics.Metrics) {
	m := metrics.NewMetrics(prometheus.NewRegistry(), "test")
	regions := fakeRegions{known: map[uint64]bool{12: true}}
	return NewCalendarService(store, regions, logger.NewNop(), m), m
}

func TestCreateDateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc, _ := newCalendarService(newMemStore())

	first, created, err := svc.CreateDate(ctx, 12, "2025-01-01")
	if err != nil || !created {
		t.Fatalf("first create: created=%v err=%v", created, err)
	}
	second, created, err := svc.CreateDate(ctx, 12, "2025-01-01")
	if err != nil {
		t.Fatalf("second create: %v", err)
	}
	if created {
		t.Fatal("second create reported a new entry")
	}
	if second != first {
		t.Fatalf("second create returned %+v, want %+v", second, first)
	}
	dates, _ := svc.ListDates(ctx, 12, 0)
	if len(dates) != 1 {
		t.Fatalf("expected exactly one persisted entry, got %d", len(dates))
	}
}

func TestCreateDateValidation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newCalendarService(newMemStore())

	if _, _, err := svc.CreateDate(ctx, 12, "not-a-date"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, _, err := svc.CreateDate(ctx, 99, "2025-01-01"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected not found for unknown local body, got %v", err)
	}
}

func TestCreateDateRangeRerunCreatesNothing(t *testing.T) {
	ctx := context.Background()
	svc, m := newCalendarService(newMemStore())

	created, err := svc.CreateDateRange(ctx, 12, "2025-01-01", "2025-01-03")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(created) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(created))
	}
	for i, want := range []string{"2025-01-01", "2025-01-02", "2025-01-03"} {
		if created[i].DateString() != want {
			t.Errorf("entry %d = %s, want %s", i, created[i].DateString(), want)
		}
	}

	again, err := svc.CreateDateRange(ctx, 12, "2025-01-01", "2025-01-03")
	if err != nil {
		t.Fatalf("rerun: %v", err)
	}
	if len(again) != 0 {
		t.Fatalf("rerun should create nothing, got %d", len(again))
	}
	if got := testutil.ToFloat64(m.CalendarDatesCreated); got != 3 {
		t.Fatalf("calendar dates metric = %v, want 3", got)
	}
}

func TestCreateDateRangeSkipsExistingDays(t *testing.T) {
	ctx := context.Background()
	svc, _ := newCalendarService(newMemStore())
	if _, _, err := svc.CreateDate(ctx, 12, "2025-01-02"); err != nil {
		t.Fatal(err)
	}
	created, err := svc.CreateDateRange(ctx, 12, "2025-01-01", "2025-01-05")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(created) != 4 {
		t.Fatalf("expected 4 new entries, got %d", len(created))
	}
}

func TestCreateDateRangeInvalid(t *testing.T) {
	ctx := context.Background()
	svc, _ := newCalendarService(newMemStore())
	cases := [][2]string{
		{"2025-01-03", "2025-01-01"},
		{"", "2025-01-01"},
		{"2025-01-01", "garbage"},
	}
	for _, c := range cases {
		if _, err := svc.CreateDateRange(ctx, 12, c[0], c[1]); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("range %q..%q: expected ErrInvalidInput, got %v", c[0], c[1], err)
		}
	}
}

func TestUpdateDateConflictLeavesEntriesUnchanged(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc, _ := newCalendarService(store)
	a, _, _ := svc.CreateDate(ctx, 12, "2025-01-01")
	b, _, _ := svc.CreateDate(ctx, 12, "2025-01-02")

	_, err := svc.UpdateDate(ctx, a.ID, "2025-01-02T00:00:00")
	if !errors.Is(err, repository.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if store.entries[a.ID].DateString() != "2025-01-01" || store.entries[b.ID].DateString() != "2025-01-02" {
		t.Fatal("conflicting update modified an entry")
	}

	moved, err := svc.UpdateDate(ctx, a.ID, "2025-01-09T08:30:00.000Z")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if moved.DateString() != "2025-01-09" {
		t.Fatalf("moved to %s", moved.DateString())
	}
}

func TestUpdateDateToItsOwnDate(t *testing.T) {
	ctx := context.Background()
	svc, _ := newCalendarService(newMemStore())
	a, _, _ := svc.CreateDate(ctx, 12, "2025-01-01")
	if _, err := svc.UpdateDate(ctx, a.ID, "2025-01-01"); err != nil {
		t.Fatalf("updating to the same date must not conflict: %v", err)
	}
}

func TestDeleteDateCascadesBookings(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc, _ := newCalendarService(store)
	e, _, _ := svc.CreateDate(ctx, 12, "2025-01-01")
	if _, err := store.BookEach(ctx, 3, nil, []uint64{e.ID}); err != nil {
		t.Fatal(err)
	}

	if err := svc.DeleteDate(ctx, e.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := len(store.bookingsFor(3)); n != 0 {
		t.Fatalf("expected bookings to be removed, %d left", n)
	}
	if err := svc.DeleteDate(ctx, e.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("second delete: expected not found, got %v", err)
	}
}

func TestListDatesMarksPicked(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc, _ := newCalendarService(store)
	a, _, _ := svc.CreateDate(ctx, 12, "2025-01-02")
	b, _, _ := svc.CreateDate(ctx, 12, "2025-01-01")
	_, _ = store.BookEach(ctx, 3, nil, []uint64{a.ID})

	dates, err := svc.ListDates(ctx, 12, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(dates) != 2 || dates[0].ID != b.ID {
		t.Fatalf("expected dates ordered by day, got %+v", dates)
	}
	if dates[0].Picked || !dates[1].Picked {
		t.Fatalf("picked flags wrong: %+v", dates)
	}
	other, _ := svc.ListDates(ctx, 12, 4)
	for _, d := range other {
		if d.Picked {
			t.Fatal("another customer's booking leaked into picked")
		}
	}
}
