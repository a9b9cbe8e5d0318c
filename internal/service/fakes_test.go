package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/iliyamo/waste-pickup-service/internal/model"
	"github.com/iliyamo/waste-pickup-service/internal/queue"
	"github.com/iliyamo/waste-pickup-service/internal/repository"
)

// memStore is an in-memory calendar and booking store with the same
// uniqueness rules as the MySQL schema.
type memStore struct {
	mu       sync.Mutex
	nextID   uint64
	entries  map[uint64]model.CalendarEntry
	bookings []model.Booking
}

func newMemStore() *memStore {
	return &memStore{entries: map[uint64]model.CalendarEntry{}}
}

func (m *memStore) id() uint64 { m.nextID++; return m.nextID }

func (m *memStore) ListByLocalBody(_ context.Context, localBodyID, customerID uint64) ([]repository.CalendarDate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []repository.CalendarDate{}
	for _, e := range m.entries {
		if e.LocalBodyID != localBodyID {
			continue
		}
		d := repository.CalendarDate{CalendarEntry: e}
		for _, b := range m.bookings {
			if b.CalendarEntryID == e.ID && b.CustomerID == customerID {
				d.Picked = true
			}
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (m *memStore) createLocked(localBodyID uint64, date time.Time) (model.CalendarEntry, bool) {
	for _, e := range m.entries {
		if e.LocalBodyID == localBodyID && e.Date.Equal(date) {
			return e, false
		}
	}
	e := model.CalendarEntry{ID: m.id(), LocalBodyID: localBodyID, Date: date}
	m.entries[e.ID] = e
	return e, true
}

func (m *memStore) CreateIfMissing(_ context.Context, localBodyID uint64, date time.Time) (model.CalendarEntry, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, created := m.createLocked(localBodyID, date)
	return e, created, nil
}

func (m *memStore) CreateRange(_ context.Context, localBodyID uint64, days []time.Time) ([]model.CalendarEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.CalendarEntry{}
	for _, d := range days {
		if e, created := m.createLocked(localBodyID, d); created {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memStore) UpdateDate(_ context.Context, id uint64, date time.Time) (model.CalendarEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[id]
	if !ok {
		return model.CalendarEntry{}, repository.ErrCalendarEntryNotFound
	}
	for _, other := range m.entries {
		if other.ID != id && other.LocalBodyID == e.LocalBodyID && other.Date.Equal(date) {
			return model.CalendarEntry{}, repository.ErrConflict
		}
	}
	e.Date = date
	m.entries[id] = e
	return e, nil
}

func (m *memStore) Delete(_ context.Context, id uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[id]; !ok {
		return repository.ErrCalendarEntryNotFound
	}
	delete(m.entries, id)
	kept := m.bookings[:0]
	for _, b := range m.bookings {
		if b.CalendarEntryID != id {
			kept = append(kept, b)
		}
	}
	m.bookings = kept
	return nil
}

func (m *memStore) bookLocked(customerID, entryID uint64, profileID *uint64) (model.Booking, bool, error) {
	if _, ok := m.entries[entryID]; !ok {
		return model.Booking{}, false, repository.ErrCalendarEntryNotFound
	}
	for _, b := range m.bookings {
		if b.CustomerID == customerID && b.CalendarEntryID == entryID {
			return b, false, nil
		}
	}
	b := model.Booking{ID: m.id(), CustomerID: customerID, WasteProfileID: profileID, CalendarEntryID: entryID}
	m.bookings = append(m.bookings, b)
	return b, true, nil
}

func (m *memStore) bookAllLocked(customerID uint64, profileID *uint64, ids []uint64) repository.LedgerResult {
	res := repository.LedgerResult{Created: []model.Booking{}, Skipped: []uint64{}, Missing: []uint64{}}
	for _, id := range ids {
		b, created, err := m.bookLocked(customerID, id, profileID)
		switch {
		case err != nil:
			res.Missing = append(res.Missing, id)
		case created:
			res.Created = append(res.Created, b)
		default:
			res.Skipped = append(res.Skipped, id)
		}
	}
	return res
}

func (m *memStore) BookEach(_ context.Context, customerID uint64, profileID *uint64, ids []uint64) (repository.LedgerResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bookAllLocked(customerID, profileID, ids), nil
}

func (m *memStore) ReplaceForProfile(_ context.Context, profileID, customerID uint64, ids []uint64) (repository.LedgerResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.bookings[:0]
	for _, b := range m.bookings {
		if b.WasteProfileID == nil || *b.WasteProfileID != profileID {
			kept = append(kept, b)
		}
	}
	m.bookings = kept
	return m.bookAllLocked(customerID, &profileID, ids), nil
}

func (m *memStore) ListForProfile(_ context.Context, profileID uint64) ([]repository.BookedDate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []repository.BookedDate{}
	for _, b := range m.bookings {
		if b.WasteProfileID != nil && *b.WasteProfileID == profileID {
			e := m.entries[b.CalendarEntryID]
			out = append(out, repository.BookedDate{
				BookingID:       b.ID,
				CalendarEntryID: e.ID,
				LocalBodyID:     e.LocalBodyID,
				Date:            e.DateString(),
				WasteProfileID:  b.WasteProfileID,
			})
		}
	}
	return out, nil
}

func (m *memStore) bookingsFor(customerID uint64) []model.Booking {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Booking{}
	for _, b := range m.bookings {
		if b.CustomerID == customerID {
			out = append(out, b)
		}
	}
	return out
}

type fakeRegions struct {
	known map[uint64]bool
}

func (f fakeRegions) GetLocalBody(_ context.Context, id uint64) (model.LocalBody, error) {
	if !f.known[id] {
		return model.LocalBody{}, repository.ErrLocalBodyNotFound
	}
	return model.LocalBody{ID: id, Name: "Kochi"}, nil
}

func (f fakeRegions) LocalBodyInDistrict(_ context.Context, _, _, localBodyID uint64) (bool, error) {
	return f.known[localBodyID], nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.PickupBookedEvent
	err    error
}

func (p *recordingPublisher) PublishPickupBooked(_ context.Context, ev queue.PickupBookedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}
