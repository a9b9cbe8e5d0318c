package service

import (
	"context"
	"time"

	"github.com/iliyamo/waste-pickup-service/internal/model"
	"github.com/iliyamo/waste-pickup-service/internal/repository"
	"github.com/iliyamo/waste-pickup-service/pkg/logger"
	"github.com/iliyamo/waste-pickup-service/pkg/metrics"
)

// CalendarStore is the persistence the calendar workflow needs.
// *repository.CalendarRepo satisfies it.
type CalendarStore interface {
	ListByLocalBody(ctx context.Context, localBodyID, customerID uint64) ([]repository.CalendarDate, error)
	CreateIfMissing(ctx context.Context, localBodyID uint64, date time.Time) (model.CalendarEntry, bool, error)
	CreateRange(ctx context.Context, localBodyID uint64, days []time.Time) ([]model.CalendarEntry, error)
	UpdateDate(ctx context.Context, id uint64, date time.Time) (model.CalendarEntry, error)
	Delete(ctx context.Context, id uint64) error
}

// LocalBodyLookup resolves a local body id.  *repository.RegionRepo
// satisfies it.
type LocalBodyLookup interface {
	GetLocalBody(ctx context.Context, id uint64) (model.LocalBody, error)
}

// CalendarService validates raw form values and drives the calendar store.
type CalendarService struct {
	store   CalendarStore
	regions LocalBodyLookup
	log     logger.Logger
	metrics *metrics.Metrics
}

func NewCalendarService(store CalendarStore, regions LocalBodyLookup, log logger.Logger, m *metrics.Metrics) *CalendarService {
	return &CalendarService{store: store, regions: regions, log: log, metrics: m}
}

// ListDates returns the calendar of a local body with the customer's
// bookings marked as picked.
func (s *CalendarService) ListDates(ctx context.Context, localBodyID, customerID uint64) ([]repository.CalendarDate, error) {
	return s.store.ListByLocalBody(ctx, localBodyID, customerID)
}

// CreateDate adds one date.  Creating an existing date returns the stored
// entry with created=false.
func (s *CalendarService) CreateDate(ctx context.Context, localBodyID uint64, raw string) (model.CalendarEntry, bool, error) {
	date, err := ParseDate(raw)
	if err != nil {
		return model.CalendarEntry{}, false, err
	}
	if _, err := s.regions.GetLocalBody(ctx, localBodyID); err != nil {
		return model.CalendarEntry{}, false, err
	}
	entry, created, err := s.store.CreateIfMissing(ctx, localBodyID, date)
	if err != nil {
		s.metrics.IncError("calendar_create")
		return model.CalendarEntry{}, false, err
	}
	if created {
		s.metrics.AddCalendarDates(1)
		s.log.Info("calendar date created", "localbody_id", localBodyID, "entry_id", entry.ID, "date", entry.DateString())
	}
	return entry, created, nil
}

// CreateDateRange adds every day between rawStart and rawEnd inclusive and
// returns the entries that did not exist before.
func (s *CalendarService) CreateDateRange(ctx context.Context, localBodyID uint64, rawStart, rawEnd string) ([]model.CalendarEntry, error) {
	start, err := ParseDate(rawStart)
	if err != nil {
		return nil, err
	}
	end, err := ParseDate(rawEnd)
	if err != nil {
		return nil, err
	}
	days, err := ExpandRange(start, end)
	if err != nil {
		return nil, err
	}
	if _, err := s.regions.GetLocalBody(ctx, localBodyID); err != nil {
		return nil, err
	}
	created, err := s.store.CreateRange(ctx, localBodyID, days)
	if err != nil {
		s.metrics.IncError("calendar_create_range")
		return nil, err
	}
	s.metrics.AddCalendarDates(len(created))
	s.log.Info("calendar range created",
		"localbody_id", localBodyID,
		"start", start.Format(model.DateLayout),
		"end", end.Format(model.DateLayout),
		"requested", len(days),
		"created", len(created))
	return created, nil
}

// UpdateDate moves an entry.  rawDate may be a full ISO datetime; only the
// date part is used.
func (s *CalendarService) UpdateDate(ctx context.Context, id uint64, rawDate string) (model.CalendarEntry, error) {
	date, err := ParseDatePrefix(rawDate)
	if err != nil {
		return model.CalendarEntry{}, err
	}
	entry, err := s.store.UpdateDate(ctx, id, date)
	if err != nil {
		return model.CalendarEntry{}, err
	}
	s.log.Info("calendar date moved", "entry_id", id, "date", entry.DateString())
	return entry, nil
}

// DeleteDate removes an entry and the bookings made against it.
func (s *CalendarService) DeleteDate(ctx context.Context, id uint64) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("calendar date deleted", "entry_id", id)
	return nil
}
