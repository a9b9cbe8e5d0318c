package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/iliyamo/waste-pickup-service/internal/queue"
	"github.com/iliyamo/waste-pickup-service/internal/repository"
	"github.com/iliyamo/waste-pickup-service/pkg/logger"
	"github.com/iliyamo/waste-pickup-service/pkg/metrics"
)

// BookingCap is the maximum number of dates one profile submission books.
const BookingCap = 4

// BookingLedger is the part of *repository.BookingRepo the coordinator uses.
type BookingLedger interface {
	BookEach(ctx context.Context, customerID uint64, profileID *uint64, entryIDs []uint64) (repository.LedgerResult, error)
	ReplaceForProfile(ctx context.Context, profileID, customerID uint64, entryIDs []uint64) (repository.LedgerResult, error)
}

// EventPublisher announces created bookings.  *queue.Publisher satisfies it.
type EventPublisher interface {
	PublishPickupBooked(ctx context.Context, ev queue.PickupBookedEvent) error
}

// Selection is a parsed selected_date value.
type Selection struct {
	IDs       []uint64 // accepted ids in submission order, at most BookingCap
	Malformed []string // tokens that are not positive integers
	Truncated []uint64 // valid ids beyond the cap
}

// ParseSelection splits raw on commas.  Empty tokens are ignored, tokens
// that are not positive integers are reported as malformed and ids past
// BookingCap as truncated.  It never fails.
func ParseSelection(raw string) Selection {
	sel := Selection{IDs: []uint64{}, Malformed: []string{}, Truncated: []uint64{}}
	for _, tok := range strings.Split(raw, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		id, err := strconv.ParseUint(tok, 10, 64)
		if err != nil || id == 0 {
			sel.Malformed = append(sel.Malformed, tok)
			continue
		}
		if len(sel.IDs) >= BookingCap {
			sel.Truncated = append(sel.Truncated, id)
			continue
		}
		sel.IDs = append(sel.IDs, id)
	}
	return sel
}

// Submission is one selected_date value arriving with a profile create or
// update.  Replace selects the update flow, where the profile's previous
// bookings are swapped for the new selection.
type Submission struct {
	CustomerID uint64
	ProfileID  uint64 // 0 when the booking is not tied to a profile
	Raw        string
	Replace    bool
}

// Outcome reports what a submission did.  Callers build user-facing
// messages from it.
type Outcome struct {
	Requested  int      `json:"requested"`   // ids considered after the cap
	Booked     int      `json:"booked"`      // bookings created
	BookingIDs []uint64 `json:"booking_ids"` // ids of the created bookings
	Skipped    []uint64 `json:"skipped"`     // entries already booked or repeated
	Invalid    []uint64 `json:"invalid"`     // ids with no calendar entry
	Malformed  []string `json:"malformed"`
	Truncated  []uint64 `json:"truncated"`
}

// HasWarnings reports whether any submitted token was dropped.
func (o Outcome) HasWarnings() bool {
	return len(o.Invalid)+len(o.Malformed)+len(o.Truncated) > 0
}

func emptyOutcome() Outcome {
	return Outcome{
		BookingIDs: []uint64{},
		Skipped:    []uint64{},
		Invalid:    []uint64{},
		Malformed:  []string{},
		Truncated:  []uint64{},
	}
}

// Coordinator turns a raw selected_date value into bookings.  Bad input
// degrades to the valid subset; only storage failures are returned.
type Coordinator struct {
	ledger    BookingLedger
	publisher EventPublisher
	log       logger.Logger
	metrics   *metrics.Metrics
}

// NewCoordinator wires a coordinator.  publisher may be nil.
func NewCoordinator(ledger BookingLedger, publisher EventPublisher, log logger.Logger, m *metrics.Metrics) *Coordinator {
	return &Coordinator{ledger: ledger, publisher: publisher, log: log, metrics: m}
}

// Submit books the selection.  A blank Raw is a no-op in both flows, so
// editing a profile without touching the dates keeps its bookings.
func (c *Coordinator) Submit(ctx context.Context, s Submission) (Outcome, error) {
	out := emptyOutcome()
	if strings.TrimSpace(s.Raw) == "" {
		return out, nil
	}

	sel := ParseSelection(s.Raw)
	out.Requested = len(sel.IDs)
	out.Malformed = sel.Malformed
	out.Truncated = sel.Truncated

	unique := make([]uint64, 0, len(sel.IDs))
	repeated := []uint64{}
	seen := make(map[uint64]struct{}, len(sel.IDs))
	for _, id := range sel.IDs {
		if _, ok := seen[id]; ok {
			repeated = append(repeated, id)
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	var (
		res repository.LedgerResult
		err error
	)
	if s.Replace && s.ProfileID != 0 {
		res, err = c.ledger.ReplaceForProfile(ctx, s.ProfileID, s.CustomerID, unique)
	} else {
		var profileID *uint64
		if s.ProfileID != 0 {
			pid := s.ProfileID
			profileID = &pid
		}
		res, err = c.ledger.BookEach(ctx, s.CustomerID, profileID, unique)
	}
	if err != nil {
		c.metrics.IncError("booking_submit")
		return Outcome{}, err
	}

	for _, b := range res.Created {
		out.BookingIDs = append(out.BookingIDs, b.ID)
	}
	out.Booked = len(res.Created)
	out.Skipped = append(append(out.Skipped, res.Skipped...), repeated...)
	out.Invalid = append(out.Invalid, res.Missing...)

	log := c.log.With("customer_id", s.CustomerID, "waste_profile_id", s.ProfileID)
	for _, id := range out.Invalid {
		log.Warn("selected calendar entry does not exist, skipping", "calendar_entry_id", id)
	}
	if len(out.Malformed) > 0 {
		log.Warn("dropped malformed selected_date tokens", "tokens", out.Malformed)
	}
	if len(out.Truncated) > 0 {
		log.Warn("selected dates beyond booking cap dropped", "cap", BookingCap, "dropped", out.Truncated)
	}
	c.metrics.AddBookings(out.Booked)
	c.metrics.AddBookingWarnings("invalid", len(out.Invalid))
	c.metrics.AddBookingWarnings("malformed", len(out.Malformed))
	c.metrics.AddBookingWarnings("truncated", len(out.Truncated))
	c.metrics.AddBookingWarnings("duplicate", len(out.Skipped))

	if out.Booked > 0 {
		c.publish(ctx, s, res)
	}
	return out, nil
}

func (c *Coordinator) publish(ctx context.Context, s Submission, res repository.LedgerResult) {
	if c.publisher == nil {
		return
	}
	ev := queue.PickupBookedEvent{
		CustomerID:       s.CustomerID,
		BookingIDs:       make([]uint64, 0, len(res.Created)),
		CalendarEntryIDs: make([]uint64, 0, len(res.Created)),
		BookedAt:         time.Now().UTC().Format(time.RFC3339),
	}
	if s.ProfileID != 0 {
		ev.WasteProfileID = s.ProfileID
	}
	for _, b := range res.Created {
		ev.BookingIDs = append(ev.BookingIDs, b.ID)
		ev.CalendarEntryIDs = append(ev.CalendarEntryIDs, b.CalendarEntryID)
	}
	if err := c.publisher.PublishPickupBooked(ctx, ev); err != nil {
		c.log.Warn("publish pickup.booked failed", "error", err, "customer_id", s.CustomerID)
		c.metrics.IncError("publish_pickup_booked")
	}
}
