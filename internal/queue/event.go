// Package queue defines message payloads exchanged over the message broker
// together with the publisher and the background consumer.
package queue

// PickupBookedQueue is the durable queue pickup.booked events travel on.
const PickupBookedQueue = "pickup.booked"

// PickupBookedEvent is published after a profile submission created at
// least one booking.  It carries enough for downstream consumers to log or
// notify without querying the primary database.
type PickupBookedEvent struct {
    EventID          string   `json:"event_id"`
    CustomerID       uint64   `json:"customer_id"`
    WasteProfileID   uint64   `json:"waste_profile_id,omitempty"`
    BookingIDs       []uint64 `json:"booking_ids"`
    CalendarEntryIDs []uint64 `json:"calendar_entry_ids"`
    BookedAt         string   `json:"booked_at"`
}
