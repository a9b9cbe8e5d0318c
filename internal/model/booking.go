package model

import "time"

// Booking records that a customer reserved a calendar entry.  A customer
// holds at most one booking per calendar entry; WasteProfileID is nil for
// bookings made outside a profile submission.
//
// Fields:
//  ID              – primary key identifier.
//  CustomerID      – user who booked.
//  WasteProfileID  – profile the booking was made with (nullable).
//  CalendarEntryID – booked calendar entry.
//  CreatedAt       – creation timestamp.
type Booking struct {
    ID              uint64    `json:"id"`                         // pickup_bookings.id
    CustomerID      uint64    `json:"customer_id"`                // pickup_bookings.customer_id
    WasteProfileID  *uint64   `json:"waste_profile_id,omitempty"` // pickup_bookings.waste_profile_id (nullable)
    CalendarEntryID uint64    `json:"calendar_entry_id"`          // pickup_bookings.calendar_entry_id
    CreatedAt       time.Time `json:"created_at"`                 // pickup_bookings.created_at
}
