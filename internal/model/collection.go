package model

import "time"

// WasteCollection is written by a collector after picking up waste from a
// customer.  Reports aggregate Kg per local body and day.
type WasteCollection struct {
    ID             uint64    `json:"id"`
    CustomerID     uint64    `json:"customer_id"`
    CollectorID    uint64    `json:"collector_id"`
    WasteProfileID *uint64   `json:"waste_profile_id"`
    Kg             float64   `json:"kg"`
    CreatedAt      time.Time `json:"created_at"`
}
