package model

import "time"

// Profile statuses.
const (
    ProfileStatusPending   = "pending"
    ProfileStatusAssigned  = "assigned"
    ProfileStatusCollected = "collected"
)

// WasteProfile describes a pickup location and the waste a customer hands
// over there.  Latitude and Longitude are either both set or both nil.
type WasteProfile struct {
    ID                  uint64    `json:"id"`
    UserID              uint64    `json:"user_id"`
    FullName            string    `json:"full_name"`
    SecondaryNumber     string    `json:"secondary_number"`
    PickupAddress       string    `json:"pickup_address"`
    Landmark            string    `json:"landmark"`
    Pincode             string    `json:"pincode"`
    Latitude            *float64  `json:"latitude"`
    Longitude           *float64  `json:"longitude"`
    StateID             uint64    `json:"state_id"`
    DistrictID          uint64    `json:"district_id"`
    LocalBodyID         uint64    `json:"localbody_id"`
    Ward                int       `json:"ward"`
    WardName            string    `json:"ward_name"`
    NumberOfBags        int       `json:"number_of_bags"`
    WasteType           string    `json:"waste_type"`
    Comments            string    `json:"comments"`
    Status              string    `json:"status"`
    AssignedCollectorID *uint64   `json:"assigned_collector_id"`
    CreatedAt           time.Time `json:"created_at"`
    UpdatedAt           time.Time `json:"updated_at"`
}

// HasLocation reports whether both coordinates are present.
func (p WasteProfile) HasLocation() bool {
    return p.Latitude != nil && p.Longitude != nil
}

// LocationHistory is one recorded position of a waste profile.  A row is
// appended when a profile is created with coordinates and whenever an
// update changes them.
type LocationHistory struct {
    ID             uint64    `json:"id"`
    WasteProfileID uint64    `json:"waste_profile_id"`
    Latitude       float64   `json:"latitude"`
    Longitude      float64   `json:"longitude"`
    ChangedBy      *uint64   `json:"changed_by"`
    ChangedAt      time.Time `json:"changed_at"`
}
