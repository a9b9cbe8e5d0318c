package model

// State is the top of the administrative hierarchy.
type State struct {
    ID   uint64 `json:"id"`   // states.id
    Name string `json:"name"` // states.name
}

// District belongs to a State.
type District struct {
    ID      uint64 `json:"id"`       // districts.id
    StateID uint64 `json:"state_id"` // districts.state_id
    Name    string `json:"name"`     // districts.name
}

// LocalBody is the smallest administrative unit (municipality, panchayat,
// corporation).  Each local body owns its own pickup calendar.
type LocalBody struct {
    ID         uint64 `json:"id"`          // local_bodies.id
    DistrictID uint64 `json:"district_id"` // local_bodies.district_id
    Name       string `json:"name"`        // local_bodies.name
    BodyType   string `json:"body_type"`   // local_bodies.body_type
}
