package model

import "time"

// DateLayout is the wire and storage format of calendar dates.
const DateLayout = "2006-01-02"

// CalendarEntry is one pickup date offered by a local body.  The pair
// (LocalBodyID, Date) is unique.
//
// Fields:
//  ID          – primary key identifier.
//  LocalBodyID – local body offering the date.
//  Date        – the pickup day, midnight UTC.
type CalendarEntry struct {
    ID          uint64    // calendar_entries.id
    LocalBodyID uint64    // calendar_entries.localbody_id
    Date        time.Time // calendar_entries.pickup_date
}

// DateString renders the entry's date as YYYY-MM-DD.
func (e CalendarEntry) DateString() string {
    return e.Date.Format(DateLayout)
}
