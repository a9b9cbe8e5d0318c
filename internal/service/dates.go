package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/waste-pickup-service/internal/model"
)

// MaxRangeDays bounds a single create_date_range call.
const MaxRangeDays = 366

// ParseDate parses a YYYY-MM-DD string as midnight UTC.
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}
	d, err := time.ParseInLocation(model.DateLayout, raw, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q is not a YYYY-MM-DD date", ErrInvalidInput, raw)
	}
	return d, nil
}

// ParseDatePrefix accepts an ISO datetime and keeps only the part before
// the first "T", so "2025-03-01T00:00:00+05:30" becomes 2025-03-01.
func ParseDatePrefix(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if i := strings.IndexByte(raw, 'T'); i >= 0 {
		raw = raw[:i]
	}
	return ParseDate(raw)
}

// ExpandRange returns every day from start to end inclusive.
func ExpandRange(start, end time.Time) ([]time.Time, error) {
	if start.After(end) {
		return nil, fmt.Errorf("%w: start date is after end date", ErrInvalidInput)
	}
	n := int(end.Sub(start).Hours()/24) + 1
	if n > MaxRangeDays {
		return nil, fmt.Errorf("%w: range spans %d days, at most %d allowed", ErrInvalidInput, n, MaxRangeDays)
	}
	days := make([]time.Time, 0, n)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days, nil
}
