// Package service holds the calendar, booking and profile workflows that
// sit between the HTTP handlers and the repositories.
package service

import "errors"

// ErrInvalidInput marks a request the caller must fix: unparsable dates,
// missing range bounds, out-of-range coordinates.  Handlers map it to 400.
var ErrInvalidInput = errors.New("invalid input")
