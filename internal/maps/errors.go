package maps

import (
	"fmt"
	"strings"
)

// Google Maps Platform response statuses.
const (
	StatusOK             = "OK"
	StatusZeroResults    = "ZERO_RESULTS"
	StatusNotFound       = "NOT_FOUND"
	StatusOverQueryLimit = "OVER_QUERY_LIMIT"
	StatusRequestDenied  = "REQUEST_DENIED"
	StatusInvalidRequest = "INVALID_REQUEST"
	StatusUnknownError   = "UNKNOWN_ERROR"
)

// Error describes a failed routing provider call.
type Error struct {
	Op         string // distance, route or geocode
	Query      string // the query inputs, e.g. "lat,lng -> lat,lng" or an address
	Status     string // provider status when the provider answered
	Message    string // provider error_message, if any
	HTTPStatus int    // non-2xx HTTP status, if any
	Err        error  // transport or decoding failure

	transient bool
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "maps: %s %s", e.Op, e.Query)
	if e.HTTPStatus != 0 {
		fmt.Fprintf(&b, ": http %d", e.HTTPStatus)
	}
	if e.Status != "" {
		fmt.Fprintf(&b, ": status %s", e.Status)
	}
	if e.Message != "" {
		fmt.Fprintf(&b, ": %s", e.Message)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Temporary reports whether retrying the same call may succeed.
func (e *Error) Temporary() bool {
	return e.transient
}

func transientStatus(status string) bool {
	return status == StatusOverQueryLimit || status == StatusUnknownError
}
