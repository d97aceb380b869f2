package gateway

import (
	"errors"
	"fmt"
)

// ErrUnauthorized is returned when the remote API rejects the bearer token
// with a 401. The client has already cleared the persisted credential by the
// time this error is observed, so callers must treat it as a navigation
// signal back to the public entry point, not as a purely informational
// failure.
var ErrUnauthorized = errors.New("unauthorized")

// StatusError is returned for any non-2xx response other than 401. No local
// state changes when it occurs.
type StatusError struct {
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("request failed: status %d", e.Status)
}

// IsStatus reports whether err is a StatusError with the given status code.
func IsStatus(err error, status int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Status == status
}
