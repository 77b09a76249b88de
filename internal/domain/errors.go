package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrNoTransition = errors.New("no such transition")
	ErrBusy         = errors.New("operation already in flight")
	ErrNoPending    = errors.New("no pending purchase")

	// normalized platform geolocation outcomes
	ErrDevicePermission  = errors.New("location permission denied")
	ErrDeviceUnavailable = errors.New("device location unavailable")
	ErrDeviceTimeout     = errors.New("device location timed out")
)

// ValidationError is a user-correctable input problem. It never maps to a
// server error at the HTTP boundary.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
