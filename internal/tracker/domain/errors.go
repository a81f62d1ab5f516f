package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrStoreUnavailable means the location store write failed; the
	// sample was not broadcast and the caller should retry.
	ErrStoreUnavailable = errors.New("location store unavailable")

	// ErrCapacityExceeded means the subscriber limit is reached; the new
	// subscription is refused, existing ones are unaffected.
	ErrCapacityExceeded = errors.New("subscriber capacity exceeded")

	// ErrNoLocationData means no sample has ever been recorded for the
	// vehicle.
	ErrNoLocationData = errors.New("no location data found for this vehicle")
)

// ValidationError reports the first violated field of an incoming
// sample. Raised before any side effects.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
