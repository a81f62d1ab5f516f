package out

import "bustracker/internal/tracker/domain"

// Broadcaster fans an accepted sample out to live subscribers. Publish
// must not block the caller beyond enqueuing.
type Broadcaster interface {
	Publish(sample domain.LocationSample)
}
