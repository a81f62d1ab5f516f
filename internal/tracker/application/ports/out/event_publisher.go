package out

import (
	"context"

	"bustracker/internal/tracker/domain"
)

// EventPublisher pushes accepted samples to external consumers
// (message broker). Best-effort: ingestion never fails on publish errors.
type EventPublisher interface {
	PublishLocationUpdate(ctx context.Context, sample domain.LocationSample) error
}
