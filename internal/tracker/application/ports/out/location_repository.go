package out

import (
	"context"
	"time"

	"bustracker/internal/tracker/domain"
)

// StatusFields is the partial update applied to a vehicle's status row.
// Nil pointers leave the existing value untouched.
type StatusFields struct {
	TrackingEnabled *bool
	OperatorID      *string
	LastUpdated     time.Time
}

// LocationRepository is the minimal contract the tracker requires from
// the durable, time-indexed location store.
type LocationRepository interface {
	// InsertSample appends one sample and returns its identifier.
	InsertSample(ctx context.Context, s domain.LocationSample) (string, error)

	// FindLatest returns the newest sample for a vehicle, or nil if the
	// vehicle has never reported.
	FindLatest(ctx context.Context, vehicleID string) (*domain.LocationSample, error)

	// FindRange returns up to limit samples for a vehicle, newest first.
	FindRange(ctx context.Context, vehicleID string, limit int) ([]domain.LocationSample, error)

	// UpsertStatus creates or updates the single status row for a
	// vehicle. Last-writer-wins on LastUpdated.
	UpsertStatus(ctx context.Context, vehicleID string, fields StatusFields) error

	// FindStatus returns the status row, or nil if none exists yet.
	FindStatus(ctx context.Context, vehicleID string) (*domain.VehicleStatus, error)
}
