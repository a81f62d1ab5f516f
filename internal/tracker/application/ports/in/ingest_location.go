package in

import (
	"context"

	"bustracker/internal/tracker/domain"
)

// RawSample is an unvalidated fix exactly as the device submitted it.
// Timestamp may be empty, ISO 8601 with an offset, or naive (UTC).
type RawSample struct {
	VehicleID string
	Latitude  float64
	Longitude float64
	Speed     float64
	Timestamp string
}

type IngestOutput struct {
	SampleID string
	Sample   domain.LocationSample
}

// IngestLocationUseCase validates, normalizes, durably records and then
// broadcasts one incoming sample.
type IngestLocationUseCase interface {
	Execute(ctx context.Context, raw RawSample) (*IngestOutput, error)
}
