package usecase

import (
	"context"
	"fmt"
	"time"

	"bustracker/internal/shared/naptime"
	in "bustracker/internal/tracker/application/ports/in"
	out "bustracker/internal/tracker/application/ports/out"
	"bustracker/internal/tracker/domain"
)

type currentLocationUseCase struct {
	locationRepo out.LocationRepository
}

func NewCurrentLocationUseCase(locationRepo out.LocationRepository) in.CurrentLocationUseCase {
	return &currentLocationUseCase{locationRepo: locationRepo}
}

func (uc *currentLocationUseCase) Execute(ctx context.Context, vehicleID string) (*in.CurrentLocationOutput, error) {
	sample, err := uc.locationRepo.FindLatest(ctx, vehicleID)
	if err != nil {
		return nil, fmt.Errorf("find latest: %w", err)
	}
	if sample == nil {
		return nil, domain.ErrNoLocationData
	}

	return &in.CurrentLocationOutput{
		VehicleID:        sample.VehicleID,
		Latitude:         sample.Latitude,
		Longitude:        sample.Longitude,
		Speed:            sample.Speed,
		LastUpdated:      sample.ObservedAt.UTC().Format(time.RFC3339),
		LastUpdatedLocal: naptime.FormatLocal(sample.ObservedAt),
	}, nil
}
