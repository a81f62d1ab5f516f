package usecase

import (
	"context"
	"fmt"
	"math"

	"bustracker/internal/shared/geo"
	"bustracker/internal/shared/naptime"
	in "bustracker/internal/tracker/application/ports/in"
	out "bustracker/internal/tracker/application/ports/out"
	"bustracker/internal/tracker/domain"
)

type estimateArrivalUseCase struct {
	locationRepo out.LocationRepository
	avgSpeedKMH  float64
}

// NewEstimateArrivalUseCase wires the estimator with the deployment's
// traffic speed assumption.
func NewEstimateArrivalUseCase(locationRepo out.LocationRepository, avgSpeedKMH float64) in.EstimateArrivalUseCase {
	return &estimateArrivalUseCase{
		locationRepo: locationRepo,
		avgSpeedKMH:  avgSpeedKMH,
	}
}

func (uc *estimateArrivalUseCase) Execute(ctx context.Context, input in.EstimateArrivalInput) (*in.EstimateArrivalOutput, error) {
	if input.DestinationLat < -90 || input.DestinationLat > 90 {
		return nil, &domain.ValidationError{Field: "destination_lat", Reason: "must be between -90 and 90"}
	}
	if input.DestinationLon < -180 || input.DestinationLon > 180 {
		return nil, &domain.ValidationError{Field: "destination_lon", Reason: "must be between -180 and 180"}
	}

	sample, err := uc.locationRepo.FindLatest(ctx, input.VehicleID)
	if err != nil {
		return nil, fmt.Errorf("find latest: %w", err)
	}
	if sample == nil {
		return nil, domain.ErrNoLocationData
	}

	distance := geo.Distance(sample.Latitude, sample.Longitude, input.DestinationLat, input.DestinationLon)

	return &in.EstimateArrivalOutput{
		CurrentLocation: in.Point{Latitude: sample.Latitude, Longitude: sample.Longitude},
		Destination:     in.Point{Latitude: input.DestinationLat, Longitude: input.DestinationLon},
		DistanceKM:      math.Round(distance*100) / 100,
		EstimatedMin:    geo.ETAMinutes(distance, uc.avgSpeedKMH),
		LastUpdated:     naptime.FormatLocal(sample.ObservedAt),
	}, nil
}
