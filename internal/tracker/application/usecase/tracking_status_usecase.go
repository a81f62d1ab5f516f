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

type trackingStatusUseCase struct {
	locationRepo out.LocationRepository
}

func NewTrackingStatusUseCase(locationRepo out.LocationRepository) in.TrackingStatusUseCase {
	return &trackingStatusUseCase{locationRepo: locationRepo}
}

// Get reads the status row, creating a default enabled one on first read.
func (uc *trackingStatusUseCase) Get(ctx context.Context, vehicleID, operatorID string) (*in.TrackingStatusOutput, error) {
	status, err := uc.locationRepo.FindStatus(ctx, vehicleID)
	if err != nil {
		return nil, fmt.Errorf("find status: %w", err)
	}
	if status == nil {
		enabled := true
		if err := uc.locationRepo.UpsertStatus(ctx, vehicleID, out.StatusFields{
			TrackingEnabled: &enabled,
			OperatorID:      &operatorID,
			LastUpdated:     naptime.Now(),
		}); err != nil {
			return nil, fmt.Errorf("create default status: %w", err)
		}
		status, err = uc.locationRepo.FindStatus(ctx, vehicleID)
		if err != nil || status == nil {
			return nil, fmt.Errorf("reload status: %w", err)
		}
	}
	return statusOutput(status), nil
}

// Set toggles tracking for the vehicle and records the operator.
func (uc *trackingStatusUseCase) Set(ctx context.Context, vehicleID string, enabled bool, operatorID string) (*in.TrackingStatusOutput, error) {
	if err := uc.locationRepo.UpsertStatus(ctx, vehicleID, out.StatusFields{
		TrackingEnabled: &enabled,
		OperatorID:      &operatorID,
		LastUpdated:     naptime.Now(),
	}); err != nil {
		return nil, fmt.Errorf("upsert status: %w", err)
	}

	status, err := uc.locationRepo.FindStatus(ctx, vehicleID)
	if err != nil {
		return nil, fmt.Errorf("reload status: %w", err)
	}
	if status == nil {
		return nil, fmt.Errorf("status row missing after upsert")
	}
	return statusOutput(status), nil
}

func statusOutput(s *domain.VehicleStatus) *in.TrackingStatusOutput {
	return &in.TrackingStatusOutput{
		VehicleID:       s.VehicleID,
		TrackingEnabled: s.TrackingEnabled,
		LastUpdated:     s.LastUpdated.UTC().Format(time.RFC3339),
		OperatorID:      s.OperatorID,
	}
}
