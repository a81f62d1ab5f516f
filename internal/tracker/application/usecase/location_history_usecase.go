package usecase

import (
	"context"
	"fmt"
	"time"

	"bustracker/internal/shared/naptime"
	in "bustracker/internal/tracker/application/ports/in"
	out "bustracker/internal/tracker/application/ports/out"
)

const defaultHistoryLimit = 100

type locationHistoryUseCase struct {
	locationRepo out.LocationRepository
}

func NewLocationHistoryUseCase(locationRepo out.LocationRepository) in.LocationHistoryUseCase {
	return &locationHistoryUseCase{locationRepo: locationRepo}
}

func (uc *locationHistoryUseCase) Execute(ctx context.Context, vehicleID string, limit int) ([]in.HistoryItem, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	samples, err := uc.locationRepo.FindRange(ctx, vehicleID, limit)
	if err != nil {
		return nil, fmt.Errorf("find range: %w", err)
	}

	items := make([]in.HistoryItem, 0, len(samples))
	for _, s := range samples {
		items = append(items, in.HistoryItem{
			ID:              s.ID,
			VehicleID:       s.VehicleID,
			Latitude:        s.Latitude,
			Longitude:       s.Longitude,
			Speed:           s.Speed,
			ObservedAt:      s.ObservedAt.UTC().Format(time.RFC3339),
			ObservedAtLocal: naptime.FormatLocal(s.ObservedAt),
			ReceivedAt:      s.ReceivedAt.UTC().Format(time.RFC3339),
		})
	}
	return items, nil
}
