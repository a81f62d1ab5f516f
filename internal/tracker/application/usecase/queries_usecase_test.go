package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	in "bustracker/internal/tracker/application/ports/in"
	"bustracker/internal/tracker/domain"
)

func seedSample(repo *fakeLocationRepo, vehicleID string, lat, lon float64, observed time.Time) {
	_, _ = repo.InsertSample(context.Background(), domain.LocationSample{
		VehicleID:  vehicleID,
		Latitude:   lat,
		Longitude:  lon,
		Speed:      20,
		ObservedAt: observed,
		ReceivedAt: observed,
	})
}

func TestCurrentLocationUnknownVehicle(t *testing.T) {
	repo := newFakeLocationRepo()
	uc := NewCurrentLocationUseCase(repo)

	_, err := uc.Execute(context.Background(), "ghost_bus")
	if !errors.Is(err, domain.ErrNoLocationData) {
		t.Fatalf("error = %v, want ErrNoLocationData", err)
	}
}

func TestCurrentLocationReturnsNewestSample(t *testing.T) {
	repo := newFakeLocationRepo()
	uc := NewCurrentLocationUseCase(repo)

	seedSample(repo, "bus_001", 27.70, 85.32, time.Date(2025, 6, 30, 11, 0, 0, 0, time.UTC))
	seedSample(repo, "bus_001", 27.71, 85.33, time.Date(2025, 6, 30, 11, 5, 0, 0, time.UTC))

	got, err := uc.Execute(context.Background(), "bus_001")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got.Latitude != 27.71 || got.Longitude != 85.33 {
		t.Errorf("returned stale sample: %+v", got)
	}
	if got.LastUpdatedLocal != "2025-06-30 16:50:00 NST" {
		t.Errorf("LastUpdatedLocal = %q", got.LastUpdatedLocal)
	}
}

func TestEstimateArrivalKathmanduToBhaktapur(t *testing.T) {
	repo := newFakeLocationRepo()
	uc := NewEstimateArrivalUseCase(repo, 25.0)

	seedSample(repo, "bus_001", 27.7172, 85.3240, time.Date(2025, 6, 30, 11, 0, 0, 0, time.UTC))

	got, err := uc.Execute(context.Background(), in.EstimateArrivalInput{
		VehicleID:      "bus_001",
		DestinationLat: 27.6176,
		DestinationLon: 85.5392,
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got.DistanceKM < 23 || got.DistanceKM > 24 {
		t.Errorf("DistanceKM = %v, want 23..24", got.DistanceKM)
	}
	// ~23.5 km at 25 km/h is ~56 minutes
	if got.EstimatedMin < 55 || got.EstimatedMin > 57 {
		t.Errorf("EstimatedMin = %d, want ~56", got.EstimatedMin)
	}
}

func TestEstimateArrivalValidatesDestination(t *testing.T) {
	repo := newFakeLocationRepo()
	uc := NewEstimateArrivalUseCase(repo, 25.0)

	_, err := uc.Execute(context.Background(), in.EstimateArrivalInput{
		VehicleID:      "bus_001",
		DestinationLat: 95,
		DestinationLon: 85,
	})
	var verr *domain.ValidationError
	if !errors.As(err, &verr) || verr.Field != "destination_lat" {
		t.Fatalf("error = %v, want ValidationError on destination_lat", err)
	}
}

func TestLocationHistoryNewestFirst(t *testing.T) {
	repo := newFakeLocationRepo()
	uc := NewLocationHistoryUseCase(repo)

	for i := 0; i < 5; i++ {
		seedSample(repo, "bus_001", 27.70+float64(i)/100, 85.32, time.Date(2025, 6, 30, 11, i, 0, 0, time.UTC))
	}

	items, err := uc.Execute(context.Background(), "bus_001", 3)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("len = %d, want 3", len(items))
	}
	if items[0].Latitude != 27.74 {
		t.Errorf("first item is not the newest: %+v", items[0])
	}
}

func TestTrackingStatusDefaultsOnFirstRead(t *testing.T) {
	repo := newFakeLocationRepo()
	uc := NewTrackingStatusUseCase(repo)

	got, err := uc.Get(context.Background(), "bus_001", "admin-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !got.TrackingEnabled {
		t.Error("first read should create an enabled status")
	}

	got, err = uc.Set(context.Background(), "bus_001", false, "admin-2")
	if err != nil {
		t.Fatalf("Set: %v", err)
	}
	if got.TrackingEnabled {
		t.Error("Set(false) did not disable tracking")
	}
	if got.OperatorID == nil || *got.OperatorID != "admin-2" {
		t.Errorf("OperatorID = %v, want admin-2", got.OperatorID)
	}
}
