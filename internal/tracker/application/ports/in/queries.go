package in

import "context"

type Point struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type CurrentLocationOutput struct {
	VehicleID        string  `json:"vehicle_id"`
	Latitude         float64 `json:"latitude"`
	Longitude        float64 `json:"longitude"`
	Speed            float64 `json:"speed"`
	LastUpdated      string  `json:"last_updated"`       // UTC, RFC 3339
	LastUpdatedLocal string  `json:"last_updated_local"` // +05:45 rendering
}

type CurrentLocationUseCase interface {
	Execute(ctx context.Context, vehicleID string) (*CurrentLocationOutput, error)
}

type EstimateArrivalInput struct {
	VehicleID      string
	DestinationLat float64
	DestinationLon float64
}

type EstimateArrivalOutput struct {
	CurrentLocation Point   `json:"current_location"`
	Destination     Point   `json:"destination"`
	DistanceKM      float64 `json:"distance_km"`
	EstimatedMin    int     `json:"estimated_arrival_minutes"`
	LastUpdated     string  `json:"last_updated"`
}

type EstimateArrivalUseCase interface {
	Execute(ctx context.Context, input EstimateArrivalInput) (*EstimateArrivalOutput, error)
}

type HistoryItem struct {
	ID              string  `json:"id"`
	VehicleID       string  `json:"vehicle_id"`
	Latitude        float64 `json:"latitude"`
	Longitude       float64 `json:"longitude"`
	Speed           float64 `json:"speed"`
	ObservedAt      string  `json:"observed_at"`
	ObservedAtLocal string  `json:"observed_at_local"`
	ReceivedAt      string  `json:"received_at"`
}

type LocationHistoryUseCase interface {
	Execute(ctx context.Context, vehicleID string, limit int) ([]HistoryItem, error)
}

type TrackingStatusOutput struct {
	VehicleID       string  `json:"vehicle_id"`
	TrackingEnabled bool    `json:"tracking_enabled"`
	LastUpdated     string  `json:"last_updated"`
	OperatorID      *string `json:"operator_id,omitempty"`
}

// TrackingStatusUseCase reads and toggles per-vehicle tracking.
// Get creates a default enabled row on first read.
type TrackingStatusUseCase interface {
	Get(ctx context.Context, vehicleID, operatorID string) (*TrackingStatusOutput, error)
	Set(ctx context.Context, vehicleID string, enabled bool, operatorID string) (*TrackingStatusOutput, error)
}
