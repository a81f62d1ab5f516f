package domain

import (
	"time"

	"bustracker/internal/shared/naptime"
)

// LocationSample is one accepted GPS fix. Append-only: persisted once,
// never updated.
type LocationSample struct {
	ID         string    `json:"id"`
	VehicleID  string    `json:"vehicle_id"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	Speed      float64   `json:"speed"`
	ObservedAt time.Time `json:"observed_at"` // device-reported, normalized
	ReceivedAt time.Time `json:"received_at"` // server-assigned at ingestion
}

// VehicleStatus is the single mutable row per vehicle. Last-writer-wins
// on LastUpdated.
type VehicleStatus struct {
	VehicleID       string    `json:"vehicle_id"`
	TrackingEnabled bool      `json:"tracking_enabled"`
	LastUpdated     time.Time `json:"last_updated"`
	OperatorID      *string   `json:"operator_id,omitempty"`
}

// BroadcastEnvelope is the wire form pushed to live subscribers.
// Constructed fresh per accepted sample, never stored.
type BroadcastEnvelope struct {
	Type            string  `json:"type"` // always "location_update"
	VehicleID       string  `json:"vehicle_id"`
	Latitude        float64 `json:"latitude"`
	Longitude       float64 `json:"longitude"`
	Speed           float64 `json:"speed"`
	ObservedAt      string  `json:"observed_at"`       // UTC, RFC 3339
	ObservedAtLocal string  `json:"observed_at_local"` // +05:45 rendering
}

// NewEnvelope builds the broadcast form of an accepted sample.
func NewEnvelope(s LocationSample) BroadcastEnvelope {
	return BroadcastEnvelope{
		Type:            "location_update",
		VehicleID:       s.VehicleID,
		Latitude:        s.Latitude,
		Longitude:       s.Longitude,
		Speed:           s.Speed,
		ObservedAt:      s.ObservedAt.UTC().Format(time.RFC3339),
		ObservedAtLocal: naptime.RenderLocal(s.ObservedAt),
	}
}
