package transport

// SubmitLocationRequest is the device payload for POST /gps/data.
type SubmitLocationRequest struct {
	VehicleID string  `json:"vehicle_id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Speed     float64 `json:"speed"`
	Timestamp string  `json:"timestamp,omitempty"`
}

type SubmitLocationResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

// TrackingStatusRequest toggles tracking for PUT /admin/tracking-status.
type TrackingStatusRequest struct {
	TrackingEnabled bool `json:"tracking_enabled"`
}

// ErrorResponse is the standard error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}
