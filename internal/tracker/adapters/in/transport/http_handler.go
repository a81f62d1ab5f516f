package transport

import (
	"errors"
	"net/http"
	"strconv"

	"bustracker/internal/shared/logger"
	in "bustracker/internal/tracker/application/ports/in"
	"bustracker/internal/tracker/domain"
)

type Handler struct {
	ingestUC         in.IngestLocationUseCase
	currentUC        in.CurrentLocationUseCase
	etaUC            in.EstimateArrivalUseCase
	historyUC        in.LocationHistoryUseCase
	statusUC         in.TrackingStatusUseCase
	defaultVehicleID string
	log              *logger.Logger
}

func NewHandler(
	ingestUC in.IngestLocationUseCase,
	currentUC in.CurrentLocationUseCase,
	etaUC in.EstimateArrivalUseCase,
	historyUC in.LocationHistoryUseCase,
	statusUC in.TrackingStatusUseCase,
	defaultVehicleID string,
	log *logger.Logger,
) *Handler {
	return &Handler{
		ingestUC:         ingestUC,
		currentUC:        currentUC,
		etaUC:            etaUC,
		historyUC:        historyUC,
		statusUC:         statusUC,
		defaultVehicleID: defaultVehicleID,
		log:              log,
	}
}

// SubmitLocation — POST /gps/data
func (h *Handler) SubmitLocation(w http.ResponseWriter, r *http.Request) {
	var req SubmitLocationRequest
	if err := readJSON(r, &req); err != nil {
		h.log.Warn(logger.Entry{Action: "submit_location_invalid_request", Message: err.Error()})
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.VehicleID == "" {
		req.VehicleID = h.defaultVehicleID
	}

	output, err := h.ingestUC.Execute(r.Context(), in.RawSample{
		VehicleID: req.VehicleID,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		Speed:     req.Speed,
		Timestamp: req.Timestamp,
	})
	if err != nil {
		h.respondUseCaseError(w, "submit_location_failed", err)
		return
	}

	respondJSON(w, http.StatusOK, SubmitLocationResponse{
		Message: "GPS data received successfully",
		ID:      output.SampleID,
	})
}

// CurrentLocation — GET /gps/vehicle-location
func (h *Handler) CurrentLocation(w http.ResponseWriter, r *http.Request) {
	output, err := h.currentUC.Execute(r.Context(), h.vehicleID(r))
	if err != nil {
		h.respondUseCaseError(w, "current_location_failed", err)
		return
	}
	respondJSON(w, http.StatusOK, output)
}

// EstimateArrival — GET /gps/estimate-arrival
func (h *Handler) EstimateArrival(w http.ResponseWriter, r *http.Request) {
	destLat, err1 := strconv.ParseFloat(r.URL.Query().Get("destination_lat"), 64)
	destLon, err2 := strconv.ParseFloat(r.URL.Query().Get("destination_lon"), 64)
	if err1 != nil || err2 != nil {
		respondError(w, http.StatusBadRequest, "destination_lat and destination_lon are required numbers")
		return
	}

	output, err := h.etaUC.Execute(r.Context(), in.EstimateArrivalInput{
		VehicleID:      h.vehicleID(r),
		DestinationLat: destLat,
		DestinationLon: destLon,
	})
	if err != nil {
		h.respondUseCaseError(w, "estimate_arrival_failed", err)
		return
	}
	respondJSON(w, http.StatusOK, output)
}

// LocationHistory — GET /gps/location-history
func (h *Handler) LocationHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			respondError(w, http.StatusBadRequest, "limit must be a non-negative number")
			return
		}
		limit = n
	}

	items, err := h.historyUC.Execute(r.Context(), h.vehicleID(r), limit)
	if err != nil {
		h.respondUseCaseError(w, "location_history_failed", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"locations": items,
		"count":     len(items),
	})
}

// GetTrackingStatus — GET /admin/tracking-status
func (h *Handler) GetTrackingStatus(w http.ResponseWriter, r *http.Request) {
	operatorID, _ := GetUserIDFromContext(r.Context())

	output, err := h.statusUC.Get(r.Context(), h.vehicleID(r), operatorID)
	if err != nil {
		h.respondUseCaseError(w, "get_tracking_status_failed", err)
		return
	}
	respondJSON(w, http.StatusOK, output)
}

// SetTrackingStatus — PUT /admin/tracking-status
func (h *Handler) SetTrackingStatus(w http.ResponseWriter, r *http.Request) {
	operatorID, _ := GetUserIDFromContext(r.Context())

	var req TrackingStatusRequest
	if err := readJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	output, err := h.statusUC.Set(r.Context(), h.vehicleID(r), req.TrackingEnabled, operatorID)
	if err != nil {
		h.respondUseCaseError(w, "set_tracking_status_failed", err)
		return
	}
	respondJSON(w, http.StatusOK, output)
}

func (h *Handler) vehicleID(r *http.Request) string {
	if id := r.URL.Query().Get("vehicle_id"); id != "" {
		return id
	}
	return h.defaultVehicleID
}

// respondUseCaseError maps the domain error taxonomy to status codes.
func (h *Handler) respondUseCaseError(w http.ResponseWriter, action string, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		respondError(w, http.StatusBadRequest, verr.Error())
	case errors.Is(err, domain.ErrNoLocationData):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrStoreUnavailable):
		h.log.Error(logger.Entry{Action: action, Message: err.Error(), Error: &logger.ErrObj{Msg: err.Error()}})
		respondError(w, http.StatusServiceUnavailable, "location store unavailable, retry later")
	default:
		h.log.Error(logger.Entry{Action: action, Message: err.Error(), Error: &logger.ErrObj{Msg: err.Error()}})
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}
