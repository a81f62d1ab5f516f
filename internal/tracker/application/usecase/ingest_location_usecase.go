package usecase

import (
	"context"
	"errors"
	"fmt"

	"bustracker/internal/shared/logger"
	"bustracker/internal/shared/naptime"
	in "bustracker/internal/tracker/application/ports/in"
	out "bustracker/internal/tracker/application/ports/out"
	"bustracker/internal/tracker/domain"
)

type ingestLocationUseCase struct {
	locationRepo out.LocationRepository
	broadcaster  out.Broadcaster
	eventPub     out.EventPublisher // optional
	log          *logger.Logger
}

func NewIngestLocationUseCase(
	locationRepo out.LocationRepository,
	broadcaster out.Broadcaster,
	eventPub out.EventPublisher,
	log *logger.Logger,
) in.IngestLocationUseCase {
	return &ingestLocationUseCase{
		locationRepo: locationRepo,
		broadcaster:  broadcaster,
		eventPub:     eventPub,
		log:          log,
	}
}

// Execute runs the ingestion pipeline: validate, normalize, durably
// record, then broadcast. A sample is never broadcast unless the store
// write succeeded.
func (uc *ingestLocationUseCase) Execute(ctx context.Context, raw in.RawSample) (*in.IngestOutput, error) {
	if err := validate(raw); err != nil {
		return nil, err
	}

	now := naptime.Now()
	observedAt, err := naptime.Normalize(raw.Timestamp, now)
	if err != nil {
		if !errors.Is(err, naptime.ErrMalformedTimestamp) {
			return nil, err
		}
		// bad device clock: fall back to now, the sample is still accepted
		uc.log.Warn(logger.Entry{
			Action:    "timestamp_malformed",
			Message:   "unparsable device timestamp, using server time",
			VehicleID: raw.VehicleID,
			Additional: map[string]any{
				"raw_timestamp": raw.Timestamp,
			},
		})
		observedAt = now
	}

	sample := domain.LocationSample{
		VehicleID:  raw.VehicleID,
		Latitude:   raw.Latitude,
		Longitude:  raw.Longitude,
		Speed:      raw.Speed,
		ObservedAt: observedAt,
		ReceivedAt: now,
	}

	id, err := uc.locationRepo.InsertSample(ctx, sample)
	if err != nil {
		uc.log.Error(logger.Entry{
			Action:    "sample_insert_failed",
			Message:   err.Error(),
			VehicleID: raw.VehicleID,
			Error:     &logger.ErrObj{Msg: err.Error()},
		})
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	sample.ID = id

	// Best effort: the authoritative record is the sample itself.
	if err := uc.locationRepo.UpsertStatus(ctx, sample.VehicleID, out.StatusFields{
		LastUpdated: sample.ReceivedAt,
	}); err != nil {
		uc.log.Warn(logger.Entry{
			Action:    "status_upsert_failed",
			Message:   err.Error(),
			VehicleID: sample.VehicleID,
		})
	}

	uc.broadcaster.Publish(sample)

	if uc.eventPub != nil {
		if err := uc.eventPub.PublishLocationUpdate(ctx, sample); err != nil {
			uc.log.Warn(logger.Entry{
				Action:    "location_event_publish_failed",
				Message:   err.Error(),
				VehicleID: sample.VehicleID,
			})
		}
	}

	uc.log.Debug(logger.Entry{
		Action:    "sample_ingested",
		Message:   id,
		VehicleID: sample.VehicleID,
		Additional: map[string]any{
			"latitude":  sample.Latitude,
			"longitude": sample.Longitude,
			"speed":     sample.Speed,
		},
	})

	return &in.IngestOutput{SampleID: id, Sample: sample}, nil
}

// validate reports the first violated field, before any side effects.
func validate(raw in.RawSample) error {
	if raw.VehicleID == "" {
		return &domain.ValidationError{Field: "vehicle_id", Reason: "must not be empty"}
	}
	if raw.Latitude < -90 || raw.Latitude > 90 {
		return &domain.ValidationError{Field: "latitude", Reason: "must be between -90 and 90"}
	}
	if raw.Longitude < -180 || raw.Longitude > 180 {
		return &domain.ValidationError{Field: "longitude", Reason: "must be between -180 and 180"}
	}
	if raw.Speed < 0 {
		return &domain.ValidationError{Field: "speed", Reason: "must not be negative"}
	}
	return nil
}
