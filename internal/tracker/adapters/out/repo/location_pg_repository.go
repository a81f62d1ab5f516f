package repo

import (
	"context"
	"errors"
	"fmt"

	"bustracker/internal/shared/utils"
	out "bustracker/internal/tracker/application/ports/out"
	"bustracker/internal/tracker/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// LocationRepository implements out.LocationRepository on PostgreSQL.
type LocationRepository struct {
	db *pgxpool.Pool
}

func NewLocationRepository(db *pgxpool.Pool) *LocationRepository {
	return &LocationRepository{db: db}
}

func (r *LocationRepository) InsertSample(ctx context.Context, s domain.LocationSample) (string, error) {
	id := utils.NewUUID()

	query := `
		INSERT INTO locations (id, vehicle_id, latitude, longitude, speed, observed_at, received_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.Exec(ctx, query,
		id,
		s.VehicleID,
		s.Latitude,
		s.Longitude,
		s.Speed,
		s.ObservedAt,
		s.ReceivedAt,
	)
	if err != nil {
		return "", fmt.Errorf("insert location: %w", err)
	}
	return id, nil
}

func (r *LocationRepository) FindLatest(ctx context.Context, vehicleID string) (*domain.LocationSample, error) {
	query := `
		SELECT id, vehicle_id, latitude, longitude, speed, observed_at, received_at
		FROM locations
		WHERE vehicle_id = $1
		ORDER BY observed_at DESC
		LIMIT 1
	`

	var s domain.LocationSample
	err := r.db.QueryRow(ctx, query, vehicleID).Scan(
		&s.ID, &s.VehicleID, &s.Latitude, &s.Longitude, &s.Speed, &s.ObservedAt, &s.ReceivedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query latest location: %w", err)
	}
	return &s, nil
}

func (r *LocationRepository) FindRange(ctx context.Context, vehicleID string, limit int) ([]domain.LocationSample, error) {
	query := `
		SELECT id, vehicle_id, latitude, longitude, speed, observed_at, received_at
		FROM locations
		WHERE vehicle_id = $1
		ORDER BY observed_at DESC
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, vehicleID, limit)
	if err != nil {
		return nil, fmt.Errorf("query location range: %w", err)
	}
	defer rows.Close()

	var samples []domain.LocationSample
	for rows.Next() {
		var s domain.LocationSample
		if err := rows.Scan(&s.ID, &s.VehicleID, &s.Latitude, &s.Longitude, &s.Speed, &s.ObservedAt, &s.ReceivedAt); err != nil {
			return nil, fmt.Errorf("scan location: %w", err)
		}
		samples = append(samples, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return samples, nil
}

func (r *LocationRepository) UpsertStatus(ctx context.Context, vehicleID string, fields out.StatusFields) error {
	query := `
		INSERT INTO vehicle_status (vehicle_id, tracking_enabled, last_updated, operator_id)
		VALUES ($1, COALESCE($2, true), $3, $4)
		ON CONFLICT (vehicle_id) DO UPDATE SET
			tracking_enabled = COALESCE($2, vehicle_status.tracking_enabled),
			last_updated     = $3,
			operator_id      = COALESCE($4, vehicle_status.operator_id)
	`
	_, err := r.db.Exec(ctx, query, vehicleID, fields.TrackingEnabled, fields.LastUpdated, fields.OperatorID)
	if err != nil {
		return fmt.Errorf("upsert vehicle status: %w", err)
	}
	return nil
}

func (r *LocationRepository) FindStatus(ctx context.Context, vehicleID string) (*domain.VehicleStatus, error) {
	query := `
		SELECT vehicle_id, tracking_enabled, last_updated, operator_id
		FROM vehicle_status
		WHERE vehicle_id = $1
	`

	var st domain.VehicleStatus
	err := r.db.QueryRow(ctx, query, vehicleID).Scan(
		&st.VehicleID, &st.TrackingEnabled, &st.LastUpdated, &st.OperatorID,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query vehicle status: %w", err)
	}
	return &st, nil
}
