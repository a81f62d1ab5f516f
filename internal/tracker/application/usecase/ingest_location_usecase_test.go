package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"bustracker/internal/shared/logger"
	in "bustracker/internal/tracker/application/ports/in"
	out "bustracker/internal/tracker/application/ports/out"
	"bustracker/internal/tracker/domain"
)

// fakeLocationRepo is an in-memory stand-in for the location store.
type fakeLocationRepo struct {
	samples      []domain.LocationSample
	statuses     map[string]domain.VehicleStatus
	insertCalls  int
	insertErr    error
	statusErr    error
	nextSampleID int
}

func newFakeLocationRepo() *fakeLocationRepo {
	return &fakeLocationRepo{statuses: make(map[string]domain.VehicleStatus)}
}

func (f *fakeLocationRepo) InsertSample(_ context.Context, s domain.LocationSample) (string, error) {
	f.insertCalls++
	if f.insertErr != nil {
		return "", f.insertErr
	}
	f.nextSampleID++
	s.ID = fmt.Sprintf("sample-%d", f.nextSampleID)
	f.samples = append(f.samples, s)
	return s.ID, nil
}

func (f *fakeLocationRepo) FindLatest(_ context.Context, vehicleID string) (*domain.LocationSample, error) {
	for i := len(f.samples) - 1; i >= 0; i-- {
		if f.samples[i].VehicleID == vehicleID {
			s := f.samples[i]
			return &s, nil
		}
	}
	return nil, nil
}

func (f *fakeLocationRepo) FindRange(_ context.Context, vehicleID string, limit int) ([]domain.LocationSample, error) {
	var r []domain.LocationSample
	for i := len(f.samples) - 1; i >= 0 && len(r) < limit; i-- {
		if f.samples[i].VehicleID == vehicleID {
			r = append(r, f.samples[i])
		}
	}
	return r, nil
}

func (f *fakeLocationRepo) UpsertStatus(_ context.Context, vehicleID string, fields out.StatusFields) (err error) {
	if f.statusErr != nil {
		return f.statusErr
	}
	st := f.statuses[vehicleID]
	st.VehicleID = vehicleID
	if fields.TrackingEnabled != nil {
		st.TrackingEnabled = *fields.TrackingEnabled
	}
	if fields.OperatorID != nil {
		st.OperatorID = fields.OperatorID
	}
	st.LastUpdated = fields.LastUpdated
	f.statuses[vehicleID] = st
	return nil
}

func (f *fakeLocationRepo) FindStatus(_ context.Context, vehicleID string) (*domain.VehicleStatus, error) {
	st, ok := f.statuses[vehicleID]
	if !ok {
		return nil, nil
	}
	return &st, nil
}

type fakeBroadcaster struct {
	published []domain.LocationSample
}

func (f *fakeBroadcaster) Publish(s domain.LocationSample) {
	f.published = append(f.published, s)
}

func newIngestFixture() (*fakeLocationRepo, *fakeBroadcaster, in.IngestLocationUseCase) {
	repo := newFakeLocationRepo()
	bc := &fakeBroadcaster{}
	uc := NewIngestLocationUseCase(repo, bc, nil, logger.NewLoggerWithWriter("ingest-test", io.Discard))
	return repo, bc, uc
}

func validRaw() in.RawSample {
	return in.RawSample{
		VehicleID: "bus_001",
		Latitude:  27.7172,
		Longitude: 85.3240,
		Speed:     18.5,
		Timestamp: "2025-06-30T17:20:17+05:45",
	}
}

func TestIngestHappyPath(t *testing.T) {
	repo, bc, uc := newIngestFixture()

	got, err := uc.Execute(context.Background(), validRaw())
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got.SampleID == "" {
		t.Error("empty sample id")
	}

	wantObserved := time.Date(2025, 6, 30, 11, 35, 17, 0, time.UTC)
	if !got.Sample.ObservedAt.Equal(wantObserved) {
		t.Errorf("ObservedAt = %v, want %v", got.Sample.ObservedAt, wantObserved)
	}
	if got.Sample.ReceivedAt.IsZero() {
		t.Error("ReceivedAt not assigned")
	}

	if len(bc.published) != 1 {
		t.Fatalf("broadcast count = %d, want 1", len(bc.published))
	}
	if bc.published[0].ID != got.SampleID {
		t.Error("broadcast sample does not carry the stored id")
	}

	// durably written and immediately queryable
	latest, err := repo.FindLatest(context.Background(), "bus_001")
	if err != nil || latest == nil {
		t.Fatalf("FindLatest after ingest: %v, %v", latest, err)
	}
	if latest.VehicleID != "bus_001" || latest.Latitude != 27.7172 || latest.Longitude != 85.3240 {
		t.Errorf("stored sample mismatch: %+v", latest)
	}

	// status row upserted
	st, _ := repo.FindStatus(context.Background(), "bus_001")
	if st == nil || !st.LastUpdated.Equal(got.Sample.ReceivedAt) {
		t.Errorf("status not upserted with received_at: %+v", st)
	}
}

func TestIngestValidationHasNoSideEffects(t *testing.T) {
	cases := []struct {
		name  string
		mut   func(*in.RawSample)
		field string
	}{
		{"empty vehicle id", func(r *in.RawSample) { r.VehicleID = "" }, "vehicle_id"},
		{"latitude too high", func(r *in.RawSample) { r.Latitude = 100 }, "latitude"},
		{"latitude too low", func(r *in.RawSample) { r.Latitude = -90.5 }, "latitude"},
		{"longitude out of range", func(r *in.RawSample) { r.Longitude = 181 }, "longitude"},
		{"negative speed", func(r *in.RawSample) { r.Speed = -1 }, "speed"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo, bc, uc := newIngestFixture()

			raw := validRaw()
			tc.mut(&raw)

			_, err := uc.Execute(context.Background(), raw)
			var verr *domain.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("error = %v, want ValidationError", err)
			}
			if verr.Field != tc.field {
				t.Errorf("violated field = %q, want %q", verr.Field, tc.field)
			}
			if repo.insertCalls != 0 {
				t.Errorf("store received %d inserts, want 0", repo.insertCalls)
			}
			if len(bc.published) != 0 {
				t.Errorf("broadcast happened despite validation failure")
			}
		})
	}
}

func TestIngestMalformedTimestampFallsBackToNow(t *testing.T) {
	_, bc, uc := newIngestFixture()

	raw := validRaw()
	raw.Timestamp = "not-a-timestamp"

	before := time.Now().UTC().Add(-2 * time.Second)
	got, err := uc.Execute(context.Background(), raw)
	after := time.Now().UTC().Add(2 * time.Second)

	if err != nil {
		t.Fatalf("malformed timestamp must not reject the sample: %v", err)
	}
	if got.Sample.ObservedAt.Before(before) || got.Sample.ObservedAt.After(after) {
		t.Errorf("ObservedAt = %v, want server time", got.Sample.ObservedAt)
	}
	if len(bc.published) != 1 {
		t.Errorf("broadcast count = %d, want 1", len(bc.published))
	}
}

func TestIngestStoreFailureAbortsBroadcast(t *testing.T) {
	repo, bc, uc := newIngestFixture()
	repo.insertErr = errors.New("connection refused")

	_, err := uc.Execute(context.Background(), validRaw())
	if !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("error = %v, want ErrStoreUnavailable", err)
	}
	if len(bc.published) != 0 {
		t.Error("sample broadcast despite failed store write")
	}
}

func TestIngestStatusUpsertFailureIsTolerated(t *testing.T) {
	repo, bc, uc := newIngestFixture()
	repo.statusErr = errors.New("deadlock detected")

	got, err := uc.Execute(context.Background(), validRaw())
	if err != nil {
		t.Fatalf("status upsert failure must not fail ingest: %v", err)
	}
	if got.SampleID == "" || len(bc.published) != 1 {
		t.Error("sample not stored and broadcast despite tolerated status failure")
	}
}
