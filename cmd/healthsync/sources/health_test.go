package sources

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lifepulse-app/lifepulse/cmd/healthsync/permission"
	"github.com/lifepulse-app/lifepulse/pkg/datamodel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHealthStore struct {
	available    bool
	authErr      error
	authRequests int
	fetchErr     error
	rows         []HealthSample
}

func (s *fakeHealthStore) IsAvailable(context.Context) bool {
	return s.available
}

func (s *fakeHealthStore) RequestAuthorization(_ context.Context, _ []datamodel.MetricKind) error {
	s.authRequests++
	return s.authErr
}

func (s *fakeHealthStore) FetchSamples(_ context.Context, _ datamodel.MetricKind, _ datamodel.TimeRange) ([]HealthSample, error) {
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	return s.rows, nil
}

func testRange() datamodel.TimeRange {
	start := time.Date(2024, 2, 10, 0, 0, 0, 0, time.Local)
	return datamodel.TimeRange{Start: start, End: start.Add(24 * time.Hour)}
}

func TestHealthAdapterFetch(t *testing.T) {
	start := time.Date(2024, 2, 10, 9, 0, 0, 0, time.Local)

	store := &fakeHealthStore{
		available: true,
		rows: []HealthSample{
			{Value: 120, StartDate: start, EndDate: start.Add(time.Minute)},
			{Value: 80, StartDate: start.Add(time.Hour), EndDate: start.Add(time.Hour)},
		},
	}
	adapter := NewHealthAdapter(store, permission.NewCache())

	result := adapter.Fetch(context.Background(), datamodel.StepCount, testRange())
	require.Equal(t, ReasonOK, result.Reason)
	require.Len(t, result.Samples, 2)
	assert.Equal(t, 120.0, result.Samples[0].Value)
	assert.Equal(t, datamodel.StepCount, result.Samples[0].Kind)
}

func TestHealthAdapterUnavailableStore(t *testing.T) {
	adapter := NewHealthAdapter(&fakeHealthStore{available: false}, permission.NewCache())

	result := adapter.Fetch(context.Background(), datamodel.HeartRate, testRange())
	assert.Equal(t, ReasonUnavailable, result.Reason)
	assert.NotNil(t, result.Samples)
	assert.Empty(t, result.Samples)
	assert.NoError(t, result.Err)
}

func TestHealthAdapterPermissionDenied(t *testing.T) {
	store := &fakeHealthStore{available: true, authErr: ErrPermissionDenied}
	perms := permission.NewCache()
	adapter := NewHealthAdapter(store, perms)

	result := adapter.Fetch(context.Background(), datamodel.HeartRate, testRange())
	assert.Equal(t, ReasonDenied, result.Reason)
	assert.Empty(t, result.Samples)
	assert.False(t, perms.IsAuthorized(datamodel.HeartRate))

	// A denial is not cached, the next fetch asks the platform again.
	result = adapter.Fetch(context.Background(), datamodel.HeartRate, testRange())
	assert.Equal(t, ReasonDenied, result.Reason)
	assert.Equal(t, 2, store.authRequests)
}

func TestHealthAdapterGrantCachedAcrossFetches(t *testing.T) {
	store := &fakeHealthStore{available: true}
	perms := permission.NewCache()
	adapter := NewHealthAdapter(store, perms)

	for i := 0; i < 3; i++ {
		result := adapter.Fetch(context.Background(), datamodel.StepCount, testRange())
		require.Equal(t, ReasonOK, result.Reason)
	}
	assert.Equal(t, 1, store.authRequests)
	assert.True(t, perms.IsAuthorized(datamodel.StepCount))
}

func TestHealthAdapterFetchErrorDegrades(t *testing.T) {
	boom := errors.New("store exploded")
	store := &fakeHealthStore{available: true, fetchErr: boom}
	adapter := NewHealthAdapter(store, permission.NewCache())

	result := adapter.Fetch(context.Background(), datamodel.Water, testRange())
	assert.Equal(t, ReasonError, result.Reason)
	assert.Empty(t, result.Samples)
	assert.ErrorIs(t, result.Err, boom)
}

func TestHealthAdapterFetchUnavailableError(t *testing.T) {
	store := &fakeHealthStore{available: true, fetchErr: ErrUnavailable}
	adapter := NewHealthAdapter(store, permission.NewCache())

	result := adapter.Fetch(context.Background(), datamodel.MindfulSession, testRange())
	assert.Equal(t, ReasonUnavailable, result.Reason)
	assert.NoError(t, result.Err)
}

func TestHealthAdapterKindsExcludeForeignFamilies(t *testing.T) {
	adapter := NewHealthAdapter(&fakeHealthStore{}, permission.NewCache())
	for _, k := range adapter.Kinds() {
		assert.NotEqual(t, datamodel.CalendarEvent, k)
		assert.NotEqual(t, datamodel.Gyroscope, k)
	}
	assert.NotEmpty(t, adapter.Kinds())
}

func TestNormalizeHealthSample(t *testing.T) {
	start := time.Date(2024, 2, 10, 9, 0, 0, 0, time.Local)

	t.Run("kilocalories fallback", func(t *testing.T) {
		s := normalizeHealthSample(datamodel.ActiveEnergy, HealthSample{
			Kilocalories: 42.5,
			StartDate:    start,
			EndDate:      start.Add(time.Minute),
		})
		assert.Equal(t, 42.5, s.Value)

		s = normalizeHealthSample(datamodel.BasalEnergy, HealthSample{
			Kilocalories: 38,
			StartDate:    start,
		})
		assert.Equal(t, 38.0, s.Value)
	})

	t.Run("kilocalories ignored for non-energy kinds", func(t *testing.T) {
		s := normalizeHealthSample(datamodel.HeartRate, HealthSample{
			Kilocalories: 42.5,
			StartDate:    start,
		})
		assert.Equal(t, 0.0, s.Value)
	})

	t.Run("missing end date collapses to point", func(t *testing.T) {
		s := normalizeHealthSample(datamodel.HeartRate, HealthSample{Value: 62, StartDate: start})
		assert.Equal(t, start, s.End)
		assert.True(t, s.IsPoint())
	})

	t.Run("end before start collapses to point", func(t *testing.T) {
		s := normalizeHealthSample(datamodel.HeartRate, HealthSample{
			Value:     62,
			StartDate: start,
			EndDate:   start.Add(-time.Hour),
		})
		assert.Equal(t, start, s.End)
	})

	t.Run("sleep carries category", func(t *testing.T) {
		s := normalizeHealthSample(datamodel.Sleep, HealthSample{
			Category:  "ASLEEP",
			StartDate: start,
			EndDate:   start.Add(8 * time.Hour),
		})
		require.NotNil(t, s.Sleep)
		assert.Equal(t, "ASLEEP", s.Sleep.Category)
	})

	t.Run("workout carries payload", func(t *testing.T) {
		s := normalizeHealthSample(datamodel.Workout, HealthSample{
			ActivityType: "Running",
			Kilocalories: 310,
			Distance:     5000,
			StartDate:    start,
			EndDate:      start.Add(30 * time.Minute),
		})
		require.NotNil(t, s.Workout)
		assert.Equal(t, "Running", s.Workout.ActivityType)
		assert.Equal(t, 310.0, s.Workout.Calories)
		assert.Equal(t, 5000.0, s.Workout.DistanceMeters)
	})
}
