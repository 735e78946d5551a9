package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lifepulse-app/lifepulse/pkg/datamodel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeviceBridgeFetchSamples(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/health/samples":
			assert.Equal(t, string(datamodel.StepCount), r.URL.Query().Get("kind"))
			assert.NotEmpty(t, r.URL.Query().Get("start"))
			assert.NotEmpty(t, r.URL.Query().Get("end"))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`[{"value":120,"startDate":"2024-02-10T09:00:00Z","endDate":"2024-02-10T09:01:00Z"}]`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	bridge := NewDeviceBridge(srv.URL)
	rows, err := bridge.FetchSamples(context.Background(), datamodel.StepCount, testRange())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 120.0, rows[0].Value)
	assert.Equal(t, time.Date(2024, 2, 10, 9, 0, 0, 0, time.UTC), rows[0].StartDate.UTC())
}

func TestDeviceBridgeStatusMapping(t *testing.T) {
	status := http.StatusOK
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()
	bridge := NewDeviceBridge(srv.URL)

	status = http.StatusForbidden
	_, err := bridge.FetchSamples(context.Background(), datamodel.HeartRate, testRange())
	assert.ErrorIs(t, err, ErrPermissionDenied)

	status = http.StatusNotImplemented
	_, err = bridge.FetchSamples(context.Background(), datamodel.HeartRate, testRange())
	assert.ErrorIs(t, err, ErrUnavailable)

	status = http.StatusInternalServerError
	_, err = bridge.FetchSamples(context.Background(), datamodel.HeartRate, testRange())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrPermissionDenied)
	assert.NotErrorIs(t, err, ErrUnavailable)
}

func TestDeviceBridgeAuthorization(t *testing.T) {
	var granted bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		if !granted {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()
	bridge := NewDeviceBridge(srv.URL)

	err := bridge.RequestAuthorization(context.Background(), []datamodel.MetricKind{datamodel.StepCount})
	assert.ErrorIs(t, err, ErrPermissionDenied)

	ok, err := bridge.RequestPermission(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)

	granted = true
	assert.NoError(t, bridge.RequestAuthorization(context.Background(), []datamodel.MetricKind{datamodel.StepCount}))
	ok, err = bridge.RequestPermission(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestDeviceBridgeAvailability(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/v1/health/availability":
			_, _ = w.Write([]byte(`{"available":true}`))
		case "/v1/motion/availability":
			_, _ = w.Write([]byte(`{"available":false}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()
	bridge := NewDeviceBridge(srv.URL)

	assert.True(t, bridge.IsAvailable(context.Background()))
	assert.False(t, NewBridgeMotionStore(bridge).IsAvailable(context.Background()))
}

func TestBridgeMotionStorePolling(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/motion/gyroscope/latest" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"x":0.1,"y":0.2,"z":0.3,"timestamp":"2024-02-10T12:00:00Z"}`))
	}))
	defer srv.Close()

	store := NewBridgeMotionStore(NewDeviceBridge(srv.URL))
	readings := make(chan GyroReading, 1)
	stop, err := store.Subscribe(context.Background(), 5*time.Millisecond, func(r GyroReading) {
		select {
		case readings <- r:
		default:
		}
	})
	require.NoError(t, err)
	defer stop()

	select {
	case r := <-readings:
		assert.Equal(t, 0.1, r.X)
		assert.Equal(t, 0.3, r.Z)
	case <-time.After(2 * time.Second):
		t.Fatal("no gyroscope reading delivered")
	}
	stop()
	stop()
}
