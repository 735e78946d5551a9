package upload

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/lifepulse-app/lifepulse/pkg/datamodel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSavePostsBatch(t *testing.T) {
	var gotPath string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var err error
		gotBody, err = io.ReadAll(r.Body)
		require.NoError(t, err)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	records := []datamodel.HourlyRecord{
		{
			Timestamp:       "1707574200000",
			StartDate:       "1707552000000",
			EndDate:         "1707555600000",
			StepCount:       350,
			SleepAnalysis:   []datamodel.SleepItem{},
			MindfulSession:  []datamodel.MindfulItem{},
			CalendarEvents:  []datamodel.CalendarEventItem{},
			ActivitySummary: []datamodel.ActivitySummaryItem{},
		},
	}

	err := NewClient(srv.URL).Save(context.Background(), "user-42", records)
	require.NoError(t, err)
	assert.Equal(t, "/health-data/save", gotPath)

	var body struct {
		UID  string                   `json:"uid"`
		Data []datamodel.HourlyRecord `json:"data"`
	}
	require.NoError(t, json.Unmarshal(gotBody, &body))
	assert.Equal(t, "user-42", body.UID)
	require.Len(t, body.Data, 1)
	assert.Equal(t, 350, body.Data[0].StepCount)
	assert.Equal(t, "1707552000000", body.Data[0].StartDate)
}

func TestSaveEmptyBatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.Contains(t, string(body), `"data":[]`)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	assert.NoError(t, NewClient(srv.URL).Save(context.Background(), "user-42", nil))
}

func TestSaveBackendFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	err := NewClient(srv.URL).Save(context.Background(), "user-42", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestSaveUnreachableBackend(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	err := NewClient(srv.URL).Save(context.Background(), "user-42", nil)
	assert.Error(t, err)
}
