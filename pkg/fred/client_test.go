package fred

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(handler http.Handler) (Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	c := NewClient("test-key",
		WithBaseURL(srv.URL),
		WithHTTPClient(srv.Client()),
		WithRateLimit(60000),
	)
	return c, srv
}

func TestGetSeries(t *testing.T) {
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/series", r.URL.Path)
		assert.Equal(t, "UNRATE", r.URL.Query().Get("series_id"))
		assert.Equal(t, "test-key", r.URL.Query().Get("api_key"))
		assert.Equal(t, "json", r.URL.Query().Get("file_type"))
		w.Write([]byte(`{"seriess":[{"id":"UNRATE","title":"Unemployment Rate","units":"Percent","frequency_short":"M","notes":"SA"}]}`))
	}))
	defer srv.Close()

	info, err := c.GetSeries(context.Background(), "UNRATE")
	require.NoError(t, err)
	assert.Equal(t, "UNRATE", info.ID)
	assert.Equal(t, "Unemployment Rate", info.Title)
	assert.Equal(t, "M", info.FrequencyShort)
}

func TestGetSeries_NotFound(t *testing.T) {
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"seriess":[]}`))
	}))
	defer srv.Close()

	_, err := c.GetSeries(context.Background(), "NOPE")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestGetObservations_MissingValues(t *testing.T) {
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/series/observations", r.URL.Path)
		w.Write([]byte(`{"observations":[
			{"date":"2024-01-01","value":"3.7"},
			{"date":"2024-02-01","value":"."},
			{"date":"2024-03-01","value":"3.9"}
		]}`))
	}))
	defer srv.Close()

	obs, err := c.GetObservations(context.Background(), "UNRATE")
	require.NoError(t, err)
	require.Len(t, obs, 3)
	assert.Equal(t, 3.7, *obs[0].Value)
	assert.Nil(t, obs[1].Value)
	assert.Equal(t, "2024-02-01", obs[1].Date)
}

func TestGetObservations_BadValue(t *testing.T) {
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"observations":[{"date":"2024-01-01","value":"n/a"}]}`))
	}))
	defer srv.Close()

	_, err := c.GetObservations(context.Background(), "UNRATE")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad value")
}

func TestGet_RetriesOn429(t *testing.T) {
	var calls atomic.Int32
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"seriess":[{"id":"UNRATE","title":"Unemployment Rate"}]}`))
	}))
	defer srv.Close()

	info, err := c.GetSeries(context.Background(), "UNRATE")
	require.NoError(t, err)
	assert.Equal(t, "UNRATE", info.ID)
	assert.Equal(t, int32(2), calls.Load())
}

func TestGet_ExhaustsRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient("test-key",
		WithBaseURL(srv.URL),
		WithHTTPClient(srv.Client()),
		WithRateLimit(60000),
		WithMaxRetries(2),
	)

	_, err := c.GetSeries(context.Background(), "UNRATE")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "retries exhausted")
	assert.Equal(t, int32(2), calls.Load())
}

func TestGet_NonRetryableStatus(t *testing.T) {
	var calls atomic.Int32
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error_message":"Bad request"}`))
	}))
	defer srv.Close()

	_, err := c.GetSeries(context.Background(), "UNRATE")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 400")
	assert.Equal(t, int32(1), calls.Load())
}
