package httputil

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alphapulse/pulse/pkg/config"
	"github.com/alphapulse/pulse/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(&config.Config{Env: "development", LogLevel: "error", LogFormat: "json"})
}

func TestGetJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"symbol":"BTCUSDT","price":42000.5}`))
	}))
	defer srv.Close()

	client := New(testLogger())

	var out struct {
		Symbol string  `json:"symbol"`
		Price  float64 `json:"price"`
	}
	err := client.GetJSON(context.Background(), srv.URL, &out)
	require.NoError(t, err)
	assert.Equal(t, "BTCUSDT", out.Symbol)
	assert.Equal(t, 42000.5, out.Price)
}

func TestGetJSONNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer srv.Close()

	client := New(testLogger())

	var out map[string]interface{}
	err := client.GetJSON(context.Background(), srv.URL, &out)
	assert.Error(t, err)
}

func TestRetryOnServerError(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := New(testLogger()).WithRetry(3, time.Millisecond)

	resp, err := client.Get(context.Background(), srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestRetryDisabled(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := New(testLogger()).DisableRetry()

	resp, err := client.Get(context.Background(), srv.URL)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestIsRetryableStatus(t *testing.T) {
	assert.True(t, IsRetryableStatus(http.StatusInternalServerError))
	assert.True(t, IsRetryableStatus(http.StatusBadGateway))
	assert.True(t, IsRetryableStatus(http.StatusTooManyRequests))
	assert.False(t, IsRetryableStatus(http.StatusOK))
	assert.False(t, IsRetryableStatus(http.StatusNotFound))
}
