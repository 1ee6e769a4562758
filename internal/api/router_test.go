package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alphapulse/pulse/internal/contracts"
	"github.com/alphapulse/pulse/pkg/config"
	"github.com/alphapulse/pulse/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(&config.Config{Env: "test", LogLevel: "error", LogFormat: "json"})
}

func TestHealthCheck(t *testing.T) {
	rec := httptest.NewRecorder()
	healthCheckHandler(rec, httptest.NewRequest("GET", "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestRecoveryMiddleware(t *testing.T) {
	panicky := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})
	handler := recoveryMiddleware(testLogger())(panicky)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/anything", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Internal server error")
}

func TestHubBroadcast(t *testing.T) {
	hub := NewHub(testLogger())

	server := httptest.NewServer(http.HandlerFunc(hub.HandleStream))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	// Wait for the server side to register the client.
	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	require.Equal(t, 1, hub.ClientCount())

	asset, err := contracts.NewAsset("BTCUSDT", "Bitcoin", contracts.AssetCrypto, "Binance")
	require.NoError(t, err)
	hub.Publish(&contracts.Result{
		Asset:   asset,
		AiScore: 63.5,
		Signal:  contracts.SignalStrongBuy,
	})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got contracts.Result
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, "BTCUSDT", got.Asset.Ticker)
	assert.Equal(t, contracts.SignalStrongBuy, got.Signal)
}

func TestHubPingsDuringBroadcast(t *testing.T) {
	hub := NewHub(testLogger())
	hub.pingEvery = 5 * time.Millisecond

	server := httptest.NewServer(http.HandlerFunc(hub.HandleStream))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	require.Equal(t, 1, hub.ClientCount())

	// Drain frames so broadcasts and ping replies keep flowing.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	asset, err := contracts.NewAsset("ETHUSDT", "Ethereum", contracts.AssetCrypto, "Binance")
	require.NoError(t, err)
	result := &contracts.Result{Asset: asset, AiScore: 12.5, Signal: contracts.SignalNeutral}

	// Broadcast continuously across many ping ticks; ping and broadcast
	// writes must serialize on the same connection.
	stop := time.Now().Add(150 * time.Millisecond)
	for time.Now().Before(stop) {
		hub.Publish(result)
	}

	assert.Equal(t, 1, hub.ClientCount())

	conn.Close()
	<-done
}

func TestHubDropsClosedClients(t *testing.T) {
	hub := NewHub(testLogger())

	server := httptest.NewServer(http.HandlerFunc(hub.HandleStream))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() > 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	assert.Equal(t, 0, hub.ClientCount())
}
