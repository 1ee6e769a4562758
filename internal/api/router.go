package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/alphapulse/pulse/internal/api/handlers"
	"github.com/alphapulse/pulse/pkg/logger"
)

// NewRouter creates and configures the HTTP router.
func NewRouter(scoreHandler *handlers.ScoreHandler, hub *Hub, metricsEnabled bool, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", healthCheckHandler).Methods("GET")

	if metricsEnabled {
		r.Handle("/metrics", promhttp.Handler()).Methods("GET")
	}

	// API v1
	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/assets", scoreHandler.GetAssets).Methods("GET")
	api.HandleFunc("/scores", scoreHandler.GetScores).Methods("GET")
	api.HandleFunc("/score/refresh", scoreHandler.Refresh).Methods("POST")
	api.HandleFunc("/score/{ticker}", scoreHandler.GetScore).Methods("GET")
	api.HandleFunc("/history/{ticker}", scoreHandler.GetHistory).Methods("GET")

	if hub != nil {
		api.HandleFunc("/stream", hub.HandleStream).Methods("GET")
	}

	// Apply middleware
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}

// healthCheckHandler returns server health status.
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"service": "pulse-api",
	})
}

// loggingMiddleware logs HTTP requests.
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			next.ServeHTTP(w, r)

			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"duration": time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics.
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{
						"error": "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
