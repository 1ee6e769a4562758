package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/alphapulse/pulse/internal/contracts"
	"github.com/alphapulse/pulse/pkg/logger"
	"github.com/alphapulse/pulse/pkg/redis"
)

const (
	defaultHistoryDays = 30
	maxHistoryDays     = 365
)

// Scorer computes scores on demand. Satisfied by pipeline.Runner.
type Scorer interface {
	ScoreTicker(ctx context.Context, ticker string) (*contracts.Result, error)
	RunCycle(ctx context.Context) error
}

// ScoreHandler serves the scoring API endpoints.
type ScoreHandler struct {
	assetRepo contracts.AssetRepository
	scoreRepo contracts.ScoreRepository
	scorer    Scorer
	cache     *redis.Cache
	logger    *logger.Logger
}

// NewScoreHandler creates a score handler.
func NewScoreHandler(
	assetRepo contracts.AssetRepository,
	scoreRepo contracts.ScoreRepository,
	scorer Scorer,
	cache *redis.Cache,
	log *logger.Logger,
) *ScoreHandler {
	return &ScoreHandler{
		assetRepo: assetRepo,
		scoreRepo: scoreRepo,
		scorer:    scorer,
		cache:     cache,
		logger:    log,
	}
}

// GetAssets returns the tracked asset list.
// GET /api/assets
func (h *ScoreHandler) GetAssets(w http.ResponseWriter, r *http.Request) {
	assets, err := h.assetRepo.List(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to list assets")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve assets")
		return
	}

	respondJSON(w, http.StatusOK, assets)
}

// GetScores returns the latest score for every tracked asset.
// GET /api/scores
func (h *ScoreHandler) GetScores(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var cached []*contracts.Result
	hit, err := h.cache.Get(ctx, redis.LatestScoresKey, &cached)
	if err != nil {
		h.logger.WithError(err).Warn("Score cache lookup failed")
	}
	if hit {
		respondJSON(w, http.StatusOK, cached)
		return
	}

	results, err := h.scoreRepo.LatestAll(ctx)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get latest scores")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve scores")
		return
	}

	if err := h.cache.Set(ctx, redis.LatestScoresKey, results, redis.TTLMedium); err != nil {
		h.logger.WithError(err).Warn("Failed to cache latest scores")
	}

	respondJSON(w, http.StatusOK, results)
}

// GetScore computes a fresh score for one tracked ticker, serving from
// cache when a recent result exists.
// GET /api/score/{ticker}
func (h *ScoreHandler) GetScore(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ticker := strings.ToUpper(mux.Vars(r)["ticker"])

	var cached contracts.Result
	hit, err := h.cache.Get(ctx, redis.ScoreKey(ticker), &cached)
	if err != nil {
		h.logger.WithError(err).Warn("Score cache lookup failed")
	}
	if hit {
		respondJSON(w, http.StatusOK, &cached)
		return
	}

	result, err := h.scorer.ScoreTicker(ctx, ticker)
	if err != nil {
		h.logger.WithFields(map[string]interface{}{
			"ticker": ticker,
			"error":  err.Error(),
		}).Error("On-demand scoring failed")
		respondError(w, http.StatusNotFound, "Ticker is not tracked or could not be scored")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// GetHistory returns the stored score history for a ticker.
// GET /api/history/{ticker}?days=30
func (h *ScoreHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ticker := strings.ToUpper(mux.Vars(r)["ticker"])

	days := defaultHistoryDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > maxHistoryDays {
			respondError(w, http.StatusBadRequest, "Invalid 'days' (expected 1-365)")
			return
		}
		days = parsed
	}

	history, err := h.scoreRepo.History(ctx, ticker, days)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get score history")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve history")
		return
	}

	respondJSON(w, http.StatusOK, history)
}

// Refresh triggers a full scoring cycle in the background.
// POST /api/score/refresh
func (h *ScoreHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	h.logger.Info("Manual scoring cycle triggered")

	go func() {
		if err := h.scorer.RunCycle(context.Background()); err != nil {
			h.logger.WithError(err).Error("Manual scoring cycle failed")
		}
	}()

	respondJSON(w, http.StatusAccepted, map[string]string{
		"status":  "accepted",
		"message": "Scoring cycle started",
	})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
