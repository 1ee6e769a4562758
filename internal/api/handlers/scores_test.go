package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alphapulse/pulse/internal/contracts"
	"github.com/alphapulse/pulse/pkg/config"
	"github.com/alphapulse/pulse/pkg/logger"
	"github.com/alphapulse/pulse/pkg/redis"
)

type fakeAssetRepo struct {
	assets []contracts.Asset
	err    error
}

func (r *fakeAssetRepo) Upsert(context.Context, contracts.Asset) (int64, error) { return 0, nil }

func (r *fakeAssetRepo) GetByTicker(context.Context, string) (*contracts.Asset, error) {
	return nil, fmt.Errorf("not found")
}

func (r *fakeAssetRepo) List(context.Context) ([]contracts.Asset, error) {
	return r.assets, r.err
}

type fakeScoreRepo struct {
	latest  []*contracts.Result
	history []*contracts.Result
	err     error
}

func (r *fakeScoreRepo) Save(context.Context, *contracts.Result) error { return nil }

func (r *fakeScoreRepo) LatestAll(context.Context) ([]*contracts.Result, error) {
	return r.latest, r.err
}

func (r *fakeScoreRepo) History(_ context.Context, ticker string, _ int) ([]*contracts.Result, error) {
	return r.history, r.err
}

type fakeScorer struct {
	result *contracts.Result
	err    error
	cycles int
}

func (s *fakeScorer) ScoreTicker(_ context.Context, ticker string) (*contracts.Result, error) {
	return s.result, s.err
}

func (s *fakeScorer) RunCycle(context.Context) error {
	s.cycles++
	return nil
}

func testHandler(t *testing.T, assets *fakeAssetRepo, scores *fakeScoreRepo, scorer *fakeScorer) *ScoreHandler {
	t.Helper()
	log := logger.New(&config.Config{Env: "test", LogLevel: "error", LogFormat: "json"})
	client, err := redis.New(&config.Config{Redis: config.RedisConfig{Enabled: false}})
	require.NoError(t, err)
	return NewScoreHandler(assets, scores, scorer, redis.NewCache(client, "test"), log)
}

func sampleResult(ticker string) *contracts.Result {
	asset, _ := contracts.NewAsset(ticker, "", contracts.AssetStock, "NASDAQ")
	return &contracts.Result{
		Asset:     asset,
		Timestamp: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		FactorScores: map[contracts.Factor]float64{
			contracts.FactorTrend: 42.0,
		},
		AiScore:     42.0,
		Signal:      contracts.SignalBuy,
		Explanation: "strong uptrend",
	}
}

func TestGetAssets(t *testing.T) {
	aapl, _ := contracts.NewAsset("AAPL", "Apple", contracts.AssetStock, "NASDAQ")
	h := testHandler(t, &fakeAssetRepo{assets: []contracts.Asset{aapl}}, &fakeScoreRepo{}, &fakeScorer{})

	rec := httptest.NewRecorder()
	h.GetAssets(rec, httptest.NewRequest("GET", "/api/assets", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var got []contracts.Asset
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "AAPL", got[0].Ticker)
}

func TestGetAssetsError(t *testing.T) {
	h := testHandler(t, &fakeAssetRepo{err: fmt.Errorf("db down")}, &fakeScoreRepo{}, &fakeScorer{})

	rec := httptest.NewRecorder()
	h.GetAssets(rec, httptest.NewRequest("GET", "/api/assets", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestGetScores(t *testing.T) {
	scores := &fakeScoreRepo{latest: []*contracts.Result{sampleResult("AAPL"), sampleResult("MSFT")}}
	h := testHandler(t, &fakeAssetRepo{}, scores, &fakeScorer{})

	rec := httptest.NewRecorder()
	h.GetScores(rec, httptest.NewRequest("GET", "/api/scores", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var got []*contracts.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Len(t, got, 2)
}

func TestGetScore(t *testing.T) {
	scorer := &fakeScorer{result: sampleResult("AAPL")}
	h := testHandler(t, &fakeAssetRepo{}, &fakeScoreRepo{}, scorer)

	req := mux.SetURLVars(httptest.NewRequest("GET", "/api/score/aapl", nil), map[string]string{"ticker": "aapl"})
	rec := httptest.NewRecorder()
	h.GetScore(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var got contracts.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "AAPL", got.Asset.Ticker)
	assert.Equal(t, contracts.SignalBuy, got.Signal)
}

func TestGetScoreUntracked(t *testing.T) {
	scorer := &fakeScorer{err: fmt.Errorf("ticker TSLA is not tracked")}
	h := testHandler(t, &fakeAssetRepo{}, &fakeScoreRepo{}, scorer)

	req := mux.SetURLVars(httptest.NewRequest("GET", "/api/score/TSLA", nil), map[string]string{"ticker": "TSLA"})
	rec := httptest.NewRecorder()
	h.GetScore(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetHistory(t *testing.T) {
	scores := &fakeScoreRepo{history: []*contracts.Result{sampleResult("AAPL")}}
	h := testHandler(t, &fakeAssetRepo{}, scores, &fakeScorer{})

	req := mux.SetURLVars(httptest.NewRequest("GET", "/api/history/AAPL?days=7", nil), map[string]string{"ticker": "AAPL"})
	rec := httptest.NewRecorder()
	h.GetHistory(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetHistoryBadDays(t *testing.T) {
	h := testHandler(t, &fakeAssetRepo{}, &fakeScoreRepo{}, &fakeScorer{})

	for _, days := range []string{"0", "-5", "9000", "abc"} {
		req := mux.SetURLVars(
			httptest.NewRequest("GET", "/api/history/AAPL?days="+days, nil),
			map[string]string{"ticker": "AAPL"},
		)
		rec := httptest.NewRecorder()
		h.GetHistory(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code, "days=%s", days)
	}
}

func TestRefresh(t *testing.T) {
	scorer := &fakeScorer{}
	h := testHandler(t, &fakeAssetRepo{}, &fakeScoreRepo{}, scorer)

	rec := httptest.NewRecorder()
	h.Refresh(rec, httptest.NewRequest("POST", "/api/score/refresh", nil))

	assert.Equal(t, http.StatusAccepted, rec.Code)
}
