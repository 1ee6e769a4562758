package storage

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alphapulse/pulse/internal/contracts"
)

// testPool connects to the database named by PULSE_TEST_DATABASE_URL.
// Repository tests are integration tests and skip without it.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	url := os.Getenv("PULSE_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("PULSE_TEST_DATABASE_URL not set")
	}

	pool, err := pgxpool.New(context.Background(), url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, Migrate(context.Background(), pool))
	return pool
}

func TestAssetRepositoryRoundTrip(t *testing.T) {
	pool := testPool(t)
	repo := NewAssetRepository(pool)
	ctx := context.Background()

	asset, err := contracts.NewAsset("TESTAAPL", "Apple Inc.", contracts.AssetStock, "NASDAQ")
	require.NoError(t, err)

	id, err := repo.Upsert(ctx, asset)
	require.NoError(t, err)
	assert.Greater(t, id, int64(0))

	// Upsert is idempotent on ticker.
	again, err := repo.Upsert(ctx, asset)
	require.NoError(t, err)
	assert.Equal(t, id, again)

	got, err := repo.GetByTicker(ctx, "TESTAAPL")
	require.NoError(t, err)
	assert.Equal(t, asset.Name, got.Name)
	assert.Equal(t, asset.Class, got.Class)

	_, err = repo.GetByTicker(ctx, "TESTMISSING")
	assert.ErrorIs(t, err, ErrNotFound)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, list)
}

func TestBarRepositoryRoundTrip(t *testing.T) {
	pool := testPool(t)
	assets := NewAssetRepository(pool)
	bars := NewBarRepository(pool)
	ctx := context.Background()

	asset, err := contracts.NewAsset("TESTBTC", "Bitcoin", contracts.AssetCrypto, "BINANCE")
	require.NoError(t, err)
	_, err = assets.Upsert(ctx, asset)
	require.NoError(t, err)

	base := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	series := contracts.Series{
		{Timestamp: base, Open: 100, High: 110, Low: 95, Close: 105, Volume: 10},
		{Timestamp: base.AddDate(0, 0, 1), Open: 105, High: 112, Low: 101, Close: 108, Volume: 12},
	}
	require.NoError(t, bars.SaveBatch(ctx, "TESTBTC", series))

	// Saving the same bars again updates in place.
	require.NoError(t, bars.SaveBatch(ctx, "TESTBTC", series))

	got, err := bars.GetRange(ctx, "TESTBTC", base, base.AddDate(0, 0, 2))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 105.0, got[0].Close)
	assert.True(t, got[0].Timestamp.Before(got[1].Timestamp))
}

func TestScoreRepositoryRoundTrip(t *testing.T) {
	pool := testPool(t)
	assets := NewAssetRepository(pool)
	scores := NewScoreRepository(pool)
	ctx := context.Background()

	asset, err := contracts.NewAsset("TESTETH", "Ethereum", contracts.AssetCrypto, "BINANCE")
	require.NoError(t, err)
	_, err = assets.Upsert(ctx, asset)
	require.NoError(t, err)

	result := &contracts.Result{
		Asset:     asset,
		Timestamp: time.Now().UTC().Truncate(time.Second),
		FactorScores: map[contracts.Factor]float64{
			contracts.FactorTrend:            42.5,
			contracts.FactorVolatility:       -10.0,
			contracts.FactorSentiment:        15.0,
			contracts.FactorFundamental:      5.0,
			contracts.FactorRelativeStrength: 20.0,
			contracts.FactorInsiderFunds:     0.0,
			contracts.FactorMacro:            -5.0,
		},
		AiScore:     26.4,
		Signal:      contracts.SignalBuy,
		Explanation: "strong uptrend",
	}
	require.NoError(t, scores.Save(ctx, result))

	// Unknown ticker is an error, not a silent no-op.
	bad := *result
	bad.Asset.Ticker = "TESTMISSING"
	assert.Error(t, scores.Save(ctx, &bad))

	latest, err := scores.LatestAll(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, latest)

	history, err := scores.History(ctx, "TESTETH", 7)
	require.NoError(t, err)
	require.NotEmpty(t, history)
	assert.Equal(t, 26.4, history[0].AiScore)
	assert.Equal(t, contracts.SignalBuy, history[0].Signal)
	assert.Equal(t, 42.5, history[0].FactorScores[contracts.FactorTrend])
}
