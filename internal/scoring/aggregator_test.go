package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alphapulse/pulse/internal/contracts"
)

func testAsset(t *testing.T) contracts.Asset {
	t.Helper()
	asset, err := contracts.NewAsset("AAPL", "Apple Inc.", contracts.AssetStock, "NASDAQ")
	require.NoError(t, err)
	return asset
}

func TestNewAggregatorDefaults(t *testing.T) {
	agg, err := NewAggregator(nil, testLogger())
	require.NoError(t, err)
	assert.NoError(t, agg.Weights().Validate())
}

func TestNewAggregatorRejectsBadWeights(t *testing.T) {
	w := DefaultWeights()
	w[contracts.FactorTrend] = 0.9

	_, err := NewAggregator(w, testLogger())
	assert.Error(t, err)
}

func TestScoreAssetEmptySeries(t *testing.T) {
	agg, err := NewAggregator(nil, testLogger())
	require.NoError(t, err)

	_, err = agg.ScoreAsset(testAsset(t), nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoSeries)
}

func TestScoreAssetProducesAllFactors(t *testing.T) {
	agg, err := NewAggregator(nil, testLogger())
	require.NoError(t, err)

	series := seriesFromCloses(growthCloses(90, 0.005))
	result, err := agg.ScoreAsset(testAsset(t), series, &Context{AssetClass: contracts.AssetStock})
	require.NoError(t, err)

	assert.Len(t, result.FactorScores, len(contracts.Factors))
	for _, f := range contracts.Factors {
		score, ok := result.FactorScores[f]
		assert.True(t, ok, "missing factor %s", f)
		assert.GreaterOrEqual(t, score, -100.0)
		assert.LessOrEqual(t, score, 100.0)
	}

	assert.GreaterOrEqual(t, result.AiScore, -100.0)
	assert.LessOrEqual(t, result.AiScore, 100.0)
	assert.Equal(t, contracts.SignalFromScore(result.AiScore), result.Signal)
	assert.NotEmpty(t, result.Explanation)
	assert.False(t, result.Timestamp.IsZero())
}

func TestScoreAssetDeterministic(t *testing.T) {
	agg, err := NewAggregator(nil, testLogger())
	require.NoError(t, err)

	series := seriesFromCloses(growthCloses(90, 0.004))
	sctx := &Context{AssetClass: contracts.AssetStock, News: newsWith(0.5)}

	first, err := agg.ScoreAsset(testAsset(t), series, sctx)
	require.NoError(t, err)
	second, err := agg.ScoreAsset(testAsset(t), series, sctx)
	require.NoError(t, err)

	assert.Equal(t, first.FactorScores, second.FactorScores)
	assert.Equal(t, first.AiScore, second.AiScore)
	assert.Equal(t, first.Signal, second.Signal)
	assert.Equal(t, first.Explanation, second.Explanation)
}

func TestScoreAssetCompositeMatchesWeights(t *testing.T) {
	agg, err := NewAggregator(nil, testLogger())
	require.NoError(t, err)

	series := seriesFromCloses(growthCloses(90, 0.006))
	result, err := agg.ScoreAsset(testAsset(t), series, nil)
	require.NoError(t, err)

	var want float64
	for f, w := range result.Weights {
		want += result.FactorScores[f] * w
	}
	// Factor scores are rounded after the composite is formed, so allow
	// for the rounding drift.
	assert.InDelta(t, want, result.AiScore, 0.5)
}

type panicScorer struct{}

func (p panicScorer) Name() contracts.Factor { return contracts.FactorTrend }
func (p panicScorer) Score(contracts.Series, *Context) float64 {
	panic("scorer exploded")
}

func TestRunScorerRecoversPanic(t *testing.T) {
	agg, err := NewAggregator(nil, testLogger())
	require.NoError(t, err)

	series := seriesFromCloses(flatCloses(30))
	assert.Equal(t, 0.0, agg.runScorer(panicScorer{}, series, nil))
}

func TestBuildExplanation(t *testing.T) {
	neutral := buildExplanation(map[contracts.Factor]float64{})
	assert.Equal(t, "neutral market", neutral)

	bullish := buildExplanation(map[contracts.Factor]float64{
		contracts.FactorTrend:     75,
		contracts.FactorSentiment: 45,
	})
	assert.Equal(t, "strong uptrend | positive sentiment", bullish)

	bearish := buildExplanation(map[contracts.Factor]float64{
		contracts.FactorTrend:      -55,
		contracts.FactorVolatility: -40,
		contracts.FactorMacro:      -35,
	})
	assert.Equal(t, "downtrend | high volatility | adverse macro backdrop", bearish)
}
