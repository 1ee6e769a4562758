package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/alphapulse/pulse/internal/contracts"
)

func TestFundamentalScorerStrongStock(t *testing.T) {
	scorer := NewFundamentalScorer(testLogger())
	series := seriesFromCloses(flatCloses(30))

	sctx := &Context{
		AssetClass: contracts.AssetStock,
		Fundamentals: &contracts.FundamentalData{
			PE:            f64ptr(8),
			ROE:           f64ptr(0.25),
			RevenueGrowth: f64ptr(0.40),
			ProfitMargin:  f64ptr(0.30),
		},
	}

	assert.Greater(t, scorer.Score(series, sctx), 50.0)
}

func TestFundamentalScorerWeakStock(t *testing.T) {
	scorer := NewFundamentalScorer(testLogger())
	series := seriesFromCloses(flatCloses(30))

	sctx := &Context{
		AssetClass: contracts.AssetStock,
		Fundamentals: &contracts.FundamentalData{
			PE:            f64ptr(80),
			ROE:           f64ptr(-0.10),
			RevenueGrowth: f64ptr(-0.30),
			DebtToEquity:  f64ptr(400),
			ProfitMargin:  f64ptr(-0.05),
		},
	}

	assert.Less(t, scorer.Score(series, sctx), -50.0)
}

func TestFundamentalScorerSkipsAbsentRatios(t *testing.T) {
	scorer := NewFundamentalScorer(testLogger())
	series := seriesFromCloses(flatCloses(30))

	// Only P/E present: the score is exactly the P/E band value.
	sctx := &Context{
		AssetClass:   contracts.AssetStock,
		Fundamentals: &contracts.FundamentalData{PE: f64ptr(12)},
	}

	assert.InDelta(t, 60.0, scorer.Score(series, sctx), 1e-9)
}

func TestFundamentalScorerCryptoBranch(t *testing.T) {
	scorer := NewFundamentalScorer(testLogger())

	// Flat price with steadily growing volume: the price/volume ratio is
	// collapsing (bullish) and the volume trend is rising (bullish).
	volumes := make([]float64, 40)
	for i := range volumes {
		volumes[i] = 1000 + float64(i)*100
	}
	series := seriesWithVolumes(flatCloses(40), volumes)

	score := scorer.Score(series, &Context{AssetClass: contracts.AssetCrypto})
	assert.Greater(t, score, 0.0)
}

func TestFundamentalScorerMomentumFallback(t *testing.T) {
	scorer := NewFundamentalScorer(testLogger())

	// No fundamentals: long-term performance stands in.
	rising := scorer.Score(seriesFromCloses(growthCloses(70, 0.005)), &Context{AssetClass: contracts.AssetStock})
	assert.Greater(t, rising, 0.0)

	falling := scorer.Score(seriesFromCloses(growthCloses(70, -0.005)), &Context{AssetClass: contracts.AssetStock})
	assert.Less(t, falling, 0.0)
}

func TestFundamentalScorerInsufficientHistory(t *testing.T) {
	scorer := NewFundamentalScorer(testLogger())
	series := seriesFromCloses(flatCloses(10))

	assert.Equal(t, 0.0, scorer.Score(series, &Context{AssetClass: contracts.AssetStock}))
}
