package scoring

import (
	"github.com/alphapulse/pulse/internal/contracts"
	"github.com/alphapulse/pulse/pkg/logger"
)

// TrendScorer scores price trend from the 20/50 moving-average cross,
// 14-bar RSI bands and z-scored 5-bar momentum. Reads no context fields.
type TrendScorer struct {
	logger *logger.Logger
}

// NewTrendScorer creates a new trend scorer.
func NewTrendScorer(log *logger.Logger) *TrendScorer {
	return &TrendScorer{logger: log}
}

// Name returns the factor identity.
func (s *TrendScorer) Name() contracts.Factor {
	return contracts.FactorTrend
}

// Score implements the Scorer contract.
func (s *TrendScorer) Score(series contracts.Series, _ *Context) float64 {
	score, err := s.score(series)
	return finalize(s.logger, s.Name(), score, err)
}

func (s *TrendScorer) score(series contracts.Series) (float64, error) {
	closes := series.Closes()
	if len(closes) < 50 {
		return 0, errInsufficientHistory
	}

	// MA crossover signal in [-1, 1]: direction from the 20/50 order,
	// magnitude from the relative gap capped at 1.
	ma20 := rollingMeanLast(closes, 20)
	ma50 := rollingMeanLast(closes, 50)

	maSignal := -1.0
	if ma20 > ma50 {
		maSignal = 1.0
	}
	maStrength := (ma20 - ma50) / ma50
	if maStrength < 0 {
		maStrength = -maStrength
	}
	maScore := maSignal * min(maStrength*1000, 1.0)

	// RSI bands: oversold is bullish, overbought bearish.
	rsi := relativeStrengthIndex(closes, 14)
	var rsiScore float64
	switch {
	case rsi < 30:
		rsiScore = 0.8
	case rsi < 50:
		rsiScore = 0.3
	case rsi < 70:
		rsiScore = -0.1
	default:
		rsiScore = -0.7
	}

	// Z-score of 5-bar return momentum.
	momentum := pctChange(closes, 5)
	zScore := normalizeZScore(momentum, defaultZWindow) / 100

	combined := maScore*0.4 + rsiScore*0.3 + zScore*0.3
	return combined * 100, nil
}

// relativeStrengthIndex computes an RSI over simple rolling means of
// gains and losses (not Wilder smoothing).
func relativeStrengthIndex(closes []float64, period int) float64 {
	deltas := diff(closes)
	if len(deltas) < period {
		return 50 // neutral
	}

	tail := deltas[len(deltas)-period:]
	var gain, loss float64
	for _, d := range tail {
		if d > 0 {
			gain += d
		} else {
			loss += -d
		}
	}
	avgGain := gain / float64(period)
	avgLoss := loss / float64(period)

	rs := avgGain / (avgLoss + epsilon)
	return 100 - 100/(1+rs)
}
