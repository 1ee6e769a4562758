package scoring

import (
	"math"

	"github.com/alphapulse/pulse/internal/contracts"
	"github.com/alphapulse/pulse/pkg/logger"
)

// VolatilityScorer scores realized volatility from normalized ATR and
// Bollinger Band width. Lower volatility maps to a higher (more
// favorable) score. Reads no context fields.
type VolatilityScorer struct {
	logger *logger.Logger
}

// NewVolatilityScorer creates a new volatility scorer.
func NewVolatilityScorer(log *logger.Logger) *VolatilityScorer {
	return &VolatilityScorer{logger: log}
}

// Name returns the factor identity.
func (s *VolatilityScorer) Name() contracts.Factor {
	return contracts.FactorVolatility
}

// Score implements the Scorer contract.
func (s *VolatilityScorer) Score(series contracts.Series, _ *Context) float64 {
	score, err := s.score(series)
	return finalize(s.logger, s.Name(), score, err)
}

func (s *VolatilityScorer) score(series contracts.Series) (float64, error) {
	closes := series.Closes()
	highs := series.Highs()
	lows := series.Lows()
	if len(closes) < 20 {
		return 0, errInsufficientHistory
	}

	// ATR(14) as a fraction of price, z-scored against its own history.
	tr := trueRanges(highs, lows, closes)
	atrPct := make([]float64, 0, len(tr))
	for i := 13; i < len(tr); i++ {
		atr := mean(tr[i-13 : i+1])
		atrPct = append(atrPct, atr/closes[i])
	}
	atrZ := normalizeZScore(atrPct, defaultZWindow)

	// Bollinger Band width: 2*rolling std / rolling mean over 20 bars.
	bbWidth := make([]float64, 0, len(closes))
	for i := 19; i < len(closes); i++ {
		window := closes[i-19 : i+1]
		m := mean(window)
		if m == 0 || math.IsNaN(m) {
			continue
		}
		bbWidth = append(bbWidth, 2*sampleStd(window)/m)
	}
	bbZ := normalizeZScore(bbWidth, defaultZWindow)

	// High volatility is risk, so the composite is inverted.
	return -(atrZ*0.5 + bbZ*0.5), nil
}

// trueRanges computes the true range series: max of high-low,
// |high-prev close| and |low-prev close|. The first entry falls back to
// high-low since there is no previous close.
func trueRanges(highs, lows, closes []float64) []float64 {
	out := make([]float64, len(closes))
	for i := range closes {
		hl := highs[i] - lows[i]
		if i == 0 {
			out[i] = hl
			continue
		}
		hc := math.Abs(highs[i] - closes[i-1])
		lc := math.Abs(lows[i] - closes[i-1])
		out[i] = math.Max(hl, math.Max(hc, lc))
	}
	return out
}
