package scoring

import (
	"github.com/alphapulse/pulse/internal/contracts"
	"github.com/alphapulse/pulse/pkg/logger"
)

// relStrengthPeriods are the lookbacks for relative return, with more
// weight on the longer horizons.
var (
	relStrengthPeriods = []int{5, 10, 20, 60}
	relStrengthWeights = []float64{0.1, 0.2, 0.3, 0.4}
)

// RelativeStrengthScorer measures performance against a benchmark series
// (index closes for stocks, BTC closes for crypto) supplied via
// Context.Benchmark. A weighted average of relative returns over several
// lookbacks is scaled so that ±10% outperformance maps to ±100. Without
// a benchmark the asset's deviation from its own long moving average is
// used instead.
type RelativeStrengthScorer struct {
	logger *logger.Logger
}

// NewRelativeStrengthScorer creates a new relative strength scorer.
func NewRelativeStrengthScorer(log *logger.Logger) *RelativeStrengthScorer {
	return &RelativeStrengthScorer{logger: log}
}

// Name returns the factor identity.
func (s *RelativeStrengthScorer) Name() contracts.Factor {
	return contracts.FactorRelativeStrength
}

// Score implements the Scorer contract.
func (s *RelativeStrengthScorer) Score(series contracts.Series, sctx *Context) float64 {
	score, err := s.score(series, sctx)
	return finalize(s.logger, s.Name(), score, err)
}

func (s *RelativeStrengthScorer) score(series contracts.Series, sctx *Context) (float64, error) {
	closes := series.Closes()
	if len(closes) < 20 {
		return 0, errInsufficientHistory
	}

	var benchmark []float64
	if sctx != nil && !sctx.Benchmark.Empty() {
		benchmark = sctx.Benchmark.Closes()
	}
	if len(benchmark) == 0 {
		return s.scoreVsOwnHistory(closes), nil
	}

	// Align tails so both series cover the same window.
	n := len(closes)
	if len(benchmark) < n {
		n = len(benchmark)
	}
	closes = closes[len(closes)-n:]
	benchmark = benchmark[len(benchmark)-n:]

	var components []weighted
	for i, period := range relStrengthPeriods {
		if n <= period {
			continue
		}
		assetRet := last(closes)/closes[n-period] - 1
		benchRet := last(benchmark)/benchmark[n-period] - 1
		components = append(components, weighted{assetRet - benchRet, relStrengthWeights[i]})
	}
	if len(components) == 0 {
		return 0, errInsufficientHistory
	}

	rel, _ := combine(components)
	return rel * 1000, nil
}

// scoreVsOwnHistory compares the last close against the 60-bar moving
// average when no benchmark series is available.
func (s *RelativeStrengthScorer) scoreVsOwnHistory(closes []float64) float64 {
	window := 60
	if len(closes) < window {
		window = len(closes)
	}
	ma := mean(closes[len(closes)-window:])
	deviation := (last(closes) - ma) / (ma + epsilon)
	return deviation * 500
}
