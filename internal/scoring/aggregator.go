package scoring

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alphapulse/pulse/internal/contracts"
	"github.com/alphapulse/pulse/pkg/logger"
)

// Aggregator runs all seven factor scorers and blends their output into
// a single AI score with a discrete signal and a human-readable summary.
type Aggregator struct {
	scorers []Scorer
	weights WeightSet
	logger  *logger.Logger
}

// NewAggregator wires the default scorer set with the given weights.
// The weight set is validated up front so a misconfigured deployment
// fails at startup rather than producing skewed scores.
func NewAggregator(weights WeightSet, log *logger.Logger) (*Aggregator, error) {
	if weights == nil {
		weights = DefaultWeights()
	}
	if err := weights.Validate(); err != nil {
		return nil, err
	}

	return &Aggregator{
		scorers: []Scorer{
			NewTrendScorer(log),
			NewVolatilityScorer(log),
			NewSentimentScorer(log),
			NewFundamentalScorer(log),
			NewRelativeStrengthScorer(log),
			NewInsiderFundsScorer(log),
			NewMacroScorer(log),
		},
		weights: weights,
		logger:  log,
	}, nil
}

// Weights returns the weight set in use.
func (a *Aggregator) Weights() WeightSet {
	out := make(WeightSet, len(a.weights))
	for f, w := range a.weights {
		out[f] = w
	}
	return out
}

// ScoreAsset evaluates one asset. A failing scorer contributes 0.0 and
// never takes the others down with it.
func (a *Aggregator) ScoreAsset(asset contracts.Asset, series contracts.Series, sctx *Context) (*contracts.Result, error) {
	if series.Empty() {
		return nil, fmt.Errorf("scoring %s: %w", asset.Ticker, ErrNoSeries)
	}
	if err := series.Validate(); err != nil {
		return nil, fmt.Errorf("scoring %s: %w", asset.Ticker, err)
	}

	factorScores := make(map[contracts.Factor]float64, len(a.scorers))
	for _, scorer := range a.scorers {
		factorScores[scorer.Name()] = a.runScorer(scorer, series, sctx)
	}

	var aiScore float64
	for factor, weight := range a.weights {
		aiScore += factorScores[factor] * weight
	}
	aiScore = round1(clamp(aiScore, -100, 100))

	for factor, score := range factorScores {
		factorScores[factor] = round1(score)
	}

	signal := contracts.SignalFromScore(aiScore)

	a.logger.WithFields(map[string]interface{}{
		"ticker":   asset.Ticker,
		"ai_score": aiScore,
		"signal":   string(signal),
	}).Info("Asset scored")

	return &contracts.Result{
		Asset:        asset,
		Timestamp:    time.Now().UTC(),
		FactorScores: factorScores,
		AiScore:      aiScore,
		Signal:       signal,
		Explanation:  buildExplanation(factorScores),
		Weights:      a.weights,
	}, nil
}

// runScorer isolates a single scorer; a panic is downgraded to the
// neutral score.
func (a *Aggregator) runScorer(scorer Scorer, series contracts.Series, sctx *Context) (score float64) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.WithFields(map[string]interface{}{
				"factor": string(scorer.Name()),
				"panic":  fmt.Sprint(r),
			}).Error("Scorer panicked, using neutral score")
			score = 0.0
		}
	}()

	return scorer.Score(series, sctx)
}

// buildExplanation turns the factor scores into a short pipe-joined
// summary of whatever stands out.
func buildExplanation(scores map[contracts.Factor]float64) string {
	var parts []string

	t := scores[contracts.FactorTrend]
	s := scores[contracts.FactorSentiment]
	f := scores[contracts.FactorFundamental]
	rs := scores[contracts.FactorRelativeStrength]
	v := scores[contracts.FactorVolatility]
	ins := scores[contracts.FactorInsiderFunds]
	m := scores[contracts.FactorMacro]

	switch {
	case t > 40:
		parts = append(parts, "strong uptrend")
	case t < -40:
		parts = append(parts, "downtrend")
	}
	switch {
	case s > 30:
		parts = append(parts, "positive sentiment")
	case s < -30:
		parts = append(parts, "negative sentiment")
	}
	switch {
	case f > 40:
		parts = append(parts, "strong fundamentals")
	case f < -40:
		parts = append(parts, "weak fundamentals")
	}
	switch {
	case rs > 30:
		parts = append(parts, "outperforming the market")
	case rs < -30:
		parts = append(parts, "lagging the market")
	}
	switch {
	case v > 30:
		parts = append(parts, "low volatility")
	case v < -30:
		parts = append(parts, "high volatility")
	}
	if ins > 30 {
		parts = append(parts, "institutional accumulation")
	}
	switch {
	case m > 30:
		parts = append(parts, "supportive macro backdrop")
	case m < -30:
		parts = append(parts, "adverse macro backdrop")
	}

	if len(parts) == 0 {
		return "neutral market"
	}
	return strings.Join(parts, " | ")
}

// ErrNoSeries reports a scoring request for an asset with no stored bars.
var ErrNoSeries = errors.New("no price series available")
