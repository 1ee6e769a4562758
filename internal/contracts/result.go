package contracts

import "time"

// Factor identifies one of the seven scoring dimensions.
type Factor string

const (
	FactorTrend            Factor = "trend"
	FactorVolatility       Factor = "volatility"
	FactorSentiment        Factor = "sentiment"
	FactorFundamental      Factor = "fundamental"
	FactorRelativeStrength Factor = "relative_strength"
	FactorInsiderFunds     Factor = "insider_funds"
	FactorMacro            Factor = "macro"
)

// Factors lists all factors in canonical order.
var Factors = []Factor{
	FactorTrend,
	FactorVolatility,
	FactorSentiment,
	FactorFundamental,
	FactorRelativeStrength,
	FactorInsiderFunds,
	FactorMacro,
}

// Signal is the discrete trading recommendation derived from the AI score.
type Signal string

const (
	SignalStrongBuy  Signal = "STRONG BUY"
	SignalBuy        Signal = "BUY"
	SignalNeutral    Signal = "NEUTRAL"
	SignalSell       Signal = "SELL"
	SignalStrongSell Signal = "STRONG SELL"
)

// SignalFromScore classifies a composite score into a discrete signal.
// Bands (inclusive lower bounds): >=60 STRONG BUY, >=25 BUY, >=-25 NEUTRAL,
// >=-60 SELL, else STRONG SELL.
func SignalFromScore(score float64) Signal {
	switch {
	case score >= 60:
		return SignalStrongBuy
	case score >= 25:
		return SignalBuy
	case score >= -25:
		return SignalNeutral
	case score >= -60:
		return SignalSell
	default:
		return SignalStrongSell
	}
}

// Result is one scoring outcome for an asset. Never mutated after
// construction; ownership passes to whichever collaborator persists or
// serializes it.
type Result struct {
	Asset     Asset     `json:"asset"`
	Timestamp time.Time `json:"timestamp"`

	// Per-factor scores, each in [-100, 100].
	FactorScores map[Factor]float64 `json:"factor_scores"`

	// Composite score in [-100, 100].
	AiScore float64 `json:"ai_score"`

	Signal      Signal `json:"signal"`
	Explanation string `json:"explanation"`

	// Weights used to build the composite.
	Weights map[Factor]float64 `json:"weights"`
}

// FactorScore returns the score for a factor, 0 when missing.
func (r *Result) FactorScore(f Factor) float64 {
	return r.FactorScores[f]
}
