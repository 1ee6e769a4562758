package scoring

import (
	"errors"
	"fmt"
	"math"

	"github.com/alphapulse/pulse/internal/contracts"
)

// weightSumTolerance bounds the allowed deviation of a weight set's sum
// from 1.0.
const weightSumTolerance = 0.001

// WeightSet maps each factor to its share of the composite score.
type WeightSet map[contracts.Factor]float64

// DefaultWeights is the production weighting: trend dominates direction,
// sentiment and fundamentals split the quality read, the rest provide
// context.
func DefaultWeights() WeightSet {
	return WeightSet{
		contracts.FactorTrend:            0.35,
		contracts.FactorSentiment:        0.20,
		contracts.FactorFundamental:      0.20,
		contracts.FactorRelativeStrength: 0.10,
		contracts.FactorVolatility:       0.05,
		contracts.FactorInsiderFunds:     0.05,
		contracts.FactorMacro:            0.05,
	}
}

// Validate rejects weight sets that do not cover every factor with
// non-negative weights summing to 1.0 within tolerance.
func (w WeightSet) Validate() error {
	var sum float64
	for _, f := range contracts.Factors {
		weight, ok := w[f]
		if !ok {
			return fmt.Errorf("weights: missing factor %q", f)
		}
		if weight < 0 {
			return fmt.Errorf("weights: negative weight %.3f for factor %q", weight, f)
		}
		sum += weight
	}
	if len(w) != len(contracts.Factors) {
		return errors.New("weights: unknown factor present")
	}
	if math.Abs(sum-1.0) > weightSumTolerance {
		return fmt.Errorf("weights: sum %.4f is not 1.0", sum)
	}
	return nil
}
