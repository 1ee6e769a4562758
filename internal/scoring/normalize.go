package scoring

import "math"

// zScoreScale maps a z-score of ~3 to the edge of the score range.
const zScoreScale = 33.0

// defaultZWindow is the default lookback for normalizeZScore.
const defaultZWindow = 20

// normalizeZScore summarizes how extreme the last value of a series is
// relative to its own trailing distribution, as a score in [-100, 100].
//
// The trailing mean and sample standard deviation are computed over the
// last window observations (inclusive of the most recent). Fewer than
// window observations, or a degenerate (constant) window, yield the
// neutral score 0. Every factor scorer uses this same primitive with
// identical window and clipping semantics.
func normalizeZScore(values []float64, window int) float64 {
	if len(values) < window {
		return 0
	}

	tail := values[len(values)-window:]
	m := mean(tail)
	std := sampleStd(tail)
	if std == 0 || math.IsNaN(std) {
		return 0
	}

	z := (last(tail) - m) / std
	return clamp(z*zScoreScale, -100, 100)
}
