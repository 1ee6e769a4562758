package scoring

import "math"

// epsilon guards divisions by values that may be zero.
const epsilon = 1e-10

// clamp bounds v to [lo, hi].
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// mean returns the arithmetic mean of values, 0 for an empty slice.
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// sampleStd returns the sample standard deviation (ddof=1).
// Returns 0 for fewer than two values.
func sampleStd(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}
	m := mean(values)
	var ss float64
	for _, v := range values {
		d := v - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(n-1))
}

// rollingMeanLast returns the mean of the trailing window of values,
// NaN when there are fewer observations than the window.
func rollingMeanLast(values []float64, window int) float64 {
	if len(values) < window {
		return math.NaN()
	}
	return mean(values[len(values)-window:])
}

// pctChange returns the periods-step relative change series. The result
// has len(values)-periods entries; the undefined head is dropped rather
// than padded.
func pctChange(values []float64, periods int) []float64 {
	if len(values) <= periods {
		return nil
	}
	out := make([]float64, 0, len(values)-periods)
	for i := periods; i < len(values); i++ {
		prev := values[i-periods]
		if prev == 0 {
			out = append(out, 0)
			continue
		}
		out = append(out, values[i]/prev-1)
	}
	return out
}

// diff returns one-step differences, len(values)-1 entries.
func diff(values []float64) []float64 {
	if len(values) < 2 {
		return nil
	}
	out := make([]float64, len(values)-1)
	for i := 1; i < len(values); i++ {
		out[i-1] = values[i] - values[i-1]
	}
	return out
}

// sign returns -1, 0 or +1.
func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

// last returns the final element of values. Callers must ensure the
// slice is non-empty.
func last(values []float64) float64 {
	return values[len(values)-1]
}

// round1 rounds to one decimal place, matching the stored precision of
// factor scores.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
