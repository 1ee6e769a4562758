package contracts

import (
	"fmt"
	"time"
)

// Bar is one OHLCV observation at a point in time.
type Bar struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
}

// Series is a time-ordered, timestamp-unique sequence of bars for one
// instrument, ascending by timestamp. Calendar gaps are permitted.
type Series []Bar

// Len returns the number of bars.
func (s Series) Len() int {
	return len(s)
}

// Empty reports whether the series has no bars.
func (s Series) Empty() bool {
	return len(s) == 0
}

// Last returns the most recent bar. The series must be non-empty.
func (s Series) Last() Bar {
	return s[len(s)-1]
}

// Closes returns the close column.
func (s Series) Closes() []float64 {
	out := make([]float64, len(s))
	for i, b := range s {
		out[i] = b.Close
	}
	return out
}

// Highs returns the high column.
func (s Series) Highs() []float64 {
	out := make([]float64, len(s))
	for i, b := range s {
		out[i] = b.High
	}
	return out
}

// Lows returns the low column.
func (s Series) Lows() []float64 {
	out := make([]float64, len(s))
	for i, b := range s {
		out[i] = b.Low
	}
	return out
}

// Volumes returns the volume column.
func (s Series) Volumes() []float64 {
	out := make([]float64, len(s))
	for i, b := range s {
		out[i] = b.Volume
	}
	return out
}

// Validate checks the structural invariants of a series: non-empty,
// strictly ascending timestamps, positive prices and non-negative volume.
func (s Series) Validate() error {
	if len(s) == 0 {
		return fmt.Errorf("series is empty")
	}

	for i, b := range s {
		if b.Open <= 0 || b.High <= 0 || b.Low <= 0 || b.Close <= 0 {
			return fmt.Errorf("bar %d: prices must be positive", i)
		}
		if b.Volume < 0 {
			return fmt.Errorf("bar %d: volume must be non-negative", i)
		}
		if i > 0 && !s[i-1].Timestamp.Before(b.Timestamp) {
			return fmt.Errorf("bar %d: timestamps must be strictly ascending", i)
		}
	}

	return nil
}
