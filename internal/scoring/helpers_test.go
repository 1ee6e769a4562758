package scoring

import (
	"math"
	"time"

	"github.com/alphapulse/pulse/internal/contracts"
	"github.com/alphapulse/pulse/pkg/config"
	"github.com/alphapulse/pulse/pkg/logger"
)

func testLogger() *logger.Logger {
	cfg := &config.Config{Env: "test", LogLevel: "error", LogFormat: "json"}
	return logger.New(cfg)
}

// seriesFromCloses builds a valid daily series around the given closes,
// with a fixed 2% high-low band and constant volume.
func seriesFromCloses(closes []float64) contracts.Series {
	return seriesWithVolumes(closes, nil)
}

func seriesWithVolumes(closes, volumes []float64) contracts.Series {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make(contracts.Series, len(closes))
	for i, c := range closes {
		vol := 1000.0
		if volumes != nil {
			vol = volumes[i]
		}
		bars[i] = contracts.Bar{
			Timestamp: start.AddDate(0, 0, i),
			Open:      c,
			High:      c * 1.01,
			Low:       c * 0.99,
			Close:     c,
			Volume:    vol,
		}
	}
	return bars
}

// growthCloses returns n closes compounding at the given daily rate, so
// the bar-over-bar return is constant.
func growthCloses(n int, rate float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 100 * math.Pow(1+rate, float64(i))
	}
	return out
}

func flatCloses(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 100
	}
	return out
}

func f64ptr(v float64) *float64 { return &v }
