package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder exposes Prometheus metrics for scoring cycles and data providers.
type Recorder struct {
	cyclesTotal    prometheus.Counter
	assetsScored   *prometheus.CounterVec
	scoringErrors  *prometheus.CounterVec
	providerErrors *prometheus.CounterVec
	lastAiScore    *prometheus.GaugeVec
	cycleDuration  prometheus.Histogram
}

// New creates a new metrics recorder, registering collectors on the
// default registry. Call at most once per process.
func New() *Recorder {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry registers the collectors on the given registerer.
// Tests pass a fresh registry to avoid duplicate registration.
func NewWithRegistry(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		cyclesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "pulse_scoring_cycles_total",
			Help: "Total number of scoring cycles run",
		}),
		assetsScored: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pulse_assets_scored_total",
				Help: "Total number of assets scored, by outcome",
			},
			[]string{"outcome"},
		),
		scoringErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pulse_scoring_errors_total",
				Help: "Total scoring failures by ticker",
			},
			[]string{"ticker"},
		),
		providerErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pulse_provider_errors_total",
				Help: "Total data provider fetch failures",
			},
			[]string{"provider"},
		),
		lastAiScore: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "pulse_ai_score",
				Help: "Last composite AI score per ticker",
			},
			[]string{"ticker"},
		),
		cycleDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "pulse_cycle_duration_seconds",
			Help:    "Duration of full scoring cycles in seconds",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// RecordCycle records a completed scoring cycle and its duration.
func (r *Recorder) RecordCycle(seconds float64) {
	r.cyclesTotal.Inc()
	r.cycleDuration.Observe(seconds)
}

// RecordAssetScored records the outcome ("ok" or "failed") of one asset.
func (r *Recorder) RecordAssetScored(outcome string) {
	r.assetsScored.WithLabelValues(outcome).Inc()
}

// RecordScoringError records a scoring failure for a ticker.
func (r *Recorder) RecordScoringError(ticker string) {
	r.scoringErrors.WithLabelValues(ticker).Inc()
}

// RecordProviderError records a provider fetch failure.
func (r *Recorder) RecordProviderError(provider string) {
	r.providerErrors.WithLabelValues(provider).Inc()
}

// RecordAiScore records the latest composite score for a ticker.
func (r *Recorder) RecordAiScore(ticker string, score float64) {
	r.lastAiScore.WithLabelValues(ticker).Set(score)
}
