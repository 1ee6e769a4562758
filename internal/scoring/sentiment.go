package scoring

import (
	"math"

	"github.com/alphapulse/pulse/internal/contracts"
	"github.com/alphapulse/pulse/pkg/logger"
)

// SentimentScorer scores market sentiment. When Context.News is present
// the averaged article sentiment contributes with weight 0.4; three
// price-action proxies (CCI, Williams %R, volume-price trend) are always
// computed. The final score is the weighted average of the components
// that produced a value.
type SentimentScorer struct {
	logger *logger.Logger
}

// NewSentimentScorer creates a new sentiment scorer.
func NewSentimentScorer(log *logger.Logger) *SentimentScorer {
	return &SentimentScorer{logger: log}
}

// Name returns the factor identity.
func (s *SentimentScorer) Name() contracts.Factor {
	return contracts.FactorSentiment
}

// Score implements the Scorer contract.
func (s *SentimentScorer) Score(series contracts.Series, sctx *Context) float64 {
	score, err := s.score(series, sctx)
	return finalize(s.logger, s.Name(), score, err)
}

type weighted struct {
	score  float64
	weight float64
}

// combine returns the weighted average of components, renormalized over
// the weights actually present.
func combine(components []weighted) (float64, error) {
	if len(components) == 0 {
		return 0, errInsufficientHistory
	}
	var sum, totalW float64
	for _, c := range components {
		sum += c.score * c.weight
		totalW += c.weight
	}
	return clamp(sum/totalW, -100, 100), nil
}

func (s *SentimentScorer) score(series contracts.Series, sctx *Context) (float64, error) {
	var components []weighted

	// News sentiment, when the feed supplied articles.
	if sctx != nil && len(sctx.News) > 0 {
		var raw float64
		for _, n := range sctx.News {
			raw += n.Sentiment
		}
		raw /= float64(len(sctx.News))
		components = append(components, weighted{clamp(raw*100, -100, 100), 0.4})
	}

	components = append(components,
		weighted{s.cciScore(series, 20), 0.25},
		weighted{s.williamsRScore(series, 14), 0.20},
		weighted{s.vptScore(series), 0.15},
	)

	return combine(components)
}

// cciScore maps the 20-bar Commodity Channel Index to a score:
// CCI = (typical price - MA) / (0.015 * mean absolute deviation),
// with +/-200 CCI mapping to +/-100.
func (s *SentimentScorer) cciScore(series contracts.Series, period int) float64 {
	if series.Len() < period {
		return 0
	}

	highs := series.Highs()
	lows := series.Lows()
	closes := series.Closes()

	tp := make([]float64, len(closes))
	for i := range closes {
		tp[i] = (highs[i] + lows[i] + closes[i]) / 3
	}

	window := tp[len(tp)-period:]
	ma := mean(window)

	var mad float64
	for _, v := range window {
		mad += math.Abs(v - ma)
	}
	mad /= float64(period)

	cci := (last(tp) - ma) / (0.015*mad + epsilon)
	return clamp(cci/2, -100, 100)
}

// williamsRScore maps the 14-bar Williams %R through oversold/overbought
// bands, adjusted by its own 5-bar trend (recovering out of oversold is
// bullish).
func (s *SentimentScorer) williamsRScore(series contracts.Series, period int) float64 {
	if series.Len() < period {
		return 0
	}

	highs := series.Highs()
	lows := series.Lows()
	closes := series.Closes()

	// %R series over every full window; values in [-100, 0].
	wr := make([]float64, 0, len(closes)-period+1)
	for i := period - 1; i < len(closes); i++ {
		hh := maxOf(highs[i-period+1 : i+1])
		ll := minOf(lows[i-period+1 : i+1])
		wr = append(wr, (hh-closes[i])/(hh-ll+epsilon)*-100)
	}

	current := last(wr)

	var base float64
	switch {
	case current < -80:
		base = 60 // oversold, bounce potential
	case current < -50:
		base = 10
	case current < -20:
		base = -10
	default:
		base = -40 // overbought
	}

	var trendAdj float64
	if len(wr) >= 5 {
		trendAdj = clamp((current-wr[len(wr)-5])*2, -30, 30)
	}

	return clamp(base+trendAdj, -100, 100)
}

// vptScore z-scores the cumulative volume-price trend: who is buying
// with volume behind them.
func (s *SentimentScorer) vptScore(series contracts.Series) float64 {
	if series.Len() < 20 {
		return 0
	}

	closes := series.Closes()
	volumes := series.Volumes()

	vpt := make([]float64, len(closes))
	var cum float64
	for i := range closes {
		if i > 0 && closes[i-1] != 0 {
			cum += volumes[i] * (closes[i]/closes[i-1] - 1)
		}
		vpt[i] = cum
	}

	return normalizeZScore(vpt, defaultZWindow)
}

func maxOf(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

func minOf(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m
}
