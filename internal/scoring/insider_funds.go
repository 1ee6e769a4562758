package scoring

import (
	"github.com/alphapulse/pulse/internal/contracts"
	"github.com/alphapulse/pulse/pkg/logger"
)

// InsiderFundsScorer gauges smart-money interest. Ownership data from
// Context.Ownership (institutional share, short interest, insider share)
// carries half the weight when present; on-balance volume and abnormal
// volume are always computed from the series.
type InsiderFundsScorer struct {
	logger *logger.Logger
}

// NewInsiderFundsScorer creates a new insider/funds scorer.
func NewInsiderFundsScorer(log *logger.Logger) *InsiderFundsScorer {
	return &InsiderFundsScorer{logger: log}
}

// Name returns the factor identity.
func (s *InsiderFundsScorer) Name() contracts.Factor {
	return contracts.FactorInsiderFunds
}

// Score implements the Scorer contract.
func (s *InsiderFundsScorer) Score(series contracts.Series, sctx *Context) float64 {
	score, err := s.score(series, sctx)
	return finalize(s.logger, s.Name(), score, err)
}

func (s *InsiderFundsScorer) score(series contracts.Series, sctx *Context) (float64, error) {
	var components []weighted

	if sctx != nil && !sctx.Ownership.Empty() {
		if v, ok := ownershipScore(sctx.Ownership); ok {
			components = append(components, weighted{v, 0.5})
		}
	}

	components = append(components, weighted{obvScore(series), 0.3})
	components = append(components, weighted{volumeSurgeScore(series), 0.2})

	return combine(components)
}

// ownershipScore averages the band scores of whichever ownership metrics
// are available.
func ownershipScore(o *contracts.OwnershipData) (float64, bool) {
	var score float64
	var count int

	// Institutional share: 50-80% is the healthy range; above that
	// crowding cuts both ways.
	if o.InstitutionalPct != nil {
		pct := *o.InstitutionalPct
		switch {
		case pct >= 0.5 && pct <= 0.8:
			score += 60
		case pct > 0.8:
			score += 30
		case pct > 0.3:
			score += 20
		default:
			score -= 20
		}
		count++
	}

	if o.ShortPctOfFloat != nil {
		pct := *o.ShortPctOfFloat
		switch {
		case pct < 0.05:
			score += 30
		case pct < 0.10:
			// neutral
		case pct < 0.20:
			score -= 30
		default:
			score -= 60
		}
		count++
	}

	if o.InsiderPct != nil {
		pct := *o.InsiderPct
		switch {
		case pct > 0.10:
			score += 40
		case pct > 0.05:
			score += 20
		case pct < 0.01:
			score -= 10
		}
		count++
	}

	if count == 0 {
		return 0, false
	}
	return clamp(score/float64(count), -100, 100), true
}

// obvScore computes on-balance volume and normalizes its recent trend.
// Rising OBV alongside rising price points at accumulation.
func obvScore(series contracts.Series) float64 {
	closes := series.Closes()
	volumes := series.Volumes()
	if len(closes) < 20 {
		return 0
	}

	obv := make([]float64, len(closes))
	for i := 1; i < len(closes); i++ {
		obv[i] = obv[i-1] + volumes[i]*sign(closes[i]-closes[i-1])
	}

	return normalizeZScore(obv, defaultZWindow)
}

// volumeSurgeScore flags abnormal volume in the direction of the recent
// price move.
func volumeSurgeScore(series contracts.Series) float64 {
	closes := series.Closes()
	volumes := series.Volumes()
	if len(volumes) < 20 {
		return 0
	}

	// Volume relative to its 20-bar average, defined from bar 20 on.
	ratios := make([]float64, 0, len(volumes)-19)
	for i := 19; i < len(volumes); i++ {
		avg := mean(volumes[i-19 : i+1])
		ratios = append(ratios, volumes[i]/(avg+epsilon))
	}
	recent := ratios
	if len(recent) > 5 {
		recent = recent[len(recent)-5:]
	}
	recentRatio := mean(recent)

	priceDirection := sign(last(closes) - closes[len(closes)-5])

	surge := (recentRatio - 1.0) * priceDirection
	return clamp(surge*50, -100, 100)
}
