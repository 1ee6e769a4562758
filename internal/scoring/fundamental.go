package scoring

import (
	"github.com/alphapulse/pulse/internal/contracts"
	"github.com/alphapulse/pulse/pkg/logger"
)

// FundamentalScorer scores business quality. For stocks it maps the
// fundamental ratios present in Context.Fundamentals through fixed bands;
// for crypto it uses a network-value proxy built from price/volume. With
// neither available it falls back to 60-bar price momentum.
// Reads Context.AssetClass and Context.Fundamentals.
type FundamentalScorer struct {
	logger *logger.Logger
}

// NewFundamentalScorer creates a new fundamental scorer.
func NewFundamentalScorer(log *logger.Logger) *FundamentalScorer {
	return &FundamentalScorer{logger: log}
}

// Name returns the factor identity.
func (s *FundamentalScorer) Name() contracts.Factor {
	return contracts.FactorFundamental
}

// Score implements the Scorer contract.
func (s *FundamentalScorer) Score(series contracts.Series, sctx *Context) float64 {
	score, err := s.score(series, sctx)
	return finalize(s.logger, s.Name(), score, err)
}

func (s *FundamentalScorer) score(series contracts.Series, sctx *Context) (float64, error) {
	if sctx != nil && sctx.AssetClass == contracts.AssetCrypto {
		return s.cryptoScore(series)
	}

	if sctx != nil && !sctx.Fundamentals.Empty() {
		if score, ok := s.stockScore(sctx.Fundamentals); ok {
			return score, nil
		}
	}

	return s.momentumProxy(series)
}

// stockScore maps each available ratio through its band scale and
// weight-averages over the ratios actually present.
func (s *FundamentalScorer) stockScore(f *contracts.FundamentalData) (float64, bool) {
	var components []weighted

	if f.PE != nil && *f.PE > 0 && *f.PE < 1000 {
		pe := *f.PE
		var v float64
		switch {
		case pe < 10:
			v = 80 // very cheap
		case pe < 15:
			v = 60
		case pe < 20:
			v = 30
		case pe < 30:
			v = 0
		case pe < 50:
			v = -30
		default:
			v = -60 // very expensive
		}
		components = append(components, weighted{v, 0.20})
	}

	if f.PB != nil && *f.PB > 0 {
		pb := *f.PB
		var v float64
		switch {
		case pb < 1:
			v = 80 // below book value
		case pb < 2:
			v = 50
		case pb < 4:
			v = 10
		case pb < 8:
			v = -20
		default:
			v = -50
		}
		components = append(components, weighted{v, 0.10})
	}

	if f.ROE != nil {
		v := clamp((*f.ROE-0.10)*500, -100, 100)
		components = append(components, weighted{v, 0.20})
	}

	if f.RevenueGrowth != nil {
		rg := *f.RevenueGrowth
		var v float64
		switch {
		case rg > 0.30:
			v = 90
		case rg > 0.15:
			v = 60
		case rg > 0.05:
			v = 30
		case rg > 0:
			v = 0
		case rg > -0.10:
			v = -30
		default:
			v = -70
		}
		components = append(components, weighted{v, 0.20})
	}

	if f.DebtToEquity != nil && *f.DebtToEquity >= 0 {
		de := *f.DebtToEquity
		var v float64
		switch {
		case de < 30:
			v = 70
		case de < 80:
			v = 30
		case de < 150:
			v = -10
		case de < 300:
			v = -50
		default:
			v = -80
		}
		components = append(components, weighted{v, 0.15})
	}

	if f.ProfitMargin != nil {
		mg := *f.ProfitMargin
		var v float64
		switch {
		case mg > 0.25:
			v = 80
		case mg > 0.15:
			v = 50
		case mg > 0.05:
			v = 10
		case mg > 0:
			v = -10
		default:
			v = -60
		}
		components = append(components, weighted{v, 0.15})
	}

	if len(components) == 0 {
		return 0, false
	}

	score, _ := combine(components)
	return score, true
}

// cryptoScore approximates a network-value-to-transactions view: a low
// price/volume ratio is favorable, combined 50/50 with the volume trend.
func (s *FundamentalScorer) cryptoScore(series contracts.Series) (float64, error) {
	closes := series.Closes()
	volumes := series.Volumes()
	if len(closes) < 20 {
		return 0, errInsufficientHistory
	}

	pvRatio := make([]float64, len(closes))
	for i := range closes {
		pvRatio[i] = closes[i] / (volumes[i] + epsilon)
	}
	pvScore := clamp(-normalizeZScore(pvRatio, defaultZWindow), -100, 100)

	volTrend := normalizeZScore(volumes, defaultZWindow)

	return pvScore*0.5 + volTrend*0.5, nil
}

// momentumProxy falls back to long-term price performance.
func (s *FundamentalScorer) momentumProxy(series contracts.Series) (float64, error) {
	closes := series.Closes()
	if len(closes) < 60 {
		return 0, errInsufficientHistory
	}

	ret60 := (last(closes)/closes[len(closes)-60] - 1) * 100
	return ret60 * 1.5, nil
}
