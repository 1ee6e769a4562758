package scoring

import (
	"github.com/alphapulse/pulse/internal/contracts"
	"github.com/alphapulse/pulse/pkg/logger"
)

// MacroScorer reads the market regime from Context.Macro: the VIX level,
// dollar index momentum, 10Y treasury yield and the broad index trend.
// Dollar and rates only matter for stocks; crypto leans harder on the
// index trend. Without macro series the asset's own 10-bar momentum
// serves as a regime proxy.
type MacroScorer struct {
	logger *logger.Logger
}

// NewMacroScorer creates a new macro scorer.
func NewMacroScorer(log *logger.Logger) *MacroScorer {
	return &MacroScorer{logger: log}
}

// Name returns the factor identity.
func (s *MacroScorer) Name() contracts.Factor {
	return contracts.FactorMacro
}

// Score implements the Scorer contract.
func (s *MacroScorer) Score(series contracts.Series, sctx *Context) float64 {
	score, err := s.score(series, sctx)
	return finalize(s.logger, s.Name(), score, err)
}

func (s *MacroScorer) score(series contracts.Series, sctx *Context) (float64, error) {
	if sctx == nil || sctx.Macro.Empty() {
		return s.marketRegimeProxy(series)
	}

	isStock := sctx.AssetClass != contracts.AssetCrypto
	m := sctx.Macro

	var components []weighted

	if len(m.VIX) > 0 {
		w := 0.35
		if !isStock {
			w = 0.20
		}
		components = append(components, weighted{vixScore(m.VIX), w})
	}

	if len(m.DXY) > 0 && isStock {
		components = append(components, weighted{dxyScore(m.DXY), 0.20})
	}

	if len(m.TNX) >= 20 && isStock {
		components = append(components, weighted{tnxScore(m.TNX), 0.25})
	}

	if len(m.Market) > 0 {
		w := 0.20
		if !isStock {
			w = 0.40
		}
		components = append(components, weighted{marketTrendScore(m.Market), w})
	}

	if len(components) == 0 {
		return s.marketRegimeProxy(series)
	}
	return combine(components)
}

// vixScore bands the fear index and adjusts for its direction against
// the 20-day mean. A rising VIX makes any level worse.
func vixScore(vix []float64) float64 {
	current := last(vix)

	window := vix
	if len(window) > 20 {
		window = window[len(window)-20:]
	}
	trend := current - mean(window)

	var base float64
	switch {
	case current < 15:
		base = 70 // calm market
	case current < 20:
		base = 20
	case current < 25:
		base = -20
	case current < 30:
		base = -50
	case current < 40:
		base = -75
	default:
		base = -100 // panic
	}

	trendAdj := clamp(-trend*5, -20, 20)
	return clamp(base+trendAdj, -100, 100)
}

// dxyScore inverts the z-score of 5-bar dollar index momentum: a
// strengthening dollar pressures risk assets.
func dxyScore(dxy []float64) float64 {
	z := normalizeZScore(pctChange(dxy, 5), 60)
	return clamp(-z, -100, 100)
}

// tnxScore bands the 10Y yield level and penalizes sharp rate rises.
func tnxScore(tnx []float64) float64 {
	current := last(tnx)
	change20 := current - tnx[len(tnx)-20]

	var level float64
	switch {
	case current < 2.0:
		level = 80
	case current < 3.0:
		level = 40
	case current < 4.0:
		level = 0
	case current < 5.0:
		level = -40
	default:
		level = -80
	}

	trendAdj := clamp(-change20*20, -30, 30)
	return clamp(level+trendAdj, -100, 100)
}

// marketTrendScore reads risk appetite from the broad index: MA20 vs
// MA50 direction plus 20-bar momentum.
func marketTrendScore(prices []float64) float64 {
	if len(prices) < 50 {
		return 0
	}

	ma20 := mean(prices[len(prices)-20:])
	ma50 := mean(prices[len(prices)-50:])
	momentum := last(prices)/prices[len(prices)-21] - 1

	maSignal := 1.0
	if ma20 <= ma50 {
		maSignal = -1.0
	}
	return clamp(maSignal*50+momentum*300, -100, 100)
}

// marketRegimeProxy derives a regime reading from the asset itself.
func (s *MacroScorer) marketRegimeProxy(series contracts.Series) (float64, error) {
	closes := series.Closes()
	if len(closes) < 20 {
		return 0, errInsufficientHistory
	}
	return normalizeZScore(pctChange(closes, 10), 60), nil
}
