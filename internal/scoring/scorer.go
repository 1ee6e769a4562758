package scoring

import (
	"errors"

	"github.com/alphapulse/pulse/internal/contracts"
	"github.com/alphapulse/pulse/pkg/logger"
)

// Context carries the optional side data for one scoring invocation.
// Each scorer documents which fields it reads; every field may be absent.
type Context struct {
	Ticker     string
	AssetClass contracts.AssetClass

	// News feeds the Sentiment scorer. Sentiment values are in [-1, 1].
	News []contracts.NewsItem

	// Benchmark feeds the RelativeStrength scorer (index for stocks,
	// dominant reference asset for crypto).
	Benchmark contracts.Series

	// Fundamentals and Ownership feed the Fundamental and InsiderFunds
	// scorers for stocks.
	Fundamentals *contracts.FundamentalData
	Ownership    *contracts.OwnershipData

	// Macro feeds the Macro scorer.
	Macro *contracts.MacroData
}

// Scorer converts a price series plus optional context into one bounded
// factor score. Implementations never return an error or a value outside
// [-100, 100]; any internal failure maps to the neutral score 0.
type Scorer interface {
	Name() contracts.Factor
	Score(series contracts.Series, sctx *Context) float64
}

// errInsufficientHistory marks the insufficient-history fallback path.
// It never escapes a scorer; it exists so the neutral conversion is an
// explicit, testable step rather than an implicit catch-all.
var errInsufficientHistory = errors.New("insufficient history")

// finalize converts an internal (score, error) pair into the scorer's
// public contract: errors become the neutral score with a diagnostic,
// successful values are clipped into range.
func finalize(log *logger.Logger, factor contracts.Factor, score float64, err error) float64 {
	if err != nil {
		log.WithFields(map[string]interface{}{
			"factor": string(factor),
			"reason": err.Error(),
		}).Debug("Factor fell back to neutral score")
		return 0
	}
	return clamp(score, -100, 100)
}
