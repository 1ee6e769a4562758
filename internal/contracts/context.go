package contracts

import "time"

// NewsItem is one news article with a provider-supplied sentiment value.
type NewsItem struct {
	Title       string    `json:"title"`
	Source      string    `json:"source"`
	PublishedAt time.Time `json:"published_at"`
	// Sentiment is in [-1, 1]; -1 bearish, +1 bullish.
	Sentiment float64 `json:"sentiment"`
}

// FundamentalData carries company fundamentals for stock scoring. Every
// field is optional; absent fields are nil and skipped by the scorer.
type FundamentalData struct {
	PE            *float64 `json:"pe,omitempty"`
	PB            *float64 `json:"pb,omitempty"`
	ROE           *float64 `json:"roe,omitempty"`
	RevenueGrowth *float64 `json:"revenue_growth,omitempty"`
	DebtToEquity  *float64 `json:"debt_to_equity,omitempty"`
	ProfitMargin  *float64 `json:"profit_margin,omitempty"`
}

// Empty reports whether no fundamental ratio is present.
func (f *FundamentalData) Empty() bool {
	if f == nil {
		return true
	}
	return f.PE == nil && f.PB == nil && f.ROE == nil &&
		f.RevenueGrowth == nil && f.DebtToEquity == nil && f.ProfitMargin == nil
}

// OwnershipData carries institutional/insider ownership metrics.
// All percentages are fractions in [0, 1].
type OwnershipData struct {
	InstitutionalPct *float64 `json:"institutional_pct,omitempty"`
	ShortPctOfFloat  *float64 `json:"short_pct_of_float,omitempty"`
	InsiderPct       *float64 `json:"insider_pct,omitempty"`
}

// Empty reports whether no ownership metric is present.
func (o *OwnershipData) Empty() bool {
	if o == nil {
		return true
	}
	return o.InstitutionalPct == nil && o.ShortPctOfFloat == nil && o.InsiderPct == nil
}

// MacroData carries close series for the macro indicator set. Any field
// may be nil when the indicator could not be obtained.
type MacroData struct {
	VIX    []float64 `json:"vix,omitempty"`    // volatility index
	DXY    []float64 `json:"dxy,omitempty"`    // dollar strength index
	TNX    []float64 `json:"tnx,omitempty"`    // 10Y treasury yield
	Market []float64 `json:"market,omitempty"` // broad equity index close
}

// Empty reports whether no macro series is present.
func (m *MacroData) Empty() bool {
	if m == nil {
		return true
	}
	return len(m.VIX) == 0 && len(m.DXY) == 0 && len(m.TNX) == 0 && len(m.Market) == 0
}
