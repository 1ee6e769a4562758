package ingest

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/alphapulse/pulse/internal/contracts"
	"github.com/alphapulse/pulse/pkg/httputil"
	"github.com/alphapulse/pulse/pkg/logger"
)

// YahooClient fetches daily OHLCV from the Yahoo Finance chart API.
// Handles index tickers (^GSPC, ^VIX) as well as regular symbols.
type YahooClient struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
}

// NewYahooClient creates a new Yahoo Finance client.
func NewYahooClient(httpClient *httputil.Client, log *logger.Logger, baseURL string) *YahooClient {
	return &YahooClient{
		httpClient: httpClient,
		logger:     log,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// Name identifies the provider.
func (c *YahooClient) Name() string { return "yahoo" }

// yahooChartResponse covers the subset of the v8 chart payload we read.
type yahooChartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// Fetch returns up to limit daily bars, oldest first. Rows with missing
// fields (market holidays, partial sessions) are dropped.
func (c *YahooClient) Fetch(ctx context.Context, ticker string, limit int) (contracts.Series, error) {
	params := url.Values{}
	params.Set("interval", "1d")
	params.Set("range", rangeForLimit(limit))

	fullURL := fmt.Sprintf("%s/v8/finance/chart/%s?%s",
		c.baseURL, url.PathEscape(ticker), params.Encode())

	var payload yahooChartResponse
	if err := c.httpClient.GetJSON(ctx, fullURL, &payload); err != nil {
		return nil, fmt.Errorf("yahoo chart request failed: %w", err)
	}
	if payload.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo chart error for %s: %s", ticker, payload.Chart.Error.Description)
	}
	if len(payload.Chart.Result) == 0 || len(payload.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("yahoo returned no data for %s", ticker)
	}

	result := payload.Chart.Result[0]
	quote := result.Indicators.Quote[0]

	series := make(contracts.Series, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		o := at(quote.Open, i)
		h := at(quote.High, i)
		l := at(quote.Low, i)
		cl := at(quote.Close, i)
		v := at(quote.Volume, i)
		if o == nil || h == nil || l == nil || cl == nil || v == nil {
			continue
		}
		series = append(series, contracts.Bar{
			Timestamp: time.Unix(ts, 0).UTC(),
			Open:      *o,
			High:      *h,
			Low:       *l,
			Close:     *cl,
			Volume:    *v,
		})
	}
	if len(series) == 0 {
		return nil, fmt.Errorf("yahoo returned no complete bars for %s", ticker)
	}
	if len(series) > limit {
		series = series[len(series)-limit:]
	}

	c.logger.WithFields(map[string]interface{}{
		"ticker": ticker,
		"count":  len(series),
	}).Debug("Fetched Yahoo bars")
	return series, nil
}

// rangeForLimit picks the smallest chart range that covers limit daily
// bars, with slack for weekends and holidays.
func rangeForLimit(limit int) string {
	switch {
	case limit <= 20:
		return "1mo"
	case limit <= 60:
		return "3mo"
	case limit <= 120:
		return "6mo"
	default:
		return "1y"
	}
}

func at(values []*float64, i int) *float64 {
	if i >= len(values) {
		return nil
	}
	return values[i]
}
