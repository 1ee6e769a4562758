package ingest

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/alphapulse/pulse/internal/contracts"
	"github.com/alphapulse/pulse/pkg/httputil"
	"github.com/alphapulse/pulse/pkg/logger"
)

// BinanceClient fetches daily klines from the public Binance API.
// No API key is required.
type BinanceClient struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
}

// NewBinanceClient creates a new Binance market data client.
func NewBinanceClient(httpClient *httputil.Client, log *logger.Logger, baseURL string) *BinanceClient {
	return &BinanceClient{
		httpClient: httpClient,
		logger:     log,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// Name identifies the provider.
func (c *BinanceClient) Name() string { return "binance" }

// Fetch returns up to limit daily bars for a symbol like BTCUSDT,
// oldest first.
func (c *BinanceClient) Fetch(ctx context.Context, ticker string, limit int) (contracts.Series, error) {
	params := url.Values{}
	params.Set("symbol", strings.ToUpper(ticker))
	params.Set("interval", "1d")
	params.Set("limit", strconv.Itoa(limit))

	fullURL := fmt.Sprintf("%s/api/v3/klines?%s", c.baseURL, params.Encode())

	// Each kline is a 12-element array of mixed numbers and strings.
	var raw [][]interface{}
	if err := c.httpClient.GetJSON(ctx, fullURL, &raw); err != nil {
		return nil, fmt.Errorf("binance klines request failed: %w", err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("binance returned no klines for %s", ticker)
	}

	series := make(contracts.Series, 0, len(raw))
	for _, row := range raw {
		bar, err := parseKline(row)
		if err != nil {
			c.logger.WithFields(map[string]interface{}{
				"ticker": ticker,
				"error":  err.Error(),
			}).Warn("Skipping malformed kline")
			continue
		}
		series = append(series, bar)
	}

	sort.Slice(series, func(i, j int) bool {
		return series[i].Timestamp.Before(series[j].Timestamp)
	})

	c.logger.WithFields(map[string]interface{}{
		"ticker": ticker,
		"count":  len(series),
	}).Debug("Fetched Binance klines")
	return series, nil
}

// parseKline converts one kline row:
// [openTime, open, high, low, close, volume, closeTime, ...]
// Prices and volume arrive as strings.
func parseKline(row []interface{}) (contracts.Bar, error) {
	if len(row) < 6 {
		return contracts.Bar{}, fmt.Errorf("kline has %d fields, want at least 6", len(row))
	}

	openTime, ok := row[0].(float64)
	if !ok {
		return contracts.Bar{}, fmt.Errorf("kline open time is not a number")
	}

	fields := make([]float64, 5)
	for i := 1; i <= 5; i++ {
		s, ok := row[i].(string)
		if !ok {
			return contracts.Bar{}, fmt.Errorf("kline field %d is not a string", i)
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return contracts.Bar{}, fmt.Errorf("kline field %d: %w", i, err)
		}
		fields[i-1] = v
	}

	return contracts.Bar{
		Timestamp: time.UnixMilli(int64(openTime)).UTC(),
		Open:      fields[0],
		High:      fields[1],
		Low:       fields[2],
		Close:     fields[3],
		Volume:    fields[4],
	}, nil
}
