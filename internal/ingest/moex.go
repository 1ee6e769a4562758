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

// MOEXClient fetches daily candles from the Moscow Exchange ISS API
// (main TQBR board). No API key is required.
type MOEXClient struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
}

// NewMOEXClient creates a new MOEX ISS client.
func NewMOEXClient(httpClient *httputil.Client, log *logger.Logger, baseURL string) *MOEXClient {
	return &MOEXClient{
		httpClient: httpClient,
		logger:     log,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// Name identifies the provider.
func (c *MOEXClient) Name() string { return "moex" }

// moexHistoryResponse is the ISS column/row table format.
type moexHistoryResponse struct {
	History struct {
		Columns []string        `json:"columns"`
		Data    [][]interface{} `json:"data"`
	} `json:"history"`
}

// Fetch returns up to limit daily bars, oldest first. The ISS history
// endpoint is queried over a calendar window wide enough to cover limit
// trading days.
func (c *MOEXClient) Fetch(ctx context.Context, ticker string, limit int) (contracts.Series, error) {
	end := time.Now().UTC()
	start := end.AddDate(0, 0, -limit*2) // slack for weekends and holidays

	params := url.Values{}
	params.Set("from", start.Format("2006-01-02"))
	params.Set("till", end.Format("2006-01-02"))
	params.Set("iss.meta", "off")

	fullURL := fmt.Sprintf(
		"%s/iss/history/engines/stock/markets/shares/boards/TQBR/securities/%s.json?%s",
		c.baseURL, url.PathEscape(strings.ToUpper(ticker)), params.Encode())

	var payload moexHistoryResponse
	if err := c.httpClient.GetJSON(ctx, fullURL, &payload); err != nil {
		return nil, fmt.Errorf("moex history request failed: %w", err)
	}
	if len(payload.History.Data) == 0 {
		return nil, fmt.Errorf("moex returned no history for %s", ticker)
	}

	idx, err := moexColumnIndex(payload.History.Columns)
	if err != nil {
		return nil, err
	}

	series := make(contracts.Series, 0, len(payload.History.Data))
	for _, row := range payload.History.Data {
		bar, err := parseMOEXRow(row, idx)
		if err != nil {
			c.logger.WithFields(map[string]interface{}{
				"ticker": ticker,
				"error":  err.Error(),
			}).Warn("Skipping malformed MOEX row")
			continue
		}
		series = append(series, bar)
	}
	if len(series) == 0 {
		return nil, fmt.Errorf("moex returned no complete bars for %s", ticker)
	}
	if len(series) > limit {
		series = series[len(series)-limit:]
	}

	c.logger.WithFields(map[string]interface{}{
		"ticker": ticker,
		"count":  len(series),
	}).Debug("Fetched MOEX candles")
	return series, nil
}

// moexColumns maps the ISS column names we need to positions in each row.
type moexColumns struct {
	date, open, high, low, close, volume int
}

func moexColumnIndex(columns []string) (moexColumns, error) {
	idx := moexColumns{date: -1, open: -1, high: -1, low: -1, close: -1, volume: -1}
	for i, name := range columns {
		switch name {
		case "TRADEDATE":
			idx.date = i
		case "OPEN":
			idx.open = i
		case "HIGH":
			idx.high = i
		case "LOW":
			idx.low = i
		case "CLOSE":
			idx.close = i
		case "VOLUME":
			idx.volume = i
		}
	}
	if idx.date < 0 || idx.open < 0 || idx.high < 0 || idx.low < 0 || idx.close < 0 || idx.volume < 0 {
		return idx, fmt.Errorf("moex history is missing expected columns: %v", columns)
	}
	return idx, nil
}

func parseMOEXRow(row []interface{}, idx moexColumns) (contracts.Bar, error) {
	maxIdx := idx.date
	for _, i := range []int{idx.open, idx.high, idx.low, idx.close, idx.volume} {
		if i > maxIdx {
			maxIdx = i
		}
	}
	if len(row) <= maxIdx {
		return contracts.Bar{}, fmt.Errorf("row has %d fields", len(row))
	}

	dateStr, ok := row[idx.date].(string)
	if !ok {
		return contracts.Bar{}, fmt.Errorf("trade date is not a string")
	}
	ts, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return contracts.Bar{}, fmt.Errorf("trade date %q: %w", dateStr, err)
	}

	num := func(v interface{}) (float64, bool) {
		f, ok := v.(float64)
		return f, ok
	}

	o, ok1 := num(row[idx.open])
	h, ok2 := num(row[idx.high])
	l, ok3 := num(row[idx.low])
	cl, ok4 := num(row[idx.close])
	v, ok5 := num(row[idx.volume])
	if !ok1 || !ok2 || !ok3 || !ok4 || !ok5 {
		// Suspended sessions carry nulls; skip the row.
		return contracts.Bar{}, fmt.Errorf("row for %s has null fields", dateStr)
	}

	return contracts.Bar{
		Timestamp: ts.UTC(),
		Open:      o,
		High:      h,
		Low:       l,
		Close:     cl,
		Volume:    v,
	}, nil
}
