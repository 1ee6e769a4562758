package ingest

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/alphapulse/pulse/internal/contracts"
	"github.com/alphapulse/pulse/pkg/httputil"
	"github.com/alphapulse/pulse/pkg/logger"
	"github.com/alphapulse/pulse/pkg/redis"
)

// avNewsLimit caps how many articles one news request returns.
const avNewsLimit = 50

// AlphaVantageClient fetches sentiment-tagged news and company
// fundamentals from Alpha Vantage. Requires an API key; with an empty
// key every call returns empty results so scoring degrades to the
// price-action proxies instead of failing.
type AlphaVantageClient struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
	apiKey     string
	limiter    *redis.RateLimiter
}

// NewAlphaVantageClient creates a new Alpha Vantage client.
func NewAlphaVantageClient(httpClient *httputil.Client, log *logger.Logger, baseURL, apiKey string) *AlphaVantageClient {
	return &AlphaVantageClient{
		httpClient: httpClient,
		logger:     log,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
	}
}

// WithLimiter attaches a cross-process rate limiter. The free tier quota
// is shared by every process talking to the API, so a local limiter is
// not enough when the CLI and the server run side by side.
func (c *AlphaVantageClient) WithLimiter(limiter *redis.RateLimiter) *AlphaVantageClient {
	c.limiter = limiter
	return c
}

// Enabled reports whether an API key is configured.
func (c *AlphaVantageClient) Enabled() bool { return c.apiKey != "" }

func (c *AlphaVantageClient) waitQuota(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx, redis.AlphaVantageRateLimit)
}

type avNewsResponse struct {
	Feed []struct {
		Title                 string `json:"title"`
		Source                string `json:"source"`
		TimePublished         string `json:"time_published"`
		OverallSentimentScore string `json:"overall_sentiment_score"`
	} `json:"feed"`
}

// FetchNews returns recent sentiment-tagged headlines for a ticker.
// The sentiment score arrives in roughly [-0.5, 0.5]; it is rescaled and
// clamped into the [-1, 1] contract.
func (c *AlphaVantageClient) FetchNews(ctx context.Context, ticker string) ([]contracts.NewsItem, error) {
	if !c.Enabled() {
		return nil, nil
	}
	if err := c.waitQuota(ctx); err != nil {
		return nil, fmt.Errorf("alpha vantage quota wait: %w", err)
	}

	params := url.Values{}
	params.Set("function", "NEWS_SENTIMENT")
	params.Set("tickers", strings.ToUpper(ticker))
	params.Set("limit", strconv.Itoa(avNewsLimit))
	params.Set("apikey", c.apiKey)

	var payload avNewsResponse
	if err := c.httpClient.GetJSON(ctx, c.queryURL(params), &payload); err != nil {
		return nil, fmt.Errorf("alpha vantage news request failed: %w", err)
	}

	items := make([]contracts.NewsItem, 0, len(payload.Feed))
	for _, article := range payload.Feed {
		sentiment, err := strconv.ParseFloat(article.OverallSentimentScore, 64)
		if err != nil {
			sentiment = 0
		}
		published, err := time.Parse("20060102T150405", article.TimePublished)
		if err != nil {
			published = time.Time{}
		}
		if sentiment > 1 {
			sentiment = 1
		} else if sentiment < -1 {
			sentiment = -1
		}
		items = append(items, contracts.NewsItem{
			Title:       article.Title,
			Source:      article.Source,
			PublishedAt: published,
			Sentiment:   sentiment,
		})
	}

	c.logger.WithFields(map[string]interface{}{
		"ticker": ticker,
		"count":  len(items),
	}).Debug("Fetched news sentiment")
	return items, nil
}

// avOverviewResponse carries the company overview fields we read. Every
// value is a string; absent metrics are "None" or "-".
type avOverviewResponse struct {
	Symbol                    string `json:"Symbol"`
	PERatio                   string `json:"PERatio"`
	ForwardPE                 string `json:"ForwardPE"`
	PriceToBookRatio          string `json:"PriceToBookRatio"`
	ReturnOnEquityTTM         string `json:"ReturnOnEquityTTM"`
	QuarterlyRevenueGrowthYOY string `json:"QuarterlyRevenueGrowthYOY"`
	ProfitMargin              string `json:"ProfitMargin"`
	PercentInstitutions       string `json:"PercentInstitutions"`
	PercentInsiders           string `json:"PercentInsiders"`
	ShortPercentFloat         string `json:"ShortPercentFloat"`
}

// FetchFundamentals returns company fundamentals and ownership metrics.
// Metrics the API does not report for a symbol come back nil.
func (c *AlphaVantageClient) FetchFundamentals(ctx context.Context, ticker string) (*contracts.FundamentalData, *contracts.OwnershipData, error) {
	if !c.Enabled() {
		return nil, nil, nil
	}
	if err := c.waitQuota(ctx); err != nil {
		return nil, nil, fmt.Errorf("alpha vantage quota wait: %w", err)
	}

	params := url.Values{}
	params.Set("function", "OVERVIEW")
	params.Set("symbol", strings.ToUpper(ticker))
	params.Set("apikey", c.apiKey)

	var payload avOverviewResponse
	if err := c.httpClient.GetJSON(ctx, c.queryURL(params), &payload); err != nil {
		return nil, nil, fmt.Errorf("alpha vantage overview request failed: %w", err)
	}
	if payload.Symbol == "" {
		return nil, nil, fmt.Errorf("alpha vantage has no overview for %s", ticker)
	}

	// Forward P/E preferred over trailing; percentages arrive as
	// fractions already.
	pe := avFloat(payload.ForwardPE)
	if pe == nil {
		pe = avFloat(payload.PERatio)
	}

	fundamentals := &contracts.FundamentalData{
		PE:            pe,
		PB:            avFloat(payload.PriceToBookRatio),
		ROE:           avFloat(payload.ReturnOnEquityTTM),
		RevenueGrowth: avFloat(payload.QuarterlyRevenueGrowthYOY),
		ProfitMargin:  avFloat(payload.ProfitMargin),
	}
	ownership := &contracts.OwnershipData{
		InstitutionalPct: avFloat(payload.PercentInstitutions),
		InsiderPct:       avFloat(payload.PercentInsiders),
		ShortPctOfFloat:  avFloat(payload.ShortPercentFloat),
	}

	c.logger.WithField("ticker", ticker).Debug("Fetched company overview")
	return fundamentals, ownership, nil
}

func (c *AlphaVantageClient) queryURL(params url.Values) string {
	return fmt.Sprintf("%s/query?%s", c.baseURL, params.Encode())
}

// avFloat parses an Alpha Vantage numeric string; "None", "-" and
// unparseable values yield nil.
func avFloat(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" || s == "None" || s == "-" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}
