package contracts

import (
	"context"
	"time"
)

// SeriesProvider fetches daily OHLCV history for a ticker.
// Implementations guarantee ascending order and the five OHLCV fields;
// short or empty results are the scoring engine's concern, not theirs.
type SeriesProvider interface {
	// Fetch returns up to limit daily bars, oldest first.
	Fetch(ctx context.Context, ticker string, limit int) (Series, error)
	// Name identifies the provider (binance, yahoo, moex).
	Name() string
}

// NewsProvider fetches recent sentiment-tagged news for a ticker.
// Absence of news is a legal result, not an error.
type NewsProvider interface {
	FetchNews(ctx context.Context, ticker string) ([]NewsItem, error)
}

// FundamentalsProvider fetches company fundamentals and ownership data.
type FundamentalsProvider interface {
	FetchFundamentals(ctx context.Context, ticker string) (*FundamentalData, *OwnershipData, error)
}

// AssetRepository persists the asset master list.
type AssetRepository interface {
	Upsert(ctx context.Context, asset Asset) (int64, error)
	GetByTicker(ctx context.Context, ticker string) (*Asset, error)
	List(ctx context.Context) ([]Asset, error)
}

// BarRepository persists OHLCV history.
type BarRepository interface {
	SaveBatch(ctx context.Context, ticker string, bars Series) error
	GetRange(ctx context.Context, ticker string, from, to time.Time) (Series, error)
}

// ScoreRepository persists scoring results.
type ScoreRepository interface {
	Save(ctx context.Context, result *Result) error
	LatestAll(ctx context.Context) ([]*Result, error)
	History(ctx context.Context, ticker string, days int) ([]*Result, error)
}
