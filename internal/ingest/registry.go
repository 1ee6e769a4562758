package ingest

import (
	"context"
	"fmt"

	"github.com/alphapulse/pulse/internal/contracts"
	"github.com/alphapulse/pulse/pkg/logger"
)

// Benchmark and macro indicator tickers.
const (
	benchmarkStock  = "^GSPC"   // S&P 500
	benchmarkCrypto = "BTCUSDT" // bitcoin as the crypto reference

	tickerVIX    = "^VIX"
	tickerDXY    = "DX-Y.NYB"
	tickerTNX    = "^TNX"
	tickerMarket = "^GSPC"
)

// Registry holds every configured series provider and answers the
// benchmark and macro lookups that scoring context needs. Benchmarks
// come from the provider native to the asset class: the index from
// Yahoo for stocks, BTC from Binance for crypto.
type Registry struct {
	providers map[string]contracts.SeriesProvider
	yahoo     *YahooClient
	binance   *BinanceClient
	logger    *logger.Logger
}

// NewRegistry wires the named providers.
func NewRegistry(binance *BinanceClient, yahoo *YahooClient, moex *MOEXClient, log *logger.Logger) *Registry {
	providers := map[string]contracts.SeriesProvider{
		binance.Name(): binance,
		yahoo.Name():   yahoo,
		moex.Name():    moex,
	}
	return &Registry{
		providers: providers,
		yahoo:     yahoo,
		binance:   binance,
		logger:    log,
	}
}

// Provider returns the series provider registered under name.
func (r *Registry) Provider(name string) (contracts.SeriesProvider, error) {
	p, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("unknown data source %q", name)
	}
	return p, nil
}

// FetchBenchmark returns the reference series for an asset class.
func (r *Registry) FetchBenchmark(ctx context.Context, class contracts.AssetClass, limit int) (contracts.Series, error) {
	if class == contracts.AssetCrypto {
		return r.binance.Fetch(ctx, benchmarkCrypto, limit)
	}
	return r.yahoo.Fetch(ctx, benchmarkStock, limit)
}

// FetchMacro gathers the macro indicator closes. Indicators that fail
// to load are left nil rather than failing the whole lookup.
func (r *Registry) FetchMacro(ctx context.Context, limit int) *contracts.MacroData {
	macro := &contracts.MacroData{
		VIX:    r.closesOrNil(ctx, tickerVIX, limit),
		DXY:    r.closesOrNil(ctx, tickerDXY, limit),
		TNX:    r.closesOrNil(ctx, tickerTNX, limit),
		Market: r.closesOrNil(ctx, tickerMarket, limit),
	}
	return macro
}

func (r *Registry) closesOrNil(ctx context.Context, ticker string, limit int) []float64 {
	series, err := r.yahoo.Fetch(ctx, ticker, limit)
	if err != nil {
		r.logger.WithFields(map[string]interface{}{
			"ticker": ticker,
			"error":  err.Error(),
		}).Warn("Macro indicator unavailable")
		return nil
	}
	return series.Closes()
}
