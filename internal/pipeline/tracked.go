package pipeline

import (
	"fmt"
	"strings"

	"github.com/alphapulse/pulse/internal/contracts"
)

// TrackedAsset binds an asset to the data source that serves its bars.
type TrackedAsset struct {
	Asset  contracts.Asset
	Source string
}

// DefaultTrackedAssets is the built-in universe used when TRACKED_ASSETS
// is not configured.
func DefaultTrackedAssets() []TrackedAsset {
	mk := func(ticker, name string, class contracts.AssetClass, exchange, source string) TrackedAsset {
		asset, _ := contracts.NewAsset(ticker, name, class, exchange)
		return TrackedAsset{Asset: asset, Source: source}
	}
	return []TrackedAsset{
		mk("AAPL", "Apple Inc.", contracts.AssetStock, "NASDAQ", "yahoo"),
		mk("MSFT", "Microsoft Corp.", contracts.AssetStock, "NASDAQ", "yahoo"),
		mk("GOOGL", "Alphabet Inc.", contracts.AssetStock, "NASDAQ", "yahoo"),
		mk("SBER", "Sberbank", contracts.AssetStock, "MOEX", "moex"),
		mk("GAZP", "Gazprom", contracts.AssetStock, "MOEX", "moex"),
		mk("BTCUSDT", "Bitcoin", contracts.AssetCrypto, "Binance", "binance"),
		mk("ETHUSDT", "Ethereum", contracts.AssetCrypto, "Binance", "binance"),
		mk("SOLUSDT", "Solana", contracts.AssetCrypto, "Binance", "binance"),
	}
}

// ParseTrackedAssets parses the "TICKER:class:source" comma-separated
// form. An empty spec yields the default universe.
func ParseTrackedAssets(spec string) ([]TrackedAsset, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return DefaultTrackedAssets(), nil
	}

	var tracked []TrackedAsset
	for _, entry := range strings.Split(spec, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.Split(entry, ":")
		if len(parts) != 3 {
			return nil, fmt.Errorf("tracked asset %q: want TICKER:class:source", entry)
		}

		class := contracts.AssetClass(strings.ToLower(parts[1]))
		asset, err := contracts.NewAsset(parts[0], "", class, "")
		if err != nil {
			return nil, fmt.Errorf("tracked asset %q: %w", entry, err)
		}

		source := strings.ToLower(strings.TrimSpace(parts[2]))
		if source == "" {
			return nil, fmt.Errorf("tracked asset %q: empty source", entry)
		}
		tracked = append(tracked, TrackedAsset{Asset: asset, Source: source})
	}
	if len(tracked) == 0 {
		return nil, fmt.Errorf("tracked assets spec %q has no entries", spec)
	}
	return tracked, nil
}
