package contracts

import (
	"fmt"
	"strings"
)

// AssetClass identifies the kind of instrument being scored.
type AssetClass string

const (
	AssetStock  AssetClass = "stock"
	AssetCrypto AssetClass = "crypto"
)

// Valid reports whether the asset class is a known value.
func (c AssetClass) Valid() bool {
	return c == AssetStock || c == AssetCrypto
}

// Asset is an instrument tracked by the system. Immutable after creation;
// the ticker is case-normalized to upper case.
type Asset struct {
	Ticker   string     `json:"ticker"`
	Name     string     `json:"name"`
	Class    AssetClass `json:"asset_class"`
	Exchange string     `json:"exchange"`
}

// NewAsset creates an Asset with a normalized ticker.
func NewAsset(ticker, name string, class AssetClass, exchange string) (Asset, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return Asset{}, fmt.Errorf("ticker must not be empty")
	}
	if !class.Valid() {
		return Asset{}, fmt.Errorf("invalid asset class %q", class)
	}

	return Asset{
		Ticker:   ticker,
		Name:     name,
		Class:    class,
		Exchange: exchange,
	}, nil
}
