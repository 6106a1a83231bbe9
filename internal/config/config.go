// Package config loads the static, per-pair market configuration from a
// TOML file (spec §6), grounded on the reference implementation's
// config/repositories/toml.rs loader.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/fenrir-exchange/fenrir/internal/balance"
	fdecimal "github.com/fenrir-exchange/fenrir/internal/decimal"
	"github.com/fenrir-exchange/fenrir/internal/market"
)

// MarketConfig is the TOML representation of one tradable pair.
type MarketConfig struct {
	PairID               market.PairID   `toml:"pair_id"`
	BaseAssetID          balance.AssetID `toml:"base_asset_id"`
	QuoteAssetID         balance.AssetID `toml:"quote_asset_id"`
	IsMarketTradeEnabled bool            `toml:"is_market_trade_enabled"`
	MinAllowedQuantity   string          `toml:"min_allowed_quantity"`
}

// Config is the root document: a list of markets to register at startup.
type Config struct {
	Markets []MarketConfig `toml:"markets"`
}

// FromFile reads and parses path, decoding every market's
// min_allowed_quantity into an exact decimal.
func FromFile(path string) ([]market.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var raw Config
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	markets := make([]market.Config, 0, len(raw.Markets))
	for _, m := range raw.Markets {
		minQty, err := fdecimal.NewFromString(m.MinAllowedQuantity)
		if err != nil {
			return nil, fmt.Errorf("config: market %d: invalid min_allowed_quantity %q: %w", m.PairID, m.MinAllowedQuantity, err)
		}

		markets = append(markets, market.Config{
			PairID:               m.PairID,
			BaseAssetID:          m.BaseAssetID,
			QuoteAssetID:         m.QuoteAssetID,
			IsMarketTradeEnabled: m.IsMarketTradeEnabled,
			MinAllowedQuantity:   minQty,
		})
	}

	return markets, nil
}
