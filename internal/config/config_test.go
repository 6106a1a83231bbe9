package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fenrir-exchange/fenrir/internal/config"
	fdecimal "github.com/fenrir-exchange/fenrir/internal/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleTOML = `
[[markets]]
pair_id = 1
base_asset_id = 1
quote_asset_id = 2
is_market_trade_enabled = true
min_allowed_quantity = "0.001"

[[markets]]
pair_id = 2
base_asset_id = 3
quote_asset_id = 2
is_market_trade_enabled = false
min_allowed_quantity = "1"
`

func TestFromFile_ParsesMarkets(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "markets.toml")
	require.NoError(t, os.WriteFile(path, []byte(sampleTOML), 0o600))

	markets, err := config.FromFile(path)
	require.NoError(t, err)
	require.Len(t, markets, 2)

	assert.EqualValues(t, 1, markets[0].PairID)
	assert.EqualValues(t, 1, markets[0].BaseAssetID)
	assert.EqualValues(t, 2, markets[0].QuoteAssetID)
	assert.True(t, markets[0].IsMarketTradeEnabled)
	expectedMinQty, err := fdecimal.NewFromString("0.001")
	require.NoError(t, err)
	assert.True(t, markets[0].MinAllowedQuantity.Equal(expectedMinQty))

	assert.False(t, markets[1].IsMarketTradeEnabled)
}

func TestFromFile_MissingFile_ReturnsError(t *testing.T) {
	_, err := config.FromFile("/nonexistent/path/markets.toml")
	assert.Error(t, err)
}

func TestFromFile_InvalidQuantity_ReturnsError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "markets.toml")
	bad := `
[[markets]]
pair_id = 1
base_asset_id = 1
quote_asset_id = 2
is_market_trade_enabled = true
min_allowed_quantity = "not-a-number"
`
	require.NoError(t, os.WriteFile(path, []byte(bad), 0o600))

	_, err := config.FromFile(path)
	assert.Error(t, err)
}
