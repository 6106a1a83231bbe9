package market_test

import (
	"testing"

	"github.com/fenrir-exchange/fenrir/internal/apperrors"
	"github.com/fenrir-exchange/fenrir/internal/balance"
	fdecimal "github.com/fenrir-exchange/fenrir/internal/decimal"
	"github.com/fenrir-exchange/fenrir/internal/market"
	"github.com/fenrir-exchange/fenrir/internal/order"
	"github.com/fenrir-exchange/fenrir/internal/sequencer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	baseAssetID = balance.AssetID(1)
	quoteAsset  = balance.AssetID(2)
	buyer       = balance.UserID(1)
	seller      = balance.UserID(2)
)

func newTestMarket(t *testing.T, minQty int64, marketTradeEnabled bool) (*market.Market, *balance.Service) {
	t.Helper()
	balanceSvc := balance.NewService(balance.NewMemoryStore())
	m := market.New(market.Config{
		PairID:               1,
		BaseAssetID:          baseAssetID,
		QuoteAssetID:         quoteAsset,
		IsMarketTradeEnabled: marketTradeEnabled,
		MinAllowedQuantity:   fdecimal.NewFromInt(minQty),
	}, balanceSvc, sequencer.New(), sequencer.New())
	return m, balanceSvc
}

func priceOf(v int64) *fdecimal.Decimal {
	d := fdecimal.NewFromInt(v)
	return &d
}

func TestProcessNewOrder_InsufficientAskBalance_Rejected(t *testing.T) {
	m, _ := newTestMarket(t, 1, true)

	_, err := m.ProcessNewOrder(market.PlaceOrderInput{
		UserID: seller, LimitPrice: priceOf(10), Quantity: fdecimal.NewFromInt(10), Side: order.Ask,
	})
	assert.ErrorIs(t, err, apperrors.ErrUserBalanceExceeds)
}

func TestProcessNewOrder_InsufficientBidBalance_Rejected(t *testing.T) {
	m, balanceSvc := newTestMarket(t, 1, true)

	_, err := balanceSvc.Deposit(buyer, quoteAsset, fdecimal.NewFromInt(50))
	require.NoError(t, err)

	_, err = m.ProcessNewOrder(market.PlaceOrderInput{
		UserID: buyer, LimitPrice: priceOf(10), Quantity: fdecimal.NewFromInt(10), Side: order.Bid,
	})
	assert.ErrorIs(t, err, apperrors.ErrUserBalanceExceeds)
}

func TestProcessNewOrder_MarketTradeDisabled_RejectsMarketOrder(t *testing.T) {
	m, _ := newTestMarket(t, 1, false)

	_, err := m.ProcessNewOrder(market.PlaceOrderInput{
		UserID: buyer, LimitPrice: nil, Quantity: fdecimal.NewFromInt(10), Side: order.Bid,
	})
	assert.ErrorIs(t, err, apperrors.ErrMarketTradeDisabled)
}

func TestProcessNewOrder_ZeroLimitPrice_Rejected(t *testing.T) {
	m, balanceSvc := newTestMarket(t, 1, true)
	_, err := balanceSvc.Deposit(seller, baseAssetID, fdecimal.NewFromInt(100))
	require.NoError(t, err)

	_, err = m.ProcessNewOrder(market.PlaceOrderInput{
		UserID: seller, LimitPrice: priceOf(0), Quantity: fdecimal.NewFromInt(10), Side: order.Ask,
	})
	assert.ErrorIs(t, err, apperrors.ErrLimitOrderInvalidPrice)
}

func TestProcessNewOrder_RestingAskFreezesBaseBalance(t *testing.T) {
	m, balanceSvc := newTestMarket(t, 1, true)
	_, err := balanceSvc.Deposit(seller, baseAssetID, fdecimal.NewFromInt(100))
	require.NoError(t, err)

	_, err = m.ProcessNewOrder(market.PlaceOrderInput{
		UserID: seller, LimitPrice: priceOf(10), Quantity: fdecimal.NewFromInt(40), Side: order.Ask,
	})
	require.NoError(t, err)

	status := balanceSvc.Status(seller, baseAssetID)
	assert.True(t, status.Available.Equal(fdecimal.NewFromInt(60)))
	assert.True(t, status.Frozen.Equal(fdecimal.NewFromInt(40)))
}

func TestProcessNewOrder_FullMatch_SettlesAndUnfreezesMaker(t *testing.T) {
	m, balanceSvc := newTestMarket(t, 1, true)
	_, err := balanceSvc.Deposit(seller, baseAssetID, fdecimal.NewFromInt(100))
	require.NoError(t, err)
	_, err = balanceSvc.Deposit(buyer, quoteAsset, fdecimal.NewFromInt(1000))
	require.NoError(t, err)

	_, err = m.ProcessNewOrder(market.PlaceOrderInput{
		UserID: seller, LimitPrice: priceOf(10), Quantity: fdecimal.NewFromInt(40), Side: order.Ask,
	})
	require.NoError(t, err)

	out, err := m.ProcessNewOrder(market.PlaceOrderInput{
		UserID: buyer, LimitPrice: priceOf(10), Quantity: fdecimal.NewFromInt(40), Side: order.Bid,
	})
	require.NoError(t, err)
	require.Len(t, out.Trades, 1)

	sellerBase := balanceSvc.Status(seller, baseAssetID)
	assert.True(t, sellerBase.Frozen.IsZero())
	assert.True(t, sellerBase.Available.Equal(fdecimal.NewFromInt(60)))

	sellerQuote := balanceSvc.Status(seller, quoteAsset)
	assert.True(t, sellerQuote.Available.Equal(fdecimal.NewFromInt(400)))

	buyerBase := balanceSvc.Status(buyer, baseAssetID)
	assert.True(t, buyerBase.Available.Equal(fdecimal.NewFromInt(40)))

	buyerQuote := balanceSvc.Status(buyer, quoteAsset)
	assert.True(t, buyerQuote.Available.Equal(fdecimal.NewFromInt(600)))
	assert.True(t, buyerQuote.Frozen.IsZero())
}

func TestCancelOrder_ReleasesFrozenAskBalance(t *testing.T) {
	m, balanceSvc := newTestMarket(t, 1, true)
	_, err := balanceSvc.Deposit(seller, baseAssetID, fdecimal.NewFromInt(100))
	require.NoError(t, err)

	out, err := m.ProcessNewOrder(market.PlaceOrderInput{
		UserID: seller, LimitPrice: priceOf(10), Quantity: fdecimal.NewFromInt(40), Side: order.Ask,
	})
	require.NoError(t, err)

	require.NoError(t, m.CancelOrder(out.OrderID))

	status := balanceSvc.Status(seller, baseAssetID)
	assert.True(t, status.Available.Equal(fdecimal.NewFromInt(100)))
	assert.True(t, status.Frozen.IsZero())
}

func TestCancelOrder_Unknown_ReturnsError(t *testing.T) {
	m, _ := newTestMarket(t, 1, true)
	err := m.CancelOrder(999)
	assert.Error(t, err)
}
