package engine_test

import (
	"testing"

	"github.com/fenrir-exchange/fenrir/internal/apperrors"
	"github.com/fenrir-exchange/fenrir/internal/balance"
	fdecimal "github.com/fenrir-exchange/fenrir/internal/decimal"
	"github.com/fenrir-exchange/fenrir/internal/engine"
	"github.com/fenrir-exchange/fenrir/internal/market"
	"github.com/fenrir-exchange/fenrir/internal/order"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	pairID      = market.PairID(1)
	baseAssetID = balance.AssetID(1)
	quoteAsset  = balance.AssetID(2)
	buyer       = balance.UserID(1)
	seller      = balance.UserID(2)
)

func newTestEngine(t *testing.T, minQty int64) (*engine.Engine, *balance.Service) {
	t.Helper()
	balanceSvc := balance.NewService(balance.NewMemoryStore())

	e := engine.New(balanceSvc, []market.Config{
		{
			PairID:               pairID,
			BaseAssetID:          baseAssetID,
			QuoteAssetID:         quoteAsset,
			IsMarketTradeEnabled: true,
			MinAllowedQuantity:   fdecimal.NewFromInt(minQty),
		},
	})

	return e, balanceSvc
}

func price(v int64) *fdecimal.Decimal {
	d := fdecimal.NewFromInt(v)
	return &d
}

func TestEngine_UnknownPair_ReturnsMarketNotFound(t *testing.T) {
	e, _ := newTestEngine(t, 1)

	_, err := e.PlaceOrder(engine.PlaceOrderInput{
		PairID: 999, UserID: buyer, LimitPrice: price(10), Quantity: fdecimal.NewFromInt(10), Side: order.Bid,
	})
	assert.ErrorIs(t, err, apperrors.ErrMarketNotFound)

	_, _, err = e.GetMarketOrderbook(999)
	assert.ErrorIs(t, err, apperrors.ErrMarketNotFound)
}

func TestEngine_PlaceLimitOrder_FreezesBalanceAndRests(t *testing.T) {
	e, balanceSvc := newTestEngine(t, 1)

	_, err := balanceSvc.Deposit(buyer, quoteAsset, fdecimal.NewFromInt(1000))
	require.NoError(t, err)

	out, err := e.PlaceOrder(engine.PlaceOrderInput{
		PairID: pairID, UserID: buyer, LimitPrice: price(10), Quantity: fdecimal.NewFromInt(10), Side: order.Bid,
	})
	require.NoError(t, err)
	assert.Empty(t, out.Trades)

	status := balanceSvc.Status(buyer, quoteAsset)
	assert.True(t, status.Available.Equal(fdecimal.NewFromInt(900)))
	assert.True(t, status.Frozen.Equal(fdecimal.NewFromInt(100)))

	asks, bids, err := e.GetMarketOrderbook(pairID)
	require.NoError(t, err)
	assert.Empty(t, asks)
	require.Len(t, bids, 1)
	assert.True(t, bids[0].Price.Equal(fdecimal.NewFromInt(10)))
}

func TestEngine_MatchedTrade_SettlesBothSides(t *testing.T) {
	e, balanceSvc := newTestEngine(t, 1)

	_, err := balanceSvc.Deposit(seller, baseAssetID, fdecimal.NewFromInt(100))
	require.NoError(t, err)
	_, err = balanceSvc.Deposit(buyer, quoteAsset, fdecimal.NewFromInt(1000))
	require.NoError(t, err)

	_, err = e.PlaceOrder(engine.PlaceOrderInput{
		PairID: pairID, UserID: seller, LimitPrice: price(10), Quantity: fdecimal.NewFromInt(50), Side: order.Ask,
	})
	require.NoError(t, err)

	out, err := e.PlaceOrder(engine.PlaceOrderInput{
		PairID: pairID, UserID: buyer, LimitPrice: price(10), Quantity: fdecimal.NewFromInt(50), Side: order.Bid,
	})
	require.NoError(t, err)
	require.Len(t, out.Trades, 1)

	buyerStatus := balanceSvc.Status(buyer, baseAssetID)
	assert.True(t, buyerStatus.Available.Equal(fdecimal.NewFromInt(50)))

	sellerStatus := balanceSvc.Status(seller, quoteAsset)
	assert.True(t, sellerStatus.Available.Equal(fdecimal.NewFromInt(500)))

	sellerBase := balanceSvc.Status(seller, baseAssetID)
	assert.True(t, sellerBase.Available.Equal(fdecimal.NewFromInt(50)))
	assert.True(t, sellerBase.Frozen.IsZero())
}

func TestEngine_CancelOrder_ReleasesFrozenBalance(t *testing.T) {
	e, balanceSvc := newTestEngine(t, 1)

	_, err := balanceSvc.Deposit(buyer, quoteAsset, fdecimal.NewFromInt(1000))
	require.NoError(t, err)

	out, err := e.PlaceOrder(engine.PlaceOrderInput{
		PairID: pairID, UserID: buyer, LimitPrice: price(10), Quantity: fdecimal.NewFromInt(10), Side: order.Bid,
	})
	require.NoError(t, err)

	require.NoError(t, e.CancelOrder(pairID, out.OrderID))

	status := balanceSvc.Status(buyer, quoteAsset)
	assert.True(t, status.Available.Equal(fdecimal.NewFromInt(1000)))
	assert.True(t, status.Frozen.IsZero())

	_, bids, err := e.GetMarketOrderbook(pairID)
	require.NoError(t, err)
	assert.Empty(t, bids)
}

func TestEngine_MarketOrderAgainstEmptyBook_RejectedAtAdmission(t *testing.T) {
	e, _ := newTestEngine(t, 1)

	_, err := e.PlaceOrder(engine.PlaceOrderInput{
		PairID: pairID, UserID: buyer, LimitPrice: nil, Quantity: fdecimal.NewFromInt(1000), Side: order.Bid,
	})
	assert.ErrorIs(t, err, apperrors.ErrCounterOrderbooksIsEmpty)
}

func TestEngine_QuantityBelowMinimum_Rejected(t *testing.T) {
	e, balanceSvc := newTestEngine(t, 100)

	_, err := balanceSvc.Deposit(buyer, quoteAsset, fdecimal.NewFromInt(1000))
	require.NoError(t, err)

	_, err = e.PlaceOrder(engine.PlaceOrderInput{
		PairID: pairID, UserID: buyer, LimitPrice: price(10), Quantity: fdecimal.NewFromInt(10), Side: order.Bid,
	})
	assert.ErrorIs(t, err, apperrors.ErrMarketMinimumAllowedQuantityExceeds)
}
