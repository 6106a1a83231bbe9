// Package market owns one pair's orderbook plus a reference to the
// shared balance ledger and sequencer, and orchestrates admission checks
// and balance freeze/settle around matching (spec §4.4).
package market

import (
	"github.com/fenrir-exchange/fenrir/internal/apperrors"
	"github.com/fenrir-exchange/fenrir/internal/balance"
	"github.com/fenrir-exchange/fenrir/internal/book"
	fdecimal "github.com/fenrir-exchange/fenrir/internal/decimal"
	"github.com/fenrir-exchange/fenrir/internal/order"
	"github.com/fenrir-exchange/fenrir/internal/sequencer"
	"github.com/fenrir-exchange/fenrir/internal/trade"
	"github.com/rs/zerolog/log"
)

// PairID identifies a tradable (base, quote) instrument.
type PairID = uint32

// Config is the static, per-pair configuration consumed at startup
// (spec §6).
type Config struct {
	PairID               PairID
	BaseAssetID          balance.AssetID
	QuoteAssetID         balance.AssetID
	IsMarketTradeEnabled bool
	MinAllowedQuantity   fdecimal.Decimal
}

// Market is one pair's orderbook plus admission/settlement orchestration.
type Market struct {
	cfg Config

	orderbook  *book.Orderbook
	orderIDSeq *sequencer.Sequencer
	balanceSvc *balance.Service
}

// New constructs a Market for cfg, backed by balanceSvc and sharing
// orderIDSeq with the rest of the engine (so order ids stay globally
// monotonic even across pairs).
func New(cfg Config, balanceSvc *balance.Service, orderIDSeq, tradeIDSeq *sequencer.Sequencer) *Market {
	return &Market{
		cfg:        cfg,
		orderbook:  book.New(tradeIDSeq),
		orderIDSeq: orderIDSeq,
		balanceSvc: balanceSvc,
	}
}

// PlaceOrderInput is one incoming order request (spec §6's PlaceOrder).
type PlaceOrderInput struct {
	UserID     balance.UserID
	LimitPrice *fdecimal.Decimal // nil means market order
	Quantity   fdecimal.Decimal
	Side       order.Side
}

// PlaceOrderOutput is the accepted order's id plus any trades it produced.
type PlaceOrderOutput struct {
	OrderID order.ID
	Trades  []*trade.Trade
}

// checkNewOrderInput applies the admission checks of spec §4.4, in
// order, returning the first failure.
func (m *Market) checkNewOrderInput(o *order.Order) error {
	if !o.HasLimitPrice() && !m.cfg.IsMarketTradeEnabled {
		return apperrors.ErrMarketTradeDisabled
	}

	if o.Quantity.LessThan(m.cfg.MinAllowedQuantity) {
		return apperrors.ErrMarketMinimumAllowedQuantityExceeds
	}

	if o.HasLimitPrice() {
		if o.LimitPrice.IsZero() {
			return apperrors.ErrLimitOrderInvalidPrice
		}
	} else {
		switch o.Side {
		case order.Ask:
			if m.orderbook.Bids.IsEmpty() {
				return apperrors.ErrCounterOrderbooksIsEmpty
			}
		case order.Bid:
			if m.orderbook.Asks.IsEmpty() {
				return apperrors.ErrCounterOrderbooksIsEmpty
			}
		}
	}

	switch o.Side {
	case order.Ask:
		if !m.balanceSvc.IsAvailableBalanceEnough(o.UserID, o.BaseAssetID, o.Quantity) {
			return apperrors.ErrUserBalanceExceeds
		}
	case order.Bid:
		// A market bid cannot be priced without walking the book, so its
		// available-balance check is skipped here (spec §4.4 point 5,
		// §9 "market-bid admission" strategy (a) — the book-non-empty
		// check above is the only admission gate for a market bid).
		if o.HasLimitPrice() {
			amount, err := o.Amount()
			if err != nil {
				return err
			}
			if !m.balanceSvc.IsAvailableBalanceEnough(o.UserID, o.QuoteAssetID, amount) {
				return apperrors.ErrUserBalanceExceeds
			}
		}
	}

	return nil
}

// freezeUserBalance moves o's frozen_amount from Available to Frozen on
// o's collateral asset, called once o is about to rest.
func (m *Market) freezeUserBalance(o *order.Order) error {
	amount := o.FrozenAmount

	if _, err := m.balanceSvc.ChangeBalance(balance.ChangeInput{
		UserID: o.UserID, AssetID: o.AssetID(),
		BusinessType: balance.BusinessTrade, BusinessID: o.ID,
		Bucket: balance.Available, Amount: amount.Neg(),
	}); err != nil {
		return err
	}

	_, err := m.balanceSvc.ChangeBalance(balance.ChangeInput{
		UserID: o.UserID, AssetID: o.AssetID(),
		BusinessType: balance.BusinessTrade, BusinessID: o.ID,
		Bucket: balance.Frozen, Amount: amount,
	})
	return err
}

// unfreezeUserBalance releases o's remaining frozen_amount back to
// Available: the inverse of freezeUserBalance. The reference
// implementation applied the same direction to both calls; spec §9
// flags that as a bug and requires the direction be inverted here.
func (m *Market) unfreezeUserBalance(o *order.Order) error {
	amount := o.FrozenAmount

	if _, err := m.balanceSvc.ChangeBalance(balance.ChangeInput{
		UserID: o.UserID, AssetID: o.AssetID(),
		BusinessType: balance.BusinessTrade, BusinessID: o.ID,
		Bucket: balance.Frozen, Amount: amount.Neg(),
	}); err != nil {
		return err
	}

	_, err := m.balanceSvc.ChangeBalance(balance.ChangeInput{
		UserID: o.UserID, AssetID: o.AssetID(),
		BusinessType: balance.BusinessTrade, BusinessID: o.ID,
		Bucket: balance.Available, Amount: amount,
	})
	return err
}

// transferTradeBalance performs the four ledger mutations of one trade
// (spec §4.4 step 3): base flows from seller to buyer, quote flows from
// buyer to seller, debiting whichever bucket already held the escrow.
func (m *Market) transferTradeBalance(t *trade.Trade) error {
	bidOrder := t.BidOrder()
	askOrder := t.AskOrder()
	isMakerBid := t.IsMakerBid()

	quoteBucketForBidder := balance.Available
	if isMakerBid {
		quoteBucketForBidder = balance.Frozen
	}
	baseBucketForSeller := balance.Available
	if !isMakerBid {
		baseBucketForSeller = balance.Frozen
	}

	if _, err := m.balanceSvc.ChangeBalance(balance.ChangeInput{
		UserID: bidOrder.UserID, AssetID: bidOrder.BaseAssetID,
		BusinessType: balance.BusinessTrade, BusinessID: t.ID,
		Bucket: balance.Available, Amount: t.Quantity,
	}); err != nil {
		return err
	}

	if _, err := m.balanceSvc.ChangeBalance(balance.ChangeInput{
		UserID: bidOrder.UserID, AssetID: bidOrder.QuoteAssetID,
		BusinessType: balance.BusinessTrade, BusinessID: t.ID,
		Bucket: quoteBucketForBidder, Amount: t.Amount().Neg(),
	}); err != nil {
		return err
	}

	if _, err := m.balanceSvc.ChangeBalance(balance.ChangeInput{
		UserID: askOrder.UserID, AssetID: askOrder.QuoteAssetID,
		BusinessType: balance.BusinessTrade, BusinessID: t.ID,
		Bucket: balance.Available, Amount: t.Amount(),
	}); err != nil {
		return err
	}

	if _, err := m.balanceSvc.ChangeBalance(balance.ChangeInput{
		UserID: askOrder.UserID, AssetID: askOrder.BaseAssetID,
		BusinessType: balance.BusinessTrade, BusinessID: t.ID,
		Bucket: baseBucketForSeller, Amount: t.Quantity.Neg(),
	}); err != nil {
		return err
	}

	return nil
}

// ProcessNewOrder runs the full admit→match→settle sequence for one new
// order (spec §4.4 process_new_order). Callers must hold the engine's
// write lock for the pair so this sequence is atomic relative to other
// submissions.
func (m *Market) ProcessNewOrder(input PlaceOrderInput) (*PlaceOrderOutput, error) {
	var o *order.Order
	if input.LimitPrice != nil {
		o = order.NewLimit(m.orderIDSeq.Next(), input.UserID, m.cfg.BaseAssetID, m.cfg.QuoteAssetID, input.Side, *input.LimitPrice, input.Quantity)
	} else {
		o = order.NewMarket(m.orderIDSeq.Next(), input.UserID, m.cfg.BaseAssetID, m.cfg.QuoteAssetID, input.Side, input.Quantity)
	}

	if err := m.checkNewOrderInput(o); err != nil {
		return nil, err
	}

	matchOutput, err := m.orderbook.PutOrder(o)
	if err != nil {
		return nil, err
	}

	for _, t := range matchOutput.Trades {
		if err := m.transferTradeBalance(t); err != nil {
			return nil, err
		}
	}

	if !matchOutput.TakerOrder.IsClosed() && matchOutput.TakerOrder.IsBookable() {
		if err := m.freezeUserBalance(matchOutput.TakerOrder); err != nil {
			return nil, err
		}
	}

	for _, filled := range matchOutput.FilledOrders {
		if err := m.unfreezeUserBalance(filled); err != nil {
			return nil, err
		}
	}

	log.Info().
		Uint32("pairId", m.cfg.PairID).
		Uint64("orderId", o.ID).
		Str("side", o.Side.String()).
		Int("trades", len(matchOutput.Trades)).
		Msg("order processed")

	return &PlaceOrderOutput{OrderID: o.ID, Trades: matchOutput.Trades}, nil
}

// CancelOrder removes a resting order from the book and releases its
// escrowed frozen balance back to Available (spec §9's cancel gap,
// closed here rather than left open).
func (m *Market) CancelOrder(orderID order.ID) error {
	o, err := m.orderbook.Cancel(orderID)
	if err != nil {
		return err
	}

	return m.unfreezeUserBalance(o)
}

// GetOrderbookDepth returns aggregated (asks, bids) depth, best first.
func (m *Market) GetOrderbookDepth() (asks, bids []book.DepthLevel) {
	return m.orderbook.AsksDepth(), m.orderbook.BidsDepth()
}

// Config exposes the market's static configuration.
func (m *Market) Config() Config { return m.cfg }
