// Package trade holds the Trade type produced by the matcher: a record
// of one fill between a taker and a resting maker (spec §3).
package trade

import (
	"github.com/fenrir-exchange/fenrir/internal/apperrors"
	fdecimal "github.com/fenrir-exchange/fenrir/internal/decimal"
	"github.com/fenrir-exchange/fenrir/internal/order"
)

// ID identifies a trade, minted from the engine's shared sequencer
// (spec §9 resolves the reference implementation's Trade.id == 0 stub).
type ID = uint64

// Trade is produced strictly by the matcher; it is never stored in the
// orderbook. Price is always the maker's limit price.
type Trade struct {
	ID          ID
	TakerOrder  *order.Order // snapshot at match time
	MakerOrder  *order.Order // snapshot at match time
	Price       fdecimal.Decimal
	Quantity    fdecimal.Decimal
}

// New builds a trade between taker and maker for the given traded
// quantity. The maker must carry a limit price (it is, by definition,
// resting) — its absence is a consistency bug.
func New(id ID, taker, maker *order.Order, quantity fdecimal.Decimal) (*Trade, error) {
	if !maker.HasLimitPrice() {
		return nil, apperrors.ErrMakerOrderWithoutLimitPrice
	}

	return &Trade{
		ID:         id,
		TakerOrder: taker.Clone(),
		MakerOrder: maker.Clone(),
		Price:      maker.LimitPrice,
		Quantity:   quantity,
	}, nil
}

// Amount is quantity x price.
func (t *Trade) Amount() fdecimal.Decimal {
	return t.Quantity.Mul(t.Price)
}

// MakerSide is the side the resting maker order was on.
func (t *Trade) MakerSide() order.Side {
	return t.MakerOrder.Side
}

// BidOrder returns whichever of taker/maker was the buyer.
func (t *Trade) BidOrder() *order.Order {
	if t.TakerOrder.Side == order.Bid {
		return t.TakerOrder
	}
	return t.MakerOrder
}

// AskOrder returns whichever of taker/maker was the seller.
func (t *Trade) AskOrder() *order.Order {
	if t.TakerOrder.Side == order.Ask {
		return t.TakerOrder
	}
	return t.MakerOrder
}

// IsMakerBid reports whether the resting maker was the bidder, used by
// settlement to decide which side's escrow was already frozen.
func (t *Trade) IsMakerBid() bool {
	return t.MakerOrder.Side == order.Bid
}
