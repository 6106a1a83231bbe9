// Package order is the atomic unit of intent matched by the orderbook:
// immutable identity plus mutable fill/frozen state (spec §3, §4.1).
package order

import (
	"github.com/fenrir-exchange/fenrir/internal/apperrors"
	"github.com/fenrir-exchange/fenrir/internal/balance"
	fdecimal "github.com/fenrir-exchange/fenrir/internal/decimal"
)

// ID is an engine-unique, monotonic order identifier.
type ID = uint64

// Side is which way the order trades: Ask sells base, Bid buys base.
type Side int

const (
	Ask Side = iota
	Bid
)

func (s Side) String() string {
	if s == Ask {
		return "ask"
	}
	return "bid"
}

// Opposite returns the other side of the book.
func (s Side) Opposite() Side {
	if s == Ask {
		return Bid
	}
	return Ask
}

// Type distinguishes limit orders (carry a price) from market orders
// (no price, IOC, never rest).
type Type int

const (
	TypeLimit Type = iota
	TypeMarket
)

// Status is the order's lifecycle state, derived from fills and explicit
// cancellation.
type Status int

const (
	Open Status = iota
	PartiallyFilled
	Filled
	Cancelled
	Closed
)

func (s Status) String() string {
	switch s {
	case Open:
		return "open"
	case PartiallyFilled:
		return "partially_filled"
	case Filled:
		return "filled"
	case Cancelled:
		return "cancelled"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// Order is the unit matched by an Orderbook. Identity fields are set at
// construction and never change; Filled/Frozen/Status mutate as the
// order is matched, rested, or cancelled.
type Order struct {
	ID            ID
	UserID        balance.UserID
	BaseAssetID   balance.AssetID
	QuoteAssetID  balance.AssetID
	Type          Type
	Side          Side
	LimitPrice    fdecimal.Decimal // only meaningful when Type == TypeLimit
	Quantity      fdecimal.Decimal // original requested base quantity, immutable
	Filled        fdecimal.Decimal // monotonically non-decreasing, <= Quantity
	FrozenAmount  fdecimal.Decimal // current escrow held against this order
	Status        Status
}

// NewLimit constructs an open limit order.
func NewLimit(id ID, userID balance.UserID, baseAssetID, quoteAssetID balance.AssetID, side Side, limitPrice, quantity fdecimal.Decimal) *Order {
	return &Order{
		ID:           id,
		UserID:       userID,
		BaseAssetID:  baseAssetID,
		QuoteAssetID: quoteAssetID,
		Type:         TypeLimit,
		Side:         side,
		LimitPrice:   limitPrice,
		Quantity:     quantity,
		Filled:       fdecimal.Zero,
		FrozenAmount: fdecimal.Zero,
		Status:       Open,
	}
}

// NewMarket constructs an open market order (no price, never rests).
func NewMarket(id ID, userID balance.UserID, baseAssetID, quoteAssetID balance.AssetID, side Side, quantity fdecimal.Decimal) *Order {
	return &Order{
		ID:           id,
		UserID:       userID,
		BaseAssetID:  baseAssetID,
		QuoteAssetID: quoteAssetID,
		Type:         TypeMarket,
		Side:         side,
		Quantity:     quantity,
		Filled:       fdecimal.Zero,
		FrozenAmount: fdecimal.Zero,
		Status:       Open,
	}
}

// Remaining is the base quantity left to fill.
func (o *Order) Remaining() fdecimal.Decimal {
	return o.Quantity.Sub(o.Filled)
}

// AssetID is the asset this order must post as collateral: base for an
// Ask, quote for a Bid.
func (o *Order) AssetID() balance.AssetID {
	if o.Side == Ask {
		return o.BaseAssetID
	}
	return o.QuoteAssetID
}

// HasLimitPrice reports whether this order carries a limit price.
func (o *Order) HasLimitPrice() bool {
	return o.Type == TypeLimit
}

// Amount is quantity x price for a limit order. Market orders have no
// fixed notional and return apperrors.ErrInvalidMarketOrderAmount.
func (o *Order) Amount() (fdecimal.Decimal, error) {
	if !o.HasLimitPrice() {
		return fdecimal.Zero, apperrors.ErrInvalidMarketOrderAmount
	}
	return o.Quantity.Mul(o.LimitPrice), nil
}

// TradedQuantity is the quantity that would change hands if o matched
// against other right now: the smaller of the two remaining quantities.
func (o *Order) TradedQuantity(other *Order) fdecimal.Decimal {
	remaining := o.Remaining()
	otherRemaining := other.Remaining()
	if otherRemaining.LessThan(remaining) {
		return otherRemaining
	}
	return remaining
}

// Fill records a trade of quantity against this order. Refuses if
// quantity exceeds what remains (apperrors.ErrOrderOverFilled — a
// consistency bug, should be unreachable under correct matching).
func (o *Order) Fill(quantity fdecimal.Decimal) error {
	if quantity.GreaterThan(o.Remaining()) {
		return apperrors.ErrOrderOverFilled
	}

	o.Filled = o.Filled.Add(quantity)
	if o.Filled.Equal(o.Quantity) {
		o.Status = Filled
	} else {
		o.Status = PartiallyFilled
	}
	return nil
}

// IsClosed reports whether the order can no longer match or rest.
func (o *Order) IsClosed() bool {
	switch o.Status {
	case Filled, Cancelled, Closed:
		return true
	default:
		return false
	}
}

// IsBookable reports whether the order may rest in the book: only limit
// orders are bookable, market orders always expire at-most-fill.
func (o *Order) IsBookable() bool {
	return o.Type == TypeLimit
}

// SetFrozenAmount recomputes the escrow attributable to this order from
// its current remaining quantity, called just before the order rests.
func (o *Order) SetFrozenAmount() error {
	switch o.Side {
	case Ask:
		o.FrozenAmount = o.Remaining()
	case Bid:
		if !o.HasLimitPrice() {
			return apperrors.ErrOrderInvalidFrozenAmount
		}
		o.FrozenAmount = o.Remaining().Mul(o.LimitPrice)
	}
	return nil
}

// DecreaseFrozenAmount releases the portion of escrow consumed by a
// trade of tradedQuantity against this resting order.
func (o *Order) DecreaseFrozenAmount(tradedQuantity fdecimal.Decimal) error {
	switch o.Side {
	case Ask:
		o.FrozenAmount = o.FrozenAmount.Sub(tradedQuantity)
	case Bid:
		if !o.HasLimitPrice() {
			return apperrors.ErrOrderInvalidFrozenAmount
		}
		o.FrozenAmount = o.FrozenAmount.Sub(tradedQuantity.Mul(o.LimitPrice))
	}
	return nil
}

// Clone returns a snapshot copy, used when a resting order needs to be
// captured (e.g. into a Trade or a filled-orders list) independent of
// further mutation.
func (o *Order) Clone() *Order {
	clone := *o
	return &clone
}
