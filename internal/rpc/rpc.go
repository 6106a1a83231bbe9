// Package rpc defines the engine's externally-facing operations as a
// plain Go interface, independent of any wire transport. Spec §1 puts
// the transport layer itself out of scope and specifies only these
// interfaces; internal/net adapts the teacher's TCP protocol to them.
package rpc

import (
	"github.com/fenrir-exchange/fenrir/internal/balance"
	"github.com/fenrir-exchange/fenrir/internal/book"
	fdecimal "github.com/fenrir-exchange/fenrir/internal/decimal"
	"github.com/fenrir-exchange/fenrir/internal/market"
	"github.com/fenrir-exchange/fenrir/internal/order"
	"github.com/fenrir-exchange/fenrir/internal/trade"
)

// PlaceOrderRequest submits a new order to a pair. LimitPrice nil means
// a market order.
type PlaceOrderRequest struct {
	PairID     market.PairID
	UserID     balance.UserID
	Side       order.Side
	LimitPrice *fdecimal.Decimal
	Quantity   fdecimal.Decimal
}

// PlaceOrderResult reports the accepted order's id and any trades it
// produced immediately upon matching.
type PlaceOrderResult struct {
	OrderID order.ID
	Trades  []*trade.Trade
}

// CancelOrderRequest withdraws a resting order from a pair's book.
type CancelOrderRequest struct {
	PairID  market.PairID
	OrderID order.ID
}

// OrderbookView is a snapshot of a pair's aggregated depth, best first
// on both sides.
type OrderbookView struct {
	PairID market.PairID
	Asks   []book.DepthLevel
	Bids   []book.DepthLevel
}

// DepositRequest and WithdrawRequest move funds between a user's wallet
// and their Available balance (spec §2).
type DepositRequest struct {
	UserID  balance.UserID
	AssetID balance.AssetID
	Amount  fdecimal.Decimal
}

type WithdrawRequest struct {
	UserID  balance.UserID
	AssetID balance.AssetID
	Amount  fdecimal.Decimal
}

// Service is the full set of operations the engine exposes externally
// (spec §6). Every method is safe for concurrent use.
type Service interface {
	GetUserBalance(userID balance.UserID, assetID balance.AssetID) balance.Status
	Deposit(req DepositRequest) (*balance.ChangeOutput, error)
	Withdraw(req WithdrawRequest) (*balance.ChangeOutput, error)
	PlaceOrder(req PlaceOrderRequest) (*PlaceOrderResult, error)
	CancelOrder(req CancelOrderRequest) error
	GetMarketOrderbook(pairID market.PairID) (*OrderbookView, error)
}
