// Package engine is the coordinator: a registry of per-pair markets,
// dispatching admitted requests under a single reader-writer lock per
// the concurrency model of spec §5.
package engine

import (
	"sync"

	"github.com/fenrir-exchange/fenrir/internal/apperrors"
	"github.com/fenrir-exchange/fenrir/internal/balance"
	"github.com/fenrir-exchange/fenrir/internal/book"
	fdecimal "github.com/fenrir-exchange/fenrir/internal/decimal"
	"github.com/fenrir-exchange/fenrir/internal/market"
	"github.com/fenrir-exchange/fenrir/internal/order"
	"github.com/fenrir-exchange/fenrir/internal/sequencer"
	"github.com/fenrir-exchange/fenrir/internal/trade"
)

// Engine maps pair id to Market under a single reader-writer lock:
// readers (depth queries) take the read lock; any mutating call takes
// the write lock for the entire admission+match+settle sequence, so
// per-market matching is serialized relative to other submissions on
// that market. The lock is engine-wide: mutating calls on different
// markets are serialized against each other as well.
type Engine struct {
	mu      sync.RWMutex
	markets map[market.PairID]*market.Market

	balanceSvc *balance.Service
	orderIDSeq *sequencer.Sequencer
	tradeIDSeq *sequencer.Sequencer
}

// New builds an Engine with one Market per cfg, all sharing balanceSvc
// and a common order-id sequencer.
func New(balanceSvc *balance.Service, configs []market.Config) *Engine {
	e := &Engine{
		markets:    make(map[market.PairID]*market.Market, len(configs)),
		balanceSvc: balanceSvc,
		orderIDSeq: sequencer.New(),
		tradeIDSeq: sequencer.New(),
	}

	for _, cfg := range configs {
		e.markets[cfg.PairID] = market.New(cfg, balanceSvc, e.orderIDSeq, e.tradeIDSeq)
	}

	return e
}

// PlaceOrderInput is one incoming order request, addressed to a pair.
type PlaceOrderInput struct {
	PairID     market.PairID
	UserID     balance.UserID
	LimitPrice *fdecimal.Decimal
	Quantity   fdecimal.Decimal
	Side       order.Side
}

// PlaceOrderOutput reports the new order's id and any trades it produced.
type PlaceOrderOutput struct {
	OrderID order.ID
	Trades  []*trade.Trade
}

// PlaceOrder looks up the pair's Market and runs the admit→match→settle
// sequence under the engine's write lock.
func (e *Engine) PlaceOrder(input PlaceOrderInput) (*PlaceOrderOutput, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	m, ok := e.markets[input.PairID]
	if !ok {
		return nil, apperrors.ErrMarketNotFound
	}

	out, err := m.ProcessNewOrder(market.PlaceOrderInput{
		UserID:     input.UserID,
		LimitPrice: input.LimitPrice,
		Quantity:   input.Quantity,
		Side:       input.Side,
	})
	if err != nil {
		return nil, err
	}

	return &PlaceOrderOutput{OrderID: out.OrderID, Trades: out.Trades}, nil
}

// CancelOrder looks up the pair's Market and cancels orderID under the
// engine's write lock.
func (e *Engine) CancelOrder(pairID market.PairID, orderID order.ID) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	m, ok := e.markets[pairID]
	if !ok {
		return apperrors.ErrMarketNotFound
	}

	return m.CancelOrder(orderID)
}

// GetMarketOrderbook returns aggregated (asks, bids) depth for pairID
// under the engine's read lock.
func (e *Engine) GetMarketOrderbook(pairID market.PairID) (asks, bids []book.DepthLevel, err error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	m, ok := e.markets[pairID]
	if !ok {
		return nil, nil, apperrors.ErrMarketNotFound
	}

	asks, bids = m.GetOrderbookDepth()
	return asks, bids, nil
}
