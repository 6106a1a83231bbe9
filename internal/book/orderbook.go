package book

import (
	"github.com/fenrir-exchange/fenrir/internal/apperrors"
	fdecimal "github.com/fenrir-exchange/fenrir/internal/decimal"
	"github.com/fenrir-exchange/fenrir/internal/order"
	"github.com/fenrir-exchange/fenrir/internal/trade"
	"github.com/tidwall/btree"
)

// Side wraps a price-ordered btree of *PriceLevel, exposing just the
// operations the orderbook and its tests need.
type Side struct {
	tree *btree.BTreeG[*PriceLevel]
}

func newAsksSide() *Side {
	// Ascending: best ask (lowest price) first.
	return &Side{tree: btree.NewBTreeG(func(a, b *PriceLevel) bool {
		return a.Price.LessThan(b.Price)
	})}
}

func newBidsSide() *Side {
	// Descending: best bid (highest price) first.
	return &Side{tree: btree.NewBTreeG(func(a, b *PriceLevel) bool {
		return a.Price.GreaterThan(b.Price)
	})}
}

func (s *Side) get(price fdecimal.Decimal) (*PriceLevel, bool) {
	return s.tree.Get(&PriceLevel{Price: price})
}

func (s *Side) set(level *PriceLevel) {
	s.tree.Set(level)
}

func (s *Side) delete(price fdecimal.Decimal) {
	s.tree.Delete(&PriceLevel{Price: price})
}

// Best returns the top-of-book level for this side, if any.
func (s *Side) Best() (*PriceLevel, bool) {
	return s.tree.Min()
}

// IsEmpty reports whether this side has no resting levels.
func (s *Side) IsEmpty() bool {
	return s.tree.Len() == 0
}

// Items returns all levels in book order (best first), a snapshot slice
// used by depth queries and tests.
func (s *Side) Items() []*PriceLevel {
	items := make([]*PriceLevel, 0, s.tree.Len())
	s.tree.Scan(func(level *PriceLevel) bool {
		items = append(items, level)
		return true
	})
	return items
}

// DepthLevel is one aggregated (price, quantity) row.
type DepthLevel struct {
	Price    fdecimal.Decimal
	Quantity fdecimal.Decimal
}

// Depth returns the side's aggregated depth, best price first.
func (s *Side) Depth() []DepthLevel {
	items := s.Items()
	depth := make([]DepthLevel, len(items))
	for i, level := range items {
		depth[i] = DepthLevel{Price: level.Price, Quantity: level.Quantity}
	}
	return depth
}

// Orderbook is the per-pair book: two price-ordered sides plus a direct
// order index shared by both. Price levels hold order ids, not owning
// references, so cancel/fill/teardown stay O(1)/O(n-in-level) (spec §9).
type Orderbook struct {
	Asks   *Side
	Bids   *Side
	orders map[order.ID]*order.Order

	tradeSeq tradeSequencer
}

// tradeSequencer is the minimal interface the orderbook needs to mint
// trade ids; satisfied by *sequencer.Sequencer.
type tradeSequencer interface {
	Next() uint64
}

// New returns an empty orderbook. tradeIDs mints the id for every trade
// the book produces.
func New(tradeIDs tradeSequencer) *Orderbook {
	return &Orderbook{
		Asks:     newAsksSide(),
		Bids:     newBidsSide(),
		orders:   make(map[order.ID]*order.Order),
		tradeSeq: tradeIDs,
	}
}

// MatchOutput is the result of PutOrder: the taker's post-match state,
// any maker orders it fully closed, and every trade produced.
type MatchOutput struct {
	TakerOrder   *order.Order
	FilledOrders []*order.Order
	Trades       []*trade.Trade
}

// Order looks up a resting order by id.
func (ob *Orderbook) Order(id order.ID) (*order.Order, bool) {
	o, ok := ob.orders[id]
	return o, ok
}

// PutOrder matches taker against the opposite side, walking best-price
// first and, within a level, oldest-arrival first, then books any
// bookable remainder on taker's own side (spec §4.3).
func (ob *Orderbook) PutOrder(taker *order.Order) (*MatchOutput, error) {
	var opposite *Side
	switch taker.Side {
	case order.Ask:
		opposite = ob.Bids
	case order.Bid:
		opposite = ob.Asks
	}

	trades := make([]*trade.Trade, 0)
	filledOrders := make([]*order.Order, 0)

	drainedPrices := make([]fdecimal.Decimal, 0)

	for _, level := range opposite.Items() {
		if taker.IsClosed() || !level.isMatches(taker) {
			break
		}

		totalTraded := fdecimal.Zero
		filledCount := 0

		for _, makerID := range level.OrderIDs {
			maker, ok := ob.orders[makerID]
			if !ok {
				return nil, apperrors.ErrOrderMatchNotFound
			}

			quantity := taker.TradedQuantity(maker)

			if err := taker.Fill(quantity); err != nil {
				return nil, err
			}
			if err := maker.Fill(quantity); err != nil {
				return nil, err
			}

			tradeID := ob.tradeSeq.Next()
			tr, err := trade.New(tradeID, taker, maker, quantity)
			if err != nil {
				return nil, err
			}
			trades = append(trades, tr)

			totalTraded = totalTraded.Add(quantity)

			if err := maker.DecreaseFrozenAmount(quantity); err != nil {
				return nil, err
			}

			if maker.IsClosed() {
				filledCount++
				filledOrders = append(filledOrders, maker.Clone())
			}

			if taker.IsClosed() {
				break
			}
		}

		level.Quantity = level.Quantity.Sub(totalTraded)

		for i := 0; i < filledCount; i++ {
			if id, ok := level.popFrontOrderID(); ok {
				delete(ob.orders, id)
			}
		}

		if level.isDrained() {
			drainedPrices = append(drainedPrices, level.Price)
		}
	}

	for _, price := range drainedPrices {
		opposite.delete(price)
	}

	if !taker.IsClosed() && taker.IsBookable() {
		if err := taker.SetFrozenAmount(); err != nil {
			return nil, err
		}

		own := ob.sideFor(taker.Side)
		if err := ob.insert(own, taker); err != nil {
			return nil, err
		}
		ob.orders[taker.ID] = taker
	}

	return &MatchOutput{
		TakerOrder:   taker,
		FilledOrders: filledOrders,
		Trades:       trades,
	}, nil
}

func (ob *Orderbook) sideFor(side order.Side) *Side {
	if side == order.Ask {
		return ob.Asks
	}
	return ob.Bids
}

func (ob *Orderbook) insert(side *Side, o *order.Order) error {
	if !o.HasLimitPrice() {
		return apperrors.ErrOrderbookInsertWithNoLimitPrice
	}

	level, ok := side.get(o.LimitPrice)
	if !ok {
		level = newPriceLevel(o.LimitPrice)
		side.set(level)
	}
	level.insert(o)
	return nil
}

func (ob *Orderbook) remove(side *Side, o *order.Order) error {
	if !o.HasLimitPrice() {
		return apperrors.ErrOrderbookRemoveWithNoLimitPrice
	}

	level, ok := side.get(o.LimitPrice)
	if !ok {
		return apperrors.ErrOrderIDNotFound
	}

	level.remove(o)
	if level.isDrained() {
		side.delete(o.LimitPrice)
	}
	return nil
}

// Cancel removes a resting order from the book entirely. It does not
// touch balances — releasing escrow on cancel is the caller's job
// (market.Market.CancelOrder), per spec §9.
func (ob *Orderbook) Cancel(id order.ID) (*order.Order, error) {
	o, ok := ob.orders[id]
	if !ok {
		return nil, apperrors.ErrOrderIDNotFound
	}
	delete(ob.orders, id)

	side := ob.sideFor(o.Side)
	if err := ob.remove(side, o); err != nil {
		return nil, err
	}
	o.Status = order.Cancelled

	return o, nil
}

// AsksDepth returns aggregated ask-side depth, best first.
func (ob *Orderbook) AsksDepth() []DepthLevel { return ob.Asks.Depth() }

// BidsDepth returns aggregated bid-side depth, best first.
func (ob *Orderbook) BidsDepth() []DepthLevel { return ob.Bids.Depth() }
