// Package book is the orderbook's heart: two price-ordered sides plus an
// order index, and the price-time matching loop (spec §3, §4.2, §4.3).
package book

import (
	fdecimal "github.com/fenrir-exchange/fenrir/internal/decimal"
	"github.com/fenrir-exchange/fenrir/internal/order"
)

// PriceLevel is one price point on one side of the book: a FIFO queue of
// resting order ids (arrival order = time priority) plus the aggregate
// remaining quantity of its members.
type PriceLevel struct {
	Price     fdecimal.Decimal
	OrderIDs  []order.ID
	Quantity  fdecimal.Decimal
}

func newPriceLevel(price fdecimal.Decimal) *PriceLevel {
	return &PriceLevel{
		Price:    price,
		OrderIDs: make([]order.ID, 0, 4),
		Quantity: fdecimal.Zero,
	}
}

// insert appends o's id to the back of the queue and adds its remaining
// quantity to the level total.
func (l *PriceLevel) insert(o *order.Order) {
	l.Quantity = l.Quantity.Add(o.Remaining())
	l.OrderIDs = append(l.OrderIDs, o.ID)
}

// remove drops o's id from the queue (linear search) and subtracts its
// remaining quantity from the level total. Used by cancel.
func (l *PriceLevel) remove(o *order.Order) {
	l.Quantity = l.Quantity.Sub(o.Remaining())

	for i, id := range l.OrderIDs {
		if id == o.ID {
			l.OrderIDs = append(l.OrderIDs[:i], l.OrderIDs[i+1:]...)
			return
		}
	}
}

// popFrontOrderID consumes the oldest resting order id at this level,
// enforcing time priority within the level.
func (l *PriceLevel) popFrontOrderID() (order.ID, bool) {
	if len(l.OrderIDs) == 0 {
		return 0, false
	}
	id := l.OrderIDs[0]
	l.OrderIDs = l.OrderIDs[1:]
	return id, true
}

// isDrained reports whether the level has no remaining quantity and no
// member orders, meaning it should be torn down.
func (l *PriceLevel) isDrained() bool {
	return l.Quantity.IsZero() && len(l.OrderIDs) == 0
}

// isMatches reports whether taker can cross this level: false if the
// level or the taker is already closed, otherwise true if taker's limit
// price (if any) crosses the level's price. A market taker always
// matches while levels remain.
func (l *PriceLevel) isMatches(taker *order.Order) bool {
	if l.Quantity.IsZero() || taker.IsClosed() {
		return false
	}

	if !taker.HasLimitPrice() {
		return true
	}

	switch taker.Side {
	case order.Ask:
		return taker.LimitPrice.LessThanOrEqual(l.Price)
	default: // order.Bid
		return taker.LimitPrice.GreaterThanOrEqual(l.Price)
	}
}
