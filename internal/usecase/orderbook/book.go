// Package orderbook implements the per-ticker matching engine described in
// SPEC_FULL §4.1, grounded on the teacher's map-of-price-levels Orderbook
// (services/matching-engine/internal/usecase/orderbook) but adding the
// crossing logic that implementation never performed for Limit orders: the
// teacher's PlaceLimitOrder only ever rests an order, leaving matching to a
// separate PlaceMarketOrder path. The spec requires Limit orders to cross
// the opposite side first; that loop is original to this package.
package orderbook

import (
	"sort"

	orderbookv1 "github.com/driftline-labs/bourse/internal/domain/orderbook/v1"
)

// book is the concrete per-ticker price-time priority matching engine.
type book struct {
	ticker string
	bids   map[uint32]*orderbookv1.Level // keyed by PriceKey(price)
	asks   map[uint32]*orderbookv1.Level
	orders map[uint64]*orderbookv1.Order
}

// New creates an empty book for ticker.
func New(ticker string) orderbookv1.Book {
	return &book{
		ticker: ticker,
		bids:   make(map[uint32]*orderbookv1.Level),
		asks:   make(map[uint32]*orderbookv1.Level),
		orders: make(map[uint64]*orderbookv1.Order),
	}
}

func (b *book) levels(dir orderbookv1.Direction) map[uint32]*orderbookv1.Level {
	if dir == orderbookv1.Buy {
		return b.bids
	}
	return b.asks
}

// sortedLevels returns the opposite side's levels ordered best-price-first:
// ascending for asks (a buy aggressor wants the lowest ask), descending for
// bids (a sell aggressor wants the highest bid).
func (b *book) sortedLevels(aggressorDir orderbookv1.Direction) []*orderbookv1.Level {
	opposite := b.levels(aggressorDir.Opposite())
	out := make([]*orderbookv1.Level, 0, len(opposite))
	for _, lvl := range opposite {
		out = append(out, lvl)
	}
	if aggressorDir == orderbookv1.Buy {
		sort.Slice(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	} else {
		sort.Slice(out, func(i, j int) bool { return out[i].Price > out[j].Price })
	}
	return out
}

// crosses reports whether a Limit aggressor's price crosses levelPrice.
// Market orders cross any level unconditionally.
func crosses(order *orderbookv1.Order, levelPrice float32) bool {
	if order.Kind == orderbookv1.KindMarket {
		return true
	}
	if order.Direction == orderbookv1.Buy {
		return levelPrice <= order.LimitPrice
	}
	return levelPrice >= order.LimitPrice
}

// Submit implements orderbookv1.Book.
func (b *book) Submit(order *orderbookv1.Order) []orderbookv1.LogEntry {
	var log []orderbookv1.LogEntry

	for _, level := range b.sortedLevels(order.Direction) {
		if order.Remaining == 0 {
			break
		}
		if !crosses(order, level.Price) {
			break
		}

		for order.Remaining > 0 {
			resting := level.Front()
			if resting == nil {
				break
			}

			filled := order.Remaining
			if resting.Remaining < filled {
				filled = resting.Remaining
			}
			order.Remaining -= filled
			resting.Remaining -= filled
			level.TotalVolume -= uint64(filled)

			log = append(log, orderbookv1.LogEntry{Executed: &orderbookv1.Executed{
				RestingOrderID:   resting.ID,
				AggressorOrderID: order.ID,
				Price:            level.Price,
				Size:             filled,
			}})

			if resting.Remaining == 0 {
				level.PopFront()
				delete(b.orders, resting.ID)
				log = append(log, orderbookv1.LogEntry{Removed: &orderbookv1.Removed{
					OrderID: resting.ID,
					Reason:  orderbookv1.FullyFilled,
				}})
			}
		}

		if level.IsEmpty() {
			delete(b.levels(order.Direction.Opposite()), orderbookv1.PriceKey(level.Price))
		}
	}

	switch {
	case order.Remaining == 0:
		log = append(log, orderbookv1.LogEntry{Removed: &orderbookv1.Removed{
			OrderID: order.ID,
			Reason:  orderbookv1.FullyFilled,
		}})
	case order.Kind == orderbookv1.KindLimit && order.TIF == orderbookv1.Day:
		b.rest(order)
		log = append(log, orderbookv1.LogEntry{Added: &orderbookv1.Added{
			OrderID:   order.ID,
			Direction: order.Direction,
			Price:     order.LimitPrice,
			Size:      order.Remaining,
		}})
	default:
		// Limit+IOC residual>0, or Market (any TIF) residual>0: never rests.
		log = append(log, orderbookv1.LogEntry{Removed: &orderbookv1.Removed{
			OrderID: order.ID,
			Reason:  orderbookv1.IocLeftover,
		}})
	}

	return log
}

func (b *book) rest(order *orderbookv1.Order) {
	own := b.levels(order.Direction)
	key := orderbookv1.PriceKey(order.LimitPrice)
	level, ok := own[key]
	if !ok {
		level = orderbookv1.NewLevel(order.LimitPrice)
		own[key] = level
	}
	level.PushBack(order)
	b.orders[order.ID] = order
}

// Cancel implements orderbookv1.Book.
func (b *book) Cancel(orderID uint64) (orderbookv1.LogEntry, bool) {
	order, ok := b.orders[orderID]
	if !ok || !order.IsResident() {
		return orderbookv1.LogEntry{}, false
	}

	level := order.RestingLevel()
	level.Remove(order)
	if level.IsEmpty() {
		delete(b.levels(order.Direction), orderbookv1.PriceKey(level.Price))
	}
	delete(b.orders, orderID)

	return orderbookv1.LogEntry{Removed: &orderbookv1.Removed{
		OrderID: orderID,
		Reason:  orderbookv1.Cancelled,
	}}, true
}

// BestBid implements orderbookv1.Book.
func (b *book) BestBid() *orderbookv1.Level {
	return bestOf(b.bids, func(a, c float32) bool { return a > c })
}

// BestAsk implements orderbookv1.Book.
func (b *book) BestAsk() *orderbookv1.Level {
	return bestOf(b.asks, func(a, c float32) bool { return a < c })
}

func bestOf(levels map[uint32]*orderbookv1.Level, better func(a, b float32) bool) *orderbookv1.Level {
	var best *orderbookv1.Level
	for _, lvl := range levels {
		if lvl.IsEmpty() {
			continue
		}
		if best == nil || better(lvl.Price, best.Price) {
			best = lvl
		}
	}
	return best
}

// Locate implements orderbookv1.Book.
func (b *book) Locate(orderID uint64) (*orderbookv1.Order, bool) {
	order, ok := b.orders[orderID]
	if !ok {
		return nil, false
	}
	return order, true
}

// WalkCost implements orderbookv1.Book.
func (b *book) WalkCost(dir orderbookv1.Direction, size uint32) (cost float32, filled uint32) {
	remaining := size
	for _, level := range b.sortedLevels(dir) {
		if remaining == 0 {
			break
		}
		avail := uint32(level.TotalVolume)
		take := remaining
		if avail < take {
			take = avail
		}
		cost += level.Price * float32(take)
		remaining -= take
		filled += take
	}
	return cost, filled
}
