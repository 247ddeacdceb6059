package orderbook

import (
	"fmt"
	"testing"

	"pgregory.net/rapid"

	orderbookv1 "github.com/driftline-labs/bourse/internal/domain/orderbook/v1"
)

// TestBook_NeverCrossesAndConservesVolume runs randomized sequences of
// limit, market and cancel actions through a single ticker's book and
// checks, after every action, that the book never ends up crossed and
// that every order's filled size plus its remaining size always equals
// what it was originally submitted with.
func TestBook_NeverCrossesAndConservesVolume(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		b := New("ACME")

		filled := make(map[uint64]uint32)
		orders := make(map[uint64]*orderbookv1.Order)
		var nextID uint64
		var seq uint64

		steps := rapid.IntRange(1, 40).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			switch rapid.IntRange(0, 2).Draw(t, fmt.Sprintf("action-%d", i)) {
			case 0:
				nextID++
				dir := orderbookv1.Buy
				if rapid.Bool().Draw(t, fmt.Sprintf("sell-%d", i)) {
					dir = orderbookv1.Sell
				}
				size := uint32(rapid.IntRange(1, 50).Draw(t, fmt.Sprintf("size-%d", i)))
				price := float32(rapid.IntRange(1, 20).Draw(t, fmt.Sprintf("price-%d", i)))
				order := &orderbookv1.Order{
					ID: nextID, Ticker: "ACME", Direction: dir, Kind: orderbookv1.KindLimit,
					TIF: orderbookv1.Day, LimitPrice: price, Original: size, Remaining: size, Sequence: seq,
				}
				seq++
				orders[order.ID] = order
				recordFills(filled, b.Submit(order))
			case 1:
				nextID++
				dir := orderbookv1.Buy
				if rapid.Bool().Draw(t, fmt.Sprintf("msell-%d", i)) {
					dir = orderbookv1.Sell
				}
				size := uint32(rapid.IntRange(1, 50).Draw(t, fmt.Sprintf("msize-%d", i)))
				order := &orderbookv1.Order{
					ID: nextID, Ticker: "ACME", Direction: dir, Kind: orderbookv1.KindMarket,
					TIF: orderbookv1.IOC, Original: size, Remaining: size, Sequence: seq,
				}
				seq++
				orders[order.ID] = order
				recordFills(filled, b.Submit(order))
			case 2:
				if len(orders) == 0 {
					continue
				}
				ids := make([]uint64, 0, len(orders))
				for id := range orders {
					ids = append(ids, id)
				}
				idx := rapid.IntRange(0, len(ids)-1).Draw(t, fmt.Sprintf("cancelIdx-%d", i))
				b.Cancel(ids[idx])
			}

			requireUncrossed(t, b)
			for id, order := range orders {
				if order.Remaining+filled[id] != order.Original {
					t.Fatalf("order %d: remaining(%d) + filled(%d) != original(%d)",
						id, order.Remaining, filled[id], order.Original)
				}
			}
		}
	})
}

func recordFills(filled map[uint64]uint32, log []orderbookv1.LogEntry) {
	for _, entry := range log {
		if entry.Executed == nil {
			continue
		}
		filled[entry.Executed.RestingOrderID] += entry.Executed.Size
		filled[entry.Executed.AggressorOrderID] += entry.Executed.Size
	}
}

func requireUncrossed(t *rapid.T, b orderbookv1.Book) {
	bid := b.BestBid()
	ask := b.BestAsk()
	if bid == nil || ask == nil {
		return
	}
	if bid.Price >= ask.Price {
		t.Fatalf("book crossed: bestBid=%v bestAsk=%v", bid.Price, ask.Price)
	}
}
