package orderbook

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	orderbookv1 "github.com/driftline-labs/bourse/internal/domain/orderbook/v1"
)

func limitOrder(id uint64, dir orderbookv1.Direction, price float32, size uint32, seq uint64) *orderbookv1.Order {
	return &orderbookv1.Order{
		ID: id, Ticker: "ACME", Direction: dir, Kind: orderbookv1.KindLimit,
		TIF: orderbookv1.Day, LimitPrice: price, Original: size, Remaining: size, Sequence: seq,
	}
}

func marketOrder(id uint64, dir orderbookv1.Direction, size uint32, seq uint64) *orderbookv1.Order {
	return &orderbookv1.Order{
		ID: id, Ticker: "ACME", Direction: dir, Kind: orderbookv1.KindMarket,
		TIF: orderbookv1.IOC, Original: size, Remaining: size, Sequence: seq,
	}
}

func TestBook_RestsWhenNoCross(t *testing.T) {
	b := New("ACME")

	log := b.Submit(limitOrder(1, orderbookv1.Buy, 10.0, 100, 0))

	require.Len(t, log, 1)
	require.NotNil(t, log[0].Added)
	assert.Equal(t, uint64(1), log[0].Added.OrderID)

	bid := b.BestBid()
	require.NotNil(t, bid)
	assert.Equal(t, float32(10.0), bid.Price)
	assert.Equal(t, uint64(100), bid.TotalVolume)
}

func TestBook_LimitCrossesAndFullyFills(t *testing.T) {
	b := New("ACME")
	b.Submit(limitOrder(1, orderbookv1.Sell, 10.0, 100, 0))

	log := b.Submit(limitOrder(2, orderbookv1.Buy, 10.0, 100, 1))

	require.Len(t, log, 3)
	require.NotNil(t, log[0].Executed)
	assert.Equal(t, uint64(1), log[0].Executed.RestingOrderID)
	assert.Equal(t, uint64(2), log[0].Executed.AggressorOrderID)
	assert.Equal(t, float32(10.0), log[0].Executed.Price)
	assert.Equal(t, uint32(100), log[0].Executed.Size)

	require.NotNil(t, log[1].Removed)
	assert.Equal(t, uint64(1), log[1].Removed.OrderID)
	assert.Equal(t, orderbookv1.FullyFilled, log[1].Removed.Reason)

	require.NotNil(t, log[2].Removed)
	assert.Equal(t, uint64(2), log[2].Removed.OrderID)
	assert.Equal(t, orderbookv1.FullyFilled, log[2].Removed.Reason)

	assert.Nil(t, b.BestAsk())
}

func TestBook_TradesAtRestingPrice_PriceImprovement(t *testing.T) {
	b := New("ACME")
	b.Submit(limitOrder(1, orderbookv1.Sell, 9.50, 100, 0))

	log := b.Submit(limitOrder(2, orderbookv1.Buy, 10.0, 100, 1))

	require.NotNil(t, log[0].Executed)
	assert.Equal(t, float32(9.50), log[0].Executed.Price, "trade price must be the resting order's price")
}

func TestBook_PriceTimePriority(t *testing.T) {
	b := New("ACME")
	b.Submit(limitOrder(1, orderbookv1.Sell, 10.0, 50, 0))
	b.Submit(limitOrder(2, orderbookv1.Sell, 10.0, 50, 1))

	log := b.Submit(limitOrder(3, orderbookv1.Buy, 10.0, 60, 2))

	require.Len(t, log, 4)
	require.NotNil(t, log[0].Executed)
	assert.Equal(t, uint64(1), log[0].Executed.RestingOrderID, "earlier order at same price fills first")
	assert.Equal(t, uint32(50), log[0].Executed.Size)

	require.NotNil(t, log[1].Removed)
	assert.Equal(t, uint64(1), log[1].Removed.OrderID)

	require.NotNil(t, log[2].Executed)
	assert.Equal(t, uint64(2), log[2].Executed.RestingOrderID)
	assert.Equal(t, uint32(10), log[2].Executed.Size)

	require.NotNil(t, log[3].Removed)
	assert.Equal(t, uint64(3), log[3].Removed.OrderID)

	ask := b.BestAsk()
	require.NotNil(t, ask)
	assert.Equal(t, uint64(40), ask.TotalVolume)
}

func TestBook_PartialFillLeavesResidualResting(t *testing.T) {
	b := New("ACME")
	b.Submit(limitOrder(1, orderbookv1.Sell, 10.0, 30, 0))

	log := b.Submit(limitOrder(2, orderbookv1.Buy, 10.0, 100, 1))

	require.Len(t, log, 3)
	require.NotNil(t, log[0].Executed)
	require.NotNil(t, log[1].Removed)
	assert.Equal(t, uint64(1), log[1].Removed.OrderID)
	require.NotNil(t, log[2].Added)
	assert.Equal(t, uint64(2), log[2].Added.OrderID)
	assert.Equal(t, uint32(70), log[2].Added.Size)
}

func TestBook_IOCLimitDiesWithoutResting(t *testing.T) {
	b := New("ACME")
	order := limitOrder(1, orderbookv1.Buy, 10.0, 100, 0)
	order.TIF = orderbookv1.IOC

	log := b.Submit(order)

	require.Len(t, log, 1)
	require.NotNil(t, log[0].Removed)
	assert.Equal(t, orderbookv1.IocLeftover, log[0].Removed.Reason)
	assert.Nil(t, b.BestBid())
}

func TestBook_MarketOrderNeverRests(t *testing.T) {
	b := New("ACME")
	b.Submit(limitOrder(1, orderbookv1.Sell, 10.0, 40, 0))

	log := b.Submit(marketOrder(2, orderbookv1.Buy, 100, 1))

	require.Len(t, log, 3)
	require.NotNil(t, log[0].Executed)
	assert.Equal(t, uint32(40), log[0].Executed.Size)
	require.NotNil(t, log[2].Removed)
	assert.Equal(t, uint64(2), log[2].Removed.OrderID)
	assert.Equal(t, orderbookv1.IocLeftover, log[2].Removed.Reason)
}

func TestBook_MarketOrderCrossesAnyRestingPrice(t *testing.T) {
	b := New("ACME")
	b.Submit(limitOrder(1, orderbookv1.Sell, 1000000.0, 10, 0))

	log := b.Submit(marketOrder(2, orderbookv1.Buy, 10, 1))

	require.Len(t, log, 3)
	require.NotNil(t, log[0].Executed, "market orders cross any resting price")
	assert.Equal(t, uint32(10), log[0].Executed.Size)
}

func TestBook_CancelRemovesResidentOrder(t *testing.T) {
	b := New("ACME")
	b.Submit(limitOrder(1, orderbookv1.Buy, 10.0, 100, 0))

	entry, ok := b.Cancel(1)
	require.True(t, ok)
	require.NotNil(t, entry.Removed)
	assert.Equal(t, orderbookv1.Cancelled, entry.Removed.Reason)
	assert.Nil(t, b.BestBid())

	_, ok = b.Cancel(1)
	assert.False(t, ok, "cancelling a non-resident order id fails")
}

func TestBook_WalkCost(t *testing.T) {
	b := New("ACME")
	b.Submit(limitOrder(1, orderbookv1.Sell, 10.0, 50, 0))
	b.Submit(limitOrder(2, orderbookv1.Sell, 11.0, 50, 1))

	t.Run("fully covered by resting liquidity", func(t *testing.T) {
		cost, filled := b.WalkCost(orderbookv1.Buy, 75)
		assert.Equal(t, uint32(75), filled)
		assert.Equal(t, float32(50*10.0+25*11.0), cost)
	})

	t.Run("more than available liquidity", func(t *testing.T) {
		cost, filled := b.WalkCost(orderbookv1.Buy, 200)
		assert.Equal(t, uint32(100), filled)
		assert.Equal(t, float32(50*10.0+50*11.0), cost)
	})
}

func TestBook_Locate(t *testing.T) {
	b := New("ACME")
	b.Submit(limitOrder(1, orderbookv1.Buy, 10.0, 100, 0))

	order, ok := b.Locate(1)
	require.True(t, ok)
	assert.Equal(t, uint64(1), order.ID)

	_, ok = b.Locate(2)
	assert.False(t, ok)
}
