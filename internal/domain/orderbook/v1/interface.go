package orderbookv1

// Book is the per-ticker price-time priority matching engine (SPEC_FULL
// §4.1). It has exactly one caller: the Portal writer loop, so it carries
// no internal locking — ordering is guaranteed by the caller being the sole
// writer.
type Book interface {
	// Submit matches order against the opposite side and, if it survives
	// matching per its Kind/TIF, rests it on its own side. Returns the
	// ordered log of everything that happened.
	Submit(order *Order) []LogEntry

	// Cancel removes a resident order and returns its Removed{Cancelled}
	// log entry, or ok=false if the order is not resident in this book.
	Cancel(orderID uint64) (LogEntry, bool)

	// BestBid and BestAsk return the top of book, or nil if that side is empty.
	BestBid() *Level
	BestAsk() *Level

	// Locate returns the resident order with orderID, for invariant checks
	// and snapshots; ok is false if the order isn't resident here. The order's
	// level is available through its RestingLevel method.
	Locate(orderID uint64) (*Order, bool)

	// WalkCost computes the cost of filling size against the opposite side
	// of dir's book without mutating any state, and how much of size the
	// current resting liquidity can actually cover. Used for a Market Buy's
	// pre-trade cash reservation (SPEC_FULL §4.2, §12.3).
	WalkCost(dir Direction, size uint32) (cost float32, filled uint32)
}
