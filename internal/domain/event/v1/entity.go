// Package eventv1 is the public projection of book log entries
// (SPEC_FULL §3 "Event history record") and the append-only ledger
// SubscriptionHub replays from, grounded on
// original_source/src/portal/event_history.rs generalized with the
// watermark handoff SPEC_FULL §4.3/§4.4 require.
package eventv1

import orderbookv1 "github.com/driftline-labs/bourse/internal/domain/orderbook/v1"

// Event is the public, wire-facing projection of a book log entry. Unlike
// the internal LogEntry, OrderExecuted carries only the resting order id —
// aggressor identity is never exposed publicly (SPEC_FULL §9).
type Event struct {
	Added    *OrderAdded
	Executed *OrderExecuted
	Removed  *OrderRemoved
}

// OrderAdded announces a Limit Day order taking up residence.
type OrderAdded struct {
	OrderID    uint64
	Ticker     string
	Direction  orderbookv1.Direction
	LimitPrice float32
	Size       uint32
}

// OrderExecuted announces one fill, identified by the resting order only.
type OrderExecuted struct {
	OrderID        uint64
	Ticker         string
	ExecutionPrice float32
	ExecutionSize  uint32
}

// OrderRemoved announces an order leaving the book, terminally, for any reason.
type OrderRemoved struct {
	OrderID uint64
	Ticker  string
}

// History is the in-memory ledger of public events emitted by the Portal.
// It has exactly one writer (the Portal) and is read either via Snapshot
// (for a new subscriber's historical replay) or by watching the writer's
// own append calls live.
type History struct {
	events    []Event
	retention int    // 0 means unbounded
	dropped   uint64 // events discarded by retention so far
}

// NewHistory creates an empty event history that keeps at most retention
// events, discarding the oldest once that bound is exceeded. retention <= 0
// means unbounded.
func NewHistory(retention int) *History {
	return &History{retention: retention}
}

// Append records a new public event. Called by the Portal on every public
// event it produces, in book-mutation order. Once more than retention
// events have accumulated, the oldest are dropped — a newly-joining
// subscriber's snapshot replay only reaches as far back as retention allows.
func (h *History) Append(e Event) {
	h.events = append(h.events, e)
	if h.retention > 0 && len(h.events) > h.retention {
		drop := len(h.events) - h.retention
		h.dropped += uint64(drop)
		h.events = h.events[drop:]
	}
}

// Snapshot returns every event still retained, and the watermark: the
// next-unused index (counting events already dropped by retention), which is
// also the index the next Append will use. The returned slice is a copy,
// safe to read after further Appends.
func (h *History) Snapshot() ([]Event, uint64) {
	out := make([]Event, len(h.events))
	copy(out, h.events)
	return out, h.dropped + uint64(len(h.events))
}
