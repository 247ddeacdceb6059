// Package orderinfov1 is the authoritative mapping from engine-assigned
// order id to its owning investor and ticker (SPEC_FULL §2, §3), grounded
// on original_source/src/portal/order_info.rs — but, per the spec's own
// invariant, the binding is released on terminal rather than left to
// accumulate forever as the original does.
package orderinfov1

import orderbookv1 "github.com/driftline-labs/bourse/internal/domain/orderbook/v1"

// Record is the static identifying metadata bound to an order at birth.
type Record struct {
	InvestorID  uint64
	Ticker      string
	Direction   orderbookv1.Direction
	LimitPrice  float32
	OrderKind   orderbookv1.Kind
	OriginalQty uint32
	// ReservedUnitPrice is the per-unit cash/position reservation basis
	// recorded at acceptance (SPEC_FULL §12.2), needed to true up on each
	// fill and to release on terminal.
	ReservedUnitPrice float32
	// FilledSoFar accumulates size filled across every Executed log entry
	// this order has been party to, so applyTerminal can compute the
	// reservation still owed back on release.
	FilledSoFar uint32
	// WasAdded is set once the order has been publicly Added to the book.
	// An order that fully fills or dies as an IOC leftover without ever
	// resting never flips this, so its terminal Removed stays private.
	WasAdded bool
}

// Store is the order id -> Record mapping. Populated at order birth,
// removed only when the order becomes terminal (SPEC_FULL §3 "Lifecycles").
type Store struct {
	records map[uint64]Record
}

// NewStore creates an empty OrderInfo store.
func NewStore() *Store {
	return &Store{records: make(map[uint64]Record)}
}

// Bind records a newly accepted order's static metadata.
func (s *Store) Bind(orderID uint64, rec Record) {
	s.records[orderID] = rec
}

// Lookup returns the record for orderID, if it is still bound (i.e. the
// order has not yet reached a terminal state).
func (s *Store) Lookup(orderID uint64) (Record, bool) {
	rec, ok := s.records[orderID]
	return rec, ok
}

// RecordFill accumulates size into orderID's FilledSoFar. Called once per
// Executed log entry the order is party to, before any later terminal
// Removed entry for the same order is processed.
func (s *Store) RecordFill(orderID uint64, size uint32) {
	rec, ok := s.records[orderID]
	if !ok {
		return
	}
	rec.FilledSoFar += size
	s.records[orderID] = rec
}

// MarkAdded flips orderID's WasAdded flag, called when the book's Added log
// entry for it is processed.
func (s *Store) MarkAdded(orderID uint64) {
	rec, ok := s.records[orderID]
	if !ok {
		return
	}
	rec.WasAdded = true
	s.records[orderID] = rec
}

// Release removes orderID's binding. Called on every terminal log entry
// (FullyFilled, IocLeftover, Cancelled) — the invariant this spec adds over
// the original source, which never releases bindings.
func (s *Store) Release(orderID uint64) {
	delete(s.records, orderID)
}
