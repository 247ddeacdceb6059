// Package subscription implements the market-data fan-out hub (SPEC_FULL
// §4.4), grounded on realmfikri-Limitless's generic hub[T] (server/hub.go)
// generalized with the snapshot+watermark handoff and drop-on-overflow
// LaggedOut termination the spec requires.
package subscription

import (
	eventv1 "github.com/driftline-labs/bourse/internal/domain/event/v1"
	protocolv1 "github.com/driftline-labs/bourse/internal/domain/protocol/v1"
	"github.com/driftline-labs/bourse/pkg/errors"
	"github.com/driftline-labs/bourse/pkg/logger"
)

// Sink is how the Hub delivers market-data frames to a transport-owned
// subscriber. Send returns false if the subscriber's outbound queue
// overflowed; the Hub responds by sending LaggedOut and dropping it.
type Sink interface {
	Send(frame protocolv1.MarketDataFrame) bool
}

type subscriber struct {
	sink Sink
}

// Hub fans out public events to every registered subscriber. It has
// exactly one caller — the Portal writer loop — so Join/Leave/Broadcast
// need no internal locking: the single-writer property that makes the
// snapshot+live handoff gap-free is the caller's, not the Hub's.
type Hub struct {
	subs map[string]*subscriber
	log  logger.Interface
}

// NewHub creates an empty subscription hub.
func NewHub(log logger.Interface) *Hub {
	return &Hub{subs: make(map[string]*subscriber), log: log}
}

// Join atomically (with respect to the caller, i.e. the Portal writer)
// replays history's current snapshot to sink and then registers it for
// live broadcast. Because both happen on the single writer goroutine, no
// event can be appended between the snapshot and registration: the
// subscriber sees every event exactly once, in order (SPEC_FULL §4.4).
//
// If sink overflows during replay itself, the subscriber is never
// registered for live events — a caller of this size of backlog gets
// treated the same as a caller too slow for the live stream.
func (h *Hub) Join(id string, sink Sink, history *eventv1.History) {
	events, _ := history.Snapshot()
	for _, ev := range events {
		if !sink.Send(toFrame(ev)) {
			h.log.Warn("subscriber lagged out during snapshot replay, dropping",
				logger.Field{Key: "subscriber_id", Value: id},
				logger.Field{Key: "code", Value: errors.EngineSubscriberLaggedOut})
			sink.Send(protocolv1.MarketDataFrame{LaggedOut: &protocolv1.LaggedOutFrame{}})
			return
		}
	}
	h.subs[id] = &subscriber{sink: sink}
}

// Leave removes a subscriber, e.g. on transport disconnect.
func (h *Hub) Leave(id string) {
	delete(h.subs, id)
}

// Broadcast delivers ev to every live subscriber, dropping (with a
// LaggedOut frame) any whose outbound queue is full.
func (h *Hub) Broadcast(ev eventv1.Event) {
	frame := toFrame(ev)
	for id, sub := range h.subs {
		if !sub.sink.Send(frame) {
			h.log.Warn("subscriber lagged out, dropping",
				logger.Field{Key: "subscriber_id", Value: id},
				logger.Field{Key: "code", Value: errors.EngineSubscriberLaggedOut})
			sub.sink.Send(protocolv1.MarketDataFrame{LaggedOut: &protocolv1.LaggedOutFrame{}})
			delete(h.subs, id)
		}
	}
}

func toFrame(ev eventv1.Event) protocolv1.MarketDataFrame {
	switch {
	case ev.Added != nil:
		a := ev.Added
		return protocolv1.MarketDataFrame{OrderAdded: &protocolv1.OrderAddedFrame{
			OrderID: a.OrderID, Ticker: a.Ticker, Direction: a.Direction,
			LimitPrice: a.LimitPrice, Size: a.Size,
		}}
	case ev.Executed != nil:
		x := ev.Executed
		return protocolv1.MarketDataFrame{OrderExecuted: &protocolv1.OrderExecutedFrame{
			OrderID: x.OrderID, Ticker: x.Ticker, ExecutionPrice: x.ExecutionPrice, ExecutionSize: x.ExecutionSize,
		}}
	case ev.Removed != nil:
		r := ev.Removed
		return protocolv1.MarketDataFrame{OrderRemoved: &protocolv1.OrderRemovedFrame{
			OrderID: r.OrderID, Ticker: r.Ticker,
		}}
	default:
		return protocolv1.MarketDataFrame{}
	}
}
