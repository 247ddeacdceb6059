// Package protocolv1 defines the wire schema for the two bidirectional
// streams (SPEC_FULL §6): order-entry and market-data. The spec treats the
// transport carrying these frames as an external collaborator — this
// package is the transport-agnostic message shape; internal/transport/ws
// is the concrete collaborator that serializes it over websockets as JSON.
package protocolv1

import (
	orderbookv1 "github.com/driftline-labs/bourse/internal/domain/orderbook/v1"
	"github.com/driftline-labs/bourse/pkg/errors"
)

// Request is the tagged union of frames a client sends on the order-entry
// stream. Exactly one field is non-nil.
type Request struct {
	Login       *LoginRequest       `json:"login,omitempty"`
	NewOrder    *NewOrderRequest    `json:"newOrder,omitempty"`
	CancelOrder *CancelOrderRequest `json:"cancelOrder,omitempty"`
}

// LoginRequest authenticates a session to an investor id.
type LoginRequest struct {
	Seqnum     uint64 `json:"seqnum"`
	InvestorID uint64 `json:"investorId"`
	Password   string `json:"password"`
}

// NewOrderRequest submits a new order for matching.
type NewOrderRequest struct {
	Seqnum    uint64                `json:"seqnum"`
	Ticker    string                `json:"ticker"`
	Direction orderbookv1.Direction `json:"direction"`
	Size      uint32                `json:"size"`
	Price     float32               `json:"price"`
	Kind      orderbookv1.Kind      `json:"kind"`
	TIF       orderbookv1.TimeInForce `json:"tif"`
}

// CancelOrderRequest cancels a previously accepted resident order.
type CancelOrderRequest struct {
	Seqnum  uint64 `json:"seqnum"`
	OrderID uint64 `json:"orderId"`
}

// Response is the tagged union of frames the server sends back on the
// order-entry stream. Exactly one field is non-nil.
type Response struct {
	LoginAck  *LoginAck  `json:"loginAck,omitempty"`
	LoginRej  *LoginRej  `json:"loginRej,omitempty"`
	OrderAck  *OrderAck  `json:"orderAck,omitempty"`
	OrderRej  *OrderRej  `json:"orderRej,omitempty"`
	OrderFill *OrderFill `json:"orderFill,omitempty"`
	OrderDead *OrderDead `json:"orderDead,omitempty"`
	CancelRej *CancelRej `json:"cancelRej,omitempty"`
}

// LoginAck acknowledges a successful Login.
type LoginAck struct {
	Seqnum uint64 `json:"seqnum"`
}

// LoginRej rejects a Login with a stable reason.
type LoginRej struct {
	Seqnum uint64               `json:"seqnum"`
	Reason errors.RejectReason `json:"reason"`
}

// OrderAck acknowledges a NewOrder's acceptance, echoing the seqnum and
// carrying the engine-assigned order id.
type OrderAck struct {
	Seqnum  uint64 `json:"seqnum"`
	OrderID uint64 `json:"orderId"`
}

// OrderRej rejects a NewOrder with a stable reason.
type OrderRej struct {
	Seqnum uint64               `json:"seqnum"`
	Reason errors.RejectReason `json:"reason"`
}

// OrderFill notifies an owner (resting or aggressing) of one fill against
// their order. Fills carry the order id rather than a seqnum: one NewOrder
// may produce many fills.
type OrderFill struct {
	OrderID uint64  `json:"orderId"`
	Price   float32 `json:"price"`
	Size    uint32  `json:"size"`
}

// OrderDead notifies an owner that their order reached a terminal state:
// fully filled, IOC/market leftover died, or cancelled.
type OrderDead struct {
	OrderID uint64 `json:"orderId"`
}

// CancelRej rejects a CancelOrder with a stable reason.
type CancelRej struct {
	Seqnum uint64               `json:"seqnum"`
	Reason errors.RejectReason `json:"reason"`
}

// MarketDataFrame is the tagged union the market-data stream emits, in
// strict global sequence, historical then live, with no duplication at the
// seam (SPEC_FULL §4.4, §6).
type MarketDataFrame struct {
	OrderAdded    *OrderAddedFrame    `json:"orderAdded,omitempty"`
	OrderExecuted *OrderExecutedFrame `json:"orderExecuted,omitempty"`
	OrderRemoved  *OrderRemovedFrame  `json:"orderRemoved,omitempty"`
	// LaggedOut terminates the stream: the subscriber fell behind and was
	// dropped per the bounded-queue backpressure policy (SPEC_FULL §4.4, §5).
	LaggedOut *LaggedOutFrame `json:"laggedOut,omitempty"`
}

// OrderAddedFrame is the public projection of an order taking up residence.
type OrderAddedFrame struct {
	OrderID    uint64                `json:"orderId"`
	Ticker     string                `json:"ticker"`
	Direction  orderbookv1.Direction `json:"direction"`
	LimitPrice float32               `json:"limitPrice"`
	Size       uint32                `json:"size"`
}

// OrderExecutedFrame is the public projection of one fill, carrying only
// the resting order's id (SPEC_FULL §9).
type OrderExecutedFrame struct {
	OrderID        uint64  `json:"orderId"`
	Ticker         string  `json:"ticker"`
	ExecutionPrice float32 `json:"executionPrice"`
	ExecutionSize  uint32  `json:"executionSize"`
}

// OrderRemovedFrame is the public projection of an order leaving the book.
type OrderRemovedFrame struct {
	OrderID uint64 `json:"orderId"`
	Ticker  string `json:"ticker"`
}

// LaggedOutFrame is the terminal frame sent to a subscriber being dropped
// for falling too far behind.
type LaggedOutFrame struct{}
