package errors

// RejectReason is the stable, client-facing rejection taxonomy for the
// order-entry stream. Unlike ErrorCode, which may grow freely for internal
// bookkeeping, RejectReason is part of the wire contract and must not change
// shape once published.
type RejectReason string

const (
	// ReasonUnknownInvestor is returned when Login names an unknown investor id.
	ReasonUnknownInvestor RejectReason = "UnknownInvestor"
	// ReasonBadPassword is returned when Login's password does not match.
	ReasonBadPassword RejectReason = "BadPassword"
	// ReasonAlreadyLoggedIn is returned when the investor already has an active session.
	ReasonAlreadyLoggedIn RejectReason = "AlreadyLoggedIn"

	// ReasonNotLoggedIn is returned when a request requires a session that isn't bound.
	ReasonNotLoggedIn RejectReason = "NotLoggedIn"
	// ReasonUnknownTicker is returned when NewOrder names a ticker absent from StockRegistry.
	ReasonUnknownTicker RejectReason = "UnknownTicker"
	// ReasonBadSize is returned when size is non-positive or not a lot multiple.
	ReasonBadSize RejectReason = "BadSize"
	// ReasonBadPrice is returned when a Limit price is non-positive or not an mpf multiple.
	ReasonBadPrice RejectReason = "BadPrice"
	// ReasonInsufficientCash is returned when a Buy order's pre-trade cash check fails.
	ReasonInsufficientCash RejectReason = "InsufficientCash"
	// ReasonInsufficientPosition is returned when a Sell order's pre-trade position check fails.
	ReasonInsufficientPosition RejectReason = "InsufficientPosition"

	// ReasonNotYours is returned when CancelOrder targets another investor's order.
	ReasonNotYours RejectReason = "NotYours"
	// ReasonUnknownOrTerminal is returned when CancelOrder targets a non-resident order.
	ReasonUnknownOrTerminal RejectReason = "UnknownOrTerminal"
)

// RejectError is a local, non-fatal rejection surfaced to a single request's
// originating session. It never wraps a StackTracer: by the time a request
// reaches a RejectError it has already been judged ordinary and expected.
type RejectError struct {
	Reason RejectReason
}

// NewRejectError creates a RejectError for the given reason.
func NewRejectError(reason RejectReason) *RejectError {
	return &RejectError{Reason: reason}
}

func (e *RejectError) Error() string {
	return string(e.Reason)
}
