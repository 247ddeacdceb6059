// Package portal implements the Portal: the single writer to all mutable
// shared state (SPEC_FULL §4.2, §5), grounded on the teacher's
// matching-service Engine (runOrderProcessor) cross-pollinated with
// Limitless's reqCh/bookRequest channel-actor idiom — every inbound event
// (order-entry frame, subscribe, disconnect) is a message sent over one
// channel to a single goroutine that is the only mutator of book, account,
// order-info and history state.
package portal

import (
	"context"
	"fmt"
	"sync"

	accountv1 "github.com/driftline-labs/bourse/internal/domain/account/v1"
	eventv1 "github.com/driftline-labs/bourse/internal/domain/event/v1"
	orderbookv1 "github.com/driftline-labs/bourse/internal/domain/orderbook/v1"
	orderinfov1 "github.com/driftline-labs/bourse/internal/domain/orderinfo/v1"
	protocolv1 "github.com/driftline-labs/bourse/internal/domain/protocol/v1"
	stockv1 "github.com/driftline-labs/bourse/internal/domain/stock/v1"
	"github.com/driftline-labs/bourse/internal/usecase/orderbook"
	"github.com/driftline-labs/bourse/internal/usecase/subscription"
	"github.com/driftline-labs/bourse/pkg/errors"
	"github.com/driftline-labs/bourse/pkg/logger"
)

//go:generate mockgen -source=portal.go -destination=mock/portal_mock.go -package=mock

// SessionSink is how the Engine delivers order-entry responses to a
// transport-owned session. Send returns false if the session's outbound
// queue overflowed; the Engine responds by dropping the session
// (SPEC_FULL §5: never stall the writer on a slow session).
type SessionSink interface {
	Send(resp protocolv1.Response) bool
}

// EventSink is the optional secondary public distribution channel
// (SPEC_FULL §11.5). Publish must never block the writer.
type EventSink interface {
	Publish(eventv1.Event)
}

type inboundKind int

const (
	kindFrame inboundKind = iota
	kindRegisterSession
	kindDisconnectSession
	kindSubscribe
	kindUnsubscribe
)

type inboundMsg struct {
	kind         inboundKind
	sessionID    string
	subscriberID string
	sink         SessionSink
	subSink      subscription.Sink
	req          *protocolv1.Request
}

// Engine is the Portal: the single-writer serializer described by
// SPEC_FULL §4.2/§5.
type Engine struct {
	log      *logger.Logger
	stocks   *stockv1.Registry
	accounts *accountv1.Registry
	orders   *orderinfov1.Store
	books    *orderbook.Registry
	history  *eventv1.History
	hub      *subscription.Hub
	sink     EventSink // nil disables the mirror

	inbound chan inboundMsg

	sessions        map[string]SessionSink
	sessionInvestor map[string]uint64

	nextOrderID uint64
	tickerSeq   map[string]uint64

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a Portal engine. queueDepth bounds the inbound request queue
// (SPEC_FULL §5's multi-producer, single-consumer queue). historyRetention
// bounds how many public events the in-memory EventHistory keeps for
// snapshot replay to newly-joining subscribers; 0 means unbounded.
func New(
	log *logger.Logger,
	stocks *stockv1.Registry,
	accounts *accountv1.Registry,
	sink EventSink,
	queueDepth int,
	historyRetention int,
) *Engine {
	return &Engine{
		log:             log,
		stocks:          stocks,
		accounts:        accounts,
		orders:          orderinfov1.NewStore(),
		books:           orderbook.NewRegistry(),
		history:         eventv1.NewHistory(historyRetention),
		hub:             subscription.NewHub(log),
		sink:            sink,
		inbound:         make(chan inboundMsg, queueDepth),
		sessions:        make(map[string]SessionSink),
		sessionInvestor: make(map[string]uint64),
		tickerSeq:       make(map[string]uint64),
	}
}

// Start launches the writer loop.
func (e *Engine) Start(ctx context.Context) {
	e.ctx, e.cancel = context.WithCancel(ctx)
	e.wg.Add(1)
	go e.run()
}

// Stop signals the writer loop to drain and exit, waiting up to ctx's
// deadline.
func (e *Engine) Stop(ctx context.Context) error {
	if e.cancel != nil {
		e.cancel()
	}
	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *Engine) run() {
	defer e.wg.Done()
	for {
		select {
		case <-e.ctx.Done():
			e.log.Info("writer loop shutting down")
			return
		case msg := <-e.inbound:
			e.dispatch(msg)
		}
	}
}

func (e *Engine) dispatch(msg inboundMsg) {
	switch msg.kind {
	case kindRegisterSession:
		e.sessions[msg.sessionID] = msg.sink
	case kindDisconnectSession:
		e.handleDisconnect(msg.sessionID)
	case kindSubscribe:
		e.hub.Join(msg.subscriberID, msg.subSink, e.history)
	case kindUnsubscribe:
		e.hub.Leave(msg.subscriberID)
	case kindFrame:
		e.handleFrame(msg.sessionID, msg.req)
	}
}

// --- public producer-side API (called from transport goroutines) ---

// RegisterSession binds sessionID to sink for outbound order-entry
// responses. Must be called before Submit for that session.
func (e *Engine) RegisterSession(sessionID string, sink SessionSink) {
	e.inbound <- inboundMsg{kind: kindRegisterSession, sessionID: sessionID, sink: sink}
}

// Disconnect tells the writer a session's transport has gone away. Any
// account binding is released; in-flight requests already queued for that
// session are still processed, their responses simply dropped (SPEC_FULL §5).
func (e *Engine) Disconnect(sessionID string) {
	e.inbound <- inboundMsg{kind: kindDisconnectSession, sessionID: sessionID}
}

// Submit enqueues a client frame for processing by the writer.
func (e *Engine) Submit(sessionID string, req *protocolv1.Request) {
	e.inbound <- inboundMsg{kind: kindFrame, sessionID: sessionID, req: req}
}

// Subscribe joins a market-data subscriber, atomically capturing the
// current EventHistory snapshot and handing off to live events
// (SPEC_FULL §4.4). The replay and registration happen inside the writer,
// so no event can be missed or duplicated at the seam.
func (e *Engine) Subscribe(subscriberID string, sink subscription.Sink) {
	e.inbound <- inboundMsg{kind: kindSubscribe, subscriberID: subscriberID, subSink: sink}
}

// Unsubscribe removes a market-data subscriber on transport disconnect.
func (e *Engine) Unsubscribe(subscriberID string) {
	e.inbound <- inboundMsg{kind: kindUnsubscribe, subscriberID: subscriberID}
}

// --- writer-internal handling (never called outside the writer goroutine) ---

func (e *Engine) handleDisconnect(sessionID string) {
	delete(e.sessions, sessionID)
	if investorID, ok := e.sessionInvestor[sessionID]; ok {
		e.accounts.ReleaseSession(investorID)
		delete(e.sessionInvestor, sessionID)
	}
}

func (e *Engine) handleFrame(sessionID string, req *protocolv1.Request) {
	switch {
	case req.Login != nil:
		e.handleLogin(sessionID, req.Login)
	case req.NewOrder != nil:
		e.handleNewOrder(sessionID, req.NewOrder)
	case req.CancelOrder != nil:
		e.handleCancelOrder(sessionID, req.CancelOrder)
	}
}

func (e *Engine) sendTo(sessionID string, resp protocolv1.Response) {
	sink, ok := e.sessions[sessionID]
	if !ok {
		return
	}
	if !sink.Send(resp) {
		e.log.Warn("session outbound queue overflowed, dropping session",
			logger.Field{Key: "session_id", Value: sessionID},
			logger.Field{Key: "code", Value: errors.EngineSessionOverflow})
		e.handleDisconnect(sessionID)
	}
}

func (e *Engine) sendToInvestor(investorID uint64, resp protocolv1.Response) {
	account, ok := e.accounts.Lookup(investorID)
	if !ok || account.State != accountv1.LoggedIn {
		return
	}
	e.sendTo(account.SessionID, resp)
}

func (e *Engine) publish(ev eventv1.Event) {
	e.history.Append(ev)
	e.hub.Broadcast(ev)
	if e.sink != nil {
		e.sink.Publish(ev)
	}
}

// --- Login ---

func (e *Engine) handleLogin(sessionID string, req *protocolv1.LoginRequest) {
	result := e.accounts.TryAcquireSession(req.InvestorID, req.Password, sessionID)
	switch result {
	case accountv1.AcquireOK:
		e.sessionInvestor[sessionID] = req.InvestorID
		e.sendTo(sessionID, protocolv1.Response{LoginAck: &protocolv1.LoginAck{Seqnum: req.Seqnum}})
	case accountv1.AcquireUnknownInvestor:
		e.rejectLogin(sessionID, req.Seqnum, errors.NewRejectError(errors.ReasonUnknownInvestor))
	case accountv1.AcquireBadPassword:
		e.rejectLogin(sessionID, req.Seqnum, errors.NewRejectError(errors.ReasonBadPassword))
	case accountv1.AcquireAlreadyLoggedIn:
		e.rejectLogin(sessionID, req.Seqnum, errors.NewRejectError(errors.ReasonAlreadyLoggedIn))
	}
}

func (e *Engine) rejectLogin(sessionID string, seqnum uint64, rejErr *errors.RejectError) {
	e.sendTo(sessionID, protocolv1.Response{LoginRej: &protocolv1.LoginRej{Seqnum: seqnum, Reason: rejErr.Reason}})
}

// --- NewOrder ---

// rejectOrder surfaces rejErr to the originating session as an OrderRej.
// rejErr never wraps a StackTracer: by construction it carries nothing but
// the stable RejectReason taxonomy, since an order rejection is expected,
// local and non-fatal.
func (e *Engine) rejectOrder(sessionID string, seqnum uint64, rejErr *errors.RejectError) {
	e.sendTo(sessionID, protocolv1.Response{OrderRej: &protocolv1.OrderRej{Seqnum: seqnum, Reason: rejErr.Reason}})
}

func (e *Engine) handleNewOrder(sessionID string, req *protocolv1.NewOrderRequest) {
	investorID, loggedIn := e.sessionInvestor[sessionID]
	if !loggedIn {
		e.rejectOrder(sessionID, req.Seqnum, errors.NewRejectError(errors.ReasonNotLoggedIn))
		return
	}
	if !e.stocks.Exists(req.Ticker) {
		e.rejectOrder(sessionID, req.Seqnum, errors.NewRejectError(errors.ReasonUnknownTicker))
		return
	}
	if !e.stocks.ValidSize(req.Ticker, req.Size) {
		e.rejectOrder(sessionID, req.Seqnum, errors.NewRejectError(errors.ReasonBadSize))
		return
	}
	if req.Kind == orderbookv1.KindLimit && !e.stocks.ValidPrice(req.Ticker, req.Price) {
		e.rejectOrder(sessionID, req.Seqnum, errors.NewRejectError(errors.ReasonBadPrice))
		return
	}

	account, _ := e.accounts.Lookup(investorID)
	book := e.books.Book(req.Ticker)

	var reservedUnit float32
	if req.Direction == orderbookv1.Buy {
		total, unit := e.buyReservation(book, req)
		if float64(total) > account.Cash {
			e.rejectOrder(sessionID, req.Seqnum, errors.NewRejectError(errors.ReasonInsufficientCash))
			return
		}
		account.Cash -= float64(total)
		reservedUnit = unit
	} else {
		if account.Position(req.Ticker) < int64(req.Size) {
			e.rejectOrder(sessionID, req.Seqnum, errors.NewRejectError(errors.ReasonInsufficientPosition))
			return
		}
		account.Positions[req.Ticker] -= int64(req.Size)
	}

	e.nextOrderID++
	orderID := e.nextOrderID
	seq := e.tickerSeq[req.Ticker]
	e.tickerSeq[req.Ticker]++

	order := &orderbookv1.Order{
		ID:         orderID,
		InvestorID: investorID,
		Ticker:     req.Ticker,
		Direction:  req.Direction,
		Kind:       req.Kind,
		TIF:        req.TIF,
		LimitPrice: req.Price,
		Original:   req.Size,
		Remaining:  req.Size,
		Sequence:   seq,
	}
	e.orders.Bind(orderID, orderinfov1.Record{
		InvestorID:        investorID,
		Ticker:            req.Ticker,
		Direction:         req.Direction,
		LimitPrice:        req.Price,
		OrderKind:         req.Kind,
		OriginalQty:       req.Size,
		ReservedUnitPrice: reservedUnit,
	})

	e.sendTo(sessionID, protocolv1.Response{OrderAck: &protocolv1.OrderAck{Seqnum: req.Seqnum, OrderID: orderID}})

	entries := book.Submit(order)
	for _, entry := range entries {
		e.applyLogEntry(req.Ticker, entry)
	}
	e.checkInvariants(req.Ticker, book)
}

// buyReservation computes the pre-trade cash reservation for a Buy order
// (SPEC_FULL §4.2, §12.3): Limit reserves price×size directly; Market walks
// the opposite side's liquidity, falling back to the ticker's close price
// for any size the current book can't cover.
func (e *Engine) buyReservation(book orderbookv1.Book, req *protocolv1.NewOrderRequest) (total, unit float32) {
	if req.Size == 0 {
		return 0, 0
	}
	if req.Kind == orderbookv1.KindLimit {
		return req.Price * float32(req.Size), req.Price
	}
	cost, filled := book.WalkCost(orderbookv1.Buy, req.Size)
	if filled < req.Size {
		remaining := req.Size - filled
		if closePrice, ok := e.stocks.ClosePrice(req.Ticker); ok {
			cost += closePrice * float32(remaining)
		}
	}
	return cost, cost / float32(req.Size)
}

// checkInvariants verifies the writer-loop invariants that must hold after
// every Submit (SPEC_FULL §10.2): the crossed-book invariant (best bid must
// never be at or above best ask once matching has settled). The
// corresponding non-negative-resting-size invariant needs no runtime check
// here, since Order.Remaining is unsigned and the matching loop only ever
// subtracts down to zero. A violation is unrecoverable: it means the
// crossing loop itself is broken, so it is wrapped in an ErrorTracer,
// logged, and the writer panics rather than continuing on corrupted state.
func (e *Engine) checkInvariants(ticker string, book orderbookv1.Book) {
	bid := book.BestBid()
	ask := book.BestAsk()
	if bid == nil || ask == nil {
		return
	}
	if bid.Price < ask.Price {
		return
	}

	tracer := errors.NewTracer("crossed book after matching settled").Wrap(
		fmt.Errorf("ticker=%s bestBid=%v bestAsk=%v", ticker, bid.Price, ask.Price),
	)
	e.log.Error(tracer, logger.Field{Key: "code", Value: errors.EngineInvariantViolation}, logger.Field{Key: "ticker", Value: ticker})
	panic(tracer)
}

// applyLogEntry applies one book log entry's side effects: account
// true-ups, OrderInfo release, and the public event (SPEC_FULL §4.2). The
// submitter's OrderAck is sent at acceptance, before Submit is even called,
// so it never depends on what the book log contains.
func (e *Engine) applyLogEntry(ticker string, entry orderbookv1.LogEntry) {
	switch {
	case entry.Added != nil:
		a := entry.Added
		e.orders.MarkAdded(a.OrderID)
		e.publish(eventv1.Event{Added: &eventv1.OrderAdded{
			OrderID: a.OrderID, Ticker: ticker, Direction: a.Direction, LimitPrice: a.Price, Size: a.Size,
		}})

	case entry.Executed != nil:
		ex := entry.Executed
		e.applyFill(ticker, ex.RestingOrderID, ex.Price, ex.Size)
		e.applyFill(ticker, ex.AggressorOrderID, ex.Price, ex.Size)
		e.publish(eventv1.Event{Executed: &eventv1.OrderExecuted{
			OrderID: ex.RestingOrderID, Ticker: ticker, ExecutionPrice: ex.Price, ExecutionSize: ex.Size,
		}})

	case entry.Removed != nil:
		e.applyTerminal(ticker, entry.Removed.OrderID)
	}
}

// applyFill trues up the cash/position reservation for one owner's side of
// a single match (SPEC_FULL §12.2): a buyer is refunded the improvement
// between their reserved unit price and the actual trade price and credited
// the filled size as position; a seller is credited the sale proceeds
// (their position was already decremented at acceptance).
func (e *Engine) applyFill(ticker string, orderID uint64, price float32, size uint32) {
	rec, ok := e.orders.Lookup(orderID)
	if !ok {
		return
	}
	e.orders.RecordFill(orderID, size)

	account, ok := e.accounts.Lookup(rec.InvestorID)
	if !ok {
		return
	}
	if rec.Direction == orderbookv1.Buy {
		refund := float64(rec.ReservedUnitPrice-price) * float64(size)
		account.Cash += refund
		account.Positions[ticker] += int64(size)
	} else {
		account.Cash += float64(price) * float64(size)
	}

	e.sendToInvestor(rec.InvestorID, protocolv1.Response{OrderFill: &protocolv1.OrderFill{
		OrderID: orderID, Price: price, Size: size,
	}})
}

// applyTerminal releases an order's remaining reservation and its OrderInfo
// binding, and privately notifies the owner with OrderDead — used for every
// terminal reason (FullyFilled, IocLeftover, Cancelled). The public
// OrderRemoved event only follows for orders that were previously Added.
func (e *Engine) applyTerminal(ticker string, orderID uint64) {
	rec, ok := e.orders.Lookup(orderID)
	if !ok {
		return
	}

	remaining := rec.OriginalQty - rec.FilledSoFar
	if remaining > 0 {
		if account, ok := e.accounts.Lookup(rec.InvestorID); ok {
			if rec.Direction == orderbookv1.Buy {
				account.Cash += float64(rec.ReservedUnitPrice) * float64(remaining)
			} else {
				account.Positions[ticker] += int64(remaining)
			}
		}
	}

	e.orders.Release(orderID)
	e.sendToInvestor(rec.InvestorID, protocolv1.Response{OrderDead: &protocolv1.OrderDead{OrderID: orderID}})

	// An order that was never publicly Added (an IOC/Market leftover, or an
	// aggressor that fully fills without ever resting) never had a public
	// presence on the book, so it gets no public Removed either — only the
	// resident orders a market-data subscriber actually saw get one.
	if rec.WasAdded {
		e.publish(eventv1.Event{Removed: &eventv1.OrderRemoved{OrderID: orderID, Ticker: ticker}})
	}
}

// --- CancelOrder ---

func (e *Engine) rejectCancel(sessionID string, seqnum uint64, rejErr *errors.RejectError) {
	e.sendTo(sessionID, protocolv1.Response{CancelRej: &protocolv1.CancelRej{Seqnum: seqnum, Reason: rejErr.Reason}})
}

func (e *Engine) handleCancelOrder(sessionID string, req *protocolv1.CancelOrderRequest) {
	investorID, loggedIn := e.sessionInvestor[sessionID]
	if !loggedIn {
		e.rejectCancel(sessionID, req.Seqnum, errors.NewRejectError(errors.ReasonNotLoggedIn))
		return
	}

	rec, bound := e.orders.Lookup(req.OrderID)
	if !bound {
		e.rejectCancel(sessionID, req.Seqnum, errors.NewRejectError(errors.ReasonUnknownOrTerminal))
		return
	}
	if rec.InvestorID != investorID {
		e.rejectCancel(sessionID, req.Seqnum, errors.NewRejectError(errors.ReasonNotYours))
		return
	}

	book := e.books.Book(rec.Ticker)
	entry, ok := book.Cancel(req.OrderID)
	if !ok {
		e.rejectCancel(sessionID, req.Seqnum, errors.NewRejectError(errors.ReasonUnknownOrTerminal))
		return
	}

	e.applyTerminal(rec.Ticker, entry.Removed.OrderID)
}
