// Package ws is the concrete transport for the two bidirectional streams
// SPEC_FULL §6 describes, grounded on realmfikri-Limitless's server.go
// (gorilla/websocket over a plain http.ServeMux, one handler per stream,
// CORS/auth middleware chain) adapted to the Portal's channel-actor API
// instead of Limitless's book/hub direct calls.
package ws

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/oklog/ulid/v2"

	protocolv1 "github.com/driftline-labs/bourse/internal/domain/protocol/v1"
	"github.com/driftline-labs/bourse/internal/usecase/portal"
	"github.com/driftline-labs/bourse/internal/usecase/subscription"
	"github.com/driftline-labs/bourse/pkg/httplib/healthcheck"
	"github.com/driftline-labs/bourse/pkg/logger"
	"github.com/driftline-labs/bourse/pkg/util"
)

// Engine is the subset of portal.Engine the transport depends on.
type Engine interface {
	RegisterSession(sessionID string, sink portal.SessionSink)
	Disconnect(sessionID string)
	Submit(sessionID string, req *protocolv1.Request)
	Subscribe(subscriberID string, sink subscription.Sink)
	Unsubscribe(subscriberID string)
}

// Server exposes the order-entry and market-data streams over websockets.
type Server struct {
	engine               Engine
	upgrader             websocket.Upgrader
	log                  logger.Interface
	sessionQueueDepth    int
	subscriberQueueDepth int
	healthcheck          healthcheck.HealthCheck
}

// New creates a Server bound to engine. sessionQueueDepth bounds every
// connected order-entry session's outbound buffer, subscriberQueueDepth
// bounds every connected market-data subscriber's (SPEC_FULL §5, §4.4) —
// kept distinct since a slow market-data fan-out consumer shouldn't share a
// bound sized for the much lower-volume order-entry responses.
func New(engine Engine, sessionQueueDepth, subscriberQueueDepth int, log logger.Interface) *Server {
	return &Server{
		engine:               engine,
		upgrader:             websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
		log:                  log,
		sessionQueueDepth:    sessionQueueDepth,
		subscriberQueueDepth: subscriberQueueDepth,
	}
}

// Routes returns the HTTP handler for the exchange's public surface.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/stream/orders", s.handleOrderStream)
	mux.HandleFunc("/stream/market-data", s.handleMarketDataStream)
	return s.healthcheck.Handler(mux)
}

func (s *Server) handleOrderStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("order stream upgrade failed", logger.Field{Key: "error", Value: err.Error()})
		return
	}
	defer conn.Close()

	sessionID := ulid.Make().String()
	sink := newSessionSink(conn, s.sessionQueueDepth, s.log)
	defer sink.stop()

	s.engine.RegisterSession(sessionID, sink)
	defer s.engine.Disconnect(sessionID)

	for {
		var req protocolv1.Request
		if err := conn.ReadJSON(&req); err != nil {
			return
		}
		ctx := util.WithRequestID(context.Background(), uuid.NewString())
		s.log.DebugContext(ctx, "order-entry frame received",
			logger.Field{Key: "session_id", Value: sessionID})
		s.engine.Submit(sessionID, &req)
	}
}

func (s *Server) handleMarketDataStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("market data stream upgrade failed", logger.Field{Key: "error", Value: err.Error()})
		return
	}
	defer conn.Close()

	subscriberID := ulid.Make().String()
	sink := newSubscriberSink(conn, s.subscriberQueueDepth, s.log)
	defer sink.stop()

	s.engine.Subscribe(subscriberID, sink)
	defer s.engine.Unsubscribe(subscriberID)

	// The market-data stream is server-to-client only; block on reads so
	// the handler (and its deferred Unsubscribe) exits when the client
	// disconnects, same as Limitless's handleTradeStream/handleBookStream.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
