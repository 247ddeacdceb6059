package ws

import (
	"github.com/gorilla/websocket"

	protocolv1 "github.com/driftline-labs/bourse/internal/domain/protocol/v1"
	"github.com/driftline-labs/bourse/pkg/logger"
)

// sessionSink pumps order-entry Responses to one websocket connection
// through a bounded channel, the transport-owned half of the session
// boundary portal.SessionSink describes (SPEC_FULL §5): Send never blocks,
// it only reports whether the bound was respected.
type sessionSink struct {
	conn *websocket.Conn
	out  chan protocolv1.Response
	done chan struct{}
	log  logger.Interface
}

func newSessionSink(conn *websocket.Conn, queueDepth int, log logger.Interface) *sessionSink {
	s := &sessionSink{
		conn: conn,
		out:  make(chan protocolv1.Response, queueDepth),
		done: make(chan struct{}),
		log:  log,
	}
	go s.pump()
	return s
}

// Send implements portal.SessionSink.
func (s *sessionSink) Send(resp protocolv1.Response) bool {
	select {
	case s.out <- resp:
		return true
	default:
		return false
	}
}

// stop releases the pump goroutine once the connection's read loop ends.
func (s *sessionSink) stop() {
	close(s.done)
}

func (s *sessionSink) pump() {
	for {
		select {
		case <-s.done:
			return
		case resp := <-s.out:
			if err := s.conn.WriteJSON(resp); err != nil {
				s.log.Warn("session write failed, closing connection",
					logger.Field{Key: "error", Value: err.Error()})
				_ = s.conn.Close()
				return
			}
		}
	}
}
