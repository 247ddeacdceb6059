package ws

import (
	"github.com/gorilla/websocket"

	protocolv1 "github.com/driftline-labs/bourse/internal/domain/protocol/v1"
	"github.com/driftline-labs/bourse/pkg/logger"
)

// subscriberSink pumps MarketDataFrames to one websocket connection. It is
// the transport-owned half of subscription.Sink.
type subscriberSink struct {
	conn *websocket.Conn
	out  chan protocolv1.MarketDataFrame
	done chan struct{}
	log  logger.Interface
}

func newSubscriberSink(conn *websocket.Conn, queueDepth int, log logger.Interface) *subscriberSink {
	s := &subscriberSink{
		conn: conn,
		out:  make(chan protocolv1.MarketDataFrame, queueDepth),
		done: make(chan struct{}),
		log:  log,
	}
	go s.pump()
	return s
}

// Send implements subscription.Sink.
func (s *subscriberSink) Send(frame protocolv1.MarketDataFrame) bool {
	select {
	case s.out <- frame:
		return true
	default:
		return false
	}
}

func (s *subscriberSink) stop() {
	close(s.done)
}

func (s *subscriberSink) pump() {
	for {
		select {
		case <-s.done:
			return
		case frame := <-s.out:
			if err := s.conn.WriteJSON(frame); err != nil {
				s.log.Warn("subscriber write failed, closing connection",
					logger.Field{Key: "error", Value: err.Error()})
				_ = s.conn.Close()
				return
			}
			if frame.LaggedOut != nil {
				_ = s.conn.Close()
				return
			}
		}
	}
}
