// Package eventbus mirrors the public event stream onto Kafka, grounded on
// the teacher's matching-engine match-publisher (publishes a JSON-encoded
// payload per Kafka message via segmentio/kafka-go). SPEC_FULL §11.5: this
// is a secondary, best-effort distribution channel — a write failure here
// is logged and dropped, never surfaced to the writer loop.
package eventbus

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	eventv1 "github.com/driftline-labs/bourse/internal/domain/event/v1"
	"github.com/driftline-labs/bourse/pkg/errors"
	"github.com/driftline-labs/bourse/pkg/logger"
)

// Config names the Kafka topic an exchange instance mirrors public events
// onto.
type Config struct {
	Brokers []string
	Topic   string
}

// Enabled reports whether Kafka mirroring is configured.
func (c Config) Enabled() bool {
	return len(c.Brokers) > 0 && c.Topic != ""
}

// KafkaSink is the Kafka-backed implementation of portal.EventSink.
type KafkaSink struct {
	writer *kafka.Writer
	logger logger.Interface
}

// NewKafkaSink opens an async Kafka writer for cfg.
func NewKafkaSink(cfg Config, log logger.Interface) *KafkaSink {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(cfg.Brokers...),
		Topic:    cfg.Topic,
		Balancer: &kafka.LeastBytes{},
		Async:    true,
	}
	return &KafkaSink{writer: writer, logger: log}
}

// Publish implements portal.EventSink. It never blocks the Portal writer:
// the actual send happens on the writer's own async goroutine.
func (s *KafkaSink) Publish(ev eventv1.Event) {
	payload, err := json.Marshal(wireEvent(ev))
	if err != nil {
		s.logger.Error(errors.NewTracer("failed to encode event for kafka mirror"),
			logger.Field{Key: "error", Value: err.Error()})
		return
	}

	go func() {
		if err := s.writer.WriteMessages(context.Background(), kafka.Message{Value: payload}); err != nil {
			s.logger.Error(errors.NewTracer("failed to publish event to kafka"),
				logger.Field{Key: "error", Value: err.Error()})
		}
	}()
}

// Close flushes and closes the underlying Kafka writer.
func (s *KafkaSink) Close() error {
	return s.writer.Close()
}

// wireEventPayload is the JSON-friendly projection of eventv1.Event: the
// domain type is a pointer tagged union with no json tags, so the mirror
// gets its own flat shape instead of serializing internal field names.
type wireEventPayload struct {
	Type           string  `json:"type"`
	OrderID        uint64  `json:"orderId"`
	Ticker         string  `json:"ticker"`
	Direction      string  `json:"direction,omitempty"`
	LimitPrice     float32 `json:"limitPrice,omitempty"`
	Size           uint32  `json:"size,omitempty"`
	ExecutionPrice float32 `json:"executionPrice,omitempty"`
	ExecutionSize  uint32  `json:"executionSize,omitempty"`
}

func wireEvent(ev eventv1.Event) wireEventPayload {
	switch {
	case ev.Added != nil:
		a := ev.Added
		return wireEventPayload{
			Type: "OrderAdded", OrderID: a.OrderID, Ticker: a.Ticker,
			Direction: a.Direction.String(), LimitPrice: a.LimitPrice, Size: a.Size,
		}
	case ev.Executed != nil:
		x := ev.Executed
		return wireEventPayload{
			Type: "OrderExecuted", OrderID: x.OrderID, Ticker: x.Ticker,
			ExecutionPrice: x.ExecutionPrice, ExecutionSize: x.ExecutionSize,
		}
	case ev.Removed != nil:
		r := ev.Removed
		return wireEventPayload{Type: "OrderRemoved", OrderID: r.OrderID, Ticker: r.Ticker}
	default:
		return wireEventPayload{}
	}
}
