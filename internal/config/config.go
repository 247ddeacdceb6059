// Package config holds the engine's runtime configuration, loaded from
// environment variables via pkg/config.
package config

import "time"

// Config holds the configuration for the exchange engine process.
type Config struct {
	// ListenAddr is the address the order-entry and market-data websocket
	// endpoints are served from.
	ListenAddr string `env:"LISTEN_ADDR" envDefault:":8080"`

	// InvestorRosterPath and StockListPath point at the external config
	// artefacts described in spec §6; loading them is a collaborator's job,
	// not the engine's, but the engine needs the paths to hand off to it.
	InvestorRosterPath string `env:"INVESTOR_ROSTER_PATH" envDefault:"investors.json"`
	StockListPath      string `env:"STOCK_LIST_PATH" envDefault:"stocks.json"`

	// SessionQueueDepth and SubscriberQueueDepth are the bounded-queue sizes
	// the concurrency model (spec §5) requires for outbound per-session and
	// per-subscriber delivery. Overflow drops the session/subscriber.
	SessionQueueDepth    int `env:"SESSION_QUEUE_DEPTH" envDefault:"256"`
	SubscriberQueueDepth int `env:"SUBSCRIBER_QUEUE_DEPTH" envDefault:"1024"`

	// WriterQueueDepth bounds the Portal's single inbound request queue.
	WriterQueueDepth int `env:"WRITER_QUEUE_DEPTH" envDefault:"4096"`

	// HistoryRetention bounds how many public events the in-memory
	// EventHistory keeps for snapshot replay to newly-joining subscribers.
	// 0 means unbounded; this is an in-memory bookkeeping knob, not persistence.
	HistoryRetention int `env:"HISTORY_RETENTION" envDefault:"0"`

	// ShutdownTimeout bounds graceful drain on process shutdown.
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	KafkaConfig `envPrefix:"KAFKA_"`
}

// KafkaConfig configures the optional public event-bus mirror (SPEC_FULL §11.5).
// Brokers empty disables the mirror entirely.
type KafkaConfig struct {
	Brokers []string `env:"BROKERS"`
	Topic   string   `env:"TOPIC" envDefault:"exchange.events"`
}

// Enabled reports whether the Kafka event mirror should be started.
func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0
}
