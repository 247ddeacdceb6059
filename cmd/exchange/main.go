// Command exchange runs the single-process stock exchange simulation
// (SPEC_FULL §1, §5): it loads the fixed investor roster and stock list,
// starts the Portal writer loop, and serves the order-entry and
// market-data websocket streams until signalled to shut down. Grounded on
// the teacher's matching-service cmd/main.go wiring and shutdown sequence.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/multierr"

	"github.com/driftline-labs/bourse/internal/bootstrap"
	"github.com/driftline-labs/bourse/internal/config"
	"github.com/driftline-labs/bourse/internal/transport/ws"
	"github.com/driftline-labs/bourse/internal/usecase/eventbus"
	"github.com/driftline-labs/bourse/internal/usecase/portal"
	pkgconfig "github.com/driftline-labs/bourse/pkg/config"
	"github.com/driftline-labs/bourse/pkg/logger"
)

var cfg *config.Config
var log *logger.Logger

func init() {
	cfg = &config.Config{}
	pkgconfig.MustLoad(cfg)

	l, err := logger.NewLogger()
	if err != nil {
		panic(err)
	}
	log = l
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	stocks, err := bootstrap.LoadStocks(cfg.StockListPath)
	if err != nil {
		log.Error(err, logger.Field{Key: "action", Value: "load_stocks"})
		return
	}

	accounts, err := bootstrap.LoadInvestors(cfg.InvestorRosterPath)
	if err != nil {
		log.Error(err, logger.Field{Key: "action", Value: "load_investors"})
		return
	}

	var sink portal.EventSink
	var kafkaSink *eventbus.KafkaSink
	if cfg.KafkaConfig.Enabled() {
		kafkaSink = eventbus.NewKafkaSink(eventbus.Config{
			Brokers: cfg.KafkaConfig.Brokers,
			Topic:   cfg.KafkaConfig.Topic,
		}, log)
		sink = kafkaSink
	}

	engine := portal.New(log, stocks, accounts, sink, cfg.WriterQueueDepth, cfg.HistoryRetention)
	engine.Start(ctx)

	server := ws.New(engine, cfg.SessionQueueDepth, cfg.SubscriberQueueDepth, log)
	httpServer := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: server.Routes(),
	}

	go func() {
		log.Info("exchange listening", logger.Field{Key: "addr", Value: cfg.ListenAddr})
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error(err, logger.Field{Key: "action", Value: "listen_and_serve"})
		}
	}()

	sig := <-sigChan
	log.Info("received shutdown signal", logger.Field{Key: "signal", Value: sig.String()})
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	var shutdownErrs []error
	shutdownErrs = append(shutdownErrs, httpServer.Shutdown(shutdownCtx))
	shutdownErrs = append(shutdownErrs, engine.Stop(shutdownCtx))
	if kafkaSink != nil {
		shutdownErrs = append(shutdownErrs, kafkaSink.Close())
	}

	if err := multierr.Combine(shutdownErrs...); err != nil {
		log.Error(err, logger.Field{Key: "action", Value: "shutdown"})
	}

	log.Info("exchange shutdown complete")
}
