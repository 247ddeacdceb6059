package portal

import (
	"context"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	accountv1 "github.com/driftline-labs/bourse/internal/domain/account/v1"
	eventv1 "github.com/driftline-labs/bourse/internal/domain/event/v1"
	orderbookv1 "github.com/driftline-labs/bourse/internal/domain/orderbook/v1"
	protocolv1 "github.com/driftline-labs/bourse/internal/domain/protocol/v1"
	stockv1 "github.com/driftline-labs/bourse/internal/domain/stock/v1"
	portalmock "github.com/driftline-labs/bourse/internal/usecase/portal/mock"
	"github.com/driftline-labs/bourse/pkg/logger"
)

// TestEngine_MirrorsPublicEventsToEventSink exercises the optional EventSink
// mirror (SPEC_FULL §11.5), which every fixed-scenario test in portal_test.go
// leaves disabled by passing nil. A resting Limit Day order must mirror exactly one
// Added event to the sink, with the submitted order's own id and ticker.
func TestEngine_MirrorsPublicEventsToEventSink(t *testing.T) {
	ctrl := gomock.NewController(t)

	log, err := logger.NewLogger()
	require.NoError(t, err)

	stocks := stockv1.NewRegistry([]stockv1.Record{
		{Ticker: "ACME", Name: "Acme Corp", ClosePrice: 10.0, LotSize: 1, MPF: 0.01},
	})
	alice := accountv1.NewAccount(1, "alice-pw", 10000.0)
	alice.Positions["ACME"] = 10
	accounts := accountv1.NewRegistry([]*accountv1.Account{alice})

	mirror := portalmock.NewMockEventSink(ctrl)
	mirrored := make(chan eventv1.Event, 8)
	mirror.EXPECT().
		Publish(gomock.Any()).
		DoAndReturn(func(ev eventv1.Event) { mirrored <- ev }).
		Times(1)

	engine := New(log, stocks, accounts, mirror, 256, 0)
	engine.Start(context.Background())
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = engine.Stop(ctx)
	})

	sink := newFakeSink()
	engine.RegisterSession("s-seller", sink)
	engine.Submit("s-seller", &protocolv1.Request{Login: &protocolv1.LoginRequest{
		Seqnum: 1, InvestorID: 1, Password: "alice-pw",
	}})
	require.NotNil(t, sink.next(t).LoginAck)

	engine.Submit("s-seller", &protocolv1.Request{NewOrder: &protocolv1.NewOrderRequest{
		Seqnum: 2, Ticker: "ACME", Direction: orderbookv1.Sell,
		Size: 10, Price: 10.0, Kind: orderbookv1.KindLimit, TIF: orderbookv1.Day,
	}})
	ack := sink.next(t)
	require.NotNil(t, ack.OrderAck)

	select {
	case ev := <-mirrored:
		require.NotNil(t, ev.Added)
		require.Equal(t, ack.OrderAck.OrderID, ev.Added.OrderID)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for the mirrored event")
	}
}

// TestEngine_SendsResponseThroughSessionSink drives a rejection through a
// gomock SessionSink instead of the hand-written fakeSink, pinning down the
// exact Response the writer sends on a bad password.
func TestEngine_SendsResponseThroughSessionSink(t *testing.T) {
	ctrl := gomock.NewController(t)

	log, err := logger.NewLogger()
	require.NoError(t, err)

	stocks := stockv1.NewRegistry(nil)
	accounts := accountv1.NewRegistry([]*accountv1.Account{
		accountv1.NewAccount(1, "alice-pw", 10000.0),
	})

	engine := New(log, stocks, accounts, nil, 256, 0)
	engine.Start(context.Background())
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = engine.Stop(ctx)
	})

	done := make(chan struct{})
	mockSink := portalmock.NewMockSessionSink(ctrl)
	mockSink.EXPECT().
		Send(gomock.Any()).
		DoAndReturn(func(resp protocolv1.Response) bool {
			defer close(done)
			require.NotNil(t, resp.LoginRej)
			return true
		}).
		Times(1)

	engine.RegisterSession("s1", mockSink)
	engine.Submit("s1", &protocolv1.Request{Login: &protocolv1.LoginRequest{
		Seqnum: 1, InvestorID: 1, Password: "wrong",
	}})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for the mock sink to receive a response")
	}
}
