package orderinfov1

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	orderbookv1 "github.com/driftline-labs/bourse/internal/domain/orderbook/v1"
)

func TestStore_BindAndLookup(t *testing.T) {
	s := NewStore()
	s.Bind(1, Record{InvestorID: 7, Ticker: "ACME", Direction: orderbookv1.Buy, OriginalQty: 100})

	rec, ok := s.Lookup(1)
	require.True(t, ok)
	assert.Equal(t, uint64(7), rec.InvestorID)

	_, ok = s.Lookup(2)
	assert.False(t, ok)
}

func TestStore_RecordFill(t *testing.T) {
	s := NewStore()
	s.Bind(1, Record{InvestorID: 7, OriginalQty: 100})

	s.RecordFill(1, 30)
	s.RecordFill(1, 20)

	rec, _ := s.Lookup(1)
	assert.Equal(t, uint32(50), rec.FilledSoFar)
}

func TestStore_Release(t *testing.T) {
	s := NewStore()
	s.Bind(1, Record{InvestorID: 7})

	s.Release(1)

	_, ok := s.Lookup(1)
	assert.False(t, ok, "a released order id is no longer bound")
}

func TestStore_MarkAdded(t *testing.T) {
	s := NewStore()
	s.Bind(1, Record{InvestorID: 7})

	rec, _ := s.Lookup(1)
	assert.False(t, rec.WasAdded, "a freshly bound order has not been added yet")

	s.MarkAdded(1)

	rec, _ = s.Lookup(1)
	assert.True(t, rec.WasAdded)
}

