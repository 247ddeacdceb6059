package stockv1

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestRegistry() *Registry {
	return NewRegistry([]Record{
		{Ticker: "ACME", Name: "Acme Corp", ClosePrice: 10.0, LotSize: 10, MPF: 0.05},
		{Ticker: "NOLOT", Name: "No Lot Constraint", ClosePrice: 5.0, LotSize: 0, MPF: 0},
	})
}

func TestRegistry_Exists(t *testing.T) {
	r := newTestRegistry()
	assert.True(t, r.Exists("ACME"))
	assert.False(t, r.Exists("UNKNOWN"))
}

func TestRegistry_ValidSize(t *testing.T) {
	r := newTestRegistry()

	t.Run("exact multiple of lot size", func(t *testing.T) {
		assert.True(t, r.ValidSize("ACME", 20))
	})
	t.Run("not a multiple of lot size", func(t *testing.T) {
		assert.False(t, r.ValidSize("ACME", 15))
	})
	t.Run("zero size always invalid", func(t *testing.T) {
		assert.False(t, r.ValidSize("ACME", 0))
	})
	t.Run("unconstrained lot size admits any positive size", func(t *testing.T) {
		assert.True(t, r.ValidSize("NOLOT", 7))
	})
	t.Run("unknown ticker", func(t *testing.T) {
		assert.False(t, r.ValidSize("UNKNOWN", 10))
	})
}

func TestRegistry_ValidPrice(t *testing.T) {
	r := newTestRegistry()

	t.Run("exact multiple of mpf", func(t *testing.T) {
		assert.True(t, r.ValidPrice("ACME", 10.05))
	})
	t.Run("not a multiple of mpf", func(t *testing.T) {
		assert.False(t, r.ValidPrice("ACME", 10.03))
	})
	t.Run("non-positive price always invalid", func(t *testing.T) {
		assert.False(t, r.ValidPrice("ACME", 0))
		assert.False(t, r.ValidPrice("ACME", -1))
	})
	t.Run("unconstrained mpf admits any positive price", func(t *testing.T) {
		assert.True(t, r.ValidPrice("NOLOT", 5.123))
	})
}

func TestRegistry_ClosePrice(t *testing.T) {
	r := newTestRegistry()

	price, ok := r.ClosePrice("ACME")
	assert.True(t, ok)
	assert.Equal(t, float32(10.0), price)

	_, ok = r.ClosePrice("UNKNOWN")
	assert.False(t, ok)
}
