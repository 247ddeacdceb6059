package accountv1

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry() *Registry {
	return NewRegistry([]*Account{
		NewAccount(1, "secret", 1000.0),
		NewAccount(2, "other", 500.0),
	})
}

func TestRegistry_TryAcquireSession(t *testing.T) {
	t.Run("unknown investor", func(t *testing.T) {
		r := newTestRegistry()
		result := r.TryAcquireSession(99, "secret", "sess-1")
		assert.Equal(t, AcquireUnknownInvestor, result)
	})

	t.Run("bad password", func(t *testing.T) {
		r := newTestRegistry()
		result := r.TryAcquireSession(1, "wrong", "sess-1")
		assert.Equal(t, AcquireBadPassword, result)
	})

	t.Run("success binds session", func(t *testing.T) {
		r := newTestRegistry()
		result := r.TryAcquireSession(1, "secret", "sess-1")
		require.Equal(t, AcquireOK, result)

		account, ok := r.Lookup(1)
		require.True(t, ok)
		assert.Equal(t, LoggedIn, account.State)
		assert.Equal(t, "sess-1", account.SessionID)
	})

	t.Run("already logged in rejects a second session", func(t *testing.T) {
		r := newTestRegistry()
		require.Equal(t, AcquireOK, r.TryAcquireSession(1, "secret", "sess-1"))

		result := r.TryAcquireSession(1, "secret", "sess-2")
		assert.Equal(t, AcquireAlreadyLoggedIn, result)
	})
}

func TestRegistry_ReleaseSession(t *testing.T) {
	r := newTestRegistry()
	require.Equal(t, AcquireOK, r.TryAcquireSession(1, "secret", "sess-1"))

	r.ReleaseSession(1)

	account, _ := r.Lookup(1)
	assert.Equal(t, LoggedOut, account.State)
	assert.Empty(t, account.SessionID)

	result := r.TryAcquireSession(1, "secret", "sess-2")
	assert.Equal(t, AcquireOK, result, "a released session can be re-acquired")
}

func TestAccount_Position(t *testing.T) {
	account := NewAccount(1, "secret", 1000.0)
	assert.Equal(t, int64(0), account.Position("ACME"))

	account.Positions["ACME"] = 50
	assert.Equal(t, int64(50), account.Position("ACME"))
}
