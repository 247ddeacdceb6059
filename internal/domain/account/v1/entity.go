// Package accountv1 holds investor identity, credentials, cash, positions
// and session state (SPEC_FULL §3 "Investor account"), grounded on the
// original source's Account/AccountManager
// (original_source/src/portal/account.rs, account_manager.rs) adapted to
// the two-phase reserve-then-true-up accounting SPEC_FULL §12.2 describes.
package accountv1

// SessionState is whether an investor currently owns an active session.
type SessionState int

const (
	// LoggedOut is the default state: no session bound.
	LoggedOut SessionState = iota
	// LoggedIn means exactly one session is bound to this investor.
	LoggedIn
)

// Account is a single investor's mutable trading state.
type Account struct {
	InvestorID uint64
	Password   string
	Cash       float64
	Positions  map[string]int64 // ticker -> signed quantity
	State      SessionState
	// SessionID identifies the currently bound session, empty if LoggedOut.
	SessionID string
}

// NewAccount creates an account with the given identity, credentials and
// starting cash; positions start empty (zero position for every ticker).
func NewAccount(investorID uint64, password string, cash float64) *Account {
	return &Account{
		InvestorID: investorID,
		Password:   password,
		Cash:       cash,
		Positions:  make(map[string]int64),
		State:      LoggedOut,
	}
}

// Position returns the current signed position for ticker (0 if untouched).
func (a *Account) Position(ticker string) int64 {
	return a.Positions[ticker]
}

// Registry is the keyed store of all investor accounts (SPEC_FULL §4.5).
type Registry struct {
	accounts map[uint64]*Account
}

// NewRegistry builds a Registry from a fixed initial roster. Initial
// positions, if any, should already be reflected in each Account passed in.
func NewRegistry(accounts []*Account) *Registry {
	m := make(map[uint64]*Account, len(accounts))
	for _, a := range accounts {
		m[a.InvestorID] = a
	}
	return &Registry{accounts: m}
}

// Lookup returns the account for investorID, if known.
func (r *Registry) Lookup(investorID uint64) (*Account, bool) {
	a, ok := r.accounts[investorID]
	return a, ok
}

// TryAcquireSession implements the atomic try_acquire_session operation
// (SPEC_FULL §4.5): succeeds only if the investor exists, the password
// matches, and no session is currently bound.
func (r *Registry) TryAcquireSession(investorID uint64, password, sessionID string) AcquireResult {
	account, ok := r.accounts[investorID]
	if !ok {
		return AcquireUnknownInvestor
	}
	if account.Password != password {
		return AcquireBadPassword
	}
	if account.State == LoggedIn {
		return AcquireAlreadyLoggedIn
	}
	account.State = LoggedIn
	account.SessionID = sessionID
	return AcquireOK
}

// ReleaseSession unbinds whatever session is bound to investorID, if any.
// Safe to call on disconnect even if the investor was never logged in.
func (r *Registry) ReleaseSession(investorID uint64) {
	if account, ok := r.accounts[investorID]; ok {
		account.State = LoggedOut
		account.SessionID = ""
	}
}

// AcquireResult is the outcome of TryAcquireSession.
type AcquireResult int

const (
	// AcquireOK means the session was bound successfully.
	AcquireOK AcquireResult = iota
	// AcquireUnknownInvestor means no such investor id exists.
	AcquireUnknownInvestor
	// AcquireBadPassword means the investor exists but the password is wrong.
	AcquireBadPassword
	// AcquireAlreadyLoggedIn means the investor already has a bound session.
	AcquireAlreadyLoggedIn
)
