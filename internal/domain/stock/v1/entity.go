// Package stockv1 is the immutable table of known tickers and their static
// trading parameters (SPEC_FULL §2, §12.1), grounded on the original
// source's StockManager (original_source/src/portal/stock_manager.rs).
package stockv1

// Record is the static metadata for one ticker, bound once at startup.
type Record struct {
	Ticker     string
	Name       string
	ClosePrice float32
	// LotSize is the size granularity an order must be an exact multiple
	// of (SPEC_FULL §12.1). Tickers with no lot constraint use LotSize=1.
	LotSize uint32
	// MPF (minimum price fluctuation) is the price granularity a Limit
	// order's price must be an exact multiple of. An MPF of zero or less
	// means no price granularity check: any positive price is valid.
	MPF float32
}

// Registry is the immutable-after-startup table of known tickers.
type Registry struct {
	records map[string]Record
}

// NewRegistry builds a Registry from a fixed set of records. The registry
// is never mutated after construction (SPEC_FULL §1: "Ticker ... Immutable
// after startup").
func NewRegistry(records []Record) *Registry {
	m := make(map[string]Record, len(records))
	for _, r := range records {
		m[r.Ticker] = r
	}
	return &Registry{records: m}
}

// Exists reports whether ticker is a known ticker.
func (r *Registry) Exists(ticker string) bool {
	_, ok := r.records[ticker]
	return ok
}

// ValidSize reports whether size is a positive, exact multiple of the
// ticker's lot size.
func (r *Registry) ValidSize(ticker string, size uint32) bool {
	rec, ok := r.records[ticker]
	if !ok || size == 0 {
		return false
	}
	lot := rec.LotSize
	if lot == 0 {
		lot = 1
	}
	return size%lot == 0
}

// ValidPrice reports whether price is positive and an exact multiple of the
// ticker's minimum price fluctuation, within float32 precision.
func (r *Registry) ValidPrice(ticker string, price float32) bool {
	rec, ok := r.records[ticker]
	if !ok || price <= 0 {
		return false
	}
	if rec.MPF <= 0 {
		return true
	}
	ratio := price / rec.MPF
	const epsilon = 1e-4
	diff := ratio - float32(int64(ratio+0.5))
	if diff < 0 {
		diff = -diff
	}
	return diff < epsilon
}

// ClosePrice returns the ticker's last close price, used as a synthetic
// cost basis when a Market order's pre-trade check has no opposing
// liquidity to walk (SPEC_FULL §12.3).
func (r *Registry) ClosePrice(ticker string) (float32, bool) {
	rec, ok := r.records[ticker]
	if !ok {
		return 0, false
	}
	return rec.ClosePrice, true
}
