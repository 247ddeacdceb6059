package orderbook

import orderbookv1 "github.com/driftline-labs/bourse/internal/domain/orderbook/v1"

// Registry owns one Book per ticker, created lazily. StockRegistry is the
// authority on which tickers exist; Registry only stores matching state.
type Registry struct {
	books map[string]orderbookv1.Book
}

// NewRegistry creates an empty book registry.
func NewRegistry() *Registry {
	return &Registry{books: make(map[string]orderbookv1.Book)}
}

// Book returns the book for ticker, creating it on first use.
func (r *Registry) Book(ticker string) orderbookv1.Book {
	b, ok := r.books[ticker]
	if !ok {
		b = New(ticker)
		r.books[ticker] = b
	}
	return b
}
