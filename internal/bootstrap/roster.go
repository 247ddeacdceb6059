// Package bootstrap loads the two fixed startup artefacts the Portal needs
// before it can accept a single request (SPEC_FULL §1, §12.1): the investor
// roster and the stock list. Grounded on the original source's
// InvestorList/StockList config schemas
// (original_source/src/types/config.rs), expressed as JSON rather than the
// original's format, loaded the way the teacher loads its own fixed
// config (pkg/config, caarlos0/env-style struct binding) — plain
// encoding/json here since these are data files, not environment config.
package bootstrap

import (
	"encoding/json"
	"os"

	accountv1 "github.com/driftline-labs/bourse/internal/domain/account/v1"
	stockv1 "github.com/driftline-labs/bourse/internal/domain/stock/v1"
	"github.com/driftline-labs/bourse/pkg/errors"
)

// investorFile is the on-disk shape of the investor roster.
type investorFile struct {
	Investors []investorEntry `json:"investors"`
}

type investorEntry struct {
	InvestorID  uint64           `json:"investorId"`
	AccountName string           `json:"accountName"`
	Password    string           `json:"password"`
	CashAmount  float64          `json:"cashAmount"`
	Positions   map[string]int64 `json:"positions,omitempty"`
}

// stockFile is the on-disk shape of the stock list.
type stockFile struct {
	Stocks []stockEntry `json:"stocks"`
}

type stockEntry struct {
	Ticker     string  `json:"ticker"`
	Name       string  `json:"name"`
	ClosePrice float32 `json:"closePrice"`
	LotSize    uint32  `json:"lotSize"`
	MPF        float32 `json:"mpf"`
}

// LoadInvestors reads the investor roster at path and builds the account
// registry from it. The set of investors is fixed at startup; each account's
// cash, positions and session state change as the Portal runs.
func LoadInvestors(path string) (*accountv1.Registry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.TracerFromError(err)
	}

	var file investorFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, errors.TracerFromError(err)
	}

	accounts := make([]*accountv1.Account, 0, len(file.Investors))
	for _, entry := range file.Investors {
		account := accountv1.NewAccount(entry.InvestorID, entry.Password, entry.CashAmount)
		for ticker, qty := range entry.Positions {
			account.Positions[ticker] = qty
		}
		accounts = append(accounts, account)
	}

	return accountv1.NewRegistry(accounts), nil
}

// LoadStocks reads the stock list at path and builds an immutable stock
// registry from it.
func LoadStocks(path string) (*stockv1.Registry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.TracerFromError(err)
	}

	var file stockFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, errors.TracerFromError(err)
	}

	records := make([]stockv1.Record, 0, len(file.Stocks))
	for _, entry := range file.Stocks {
		records = append(records, stockv1.Record{
			Ticker:     entry.Ticker,
			Name:       entry.Name,
			ClosePrice: entry.ClosePrice,
			LotSize:    entry.LotSize,
			MPF:        entry.MPF,
		})
	}

	return stockv1.NewRegistry(records), nil
}
