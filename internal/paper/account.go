// Package paper simulates a single-position, all-in/all-out trading account.
// No real orders are placed: fills happen instantly at the provided price.
package paper

import (
	"time"

	"papertrader/internal/model"
	"papertrader/internal/strategy"
)

// Position is the open long position of an account.
type Position struct {
	EntryPrice float64   `json:"entry_price"`
	Qty        float64   `json:"qty"`
	OpenedAt   time.Time `json:"opened_at"`
}

// Account is a two-state (flat/long) simulated account. After any completed
// transition exactly one of two holds: balance > 0 with no position, or
// balance == 0 with an open position.
//
// Accounts are NOT safe for concurrent use; each symbol worker owns its
// account exclusively.
type Account struct {
	symbol   string
	balance  float64
	position *Position
}

// NewAccount creates a flat account with the given starting balance.
func NewAccount(symbol string, initialBalance float64) *Account {
	return &Account{symbol: symbol, balance: initialBalance}
}

// Symbol returns the symbol this account trades.
func (a *Account) Symbol() string { return a.symbol }

// Balance returns the current cash balance.
func (a *Account) Balance() float64 { return a.balance }

// Position returns a copy of the open position, if any.
func (a *Account) Position() (Position, bool) {
	if a.position == nil {
		return Position{}, false
	}
	return *a.position, true
}

// InPosition reports whether the account currently holds a position.
func (a *Account) InPosition() bool { return a.position != nil }

// Apply feeds one cycle's action into the state machine at the given fill
// price. It returns the resulting trade record, or nil when the action is a
// no-op in the current state (buy while long, sell while flat, none).
func (a *Account) Apply(action strategy.Action, price float64, at time.Time) *model.Trade {
	switch action {
	case strategy.ActionBuy:
		return a.open(price, at)
	case strategy.ActionSell:
		return a.close(price, at)
	}
	return nil
}

// open commits the entire balance into a position at price.
func (a *Account) open(price float64, at time.Time) *model.Trade {
	if a.position != nil || a.balance <= 0 || price <= 0 {
		return nil
	}

	qty := a.balance / price
	invested := qty * price
	a.position = &Position{EntryPrice: price, Qty: qty, OpenedAt: at}
	a.balance = 0

	return &model.Trade{
		Symbol:  a.symbol,
		Side:    model.SideBuy,
		Price:   price,
		Qty:     qty,
		Amount:  invested,
		Balance: a.balance,
		At:      at,
	}
}

// close liquidates the entire position at price and realizes the profit.
func (a *Account) close(price float64, at time.Time) *model.Trade {
	if a.position == nil {
		return nil
	}

	pos := a.position
	proceeds := pos.Qty * price
	profit := (price - pos.EntryPrice) * pos.Qty
	a.balance = proceeds
	a.position = nil

	return &model.Trade{
		Symbol:  a.symbol,
		Side:    model.SideSell,
		Price:   price,
		Qty:     pos.Qty,
		Amount:  proceeds,
		Profit:  profit,
		Balance: a.balance,
		At:      at,
	}
}
