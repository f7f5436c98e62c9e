// Package portfolio aggregates per-symbol account activity into a single
// cross-symbol view: realized and unrealized P&L, open positions, and trade
// counts. It observes the worker event stream as a model.StatusSink, so it
// needs no coupling to the accounts themselves.
package portfolio

import (
	"context"
	"sort"
	"sync"

	"papertrader/internal/model"
)

// symbolState is the tracker's view of one symbol.
type symbolState struct {
	Symbol     string  `json:"symbol"`
	InPosition bool    `json:"in_position"`
	EntryPrice float64 `json:"entry_price,omitempty"`
	Qty        float64 `json:"qty,omitempty"`
	LastPrice  float64 `json:"last_price"`
	Realized   float64 `json:"realized_pnl"`
	Trades     int     `json:"trades"`
}

// unrealized returns the open position's mark-to-market P&L.
func (s *symbolState) unrealized() float64 {
	if !s.InPosition || s.LastPrice == 0 {
		return 0
	}
	return (s.LastPrice - s.EntryPrice) * s.Qty
}

// Tracker maintains the cross-symbol portfolio view. Safe for concurrent use:
// every worker publishes into it and the HTTP API reads from it.
type Tracker struct {
	mu      sync.RWMutex
	symbols map[string]*symbolState
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{symbols: make(map[string]*symbolState)}
}

func (t *Tracker) state(symbol string) *symbolState {
	s, ok := t.symbols[symbol]
	if !ok {
		s = &symbolState{Symbol: symbol}
		t.symbols[symbol] = s
	}
	return s
}

// PublishStatus updates the symbol's last seen price for mark-to-market.
func (t *Tracker) PublishStatus(_ context.Context, status model.CycleStatus) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state(status.Symbol).LastPrice = status.Price
}

// PublishTrade folds a fill into the symbol's position and realized P&L.
func (t *Tracker) PublishTrade(_ context.Context, trade model.Trade) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.state(trade.Symbol)
	s.Trades++
	s.LastPrice = trade.Price

	if trade.Side == model.SideBuy {
		s.InPosition = true
		s.EntryPrice = trade.Price
		s.Qty = trade.Qty
	} else {
		s.InPosition = false
		s.EntryPrice = 0
		s.Qty = 0
		s.Realized += trade.Profit
	}
}

// SymbolView is the per-symbol row in a portfolio summary.
type SymbolView struct {
	symbolState
	Unrealized float64 `json:"unrealized_pnl"`
}

// Summary is the aggregated portfolio view.
type Summary struct {
	RealizedPnL   float64      `json:"realized_pnl"`
	UnrealizedPnL float64      `json:"unrealized_pnl"`
	TotalPnL      float64      `json:"total_pnl"`
	TotalTrades   int          `json:"total_trades"`
	OpenPositions int          `json:"open_positions"`
	Symbols       []SymbolView `json:"symbols"`
}

// GetSummary returns the current portfolio summary.
func (t *Tracker) GetSummary() Summary {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var sum Summary
	sum.Symbols = make([]SymbolView, 0, len(t.symbols))
	for _, s := range t.symbols {
		u := s.unrealized()
		sum.RealizedPnL += s.Realized
		sum.UnrealizedPnL += u
		sum.TotalTrades += s.Trades
		if s.InPosition {
			sum.OpenPositions++
		}
		sum.Symbols = append(sum.Symbols, SymbolView{symbolState: *s, Unrealized: u})
	}
	sum.TotalPnL = sum.RealizedPnL + sum.UnrealizedPnL
	sort.Slice(sum.Symbols, func(i, j int) bool {
		return sum.Symbols[i].Symbol < sum.Symbols[j].Symbol
	})
	return sum
}
