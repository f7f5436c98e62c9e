package model

import (
	"encoding/json"
	"time"
)

// Side is the direction of a simulated fill.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// Trade is the observable record emitted on every account transition.
// Amount is the invested notional on a buy and the proceeds on a sell.
// Profit is only meaningful on sells.
type Trade struct {
	Symbol  string    `json:"symbol"`
	Side    Side      `json:"side"`
	Price   float64   `json:"price"`
	Qty     float64   `json:"qty"`
	Amount  float64   `json:"amount"`
	Profit  float64   `json:"profit"`
	Balance float64   `json:"balance"` // account balance after the transition
	At      time.Time `json:"at"`
}

// JSON returns the JSON-encoded trade (ignoring errors for hot-path usage).
func (t *Trade) JSON() []byte {
	b, _ := json.Marshal(t)
	return b
}
