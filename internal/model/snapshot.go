package model

import (
	"encoding/json"
	"time"
)

// Snapshot is one row of derived indicator values for a candle.
// A snapshot only exists once every indicator has warmed up; rows with
// undefined components are never materialized.
type Snapshot struct {
	TS      time.Time `json:"ts"`       // open time of the source candle
	Close   float64   `json:"close"`    // candle close price
	EMAFast float64   `json:"ema_fast"` // exponential moving average, short span
	EMASlow float64   `json:"ema_slow"` // exponential moving average, long span
	Osc     float64   `json:"osc"`      // RSI-style oscillator, 0-100
	ROC     float64   `json:"roc"`      // percentage rate of change
}

// CycleStatus is the per-cycle observability record: the latest price and
// indicator values for a symbol, emitted regardless of signal outcome.
type CycleStatus struct {
	Symbol  string    `json:"symbol"`
	TS      time.Time `json:"ts"`
	Price   float64   `json:"price"`
	EMAFast float64   `json:"ema_fast"`
	EMASlow float64   `json:"ema_slow"`
	Osc     float64   `json:"osc"`
	ROC     float64   `json:"roc"`
}

// JSON returns the JSON-encoded status (ignoring errors for hot-path usage).
func (s *CycleStatus) JSON() []byte {
	b, _ := json.Marshal(s)
	return b
}
