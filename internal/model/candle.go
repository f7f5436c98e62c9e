package model

import (
	"encoding/json"
	"time"
)

// Candle represents a single 1-minute OHLCV bar for one symbol.
// Prices are float64: the tracked spot pairs trade at sub-cent ticks.
// Sequences are ordered oldest to newest with unique OpenTime values.
type Candle struct {
	Symbol   string    `json:"symbol"`
	OpenTime time.Time `json:"open_time"` // bucket start time (UTC, minute-aligned)
	Open     float64   `json:"open"`
	High     float64   `json:"high"`
	Low      float64   `json:"low"`
	Close    float64   `json:"close"`
	Volume   float64   `json:"volume"`
}

// JSON returns the JSON-encoded candle (ignoring errors for hot-path usage).
func (c *Candle) JSON() []byte {
	b, _ := json.Marshal(c)
	return b
}
