package indicator

import (
	"errors"

	"papertrader/internal/model"
)

// ErrInsufficientData is returned when the input sequence is empty or too
// short for any indicator row to be defined. Callers skip the cycle and
// retry on the next poll; not a fatal condition.
var ErrInsufficientData = errors.New("indicator: insufficient data")

// Config specifies the indicator parameters used to build snapshots.
type Config struct {
	EMAFastSpan int // short exponential moving average span
	EMASlowSpan int // long exponential moving average span
	OscPeriod   int // RSI-style oscillator period
	ROCLookback int // rate-of-change lookback
}

// DefaultConfig returns the fixed policy parameters: EMA 5/10, RSI 7, ROC 5.
func DefaultConfig() Config {
	return Config{
		EMAFastSpan: 5,
		EMASlowSpan: 10,
		OscPeriod:   7,
		ROCLookback: 5,
	}
}

// Engine derives indicator snapshots from an ordered candle sequence.
// Engines are stateless between calls and safe to share read-only, but each
// Compute builds fresh indicator instances, so a single engine per worker
// is the expected usage.
type Engine struct {
	cfg Config
}

// NewEngine creates an indicator engine with the given parameters.
func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// Compute runs all indicators over candles (oldest to newest) and returns one
// snapshot per candle once every indicator has warmed up. With the default
// parameters the first snapshot corresponds to candle index
// max(EMASlowSpan, OscPeriod+1) - 1 = 9.
//
// Returns ErrInsufficientData if candles is empty or no snapshot is valid.
func (e *Engine) Compute(candles []model.Candle) ([]model.Snapshot, error) {
	if len(candles) == 0 {
		return nil, ErrInsufficientData
	}

	fast := NewEMA(e.cfg.EMAFastSpan)
	slow := NewEMA(e.cfg.EMASlowSpan)
	osc := NewRSI(e.cfg.OscPeriod)
	roc := NewROC(e.cfg.ROCLookback)

	snaps := make([]model.Snapshot, 0, len(candles))
	for i := range candles {
		c := &candles[i]
		fast.Update(c.Close)
		slow.Update(c.Close)
		osc.Update(c.Close)
		roc.Update(c.Close)

		if !fast.Ready() || !slow.Ready() || !osc.Ready() || !roc.Ready() {
			continue
		}
		snaps = append(snaps, model.Snapshot{
			TS:      c.OpenTime,
			Close:   c.Close,
			EMAFast: fast.Value(),
			EMASlow: slow.Value(),
			Osc:     osc.Value(),
			ROC:     roc.Value(),
		})
	}

	if len(snaps) == 0 {
		return nil, ErrInsufficientData
	}
	return snaps, nil
}
