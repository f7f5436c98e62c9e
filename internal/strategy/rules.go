// Package strategy classifies trading signals from indicator snapshots.
//
// The rules compare the two most recent snapshots: an EMA crossover gated by
// oscillator and rate-of-change thresholds. Buy and sell are mutually
// exclusive by construction: a crossover cannot occur in both directions
// between the same two samples.
package strategy

import "papertrader/internal/model"

// Action represents the trading decision for one cycle.
type Action string

const (
	ActionNone Action = "NONE"
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
)

// Rules holds the fixed entry/exit policy thresholds. All comparisons are
// strict: values exactly at a threshold never fire, and near-equal EMAs do
// not count as a crossover.
type Rules struct {
	OscBuyBelow  float64 // buy only while the oscillator is under this
	OscSellAbove float64 // sell only while the oscillator is over this
	ROCBuyAbove  float64 // buy only when ROC exceeds this (percent)
	ROCSellBelow float64 // sell only when ROC is under this (percent)
}

// DefaultRules returns the production thresholds: oscillator 40/60, ROC ±1%.
func DefaultRules() Rules {
	return Rules{
		OscBuyBelow:  40,
		OscSellAbove: 60,
		ROCBuyAbove:  1,
		ROCSellBelow: -1,
	}
}

// Evaluate classifies the signal from two consecutive snapshots.
//
// Buy: the fast EMA just crossed above the slow EMA while the oscillator is
// locally oversold and momentum is positive. Sell: the mirror image. The
// caller is responsible for ensuring prev precedes last; with fewer than two
// valid snapshots no evaluation happens and the cycle's signal is ActionNone.
func (r Rules) Evaluate(prev, last model.Snapshot) Action {
	if prev.EMAFast < prev.EMASlow && last.EMAFast > last.EMASlow &&
		last.Osc < r.OscBuyBelow && last.ROC > r.ROCBuyAbove {
		return ActionBuy
	}
	if prev.EMAFast > prev.EMASlow && last.EMAFast < last.EMASlow &&
		last.Osc > r.OscSellAbove && last.ROC < r.ROCSellBelow {
		return ActionSell
	}
	return ActionNone
}
