// Package metrics exposes Prometheus metrics and a health endpoint for the
// simulator.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all Prometheus metrics for the trading simulator.
type Metrics struct {
	CyclesTotal   *prometheus.CounterVec // labels: symbol
	FetchFailures *prometheus.CounterVec // labels: symbol
	SkippedCycles *prometheus.CounterVec // labels: symbol, reason
	SignalsTotal  *prometheus.CounterVec // labels: symbol, action
	TradesTotal   *prometheus.CounterVec // labels: symbol, side

	AccountBalance *prometheus.GaugeVec // labels: symbol
	PositionOpen   *prometheus.GaugeVec // labels: symbol (0/1)
	LastPrice      *prometheus.GaugeVec // labels: symbol
	RealizedPnL    *prometheus.GaugeVec // labels: symbol (cumulative, signed)

	FetchDur   prometheus.Histogram
	ComputeDur prometheus.Histogram
}

// NewMetrics creates and registers all metrics with reg. Pass
// prometheus.DefaultRegisterer in main; tests use a fresh registry to avoid
// duplicate registration across cases.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		CyclesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "papertrader_cycles_total",
			Help: "Total worker cycles started (including skipped ones)",
		}, []string{"symbol"}),
		FetchFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "papertrader_fetch_failures_total",
			Help: "Candle fetches that failed or returned no data",
		}, []string{"symbol"}),
		SkippedCycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "papertrader_skipped_cycles_total",
			Help: "Cycles skipped before signal evaluation (by reason)",
		}, []string{"symbol", "reason"}),
		SignalsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "papertrader_signals_total",
			Help: "Non-none signals detected (by action)",
		}, []string{"symbol", "action"}),
		TradesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "papertrader_trades_total",
			Help: "Simulated fills executed (by side)",
		}, []string{"symbol", "side"}),

		AccountBalance: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "papertrader_account_balance",
			Help: "Current cash balance of the simulated account",
		}, []string{"symbol"}),
		PositionOpen: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "papertrader_position_open",
			Help: "1 while the account holds a position, 0 while flat",
		}, []string{"symbol"}),
		LastPrice: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "papertrader_last_price",
			Help: "Latest close price observed for the symbol",
		}, []string{"symbol"}),
		RealizedPnL: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "papertrader_realized_pnl",
			Help: "Cumulative realized profit and loss",
		}, []string{"symbol"}),

		FetchDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "papertrader_fetch_duration_seconds",
			Help:    "Candle fetch latency",
			Buckets: prometheus.DefBuckets,
		}),
		ComputeDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "papertrader_compute_duration_seconds",
			Help:    "Indicator computation latency",
			Buckets: prometheus.ExponentialBuckets(0.00001, 4, 8),
		}),
	}

	reg.MustRegister(
		m.CyclesTotal,
		m.FetchFailures,
		m.SkippedCycles,
		m.SignalsTotal,
		m.TradesTotal,
		m.AccountBalance,
		m.PositionOpen,
		m.LastPrice,
		m.RealizedPnL,
		m.FetchDur,
		m.ComputeDur,
	)
	return m
}
