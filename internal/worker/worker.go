// Package worker drives one symbol's poll, compute, decide, apply cycle.
//
// Each worker owns its account and indicator engine exclusively; the only
// shared collaborator is the read-only candle source. No error inside a
// cycle ever terminates the worker: failed cycles are logged, skipped, and
// retried on the next scheduled poll. Context cancellation is the single
// clean exit path.
package worker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"papertrader/internal/indicator"
	"papertrader/internal/logger"
	"papertrader/internal/metrics"
	"papertrader/internal/model"
	"papertrader/internal/notification"
	"papertrader/internal/paper"
	"papertrader/internal/strategy"
)

const (
	defaultPollInterval = time.Minute
	defaultCandleLimit  = 20

	skipReasonFetch        = "fetch_failure"
	skipReasonNoData       = "no_data"
	skipReasonInsufficient = "insufficient_data"
	skipReasonUnexpected   = "unexpected"
)

// Config holds per-worker settings.
type Config struct {
	Symbol       string
	PollInterval time.Duration // defaults to one candle period (60s)
	CandleLimit  int           // candles fetched per cycle, defaults to 20
}

// Deps are the worker's collaborators. Source, Account, Engine and Logger
// are required; the rest are optional observers.
type Deps struct {
	Source   model.CandleSource
	Account  *paper.Account
	Engine   *indicator.Engine
	Rules    strategy.Rules
	Journal  model.TradeRecorder
	Sinks    []model.StatusSink
	Notifier notification.Notifier
	Metrics  *metrics.Metrics
	Logger   *slog.Logger

	// OnCycle, if set, is called after every completed cycle (including
	// skipped ones). Used for health tracking.
	OnCycle func(symbol string)
}

// Worker runs the trading cycle for a single symbol.
type Worker struct {
	cfg  Config
	deps Deps
	log  *slog.Logger
}

// New creates a worker. Zero-valued optional config fields get defaults.
func New(cfg Config, deps Deps) *Worker {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	if cfg.CandleLimit <= 0 {
		cfg.CandleLimit = defaultCandleLimit
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.NewMetrics(prometheus.NewRegistry())
	}
	return &Worker{
		cfg:  cfg,
		deps: deps,
		log:  logger.ForSymbol(deps.Logger, cfg.Symbol),
	}
}

// Run executes cycles until ctx is cancelled. It always returns nil: errors
// inside a cycle are consumed by the retry policy, and cancellation is not
// an error.
func (w *Worker) Run(ctx context.Context) error {
	w.log.Info("worker started",
		slog.Float64("balance", w.deps.Account.Balance()),
		slog.Duration("poll_interval", w.cfg.PollInterval))

	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		w.cycle(ctx)
		select {
		case <-ctx.Done():
			w.log.Info("worker stopped")
			return nil
		case <-ticker.C:
		}
	}
}

// cycle runs one fetch, compute, decide, apply pass. Every exit path counts as
// a completed cycle for scheduling purposes; the next poll is the retry.
func (w *Worker) cycle(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			w.deps.Metrics.SkippedCycles.WithLabelValues(w.cfg.Symbol, skipReasonUnexpected).Inc()
			w.log.Error("cycle panicked", slog.Any("panic", r))
		}
		if w.deps.OnCycle != nil {
			w.deps.OnCycle(w.cfg.Symbol)
		}
	}()

	w.deps.Metrics.CyclesTotal.WithLabelValues(w.cfg.Symbol).Inc()

	fetchStart := time.Now()
	candles, err := w.deps.Source.RecentCandles(ctx, w.cfg.Symbol, w.cfg.CandleLimit)
	w.deps.Metrics.FetchDur.Observe(time.Since(fetchStart).Seconds())
	if err != nil {
		if ctx.Err() != nil {
			// Shutdown in progress, not a fetch failure.
			return
		}
		w.deps.Metrics.FetchFailures.WithLabelValues(w.cfg.Symbol).Inc()
		w.deps.Metrics.SkippedCycles.WithLabelValues(w.cfg.Symbol, skipReasonFetch).Inc()
		w.log.Warn("candle fetch failed", slog.String("error", err.Error()))
		return
	}
	if len(candles) == 0 {
		w.deps.Metrics.FetchFailures.WithLabelValues(w.cfg.Symbol).Inc()
		w.deps.Metrics.SkippedCycles.WithLabelValues(w.cfg.Symbol, skipReasonNoData).Inc()
		w.log.Warn("no candles returned")
		return
	}

	computeStart := time.Now()
	snaps, err := w.deps.Engine.Compute(candles)
	w.deps.Metrics.ComputeDur.Observe(time.Since(computeStart).Seconds())
	if err != nil {
		if errors.Is(err, indicator.ErrInsufficientData) {
			w.deps.Metrics.SkippedCycles.WithLabelValues(w.cfg.Symbol, skipReasonInsufficient).Inc()
			w.log.Debug("insufficient data for indicators", slog.Int("candles", len(candles)))
		} else {
			w.deps.Metrics.SkippedCycles.WithLabelValues(w.cfg.Symbol, skipReasonUnexpected).Inc()
			w.log.Error("indicator computation failed", slog.String("error", err.Error()))
		}
		return
	}

	action := strategy.ActionNone
	if len(snaps) >= 2 {
		action = w.deps.Rules.Evaluate(snaps[len(snaps)-2], snaps[len(snaps)-1])
	} else {
		w.log.Debug("not enough snapshots for signal", slog.Int("snapshots", len(snaps)))
	}

	last := snaps[len(snaps)-1]
	if action != strategy.ActionNone {
		w.deps.Metrics.SignalsTotal.WithLabelValues(w.cfg.Symbol, string(action)).Inc()
	}

	if trade := w.deps.Account.Apply(action, last.Close, last.TS); trade != nil {
		w.recordTrade(ctx, trade)
	}

	w.emitStatus(ctx, last)
}

// recordTrade fans a fill out to the journal, metrics, notifier and sinks.
func (w *Worker) recordTrade(ctx context.Context, trade *model.Trade) {
	if trade.Side == model.SideBuy {
		w.log.Info("buy order",
			slog.Float64("price", trade.Price),
			slog.Float64("qty", trade.Qty),
			slog.Float64("invested", trade.Amount))
	} else {
		w.log.Info("sell order",
			slog.Float64("price", trade.Price),
			slog.Float64("profit", trade.Profit),
			slog.Float64("balance", trade.Balance))
	}

	m := w.deps.Metrics
	m.TradesTotal.WithLabelValues(trade.Symbol, string(trade.Side)).Inc()
	m.AccountBalance.WithLabelValues(trade.Symbol).Set(trade.Balance)
	if trade.Side == model.SideBuy {
		m.PositionOpen.WithLabelValues(trade.Symbol).Set(1)
	} else {
		m.PositionOpen.WithLabelValues(trade.Symbol).Set(0)
		m.RealizedPnL.WithLabelValues(trade.Symbol).Add(trade.Profit)
	}

	if w.deps.Journal != nil {
		if err := w.deps.Journal.RecordTrade(*trade); err != nil {
			w.log.Error("journal write failed", slog.String("error", err.Error()))
		}
	}
	for _, sink := range w.deps.Sinks {
		sink.PublishTrade(ctx, *trade)
	}
	if w.deps.Notifier != nil {
		if err := w.deps.Notifier.Send(ctx, notification.TradeAlert(*trade)); err != nil {
			w.log.Warn("trade notification failed", slog.String("error", err.Error()))
		}
	}
}

// emitStatus publishes the cycle status record regardless of signal outcome.
func (w *Worker) emitStatus(ctx context.Context, last model.Snapshot) {
	w.log.Info("cycle status",
		slog.Float64("price", last.Close),
		slog.Float64("ema_fast", last.EMAFast),
		slog.Float64("ema_slow", last.EMASlow),
		slog.Float64("osc", last.Osc),
		slog.Float64("roc", last.ROC))

	w.deps.Metrics.LastPrice.WithLabelValues(w.cfg.Symbol).Set(last.Close)

	status := model.CycleStatus{
		Symbol:  w.cfg.Symbol,
		TS:      last.TS,
		Price:   last.Close,
		EMAFast: last.EMAFast,
		EMASlow: last.EMASlow,
		Osc:     last.Osc,
		ROC:     last.ROC,
	}
	for _, sink := range w.deps.Sinks {
		sink.PublishStatus(ctx, status)
	}
}
