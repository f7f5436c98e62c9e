package worker

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"sync"
	"testing"
	"time"

	"papertrader/internal/indicator"
	"papertrader/internal/model"
	"papertrader/internal/paper"
	"papertrader/internal/strategy"
)

// scriptedSource replays a fixed sequence of responses, one per call.
type scriptedSource struct {
	mu        sync.Mutex
	responses []scriptedResponse
	calls     int
}

type scriptedResponse struct {
	candles []model.Candle
	err     error
}

func (s *scriptedSource) RecentCandles(_ context.Context, _ string, _ int) ([]model.Candle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.calls >= len(s.responses) {
		return nil, errors.New("script exhausted")
	}
	resp := s.responses[s.calls]
	s.calls++
	return resp.candles, resp.err
}

// recordingSink captures everything published to it.
type recordingSink struct {
	mu       sync.Mutex
	statuses []model.CycleStatus
	trades   []model.Trade
}

func (r *recordingSink) PublishStatus(_ context.Context, s model.CycleStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses = append(r.statuses, s)
}

func (r *recordingSink) PublishTrade(_ context.Context, t model.Trade) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.trades = append(r.trades, t)
}

func candlesFromCloses(symbol string, closes []float64) []model.Candle {
	base := time.Date(2026, 2, 25, 10, 0, 0, 0, time.UTC)
	out := make([]model.Candle, len(closes))
	for i, c := range closes {
		out[i] = model.Candle{
			Symbol:   symbol,
			OpenTime: base.Add(time.Duration(i) * time.Minute),
			Open:     c,
			High:     c,
			Low:      c,
			Close:    c,
			Volume:   1,
		}
	}
	return out
}

// downThenUp falls one point per minute for 14 candles, then recovers in
// 2.5-point steps. The recovery drives the fast EMA back above the slow one
// on the final candle.
func downThenUp() []float64 {
	closes := make([]float64, 0, 18)
	for i := 0; i < 14; i++ {
		closes = append(closes, 100-float64(i))
	}
	for k := 1; k <= 4; k++ {
		closes = append(closes, 87+2.5*float64(k))
	}
	return closes
}

// upThenDown is the mirrored shape: a rally followed by a slide that pushes
// the fast EMA below the slow one on the final candle.
func upThenDown() []float64 {
	closes := make([]float64, 0, 18)
	for i := 0; i < 14; i++ {
		closes = append(closes, 100+float64(i))
	}
	for k := 1; k <= 4; k++ {
		closes = append(closes, 113-2.5*float64(k))
	}
	return closes
}

// openRules keeps the crossover requirement but widens the oscillator and
// momentum gates so the shaped test series trigger deterministically.
func openRules() strategy.Rules {
	return strategy.Rules{OscBuyBelow: 100, OscSellAbove: 0, ROCBuyAbove: 1, ROCSellBelow: -1}
}

func newTestWorker(symbol string, src model.CandleSource, acct *paper.Account, rules strategy.Rules, sink *recordingSink) *Worker {
	return New(
		Config{Symbol: symbol, CandleLimit: 20},
		Deps{
			Source:  src,
			Account: acct,
			Engine:  indicator.NewEngine(indicator.DefaultConfig()),
			Rules:   rules,
			Sinks:   []model.StatusSink{sink},
			Logger:  slog.Default(),
		},
	)
}

func assertClose(t *testing.T, got, want float64, msg string) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("%s: got %v, want %v", msg, got, want)
	}
}

func TestWorker_BuyThenSellRoundTrip(t *testing.T) {
	buySeries := candlesFromCloses("OBTUSDT", downThenUp())
	sellSeries := candlesFromCloses("OBTUSDT", upThenDown())

	src := &scriptedSource{responses: []scriptedResponse{
		{candles: buySeries},
		{candles: sellSeries},
	}}
	sink := &recordingSink{}
	acct := paper.NewAccount("OBTUSDT", 500)
	w := newTestWorker("OBTUSDT", src, acct, openRules(), sink)

	ctx := context.Background()
	w.cycle(ctx)

	if !acct.InPosition() {
		t.Fatal("expected open position after buy cycle")
	}
	if len(sink.trades) != 1 {
		t.Fatalf("got %d trades after buy cycle, want 1", len(sink.trades))
	}
	buy := sink.trades[0]
	if buy.Side != model.SideBuy {
		t.Errorf("first trade side = %v, want BUY", buy.Side)
	}
	assertClose(t, buy.Price, 97.0, "buy fill price")
	assertClose(t, buy.Qty, 500.0/97.0, "buy qty")

	w.cycle(ctx)

	if acct.InPosition() {
		t.Fatal("expected flat account after sell cycle")
	}
	if len(sink.trades) != 2 {
		t.Fatalf("got %d trades after sell cycle, want 2", len(sink.trades))
	}
	sell := sink.trades[1]
	if sell.Side != model.SideSell {
		t.Errorf("second trade side = %v, want SELL", sell.Side)
	}
	assertClose(t, sell.Price, 103.0, "sell fill price")
	assertClose(t, acct.Balance(), 530.9278350515465, "balance after round trip")
	assertClose(t, sell.Profit, 30.927835051546392, "realized profit")

	// One status record per successful cycle.
	if len(sink.statuses) != 2 {
		t.Errorf("got %d status records, want 2", len(sink.statuses))
	}
}

func TestWorker_NoSignalNoTrade(t *testing.T) {
	// A flat series never produces a crossover.
	closes := make([]float64, 20)
	for i := range closes {
		closes[i] = 100
	}
	src := &scriptedSource{responses: []scriptedResponse{
		{candles: candlesFromCloses("OBTUSDT", closes)},
	}}
	sink := &recordingSink{}
	acct := paper.NewAccount("OBTUSDT", 500)
	w := newTestWorker("OBTUSDT", src, acct, openRules(), sink)

	w.cycle(context.Background())

	if len(sink.trades) != 0 {
		t.Errorf("got %d trades, want 0", len(sink.trades))
	}
	if len(sink.statuses) != 1 {
		t.Errorf("got %d status records, want 1", len(sink.statuses))
	}
	assertClose(t, acct.Balance(), 500, "balance unchanged")
}

func TestWorker_FetchFailureThenRecovery(t *testing.T) {
	src := &scriptedSource{responses: []scriptedResponse{
		{err: errors.New("connection reset")},
		{candles: candlesFromCloses("OBTUSDT", downThenUp())},
	}}
	sink := &recordingSink{}
	acct := paper.NewAccount("OBTUSDT", 500)

	var cycles []string
	w := New(
		Config{Symbol: "OBTUSDT"},
		Deps{
			Source:  src,
			Account: acct,
			Engine:  indicator.NewEngine(indicator.DefaultConfig()),
			Rules:   openRules(),
			Sinks:   []model.StatusSink{sink},
			Logger:  slog.Default(),
			OnCycle: func(symbol string) { cycles = append(cycles, symbol) },
		},
	)

	ctx := context.Background()
	w.cycle(ctx)

	// Failed cycle emits nothing but still counts for liveness.
	if len(sink.statuses) != 0 {
		t.Errorf("got %d status records after failed fetch, want 0", len(sink.statuses))
	}
	if len(cycles) != 1 {
		t.Errorf("got %d OnCycle calls, want 1", len(cycles))
	}

	w.cycle(ctx)

	if len(sink.trades) != 1 {
		t.Fatalf("got %d trades after recovery, want 1", len(sink.trades))
	}
	if sink.trades[0].Side != model.SideBuy {
		t.Errorf("trade side = %v, want BUY", sink.trades[0].Side)
	}
	if len(cycles) != 2 {
		t.Errorf("got %d OnCycle calls, want 2", len(cycles))
	}
}

func TestWorker_InsufficientDataSkips(t *testing.T) {
	src := &scriptedSource{responses: []scriptedResponse{
		{candles: candlesFromCloses("OBTUSDT", []float64{100, 101, 102})},
	}}
	sink := &recordingSink{}
	acct := paper.NewAccount("OBTUSDT", 500)
	w := newTestWorker("OBTUSDT", src, acct, openRules(), sink)

	w.cycle(context.Background())

	if len(sink.statuses) != 0 {
		t.Errorf("got %d status records, want 0", len(sink.statuses))
	}
	if len(sink.trades) != 0 {
		t.Errorf("got %d trades, want 0", len(sink.trades))
	}
}

func TestWorker_IndependentAccounts(t *testing.T) {
	// One symbol's source keeps failing; the other trades normally.
	failing := &scriptedSource{responses: []scriptedResponse{
		{err: errors.New("timeout")},
		{err: errors.New("timeout")},
	}}
	healthy := &scriptedSource{responses: []scriptedResponse{
		{candles: candlesFromCloses("PLUMEUSDT", downThenUp())},
		{candles: candlesFromCloses("PLUMEUSDT", upThenDown())},
	}}

	sinkA, sinkB := &recordingSink{}, &recordingSink{}
	acctA := paper.NewAccount("OBTUSDT", 500)
	acctB := paper.NewAccount("PLUMEUSDT", 500)
	wa := newTestWorker("OBTUSDT", failing, acctA, openRules(), sinkA)
	wb := newTestWorker("PLUMEUSDT", healthy, acctB, openRules(), sinkB)

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		wa.cycle(ctx)
		wb.cycle(ctx)
	}

	assertClose(t, acctA.Balance(), 500, "failing symbol balance untouched")
	if acctA.InPosition() {
		t.Error("failing symbol opened a position")
	}

	assertClose(t, acctB.Balance(), 530.9278350515465, "healthy symbol round trip")
	if len(sinkB.trades) != 2 {
		t.Errorf("healthy symbol recorded %d trades, want 2", len(sinkB.trades))
	}
	if len(sinkA.trades) != 0 {
		t.Errorf("failing symbol recorded %d trades, want 0", len(sinkA.trades))
	}
}

func TestWorker_RunStopsOnCancel(t *testing.T) {
	src := &scriptedSource{responses: []scriptedResponse{
		{candles: candlesFromCloses("OBTUSDT", downThenUp())},
	}}
	sink := &recordingSink{}
	acct := paper.NewAccount("OBTUSDT", 500)
	w := newTestWorker("OBTUSDT", src, acct, openRules(), sink)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Let the first cycle land, then cancel.
	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned %v, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}

	if len(sink.trades) != 1 {
		t.Errorf("got %d trades, want 1", len(sink.trades))
	}
}
