// Package sim provides a synthetic random-walk candle source for running the
// simulator without exchange access. It is a drop-in replacement for the
// Bybit client behind model.CandleSource.
package sim

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"papertrader/internal/model"
)

// Config holds configuration for the synthetic source.
type Config struct {
	// StartPrice is the initial price for every symbol. Defaults to 100.
	StartPrice float64

	// StepPct is the maximum percentage move per bar. Defaults to 0.5.
	StepPct float64

	// Seed seeds the random generator. Zero means time-based.
	Seed int64
}

func (c *Config) defaults() {
	if c.StartPrice == 0 {
		c.StartPrice = 100
	}
	if c.StepPct == 0 {
		c.StepPct = 0.5
	}
	if c.Seed == 0 {
		c.Seed = time.Now().UnixNano()
	}
}

// Source generates random-walk candles per symbol. The walk continues from
// the previous fetch so prices evolve across cycles. Safe for concurrent use.
type Source struct {
	mu   sync.Mutex
	cfg  Config
	rng  *rand.Rand
	last map[string]float64
}

// New creates a synthetic candle source.
func New(cfg Config) *Source {
	cfg.defaults()
	return &Source{
		cfg:  cfg,
		rng:  rand.New(rand.NewSource(cfg.Seed)),
		last: make(map[string]float64),
	}
}

// RecentCandles returns limit minute-aligned candles ending at the current
// minute, continuing each symbol's walk from its previous close.
func (s *Source) RecentCandles(_ context.Context, symbol string, limit int) ([]model.Candle, error) {
	if limit <= 0 {
		return nil, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	price, ok := s.last[symbol]
	if !ok {
		price = s.cfg.StartPrice
	}

	end := time.Now().UTC().Truncate(time.Minute)
	candles := make([]model.Candle, 0, limit)
	for i := limit - 1; i >= 0; i-- {
		open := price
		move := open * s.cfg.StepPct / 100 * (s.rng.Float64()*2 - 1)
		closing := open + move

		high, low := open, closing
		if closing > open {
			high = closing
			low = open
		}

		candles = append(candles, model.Candle{
			Symbol:   symbol,
			OpenTime: end.Add(-time.Duration(i) * time.Minute),
			Open:     open,
			High:     high,
			Low:      low,
			Close:    closing,
			Volume:   100 + s.rng.Float64()*900,
		})
		price = closing
	}

	s.last[symbol] = price
	return candles, nil
}
