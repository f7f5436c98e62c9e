package model

import "context"

// These interfaces decouple the worker loop from concrete collaborators
// (exchange REST client, SQLite journal, Redis publisher, WebSocket feed).

// CandleSource supplies recent 1-minute candles for a symbol, ordered
// oldest to newest. Implementations must be safe for concurrent use: every
// symbol worker shares a single source.
type CandleSource interface {
	// RecentCandles fetches up to limit candles ending at the newest
	// available bar. An empty slice with a nil error means no data.
	RecentCandles(ctx context.Context, symbol string, limit int) ([]Candle, error)
}

// TradeRecorder persists simulated fills for audit.
type TradeRecorder interface {
	RecordTrade(trade Trade) error

	// Close releases underlying resources.
	Close() error
}

// StatusSink receives per-cycle status records and trade events.
// Implementations must not block the worker: slow consumers drop.
type StatusSink interface {
	PublishStatus(ctx context.Context, status CycleStatus)
	PublishTrade(ctx context.Context, trade Trade)
}
