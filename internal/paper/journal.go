package paper

import (
	"database/sql"
	"log"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"papertrader/internal/model"
)

// Journal persists simulated fills to SQLite for analysis and audit.
// It implements model.TradeRecorder.
type Journal struct {
	mu sync.Mutex
	db *sql.DB
}

// NewJournal opens (or creates) a SQLite journal database.
func NewJournal(dbPath string) (*Journal, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal=WAL&_sync=NORMAL")
	if err != nil {
		return nil, err
	}

	schema := `
	CREATE TABLE IF NOT EXISTS trades (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		symbol      TEXT NOT NULL,
		side        TEXT NOT NULL,
		price       REAL NOT NULL,
		qty         REAL NOT NULL,
		amount      REAL NOT NULL,
		profit      REAL DEFAULT 0,
		balance     REAL NOT NULL,
		executed_at DATETIME NOT NULL,
		created_at  DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_trades_symbol ON trades(symbol);
	CREATE INDEX IF NOT EXISTS idx_trades_executed_at ON trades(executed_at);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}

	log.Printf("[journal] opened trade journal at %s", dbPath)
	return &Journal{db: db}, nil
}

// DB returns the underlying database handle for health checks.
func (j *Journal) DB() *sql.DB { return j.db }

// RecordTrade persists a trade to the journal.
func (j *Journal) RecordTrade(trade model.Trade) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	_, err := j.db.Exec(
		`INSERT INTO trades (symbol, side, price, qty, amount, profit, balance, executed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		trade.Symbol,
		string(trade.Side),
		trade.Price,
		trade.Qty,
		trade.Amount,
		trade.Profit,
		trade.Balance,
		trade.At.Format(time.RFC3339),
	)
	return err
}

// TradeRecord represents a row from the trades table.
type TradeRecord struct {
	ID         int64   `json:"id"`
	Symbol     string  `json:"symbol"`
	Side       string  `json:"side"`
	Price      float64 `json:"price"`
	Qty        float64 `json:"qty"`
	Amount     float64 `json:"amount"`
	Profit     float64 `json:"profit"`
	Balance    float64 `json:"balance"`
	ExecutedAt string  `json:"executed_at"`
}

// GetTrades returns the last N trades, newest first.
func (j *Journal) GetTrades(limit int) ([]TradeRecord, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	rows, err := j.db.Query(
		`SELECT id, symbol, side, price, qty, amount, profit, balance, executed_at
		 FROM trades ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trades []TradeRecord
	for rows.Next() {
		var t TradeRecord
		if err := rows.Scan(&t.ID, &t.Symbol, &t.Side, &t.Price, &t.Qty,
			&t.Amount, &t.Profit, &t.Balance, &t.ExecutedAt); err != nil {
			continue
		}
		trades = append(trades, t)
	}
	return trades, nil
}

// Close closes the journal database.
func (j *Journal) Close() error {
	return j.db.Close()
}
