// Package bybit implements a market-data client for the Bybit v5 spot kline
// API. Only public endpoints are used; no authentication is required for
// candle history.
package bybit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"papertrader/internal/model"
)

const (
	defaultBaseURL = "https://api.bybit.com"
	defaultTimeout = 10 * time.Second

	// klineInterval is the candle period. The whole system operates on
	// 1-minute bars; the poll interval matches one candle period.
	klineInterval = "1"
)

// Config holds configuration for the Bybit client.
type Config struct {
	BaseURL string        // defaults to the production API host
	Timeout time.Duration // HTTP timeout, defaults to 10s
}

// Client fetches spot candles from Bybit. Safe for concurrent use by
// multiple symbol workers: http.Client serializes nothing and the client
// itself holds no mutable state.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Bybit market-data client.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// klineResponse mirrors the Bybit v5 market/kline envelope. Each row of
// result.list is [openTimeMs, open, high, low, close, volume, turnover],
// all string-encoded, newest first.
type klineResponse struct {
	RetCode int    `json:"retCode"`
	RetMsg  string `json:"retMsg"`
	Result  struct {
		Category string     `json:"category"`
		Symbol   string     `json:"symbol"`
		List     [][]string `json:"list"`
	} `json:"result"`
}

// RecentCandles fetches the last limit 1-minute candles for symbol and
// returns them oldest to newest.
func (c *Client) RecentCandles(ctx context.Context, symbol string, limit int) ([]model.Candle, error) {
	q := url.Values{}
	q.Set("category", "spot")
	q.Set("symbol", symbol)
	q.Set("interval", klineInterval)
	q.Set("limit", strconv.Itoa(limit))
	endpoint := c.baseURL + "/v5/market/kline?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("bybit: create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("bybit: kline %s: %w", symbol, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bybit: kline %s: unexpected status %d", symbol, resp.StatusCode)
	}

	var kr klineResponse
	if err := json.NewDecoder(resp.Body).Decode(&kr); err != nil {
		return nil, fmt.Errorf("bybit: kline %s: decode: %w", symbol, err)
	}
	if kr.RetCode != 0 {
		return nil, fmt.Errorf("bybit: kline %s: %s (retCode=%d)", symbol, kr.RetMsg, kr.RetCode)
	}

	// Reverse so the freshest candle comes last.
	rows := kr.Result.List
	candles := make([]model.Candle, 0, len(rows))
	for i := len(rows) - 1; i >= 0; i-- {
		candle, err := parseRow(symbol, rows[i])
		if err != nil {
			return nil, err
		}
		candles = append(candles, candle)
	}
	return candles, nil
}

func parseRow(symbol string, row []string) (model.Candle, error) {
	if len(row) < 6 {
		return model.Candle{}, fmt.Errorf("bybit: malformed kline row for %s: %d fields", symbol, len(row))
	}

	ms, err := strconv.ParseInt(row[0], 10, 64)
	if err != nil {
		return model.Candle{}, fmt.Errorf("bybit: kline %s: bad open time %q: %w", symbol, row[0], err)
	}

	var vals [5]float64
	for i := 0; i < 5; i++ {
		v, err := strconv.ParseFloat(row[i+1], 64)
		if err != nil {
			return model.Candle{}, fmt.Errorf("bybit: kline %s: bad field %q: %w", symbol, row[i+1], err)
		}
		vals[i] = v
	}

	return model.Candle{
		Symbol:   symbol,
		OpenTime: time.UnixMilli(ms).UTC(),
		Open:     vals[0],
		High:     vals[1],
		Low:      vals[2],
		Close:    vals[3],
		Volume:   vals[4],
	}, nil
}
