// Package redis publishes cycle status and trade events to Redis for
// external consumers: status records go out on pub/sub only, trades are
// additionally appended to a capped stream per symbol. The account state
// itself is never stored; the simulator is process-lifetime only.
package redis

import (
	"context"
	"fmt"
	"log"
	"time"

	goredis "github.com/go-redis/redis/v8"

	"papertrader/internal/model"
)

const (
	// Stream trimming: plenty for a day of trades with headroom.
	tradeStreamMaxLen = 1000

	statusChannelPrefix = "pub:cycle:"
	tradeChannelPrefix  = "pub:trade:"
	tradeStreamPrefix   = "trades:"
)

// Config configures the Redis publisher.
type Config struct {
	Addr     string // Redis address, e.g. "localhost:6379"
	Password string
	DB       int
}

// Publisher implements model.StatusSink on top of Redis.
type Publisher struct {
	client *goredis.Client
}

// Client returns the underlying Redis client for health checks.
func (p *Publisher) Client() *goredis.Client { return p.client }

// New creates a new Publisher and pings the server.
func New(cfg Config) (*Publisher, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	log.Printf("[redis] connected to %s", cfg.Addr)
	return &Publisher{client: client}, nil
}

// PublishStatus publishes a cycle status record on the symbol's channel.
// Errors are logged, never propagated; a Redis outage must not stop cycles.
func (p *Publisher) PublishStatus(ctx context.Context, status model.CycleStatus) {
	ch := statusChannelPrefix + status.Symbol
	if err := p.client.Publish(ctx, ch, status.JSON()).Err(); err != nil {
		log.Printf("[redis] publish status %s: %v", status.Symbol, err)
	}
}

// PublishTrade appends the trade to the symbol's capped stream and publishes
// it on the trade channel in a single pipeline.
func (p *Publisher) PublishTrade(ctx context.Context, trade model.Trade) {
	data := trade.JSON()

	pipe := p.client.Pipeline()
	pipe.XAdd(ctx, &goredis.XAddArgs{
		Stream: tradeStreamPrefix + trade.Symbol,
		MaxLen: tradeStreamMaxLen,
		Approx: true,
		Values: map[string]interface{}{"data": string(data)},
	})
	pipe.Publish(ctx, tradeChannelPrefix+trade.Symbol, data)

	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("[redis] publish trade %s: %v", trade.Symbol, err)
	}
}

// Close closes the Redis connection.
func (p *Publisher) Close() error {
	return p.client.Close()
}
