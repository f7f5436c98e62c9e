package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment
// variables. A .env file in the working directory is loaded first if present.
type Config struct {
	// Trading
	Symbols        []string
	PollInterval   time.Duration
	CandleLimit    int
	InitialBalance float64

	// Market data: "bybit" for the live API, "sim" for the synthetic source
	MarketSource string
	BybitBaseURL string

	// Infrastructure
	SQLitePath    string
	MetricsAddr   string
	StatusHistory int // per-symbol cycle status records kept for the API
	RedisAddr     string // empty disables the Redis publisher
	RedisPassword string

	// Notifications (both empty falls back to the log notifier)
	TelegramBotToken string
	TelegramChatID   string

	LogLevel string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	// Ignore missing .env; environment variables alone are fine.
	_ = godotenv.Load()

	return &Config{
		Symbols:        splitCSV(getEnv("SYMBOLS", "OBTUSDT,PLUMEUSDT")),
		PollInterval:   getDuration("POLL_INTERVAL", time.Minute),
		CandleLimit:    getInt("CANDLE_LIMIT", 20),
		InitialBalance: getFloat("INITIAL_BALANCE", 500),

		MarketSource: getEnv("MARKET_SOURCE", "bybit"),
		BybitBaseURL: getEnv("BYBIT_BASE_URL", ""),

		SQLitePath:    getEnv("SQLITE_PATH", "data/trades.db"),
		MetricsAddr:   getEnv("METRICS_ADDR", ":9090"),
		StatusHistory: getInt("STATUS_HISTORY", 256),
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		TelegramBotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramChatID:   getEnv("TELEGRAM_CHAT_ID", ""),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// splitCSV splits a comma-separated list, trimming blanks.
func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

func getEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Printf("[config] invalid %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func getFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f <= 0 {
		log.Printf("[config] invalid %s=%q, using %g", key, v, fallback)
		return fallback
	}
	return f
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		log.Printf("[config] invalid %s=%q, using %s", key, v, fallback)
		return fallback
	}
	return d
}
