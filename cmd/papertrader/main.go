package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"papertrader/config"
	"papertrader/internal/api"
	"papertrader/internal/indicator"
	"papertrader/internal/logger"
	"papertrader/internal/marketdata/bybit"
	"papertrader/internal/marketdata/sim"
	"papertrader/internal/metrics"
	"papertrader/internal/model"
	"papertrader/internal/notification"
	"papertrader/internal/paper"
	"papertrader/internal/portfolio"
	"papertrader/internal/ringbuf"
	"papertrader/internal/statusfeed"
	redisstore "papertrader/internal/store/redis"
	"papertrader/internal/strategy"
	"papertrader/internal/worker"
)

func main() {
	cfg := config.Load()
	log := logger.Init("papertrader", logger.ParseLevel(cfg.LogLevel))
	log.Info("starting",
		slog.Any("symbols", cfg.Symbols),
		slog.Duration("poll_interval", cfg.PollInterval),
		slog.Float64("initial_balance", cfg.InitialBalance),
		slog.String("market_source", cfg.MarketSource))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// ---- Metrics, health, status feed ----
	m := metrics.NewMetrics(prometheus.DefaultRegisterer)
	health := metrics.NewHealthStatus()
	health.SetSymbols(cfg.Symbols)

	feed := statusfeed.NewHub(log)
	history := ringbuf.NewHistory(cfg.StatusHistory)
	tracker := portfolio.NewTracker()
	srv := metrics.NewServer(cfg.MetricsAddr, health)
	srv.Handle("/ws", feed)

	// ---- Market data source ----
	var source model.CandleSource
	switch cfg.MarketSource {
	case "sim":
		source = sim.New(sim.Config{})
		log.Info("using synthetic market data")
	default:
		source = bybit.NewClient(bybit.Config{BaseURL: cfg.BybitBaseURL})
	}

	// ---- Trade journal ----
	if dir := filepath.Dir(cfg.SQLitePath); dir != "." {
		os.MkdirAll(dir, 0o755)
	}
	journal, err := paper.NewJournal(cfg.SQLitePath)
	if err != nil {
		log.Error("journal init failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer journal.Close()
	health.SetJournalOK(true)

	// ---- HTTP API ----
	srv.Handle("/api/v1/", api.NewRouter(api.Deps{
		Journal:   journal,
		History:   history,
		Portfolio: tracker,
		Logger:    log,
	}))
	srv.Start()

	// ---- Status sinks ----
	sinks := []model.StatusSink{feed, history, tracker}
	var rdb *redisstore.Publisher
	if cfg.RedisAddr != "" {
		health.SetRedisEnabled(true)
		rdb, err = redisstore.New(redisstore.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		if err != nil {
			log.Warn("redis init failed, continuing without redis",
				slog.String("error", err.Error()))
		} else {
			defer rdb.Close()
			health.SetRedisConnected(true)
			sinks = append(sinks, rdb)
		}
	}

	if rdb != nil {
		health.StartLivenessChecker(ctx, rdb.Client(), journal.DB(), 10*time.Second)
	} else {
		health.StartLivenessChecker(ctx, nil, journal.DB(), 10*time.Second)
	}

	// ---- Notifier ----
	var notifier notification.Notifier = notification.NewLogNotifier()
	if cfg.TelegramBotToken != "" && cfg.TelegramChatID != "" {
		notifier = notification.NewTelegramNotifier(cfg.TelegramBotToken, cfg.TelegramChatID)
		log.Info("telegram notifications enabled")
	}

	// ---- One worker per symbol ----
	g, gctx := errgroup.WithContext(ctx)
	for _, symbol := range cfg.Symbols {
		w := worker.New(
			worker.Config{
				Symbol:       symbol,
				PollInterval: cfg.PollInterval,
				CandleLimit:  cfg.CandleLimit,
			},
			worker.Deps{
				Source:   source,
				Account:  paper.NewAccount(symbol, cfg.InitialBalance),
				Engine:   indicator.NewEngine(indicator.DefaultConfig()),
				Rules:    strategy.DefaultRules(),
				Journal:  journal,
				Sinks:    sinks,
				Notifier: notifier,
				Metrics:  m,
				Logger:   log,
				OnCycle:  health.MarkCycle,
			},
		)
		g.Go(func() error {
			return w.Run(gctx)
		})
	}

	// ---- Wait for shutdown ----
	select {
	case sig := <-sigCh:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
		cancel()
	case <-gctx.Done():
	}

	if err := g.Wait(); err != nil {
		log.Error("worker group error", slog.String("error", err.Error()))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	srv.Stop(shutdownCtx)

	log.Info("stopped")
}
