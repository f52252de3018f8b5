package main

import (
	"context"
	"flag"
	"fmt"
	stdlog "log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	kitprometheus "github.com/go-kit/kit/metrics/prometheus"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"MarketLens/internal/analysis"
	"MarketLens/internal/api"
	"MarketLens/internal/cache"
	"MarketLens/internal/collector"
	"MarketLens/internal/config"
	"MarketLens/internal/model"
	"MarketLens/internal/notifier"
	"MarketLens/internal/predictor"
	"MarketLens/internal/scheduler"
)

var serviceVersion = "dev"

func main() {
	printVersion := flag.Bool("version", false, "print version and exit")
	cfgPath := flag.String("config", "configs/config.yaml", "path to the YAML config (CONFIG_PATH overrides)")
	flag.Parse()

	if *printVersion {
		fmt.Println(serviceVersion)
		os.Exit(0)
	}

	stdlog.SetFlags(stdlog.LstdFlags | stdlog.Lshortfile)
	stdlog.Println("[INFO] MarketLens starting...")

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		stdlog.Printf("[WARN] load .env: %v", err)
	}

	// Load config
	path := *cfgPath
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}
	cfg, err := config.Load(path)
	if err != nil {
		stdlog.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		stdlog.Fatalf("[FATAL] config validation: %v", err)
	}

	logger := newLogger(cfg.Server.LogLevel)
	_ = level.Info(logger).Log("msg", "initializing", "version", serviceVersion, "config", path)

	// Init fetcher
	var fetcher collector.Fetcher
	switch cfg.DataSource.Provider {
	case "backend":
		fetcher = collector.NewBackendFetcher(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy, cfg.DataSource.Timeout)
	case "yahoo":
		fetcher = collector.NewYahooFetcher(cfg.Proxy, cfg.DataSource.Timeout)
	default:
		fetcher = &collector.MockFetcher{}
		stdlog.Println("[WARN] using generated mock prices")
	}
	stdlog.Printf("[INFO] data source: %s", fetcher.Name())

	// Init cache
	barCache := openCache(cfg.Cache)
	defer barCache.Close()

	col := collector.NewCollector(fetcher, barCache)

	// Init predictor
	var pp predictor.PricePredictor
	if cfg.Predictor.Model == "trend" {
		pp = predictor.NewTrend(cfg.Predictor.TrendLookback, cfg.Predictor.TrendHorizon)
	} else {
		pp = predictor.NewRandomWalk(cfg.Predictor.Volatility, cfg.Predictor.Seed)
	}
	stdlog.Printf("[INFO] predictor: %s", pp.Name())

	// Init analysis service
	defaultPeriod, _ := model.ParsePeriod(cfg.DataSource.DefaultPeriod)
	svc := analysis.NewService(col, cfg.Indicators, pp, defaultPeriod)
	svc = analysis.NewLoggingMiddleware(logger, svc)
	svc = analysis.NewInstrumentingMiddleware(
		kitprometheus.NewCounterFrom(prometheus.CounterOpts{
			Namespace: "marketlens",
			Subsystem: "analysis",
			Name:      "request_count",
			Help:      "Number of analysis requests received.",
		}, analysis.MethodError),
		kitprometheus.NewSummaryFrom(prometheus.SummaryOpts{
			Namespace: "marketlens",
			Subsystem: "analysis",
			Name:      "request_duration_seconds",
			Help:      "Analysis request duration in seconds.",
		}, analysis.MethodError),
		svc,
	)

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init Telegram notifier
	var sender scheduler.Sender
	var tn *notifier.TelegramNotifier
	if cfg.Telegram.Enabled() {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		sender = tn
	} else {
		stdlog.Println("[INFO] telegram not configured, digests will be logged")
	}

	// Init scheduler
	period, _ := model.ParsePeriod(cfg.Schedule.Period)
	sched := scheduler.NewScheduler(ctx, svc, sender, scheduler.Options{
		Symbols:    cfg.Schedule.Symbols,
		Period:     period,
		Workers:    cfg.Schedule.Workers,
		MaxRetries: cfg.Telegram.MaxRetries,
	})
	if err := sched.Register(cfg.Schedule.RefreshCron); err != nil {
		stdlog.Fatalf("[FATAL] register cron tasks: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	// Start Telegram polling
	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		stdlog.Println("[INFO] Telegram polling started")
	}

	if os.Getenv("RUN_ON_START") == "true" && len(cfg.Schedule.Symbols) > 0 {
		stdlog.Println("[INFO] RUN_ON_START enabled, refreshing watch list now")
		go sched.RunRefreshNow()
	}

	// Start HTTP server
	srv := api.NewServer(svc, api.Config{
		ReadTimeout:        cfg.Server.ReadTimeout,
		WriteTimeout:       cfg.Server.WriteTimeout,
		MaxRequestBodySize: cfg.Server.MaxRequestBodySize,
		MetricsSubsystem:   cfg.Server.MetricsSubsystem,
		Provider:           fetcher.Name(),
	}, logger)

	go func() {
		if err := srv.ListenAndServe(cfg.Server.Addr); err != nil {
			_ = level.Error(logger).Log("msg", "server run failure", "err", err)
			os.Exit(1)
		}
	}()

	stdlog.Println("[INFO] MarketLens is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh

	_ = level.Info(logger).Log("msg", "received signal, exiting", "signal", sig)
	if err := srv.Shutdown(); err != nil {
		_ = level.Error(logger).Log("msg", "server shutdown failure", "err", err)
	}
	cancel()
	stdlog.Println("[INFO] MarketLens stopped")
}

func newLogger(lvl string) log.Logger {
	logger := log.NewLogfmtLogger(log.NewSyncWriter(os.Stdout))
	logger = log.With(logger, "ts", log.DefaultTimestampUTC, "caller", log.DefaultCaller)

	var opt level.Option
	switch strings.ToLower(lvl) {
	case "debug":
		opt = level.AllowDebug()
	case "warn":
		opt = level.AllowWarn()
	case "error":
		opt = level.AllowError()
	default:
		opt = level.AllowInfo()
	}
	return level.NewFilter(logger, opt)
}

// openCache falls back to no caching when the configured store is unavailable.
func openCache(cfg config.CacheConfig) cache.BarCache {
	switch cfg.Driver {
	case "sqlite":
		if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0o755); err != nil {
			stdlog.Printf("[WARN] create cache dir: %v", err)
		}
		c, err := cache.NewSQLiteCache(cfg.SQLitePath, cfg.TTL)
		if err != nil {
			stdlog.Printf("[WARN] init sqlite cache failed, using noop: %v", err)
			return cache.NewNoopCache()
		}
		return c
	case "redis":
		c, err := cache.NewRedisCache(cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      cfg.TTL,
		})
		if err != nil {
			stdlog.Printf("[WARN] init redis cache failed, using noop: %v", err)
			return cache.NewNoopCache()
		}
		return c
	default:
		return cache.NewNoopCache()
	}
}

