package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alejandrodnm/xtrader/config"
	"github.com/alejandrodnm/xtrader/internal/adapters/backend"
	"github.com/alejandrodnm/xtrader/internal/adapters/fallback"
	"github.com/alejandrodnm/xtrader/internal/adapters/metrics"
	"github.com/alejandrodnm/xtrader/internal/adapters/notify"
	"github.com/alejandrodnm/xtrader/internal/adapters/storage"
	"github.com/alejandrodnm/xtrader/internal/application/dashboard"
	"github.com/alejandrodnm/xtrader/internal/domain"
	"github.com/alejandrodnm/xtrader/internal/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	token := flag.String("token", "", "API token (overrides XTRADER_TOKEN)")
	userID := flag.String("user", "", "user id (overrides XTRADER_USER_ID)")
	market := flag.String("market", "", "market symbol, e.g. R_100")
	stake := flag.String("stake", "", "stake in USD, e.g. 10.00")
	once := flag.Bool("once", false, "refresh every poller once, print the dashboard and exit")
	showSignal := flag.Bool("signal", false, "fetch the signal for the market and exit")
	trade := flag.String("trade", "", "buy a contract: CALL|PUT|OVER|UNDER|ODD|EVEN")
	sell := flag.String("sell", "", "sell the contract with this id")
	history := flag.Bool("history", false, "print the recent trades from the journal and exit")
	botTemplate := flag.String("bot", "", "create and start a bot from a template (ema|rsi|martingale)")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	if *token != "" {
		cfg.Session.Token = *token
	}
	if *userID != "" {
		cfg.Session.UserID = *userID
	}
	if *market != "" {
		cfg.Trading.Market = *market
	}
	setupLogger(cfg.Log)

	startStake := cfg.Stake()
	if *stake != "" {
		startStake, err = decimal.NewFromString(*stake)
		if err != nil {
			slog.Error("invalid stake", "stake", *stake, "err", err)
			os.Exit(1)
		}
	}
	if _, ok := domain.LookupMarket(cfg.Trading.Market); !ok {
		slog.Error("unknown market", "market", cfg.Trading.Market)
		os.Exit(1)
	}

	slog.Info("xtrader starting",
		"config", *configPath,
		"api", cfg.API.BaseURL,
		"version", cfg.API.Version,
		"market", cfg.Trading.Market,
		"stake", startStake.StringFixed(2),
		"stream", cfg.Stream.Enabled,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var rec ports.Metrics = ports.NopMetrics{}
	if cfg.Metrics.Enabled {
		r := metrics.New(prometheus.NewRegistry())
		rec = r
		srv := serveMetrics(cfg.Metrics.Addr, r.Handler())
		defer srv.Shutdown(context.Background())
	}

	client := backend.NewClient(backend.Options{
		BaseURL:       cfg.API.BaseURL,
		Version:       cfg.API.Version,
		SignalVariant: cfg.API.SignalVariant,
		Timeout:       cfg.Timeout(),
		RatePerSec:    cfg.API.RatePerSec,
		Burst:         cfg.API.Burst,
		MaxRetries:    cfg.API.MaxRetries,
		Metrics:       rec,
	})

	journal, err := storage.NewSQLiteJournal(cfg.Storage.DSN)
	if err != nil {
		slog.Error("failed to open journal", "err", err, "dsn", cfg.Storage.DSN)
		os.Exit(1)
	}
	defer journal.Close()

	console := notify.NewConsole(cfg.Notify.Tables)

	seed := cfg.Fallback.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	deps := dashboard.Deps{
		Backend:  client,
		Fallback: fallback.New(seed),
		Notifier: console,
		Journal:  journal,
		Metrics:  rec,
	}
	// Stream solo en modo watch: los comandos de una pasada no lo necesitan.
	interactive := !*once && !*showSignal && *trade == "" && *sell == "" && !*history && *botTemplate == ""
	if cfg.Stream.Enabled && interactive {
		deps.Stream = backend.NewStream(backend.StreamOptions{
			BaseURL:      cfg.API.BaseURL,
			Version:      cfg.API.Version,
			PingInterval: cfg.PingInterval(),
		})
	}

	dash := dashboard.New(dashboard.Config{
		Market:            cfg.Trading.Market,
		Stake:             startStake,
		PriceInterval:     cfg.PriceInterval(),
		AccountInterval:   cfg.AccountInterval(),
		AnalyticsInterval: cfg.AnalyticsInterval(),
		CommunityInterval: cfg.CommunityInterval(),
		NotifyDismiss:     cfg.Dismiss(),
		// Los modos de una pasada no dejan pollers corriendo de fondo.
		ManualRefresh: *once || *trade != "" || *sell != "" || *botTemplate != "",
	}, deps)
	defer dash.Close()

	if *history {
		runHistory(ctx, dash, console)
		return
	}
	if *showSignal {
		runSignal(ctx, dash, console)
		return
	}

	// Todo lo demás necesita sesión.
	if err := dash.Login(ctx, cfg.Session.Token, cfg.Session.UserID); err != nil {
		slog.Error("login failed", "err", err)
		os.Exit(1)
	}

	switch {
	case *trade != "":
		exitOn(runTrade(ctx, dash, *trade))
	case *sell != "":
		exitOn(dash.SellContract(ctx, *sell))
	case *botTemplate != "":
		exitOn(runBot(ctx, dash, console, *botTemplate))
	case *once:
		runOnce(ctx, dash, console)
	default:
		runWatch(ctx, dash, console, cfg.PriceInterval())
	}

	slog.Info("xtrader stopped cleanly")
}

// loadConfig lee el YAML si existe. Sin archivo se usan entorno y defaults.
func loadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		slog.Debug("config file not found, using defaults", "path", path)
		return config.Default(), nil
	}
	return config.Load(path)
}

func serveMetrics(addr string, h http.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", h)
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		slog.Info("metrics listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics server failed", "err", err)
		}
	}()
	return srv
}

func exitOn(err error) {
	if err != nil {
		// El dashboard ya notificó el error; solo falta el exit code.
		os.Exit(1)
	}
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}
