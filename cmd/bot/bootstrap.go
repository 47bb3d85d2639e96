package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"nifty-options-bot/internal/broker/brokerobs"
	"nifty-options-bot/internal/broker/kite"
	"nifty-options-bot/internal/broker/paper"
	"nifty-options-bot/internal/eod"
	"nifty-options-bot/internal/eod/eodobs"
	"nifty-options-bot/internal/features"
	"nifty-options-bot/internal/interfaces"
	"nifty-options-bot/internal/ledger"
	"nifty-options-bot/internal/logger"
	"nifty-options-bot/internal/metrics"
	"nifty-options-bot/internal/model"
	"nifty-options-bot/internal/persistence"
	"nifty-options-bot/internal/regime"
	"nifty-options-bot/internal/sentiment"
	"nifty-options-bot/internal/store"
	"nifty-options-bot/internal/strategy"
	"nifty-options-bot/internal/strategy/strategyobs"
	"nifty-options-bot/internal/trace"
	"nifty-options-bot/internal/tradelog"
)

const (
	settingAPIKey      = "kite_api_key"
	settingAccessToken = "kite_access_token"
)

// initializeSystem loads .env and starts logging and tracing.
func initializeSystem() error {
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if err := trace.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}
	return nil
}

func configPath() string {
	if v := os.Getenv("BOT_CONFIG"); v != "" {
		return v
	}
	return "config.yaml"
}

func loadConfig(ctx context.Context) (*store.Config, error) {
	cfg, err := store.LoadConfig(configPath())
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load config", err, "path", configPath())
		return nil, err
	}
	return cfg, nil
}

// compressOldLogs gzips journal files older than TRADER_LOG_RETENTION_DAYS.
func compressOldLogs(ctx context.Context, j *tradelog.Journal) {
	v := os.Getenv("TRADER_LOG_RETENTION_DAYS")
	if v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		logger.Warn(ctx, "Invalid TRADER_LOG_RETENTION_DAYS", "value", v)
		return
	}
	if err := j.CompressOlder(n); err != nil {
		logger.Warn(ctx, "Failed to compress old logs", "error", err)
	}
}

// credentials prefers the environment and remembers what it finds; otherwise
// it falls back to the last saved values.
func credentials(ctx context.Context, settings interfaces.SettingsStore) (apiKey, token string) {
	lookup := func(env, key string) string {
		if v := os.Getenv(env); v != "" {
			if err := settings.SaveSetting(ctx, key, v); err != nil {
				logger.Warn(ctx, "Failed to save setting", "key", key, "error", err)
			}
			return v
		}
		v, err := settings.GetSetting(ctx, key)
		if err != nil && !errors.Is(err, persistence.ErrSettingNotFound) {
			logger.Warn(ctx, "Failed to read setting", "key", key, "error", err)
		}
		return v
	}
	return lookup("KITE_API_KEY", settingAPIKey), lookup("KITE_ACCESS_TOKEN", settingAccessToken)
}

// initializeBroker picks the data source and venue. A LIVE source that cannot
// connect is a startup failure.
func initializeBroker(ctx context.Context, cfg *store.Config, settings interfaces.SettingsStore, rec *metrics.Recorder) (interfaces.MarketData, interfaces.OrderVenue, error) {
	if cfg.Mode == "DRY_RUN" {
		logger.Warn(ctx, "Running in DRY_RUN mode - orders will be simulated")
	}

	if cfg.DataSource != "LIVE" {
		logger.Info(ctx, "Using STATIC simulated market data")
		pp := paper.DefaultParams()
		pp.Underlying = cfg.Underlying
		pp.StrikesWindow = cfg.StrikesWindow
		pp.ExpiryWeekday = cfg.Expiry()
		pr := paper.New(pp)
		return brokerobs.WrapMarketData(pr, rec), brokerobs.WrapVenue(pr, rec), nil
	}

	apiKey, token := credentials(ctx, settings)
	client := kite.New(kite.Params{
		Mode:            cfg.Mode,
		APIKey:          apiKey,
		AccessToken:     token,
		Exchange:        cfg.Exchange,
		Underlying:      cfg.Underlying,
		UnderlyingQuote: cfg.UnderlyingQuote,
		UnderlyingToken: cfg.UnderlyingToken,
		ExpiryWeekday:   cfg.Expiry(),
		StrikesWindow:   cfg.StrikesWindow,
		HistoryDays:     cfg.HistoryDays,
		Timeout:         10 * time.Second,
	})
	sess, err := client.Connect(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to kite: %w", err)
	}
	logger.Info(ctx, "Connected to Kite", "user_id", sess.UserID, "user_name", sess.UserName)
	return brokerobs.WrapMarketData(client, rec), brokerobs.WrapVenue(client, rec), nil
}

func modelConfig(cfg *store.Config) model.Config {
	mc := model.DefaultConfig()
	mc.Threshold = cfg.Model.Threshold
	mc.MinTrainCandles = cfg.Model.MinTrainCandles
	mc.MinTrainRows = cfg.Model.MinTrainRows
	mc.MinPredictCandles = cfg.Model.MinPredictCandles
	mc.TestFraction = cfg.Model.TestFraction
	mc.Forest = model.ForestParams{
		Trees:    cfg.Model.Trees,
		MaxDepth: cfg.Model.MaxDepth,
		MinLeaf:  cfg.Model.MinLeaf,
		Seed:     cfg.Model.Seed,
	}
	mc.Features = featureParams(cfg)
	return mc
}

func featureParams(cfg *store.Config) features.Params {
	return features.Params{
		SupertrendLength:     cfg.Supertrend.Length,
		SupertrendMultiplier: cfg.Supertrend.Multiplier,
	}
}

// initializeStrategy wires the orchestrator with observability.
func initializeStrategy(cfg *store.Config, md interfaces.MarketData, venue interfaces.OrderVenue, trades interfaces.TradeStore, j *tradelog.Journal, rec *metrics.Recorder) interfaces.Orchestrator {
	s := strategy.New(strategy.Params{
		Underlying:      cfg.Underlying,
		HistoryInterval: cfg.HistoryInterval,
		LotSize:         cfg.LotSize,
		DailyTarget:     cfg.DailyTarget,
		Sentiment:       sentiment.Thresholds{Bullish: cfg.Sentiment.BullishPCR, Bearish: cfg.Sentiment.BearishPCR},
		Regime:          regime.Thresholds{FlatADX: cfg.Regime.FlatADX, ChoppyADX: cfg.Regime.ChoppyADX},
		Features:        featureParams(cfg),
	}, strategy.Deps{
		Market:    md,
		Venue:     venue,
		Trades:    trades,
		Ledger:    ledger.New(cfg.Capital, ledger.Costs{BrokeragePerOrder: cfg.Costs.BrokeragePerOrder, TaxRate: cfg.Costs.TaxRate}),
		Predictor: model.New(modelConfig(cfg)),
		Journal:   j,
		Metrics:   rec,
	})
	return strategyobs.Wrap(s, rec)
}

func initializeEOD(history interfaces.TradeHistory) interfaces.EodSummarizer {
	return eodobs.Wrap(eod.New(history, tradelog.LogDir()))
}

// initializeMetrics registers the recorder and, when enabled, serves /metrics.
func initializeMetrics(ctx context.Context, cfg *store.Config) (*metrics.Recorder, *http.Server) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	rec := metrics.New(reg)
	if !cfg.Metrics.Enabled {
		return rec, nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{Addr: cfg.Metrics.Addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.ErrorWithErr(ctx, "Metrics server stopped", err, "addr", cfg.Metrics.Addr)
		}
	}()
	logger.Info(ctx, "Serving metrics", "addr", cfg.Metrics.Addr)
	return rec, srv
}
