package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nifty-options-bot/internal/interfaces"
	"nifty-options-bot/internal/logger"
	"nifty-options-bot/internal/persistence"
	"nifty-options-bot/internal/trace"
	"nifty-options-bot/internal/tradelog"
)

func main() {
	if err := initializeSystem(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := run(); err != nil {
		logger.ErrorWithErr(context.Background(), "Bot exited with error", err)
		shutdown()
		os.Exit(1)
	}
	shutdown()
}

func shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = trace.Shutdown(ctx)
	_ = logger.Shutdown()
}

func run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	db, err := persistence.Open(ctx, cfg.Storage.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()

	rec, srv := initializeMetrics(ctx, cfg)
	if srv != nil {
		defer func() {
			sctx, scancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer scancel()
			_ = srv.Shutdown(sctx)
		}()
	}

	journal := tradelog.New("")
	compressOldLogs(ctx, journal)

	md, venue, err := initializeBroker(ctx, cfg, db, rec)
	if err != nil {
		return err
	}
	orch := initializeStrategy(cfg, md, venue, db, journal, rec)
	summarizer := initializeEOD(db)

	tick := time.NewTicker(cfg.PollInterval())
	defer tick.Stop()
	eodTick := time.NewTicker(60 * time.Second)
	defer eodTick.Stop()

	logger.Info(ctx, "Bot started",
		"mode", cfg.Mode,
		"data_source", cfg.DataSource,
		"underlying", cfg.Underlying,
		"poll_seconds", cfg.PollSeconds,
	)

	runCycle(ctx, orch)
	for {
		select {
		case <-tick.C:
			runCycle(ctx, orch)
		case <-eodTick.C:
			if ok, _ := summarizer.ShouldRunNow(); ok {
				_, _ = summarizer.SummarizeToday(ctx)
			}
		case <-ctx.Done():
			logger.Info(context.Background(), "Shutting down")
			// ctx is already cancelled; the final summary gets its own deadline
			ectx, ecancel := context.WithTimeout(context.Background(), 10*time.Second)
			_, _ = summarizer.SummarizeToday(ectx)
			ecancel()
			return nil
		}
	}
}

func runCycle(ctx context.Context, orch interfaces.Orchestrator) {
	res, err := orch.Run(ctx)
	if err != nil || res == nil {
		return
	}
	if logger.IsDebugEnabled() {
		b, _ := json.Marshal(res)
		logger.Debug(ctx, "Cycle result", "result", string(b))
	}
}
