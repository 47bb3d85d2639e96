package strategyobs

import (
	"context"
	"time"

	"nifty-options-bot/internal/interfaces"
	"nifty-options-bot/internal/logger"
	"nifty-options-bot/internal/metrics"
	"nifty-options-bot/internal/trace"
	"nifty-options-bot/internal/types"
)

type observableOrchestrator struct {
	orch interfaces.Orchestrator
	rec  *metrics.Recorder
}

var _ interfaces.Orchestrator = (*observableOrchestrator)(nil)

func Wrap(orch interfaces.Orchestrator, rec *metrics.Recorder) interfaces.Orchestrator {
	return &observableOrchestrator{orch: orch, rec: rec}
}

func (o *observableOrchestrator) Run(ctx context.Context) (*types.CycleResult, error) {
	ctx, span := trace.StartSpan(ctx, "strategy.Run")
	defer span.End()

	start := time.Now()
	logger.DebugSkip(ctx, 1, "Starting strategy cycle")

	result, err := o.orch.Run(ctx)
	o.rec.RecordLatency("cycle", time.Since(start).Seconds())
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Strategy cycle failed", err,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return nil, err
	}

	logger.InfoSkip(ctx, 1, "Strategy cycle completed",
		"status", result.Status,
		"signal", result.FinalSignal,
		"tier", result.Tier,
		"trades", len(result.Trades),
		"total_pnl", result.TotalPnL,
		"daily_pnl", result.DailyPnL,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return result, nil
}
