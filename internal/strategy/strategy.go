// Package strategy runs the per-cycle decision: daily gate, data fetch,
// signals, confluence, position exits and entries, persistence.
package strategy

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"nifty-options-bot/internal/confluence"
	"nifty-options-bot/internal/features"
	"nifty-options-bot/internal/interfaces"
	"nifty-options-bot/internal/ledger"
	"nifty-options-bot/internal/logger"
	"nifty-options-bot/internal/metrics"
	"nifty-options-bot/internal/model"
	"nifty-options-bot/internal/regime"
	"nifty-options-bot/internal/sentiment"
	"nifty-options-bot/internal/tradelog"
	"nifty-options-bot/internal/types"
)

// ErrDataUnavailable marks a cycle that had no chain or history to act on.
var ErrDataUnavailable = errors.New("market data unavailable")

// Journal receives one entry per completed cycle.
type Journal interface {
	AppendDecision(e tradelog.DecisionEntry) error
}

type Params struct {
	Underlying      string
	HistoryInterval string
	LotSize         int
	DailyTarget     float64
	Sentiment       sentiment.Thresholds
	Regime          regime.Thresholds
	Features        features.Params
}

// Deps are the collaborators a Strategy drives. Journal and Metrics may be nil.
type Deps struct {
	Market    interfaces.MarketData
	Venue     interfaces.OrderVenue
	Trades    interfaces.TradeStore
	Ledger    *ledger.Ledger
	Predictor *model.Predictor
	Journal   Journal
	Metrics   *metrics.Recorder
}

type Strategy struct {
	mu      sync.Mutex
	p       Params
	market  interfaces.MarketData
	model   *model.Predictor
	ledger  *ledger.Ledger
	journal Journal
	rec     *metrics.Recorder
	risk    *riskManager
	exec    *orderExecutor
	now     func() time.Time
}

var _ interfaces.Orchestrator = (*Strategy)(nil)

func New(p Params, d Deps) *Strategy {
	return &Strategy{
		p:       p,
		market:  d.Market,
		model:   d.Predictor,
		ledger:  d.Ledger,
		journal: d.Journal,
		rec:     d.Metrics,
		risk:    newRiskManager(d.Trades, p.DailyTarget),
		exec:    newOrderExecutor(d.Venue, d.Trades, d.Ledger, d.Metrics),
		now:     time.Now,
	}
}

// cycle carries one pass's intermediate state.
type cycle struct {
	res    *types.CycleResult
	chain  types.Chain
	vec    features.Vector
	hasVec bool
	tier   confluence.Tier
	daily  float64
}

// Run executes one cycle. Cycles are serialized. Per-cycle failures degrade
// the result; the only error returned is a cancelled context.
func (s *Strategy) Run(ctx context.Context) (*types.CycleResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c := &cycle{res: &types.CycleResult{
		Time:         s.now(),
		MLSignal:     types.SignalNeutral,
		PCRSignal:    types.SignalNeutral,
		TrendSignal:  types.SignalNeutral,
		FinalSignal:  types.SignalNeutral,
		Regime:       types.RegimeUnknown,
		ModelTrained: s.model.Trained(),
	}}

	reached, daily, err := s.risk.targetReached(ctx)
	c.daily = daily
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		s.rec.RecordError("daily_pnl")
		logger.ErrorWithErr(ctx, "Daily PnL unavailable, skipping cycle", err)
		return s.finish(ctx, c, types.CycleNoData, "daily pnl unavailable: "+err.Error()), nil
	}
	if reached {
		logger.Risk(ctx, s.p.Underlying, "DAILY_TARGET_REACHED",
			"daily_realized_pnl", daily,
			"daily_target", s.p.DailyTarget,
		)
		return s.finish(ctx, c, types.CycleTargetReached, fmt.Sprintf("daily pnl %.2f >= target %.2f", daily, s.p.DailyTarget)), nil
	}

	history, err := s.fetch(ctx, c)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		logger.Warn(ctx, "No market data this cycle", "reason", err.Error())
		return s.finish(ctx, c, types.CycleNoData, err.Error()), nil
	}

	s.trainIfReady(ctx, c, history)
	s.signals(ctx, c, history)

	s.markPositions(ctx, c)
	s.exitPositions(ctx, c)
	s.enterPosition(ctx, c)

	return s.finish(ctx, c, types.CycleOK, ""), nil
}

// fetch loads the chain and the underlying's history; either being empty is
// ErrDataUnavailable.
func (s *Strategy) fetch(ctx context.Context, c *cycle) ([]types.Candle, error) {
	chain, err := s.market.FetchChain(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch chain: %v: %w", err, ErrDataUnavailable)
	}
	if chain.Empty() {
		return nil, fmt.Errorf("empty chain: %w", ErrDataUnavailable)
	}
	c.chain = chain
	c.res.Underlying = chain.Underlying

	history, err := s.market.FetchHistory(ctx, s.p.Underlying, s.p.HistoryInterval)
	if err != nil {
		return nil, fmt.Errorf("fetch history: %v: %w", err, ErrDataUnavailable)
	}
	if len(history) == 0 {
		return nil, fmt.Errorf("empty history: %w", ErrDataUnavailable)
	}
	return history, nil
}

// trainIfReady is best-effort; failure leaves the model untrained.
func (s *Strategy) trainIfReady(ctx context.Context, c *cycle, history []types.Candle) {
	if s.model.Trained() {
		return
	}
	op := logger.StartOperation(ctx, "model.Train", "candles", len(history))
	rep, err := s.model.Train(history)
	switch {
	case err != nil:
		s.rec.RecordError("train")
		op.EndWithError(err)
	case rep.Trained:
		op.End("rows", rep.Rows)
		logger.Info(ctx, "Model trained",
			"candles", rep.Candles,
			"rows", rep.Rows,
			"train_accuracy", rep.TrainAccuracy,
			"test_accuracy", rep.TestAccuracy,
		)
	default:
		op.End("skipped", rep.Reason)
	}
	c.res.ModelTrained = s.model.Trained()
	s.rec.RecordModelTrained(c.res.ModelTrained)
}

func (s *Strategy) signals(ctx context.Context, c *cycle, history []types.Candle) {
	senti := sentiment.Analyze(c.chain, s.p.Sentiment)
	c.res.PCR = senti.PCR
	c.res.PCRSignal = senti.Signal

	dir, err := s.model.Predict(history)
	if err != nil {
		logger.Debug(ctx, "ML signal degraded to neutral", "reason", err.Error())
	}
	c.res.MLSignal = dir.Signal()

	if v, ok := features.Last(history, s.p.Features); ok {
		c.vec, c.hasVec = v, true
		r := regime.Detect(v, c.chain.Underlying, s.p.Regime)
		c.res.Regime = r.Regime
		c.res.TrendSignal = r.Trend
		c.res.CandleStatus = r.Candle
		if r.Corrected {
			logger.Debug(ctx, "Supertrend direction corrected by live price",
				"supertrend", v.Supertrend,
				"price", c.chain.Underlying,
				"direction", r.SupertrendDir,
			)
		}
	}

	final, tier := confluence.Decide(confluence.Inputs{
		ML:     c.res.MLSignal,
		PCR:    c.res.PCRSignal,
		Trend:  c.res.TrendSignal,
		Candle: c.res.CandleStatus,
	})
	c.res.FinalSignal = final
	c.res.Tier = tier.String()
	c.tier = tier

	logger.Decision(ctx, string(final), tier.String(),
		"ml", c.res.MLSignal,
		"pcr", c.res.PCR,
		"pcr_signal", c.res.PCRSignal,
		"trend", c.res.TrendSignal,
		"regime", c.res.Regime,
		"candle", c.res.CandleStatus,
		"underlying", c.chain.Underlying,
	)
}

// markPositions prices every open position from the chain. Positions whose
// symbol or strike cannot be resolved keep their last mark.
func (s *Strategy) markPositions(ctx context.Context, c *cycle) {
	for _, p := range s.ledger.Positions() {
		price, err := legPrice(c.chain, p.Symbol)
		if err != nil {
			logger.Warn(ctx, "Skipping mark", "symbol", p.Symbol, "reason", err.Error())
			continue
		}
		if err := s.ledger.Mark(p.Symbol, price); err != nil {
			logger.Warn(ctx, "Mark failed", "symbol", p.Symbol, "error", err.Error())
		}
	}
}

// exitPositions closes CALLs on a bearish signal and PUTs on a bullish one.
func (s *Strategy) exitPositions(ctx context.Context, c *cycle) {
	for _, p := range s.ledger.Positions() {
		if !shouldExit(p.OptionType, c.res.FinalSignal) {
			continue
		}
		rec, ok := s.exec.exit(ctx, p)
		if !ok {
			continue
		}
		c.res.Trades = append(c.res.Trades, rec)
		if rec.RealizedPnL != nil {
			c.daily += *rec.RealizedPnL
		}
	}
}

// enterPosition buys one lot of the ATM leg when flat and the signal is directional.
func (s *Strategy) enterPosition(ctx context.Context, c *cycle) {
	if s.ledger.HasPositions() || c.res.FinalSignal == types.SignalNeutral {
		return
	}
	row, ok := atmRow(c.chain)
	if !ok {
		return
	}
	ot := types.OptionCall
	if c.res.FinalSignal == types.SignalBearish {
		ot = types.OptionPut
	}
	price := row.Price(ot)
	symbol := types.FormatOptionSymbol(s.p.Underlying, row.Strike, ot)
	if price <= 0 {
		logger.Warn(ctx, "ATM leg has no quote, skipping entry", "symbol", symbol)
		return
	}
	if !s.risk.canAfford(ctx, s.ledger, symbol, s.p.LotSize, price) {
		return
	}
	if rec, ok := s.exec.enter(ctx, symbol, ot, s.p.LotSize, price, c.tier); ok {
		c.res.Trades = append(c.res.Trades, rec)
	}
}

// finish fills the ledger view, writes the journal and metrics.
func (s *Strategy) finish(ctx context.Context, c *cycle, status types.CycleStatus, reason string) *types.CycleResult {
	res := c.res
	res.Status = status
	res.Reason = reason
	if res.Trades == nil {
		res.Trades = []types.TradeRecord{}
	}

	snap := s.ledger.Snapshot()
	res.RealizedPnL = snap.RealizedPnL
	res.Unrealized = snap.Unrealized
	res.TotalPnL = snap.TotalPnL
	res.Capital = snap.Capital
	res.DailyPnL = c.daily

	s.rec.RecordCycle(string(status))
	if status == types.CycleOK {
		s.rec.RecordSignal("ml", string(res.MLSignal))
		s.rec.RecordSignal("pcr", string(res.PCRSignal))
		s.rec.RecordSignal("trend", string(res.TrendSignal))
		s.rec.RecordSignal("final", string(res.FinalSignal))
		s.rec.RecordMarket(res.Underlying, res.PCR)
	}
	s.rec.RecordLedger(res.RealizedPnL, res.Unrealized, res.TotalPnL, res.DailyPnL, res.Capital, len(snap.Positions))

	if s.journal != nil {
		entry := tradelog.DecisionEntry{
			Status:       status,
			Underlying:   res.Underlying,
			PCR:          res.PCR,
			ML:           res.MLSignal,
			PCRSignal:    res.PCRSignal,
			Trend:        res.TrendSignal,
			Regime:       res.Regime,
			Candle:       res.CandleStatus,
			Final:        res.FinalSignal,
			Tier:         res.Tier,
			ModelTrained: res.ModelTrained,
			Reason:       reason,
		}
		if c.hasVec {
			entry.Indicators = indicatorMap(c.vec)
		}
		for _, t := range res.Trades {
			entry.Trades = append(entry.Trades, t.TransactionType+" "+t.Symbol)
		}
		if err := s.journal.AppendDecision(entry); err != nil {
			logger.Warn(ctx, "Failed to append decision journal", "error", err.Error())
		}
	}
	return res
}
