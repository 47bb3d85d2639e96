package strategy

import (
	"context"
	"errors"
	"time"

	"nifty-options-bot/internal/confluence"
	"nifty-options-bot/internal/interfaces"
	"nifty-options-bot/internal/ledger"
	"nifty-options-bot/internal/logger"
	"nifty-options-bot/internal/metrics"
	"nifty-options-bot/internal/types"
)

const orderTypeMarket = "MARKET"

// orderExecutor sends orders to the venue and applies accepted fills to the
// ledger and the trade store.
type orderExecutor struct {
	venue  interfaces.OrderVenue
	trades interfaces.TradeStore
	ledger *ledger.Ledger
	rec    *metrics.Recorder
}

func newOrderExecutor(venue interfaces.OrderVenue, trades interfaces.TradeStore, l *ledger.Ledger, rec *metrics.Recorder) *orderExecutor {
	return &orderExecutor{venue: venue, trades: trades, ledger: l, rec: rec}
}

// submit places req and reports whether the venue accepted it.
func (oe *orderExecutor) submit(ctx context.Context, req types.OrderReq) (types.OrderResp, bool) {
	resp, err := oe.venue.SubmitOrder(ctx, req)
	if err != nil {
		oe.rec.RecordOrder(req.Side, types.OrderStatusFailed)
		logger.ErrorWithErr(ctx, "Order submission failed", err, "symbol", req.Symbol, "side", req.Side, "qty", req.Qty)
		return resp, false
	}
	oe.rec.RecordOrder(req.Side, resp.Status)
	if !resp.Accepted() {
		logger.Warn(ctx, "Order rejected", "symbol", req.Symbol, "side", req.Side, "message", resp.Message)
		return resp, false
	}
	return resp, true
}

func (oe *orderExecutor) enter(ctx context.Context, symbol string, ot types.OptionType, qty int, price float64, tier confluence.Tier) (types.TradeRecord, bool) {
	resp, ok := oe.submit(ctx, types.OrderReq{Symbol: symbol, Side: types.SideBuy, Qty: qty, Price: price, Tag: tier.String()})
	if !ok {
		return types.TradeRecord{}, false
	}
	pos, err := oe.ledger.Open(symbol, ot, qty, price)
	if err != nil {
		// the venue filled an order the ledger cannot carry
		if errors.Is(err, ledger.ErrInsufficientCapital) {
			logger.Risk(ctx, symbol, "INSUFFICIENT_CAPITAL", "order_id", resp.OrderID)
		}
		logger.ErrorWithErr(ctx, "Ledger open failed after fill", err, "symbol", symbol, "order_id", resp.OrderID)
		return types.TradeRecord{}, false
	}
	logger.Trade(ctx, symbol, types.SideBuy, qty, price, resp.OrderID,
		"tier", tier.String(),
		"commission", pos.EntryCommission,
	)
	rec := types.TradeRecord{
		Time:            pos.OpenedAt,
		Symbol:          symbol,
		OrderType:       orderTypeMarket,
		TransactionType: types.SideBuy,
		Quantity:        qty,
		Price:           price,
		Status:          types.TradeStatusExecuted,
		OrderID:         resp.OrderID,
	}
	oe.persist(ctx, rec)
	return rec, true
}

// exit sells p at its current mark.
func (oe *orderExecutor) exit(ctx context.Context, p ledger.Position) (types.TradeRecord, bool) {
	resp, ok := oe.submit(ctx, types.OrderReq{Symbol: p.Symbol, Side: types.SideSell, Qty: p.Qty, Price: p.CurrentPrice, Tag: "exit"})
	if !ok {
		return types.TradeRecord{}, false
	}
	closed, err := oe.ledger.Close(p.Symbol, p.CurrentPrice)
	if err != nil {
		logger.ErrorWithErr(ctx, "Ledger close failed after fill", err, "symbol", p.Symbol, "order_id", resp.OrderID)
		return types.TradeRecord{}, false
	}
	net := closed.Net
	logger.Trade(ctx, p.Symbol, types.SideSell, p.Qty, p.CurrentPrice, resp.OrderID,
		"gross_pnl", closed.Gross,
		"net_pnl", net,
	)
	rec := types.TradeRecord{
		Time:            time.Now(),
		Symbol:          p.Symbol,
		OrderType:       orderTypeMarket,
		TransactionType: types.SideSell,
		Quantity:        p.Qty,
		Price:           p.CurrentPrice,
		Status:          types.TradeStatusExecuted,
		OrderID:         resp.OrderID,
		RealizedPnL:     &net,
	}
	oe.persist(ctx, rec)
	return rec, true
}

func (oe *orderExecutor) persist(ctx context.Context, rec types.TradeRecord) {
	if err := oe.trades.RecordTrade(ctx, rec); err != nil {
		oe.rec.RecordError("record_trade")
		logger.ErrorWithErr(ctx, "Failed to persist trade", err, "symbol", rec.Symbol, "side", rec.TransactionType)
	}
}
