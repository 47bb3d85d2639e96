package brokerobs

import (
	"context"
	"time"

	"nifty-options-bot/internal/interfaces"
	"nifty-options-bot/internal/logger"
	"nifty-options-bot/internal/metrics"
	"nifty-options-bot/internal/trace"
	"nifty-options-bot/internal/types"
)

// observableMarketData wraps a MarketData with logging, tracing and metrics
type observableMarketData struct {
	md  interfaces.MarketData
	rec *metrics.Recorder
}

var _ interfaces.MarketData = (*observableMarketData)(nil)

// WrapMarketData wraps a provider with observability middleware
func WrapMarketData(md interfaces.MarketData, rec *metrics.Recorder) interfaces.MarketData {
	return &observableMarketData{md: md, rec: rec}
}

func (o *observableMarketData) FetchChain(ctx context.Context) (types.Chain, error) {
	ctx, span := trace.StartSpan(ctx, "broker.FetchChain")
	defer span.End()
	start := time.Now()

	logger.DebugSkip(ctx, 1, "Fetching option chain")

	chain, err := o.md.FetchChain(ctx)
	o.rec.RecordLatency("fetch_chain", time.Since(start).Seconds())
	if err != nil {
		o.rec.RecordError("fetch_chain")
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch option chain", err)
		return types.Chain{}, err
	}

	logger.DebugSkip(ctx, 1, "Option chain fetched",
		"strikes", len(chain.Rows),
		"underlying", chain.Underlying,
		"expiry", chain.Expiry.Format("2006-01-02"),
	)
	return chain, nil
}

func (o *observableMarketData) FetchHistory(ctx context.Context, symbol, interval string) ([]types.Candle, error) {
	ctx, span := trace.StartSpan(ctx, "broker.FetchHistory")
	defer span.End()
	start := time.Now()

	logger.DebugSkip(ctx, 1, "Fetching candle history", "symbol", symbol, "interval", interval)

	candles, err := o.md.FetchHistory(ctx, symbol, interval)
	o.rec.RecordLatency("fetch_history", time.Since(start).Seconds())
	if err != nil {
		o.rec.RecordError("fetch_history")
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch candles", err, "symbol", symbol, "interval", interval)
		return nil, err
	}

	logger.DebugSkip(ctx, 1, "Candles fetched", "symbol", symbol, "count", len(candles))
	return candles, nil
}

// observableVenue wraps an OrderVenue with logging, tracing and metrics
type observableVenue struct {
	venue interfaces.OrderVenue
	rec   *metrics.Recorder
}

var _ interfaces.OrderVenue = (*observableVenue)(nil)

// WrapVenue wraps an order venue with observability middleware
func WrapVenue(v interfaces.OrderVenue, rec *metrics.Recorder) interfaces.OrderVenue {
	return &observableVenue{venue: v, rec: rec}
}

func (o *observableVenue) SubmitOrder(ctx context.Context, req types.OrderReq) (types.OrderResp, error) {
	ctx, span := trace.StartSpan(ctx, "broker.SubmitOrder")
	defer span.End()
	start := time.Now()

	logger.InfoSkip(ctx, 1, "Placing order",
		"symbol", req.Symbol,
		"side", req.Side,
		"qty", req.Qty,
		"price", req.Price,
		"tag", req.Tag,
	)

	resp, err := o.venue.SubmitOrder(ctx, req)
	o.rec.RecordLatency("submit_order", time.Since(start).Seconds())
	if err != nil {
		o.rec.RecordError("submit_order")
		o.rec.RecordOrder(req.Side, "error")
		logger.ErrorWithErrSkip(ctx, 1, "Failed to place order", err,
			"symbol", req.Symbol,
			"side", req.Side,
			"qty", req.Qty,
		)
		return types.OrderResp{}, err
	}
	o.rec.RecordOrder(req.Side, resp.Status)

	if !resp.Accepted() {
		logger.WarnSkip(ctx, 1, "Order rejected",
			"symbol", req.Symbol,
			"side", req.Side,
			"message", resp.Message,
		)
		return resp, nil
	}

	logger.InfoSkip(ctx, 1, "Order placed successfully",
		"symbol", req.Symbol,
		"order_id", resp.OrderID,
		"status", resp.Status,
	)
	return resp, nil
}
