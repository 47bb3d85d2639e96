package interfaces

import (
	"context"

	"nifty-options-bot/internal/types"
)

// MarketData supplies the option chain and candle history for one underlying.
// An empty chain or history is a valid "no data" answer, not an error.
type MarketData interface {
	FetchChain(ctx context.Context) (types.Chain, error)
	FetchHistory(ctx context.Context, symbol, interval string) ([]types.Candle, error)
}

// OrderVenue accepts buy/sell instructions. A rejected order is reported via
// OrderResp.Status; err is reserved for transport failures.
type OrderVenue interface {
	SubmitOrder(ctx context.Context, req types.OrderReq) (types.OrderResp, error)
}
