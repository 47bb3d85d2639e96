package strategy

import (
	"context"

	"nifty-options-bot/internal/interfaces"
	"nifty-options-bot/internal/ledger"
	"nifty-options-bot/internal/logger"
)

// riskManager holds the two pre-trade checks: the daily profit target and
// available capital.
type riskManager struct {
	trades interfaces.TradeStore
	target float64
}

func newRiskManager(trades interfaces.TradeStore, target float64) *riskManager {
	return &riskManager{trades: trades, target: target}
}

// targetReached reports whether today's realized PnL has hit the target.
func (rm *riskManager) targetReached(ctx context.Context) (bool, float64, error) {
	daily, err := rm.trades.SumRealizedPnLToday(ctx)
	if err != nil {
		return false, 0, err
	}
	return daily >= rm.target, daily, nil
}

func (rm *riskManager) canAfford(ctx context.Context, l *ledger.Ledger, symbol string, qty int, price float64) bool {
	cost := l.EntryCost(qty, price)
	if capital := l.Capital(); cost > capital {
		logger.Risk(ctx, symbol, "INSUFFICIENT_CAPITAL",
			"qty", qty,
			"price", price,
			"cost", cost,
			"commission", l.Commission(),
			"capital", capital,
		)
		return false
	}
	return true
}
