package interfaces

import (
	"context"
	"time"

	"nifty-options-bot/internal/types"
)

type TradeStore interface {
	RecordTrade(ctx context.Context, rec types.TradeRecord) error
	SumRealizedPnLToday(ctx context.Context) (float64, error)
}

// TradeHistory is the read side used by end-of-day reporting.
type TradeHistory interface {
	TradesOn(ctx context.Context, day time.Time) ([]types.TradeRecord, error)
	UpsertDailySummary(ctx context.Context, day time.Time, pnl float64, trades int) error
}

type SettingsStore interface {
	SaveSetting(ctx context.Context, key, value string) error
	GetSetting(ctx context.Context, key string) (string, error)
}
