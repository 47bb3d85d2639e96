package eod

import (
	"os"
	"path/filepath"
	"time"

	"nifty-options-bot/internal/types"
)

func logDir() string {
	if v := os.Getenv("TRADER_LOG_DIR"); v != "" {
		return v
	}
	return "logs"
}

func eodCSVPath(dir string, t time.Time) string {
	return filepath.Join(dir, "eod", types.TradingDay(t)+".csv")
}

// marketCloseTime is the summary cutoff, 15:40 IST on t's trading day.
func marketCloseTime(t time.Time) time.Time {
	ist := t.In(types.IST)
	return time.Date(ist.Year(), ist.Month(), ist.Day(), 15, 40, 0, 0, types.IST)
}
