// Package eod writes the end-of-day per-symbol CSV and the daily_summary row.
package eod

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"nifty-options-bot/internal/interfaces"
	"nifty-options-bot/internal/types"
)

type Summarizer struct {
	store interfaces.TradeHistory
	dir   string
	now   func() time.Time
}

var _ interfaces.EodSummarizer = (*Summarizer)(nil)

// New returns a summarizer writing under dir/eod ("" means TRADER_LOG_DIR or logs).
func New(store interfaces.TradeHistory, dir string) *Summarizer {
	if dir == "" {
		dir = logDir()
	}
	return &Summarizer{store: store, dir: dir, now: time.Now}
}

// SummarizeDay aggregates the day's trades by symbol into a CSV and upserts
// the day's realized PnL. A day with no trades yields an empty path.
func (s *Summarizer) SummarizeDay(ctx context.Context, t time.Time) (string, error) {
	recs, err := s.store.TradesOn(ctx, t)
	if err != nil {
		return "", fmt.Errorf("load trades for %s: %w", types.TradingDay(t), err)
	}
	if len(recs) == 0 {
		return "", nil
	}

	aggs := aggregate(recs)
	keys := make([]string, 0, len(aggs))
	for k := range aggs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	outPath := eodCSVPath(s.dir, t)
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return "", err
	}
	out, err := os.Create(outPath)
	if err != nil {
		return "", err
	}
	defer out.Close()

	w := csv.NewWriter(out)
	headers := []string{"symbol", "trades", "buy_qty", "buy_avg", "sell_qty", "sell_avg", "realized_pnl", "gross_buy_value", "gross_sell_value"}
	if err := w.Write(headers); err != nil {
		return "", err
	}
	var totalBuy, totalSell, totalPnL float64
	for _, k := range keys {
		r := aggs[k]
		rec := []string{
			r.Symbol,
			strconv.Itoa(r.Trades),
			strconv.Itoa(r.BuyQty), fmt.Sprintf("%.4f", r.buyAvg()),
			strconv.Itoa(r.SellQty), fmt.Sprintf("%.4f", r.sellAvg()),
			fmt.Sprintf("%.2f", r.RealizedPnL),
			fmt.Sprintf("%.2f", r.BuyValue), fmt.Sprintf("%.2f", r.SellValue),
		}
		if err := w.Write(rec); err != nil {
			return "", err
		}
		totalBuy += r.BuyValue
		totalSell += r.SellValue
		totalPnL += r.RealizedPnL
	}
	total := []string{"TOTAL", strconv.Itoa(len(recs)), "", "", "", "", fmt.Sprintf("%.2f", totalPnL), fmt.Sprintf("%.2f", totalBuy), fmt.Sprintf("%.2f", totalSell)}
	if err := w.Write(total); err != nil {
		return "", err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}

	if err := s.store.UpsertDailySummary(ctx, t, totalPnL, len(recs)); err != nil {
		return outPath, fmt.Errorf("daily summary: %w", err)
	}
	return outPath, nil
}

func (s *Summarizer) SummarizeToday(ctx context.Context) (string, error) {
	return s.SummarizeDay(ctx, s.now())
}

// ShouldRunNow is true after the close cutoff when today's CSV is missing.
func (s *Summarizer) ShouldRunNow() (bool, string) {
	now := s.now()
	outPath := eodCSVPath(s.dir, now)
	if now.After(marketCloseTime(now)) {
		if _, err := os.Stat(outPath); errors.Is(err, os.ErrNotExist) {
			return true, outPath
		}
	}
	return false, outPath
}

// aggregate groups executed fills by symbol. Realized PnL comes from the
// exit records, which carry it net of charges.
func aggregate(recs []types.TradeRecord) map[string]*aggRow {
	aggs := map[string]*aggRow{}
	for _, tr := range recs {
		row := aggs[tr.Symbol]
		if row == nil {
			row = &aggRow{Symbol: tr.Symbol}
			aggs[tr.Symbol] = row
		}
		row.Trades++
		switch tr.TransactionType {
		case types.SideBuy:
			row.BuyQty += tr.Quantity
			row.BuyValue += float64(tr.Quantity) * tr.Price
		case types.SideSell:
			row.SellQty += tr.Quantity
			row.SellValue += float64(tr.Quantity) * tr.Price
		}
		if tr.RealizedPnL != nil {
			row.RealizedPnL += *tr.RealizedPnL
		}
	}
	return aggs
}
