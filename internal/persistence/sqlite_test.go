package persistence

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"nifty-options-bot/internal/types"
)

func openTest(t *testing.T, now time.Time) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	s.now = func() time.Time { return now }
	t.Cleanup(func() { s.Close() })
	return s
}

func pnl(v float64) *float64 { return &v }

func TestRecordAndSumToday(t *testing.T) {
	now := time.Date(2025, 3, 4, 11, 0, 0, 0, types.IST)
	s := openTest(t, now)
	ctx := context.Background()

	recs := []types.TradeRecord{
		{Time: now, Symbol: "NIFTY 22000 CE", OrderType: "MARKET", TransactionType: types.SideBuy, Quantity: 50, Price: 100, Status: types.TradeStatusExecuted, OrderID: "a"},
		{Time: now.Add(time.Minute), Symbol: "NIFTY 22000 CE", OrderType: "MARKET", TransactionType: types.SideSell, Quantity: 50, Price: 120, Status: types.TradeStatusExecuted, OrderID: "b", RealizedPnL: pnl(952.8)},
		{Time: now.Add(-24 * time.Hour), Symbol: "NIFTY 21900 PE", OrderType: "MARKET", TransactionType: types.SideSell, Quantity: 50, Price: 80, Status: types.TradeStatusExecuted, OrderID: "c", RealizedPnL: pnl(5000)},
	}
	for _, r := range recs {
		if err := s.RecordTrade(ctx, r); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	got, err := s.SumRealizedPnLToday(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got != 952.8 {
		t.Errorf("sum = %v, want 952.8", got)
	}

	trades, err := s.TradesOn(ctx, now)
	if err != nil {
		t.Fatal(err)
	}
	if len(trades) != 2 || trades[0].RealizedPnL != nil || trades[1].RealizedPnL == nil {
		t.Fatalf("unexpected trades %+v", trades)
	}
	if trades[1].OrderID != "b" || !trades[1].Time.Equal(now.Add(time.Minute)) {
		t.Errorf("round trip mismatch: %+v", trades[1])
	}
}

func TestSumTodayUsesISTDate(t *testing.T) {
	// 20:00 UTC on the 3rd is already the 4th in IST.
	now := time.Date(2025, 3, 3, 20, 0, 0, 0, time.UTC)
	s := openTest(t, now)
	ctx := context.Background()
	s.RecordTrade(ctx, types.TradeRecord{Time: now, Symbol: "X 1 CE", OrderType: "MARKET", TransactionType: types.SideSell, Quantity: 1, Price: 1, Status: types.TradeStatusExecuted, RealizedPnL: pnl(10)})
	s.now = func() time.Time { return time.Date(2025, 3, 4, 4, 0, 0, 0, types.IST) }
	if got, _ := s.SumRealizedPnLToday(ctx); got != 10 {
		t.Errorf("got %v", got)
	}
}

func TestSumTodayEmpty(t *testing.T) {
	s := openTest(t, time.Now())
	if got, err := s.SumRealizedPnLToday(context.Background()); err != nil || got != 0 {
		t.Fatalf("got %v %v", got, err)
	}
}

func TestDailySummaryUpsert(t *testing.T) {
	day := time.Date(2025, 3, 4, 15, 45, 0, 0, types.IST)
	s := openTest(t, day)
	ctx := context.Background()
	if err := s.UpsertDailySummary(ctx, day, 100, 2); err != nil {
		t.Fatal(err)
	}
	if err := s.UpsertDailySummary(ctx, day, 250, 4); err != nil {
		t.Fatal(err)
	}
	d, ok, err := s.DailySummaryOn(ctx, day)
	if err != nil || !ok {
		t.Fatalf("missing summary: %v", err)
	}
	if d.Date != "2025-03-04" || d.PnL != 250 || d.TradesCount != 4 {
		t.Errorf("got %+v", d)
	}
	if _, ok, _ := s.DailySummaryOn(ctx, day.AddDate(0, 0, 1)); ok {
		t.Errorf("unexpected row")
	}
}

func TestSettings(t *testing.T) {
	s := openTest(t, time.Now())
	ctx := context.Background()
	if _, err := s.GetSetting(ctx, "kite_api_key"); !errors.Is(err, ErrSettingNotFound) {
		t.Fatalf("got %v", err)
	}
	s.SaveSetting(ctx, "kite_api_key", "one")
	s.SaveSetting(ctx, "kite_api_key", "two")
	if v, err := s.GetSetting(ctx, "kite_api_key"); err != nil || v != "two" {
		t.Fatalf("got %q %v", v, err)
	}
}
