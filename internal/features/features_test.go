package features

import (
	"errors"
	"math"
	"testing"

	"nifty-options-bot/internal/ta"
	"nifty-options-bot/internal/types"
)

func uptrend(n int) []types.Candle {
	cs := make([]types.Candle, n)
	for i := range cs {
		c := 20000 + float64(i)*10
		cs[i] = types.Candle{Ts: int64(i * 300), Open: c - 5, High: c + 2, Low: c - 7, Close: c, Vol: 1000}
	}
	return cs
}

func TestComputeAlignsWithInput(t *testing.T) {
	rows := Compute(uptrend(80), DefaultParams())
	if len(rows) != 80 {
		t.Fatalf("expected 80 rows, got %d", len(rows))
	}
	if rows[79].Candle.Close != 20790 {
		t.Errorf("row not aligned with its candle")
	}
}

func TestShortHistoryLeavesAbsentValues(t *testing.T) {
	rows := Compute(uptrend(30), DefaultParams())
	last := rows[len(rows)-1]
	if !ta.IsAbsent(last.SMA50) {
		t.Errorf("sma50 should be absent with 30 bars")
	}
	if ta.IsAbsent(last.SMA20) || ta.IsAbsent(last.RSI) {
		t.Errorf("short-window indicators should be present")
	}
	if _, err := last.Extract(Schema); !errors.Is(err, ErrIndicatorUnavailable) {
		t.Errorf("expected ErrIndicatorUnavailable, got %v", err)
	}
}

func TestFullHistoryIsComplete(t *testing.T) {
	rows := Compute(uptrend(60), DefaultParams())
	if !rows[59].Complete(Schema) {
		t.Fatalf("last row should carry every column")
	}
	if rows[48].Complete(Schema) {
		t.Errorf("row 48 cannot have sma50")
	}
	vals, err := rows[59].Extract(Schema)
	if err != nil || len(vals) != len(Schema) {
		t.Fatalf("extract failed: %v", err)
	}
	if vals[0] != rows[59].Value(RSI) {
		t.Errorf("extract must follow column order")
	}
}

func TestDerivedFields(t *testing.T) {
	cs := []types.Candle{
		{Open: 100, High: 110, Low: 95, Close: 100},
		{Open: 100, High: 112, Low: 97, Close: 105},
		{Open: 105, High: 106, Low: 90, Close: 95},
	}
	rows := Compute(cs, DefaultParams())
	if !ta.IsAbsent(rows[0].Returns) {
		t.Errorf("first row has no previous close")
	}
	if math.Abs(rows[1].Returns-0.05) > 1e-12 {
		t.Errorf("returns = %v", rows[1].Returns)
	}
	if rows[1].Body != 5 || rows[1].UpperWick != 7 || rows[1].LowerWick != 3 {
		t.Errorf("unexpected body/wicks %+v", rows[1])
	}
	if rows[0].CandleColor != 0 || rows[1].CandleColor != 1 || rows[2].CandleColor != -1 {
		t.Errorf("candle colors %v %v %v", rows[0].CandleColor, rows[1].CandleColor, rows[2].CandleColor)
	}
}

func TestLastEmpty(t *testing.T) {
	if _, ok := Last(nil, DefaultParams()); ok {
		t.Errorf("empty history has no last row")
	}
}
