// Package features derives the fixed technical feature vector for every bar of
// a candle sequence. Fields lacking trailing history stay NaN (absent).
package features

import (
	"errors"
	"math"

	"nifty-options-bot/internal/ta"
	"nifty-options-bot/internal/types"
)

// SchemaVersion changes whenever a column is added, removed, reordered or redefined.
const SchemaVersion = 1

var ErrIndicatorUnavailable = errors.New("indicator unavailable")

type Column string

const (
	RSI           Column = "rsi_14"
	SMA20         Column = "sma_20"
	SMA50         Column = "sma_50"
	MACD          Column = "macd_12_26_9"
	MACDSignal    Column = "macd_signal_12_26_9"
	MACDHist      Column = "macd_hist_12_26_9"
	BBUpper       Column = "bb_upper_20_2"
	BBLower       Column = "bb_lower_20_2"
	ADX           Column = "adx_14"
	PlusDI        Column = "plus_di_14"
	MinusDI       Column = "minus_di_14"
	ATR           Column = "atr_14"
	SupertrendVal Column = "supertrend"
	SupertrendDir Column = "supertrend_dir"
	Returns       Column = "returns"
	RSISlope      Column = "rsi_slope"
	Body          Column = "body"
	UpperWick     Column = "upper_wick"
	LowerWick     Column = "lower_wick"
	CandleColor   Column = "candle_color"
)

// Schema is the ordered column list of version SchemaVersion.
var Schema = []Column{
	RSI, SMA20, SMA50, MACD, MACDSignal, MACDHist, BBUpper, BBLower,
	ADX, PlusDI, MinusDI, ATR, SupertrendVal, SupertrendDir,
	Returns, RSISlope, Body, UpperWick, LowerWick, CandleColor,
}

// Params are the indicator lengths. Only the Supertrend pair is tunable;
// the rest is pinned by the schema.
type Params struct {
	SupertrendLength     int
	SupertrendMultiplier float64
}

func DefaultParams() Params {
	return Params{SupertrendLength: 7, SupertrendMultiplier: 3}
}

// Vector is the feature row for one bar.
type Vector struct {
	Candle types.Candle

	RSI, SMA20, SMA50          float64
	MACD, MACDSignal, MACDHist float64
	BBUpper, BBLower           float64
	ADX, PlusDI, MinusDI, ATR  float64
	Supertrend, SupertrendDir  float64
	Returns, RSISlope          float64
	Body, UpperWick, LowerWick float64
	CandleColor                float64
}

// Value returns the column's value; NaN when absent.
func (v Vector) Value(c Column) float64 {
	switch c {
	case RSI:
		return v.RSI
	case SMA20:
		return v.SMA20
	case SMA50:
		return v.SMA50
	case MACD:
		return v.MACD
	case MACDSignal:
		return v.MACDSignal
	case MACDHist:
		return v.MACDHist
	case BBUpper:
		return v.BBUpper
	case BBLower:
		return v.BBLower
	case ADX:
		return v.ADX
	case PlusDI:
		return v.PlusDI
	case MinusDI:
		return v.MinusDI
	case ATR:
		return v.ATR
	case SupertrendVal:
		return v.Supertrend
	case SupertrendDir:
		return v.SupertrendDir
	case Returns:
		return v.Returns
	case RSISlope:
		return v.RSISlope
	case Body:
		return v.Body
	case UpperWick:
		return v.UpperWick
	case LowerWick:
		return v.LowerWick
	case CandleColor:
		return v.CandleColor
	}
	return math.NaN()
}

// Extract returns the values of cols in order, or ErrIndicatorUnavailable if
// any of them is absent.
func (v Vector) Extract(cols []Column) ([]float64, error) {
	out := make([]float64, len(cols))
	for i, c := range cols {
		x := v.Value(c)
		if ta.IsAbsent(x) {
			return nil, ErrIndicatorUnavailable
		}
		out[i] = x
	}
	return out, nil
}

// Complete reports whether every column of cols is present.
func (v Vector) Complete(cols []Column) bool {
	_, err := v.Extract(cols)
	return err == nil
}

// candleColor is +1 for a green bar, -1 for red and 0 for a doji.
func candleColor(c types.Candle) float64 {
	switch {
	case c.Close > c.Open:
		return 1
	case c.Close < c.Open:
		return -1
	}
	return 0
}

// Compute returns one Vector per candle, in the same order.
func Compute(candles []types.Candle, p Params) []Vector {
	n := len(candles)
	if n == 0 {
		return nil
	}
	closes := make([]float64, n)
	highs := make([]float64, n)
	lows := make([]float64, n)
	for i, c := range candles {
		closes[i] = c.Close
		highs[i] = c.High
		lows[i] = c.Low
	}

	rsi := ta.RSI(closes, 14)
	sma20 := ta.SMA(closes, 20)
	sma50 := ta.SMA(closes, 50)
	macd := ta.MACD(closes, 12, 26, 9)
	bb := ta.Bollinger(closes, 20, 2)
	adx := ta.ADX(highs, lows, closes, 14)
	atr := ta.ATR(highs, lows, closes, 14)
	st := ta.Supertrend(highs, lows, closes, p.SupertrendLength, p.SupertrendMultiplier)

	out := make([]Vector, n)
	for i, c := range candles {
		v := Vector{
			Candle:        c,
			RSI:           rsi[i],
			SMA20:         sma20[i],
			SMA50:         sma50[i],
			MACD:          macd.Line[i],
			MACDSignal:    macd.Signal[i],
			MACDHist:      macd.Hist[i],
			BBUpper:       bb.Upper[i],
			BBLower:       bb.Lower[i],
			ADX:           adx.ADX[i],
			PlusDI:        adx.PlusDI[i],
			MinusDI:       adx.MinusDI[i],
			ATR:           atr[i],
			Supertrend:    st.Value[i],
			SupertrendDir: st.Direction[i],
			Returns:       math.NaN(),
			RSISlope:      math.NaN(),
			Body:          math.Abs(c.Close - c.Open),
			UpperWick:     c.High - math.Max(c.Open, c.Close),
			LowerWick:     math.Min(c.Open, c.Close) - c.Low,
			CandleColor:   candleColor(c),
		}
		if i > 0 {
			if prev := closes[i-1]; prev != 0 {
				v.Returns = c.Close/prev - 1
			}
			if !ta.IsAbsent(rsi[i]) && !ta.IsAbsent(rsi[i-1]) {
				v.RSISlope = rsi[i] - rsi[i-1]
			}
		}
		out[i] = v
	}
	return out
}

// Last returns the final row of Compute, and false for an empty sequence.
func Last(candles []types.Candle, p Params) (Vector, bool) {
	rows := Compute(candles, p)
	if len(rows) == 0 {
		return Vector{}, false
	}
	return rows[len(rows)-1], true
}
