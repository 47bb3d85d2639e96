// Package regime classifies market regime and trend from the latest feature row
// and the live underlying price.
package regime

import (
	"nifty-options-bot/internal/features"
	"nifty-options-bot/internal/ta"
	"nifty-options-bot/internal/types"
)

type Thresholds struct {
	FlatADX   float64
	ChoppyADX float64
}

func DefaultThresholds() Thresholds {
	return Thresholds{FlatADX: 20, ChoppyADX: 25}
}

type Result struct {
	Regime       types.Regime
	Trend        types.Signal
	Candle       types.CandleStatus
	HighMomentum bool
	// SupertrendDir after the live-price correction: +1, -1, or 0 when undefined.
	SupertrendDir int
	Corrected     bool
}

// CandleStatusOf labels a bar by close versus open.
func CandleStatusOf(c types.Candle) types.CandleStatus {
	switch {
	case c.Close > c.Open:
		return types.CandleBullish
	case c.Close < c.Open:
		return types.CandleBearish
	}
	return types.CandleDoji
}

// Classify orders the regime checks: FLAT, then CHOPPY, else TRENDING.
// Absent ADX is UNKNOWN.
func Classify(adx float64, highMomentum bool, th Thresholds) types.Regime {
	switch {
	case ta.IsAbsent(adx):
		return types.RegimeUnknown
	case adx < th.FlatADX && !highMomentum:
		return types.RegimeFlat
	case adx < th.ChoppyADX && !highMomentum:
		return types.RegimeChoppy
	}
	return types.RegimeTrending
}

// supertrendDir applies the live correction: a bullish line the price has
// already fallen through reads bearish, and the reverse.
func supertrendDir(v features.Vector, price float64) (int, bool) {
	if ta.IsAbsent(v.SupertrendDir) || ta.IsAbsent(v.Supertrend) {
		return 0, false
	}
	switch {
	case v.SupertrendDir > 0 && price < v.Supertrend:
		return -1, true
	case v.SupertrendDir < 0 && price > v.Supertrend:
		return 1, true
	case v.SupertrendDir > 0:
		return 1, false
	case v.SupertrendDir < 0:
		return -1, false
	}
	return 0, false
}

func dirSignal(d int) types.Signal {
	return types.Direction(d).Signal()
}

func smaTrend(v features.Vector, price float64) types.Signal {
	s20, s50 := v.SMA20, v.SMA50
	if ta.IsAbsent(s20) || ta.IsAbsent(s50) {
		return types.SignalNeutral
	}
	switch {
	case price > s50 && s20 > s50 && price > s20:
		return types.SignalBullish
	case price < s50 && s20 < s50 && price < s20:
		return types.SignalBearish
	}
	return types.SignalNeutral
}

// Detect derives regime, trend and the current candle status.
func Detect(v features.Vector, price float64, th Thresholds) Result {
	res := Result{Candle: CandleStatusOf(v.Candle), Trend: types.SignalNeutral}
	res.HighMomentum = !ta.IsAbsent(v.ATR) && v.Body > v.ATR
	res.Regime = Classify(v.ADX, res.HighMomentum, th)
	res.SupertrendDir, res.Corrected = supertrendDir(v, price)

	switch res.Regime {
	case types.RegimeFlat:
		if res.HighMomentum {
			res.Trend = dirSignal(res.SupertrendDir)
		}
	case types.RegimeChoppy:
		res.Trend = dirSignal(res.SupertrendDir)
	case types.RegimeTrending:
		res.Trend = smaTrend(v, price)
	}
	return res
}
