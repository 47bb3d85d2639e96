// Package ta computes technical indicators as full series aligned with the
// input. A value that cannot be computed for lack of trailing history is NaN.
package ta

import "math"

// IsAbsent reports whether v carries no value.
func IsAbsent(v float64) bool { return math.IsNaN(v) || math.IsInf(v, 0) }

func nans(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

// SMA is the simple moving average; first value at index n-1.
func SMA(vals []float64, n int) []float64 {
	out := nans(len(vals))
	if n <= 0 || len(vals) < n {
		return out
	}
	sum := 0.0
	for i, v := range vals {
		sum += v
		if i >= n {
			sum -= vals[i-n]
		}
		if i >= n-1 {
			out[i] = sum / float64(n)
		}
	}
	return out
}

// EMA is seeded with the SMA of the first n defined values. Leading NaNs in
// vals are skipped, so an EMA of a derived series starts where that series does.
func EMA(vals []float64, n int) []float64 {
	out := nans(len(vals))
	if n <= 0 {
		return out
	}
	start := 0
	for start < len(vals) && IsAbsent(vals[start]) {
		start++
	}
	if len(vals)-start < n {
		return out
	}
	k := 2.0 / float64(n+1)
	sum := 0.0
	for i := start; i < start+n; i++ {
		sum += vals[i]
	}
	prev := sum / float64(n)
	out[start+n-1] = prev
	for i := start + n; i < len(vals); i++ {
		prev = vals[i]*k + prev*(1-k)
		out[i] = prev
	}
	return out
}

// wilder smooths vals (defined from index start) with Wilder's RMA, seeded by
// the mean of the first n values. First output at start+n-1.
func wilder(vals []float64, start, n int) []float64 {
	out := nans(len(vals))
	if n <= 0 || len(vals)-start < n {
		return out
	}
	sum := 0.0
	for i := start; i < start+n; i++ {
		sum += vals[i]
	}
	prev := sum / float64(n)
	out[start+n-1] = prev
	for i := start + n; i < len(vals); i++ {
		prev = (prev*float64(n-1) + vals[i]) / float64(n)
		out[i] = prev
	}
	return out
}

// RSI is Wilder's relative strength index; first value at index period.
func RSI(closes []float64, period int) []float64 {
	out := nans(len(closes))
	if period <= 0 || len(closes) < period+1 {
		return out
	}
	gains := make([]float64, len(closes))
	losses := make([]float64, len(closes))
	for i := 1; i < len(closes); i++ {
		d := closes[i] - closes[i-1]
		if d > 0 {
			gains[i] = d
		} else {
			losses[i] = -d
		}
	}
	ag := wilder(gains, 1, period)
	al := wilder(losses, 1, period)
	for i := period; i < len(closes); i++ {
		switch {
		case al[i] == 0 && ag[i] == 0:
			out[i] = 50
		case al[i] == 0:
			out[i] = 100
		default:
			rs := ag[i] / al[i]
			out[i] = 100 - 100/(1+rs)
		}
	}
	return out
}

type MACDSeries struct {
	Line, Signal, Hist []float64
}

// MACD returns fast EMA minus slow EMA, its signal EMA and the histogram.
// With (12,26,9) the signal line first appears at index 33.
func MACD(closes []float64, fast, slow, signal int) MACDSeries {
	f := EMA(closes, fast)
	s := EMA(closes, slow)
	line := nans(len(closes))
	for i := range closes {
		if !IsAbsent(f[i]) && !IsAbsent(s[i]) {
			line[i] = f[i] - s[i]
		}
	}
	sig := EMA(line, signal)
	hist := nans(len(closes))
	for i := range closes {
		if !IsAbsent(line[i]) && !IsAbsent(sig[i]) {
			hist[i] = line[i] - sig[i]
		}
	}
	return MACDSeries{Line: line, Signal: sig, Hist: hist}
}

type BollingerSeries struct {
	Middle, Upper, Lower []float64
}

// Bollinger bands around the n-period SMA with k population standard deviations.
func Bollinger(closes []float64, n int, k float64) BollingerSeries {
	mid := SMA(closes, n)
	up := nans(len(closes))
	lo := nans(len(closes))
	for i := n - 1; i < len(closes) && n > 0; i++ {
		if IsAbsent(mid[i]) {
			continue
		}
		s := 0.0
		for j := i - n + 1; j <= i; j++ {
			d := closes[j] - mid[i]
			s += d * d
		}
		sd := math.Sqrt(s / float64(n))
		up[i] = mid[i] + k*sd
		lo[i] = mid[i] - k*sd
	}
	return BollingerSeries{Middle: mid, Upper: up, Lower: lo}
}

// TrueRange needs the previous close, so index 0 is NaN.
func TrueRange(highs, lows, closes []float64) []float64 {
	out := nans(len(closes))
	for i := 1; i < len(closes); i++ {
		tr1 := highs[i] - lows[i]
		tr2 := math.Abs(highs[i] - closes[i-1])
		tr3 := math.Abs(lows[i] - closes[i-1])
		out[i] = math.Max(tr1, math.Max(tr2, tr3))
	}
	return out
}

// ATR is Wilder-smoothed true range; first value at index period.
func ATR(highs, lows, closes []float64, period int) []float64 {
	if len(highs) != len(lows) || len(lows) != len(closes) {
		return nans(len(closes))
	}
	return wilder(TrueRange(highs, lows, closes), 1, period)
}

type ADXSeries struct {
	ADX, PlusDI, MinusDI []float64
}

// ADX with +DI/-DI. The DIs start at index period and ADX at 2*period-1.
func ADX(highs, lows, closes []float64, period int) ADXSeries {
	n := len(closes)
	res := ADXSeries{ADX: nans(n), PlusDI: nans(n), MinusDI: nans(n)}
	if period <= 0 || n < period+1 || len(highs) != n || len(lows) != n {
		return res
	}
	plusDM := make([]float64, n)
	minusDM := make([]float64, n)
	for i := 1; i < n; i++ {
		up := highs[i] - highs[i-1]
		down := lows[i-1] - lows[i]
		if up > down && up > 0 {
			plusDM[i] = up
		}
		if down > up && down > 0 {
			minusDM[i] = down
		}
	}
	tr := TrueRange(highs, lows, closes)
	atr := wilder(tr, 1, period)
	sp := wilder(plusDM, 1, period)
	sm := wilder(minusDM, 1, period)

	dx := nans(n)
	for i := period; i < n; i++ {
		if IsAbsent(atr[i]) || atr[i] == 0 {
			continue
		}
		pdi := 100 * sp[i] / atr[i]
		mdi := 100 * sm[i] / atr[i]
		res.PlusDI[i] = pdi
		res.MinusDI[i] = mdi
		if pdi+mdi == 0 {
			dx[i] = 0
		} else {
			dx[i] = 100 * math.Abs(pdi-mdi) / (pdi + mdi)
		}
	}
	// A flat stretch (zero ATR) leaves holes in dx; smoothing restarts after the last one.
	start := period
	for i := n - 1; i >= period; i-- {
		if IsAbsent(dx[i]) {
			start = i + 1
			break
		}
	}
	res.ADX = wilder(dx, start, period)
	return res
}

type SupertrendSeries struct {
	// Value is the active band: the lower band while bullish, the upper while bearish.
	Value []float64
	// Direction is +1 bullish, -1 bearish, NaN where undefined.
	Direction []float64
}

// Supertrend with ATR(length) bands at multiplier*ATR around the bar midpoint.
func Supertrend(highs, lows, closes []float64, length int, multiplier float64) SupertrendSeries {
	n := len(closes)
	res := SupertrendSeries{Value: nans(n), Direction: nans(n)}
	atr := ATR(highs, lows, closes, length)
	first := -1
	for i := range atr {
		if !IsAbsent(atr[i]) {
			first = i
			break
		}
	}
	if first < 0 {
		return res
	}
	upper := make([]float64, n)
	lower := make([]float64, n)
	dir := 1.0
	for i := first; i < n; i++ {
		hl2 := (highs[i] + lows[i]) / 2
		upper[i] = hl2 + multiplier*atr[i]
		lower[i] = hl2 - multiplier*atr[i]
		if i > first {
			switch {
			case closes[i] > upper[i-1]:
				dir = 1
			case closes[i] < lower[i-1]:
				dir = -1
			}
			if dir > 0 && lower[i] < lower[i-1] {
				lower[i] = lower[i-1]
			}
			if dir < 0 && upper[i] > upper[i-1] {
				upper[i] = upper[i-1]
			}
		}
		res.Direction[i] = dir
		if dir > 0 {
			res.Value[i] = lower[i]
		} else {
			res.Value[i] = upper[i]
		}
	}
	return res
}
