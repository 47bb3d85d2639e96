package ta

import (
	"math"
	"testing"
)

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func ramp(n int, start, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}

func TestSMAWarmup(t *testing.T) {
	s := SMA([]float64{1, 2, 3, 4, 5}, 3)
	if !IsAbsent(s[0]) || !IsAbsent(s[1]) {
		t.Fatalf("expected absent warmup, got %v", s[:2])
	}
	if !near(s[2], 2) || !near(s[4], 4) {
		t.Errorf("unexpected sma %v", s)
	}
}

func TestSMATooShort(t *testing.T) {
	for _, v := range SMA([]float64{1, 2}, 3) {
		if !IsAbsent(v) {
			t.Fatalf("expected all absent")
		}
	}
}

func TestRSIAllGains(t *testing.T) {
	r := RSI(ramp(30, 100, 1), 14)
	if !IsAbsent(r[13]) {
		t.Errorf("rsi should be absent before index 14")
	}
	if r[14] != 100 || r[29] != 100 {
		t.Errorf("expected 100 on a pure uptrend, got %v %v", r[14], r[29])
	}
}

func TestRSIBalanced(t *testing.T) {
	closes := make([]float64, 40)
	for i := range closes {
		if i%2 == 0 {
			closes[i] = 100
		} else {
			closes[i] = 101
		}
	}
	r := RSI(closes, 14)
	if math.Abs(r[39]-50) > 5 {
		t.Errorf("expected rsi near 50 for alternating closes, got %v", r[39])
	}
}

func TestMACDWarmup(t *testing.T) {
	m := MACD(ramp(60, 100, 1), 12, 26, 9)
	if !IsAbsent(m.Line[24]) || IsAbsent(m.Line[25]) {
		t.Errorf("macd line should start at 25")
	}
	if !IsAbsent(m.Signal[32]) || IsAbsent(m.Signal[33]) {
		t.Errorf("macd signal should start at 33")
	}
	if m.Line[59] <= 0 {
		t.Errorf("macd should be positive on an uptrend, got %v", m.Line[59])
	}
	if !near(m.Hist[59], m.Line[59]-m.Signal[59]) {
		t.Errorf("hist mismatch")
	}
}

func TestBollingerConstant(t *testing.T) {
	b := Bollinger(ramp(25, 10, 0), 20, 2)
	if !near(b.Upper[24], 10) || !near(b.Lower[24], 10) {
		t.Errorf("flat series should collapse bands, got %v %v", b.Upper[24], b.Lower[24])
	}
}

func TestATRConstantRange(t *testing.T) {
	closes := ramp(30, 100, 0)
	highs := ramp(30, 101, 0)
	lows := ramp(30, 99, 0)
	a := ATR(highs, lows, closes, 14)
	if !IsAbsent(a[13]) || !near(a[14], 2) || !near(a[29], 2) {
		t.Errorf("unexpected atr %v %v %v", a[13], a[14], a[29])
	}
}

func TestADXUptrend(t *testing.T) {
	closes := ramp(60, 100, 10)
	highs := ramp(60, 102, 10)
	lows := ramp(60, 93, 10)
	a := ADX(highs, lows, closes, 14)
	if !IsAbsent(a.ADX[26]) || IsAbsent(a.ADX[27]) {
		t.Fatalf("adx should start at 27")
	}
	if a.ADX[59] < 99 {
		t.Errorf("expected adx near 100 on a clean uptrend, got %v", a.ADX[59])
	}
	if a.PlusDI[59] <= a.MinusDI[59] {
		t.Errorf("+DI should dominate")
	}
}

func TestSupertrendFollowsTrend(t *testing.T) {
	up := Supertrend(ramp(40, 102, 10), ramp(40, 93, 10), ramp(40, 100, 10), 7, 3)
	if up.Direction[39] != 1 || up.Value[39] >= 100+39*10 {
		t.Errorf("expected bullish supertrend below price, got %v %v", up.Direction[39], up.Value[39])
	}
	down := Supertrend(ramp(40, 602, -10), ramp(40, 593, -10), ramp(40, 600, -10), 7, 3)
	if down.Direction[39] != -1 {
		t.Errorf("expected bearish supertrend, got %v", down.Direction[39])
	}
	if !IsAbsent(up.Direction[6]) {
		t.Errorf("supertrend should be absent before atr warmup")
	}
}
