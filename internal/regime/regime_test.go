package regime

import (
	"math"
	"testing"

	"nifty-options-bot/internal/features"
	"nifty-options-bot/internal/types"
)

func vector(adx float64) features.Vector {
	return features.Vector{
		Candle:        types.Candle{Open: 100, High: 103, Low: 99, Close: 102},
		ADX:           adx,
		ATR:           10,
		Body:          2,
		SMA20:         101,
		SMA50:         100,
		Supertrend:    95,
		SupertrendDir: 1,
	}
}

func TestClassifyThresholds(t *testing.T) {
	th := DefaultThresholds()
	cases := []struct {
		adx  float64
		want types.Regime
	}{
		{15, types.RegimeFlat},
		{22, types.RegimeChoppy},
		{30, types.RegimeTrending},
		{math.NaN(), types.RegimeUnknown},
	}
	for _, c := range cases {
		if got := Detect(vector(c.adx), 102, th).Regime; got != c.want {
			t.Errorf("adx %v: got %s want %s", c.adx, got, c.want)
		}
	}
}

func TestHighMomentumPromotesToTrending(t *testing.T) {
	v := vector(15)
	v.Body = 12
	res := Detect(v, 102, DefaultThresholds())
	if !res.HighMomentum || res.Regime != types.RegimeTrending {
		t.Fatalf("got %+v", res)
	}
}

func TestHighMomentumNeedsATR(t *testing.T) {
	v := vector(15)
	v.ATR = math.NaN()
	v.Body = 50
	if res := Detect(v, 102, DefaultThresholds()); res.HighMomentum || res.Regime != types.RegimeFlat {
		t.Fatalf("got %+v", res)
	}
}

func TestFlatIsNeutral(t *testing.T) {
	if res := Detect(vector(15), 102, DefaultThresholds()); res.Trend != types.SignalNeutral {
		t.Errorf("flat regime should be neutral, got %s", res.Trend)
	}
}

func TestChoppyFollowsSupertrend(t *testing.T) {
	res := Detect(vector(22), 102, DefaultThresholds())
	if res.Trend != types.SignalBullish || res.Corrected {
		t.Fatalf("got %+v", res)
	}
}

func TestChoppyLiveCorrection(t *testing.T) {
	res := Detect(vector(22), 94, DefaultThresholds())
	if res.Trend != types.SignalBearish || !res.Corrected {
		t.Fatalf("price under a bullish line should flip bearish, got %+v", res)
	}
	v := vector(22)
	v.SupertrendDir = -1
	v.Supertrend = 105
	if res := Detect(v, 106, DefaultThresholds()); res.Trend != types.SignalBullish {
		t.Errorf("price over a bearish line should flip bullish, got %s", res.Trend)
	}
}

func TestTrendingUsesMovingAverages(t *testing.T) {
	th := DefaultThresholds()
	if res := Detect(vector(30), 102, th); res.Trend != types.SignalBullish {
		t.Errorf("expected bullish, got %s", res.Trend)
	}
	v := vector(30)
	v.SMA20, v.SMA50 = 99, 100
	if res := Detect(v, 98, th); res.Trend != types.SignalBearish {
		t.Errorf("expected bearish, got %s", res.Trend)
	}
	if res := Detect(vector(30), 100.5, th); res.Trend != types.SignalNeutral {
		t.Errorf("price between averages should be neutral, got %s", res.Trend)
	}
}

func TestCandleStatus(t *testing.T) {
	if CandleStatusOf(types.Candle{Open: 1, Close: 1}) != types.CandleDoji {
		t.Errorf("equal open/close is a doji")
	}
	if CandleStatusOf(types.Candle{Open: 2, Close: 1}) != types.CandleBearish {
		t.Errorf("red bar")
	}
}
