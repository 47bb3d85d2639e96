package confluence

import (
	"testing"

	"nifty-options-bot/internal/types"
)

const (
	bull = types.SignalBullish
	bear = types.SignalBearish
	flat = types.SignalNeutral
)

func TestDecide(t *testing.T) {
	cases := []struct {
		name     string
		in       Inputs
		want     types.Signal
		wantTier Tier
	}{
		{"full bullish", Inputs{bull, bull, bull, types.CandleBearish}, bull, TierFull},
		{"full bearish", Inputs{bear, bear, bear, types.CandleBullish}, bear, TierFull},
		{"trend with neutral pcr", Inputs{ML: bull, PCR: flat, Trend: bull, Candle: types.CandleDoji}, bull, TierTrend},
		{"trend blocked by pcr", Inputs{ML: bull, PCR: bear, Trend: bull, Candle: types.CandleDoji}, flat, TierNone},
		{"bearish trend", Inputs{ML: bear, PCR: flat, Trend: bear, Candle: types.CandleBullish}, bear, TierTrend},
		{"scalp", Inputs{ML: bull, PCR: flat, Trend: flat, Candle: types.CandleBullish}, bull, TierScalp},
		{"bearish scalp", Inputs{ML: bear, PCR: flat, Trend: bull, Candle: types.CandleBearish}, bear, TierScalp},
		{"safety", Inputs{ML: bull, PCR: bear, Trend: bear, Candle: types.CandleBullish}, flat, TierNone},
		{"doji never scalps", Inputs{ML: bull, PCR: bull, Trend: flat, Candle: types.CandleDoji}, flat, TierNone},
		{"ml neutral", Inputs{ML: flat, PCR: bull, Trend: bull, Candle: types.CandleBullish}, flat, TierNone},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, tier := Decide(c.in)
			if got != c.want || tier != c.wantTier {
				t.Errorf("got %s/%s want %s/%s", got, tier, c.want, c.wantTier)
			}
		})
	}
}
