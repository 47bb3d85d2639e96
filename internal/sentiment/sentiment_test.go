package sentiment

import (
	"testing"

	"nifty-options-bot/internal/types"
)

func chain(ce, pe float64) types.Chain {
	return types.Chain{Rows: []types.ChainRow{
		{Strike: 20000, CEOI: ce / 2, PEOI: pe / 2},
		{Strike: 20050, CEOI: ce / 2, PEOI: pe / 2},
	}}
}

func TestAnalyzeZeroCallOI(t *testing.T) {
	res := Analyze(chain(0, 5000), DefaultThresholds())
	if res.PCR != 0 || res.Signal != types.SignalNeutral {
		t.Fatalf("got %+v", res)
	}
}

func TestAnalyzeZeroPutOIIsBearish(t *testing.T) {
	res := Analyze(chain(1000, 0), DefaultThresholds())
	if res.PCR != 0 || res.Signal != types.SignalBearish {
		t.Fatalf("got %+v", res)
	}
}

func TestAnalyzeThresholds(t *testing.T) {
	cases := []struct {
		ce, pe float64
		want   types.Signal
	}{
		{1000, 1300, types.SignalBullish},
		{1000, 700, types.SignalBearish},
		{1000, 1000, types.SignalNeutral},
		{1000, 1200, types.SignalNeutral},
		{1000, 800, types.SignalNeutral},
	}
	for _, c := range cases {
		res := Analyze(chain(c.ce, c.pe), DefaultThresholds())
		if res.Signal != c.want {
			t.Errorf("pcr %.2f: got %s want %s", res.PCR, res.Signal, c.want)
		}
	}
}

func TestAnalyzeEmptyChain(t *testing.T) {
	if res := Analyze(types.Chain{}, DefaultThresholds()); res.Signal != types.SignalNeutral {
		t.Errorf("empty chain should be neutral")
	}
}
