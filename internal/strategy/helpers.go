package strategy

import (
	"fmt"
	"math"

	"nifty-options-bot/internal/features"
	"nifty-options-bot/internal/ta"
	"nifty-options-bot/internal/types"
)

// atmRow is the strike closest to the underlying; ties go to the lower strike.
func atmRow(chain types.Chain) (types.ChainRow, bool) {
	best, bestDiff := -1, math.Inf(1)
	for i, r := range chain.Rows {
		d := math.Abs(r.Strike - chain.Underlying)
		if d < bestDiff || (best >= 0 && d == bestDiff && r.Strike < chain.Rows[best].Strike) {
			best, bestDiff = i, d
		}
	}
	if best < 0 {
		return types.ChainRow{}, false
	}
	return chain.Rows[best], true
}

// legPrice resolves a position symbol to its premium in chain.
func legPrice(chain types.Chain, symbol string) (float64, error) {
	_, strike, ot, err := types.ParseOptionSymbol(symbol)
	if err != nil {
		return 0, err
	}
	row, ok := chain.Row(strike)
	if !ok {
		return 0, fmt.Errorf("strike %v not in chain", strike)
	}
	price := row.Price(ot)
	if price <= 0 {
		return 0, fmt.Errorf("no quote for %s", symbol)
	}
	return price, nil
}

func shouldExit(t types.OptionType, final types.Signal) bool {
	return (t == types.OptionCall && final == types.SignalBearish) ||
		(t == types.OptionPut && final == types.SignalBullish)
}

// indicatorMap is the journal's indicator snapshot; absent values are left out.
func indicatorMap(v features.Vector) map[string]float64 {
	out := map[string]float64{}
	for _, col := range []features.Column{
		features.RSI, features.SMA20, features.SMA50, features.MACD, features.ADX,
		features.ATR, features.SupertrendVal, features.SupertrendDir,
	} {
		if x := v.Value(col); !ta.IsAbsent(x) {
			out[string(col)] = x
		}
	}
	return out
}
