// Package confluence combines the independent signals into one trade signal.
package confluence

import "nifty-options-bot/internal/types"

type Tier int

const (
	TierNone Tier = iota
	// TierFull: ml, pcr and trend agree.
	TierFull
	// TierTrend: ml and trend agree, pcr not opposed.
	TierTrend
	// TierScalp: ml and the current candle agree, pcr not opposed.
	TierScalp
)

func (t Tier) String() string {
	switch t {
	case TierFull:
		return "full"
	case TierTrend:
		return "trend"
	case TierScalp:
		return "scalp"
	}
	return "none"
}

type Inputs struct {
	ML     types.Signal
	PCR    types.Signal
	Trend  types.Signal
	Candle types.CandleStatus
}

// Decide evaluates the tiers in order and returns the first match.
func Decide(in Inputs) (types.Signal, Tier) {
	for _, s := range []types.Signal{types.SignalBullish, types.SignalBearish} {
		if in.ML == s && in.PCR == s && in.Trend == s {
			return s, TierFull
		}
	}
	for _, s := range []types.Signal{types.SignalBullish, types.SignalBearish} {
		if in.ML == s && in.Trend == s && in.PCR != s.Opposite() {
			return s, TierTrend
		}
	}
	for _, s := range []types.Signal{types.SignalBullish, types.SignalBearish} {
		if in.ML == s && candleSignal(in.Candle) == s && in.PCR != s.Opposite() {
			return s, TierScalp
		}
	}
	return types.SignalNeutral, TierNone
}

func candleSignal(c types.CandleStatus) types.Signal {
	switch c {
	case types.CandleBullish:
		return types.SignalBullish
	case types.CandleBearish:
		return types.SignalBearish
	}
	return types.SignalNeutral
}
