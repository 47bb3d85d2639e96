// Package sentiment turns an option chain into a put/call open-interest ratio.
package sentiment

import "nifty-options-bot/internal/types"

type Thresholds struct {
	Bullish float64
	Bearish float64
}

func DefaultThresholds() Thresholds {
	return Thresholds{Bullish: 1.2, Bearish: 0.8}
}

type Result struct {
	PCR     float64
	Signal  types.Signal
	TotalCE float64
	TotalPE float64
}

// Analyze computes PCR = Σpe_oi / Σce_oi. Zero call OI yields PCR 0 and NEUTRAL.
func Analyze(chain types.Chain, th Thresholds) Result {
	var res Result
	for _, r := range chain.Rows {
		res.TotalCE += r.CEOI
		res.TotalPE += r.PEOI
	}
	if res.TotalCE == 0 {
		res.Signal = types.SignalNeutral
		return res
	}
	res.PCR = res.TotalPE / res.TotalCE
	res.Signal = Label(res.PCR, th)
	return res
}

// Label maps a ratio onto a signal.
func Label(pcr float64, th Thresholds) types.Signal {
	switch {
	case pcr > th.Bullish:
		return types.SignalBullish
	case pcr < th.Bearish:
		return types.SignalBearish
	}
	return types.SignalNeutral
}
