package kite

import (
	"sort"
	"sync"
	"time"

	"nifty-options-bot/internal/types"
)

func sameDay(a, b time.Time) bool {
	return types.TradingDay(a) == types.TradingDay(b)
}

type legKey struct {
	strike float64
	leg    types.OptionType
}

// instrumentMapper indexes one expiry's option instruments by strike and leg.
type instrumentMapper struct {
	mu       sync.RWMutex
	expiry   time.Time
	loadedOn string
	byLeg    map[legKey]instrument
	strikes  []float64
}

func newInstrumentMapper() *instrumentMapper {
	return &instrumentMapper{byLeg: make(map[legKey]instrument)}
}

// load selects the expiry for the underlying and indexes its CE/PE rows.
// The target weekday expiry wins when listed; otherwise the nearest listed
// expiry on or after today is used.
func (im *instrumentMapper) load(all []instrument, underlying string, now time.Time, weekday time.Weekday) bool {
	today := types.NextExpiry(now, now.In(types.IST).Weekday())
	target := types.NextExpiry(now, weekday)

	var expiries []time.Time
	seen := map[string]bool{}
	for _, in := range all {
		if in.Name != underlying || (in.Type != "CE" && in.Type != "PE") {
			continue
		}
		if in.Expiry.Before(today) && !sameDay(in.Expiry, today) {
			continue
		}
		if d := types.TradingDay(in.Expiry); !seen[d] {
			seen[d] = true
			expiries = append(expiries, in.Expiry)
		}
	}
	if len(expiries) == 0 {
		return false
	}
	sort.Slice(expiries, func(i, j int) bool { return expiries[i].Before(expiries[j]) })
	chosen := expiries[0]
	for _, e := range expiries {
		if sameDay(e, target) {
			chosen = e
			break
		}
	}

	byLeg := make(map[legKey]instrument)
	strikeSet := map[float64]bool{}
	for _, in := range all {
		if in.Name != underlying || !sameDay(in.Expiry, chosen) {
			continue
		}
		var leg types.OptionType
		switch in.Type {
		case "CE":
			leg = types.OptionCall
		case "PE":
			leg = types.OptionPut
		default:
			continue
		}
		byLeg[legKey{in.Strike, leg}] = in
		strikeSet[in.Strike] = true
	}
	strikes := make([]float64, 0, len(strikeSet))
	for s := range strikeSet {
		strikes = append(strikes, s)
	}
	sort.Float64s(strikes)

	im.mu.Lock()
	defer im.mu.Unlock()
	im.expiry = chosen
	im.byLeg = byLeg
	im.strikes = strikes
	im.loadedOn = types.TradingDay(now)
	return true
}

func (im *instrumentMapper) fresh(now time.Time) bool {
	im.mu.RLock()
	defer im.mu.RUnlock()
	return im.loadedOn == types.TradingDay(now) && len(im.strikes) > 0
}

func (im *instrumentMapper) get(strike float64, leg types.OptionType) (instrument, bool) {
	im.mu.RLock()
	defer im.mu.RUnlock()
	in, ok := im.byLeg[legKey{strike, leg}]
	return in, ok
}

// window returns up to n strikes either side of the one nearest price.
func (im *instrumentMapper) window(price float64, n int) []float64 {
	im.mu.RLock()
	defer im.mu.RUnlock()
	if len(im.strikes) == 0 {
		return nil
	}
	atm := 0
	for i, s := range im.strikes {
		if abs(s-price) < abs(im.strikes[atm]-price) {
			atm = i
		}
	}
	lo, hi := atm-n, atm+n+1
	if lo < 0 {
		lo = 0
	}
	if hi > len(im.strikes) {
		hi = len(im.strikes)
	}
	return append([]float64(nil), im.strikes[lo:hi]...)
}

func (im *instrumentMapper) currentExpiry() time.Time {
	im.mu.RLock()
	defer im.mu.RUnlock()
	return im.expiry
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
