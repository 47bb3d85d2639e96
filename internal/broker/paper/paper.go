// Package paper is a simulated market and venue for running the bot without
// a broker: a random-walk underlying, a synthetic option chain around it and
// instant fills.
package paper

import (
	"context"
	"math"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"nifty-options-bot/internal/interfaces"
	"nifty-options-bot/internal/types"
)

type Params struct {
	Underlying    string
	StartPrice    float64
	StrikeStep    float64
	StrikesWindow int
	Interval      time.Duration
	WarmupBars    int
	ExpiryWeekday time.Weekday
	Seed          int64
}

func DefaultParams() Params {
	return Params{
		Underlying:    "NIFTY",
		StartPrice:    25845,
		StrikeStep:    50,
		StrikesWindow: 10,
		Interval:      5 * time.Minute,
		WarmupBars:    300,
		ExpiryWeekday: time.Tuesday,
		Seed:          time.Now().UnixNano(),
	}
}

type Provider struct {
	p   Params
	now func() time.Time

	mu      sync.Mutex
	rng     *rand.Rand
	candles []types.Candle
}

var (
	_ interfaces.MarketData = (*Provider)(nil)
	_ interfaces.OrderVenue = (*Provider)(nil)
)

func New(p Params) *Provider {
	return newAt(p, time.Now)
}

func newAt(p Params, now func() time.Time) *Provider {
	if p.StrikeStep <= 0 {
		p.StrikeStep = 50
	}
	if p.Interval <= 0 {
		p.Interval = 5 * time.Minute
	}
	pr := &Provider{p: p, now: now, rng: rand.New(rand.NewSource(p.Seed))}
	pr.warmup()
	return pr
}

func (pr *Provider) warmup() {
	step := int64(pr.p.Interval / time.Second)
	end := pr.now().Unix() / step * step
	price := pr.p.StartPrice
	for i := pr.p.WarmupBars; i > 0; i-- {
		c := pr.nextBar(end-int64(i)*step, price)
		price = c.Close
		pr.candles = append(pr.candles, c)
	}
}

func (pr *Provider) nextBar(ts int64, open float64) types.Candle {
	cl := open + pr.rng.NormFloat64()*open*0.0008
	hi := math.Max(open, cl) + pr.rng.Float64()*open*0.0003
	lo := math.Min(open, cl) - pr.rng.Float64()*open*0.0003
	return types.Candle{
		Ts:    ts,
		Open:  round2(open),
		High:  round2(hi),
		Low:   round2(lo),
		Close: round2(cl),
		Vol:   float64(50000 + pr.rng.Intn(150000)),
	}
}

// advance appends bars until the series reaches the current interval.
func (pr *Provider) advance() {
	step := int64(pr.p.Interval / time.Second)
	now := pr.now().Unix() / step * step
	last := pr.p.StartPrice
	var lastTs int64
	if n := len(pr.candles); n > 0 {
		last, lastTs = pr.candles[n-1].Close, pr.candles[n-1].Ts
	} else {
		lastTs = now - step
	}
	for ts := lastTs + step; ts <= now; ts += step {
		c := pr.nextBar(ts, last)
		last = c.Close
		pr.candles = append(pr.candles, c)
	}
}

func (pr *Provider) FetchHistory(ctx context.Context, symbol, interval string) ([]types.Candle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !strings.EqualFold(symbol, pr.p.Underlying) {
		return nil, nil
	}
	pr.mu.Lock()
	defer pr.mu.Unlock()
	pr.advance()
	return append([]types.Candle(nil), pr.candles...), nil
}

// FetchChain prices each strike as intrinsic value plus a time value that
// decays with distance from spot.
func (pr *Provider) FetchChain(ctx context.Context) (types.Chain, error) {
	if err := ctx.Err(); err != nil {
		return types.Chain{}, err
	}
	pr.mu.Lock()
	defer pr.mu.Unlock()
	pr.advance()

	ltp := pr.p.StartPrice
	if n := len(pr.candles); n > 0 {
		ltp = pr.candles[n-1].Close
	}
	ltp = round2(ltp + (pr.rng.Float64()-0.5)*4)

	step := pr.p.StrikeStep
	atm := math.Round(ltp/step) * step
	chain := types.Chain{Underlying: ltp, Expiry: types.NextExpiry(pr.now(), pr.p.ExpiryWeekday)}
	for i := -pr.p.StrikesWindow; i <= pr.p.StrikesWindow; i++ {
		strike := atm + float64(i)*step
		dist := strike - ltp
		timeValue := math.Max(0, 200-math.Abs(dist)*0.2)
		row := types.ChainRow{
			Strike:   strike,
			CELTP:    round2(math.Max(0, ltp-strike) + timeValue),
			PELTP:    round2(math.Max(0, strike-ltp) + timeValue),
			CEOI:     float64(50000 + pr.rng.Intn(450000)),
			PEOI:     float64(50000 + pr.rng.Intn(450000)),
			CEVolume: float64(1000 + pr.rng.Intn(99000)),
			PEVolume: float64(1000 + pr.rng.Intn(99000)),
			CEDelta:  clamp(round2(0.5-dist/1000), 0, 1),
			PEDelta:  clamp(round2(-0.5-dist/1000), -1, 0),
			CEGamma:  0.001,
			PEGamma:  0.001,
			CETheta:  -15.5,
			PETheta:  -15.5,
			CEVega:   12.5,
			PEVega:   12.5,
			CEIV:     14.5,
			PEIV:     15.2,
		}
		chain.Rows = append(chain.Rows, row)
	}
	return chain, nil
}

// SubmitOrder fills immediately at the requested price.
func (pr *Provider) SubmitOrder(ctx context.Context, req types.OrderReq) (types.OrderResp, error) {
	if err := ctx.Err(); err != nil {
		return types.OrderResp{}, err
	}
	if req.Qty <= 0 || req.Price < 0 {
		return types.OrderResp{Status: types.OrderStatusFailed, Message: "invalid quantity or price"}, nil
	}
	return types.OrderResp{OrderID: "PAPER-" + uuid.NewString(), Status: types.OrderStatusSuccess, Message: "paper fill"}, nil
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

func clamp(v, lo, hi float64) float64 { return math.Max(lo, math.Min(hi, v)) }
