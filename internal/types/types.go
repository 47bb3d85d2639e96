package types

import "time"

// Candle is one OHLCV bar. Ts is a unix timestamp in seconds.
type Candle struct {
	Ts                          int64
	Open, High, Low, Close, Vol float64
}

// ChainRow is one strike of an option chain snapshot with both legs quoted.
type ChainRow struct {
	Strike float64 `json:"strike_price"`

	CELTP    float64 `json:"ce_ltp"`
	PELTP    float64 `json:"pe_ltp"`
	CEOI     float64 `json:"ce_oi"`
	PEOI     float64 `json:"pe_oi"`
	CEVolume float64 `json:"ce_volume"`
	PEVolume float64 `json:"pe_volume"`

	CEDelta float64 `json:"ce_delta"`
	PEDelta float64 `json:"pe_delta"`
	CETheta float64 `json:"ce_theta"`
	PETheta float64 `json:"pe_theta"`
	CEGamma float64 `json:"ce_gamma"`
	PEGamma float64 `json:"pe_gamma"`
	CEVega  float64 `json:"ce_vega"`
	PEVega  float64 `json:"pe_vega"`
	CEIV    float64 `json:"ce_iv"`
	PEIV    float64 `json:"pe_iv"`
}

// Price returns the quoted premium of the given leg.
func (r ChainRow) Price(t OptionType) float64 {
	if t == OptionPut {
		return r.PELTP
	}
	return r.CELTP
}

// Chain is an option-chain snapshot, rows sorted by strike.
type Chain struct {
	Rows       []ChainRow `json:"rows"`
	Underlying float64    `json:"underlying_ltp"`
	Expiry     time.Time  `json:"expiry"`
}

// Empty reports whether the snapshot carries no strikes.
func (c Chain) Empty() bool { return len(c.Rows) == 0 }

// Row returns the row for an exact strike.
func (c Chain) Row(strike float64) (ChainRow, bool) {
	for _, r := range c.Rows {
		if r.Strike == strike {
			return r, true
		}
	}
	return ChainRow{}, false
}

type Signal string

const (
	SignalBullish Signal = "BULLISH"
	SignalBearish Signal = "BEARISH"
	SignalNeutral Signal = "NEUTRAL"
)

// Opposite returns the mirrored directional signal. NEUTRAL maps to itself.
func (s Signal) Opposite() Signal {
	switch s {
	case SignalBullish:
		return SignalBearish
	case SignalBearish:
		return SignalBullish
	}
	return SignalNeutral
}

// Direction is the model's class label: +1 up, -1 down, 0 flat.
type Direction int

const (
	DirectionDown Direction = -1
	DirectionFlat Direction = 0
	DirectionUp   Direction = 1
)

func (d Direction) Signal() Signal {
	switch d {
	case DirectionUp:
		return SignalBullish
	case DirectionDown:
		return SignalBearish
	}
	return SignalNeutral
}

type CandleStatus string

const (
	CandleBullish CandleStatus = "BULLISH"
	CandleBearish CandleStatus = "BEARISH"
	CandleDoji    CandleStatus = "DOJI"
)

type Regime string

const (
	RegimeFlat     Regime = "FLAT"
	RegimeChoppy   Regime = "CHOPPY"
	RegimeTrending Regime = "TRENDING"
	// RegimeUnknown is reported when ADX is absent for the latest bar.
	RegimeUnknown Regime = "UNKNOWN"
)

type OptionType string

const (
	OptionCall OptionType = "CALL"
	OptionPut  OptionType = "PUT"
)

// Code is the exchange suffix for the leg ("CE" / "PE").
func (t OptionType) Code() string {
	if t == OptionPut {
		return "PE"
	}
	return "CE"
}

const (
	SideBuy  = "BUY"
	SideSell = "SELL"
)

type OrderReq struct {
	Symbol, Side string
	Qty          int
	Price        float64
	Tag          string
}

const (
	OrderStatusSuccess = "success"
	OrderStatusFailed  = "failed"
)

type OrderResp struct {
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// Accepted reports whether the venue took the order.
func (r OrderResp) Accepted() bool { return r.Status == OrderStatusSuccess }

// TradeRecord is one executed fill kept for audit. RealizedPnL is set on exits only.
type TradeRecord struct {
	ID              int64     `json:"id,omitempty"`
	Time            time.Time `json:"time"`
	Symbol          string    `json:"symbol"`
	OrderType       string    `json:"order_type"`
	TransactionType string    `json:"transaction_type"`
	Quantity        int       `json:"quantity"`
	Price           float64   `json:"price"`
	Status          string    `json:"status"`
	OrderID         string    `json:"order_id"`
	RealizedPnL     *float64  `json:"realized_pnl,omitempty"`
}

const TradeStatusExecuted = "EXECUTED"

type CycleStatus string

const (
	CycleOK            CycleStatus = "OK"
	CycleTargetReached CycleStatus = "TARGET_REACHED"
	CycleNoData        CycleStatus = "NO_DATA"
)

// CycleResult is everything one orchestrator pass decided, returned for observability.
type CycleResult struct {
	Status       CycleStatus   `json:"status"`
	Time         time.Time     `json:"time"`
	Underlying   float64       `json:"underlying_ltp"`
	PCR          float64       `json:"pcr"`
	MLSignal     Signal        `json:"ml_signal"`
	PCRSignal    Signal        `json:"pcr_signal"`
	TrendSignal  Signal        `json:"trend_signal"`
	Regime       Regime        `json:"regime"`
	CandleStatus CandleStatus  `json:"candle_status"`
	FinalSignal  Signal        `json:"signal"`
	Tier         string        `json:"tier,omitempty"`
	ModelTrained bool          `json:"model_trained"`
	Trades       []TradeRecord `json:"trades"`
	RealizedPnL  float64       `json:"realized_pnl"`
	Unrealized   float64       `json:"unrealized_pnl"`
	TotalPnL     float64       `json:"total_pnl"`
	Capital      float64       `json:"capital"`
	DailyPnL     float64       `json:"daily_realized_pnl"`
	Reason       string        `json:"reason,omitempty"`
}

// IST is the exchange timezone (UTC+5:30); trading days are IST calendar days.
var IST = time.FixedZone("IST", 19800)

// TradingDay formats t as the IST calendar date.
func TradingDay(t time.Time) string {
	return t.In(IST).Format("2006-01-02")
}

// NextExpiry returns IST midnight of the next weekly expiry; today when today
// is the expiry weekday.
func NextExpiry(now time.Time, weekday time.Weekday) time.Time {
	ist := now.In(IST)
	d := ist.AddDate(0, 0, (int(weekday)-int(ist.Weekday())+7)%7)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, IST)
}
