package eod

// aggRow is one symbol's day of fills.
type aggRow struct {
	Symbol      string
	BuyQty      int
	BuyValue    float64
	SellQty     int
	SellValue   float64
	RealizedPnL float64
	Trades      int
}

func (r aggRow) buyAvg() float64 {
	if r.BuyQty == 0 {
		return 0
	}
	return r.BuyValue / float64(r.BuyQty)
}

func (r aggRow) sellAvg() float64 {
	if r.SellQty == 0 {
		return 0
	}
	return r.SellValue / float64(r.SellQty)
}
