package kite

import (
	"net/http"
	"time"

	kiteconnect "github.com/zerodha/gokiteconnect/v4"

	"nifty-options-bot/internal/types"
)

// instrument is the subset of a Kite instrument-dump row the provider needs.
type instrument struct {
	Token         int
	Tradingsymbol string
	Name          string
	Expiry        time.Time
	Strike        float64
	LotSize       int
	Type          string // CE, PE, FUT, EQ
	Exchange      string
}

type quote struct {
	LastPrice float64
	Volume    float64
	OI        float64
}

type orderParams struct {
	Exchange        string
	Tradingsymbol   string
	TransactionType string
	Quantity        int
	Price           float64
	Tag             string
}

// kiteAPI is the slice of Kite Connect used by Client.
type kiteAPI interface {
	Profile() (userID, userName string, err error)
	Instruments(exchange string) ([]instrument, error)
	Quotes(keys ...string) (map[string]quote, error)
	LTP(key string) (float64, error)
	History(token int, interval string, from, to time.Time) ([]types.Candle, error)
	PlaceOrder(p orderParams) (string, error)
}

type sdkClient struct {
	kc *kiteconnect.Client
}

func newSDKClient(apiKey, accessToken string, timeout time.Duration) *sdkClient {
	kc := kiteconnect.New(apiKey)
	kc.SetAccessToken(accessToken)
	kc.SetHTTPClient(&http.Client{Timeout: timeout})
	return &sdkClient{kc: kc}
}

func (s *sdkClient) Profile() (string, string, error) {
	p, err := s.kc.GetUserProfile()
	if err != nil {
		return "", "", err
	}
	return p.UserID, p.UserName, nil
}

func (s *sdkClient) Instruments(exchange string) ([]instrument, error) {
	all, err := s.kc.GetInstrumentsByExchange(exchange)
	if err != nil {
		return nil, err
	}
	out := make([]instrument, 0, len(all))
	for _, in := range all {
		out = append(out, instrument{
			Token:         int(in.InstrumentToken),
			Tradingsymbol: in.Tradingsymbol,
			Name:          in.Name,
			Expiry:        in.Expiry.Time,
			Strike:        float64(in.StrikePrice),
			LotSize:       int(in.LotSize),
			Type:          in.InstrumentType,
			Exchange:      in.Exchange,
		})
	}
	return out, nil
}

func (s *sdkClient) Quotes(keys ...string) (map[string]quote, error) {
	q, err := s.kc.GetQuote(keys...)
	if err != nil {
		return nil, err
	}
	out := make(map[string]quote, len(q))
	for k, v := range q {
		out[k] = quote{LastPrice: v.LastPrice, Volume: float64(v.Volume), OI: float64(v.OI)}
	}
	return out, nil
}

func (s *sdkClient) LTP(key string) (float64, error) {
	q, err := s.kc.GetLTP(key)
	if err != nil {
		return 0, err
	}
	v, ok := q[key]
	if !ok {
		return 0, nil
	}
	return v.LastPrice, nil
}

func (s *sdkClient) History(token int, interval string, from, to time.Time) ([]types.Candle, error) {
	data, err := s.kc.GetHistoricalData(token, interval, from, to, false, false)
	if err != nil {
		return nil, err
	}
	out := make([]types.Candle, 0, len(data))
	for _, d := range data {
		out = append(out, types.Candle{
			Ts:    d.Date.Time.Unix(),
			Open:  d.Open,
			High:  d.High,
			Low:   d.Low,
			Close: d.Close,
			Vol:   float64(d.Volume),
		})
	}
	return out, nil
}

func (s *sdkClient) PlaceOrder(p orderParams) (string, error) {
	orderType := kiteconnect.OrderTypeMarket
	if p.Price > 0 {
		orderType = kiteconnect.OrderTypeLimit
	}
	resp, err := s.kc.PlaceOrder(kiteconnect.VarietyRegular, kiteconnect.OrderParams{
		Exchange:        p.Exchange,
		Tradingsymbol:   p.Tradingsymbol,
		Validity:        kiteconnect.ValidityDay,
		Product:         kiteconnect.ProductMIS,
		OrderType:       orderType,
		TransactionType: p.TransactionType,
		Quantity:        p.Quantity,
		Price:           p.Price,
		Tag:             p.Tag,
	})
	if err != nil {
		return "", err
	}
	return resp.OrderID, nil
}
