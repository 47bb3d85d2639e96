// Package kite implements the market-data provider and order venue on
// Zerodha Kite Connect.
package kite

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"nifty-options-bot/internal/interfaces"
	"nifty-options-bot/internal/logger"
	"nifty-options-bot/internal/types"
)

var ErrDisconnected = errors.New("kite: not connected")

type Params struct {
	Mode            string // DRY_RUN or LIVE
	APIKey          string
	AccessToken     string
	Exchange        string // derivatives segment, NFO
	Underlying      string // instrument name, NIFTY
	UnderlyingQuote string // quote key, "NSE:NIFTY 50"
	UnderlyingToken int
	ExpiryWeekday   time.Weekday
	StrikesWindow   int
	HistoryDays     int
	Timeout         time.Duration
}

type ConnState int

const (
	Disconnected ConnState = iota
	Connected
)

func (s ConnState) String() string {
	if s == Connected {
		return "CONNECTED"
	}
	return "DISCONNECTED"
}

// Session is the identity returned by a successful Connect.
type Session struct {
	UserID      string
	UserName    string
	ConnectedAt time.Time
}

type Client struct {
	p       Params
	api     kiteAPI
	now     func() time.Time
	mapper  *instrumentMapper
	candles *candleCache

	mu      sync.RWMutex
	state   ConnState
	session Session
}

var (
	_ interfaces.MarketData = (*Client)(nil)
	_ interfaces.OrderVenue = (*Client)(nil)
)

func New(p Params) *Client {
	if p.Timeout <= 0 {
		p.Timeout = 10 * time.Second
	}
	return newWithAPI(p, newSDKClient(p.APIKey, p.AccessToken, p.Timeout))
}

func newWithAPI(p Params, api kiteAPI) *Client {
	if p.Exchange == "" {
		p.Exchange = "NFO"
	}
	if p.StrikesWindow <= 0 {
		p.StrikesWindow = 10
	}
	if p.HistoryDays <= 0 {
		p.HistoryDays = 5
	}
	return &Client{
		p:       p,
		api:     api,
		now:     time.Now,
		mapper:  newInstrumentMapper(),
		candles: newCandleCache(5000),
	}
}

// Connect validates the credentials by fetching the user profile.
func (c *Client) Connect(ctx context.Context) (Session, error) {
	if c.p.APIKey == "" || c.p.AccessToken == "" {
		return Session{}, fmt.Errorf("missing API key/access token: %w", ErrDisconnected)
	}
	if err := ctx.Err(); err != nil {
		return Session{}, err
	}
	id, name, err := c.api.Profile()
	if err != nil {
		c.setState(Disconnected, Session{})
		return Session{}, fmt.Errorf("kite profile: %w", err)
	}
	s := Session{UserID: id, UserName: name, ConnectedAt: c.now()}
	c.setState(Connected, s)
	return s, nil
}

func (c *Client) setState(st ConnState, s Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = st
	c.session = s
}

// State reports the connection and, when connected, its session.
func (c *Client) State() (ConnState, Session) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state, c.session
}

func (c *Client) connected() bool {
	st, _ := c.State()
	return st == Connected
}

func (c *Client) ensureInstruments(ctx context.Context) error {
	now := c.now()
	if c.mapper.fresh(now) {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	op := logger.StartOperation(ctx, "kite.Instruments", "exchange", c.p.Exchange)
	all, err := c.api.Instruments(c.p.Exchange)
	if err != nil {
		err = fmt.Errorf("instruments %s: %w", c.p.Exchange, err)
		op.EndWithError(err)
		return err
	}
	if !c.mapper.load(all, c.p.Underlying, now, c.p.ExpiryWeekday) {
		err := fmt.Errorf("no %s options listed on %s", c.p.Underlying, c.p.Exchange)
		op.EndWithError(err)
		return err
	}
	op.End("instruments", len(all), "expiry", types.TradingDay(c.mapper.currentExpiry()))
	return nil
}

// FetchChain quotes the strikes around ATM for the selected weekly expiry.
// Greeks are not part of Kite quotes and stay zero.
func (c *Client) FetchChain(ctx context.Context) (types.Chain, error) {
	if !c.connected() {
		return types.Chain{}, ErrDisconnected
	}
	if err := c.ensureInstruments(ctx); err != nil {
		return types.Chain{}, err
	}
	ltp, err := c.api.LTP(c.p.UnderlyingQuote)
	if err != nil {
		return types.Chain{}, fmt.Errorf("ltp %s: %w", c.p.UnderlyingQuote, err)
	}
	if ltp <= 0 {
		return types.Chain{}, nil
	}

	strikes := c.mapper.window(ltp, c.p.StrikesWindow)
	keys := make([]string, 0, 2*len(strikes))
	for _, s := range strikes {
		for _, leg := range []types.OptionType{types.OptionCall, types.OptionPut} {
			if in, ok := c.mapper.get(s, leg); ok {
				keys = append(keys, c.p.Exchange+":"+in.Tradingsymbol)
			}
		}
	}
	if len(keys) == 0 {
		return types.Chain{Underlying: ltp}, nil
	}
	if err := ctx.Err(); err != nil {
		return types.Chain{}, err
	}
	quotes, err := c.api.Quotes(keys...)
	if err != nil {
		return types.Chain{}, fmt.Errorf("quotes: %w", err)
	}

	chain := types.Chain{Underlying: ltp, Expiry: c.mapper.currentExpiry()}
	for _, s := range strikes {
		row := types.ChainRow{Strike: s}
		if in, ok := c.mapper.get(s, types.OptionCall); ok {
			q := quotes[c.p.Exchange+":"+in.Tradingsymbol]
			row.CELTP, row.CEOI, row.CEVolume = q.LastPrice, q.OI, q.Volume
		}
		if in, ok := c.mapper.get(s, types.OptionPut); ok {
			q := quotes[c.p.Exchange+":"+in.Tradingsymbol]
			row.PELTP, row.PEOI, row.PEVolume = q.LastPrice, q.OI, q.Volume
		}
		chain.Rows = append(chain.Rows, row)
	}
	sort.Slice(chain.Rows, func(i, j int) bool { return chain.Rows[i].Strike < chain.Rows[j].Strike })
	return chain, nil
}

// FetchHistory returns underlying candles for interval over the configured
// lookback. Only bars newer than the cache are downloaded after the first call.
func (c *Client) FetchHistory(ctx context.Context, symbol, interval string) ([]types.Candle, error) {
	if !c.connected() {
		return nil, ErrDisconnected
	}
	if !strings.EqualFold(symbol, c.p.Underlying) {
		return nil, fmt.Errorf("history for %q: only %s is supported", symbol, c.p.Underlying)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key := symbol + "|" + interval
	to := c.now()
	from := to.AddDate(0, 0, -c.p.HistoryDays)
	if last := c.candles.lastTs(key); last > 0 {
		from = time.Unix(last, 0)
	}
	bars, err := c.api.History(c.p.UnderlyingToken, interval, from, to)
	if err != nil {
		return nil, fmt.Errorf("historical %s %s: %w", symbol, interval, err)
	}
	c.candles.merge(key, bars)
	return c.candles.get(key), nil
}

// SubmitOrder places a limit order (market when price is 0). DRY_RUN fills
// locally. Venue rejections come back as a failed OrderResp.
func (c *Client) SubmitOrder(ctx context.Context, req types.OrderReq) (types.OrderResp, error) {
	if req.Qty <= 0 {
		return types.OrderResp{Status: types.OrderStatusFailed, Message: "quantity must be positive"}, nil
	}
	if c.p.Mode == "DRY_RUN" {
		return types.OrderResp{
			OrderID: "SIM-" + uuid.NewString(),
			Status:  types.OrderStatusSuccess,
			Message: "dry-run",
		}, nil
	}
	if !c.connected() {
		return types.OrderResp{}, ErrDisconnected
	}
	if err := ctx.Err(); err != nil {
		return types.OrderResp{}, err
	}
	_, strike, leg, err := types.ParseOptionSymbol(req.Symbol)
	if err != nil {
		return types.OrderResp{Status: types.OrderStatusFailed, Message: err.Error()}, nil
	}
	in, ok := c.mapper.get(strike, leg)
	if !ok {
		return types.OrderResp{Status: types.OrderStatusFailed, Message: "no instrument for " + req.Symbol}, nil
	}
	id, err := c.api.PlaceOrder(orderParams{
		Exchange:        c.p.Exchange,
		Tradingsymbol:   in.Tradingsymbol,
		TransactionType: req.Side,
		Quantity:        req.Qty,
		Price:           req.Price,
		Tag:             req.Tag,
	})
	if err != nil {
		return types.OrderResp{Status: types.OrderStatusFailed, Message: err.Error()}, nil
	}
	return types.OrderResp{OrderID: id, Status: types.OrderStatusSuccess}, nil
}
