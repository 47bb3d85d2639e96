package brokerobs

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"nifty-options-bot/internal/metrics"
	"nifty-options-bot/internal/types"
)

type stubBroker struct {
	chainErr error
	resp     types.OrderResp
}

func (s *stubBroker) FetchChain(context.Context) (types.Chain, error) {
	if s.chainErr != nil {
		return types.Chain{}, s.chainErr
	}
	return types.Chain{Underlying: 22000, Rows: []types.ChainRow{{Strike: 22000}}}, nil
}

func (s *stubBroker) FetchHistory(context.Context, string, string) ([]types.Candle, error) {
	return []types.Candle{{Ts: 1}}, nil
}

func (s *stubBroker) SubmitOrder(context.Context, types.OrderReq) (types.OrderResp, error) {
	return s.resp, nil
}

func TestWrappersPassThrough(t *testing.T) {
	rec := metrics.New(prometheus.NewRegistry())
	inner := &stubBroker{resp: types.OrderResp{OrderID: "1", Status: types.OrderStatusSuccess}}
	md := WrapMarketData(inner, rec)
	v := WrapVenue(inner, rec)
	ctx := context.Background()

	chain, err := md.FetchChain(ctx)
	if err != nil || chain.Underlying != 22000 {
		t.Fatalf("chain %+v %v", chain, err)
	}
	h, err := md.FetchHistory(ctx, "NIFTY", "5minute")
	if err != nil || len(h) != 1 {
		t.Fatalf("history %v %v", h, err)
	}
	resp, err := v.SubmitOrder(ctx, types.OrderReq{Symbol: "NIFTY 22000 CE", Side: types.SideBuy, Qty: 50})
	if err != nil || resp.OrderID != "1" {
		t.Fatalf("order %+v %v", resp, err)
	}
}

func TestWrapperPropagatesErrors(t *testing.T) {
	boom := errors.New("boom")
	md := WrapMarketData(&stubBroker{chainErr: boom}, nil)
	if _, err := md.FetchChain(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("got %v", err)
	}
}
