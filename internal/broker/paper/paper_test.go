package paper

import (
	"context"
	"math"
	"strings"
	"testing"
	"time"

	"nifty-options-bot/internal/types"
)

func testProvider(now *time.Time) *Provider {
	p := DefaultParams()
	p.Seed = 1
	return newAt(p, func() time.Time { return *now })
}

func TestWarmupHistory(t *testing.T) {
	now := time.Date(2025, 3, 4, 11, 2, 0, 0, types.IST)
	pr := testProvider(&now)
	h, err := pr.FetchHistory(context.Background(), "NIFTY", "5minute")
	if err != nil {
		t.Fatal(err)
	}
	if len(h) < 300 {
		t.Fatalf("expected warmup bars, got %d", len(h))
	}
	for i := 1; i < len(h); i++ {
		if h[i].Ts-h[i-1].Ts != 300 {
			t.Fatalf("bars not spaced by interval at %d", i)
		}
		if h[i].High < math.Max(h[i].Open, h[i].Close) || h[i].Low > math.Min(h[i].Open, h[i].Close) {
			t.Fatalf("inconsistent bar %+v", h[i])
		}
	}

	now = now.Add(15 * time.Minute)
	h2, _ := pr.FetchHistory(context.Background(), "NIFTY", "5minute")
	if len(h2) != len(h)+3 {
		t.Errorf("expected 3 new bars, got %d", len(h2)-len(h))
	}
}

func TestChainShape(t *testing.T) {
	now := time.Date(2025, 3, 5, 11, 0, 0, 0, types.IST)
	pr := testProvider(&now)
	chain, err := pr.FetchChain(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(chain.Rows) != 21 {
		t.Fatalf("rows %d", len(chain.Rows))
	}
	for i, r := range chain.Rows {
		if i > 0 && r.Strike-chain.Rows[i-1].Strike != 50 {
			t.Fatalf("strikes not sorted by step")
		}
		if r.CELTP < math.Max(0, chain.Underlying-r.Strike) || r.PELTP < math.Max(0, r.Strike-chain.Underlying) {
			t.Fatalf("price below intrinsic at %v", r.Strike)
		}
	}
	if types.TradingDay(chain.Expiry) != "2025-03-11" {
		t.Errorf("expiry %v", chain.Expiry)
	}
}

func TestSubmitOrder(t *testing.T) {
	now := time.Now()
	pr := testProvider(&now)
	resp, err := pr.SubmitOrder(context.Background(), types.OrderReq{Symbol: "NIFTY 25850 CE", Side: types.SideBuy, Qty: 50, Price: 120})
	if err != nil || !resp.Accepted() || !strings.HasPrefix(resp.OrderID, "PAPER-") {
		t.Fatalf("got %+v %v", resp, err)
	}
	if resp, _ := pr.SubmitOrder(context.Background(), types.OrderReq{Qty: 0}); resp.Accepted() {
		t.Error("zero quantity should fail")
	}
}
