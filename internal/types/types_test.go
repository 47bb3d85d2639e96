package types

import (
	"testing"
	"time"
)

func TestNextExpiry(t *testing.T) {
	tuesday := time.Date(2025, 3, 4, 10, 0, 0, 0, IST)
	cases := []struct {
		now  time.Time
		want string
	}{
		{tuesday, "2025-03-04"},
		{tuesday.AddDate(0, 0, 1), "2025-03-11"},
		{tuesday.AddDate(0, 0, -1), "2025-03-04"},
		{time.Date(2025, 3, 3, 20, 0, 0, 0, time.UTC), "2025-03-04"},
	}
	for _, c := range cases {
		if got := TradingDay(NextExpiry(c.now, time.Tuesday)); got != c.want {
			t.Errorf("NextExpiry(%v) = %s, want %s", c.now, got, c.want)
		}
	}
}

func TestChainRow(t *testing.T) {
	c := Chain{Rows: []ChainRow{{Strike: 22000, CELTP: 110, PELTP: 90}}}
	r, ok := c.Row(22000)
	if !ok || r.Price(OptionCall) != 110 || r.Price(OptionPut) != 90 {
		t.Errorf("got %+v %v", r, ok)
	}
	if _, ok := c.Row(22050); ok {
		t.Error("unexpected row")
	}
	if !(Chain{}).Empty() {
		t.Error("empty chain")
	}
}
