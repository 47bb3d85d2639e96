package ledger

import (
	"errors"
	"math"
	"testing"

	"nifty-options-bot/internal/types"
)

func near(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

func newLedger(capital float64) *Ledger {
	return New(capital, Costs{BrokeragePerOrder: 20, TaxRate: 0.18})
}

func TestOpenDebitsCostAndCommission(t *testing.T) {
	l := newLedger(150000)
	if _, err := l.Open("NIFTY 20000 CE", types.OptionCall, 50, 100); err != nil {
		t.Fatal(err)
	}
	if !near(150000-l.Capital(), 5023.6) {
		t.Errorf("debited %v, want 5023.6", 150000-l.Capital())
	}
	if !near(l.Charges(), 23.6) {
		t.Errorf("charges %v", l.Charges())
	}
	if !near(l.Commission(), 23.6) {
		t.Errorf("commission %v", l.Commission())
	}
	if !near(l.EntryCost(50, 100), 5023.6) {
		t.Errorf("entry cost %v", l.EntryCost(50, 100))
	}
}

func TestCloseRealizesNetPnL(t *testing.T) {
	l := newLedger(150000)
	l.Open("NIFTY 20000 CE", types.OptionCall, 50, 100)
	c, err := l.Close("NIFTY 20000 CE", 120)
	if err != nil {
		t.Fatal(err)
	}
	if !near(c.Gross, 1000) || !near(c.Net, 952.8) {
		t.Errorf("gross %v net %v", c.Gross, c.Net)
	}
	if !near(l.RealizedPnL(), 952.8) {
		t.Errorf("realized %v", l.RealizedPnL())
	}
	if !near(l.Capital(), 150952.8) {
		t.Errorf("capital %v", l.Capital())
	}
	if l.HasPositions() {
		t.Errorf("position should be removed")
	}
}

func TestOpenInsufficientCapital(t *testing.T) {
	l := newLedger(5000)
	_, err := l.Open("NIFTY 20000 CE", types.OptionCall, 50, 100)
	if !errors.Is(err, ErrInsufficientCapital) {
		t.Fatalf("got %v", err)
	}
	if l.Capital() != 5000 || l.Charges() != 0 || l.HasPositions() {
		t.Errorf("ledger mutated on rejected open: %+v", l.Snapshot())
	}
}

func TestCloseUnknownPosition(t *testing.T) {
	l := newLedger(1000)
	if _, err := l.Close("NIFTY 20000 PE", 10); !errors.Is(err, ErrPositionNotFound) {
		t.Fatalf("got %v", err)
	}
	if err := l.Mark("NIFTY 20000 PE", 10); !errors.Is(err, ErrPositionNotFound) {
		t.Fatalf("got %v", err)
	}
	if l.Capital() != 1000 {
		t.Errorf("capital changed")
	}
}

func TestMarkIdempotent(t *testing.T) {
	l := newLedger(150000)
	l.Open("NIFTY 20000 PE", types.OptionPut, 50, 100)
	l.Mark("NIFTY 20000 PE", 110)
	first := l.UnrealizedPnL()
	l.Mark("NIFTY 20000 PE", 110)
	if l.UnrealizedPnL() != first || !near(first, 500) {
		t.Errorf("unrealized %v then %v", first, l.UnrealizedPnL())
	}
	if !near(l.TotalPnL(), 500) {
		t.Errorf("total %v", l.TotalPnL())
	}
}

func TestEquityDuringHold(t *testing.T) {
	l := newLedger(150000)
	l.Open("NIFTY 20000 CE", types.OptionCall, 50, 100)
	if !near(l.Equity(), 150000-23.6) {
		t.Errorf("equity %v", l.Equity())
	}
	l.Mark("NIFTY 20000 CE", 120)
	snap := l.Snapshot()
	if !near(snap.Equity, 150000-23.6+1000) || len(snap.Positions) != 1 {
		t.Errorf("snapshot %+v", snap)
	}
}
