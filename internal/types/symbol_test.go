package types

import "testing"

func TestOptionSymbolRoundTrip(t *testing.T) {
	s := FormatOptionSymbol("NIFTY", 25800, OptionCall)
	if s != "NIFTY 25800 CE" {
		t.Fatalf("got %q", s)
	}
	u, strike, leg, err := ParseOptionSymbol(s)
	if err != nil || u != "NIFTY" || strike != 25800 || leg != OptionCall {
		t.Fatalf("parse: %q %v %v %v", u, strike, leg, err)
	}
	if got := FormatOptionSymbol("NIFTY BANK", 48050.5, OptionPut); got != "NIFTY BANK 48050.5 PE" {
		t.Errorf("got %q", got)
	}
}

func TestParseOptionSymbolRejects(t *testing.T) {
	for _, s := range []string{"", "NIFTY", "NIFTY 25800", "NIFTY abc CE", "NIFTY 25800 XX", "NIFTY -5 PE"} {
		if _, _, _, err := ParseOptionSymbol(s); err == nil {
			t.Errorf("%q should not parse", s)
		}
	}
}

func TestSignalOpposite(t *testing.T) {
	if SignalBullish.Opposite() != SignalBearish || SignalNeutral.Opposite() != SignalNeutral {
		t.Errorf("unexpected opposite")
	}
}
