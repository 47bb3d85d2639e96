package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParseConfigDefaults(t *testing.T) {
	c, err := ParseConfig([]byte("mode: DRY_RUN\n"))
	if err != nil {
		t.Fatal(err)
	}
	if c.Capital != 150000 || c.LotSize != 50 || c.DailyTarget != 3000 {
		t.Errorf("money defaults: %+v", c)
	}
	if c.Costs.BrokeragePerOrder != 20 || c.Costs.TaxRate != 0.18 {
		t.Errorf("cost defaults: %+v", c.Costs)
	}
	if c.Sentiment.BullishPCR != 1.2 || c.Sentiment.BearishPCR != 0.8 {
		t.Errorf("pcr defaults: %+v", c.Sentiment)
	}
	if c.Regime.FlatADX != 20 || c.Regime.ChoppyADX != 25 {
		t.Errorf("regime defaults: %+v", c.Regime)
	}
	if c.Supertrend.Length != 7 || c.Supertrend.Multiplier != 3 {
		t.Errorf("supertrend defaults: %+v", c.Supertrend)
	}
	if c.Model.Threshold != 0.0002 || c.Model.MinTrainCandles != 200 || c.Model.MinPredictCandles != 60 || c.Model.Seed != 42 {
		t.Errorf("model defaults: %+v", c.Model)
	}
	if c.Expiry() != time.Tuesday || c.PollInterval() != 15*time.Second {
		t.Errorf("expiry %v poll %v", c.Expiry(), c.PollInterval())
	}
	if c.Storage.DBPath != "trading_data.db" || c.UnderlyingToken != 256265 {
		t.Errorf("storage/underlying defaults: %+v", c)
	}
}

func TestParseConfigKeepsExplicitZeros(t *testing.T) {
	c, err := ParseConfig([]byte("costs:\n  brokerage_per_order: 0\n  tax_rate: 0\nmodel:\n  seed: 0\n"))
	if err != nil {
		t.Fatal(err)
	}
	if c.Costs.BrokeragePerOrder != 0 || c.Costs.TaxRate != 0 || c.Model.Seed != 0 {
		t.Errorf("explicit zeros overwritten: costs %+v seed %d", c.Costs, c.Model.Seed)
	}
	// untouched siblings still carry their defaults
	if c.Model.Trees != 100 || c.LotSize != 50 {
		t.Errorf("defaults lost: trees %d lot %d", c.Model.Trees, c.LotSize)
	}
}

func TestDefaultsMatchEmptyConfig(t *testing.T) {
	d, err := Defaults()
	if err != nil {
		t.Fatal(err)
	}
	c, err := ParseConfig(nil)
	if err != nil {
		t.Fatal(err)
	}
	if *d != *c {
		t.Errorf("empty yaml should equal defaults:\n%+v\n%+v", d, c)
	}
	if err := d.Validate(); err != nil {
		t.Errorf("defaults must validate: %v", err)
	}
}

func TestParseConfigOverrides(t *testing.T) {
	c, err := ParseConfig([]byte(`
lot_size: 75
expiry_weekday: Thursday
regime:
  flat_adx: 18
sentiment:
  bullish_pcr: 1.5
`))
	if err != nil {
		t.Fatal(err)
	}
	if c.LotSize != 75 || c.Expiry() != time.Thursday || c.Regime.FlatADX != 18 || c.Regime.ChoppyADX != 25 || c.Sentiment.BullishPCR != 1.5 {
		t.Errorf("overrides not applied: %+v", c)
	}
}

func TestParseConfigRejects(t *testing.T) {
	cases := map[string]string{
		"bad mode":          "mode: PAPER\n",
		"bad source":        "data_source: CSV\n",
		"pcr inverted":      "sentiment:\n  bullish_pcr: 0.7\n",
		"adx inverted":      "regime:\n  flat_adx: 30\n",
		"live needs live":   "mode: LIVE\ndata_source: STATIC\n",
		"bad interval":      "history_interval: 7minute\n",
		"rows over candles": "model:\n  min_train_rows: 500\n",
	}
	for name, y := range cases {
		if _, err := ParseConfig([]byte(y)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("capital: 200000\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := LoadConfig(path)
	if err != nil || c.Capital != 200000 {
		t.Fatalf("got %+v %v", c, err)
	}
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestValidateMessageNamesField(t *testing.T) {
	_, err := ParseConfig([]byte("lot_size: -1\n"))
	if err == nil || !strings.Contains(err.Error(), "LotSize") {
		t.Errorf("got %v", err)
	}
}
