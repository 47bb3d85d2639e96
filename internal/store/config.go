package store

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var validate = validator.New()

type Config struct {
	Mode            string `yaml:"mode" default:"DRY_RUN" validate:"oneof=DRY_RUN LIVE"`
	DataSource      string `yaml:"data_source" default:"STATIC" validate:"oneof=STATIC LIVE"`
	PollSeconds     int    `yaml:"poll_seconds" default:"15" validate:"gte=1"`
	Underlying      string `yaml:"underlying" default:"NIFTY" validate:"required"`
	UnderlyingQuote string `yaml:"underlying_quote" default:"NSE:NIFTY 50" validate:"required"`
	UnderlyingToken int    `yaml:"underlying_token" default:"256265" validate:"gt=0"`
	Exchange        string `yaml:"exchange" default:"NFO" validate:"required"`
	HistoryInterval string `yaml:"history_interval" default:"5minute" validate:"oneof=minute 3minute 5minute 10minute 15minute 30minute 60minute day"`
	HistoryDays     int    `yaml:"history_days" default:"5" validate:"gte=1,lte=60"`
	ExpiryWeekday   string `yaml:"expiry_weekday" default:"Tuesday" validate:"oneof=Monday Tuesday Wednesday Thursday Friday"`
	StrikesWindow   int    `yaml:"strikes_window" default:"10" validate:"gte=1,lte=50"`

	Capital     float64 `yaml:"capital" default:"150000" validate:"gt=0"`
	LotSize     int     `yaml:"lot_size" default:"50" validate:"gt=0"`
	DailyTarget float64 `yaml:"daily_target" default:"3000" validate:"gt=0"`

	Costs struct {
		BrokeragePerOrder float64 `yaml:"brokerage_per_order" default:"20" validate:"gte=0"`
		TaxRate           float64 `yaml:"tax_rate" default:"0.18" validate:"gte=0,lt=1"`
	} `yaml:"costs"`
	Sentiment struct {
		BullishPCR float64 `yaml:"bullish_pcr" default:"1.2" validate:"gt=0"`
		BearishPCR float64 `yaml:"bearish_pcr" default:"0.8" validate:"gt=0"`
	} `yaml:"sentiment"`
	Regime struct {
		FlatADX   float64 `yaml:"flat_adx" default:"20" validate:"gt=0,lte=100"`
		ChoppyADX float64 `yaml:"choppy_adx" default:"25" validate:"gt=0,lte=100"`
	} `yaml:"regime"`
	Supertrend struct {
		Length     int     `yaml:"length" default:"7" validate:"gte=1"`
		Multiplier float64 `yaml:"multiplier" default:"3" validate:"gt=0"`
	} `yaml:"supertrend"`
	Model struct {
		Threshold         float64 `yaml:"threshold" default:"0.0002" validate:"gt=0,lt=0.1"`
		MinTrainCandles   int     `yaml:"min_train_candles" default:"200" validate:"gte=1"`
		MinTrainRows      int     `yaml:"min_train_rows" default:"100" validate:"gte=1"`
		MinPredictCandles int     `yaml:"min_predict_candles" default:"60" validate:"gte=1"`
		Trees             int     `yaml:"trees" default:"100" validate:"gte=1,lte=1000"`
		MaxDepth          int     `yaml:"max_depth" default:"8" validate:"gte=1,lte=32"`
		MinLeaf           int     `yaml:"min_leaf" default:"2" validate:"gte=1"`
		Seed              int64   `yaml:"seed" default:"42"`
		TestFraction      float64 `yaml:"test_fraction" default:"0.2" validate:"gt=0,lt=1"`
	} `yaml:"model"`
	Storage struct {
		DBPath string `yaml:"db_path" default:"trading_data.db" validate:"required"`
	} `yaml:"storage"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Addr    string `yaml:"addr" default:":9090"`
	} `yaml:"metrics"`
}

// Expiry returns the configured weekly expiry weekday.
func (c *Config) Expiry() time.Weekday {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.EqualFold(d.String(), c.ExpiryWeekday) {
			return d
		}
	}
	return time.Tuesday
}

func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollSeconds) * time.Second
}

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, e := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed '%s'", e.Namespace(), e.Tag()))
			}
			return errors.New(strings.Join(msgs, "; "))
		}
		return err
	}
	if c.Sentiment.BearishPCR >= c.Sentiment.BullishPCR {
		return fmt.Errorf("sentiment.bearish_pcr (%.2f) must be below bullish_pcr (%.2f)", c.Sentiment.BearishPCR, c.Sentiment.BullishPCR)
	}
	if c.Regime.FlatADX >= c.Regime.ChoppyADX {
		return fmt.Errorf("regime.flat_adx (%.1f) must be below choppy_adx (%.1f)", c.Regime.FlatADX, c.Regime.ChoppyADX)
	}
	if c.Model.MinTrainRows > c.Model.MinTrainCandles {
		return fmt.Errorf("model.min_train_rows (%d) cannot exceed min_train_candles (%d)", c.Model.MinTrainRows, c.Model.MinTrainCandles)
	}
	if c.Mode == "LIVE" && c.DataSource != "LIVE" {
		return errors.New("LIVE mode requires data_source LIVE")
	}
	return nil
}

// Defaults returns a configuration with every default applied.
func Defaults() (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

// ParseConfig decodes yaml over the defaults and validates. Keys present in
// the yaml win, explicit zeros included.
func ParseConfig(b []byte) (*Config, error) {
	c, err := Defaults()
	if err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return c, nil
}

func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseConfig(b)
}
