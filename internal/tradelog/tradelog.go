// Package tradelog is the per-cycle decision journal: one JSON line per
// strategy cycle in logs/decisions/YYYY-MM-DD.txt, gzipped after retention.
package tradelog

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"nifty-options-bot/internal/types"
)

type DecisionEntry struct {
	Time         string             `json:"time"`
	Status       types.CycleStatus  `json:"status"`
	Underlying   float64            `json:"underlying"`
	PCR          float64            `json:"pcr"`
	ML           types.Signal       `json:"ml"`
	PCRSignal    types.Signal       `json:"pcr_signal"`
	Trend        types.Signal       `json:"trend"`
	Regime       types.Regime       `json:"regime"`
	Candle       types.CandleStatus `json:"candle"`
	Final        types.Signal       `json:"final"`
	Tier         string             `json:"tier,omitempty"`
	ModelTrained bool               `json:"model_trained"`
	Indicators   map[string]float64 `json:"indicators,omitempty"`
	Trades       []string           `json:"trades,omitempty"`
	Reason       string             `json:"reason,omitempty"`
}

func LogDir() string {
	if v := os.Getenv("TRADER_LOG_DIR"); v != "" {
		return v
	}
	return "logs"
}

type Journal struct {
	mu  sync.Mutex
	dir string
	now func() time.Time
}

// New returns a journal rooted at dir ("" means LogDir()).
func New(dir string) *Journal {
	if dir == "" {
		dir = LogDir()
	}
	return &Journal{dir: dir, now: time.Now}
}

func (j *Journal) decisionsFilepath(t time.Time) string {
	return filepath.Join(j.dir, "decisions", types.TradingDay(t)+".txt")
}

func (j *Journal) AppendDecision(e DecisionEntry) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	now := j.now().In(types.IST)
	e.Time = now.Format("2006-01-02 15:04:05")
	p := j.decisionsFilepath(now)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(f, string(b))
	return err
}

// CompressOlder gzips journal files last modified more than retentionDays ago.
func (j *Journal) CompressOlder(retentionDays int) error {
	if retentionDays <= 0 {
		return nil
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	cutoff := j.now().AddDate(0, 0, -retentionDays)
	return filepath.WalkDir(j.dir, func(p string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() || filepath.Ext(p) != ".txt" {
			return nil
		}
		info, err := d.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			return nil
		}
		gz := p + ".gz"
		// already compressed by an earlier run
		if _, err := os.Stat(gz); err == nil {
			_ = os.Remove(p)
			return nil
		}
		if err := gzipFile(p, gz); err != nil {
			return fmt.Errorf("compress %s: %w", p, err)
		}
		return os.Remove(p)
	})
}

func gzipFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	gw := gzip.NewWriter(out)
	if _, err := io.Copy(gw, in); err != nil {
		gw.Close()
		out.Close()
		os.Remove(dst)
		return err
	}
	if err := gw.Close(); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
