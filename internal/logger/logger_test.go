package logger

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFileSinkReceivesLogs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bot.log")
	if err := InitWithConfig(LogConfig{Level: "INFO", Format: "json", File: path, MaxSizeMB: 1}); err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	Info(ctx, "cycle done", "status", "OK")
	Debug(ctx, "hidden detail")
	Trade(ctx, "NIFTY 22000 CE", "BUY", 50, 101.5, "abc")
	if err := Shutdown(); err != nil {
		t.Fatal(err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	out := string(b)
	if !strings.Contains(out, `"msg":"cycle done"`) || !strings.Contains(out, `"type":"TRADE"`) {
		t.Errorf("missing entries: %s", out)
	}
	if strings.Contains(out, "hidden detail") {
		t.Errorf("debug should be gated by detailed logging")
	}
}

func TestDetailedLoggingAddsSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bot.log")
	InitWithConfig(LogConfig{Level: "DEBUG", Format: "json", DetailedLogging: true, File: path, MaxSizeMB: 1})
	InfoSkip(context.Background(), 0, "with source")
	Shutdown()
	b, _ := os.ReadFile(path)
	if !strings.Contains(string(b), "logger_test.go") {
		t.Errorf("expected caller file in source: %s", b)
	}
}

func TestParseLogLevel(t *testing.T) {
	if parseLogLevel("warn").String() != "WARN" || parseLogLevel("bogus").String() != "INFO" {
		t.Errorf("unexpected level parsing")
	}
}

func TestOperationTimer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bot.log")
	if err := InitWithConfig(LogConfig{Level: "DEBUG", Format: "json", DetailedLogging: true, File: path, MaxSizeMB: 1}); err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	op := StartOperation(ctx, "model.Train", "candles", 250)
	if op.GetContext() == nil {
		t.Fatal("operation context is nil")
	}
	op.End("rows", 190)

	StartOperation(ctx, "kite.Instruments", "exchange", "NFO").EndWithError(errors.New("timeout"))
	Shutdown()

	b, _ := os.ReadFile(path)
	out := string(b)
	for _, want := range []string{
		`"msg":"Operation started"`,
		`"msg":"Operation completed"`,
		`"rows":190`,
		`"msg":"Operation failed"`,
		`"error":"timeout"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %s in %s", want, out)
		}
	}
}

func TestToAttrsSkipsUnsupported(t *testing.T) {
	attrs := toAttrs([]any{"a", 1, "b", "x", 3, "ignored", "c", []int{1}, "d"})
	if len(attrs) != 2 {
		t.Errorf("got %v", attrs)
	}
}
