package strategyobs

import (
	"context"
	"errors"
	"testing"

	"nifty-options-bot/internal/types"
)

type fakeOrch struct {
	res *types.CycleResult
	err error
}

func (f fakeOrch) Run(ctx context.Context) (*types.CycleResult, error) { return f.res, f.err }

func TestWrapPassesThrough(t *testing.T) {
	want := &types.CycleResult{Status: types.CycleOK, FinalSignal: types.SignalBullish}
	got, err := Wrap(fakeOrch{res: want}, nil).Run(context.Background())
	if err != nil || got != want {
		t.Fatalf("got %v %v", got, err)
	}

	boom := errors.New("boom")
	if _, err := Wrap(fakeOrch{err: boom}, nil).Run(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("error not propagated: %v", err)
	}
}
