package interfaces

import (
	"context"

	"nifty-options-bot/internal/types"
)

// Orchestrator runs one full decision cycle.
type Orchestrator interface {
	Run(ctx context.Context) (*types.CycleResult, error)
}
