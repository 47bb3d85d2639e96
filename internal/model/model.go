// Package model holds the direction classifier and its trained/untrained lifecycle.
package model

import (
	"errors"
	"fmt"
	"math/rand"

	"nifty-options-bot/internal/features"
	"nifty-options-bot/internal/types"
)

var ErrModelNotReady = errors.New("model not trained")

type State int

const (
	Untrained State = iota
	Trained
)

func (s State) String() string {
	if s == Trained {
		return "TRAINED"
	}
	return "UNTRAINED"
}

type Config struct {
	// Threshold is the class boundary θ as a fraction of price (0.0002 = 2bp).
	Threshold         float64
	MinTrainCandles   int
	MinTrainRows      int
	MinPredictCandles int
	TestFraction      float64
	Forest            ForestParams
	Features          features.Params
}

func DefaultConfig() Config {
	return Config{
		Threshold:         0.0002,
		MinTrainCandles:   200,
		MinTrainRows:      100,
		MinPredictCandles: 60,
		TestFraction:      0.2,
		Forest:            ForestParams{Trees: 100, MaxDepth: 8, MinLeaf: 2, Seed: 42},
		Features:          features.DefaultParams(),
	}
}

// TrainReport describes a Train call. Trained=false with a Reason is the
// no-op outcome for insufficient data.
type TrainReport struct {
	Trained       bool              `json:"trained"`
	Reason        string            `json:"reason,omitempty"`
	Candles       int               `json:"candles"`
	Rows          int               `json:"rows"`
	TrainRows     int               `json:"train_rows"`
	TestRows      int               `json:"test_rows"`
	TrainAccuracy float64           `json:"train_accuracy"`
	TestAccuracy  float64           `json:"test_accuracy"`
	ClassCounts   map[int]int       `json:"class_counts"`
	Columns       []features.Column `json:"columns"`
}

// Predictor is the direction classifier. Untrained -> Trained is one-way.
type Predictor struct {
	cfg           Config
	state         State
	forest        *forest
	columns       []features.Column
	schemaVersion int
	report        TrainReport
}

func New(cfg Config) *Predictor {
	return &Predictor{cfg: cfg, state: Untrained}
}

func (p *Predictor) State() State { return p.state }

func (p *Predictor) Trained() bool { return p.state == Trained }

// Columns is the frozen feature list, nil before training.
func (p *Predictor) Columns() []features.Column {
	return append([]features.Column(nil), p.columns...)
}

func (p *Predictor) Report() TrainReport { return p.report }

// Label classifies the move from close to next as +1, -1 or 0 around ±θ.
func Label(close, next, threshold float64) types.Direction {
	switch {
	case next > close*(1+threshold):
		return types.DirectionUp
	case next < close*(1-threshold):
		return types.DirectionDown
	}
	return types.DirectionFlat
}

// Train fits the classifier on history. Insufficient data is not an error:
// the report comes back with Trained=false and the state is unchanged.
// Training an already trained predictor is a no-op.
func (p *Predictor) Train(history []types.Candle) (TrainReport, error) {
	rep := TrainReport{Candles: len(history)}
	if p.state == Trained {
		rep.Reason = "already trained"
		return rep, nil
	}
	if len(history) < p.cfg.MinTrainCandles {
		rep.Reason = fmt.Sprintf("need %d candles, have %d", p.cfg.MinTrainCandles, len(history))
		return rep, nil
	}

	cols := append([]features.Column(nil), features.Schema...)
	rows := features.Compute(history, p.cfg.Features)

	var X [][]float64
	var y []int
	// The final bar has no next close and never gets a label.
	for i := 0; i < len(rows)-1; i++ {
		x, err := rows[i].Extract(cols)
		if err != nil {
			continue
		}
		X = append(X, x)
		y = append(y, int(Label(history[i].Close, history[i+1].Close, p.cfg.Threshold)))
	}
	rep.Rows = len(X)
	if len(X) < p.cfg.MinTrainRows {
		rep.Reason = fmt.Sprintf("need %d complete rows, have %d", p.cfg.MinTrainRows, len(X))
		return rep, nil
	}

	trainIdx, testIdx := split(len(X), p.cfg.TestFraction, p.cfg.Forest.Seed)
	Xtr, ytr := subset(X, y, trainIdx)
	Xte, yte := subset(X, y, testIdx)

	f := fitForest(Xtr, ytr, p.cfg.Forest)

	rep.TrainRows = len(Xtr)
	rep.TestRows = len(Xte)
	rep.TrainAccuracy = accuracy(f, Xtr, ytr)
	rep.TestAccuracy = accuracy(f, Xte, yte)
	rep.ClassCounts = map[int]int{}
	for _, v := range y {
		rep.ClassCounts[v]++
	}
	rep.Columns = cols
	rep.Trained = true

	p.forest = f
	p.columns = cols
	p.schemaVersion = features.SchemaVersion
	p.state = Trained
	p.report = rep
	return rep, nil
}

// Predict classifies the last bar of history. Every failure mode degrades to
// DirectionFlat; the error says why.
func (p *Predictor) Predict(history []types.Candle) (types.Direction, error) {
	if p.state != Trained {
		return types.DirectionFlat, ErrModelNotReady
	}
	if len(history) < p.cfg.MinPredictCandles {
		return types.DirectionFlat, fmt.Errorf("need %d candles, have %d: %w", p.cfg.MinPredictCandles, len(history), features.ErrIndicatorUnavailable)
	}
	if p.schemaVersion != features.SchemaVersion {
		return types.DirectionFlat, fmt.Errorf("model schema v%d, pipeline v%d: %w", p.schemaVersion, features.SchemaVersion, ErrModelNotReady)
	}
	last, ok := features.Last(history, p.cfg.Features)
	if !ok {
		return types.DirectionFlat, features.ErrIndicatorUnavailable
	}
	x, err := last.Extract(p.columns)
	if err != nil {
		return types.DirectionFlat, err
	}
	return types.Direction(p.forest.predict(x)), nil
}

// split shuffles 0..n-1 with seed and cuts off testFraction for the test side.
func split(n int, testFraction float64, seed int64) (train, test []int) {
	perm := rand.New(rand.NewSource(seed)).Perm(n)
	nTest := int(float64(n)*testFraction + 0.5)
	if nTest >= n {
		nTest = n - 1
	}
	if nTest < 0 {
		nTest = 0
	}
	return perm[nTest:], perm[:nTest]
}

func subset(X [][]float64, y []int, idx []int) ([][]float64, []int) {
	xs := make([][]float64, len(idx))
	ys := make([]int, len(idx))
	for k, i := range idx {
		xs[k] = X[i]
		ys[k] = y[i]
	}
	return xs, ys
}

func accuracy(f *forest, X [][]float64, y []int) float64 {
	if len(X) == 0 {
		return 0
	}
	hit := 0
	for i := range X {
		if f.predict(X[i]) == y[i] {
			hit++
		}
	}
	return float64(hit) / float64(len(X))
}
