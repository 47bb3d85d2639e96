// Package ledger tracks cash, open option positions, commissions and realized
// PnL. Money arithmetic is done in decimal and surfaced as float64.
package ledger

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"nifty-options-bot/internal/types"
)

var (
	ErrInsufficientCapital = errors.New("insufficient capital")
	ErrPositionNotFound    = errors.New("position not found")
)

// Costs is the per-order charge model: commission = fee + fee*tax.
type Costs struct {
	BrokeragePerOrder float64
	TaxRate           float64
}

// Position is a read-only view of an open position.
type Position struct {
	Symbol          string           `json:"symbol"`
	OptionType      types.OptionType `json:"option_type"`
	Qty             int              `json:"qty"`
	EntryPrice      float64          `json:"entry_price"`
	CurrentPrice    float64          `json:"current_price"`
	EntryCommission float64          `json:"entry_commission"`
	OpenedAt        time.Time        `json:"opened_at"`
}

// Unrealized is (current - entry) * qty.
func (p Position) Unrealized() float64 {
	return (p.CurrentPrice - p.EntryPrice) * float64(p.Qty)
}

// Closed describes a completed round trip.
type Closed struct {
	Position
	ExitPrice  float64 `json:"exit_price"`
	Gross      float64 `json:"gross_pnl"`
	Net        float64 `json:"net_pnl"`
	Commission float64 `json:"exit_commission"`
}

type Snapshot struct {
	Capital     float64    `json:"capital"`
	Charges     float64    `json:"charges"`
	RealizedPnL float64    `json:"realized_pnl"`
	Unrealized  float64    `json:"unrealized_pnl"`
	TotalPnL    float64    `json:"total_pnl"`
	Equity      float64    `json:"equity"`
	Positions   []Position `json:"positions"`
}

type position struct {
	symbol     string
	optionType types.OptionType
	qty        decimal.Decimal
	entry      decimal.Decimal
	current    decimal.Decimal
	commission decimal.Decimal
	openedAt   time.Time
}

func (p *position) view() Position {
	return Position{
		Symbol:          p.symbol,
		OptionType:      p.optionType,
		Qty:             int(p.qty.IntPart()),
		EntryPrice:      p.entry.InexactFloat64(),
		CurrentPrice:    p.current.InexactFloat64(),
		EntryCommission: p.commission.InexactFloat64(),
		OpenedAt:        p.openedAt,
	}
}

// Ledger is safe for concurrent use.
type Ledger struct {
	mu        sync.Mutex
	capital   decimal.Decimal
	charges   decimal.Decimal
	realized  decimal.Decimal
	fee       decimal.Decimal
	tax       decimal.Decimal
	positions []*position
	now       func() time.Time
}

func New(capital float64, costs Costs) *Ledger {
	return &Ledger{
		capital: decimal.NewFromFloat(capital),
		fee:     decimal.NewFromFloat(costs.BrokeragePerOrder),
		tax:     decimal.NewFromFloat(costs.TaxRate),
		now:     time.Now,
	}
}

func (l *Ledger) commission() decimal.Decimal {
	return l.fee.Add(l.fee.Mul(l.tax))
}

// Commission is the charge applied to every order.
func (l *Ledger) Commission() float64 {
	return l.commission().InexactFloat64()
}

// EntryCost is qty*price plus one commission.
func (l *Ledger) EntryCost(qty int, price float64) float64 {
	return l.entryCost(qty, price).InexactFloat64()
}

func (l *Ledger) entryCost(qty int, price float64) decimal.Decimal {
	return decimal.NewFromInt(int64(qty)).Mul(decimal.NewFromFloat(price)).Add(l.commission())
}

// Open debits qty*price plus commission and records a new position.
//
// Returns ErrInsufficientCapital, leaving the ledger untouched, when the
// cost exceeds available capital.
func (l *Ledger) Open(symbol string, t types.OptionType, qty int, price float64) (Position, error) {
	if qty <= 0 || price <= 0 {
		return Position{}, fmt.Errorf("open %s: qty %d price %v must be positive", symbol, qty, price)
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	cost := l.entryCost(qty, price)
	if cost.GreaterThan(l.capital) {
		return Position{}, fmt.Errorf("open %s: cost %s > capital %s: %w", symbol, cost.StringFixed(2), l.capital.StringFixed(2), ErrInsufficientCapital)
	}
	comm := l.commission()
	l.capital = l.capital.Sub(cost)
	l.charges = l.charges.Add(comm)
	p := &position{
		symbol:     symbol,
		optionType: t,
		qty:        decimal.NewFromInt(int64(qty)),
		entry:      decimal.NewFromFloat(price),
		current:    decimal.NewFromFloat(price),
		commission: comm,
		openedAt:   l.now(),
	}
	l.positions = append(l.positions, p)
	return p.view(), nil
}

// Close sells the first open position for symbol at price. Capital is
// credited with the gross proceeds minus the exit commission; realized PnL
// takes the gross result less both legs' commissions.
func (l *Ledger) Close(symbol string, price float64) (Closed, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	idx := l.find(symbol)
	if idx < 0 {
		return Closed{}, fmt.Errorf("close %s: %w", symbol, ErrPositionNotFound)
	}
	p := l.positions[idx]
	exit := decimal.NewFromFloat(price)
	comm := l.commission()
	gross := exit.Sub(p.entry).Mul(p.qty)
	net := gross.Sub(p.commission.Add(comm))

	l.capital = l.capital.Add(p.qty.Mul(exit)).Sub(comm)
	l.charges = l.charges.Add(comm)
	l.realized = l.realized.Add(net)
	l.positions = append(l.positions[:idx], l.positions[idx+1:]...)

	p.current = exit
	return Closed{
		Position:   p.view(),
		ExitPrice:  price,
		Gross:      gross.InexactFloat64(),
		Net:        net.InexactFloat64(),
		Commission: comm.InexactFloat64(),
	}, nil
}

// Mark sets the current price of the position held in symbol.
func (l *Ledger) Mark(symbol string, price float64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	idx := l.find(symbol)
	if idx < 0 {
		return fmt.Errorf("mark %s: %w", symbol, ErrPositionNotFound)
	}
	l.positions[idx].current = decimal.NewFromFloat(price)
	return nil
}

func (l *Ledger) find(symbol string) int {
	for i, p := range l.positions {
		if p.symbol == symbol {
			return i
		}
	}
	return -1
}

func (l *Ledger) unrealized() decimal.Decimal {
	sum := decimal.Zero
	for _, p := range l.positions {
		sum = sum.Add(p.current.Sub(p.entry).Mul(p.qty))
	}
	return sum
}

func (l *Ledger) UnrealizedPnL() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.unrealized().InexactFloat64()
}

func (l *Ledger) RealizedPnL() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.realized.InexactFloat64()
}

// TotalPnL is realized + unrealized rounded to paise.
func (l *Ledger) TotalPnL() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.realized.Add(l.unrealized()).Round(2).InexactFloat64()
}

func (l *Ledger) Capital() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.capital.InexactFloat64()
}

func (l *Ledger) Charges() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.charges.InexactFloat64()
}

func (l *Ledger) equity() decimal.Decimal {
	eq := l.capital
	for _, p := range l.positions {
		eq = eq.Add(p.current.Mul(p.qty))
	}
	return eq
}

// Equity is cash plus the marked value of open positions.
func (l *Ledger) Equity() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.equity().Round(2).InexactFloat64()
}

func (l *Ledger) Positions() []Position {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Position, 0, len(l.positions))
	for _, p := range l.positions {
		out = append(out, p.view())
	}
	return out
}

func (l *Ledger) HasPositions() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.positions) > 0
}

func (l *Ledger) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	s := Snapshot{
		Capital:     l.capital.InexactFloat64(),
		Charges:     l.charges.InexactFloat64(),
		RealizedPnL: l.realized.InexactFloat64(),
		Unrealized:  l.unrealized().InexactFloat64(),
		TotalPnL:    l.realized.Add(l.unrealized()).Round(2).InexactFloat64(),
		Equity:      l.equity().Round(2).InexactFloat64(),
	}
	for _, p := range l.positions {
		s.Positions = append(s.Positions, p.view())
	}
	return s
}
