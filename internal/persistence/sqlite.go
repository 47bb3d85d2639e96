// Package persistence keeps executed trades, daily summaries and settings in
// a local sqlite database.
package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"nifty-options-bot/internal/types"
)

var ErrSettingNotFound = errors.New("setting not found")

type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (creating if needed) the database at path and applies the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	s := &Store{db: db, now: time.Now}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	stmts := []string{
		`PRAGMA journal_mode=WAL;`,
		`
CREATE TABLE IF NOT EXISTS trades (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  ts TEXT NOT NULL,
  trade_date TEXT NOT NULL,
  symbol TEXT NOT NULL,
  order_type TEXT NOT NULL,
  transaction_type TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  price REAL NOT NULL,
  status TEXT NOT NULL,
  order_id TEXT,
  realized_pnl REAL
);`,
		`CREATE INDEX IF NOT EXISTS idx_trades_date ON trades(trade_date);`,
		`
CREATE TABLE IF NOT EXISTS daily_summary (
  date TEXT PRIMARY KEY,
  pnl REAL NOT NULL,
  trades_count INTEGER NOT NULL,
  updated_at TEXT NOT NULL
);`,
		`
CREATE TABLE IF NOT EXISTS settings (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updated_at TEXT NOT NULL
);`,
	}
	for _, st := range stmts {
		if _, err := s.db.ExecContext(ctx, st); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// RecordTrade appends rec. Exits carry RealizedPnL; entries store NULL.
func (s *Store) RecordTrade(ctx context.Context, rec types.TradeRecord) error {
	if rec.Time.IsZero() {
		rec.Time = s.now()
	}
	var pnl sql.NullFloat64
	if rec.RealizedPnL != nil {
		pnl = sql.NullFloat64{Float64: *rec.RealizedPnL, Valid: true}
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO trades (ts, trade_date, symbol, order_type, transaction_type, quantity, price, status, order_id, realized_pnl)
VALUES (?,?,?,?,?,?,?,?,?,?)
`, rec.Time.UTC().Format(time.RFC3339Nano), types.TradingDay(rec.Time), rec.Symbol, rec.OrderType,
		rec.TransactionType, rec.Quantity, rec.Price, rec.Status, rec.OrderID, pnl)
	if err != nil {
		return fmt.Errorf("insert trade %s: %w", rec.Symbol, err)
	}
	return nil
}

// SumRealizedPnLToday totals realized_pnl over today's IST trades.
func (s *Store) SumRealizedPnLToday(ctx context.Context) (float64, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT COALESCE(SUM(realized_pnl), 0)
FROM trades
WHERE trade_date=?
`, types.TradingDay(s.now()))
	var v float64
	if err := row.Scan(&v); err != nil {
		return 0, fmt.Errorf("sum realized pnl: %w", err)
	}
	return v, nil
}

// TradesOn lists the trades of the IST calendar day containing day, oldest first.
func (s *Store) TradesOn(ctx context.Context, day time.Time) ([]types.TradeRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, ts, symbol, order_type, transaction_type, quantity, price, status, COALESCE(order_id, ''), realized_pnl
FROM trades
WHERE trade_date=?
ORDER BY id ASC
`, types.TradingDay(day))
	if err != nil {
		return nil, fmt.Errorf("query trades: %w", err)
	}
	defer rows.Close()

	var out []types.TradeRecord
	for rows.Next() {
		var (
			rec types.TradeRecord
			ts  string
			pnl sql.NullFloat64
		)
		if err := rows.Scan(&rec.ID, &ts, &rec.Symbol, &rec.OrderType, &rec.TransactionType,
			&rec.Quantity, &rec.Price, &rec.Status, &rec.OrderID, &pnl); err != nil {
			return nil, fmt.Errorf("scan trade: %w", err)
		}
		if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			rec.Time = t
		}
		if pnl.Valid {
			v := pnl.Float64
			rec.RealizedPnL = &v
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// UpsertDailySummary writes (or overwrites) the summary row for day.
func (s *Store) UpsertDailySummary(ctx context.Context, day time.Time, pnl float64, trades int) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO daily_summary (date, pnl, trades_count, updated_at)
VALUES (?,?,?,?)
ON CONFLICT(date) DO UPDATE SET pnl=excluded.pnl, trades_count=excluded.trades_count, updated_at=excluded.updated_at
`, types.TradingDay(day), pnl, trades, s.now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("upsert daily summary: %w", err)
	}
	return nil
}

type DailySummary struct {
	Date        string  `json:"date"`
	PnL         float64 `json:"pnl"`
	TradesCount int     `json:"trades_count"`
}

func (s *Store) DailySummaryOn(ctx context.Context, day time.Time) (DailySummary, bool, error) {
	var d DailySummary
	err := s.db.QueryRowContext(ctx, `
SELECT date, pnl, trades_count FROM daily_summary WHERE date=?
`, types.TradingDay(day)).Scan(&d.Date, &d.PnL, &d.TradesCount)
	if errors.Is(err, sql.ErrNoRows) {
		return DailySummary{}, false, nil
	}
	if err != nil {
		return DailySummary{}, false, fmt.Errorf("query daily summary: %w", err)
	}
	return d, true, nil
}

func (s *Store) SaveSetting(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO settings (key, value, updated_at) VALUES (?,?,?)
ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at
`, key, value, s.now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("save setting %s: %w", key, err)
	}
	return nil
}

// GetSetting returns ErrSettingNotFound for an unknown key.
func (s *Store) GetSetting(ctx context.Context, key string) (string, error) {
	var v string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key=?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%s: %w", key, ErrSettingNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("get setting %s: %w", key, err)
	}
	return v, nil
}
