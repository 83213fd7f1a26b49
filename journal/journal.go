package journal

import (
	"database/sql"

	// import sqlite3 driver
	_ "github.com/mattn/go-sqlite3"

	"github.com/thrasher-corp/gct-backtester/execution"
	"github.com/thrasher-corp/gct-backtester/log"
	"github.com/thrasher-corp/gct-backtester/portfolio"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	strategy TEXT NOT NULL,
	data_file TEXT NOT NULL,
	starting_cash_usd REAL NOT NULL,
	total_return_usd REAL NOT NULL,
	total_return_pct REAL NOT NULL,
	trade_count INTEGER NOT NULL,
	win_rate REAL,
	max_drawdown_pct REAL NOT NULL,
	sharpe_ratio REAL,
	completed_at TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS trades (
	run_id TEXT NOT NULL,
	seq INTEGER NOT NULL,
	action TEXT NOT NULL,
	holding_id TEXT,
	amount REAL NOT NULL,
	date TIMESTAMP NOT NULL,
	price REAL NOT NULL,
	usd_value REAL NOT NULL,
	pnl REAL,
	holding_period_days INTEGER,
	reason TEXT,
	PRIMARY KEY (run_id, seq)
);
CREATE TABLE IF NOT EXISTS snapshots (
	run_id TEXT NOT NULL,
	seq INTEGER NOT NULL,
	date TIMESTAMP NOT NULL,
	total_value_usd REAL NOT NULL,
	PRIMARY KEY (run_id, seq)
);`

// Sqlite persists runs into a single file database
type Sqlite struct {
	db *sql.DB
}

// NewSqlite opens or creates the journal database at path and ensures the
// schema exists
func NewSqlite(path string) (*Sqlite, error) {
	if path == "" {
		return nil, errNoDatabasePath
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	if _, err = db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Sqlite{db: db}, nil
}

// WriteRun stores the run row with its trades and snapshots in one
// transaction with a rollback on error
func (s *Sqlite) WriteRun(run *Run, trades []execution.TradeRecord, snapshots []portfolio.Snapshot) error {
	if run == nil {
		return errNilRun
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}

	_, err = tx.Exec(`INSERT INTO runs (id, strategy, data_file, starting_cash_usd,
		total_return_usd, total_return_pct, trade_count, win_rate,
		max_drawdown_pct, sharpe_ratio, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID.String(),
		run.Strategy,
		run.DataFile,
		run.StartingCash,
		run.Metrics.TotalReturnUSD,
		run.Metrics.TotalReturnPct,
		run.Metrics.TradeCount,
		run.Metrics.WinRate,
		run.Metrics.MaxDrawdownPct,
		run.Metrics.SharpeRatio,
		run.CompletedAt)
	if err != nil {
		return s.rollback(tx, err)
	}

	for x := range trades {
		_, err = tx.Exec(`INSERT INTO trades (run_id, seq, action, holding_id,
			amount, date, price, usd_value, pnl, holding_period_days, reason)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID.String(),
			x,
			string(trades[x].Action),
			trades[x].HoldingID,
			trades[x].Amount,
			trades[x].Date,
			trades[x].Price,
			trades[x].USDValue,
			trades[x].PnL,
			trades[x].HoldingPeriodDays,
			trades[x].Reason)
		if err != nil {
			return s.rollback(tx, err)
		}
	}

	for x := range snapshots {
		_, err = tx.Exec(`INSERT INTO snapshots (run_id, seq, date, total_value_usd)
			VALUES (?, ?, ?, ?)`,
			run.ID.String(),
			x,
			snapshots[x].Date,
			snapshots[x].TotalValueUSD)
		if err != nil {
			return s.rollback(tx, err)
		}
	}

	return tx.Commit()
}

// Close closes the underlying database
func (s *Sqlite) Close() error {
	return s.db.Close()
}

func (s *Sqlite) rollback(tx *sql.Tx, err error) error {
	if errRB := tx.Rollback(); errRB != nil {
		log.Errorln(log.JournalMgr, errRB)
	}
	return err
}
