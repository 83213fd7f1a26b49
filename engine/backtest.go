package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"

	"github.com/thrasher-corp/gct-backtester/config"
	"github.com/thrasher-corp/gct-backtester/data"
	"github.com/thrasher-corp/gct-backtester/data/kline"
	"github.com/thrasher-corp/gct-backtester/execution"
	"github.com/thrasher-corp/gct-backtester/journal"
	"github.com/thrasher-corp/gct-backtester/log"
	"github.com/thrasher-corp/gct-backtester/portfolio"
	"github.com/thrasher-corp/gct-backtester/statistics"
)

// New assembles a run from pre-built components. The config is validated and
// defaults applied, a nil writer disables journaling
func New(cfg *config.Config, table kline.Table, strategy Strategy, writer journal.Writer) (*BackTest, error) {
	if cfg == nil {
		return nil, errNilConfig
	}
	if strategy == nil {
		return nil, errNilStrategy
	}
	if len(table) == 0 {
		return nil, errNoData
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	runID, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	if writer == nil {
		writer = journal.Nop{}
	}

	ledger := portfolio.NewLedger(cfg.QuoteAsset, cfg.TradedAsset, cfg.StartingCashUSD)
	return &BackTest{
		RunID:  runID,
		cfg:    cfg,
		table:  table,
		data:   data.NewHandler(table),
		ledger: ledger,
		exec: execution.NewExecutor(ledger, execution.Settings{
			TradedAsset:               cfg.TradedAsset,
			AllowMultipleOpenHoldings: cfg.AllowMultipleOpenHoldings,
			ThresholdPolicy:           cfg.ThresholdPolicy,
		}),
		strategy: strategy,
		journal:  writer,
	}, nil
}

// Run walks the table bar by bar. A table failing integrity checks aborts
// before any simulation, a well formed table shorter than the history floor
// completes as a run with zero trades
func (bt *BackTest) Run(ctx context.Context) (*Result, error) {
	result := &Result{
		RunID:           bt.RunID,
		Strategy:        bt.strategy.Name(),
		DataFile:        bt.dataFile,
		StartingCashUSD: bt.cfg.StartingCashUSD,
	}

	log.Infof(log.BackTester, "Run %v: strategy %s across %d bars",
		bt.RunID, result.Strategy, len(bt.table))

	err := bt.table.Validate(bt.cfg.MinHistoryBars)
	switch {
	case errors.Is(err, kline.ErrInsufficientData):
		log.Warnf(log.BackTester, "Run %v: %v", bt.RunID, err)
		result.DataInsufficient = true
	case err != nil:
		return nil, fmt.Errorf("run aborted: %w", err)
	default:
		if err := bt.walk(ctx, result); err != nil {
			return nil, err
		}
	}

	result.TradeLog = bt.exec.TradeLog()
	result.Rejections = bt.exec.Rejections()
	result.Metrics = statistics.Calculate(result.TradeLog, result.Snapshots,
		bt.cfg.StartingCashUSD, bt.cfg.BarsPerYear)

	if err := bt.writeJournal(result); err != nil {
		// a failed journal write does not invalidate a computed run
		log.Errorf(log.JournalMgr, "Run %v: journal write failed: %v", bt.RunID, err)
	}

	log.Infof(log.BackTester, "Run %v: complete, %d trades, return %.2f%%",
		bt.RunID, result.Metrics.TradeCount, result.Metrics.TotalReturnPct)
	return result, nil
}

// walk executes the per bar cycle strictly in order, mark to market, sweep
// stop and take thresholds, invoke the strategy once enough causal history
// exists, execute its orders and snapshot. After the last bar any open
// holding is force sold at the final close
func (bt *BackTest) walk(ctx context.Context, result *Result) error {
	for {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("run %v interrupted: %w", bt.RunID, err)
		}
		bar, ok := bt.data.Next()
		if !ok {
			break
		}

		bt.ledger.MarkToMarket(bar.Close)
		bt.exec.CheckThresholds(bar)

		if bt.data.Offset() >= bt.cfg.MinHistoryBars {
			orders, err := bt.strategy.OnBar(ctx, bt.data.History(),
				bt.ledger.AssetHoldings(), bt.ledger.Summary())
			switch {
			case err != nil:
				result.Faults = append(result.Faults, Fault{
					Date:  bar.Date,
					Cause: err.Error(),
					Err:   err,
				})
				log.Warnf(log.BackTester, "Run %v %s: strategy fault: %v",
					bt.RunID, bar.Date.Format(kline.DateFormat), err)
			case len(orders) > 0:
				bt.exec.Apply(orders, bar)
			}
		}

		result.Snapshots = append(result.Snapshots, bt.ledger.Snapshot(bar.Date))
	}

	// selling at the marked close keeps the final snapshot's total intact
	bt.exec.FinalExit(bt.data.Latest())
	return nil
}

// Close releases the run's journal writer. Callers that handed their own
// writer to New manage its lifecycle themselves and skip Close
func (bt *BackTest) Close() error {
	return bt.journal.Close()
}

func (bt *BackTest) writeJournal(result *Result) error {
	return bt.journal.WriteRun(&journal.Run{
		ID:           result.RunID,
		Strategy:     result.Strategy,
		DataFile:     result.DataFile,
		StartingCash: result.StartingCashUSD,
		Metrics:      result.Metrics,
		CompletedAt:  time.Now(),
	}, result.TradeLog, result.Snapshots)
}
