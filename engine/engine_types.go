package engine

import (
	"context"
	"errors"
	"time"

	"github.com/gofrs/uuid"

	"github.com/thrasher-corp/gct-backtester/config"
	"github.com/thrasher-corp/gct-backtester/data"
	"github.com/thrasher-corp/gct-backtester/data/kline"
	"github.com/thrasher-corp/gct-backtester/execution"
	"github.com/thrasher-corp/gct-backtester/journal"
	"github.com/thrasher-corp/gct-backtester/portfolio"
	"github.com/thrasher-corp/gct-backtester/statistics"
)

var (
	errNilConfig   = errors.New("nil config received")
	errNilStrategy = errors.New("nil strategy received")
	errNoData      = errors.New("no bar data received")
)

// Strategy produces orders for each bar of the walk. Implemented by
// btscript/vm.VM and by test doubles
type Strategy interface {
	Name() string
	OnBar(ctx context.Context, view kline.Table, holdings []portfolio.Holding, summary portfolio.Summary) ([]execution.Order, error)
}

// Fault records a strategy failure on one bar, a raised error, malformed
// orders or a timeout. The bar proceeds with zero orders and the run continues
type Fault struct {
	Date  time.Time `json:"date"`
	Cause string    `json:"cause"`
	Err   error     `json:"-"`
}

// Result is the complete output of one run and the only data handed back to
// reporting and journaling layers
type Result struct {
	RunID            uuid.UUID               `json:"run_id"`
	Strategy         string                  `json:"strategy"`
	DataFile         string                  `json:"data_file,omitempty"`
	StartingCashUSD  float64                 `json:"starting_cash_usd"`
	TradeLog         []execution.TradeRecord `json:"trade_log"`
	Snapshots        []portfolio.Snapshot    `json:"snapshots"`
	Rejections       []execution.Rejection   `json:"rejections,omitempty"`
	Faults           []Fault                 `json:"faults,omitempty"`
	Metrics          statistics.Metrics      `json:"metrics"`
	DataInsufficient bool                    `json:"data_insufficient,omitempty"`
}

// BackTest drives one strategy across one bar table. A BackTest is built per
// run and never reused, no state survives between runs
type BackTest struct {
	RunID    uuid.UUID
	cfg      *config.Config
	table    kline.Table
	data     *data.Handler
	ledger   *portfolio.Ledger
	exec     *execution.Executor
	strategy Strategy
	journal  journal.Writer
	dataFile string
}
