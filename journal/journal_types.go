package journal

import (
	"errors"
	"time"

	"github.com/gofrs/uuid"

	"github.com/thrasher-corp/gct-backtester/execution"
	"github.com/thrasher-corp/gct-backtester/portfolio"
	"github.com/thrasher-corp/gct-backtester/statistics"
)

var (
	errNoDatabasePath = errors.New("no database path provided")
	errNilRun         = errors.New("nil run received")
)

// Run is the journal row describing one completed backtest
type Run struct {
	ID           uuid.UUID
	Strategy     string
	DataFile     string
	StartingCash float64
	Metrics      statistics.Metrics
	CompletedAt  time.Time
}

// Writer persists completed runs. The engine writes once per run after
// metrics are computed
type Writer interface {
	WriteRun(run *Run, trades []execution.TradeRecord, snapshots []portfolio.Snapshot) error
	Close() error
}

// Nop discards writes, used when the journal is disabled
type Nop struct{}

// WriteRun implements Writer, discarding the run
func (n Nop) WriteRun(_ *Run, _ []execution.TradeRecord, _ []portfolio.Snapshot) error {
	return nil
}

// Close implements Writer
func (n Nop) Close() error { return nil }
