package report

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thrasher-corp/gct-backtester/engine"
	"github.com/thrasher-corp/gct-backtester/execution"
	"github.com/thrasher-corp/gct-backtester/log"
	"github.com/thrasher-corp/gct-backtester/portfolio"
	"github.com/thrasher-corp/gct-backtester/statistics"
)

func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(os.Stdout) })
	return &buf
}

func testResult(t *testing.T) *engine.Result {
	t.Helper()
	id, err := uuid.NewV4()
	require.NoError(t, err)

	pnl := 200.0
	days := 3
	winRate := 1.0
	day := func(i int) time.Time {
		return time.Date(2024, 1, 1+i, 0, 0, 0, 0, time.UTC)
	}
	return &engine.Result{
		RunID:           id,
		Strategy:        "demo",
		DataFile:        "btc_usd.csv",
		StartingCashUSD: 10000,
		TradeLog: []execution.TradeRecord{
			{Action: execution.Buy, HoldingID: "H1", Amount: 2, Date: day(0), Price: 100, USDValue: 10000},
			{Action: execution.Sell, HoldingID: "H1", Amount: 2, Date: day(3), Price: 102, USDValue: 10200, PnL: &pnl, HoldingPeriodDays: &days, Reason: execution.ReasonFinalExit},
		},
		Snapshots: []portfolio.Snapshot{
			{Date: day(0), TotalValueUSD: 10000},
			{Date: day(1), TotalValueUSD: 10100},
			{Date: day(2), TotalValueUSD: 10050},
			{Date: day(3), TotalValueUSD: 10200},
		},
		Rejections: []execution.Rejection{
			{Date: day(1), Order: execution.Order{Action: execution.Buy, Asset: "ETH", Amount: 1}, Cause: "unsupported asset for buy"},
		},
		Faults: []engine.Fault{
			{Date: day(2), Cause: "script blew up"},
		},
		Metrics: statistics.Metrics{
			TotalReturnUSD: 200,
			TotalReturnPct: 2,
			TradeCount:     1,
			WinRate:        &winRate,
			MaxDrawdownPct: 0.495,
		},
	}
}

func TestPrintResults(t *testing.T) {
	buf := captureOutput(t)
	PrintResults(testResult(t))

	out := buf.String()
	assert.Contains(t, out, "Strategy: demo")
	assert.Contains(t, out, "Data: btc_usd.csv")
	assert.Contains(t, out, "Bars simulated: 4")
	assert.Contains(t, out, "Starting cash: $10000")
	assert.Contains(t, out, "Buy orders: 1")
	assert.Contains(t, out, "Sell orders: 1")
	assert.Contains(t, out, "Forced exits: 1")
	assert.Contains(t, out, "Rejected orders: 1")
	assert.Contains(t, out, "Strategy faults: 1")
	assert.Contains(t, out, "Total return: $200 (2%)")
	assert.Contains(t, out, "Completed trades: 1")
	assert.Contains(t, out, "Win rate: 100%")
	assert.Contains(t, out, "Max drawdown: 0.5%")
	assert.Contains(t, out, "Sharpe ratio: undefined")
	assert.NotContains(t, out, "Insufficient data")
}

func TestPrintResultsNil(t *testing.T) {
	buf := captureOutput(t)
	PrintResults(nil)
	assert.Empty(t, buf.String())
}

func TestPrintResultsInsufficientData(t *testing.T) {
	buf := captureOutput(t)
	id, err := uuid.NewV4()
	require.NoError(t, err)
	PrintResults(&engine.Result{
		RunID:            id,
		Strategy:         "demo",
		StartingCashUSD:  10000,
		DataInsufficient: true,
	})

	out := buf.String()
	assert.Contains(t, out, "Insufficient data")
	assert.Contains(t, out, "Bars simulated: 0")
	assert.Contains(t, out, "Win rate: undefined")
	assert.Contains(t, out, "Sharpe ratio: undefined")
}

func TestPrintEvaluations(t *testing.T) {
	buf := captureOutput(t)

	modest := testResult(t)
	modest.Strategy = "modest"
	best := testResult(t)
	best.Strategy = "best"
	best.Metrics.TotalReturnPct = 10

	evals := []engine.Evaluation{
		{Script: "modest.bt", Result: modest},
		{Script: "broken.bt", Err: assert.AnError},
		{Script: "best.bt", Result: best},
	}
	PrintEvaluations(evals)

	out := buf.String()
	assert.Contains(t, out, "1. best return 10%")
	assert.Contains(t, out, "2. modest return 2%")
	assert.Contains(t, out, "3. broken.bt failed:")
	assert.Less(t, strings.Index(out, "1. best"), strings.Index(out, "2. modest"))

	// ranking must not reorder the caller's slice
	assert.Equal(t, "modest.bt", evals[0].Script)
	assert.Equal(t, "broken.bt", evals[1].Script)
}

func TestWriteJSONFile(t *testing.T) {
	result := testResult(t)
	path := filepath.Join(t.TempDir(), "out", "result.json")
	require.NoError(t, WriteJSONFile(result, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var got engine.Result
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, result.RunID, got.RunID)
	assert.Equal(t, result.Strategy, got.Strategy)
	assert.Equal(t, result.Metrics, got.Metrics)
	assert.Equal(t, result.TradeLog, got.TradeLog)
	assert.Len(t, got.Snapshots, 4)
}
