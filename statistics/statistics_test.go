package statistics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thrasher-corp/gct-backtester/execution"
	"github.com/thrasher-corp/gct-backtester/portfolio"
)

func ptr(v float64) *float64 { return &v }

func snapshotSeries(values ...float64) []portfolio.Snapshot {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]portfolio.Snapshot, len(values))
	for i := range values {
		out[i] = portfolio.Snapshot{Date: start.AddDate(0, 0, i), TotalValueUSD: values[i]}
	}
	return out
}

func TestCalculateEmptyRun(t *testing.T) {
	t.Parallel()
	m := Calculate(nil, nil, 10000, 252)
	assert.Zero(t, m.TotalReturnUSD)
	assert.Zero(t, m.TotalReturnPct)
	assert.Zero(t, m.TradeCount)
	assert.Zero(t, m.MaxDrawdownPct)
	assert.Nil(t, m.WinRate, "win rate is undefined without sells")
	assert.Nil(t, m.SharpeRatio, "sharpe is undefined without returns")
}

func TestCalculateTotalReturn(t *testing.T) {
	t.Parallel()
	trades := []execution.TradeRecord{
		{Action: execution.Buy, USDValue: 10000},
		{Action: execution.Sell, USDValue: 10200, PnL: ptr(200)},
	}
	m := Calculate(trades, snapshotSeries(10000, 10100, 10200), 10000, 252)
	assert.InDelta(t, 200.0, m.TotalReturnUSD, 1e-9)
	assert.InDelta(t, 2.0, m.TotalReturnPct, 1e-9)
	assert.Equal(t, 1, m.TradeCount, "buys are not completed trades")
	require.NotNil(t, m.WinRate)
	assert.Equal(t, 1.0, *m.WinRate)
}

func TestCalculateWinRate(t *testing.T) {
	t.Parallel()
	trades := []execution.TradeRecord{
		{Action: execution.Buy},
		{Action: execution.Sell, PnL: ptr(10)},
		{Action: execution.Sell, PnL: ptr(-5)},
		{Action: execution.Buy},
		{Action: execution.Sell, PnL: ptr(3)},
		{Action: execution.Sell, PnL: ptr(0)},
	}
	m := Calculate(trades, snapshotSeries(10000, 10008), 10000, 252)
	assert.Equal(t, 4, m.TradeCount)
	require.NotNil(t, m.WinRate)
	assert.InDelta(t, 0.5, *m.WinRate, 1e-9, "break-even exits are not wins")
}

func TestCalculateMaxDrawdown(t *testing.T) {
	t.Parallel()
	m := Calculate(nil, snapshotSeries(10000, 12000, 9000, 11000, 8000), 10000, 252)
	assert.InDelta(t, (12000.0-8000.0)/12000.0*100, m.MaxDrawdownPct, 1e-9)

	m = Calculate(nil, snapshotSeries(10000, 10500, 11000), 10000, 252)
	assert.Zero(t, m.MaxDrawdownPct, "monotone growth never draws down")
}

func TestCalculateSharpeUndefined(t *testing.T) {
	t.Parallel()
	// two snapshots produce a single return observation
	m := Calculate(nil, snapshotSeries(10000, 10100), 10000, 252)
	assert.Nil(t, m.SharpeRatio)

	// proportional growth has zero return variance
	m = Calculate(nil, snapshotSeries(100, 110, 121), 100, 252)
	assert.Nil(t, m.SharpeRatio)
}

func TestCalculateSharpe(t *testing.T) {
	t.Parallel()
	m := Calculate(nil, snapshotSeries(100, 110, 99, 108), 100, 252)
	require.NotNil(t, m.SharpeRatio)
	assert.Greater(t, *m.SharpeRatio, 0.0)
}
