package statistics

import (
	gctmath "github.com/thrasher-corp/gct-backtester/common/math"
	"github.com/thrasher-corp/gct-backtester/execution"
	"github.com/thrasher-corp/gct-backtester/portfolio"
)

// Metrics summarises a completed run. WinRate and SharpeRatio are nil when
// undefined, zero trades and flat or too short value series respectively, so
// consumers can tell "no result" apart from an actual zero
type Metrics struct {
	TotalReturnUSD float64  `json:"total_return_usd"`
	TotalReturnPct float64  `json:"total_return_pct"`
	TradeCount     int      `json:"trade_count"`
	WinRate        *float64 `json:"win_rate"`
	MaxDrawdownPct float64  `json:"max_drawdown_pct"`
	SharpeRatio    *float64 `json:"sharpe_ratio"`
}

// Calculate derives run performance from the trade log and the per-bar value
// snapshots. Trade count follows completed exits, only sell records count
func Calculate(trades []execution.TradeRecord, snapshots []portfolio.Snapshot, startingCash float64, barsPerYear int) Metrics {
	var m Metrics

	final := startingCash
	if len(snapshots) > 0 {
		final = snapshots[len(snapshots)-1].TotalValueUSD
	}
	m.TotalReturnUSD = final - startingCash
	if startingCash != 0 {
		m.TotalReturnPct = gctmath.CalculatePercentageGainOrLoss(final, startingCash)
	}

	var wins int
	for i := range trades {
		if trades[i].Action != execution.Sell {
			continue
		}
		m.TradeCount++
		if trades[i].PnL != nil && *trades[i].PnL > 0 {
			wins++
		}
	}
	if m.TradeCount > 0 {
		winRate := float64(wins) / float64(m.TradeCount)
		m.WinRate = &winRate
	}

	m.MaxDrawdownPct = maxDrawdown(snapshots) * 100

	values := make([]float64, len(snapshots))
	for i := range snapshots {
		values[i] = snapshots[i].TotalValueUSD
	}
	if returns, err := gctmath.PeriodReturns(values); err == nil {
		if sharpe, err := gctmath.CalculateSharpeRatio(returns, 0, float64(barsPerYear)); err == nil {
			m.SharpeRatio = &sharpe
		}
	}

	return m
}

// maxDrawdown is the largest fractional fall from a running peak across the
// snapshot series
func maxDrawdown(snapshots []portfolio.Snapshot) float64 {
	var peak, deepest float64
	for i := range snapshots {
		v := snapshots[i].TotalValueUSD
		if v > peak {
			peak = v
		}
		if peak <= 0 {
			continue
		}
		if dd := (peak - v) / peak; dd > deepest {
			deepest = dd
		}
	}
	return deepest
}
