package report

import (
	"encoding/json"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/thrasher-corp/gct-backtester/common/file"
	"github.com/thrasher-corp/gct-backtester/engine"
	"github.com/thrasher-corp/gct-backtester/execution"
	"github.com/thrasher-corp/gct-backtester/log"
)

// PrintResults outputs all calculated run statistics to the log
func PrintResults(result *engine.Result) {
	if result == nil {
		return
	}

	log.Info(log.ReportMgr, "------------------Run----------------------------------------")
	log.Infof(log.ReportMgr, "Strategy: %v", result.Strategy)
	log.Infof(log.ReportMgr, "Run ID: %v", result.RunID)
	if result.DataFile != "" {
		log.Infof(log.ReportMgr, "Data: %v", result.DataFile)
	}
	if result.DataInsufficient {
		log.Warnln(log.ReportMgr, "Insufficient data, no bars were simulated")
	}
	log.Infof(log.ReportMgr, "Bars simulated: %d", len(result.Snapshots))
	log.Infof(log.ReportMgr, "Starting cash: $%v", money(result.StartingCashUSD))

	var buys, sells, forced int
	for i := range result.TradeLog {
		if result.TradeLog[i].Action == execution.Buy {
			buys++
			continue
		}
		sells++
		if result.TradeLog[i].Reason != "" {
			forced++
		}
	}
	log.Info(log.ReportMgr, "------------------Trades--------------------------------------")
	log.Infof(log.ReportMgr, "Buy orders: %d", buys)
	log.Infof(log.ReportMgr, "Sell orders: %d", sells)
	log.Infof(log.ReportMgr, "Forced exits: %d", forced)
	log.Infof(log.ReportMgr, "Rejected orders: %d", len(result.Rejections))
	log.Infof(log.ReportMgr, "Strategy faults: %d", len(result.Faults))

	m := result.Metrics
	log.Info(log.ReportMgr, "------------------Results-------------------------------------")
	log.Infof(log.ReportMgr, "Total return: $%v (%v%%)", money(m.TotalReturnUSD), pct(m.TotalReturnPct))
	log.Infof(log.ReportMgr, "Completed trades: %d", m.TradeCount)
	log.Infof(log.ReportMgr, "Win rate: %v", winRate(m.WinRate))
	log.Infof(log.ReportMgr, "Max drawdown: %v%%", pct(m.MaxDrawdownPct))
	log.Infof(log.ReportMgr, "Sharpe ratio: %v", ratio(m.SharpeRatio))
}

// PrintEvaluations outputs a ranked candidate summary, best return first,
// failed runs last
func PrintEvaluations(evals []engine.Evaluation) {
	ranked := make([]engine.Evaluation, len(evals))
	copy(ranked, evals)
	sort.SliceStable(ranked, func(i, j int) bool {
		ri, rj := ranked[i].Result, ranked[j].Result
		if ri == nil {
			return false
		}
		if rj == nil {
			return true
		}
		return ri.Metrics.TotalReturnPct > rj.Metrics.TotalReturnPct
	})

	log.Info(log.ReportMgr, "------------------Evaluation----------------------------------")
	for i := range ranked {
		if ranked[i].Err != nil {
			log.Warnf(log.ReportMgr, "%d. %s failed: %v", i+1, ranked[i].Script, ranked[i].Err)
			continue
		}
		m := ranked[i].Result.Metrics
		log.Infof(log.ReportMgr, "%d. %s return %v%% trades %d win rate %v drawdown %v%% sharpe %v",
			i+1,
			ranked[i].Result.Strategy,
			pct(m.TotalReturnPct),
			m.TradeCount,
			winRate(m.WinRate),
			pct(m.MaxDrawdownPct),
			ratio(m.SharpeRatio))
	}
}

// WriteJSONFile stores the complete run result for downstream consumers
func WriteJSONFile(result *engine.Result, path string) error {
	data, err := json.MarshalIndent(result, "", " ")
	if err != nil {
		return err
	}
	return file.Write(path, data)
}

func money(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(2)
}

func pct(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(2)
}

func winRate(v *float64) string {
	if v == nil {
		return "undefined"
	}
	return decimal.NewFromFloat(*v * 100).Round(2).String() + "%"
}

func ratio(v *float64) string {
	if v == nil {
		return "undefined"
	}
	return decimal.NewFromFloat(*v).Round(4).String()
}
