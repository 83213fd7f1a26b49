package engine

import (
	"context"
	"runtime"
	"sync"

	"github.com/thrasher-corp/gct-backtester/config"
	"github.com/thrasher-corp/gct-backtester/data/kline"
	"github.com/thrasher-corp/gct-backtester/journal"
	"github.com/thrasher-corp/gct-backtester/log"
)

// Evaluation pairs a candidate script with its run outcome. Err is set when
// the script failed to load or the run aborted
type Evaluation struct {
	Script string
	Result *Result
	Err    error
}

// Evaluator runs one independent engine per candidate script against a shared
// read-only bar table. Runs share no mutable state so they parallelise freely
type Evaluator struct {
	cfg     *config.Config
	table   kline.Table
	workers int
}

// NewEvaluator validates the config once for all runs. workers below one
// falls back to the CPU count
func NewEvaluator(cfg *config.Config, table kline.Table, workers int) (*Evaluator, error) {
	if cfg == nil {
		return nil, errNilConfig
	}
	if len(table) == 0 {
		return nil, errNoData
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	return &Evaluator{cfg: cfg, table: table, workers: workers}, nil
}

// Run evaluates every script and returns outcomes in input order. The shared
// journal writer serialises its own writes
func (e *Evaluator) Run(ctx context.Context, scripts []string, writer journal.Writer) []Evaluation {
	out := make([]Evaluation, len(scripts))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < e.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				out[i] = e.evaluate(ctx, scripts[i], writer)
			}
		}()
	}

	for i := range scripts {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	return out
}

func (e *Evaluator) evaluate(ctx context.Context, script string, writer journal.Writer) Evaluation {
	ev := Evaluation{Script: script}

	strategy, err := loadScript(e.cfg, script)
	if err != nil {
		log.Warnf(log.BackTester, "Evaluate %s: %v", script, err)
		ev.Err = err
		return ev
	}

	bt, err := New(e.cfg, e.table, strategy, writer)
	if err != nil {
		ev.Err = err
		return ev
	}
	ev.Result, ev.Err = bt.Run(ctx)
	return ev
}
