package engine

import (
	"path/filepath"

	"github.com/thrasher-corp/gct-backtester/btscript/vm"
	"github.com/thrasher-corp/gct-backtester/config"
	"github.com/thrasher-corp/gct-backtester/data/kline"
	"github.com/thrasher-corp/gct-backtester/journal"
)

// NewFromConfig loads the bar table and strategy script named by the caller
// and assembles a run ready to execute
func NewFromConfig(cfg *config.Config, dataFile, strategyFile string) (*BackTest, error) {
	if cfg == nil {
		return nil, errNilConfig
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	table, err := kline.LoadFile(dataFile)
	if err != nil {
		return nil, err
	}

	strategy, err := loadScript(cfg, strategyFile)
	if err != nil {
		return nil, err
	}

	writer, err := newJournal(cfg)
	if err != nil {
		return nil, err
	}

	bt, err := New(cfg, table, strategy, writer)
	if err != nil {
		return nil, err
	}
	bt.dataFile = filepath.Base(dataFile)
	return bt, nil
}

// loadScript compiles one strategy script under the config's sandbox limits
func loadScript(cfg *config.Config, strategyFile string) (*vm.VM, error) {
	scriptVM, err := vm.New(&vm.Config{
		ScriptTimeout: cfg.StrategyTimeout(),
		MaxAllocs:     cfg.ScriptMaxAllocs,
		Verbose:       cfg.Verbose,
	})
	if err != nil {
		return nil, err
	}
	if err := scriptVM.Load(strategyFile); err != nil {
		return nil, err
	}
	return scriptVM, nil
}

func newJournal(cfg *config.Config) (journal.Writer, error) {
	if !cfg.Journal.Enabled {
		return journal.Nop{}, nil
	}
	return journal.NewSqlite(cfg.Journal.Path)
}
