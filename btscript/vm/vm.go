package vm

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/gofrs/uuid"

	"github.com/thrasher-corp/gct-backtester/btscript/modules/loader"
	"github.com/thrasher-corp/gct-backtester/data/kline"
	"github.com/thrasher-corp/gct-backtester/execution"
	"github.com/thrasher-corp/gct-backtester/log"
	"github.com/thrasher-corp/gct-backtester/portfolio"
)

// New returns an empty VM with normalised limits applied
func New(cfg *Config) (*VM, error) {
	newUUID, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}

	var c Config
	if cfg != nil {
		c = *cfg
	}
	if c.ScriptTimeout <= 0 {
		c.ScriptTimeout = DefaultTimeout
	}
	if c.Verbose {
		log.Debugf(log.StrategyMgr, "New strategy VM created id: %v", newUUID)
	}
	return &VM{ID: newUUID, config: c}, nil
}

// Load reads and compiles the strategy script at file, appending the script
// extension when absent
func (vm *VM) Load(file string) error {
	if vm == nil {
		return ErrNoVMLoaded
	}

	if filepath.Ext(file) != ScriptExt {
		file += ScriptExt
	}

	if vm.config.Verbose {
		log.Debugf(log.StrategyMgr, "Loading script: %s id: %v", filepath.Base(file), vm.ID)
	}

	code, err := os.ReadFile(file)
	if err != nil {
		return &Error{
			Action: "Load: Read",
			Script: file,
			Cause:  err,
		}
	}

	vm.File = file
	vm.Path = filepath.Dir(file)
	return vm.prepare(code)
}

// LoadSource compiles an in memory script under the given name
func (vm *VM) LoadSource(name string, source []byte) error {
	if vm == nil {
		return ErrNoVMLoaded
	}
	if len(source) == 0 {
		return &Error{
			Action: "LoadSource",
			Script: name,
			Cause:  errEmptySource,
		}
	}

	vm.File = name
	vm.Path = ""
	return vm.prepare(source)
}

// prepare compiles the script with the sandboxed module map and declares the
// globals swapped in before every run. Globals must exist before compilation
// for Set to reach them later
func (vm *VM) prepare(code []byte) error {
	vm.Script = tengo.NewScript(code)
	vm.Script.SetImports(loader.GetModuleMap())
	if vm.config.MaxAllocs > 0 {
		vm.Script.SetMaxAllocs(vm.config.MaxAllocs)
	}

	for _, name := range []string{GlobalBars, GlobalHoldings} {
		if err := vm.Script.Add(name, []interface{}{}); err != nil {
			return &Error{
				Action: "Load: Add " + name,
				Script: vm.ShortName(),
				Cause:  err,
			}
		}
	}
	if err := vm.Script.Add(GlobalPortfolio, map[string]interface{}{}); err != nil {
		return &Error{
			Action: "Load: Add " + GlobalPortfolio,
			Script: vm.ShortName(),
			Cause:  err,
		}
	}

	compiled, err := vm.Script.Compile()
	if err != nil {
		return &Error{
			Action: "Compile",
			Script: vm.ShortName(),
			Cause:  err,
		}
	}
	vm.Compiled = compiled
	vm.barObjs = vm.barObjs[:0]
	return nil
}

// OnBar executes the compiled script against the bar history visible at this
// point of the walk and parses the orders the script declared. The script
// body runs from the top every invocation, state does not persist across bars
func (vm *VM) OnBar(ctx context.Context, view kline.Table, holdings []portfolio.Holding, summary portfolio.Summary) ([]execution.Order, error) {
	if vm == nil || vm.Compiled == nil {
		return nil, ErrNoVMLoaded
	}

	if err := vm.setGlobals(view, holdings, summary); err != nil {
		return nil, err
	}

	if vm.config.Verbose {
		log.Debugf(log.StrategyMgr, "Running script: %s id: %v bars: %d",
			vm.ShortName(), vm.ID, len(view))
	}

	runCtx, cancel := context.WithTimeout(ctx, vm.config.ScriptTimeout)
	defer cancel()
	if err := vm.Compiled.RunContext(runCtx); err != nil {
		return nil, &Error{
			Action: "OnBar: Run",
			Script: vm.ShortName(),
			Cause:  err,
		}
	}

	declared := vm.Compiled.Get(GlobalOrders)
	if declared.IsUndefined() {
		return nil, &Error{
			Action: "OnBar: Orders",
			Script: vm.ShortName(),
			Cause:  ErrNoOrders,
		}
	}
	raw, ok := declared.Value().([]interface{})
	if !ok {
		return nil, &Error{
			Action: "OnBar: Orders",
			Script: vm.ShortName(),
			Cause: fmt.Errorf("%w: orders is %s not array",
				execution.ErrInvalidOrderPayload, declared.ValueType()),
		}
	}
	orders, err := execution.ParseOrders(raw)
	if err != nil {
		return nil, &Error{
			Action: "OnBar: Orders",
			Script: vm.ShortName(),
			Cause:  err,
		}
	}
	return orders, nil
}

// setGlobals swaps the per-bar globals into the compiled script. Bar objects
// are cached across invocations and only the new tail of the view is built,
// the shared header is length clamped so scripts never see future bars
func (vm *VM) setGlobals(view kline.Table, holdings []portfolio.Holding, summary portfolio.Summary) error {
	for len(vm.barObjs) < len(view) {
		vm.barObjs = append(vm.barObjs, barObject(&view[len(vm.barObjs)]))
	}
	bars := &tengo.ImmutableArray{Value: vm.barObjs[:len(view):len(view)]}

	for _, g := range []struct {
		name  string
		value tengo.Object
	}{
		{GlobalBars, bars},
		{GlobalHoldings, holdingsObject(holdings)},
		{GlobalPortfolio, summaryObject(summary)},
	} {
		if err := vm.Compiled.Set(g.name, g.value); err != nil {
			return &Error{
				Action: "OnBar: Set " + g.name,
				Script: vm.ShortName(),
				Cause:  err,
			}
		}
	}
	return nil
}

// ShortName returns just the filename of the loaded script
func (vm *VM) ShortName() string {
	return filepath.Base(vm.File)
}

// Name returns the strategy name, the script filename without its extension
func (vm *VM) Name() string {
	return strings.TrimSuffix(vm.ShortName(), ScriptExt)
}

func barObject(b *kline.Bar) tengo.Object {
	return &tengo.ImmutableMap{Value: map[string]tengo.Object{
		"date":   &tengo.String{Value: b.Date.Format(kline.DateFormat)},
		"open":   &tengo.Float{Value: b.Open},
		"high":   &tengo.Float{Value: b.High},
		"low":    &tengo.Float{Value: b.Low},
		"close":  &tengo.Float{Value: b.Close},
		"volume": &tengo.Float{Value: b.Volume},
	}}
}

func holdingsObject(holdings []portfolio.Holding) tengo.Object {
	out := make([]tengo.Object, len(holdings))
	for i := range holdings {
		h := &holdings[i]
		entryDate := tengo.UndefinedValue
		if h.EntryDate != nil {
			entryDate = &tengo.String{Value: h.EntryDate.Format(kline.DateFormat)}
		}
		out[i] = &tengo.ImmutableMap{Value: map[string]tengo.Object{
			"holding_id":      &tengo.String{Value: h.ID},
			"asset":           &tengo.String{Value: h.Asset},
			"amount":          &tengo.Float{Value: h.Amount},
			"unit_value_usd":  &tengo.Float{Value: h.UnitValueUSD},
			"total_value_usd": &tengo.Float{Value: h.TotalValueUSD},
			"stop_loss":       optionalFloatObject(h.StopLoss),
			"take_profit":     optionalFloatObject(h.TakeProfit),
			"entry_price":     &tengo.Float{Value: h.EntryPrice},
			"entry_date":      entryDate,
			"high_water_usd":  &tengo.Float{Value: h.HighWaterUSD},
		}}
	}
	return &tengo.ImmutableArray{Value: out}
}

func summaryObject(s portfolio.Summary) tengo.Object {
	lastLossExit := tengo.UndefinedValue
	if s.LastLossExit != nil {
		lastLossExit = &tengo.String{Value: s.LastLossExit.Format(kline.DateFormat)}
	}
	return &tengo.ImmutableMap{Value: map[string]tengo.Object{
		"total_value_usd": &tengo.Float{Value: s.TotalValueUSD},
		"quote_usd":       &tengo.Float{Value: s.QuoteUSD},
		"last_loss_exit":  lastLossExit,
	}}
}

func optionalFloatObject(v *float64) tengo.Object {
	if v == nil {
		return tengo.UndefinedValue
	}
	return &tengo.Float{Value: *v}
}
