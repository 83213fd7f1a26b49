package loader

import (
	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"

	"github.com/thrasher-corp/gct-backtester/btscript/modules/ta/indicators"
)

// scriptModules are the tengo stdlib modules strategy scripts may import.
// The os, times and rand modules stay out so scripts cannot touch the
// filesystem, observe a clock or introduce nondeterminism
var scriptModules = []string{"math", "text", "fmt", "json", "enum"}

// GetModuleMap returns the module map handed to every strategy script
func GetModuleMap() *tengo.ModuleMap {
	modules := stdlib.GetModuleMap(scriptModules...)
	modules.AddBuiltinModule("indicators", indicators.Modules)
	return modules
}
