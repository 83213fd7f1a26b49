package vm

import (
	"errors"
	"time"

	"github.com/d5/tengo/v2"
	"github.com/gofrs/uuid"
)

const (
	// ScriptExt is the file extension of strategy scripts
	ScriptExt = ".bt"
	// DefaultTimeout is the per-bar execution deadline applied when a
	// config does not set one
	DefaultTimeout = 30 * time.Second
)

// Names of the globals shared between the engine and a running script.
// The first three are set before every execution, the last is read back
const (
	GlobalBars      = "bars"
	GlobalHoldings  = "holdings"
	GlobalPortfolio = "portfolio"
	GlobalOrders    = "orders"
)

const btScript = "BT Script"

var (
	// ErrNoVMLoaded returned when a virtual machine is nil or has no
	// compiled script
	ErrNoVMLoaded = errors.New("no virtual machine loaded")
	// ErrNoOrders returned when a script completes without declaring the
	// orders global
	ErrNoOrders = errors.New("script did not declare an orders global")

	errEmptySource = errors.New("script source is empty")
)

// Config controls execution limits for every virtual machine
type Config struct {
	ScriptTimeout time.Duration
	MaxAllocs     int64
	Verbose       bool
}

// VM holds one compiled strategy script. A VM walks a single bar table per
// load, the engine creates one per run
type VM struct {
	ID       uuid.UUID
	File     string
	Path     string
	Script   *tengo.Script
	Compiled *tengo.Compiled
	config   Config
	barObjs  []tengo.Object
}

// Error wraps a script failure with the script and action that raised it
type Error struct {
	Script string
	Action string
	Cause  error
}
