package execution

import (
	"errors"
	"time"

	"github.com/thrasher-corp/gct-backtester/portfolio"
)

// Side is the direction of an order
type Side string

// Order directions accepted from strategies
const (
	Buy  Side = "BUY"
	Sell Side = "SELL"
)

// Reasons stamped on trade records the engine forces rather than the
// strategy requesting
const (
	ReasonStopLoss   = "stop_loss"
	ReasonTakeProfit = "take_profit"
	ReasonFinalExit  = "final_exit"
)

var (
	// ErrInvalidOrderPayload is returned when a strategy's orders value does
	// not decode to the order schema. It fails the whole batch
	ErrInvalidOrderPayload = errors.New("invalid order payload")
	// ErrUnsupportedAsset is returned when a buy names an asset other than
	// the run's traded asset
	ErrUnsupportedAsset = errors.New("unsupported asset for buy")
	// ErrHoldingOpen is returned when a buy arrives while a holding is open
	// and multiple open holdings are disabled
	ErrHoldingOpen = errors.New("holding already open in all-in all-out mode")
	// ErrInvalidThreshold is returned when a buy sets a stop loss or take
	// profit on the wrong side of the entry price
	ErrInvalidThreshold = errors.New("threshold inconsistent with entry price")
)

// Order is a strategy's proposal to mutate the ledger. It carries either buy
// fields (asset, amount, optional thresholds) or sell fields (holding id,
// amount) depending on Action
type Order struct {
	Action     Side     `json:"action"`
	Asset      string   `json:"asset,omitempty"`
	Amount     float64  `json:"amount"`
	HoldingID  string   `json:"holding_id,omitempty"`
	StopLoss   *float64 `json:"stop_loss,omitempty"`
	TakeProfit *float64 `json:"take_profit,omitempty"`
}

// TradeRecord is one line of the append-only trade log: an executed order or
// a forced liquidation
type TradeRecord struct {
	Action            Side      `json:"action"`
	HoldingID         string    `json:"holding_id,omitempty"`
	Amount            float64   `json:"amount"`
	Date              time.Time `json:"date"`
	Price             float64   `json:"price"`
	USDValue          float64   `json:"usd_value"`
	PnL               *float64  `json:"pnl,omitempty"`
	HoldingPeriodDays *int      `json:"holding_period_days,omitempty"`
	Reason            string    `json:"reason,omitempty"`
}

// Rejection records an order that failed validation. The run continues; the
// order is simply skipped
type Rejection struct {
	Date  time.Time `json:"date"`
	Order Order     `json:"order"`
	Cause string    `json:"cause"`
	Err   error     `json:"-"`
}

// Settings is the executor's slice of the run configuration
type Settings struct {
	TradedAsset               string
	AllowMultipleOpenHoldings bool
	ThresholdPolicy           string
}

// Executor validates orders against the current ledger state and applies the
// ones that pass, accumulating the run's trade log and rejections
type Executor struct {
	ledger     *portfolio.Ledger
	settings   Settings
	trades     []TradeRecord
	rejections []Rejection
}
