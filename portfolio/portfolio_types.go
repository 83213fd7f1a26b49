package portfolio

import (
	"errors"
	"time"
)

// tolerance is the floating point slack applied to funds and amount
// comparisons so that all-in orders sized from a division survive rounding.
const tolerance = 1e-9

var (
	// ErrInsufficientFunds is returned when a buy costs more than the quote
	// holding contains
	ErrInsufficientFunds = errors.New("insufficient quote funds for buy")
	// ErrUnknownHolding is returned when a sell references a holding id that
	// is not in the ledger
	ErrUnknownHolding = errors.New("unknown holding id")
	// ErrOverdraft is returned when a sell requests more units than the
	// referenced holding contains
	ErrOverdraft = errors.New("sell amount exceeds holding amount")
	// ErrNonPositiveAmount is returned when an order amount is zero or below
	ErrNonPositiveAmount = errors.New("amount must be greater than zero")
)

// Holding is a ledger entry representing ownership of the quote asset or of
// the traded asset. Exactly one quote holding exists per ledger; traded
// holdings are created by buys and removed once fully sold
type Holding struct {
	ID            string     `json:"holding_id"`
	Asset         string     `json:"asset"`
	Amount        float64    `json:"amount"`
	UnitValueUSD  float64    `json:"unit_value_usd"`
	TotalValueUSD float64    `json:"total_value_usd"`
	StopLoss      *float64   `json:"stop_loss,omitempty"`
	TakeProfit    *float64   `json:"take_profit,omitempty"`
	EntryPrice    float64    `json:"entry_price,omitempty"`
	EntryDate     *time.Time `json:"entry_date,omitempty"`
	HighWaterUSD  float64    `json:"high_water_usd,omitempty"`
}

// SellReceipt describes the outcome of an executed sell
type SellReceipt struct {
	HoldingID         string
	Amount            float64
	Price             float64
	USDValue          float64
	PnL               float64
	HoldingPeriodDays int
}

// Snapshot is the per-bar record of total portfolio value
type Snapshot struct {
	Date          time.Time `json:"date"`
	TotalValueUSD float64   `json:"total_value_usd"`
}

// Summary is the read-only portfolio view handed to a strategy alongside its
// holdings. LastLossExit is nil until a sell has realised a negative PnL
type Summary struct {
	TotalValueUSD float64    `json:"total_value_usd"`
	QuoteUSD      float64    `json:"quote_usd"`
	LastLossExit  *time.Time `json:"last_loss_exit,omitempty"`
}

// Ledger owns the holdings of a single backtest run. It is created once per
// run and never shared across runs, so none of its operations lock
type Ledger struct {
	quoteAsset   string
	tradedAsset  string
	quote        Holding
	holdings     []Holding
	nextID       int
	lastLossExit time.Time
	hasLossExit  bool
}
