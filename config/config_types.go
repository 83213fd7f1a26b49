package config

import "errors"

// Default values applied by Validate when fields are left unset
const (
	DefaultStartingCashUSD   float64 = 10000
	DefaultMinHistoryBars            = 100
	DefaultStrategyTimeoutMs         = 30000
	DefaultBarsPerYear               = 252
	DefaultQuoteAsset                = "USD"
	DefaultTradedAsset               = "BTC"
	DefaultScriptMaxAllocs   int64   = 1 << 20
)

// Threshold policies for stop-loss/take-profit checks. Intrabar triggers on
// the bar's low/high, close only on the closing price
const (
	ThresholdPolicyIntrabar = "intrabar"
	ThresholdPolicyClose    = "close"
)

var (
	errNegativeStartingCash = errors.New("starting cash cannot be negative")
	errNegativeHistoryBars  = errors.New("minimum history bars cannot be negative")
	errNegativeTimeout      = errors.New("strategy timeout cannot be negative")
	errNegativeBarsPerYear  = errors.New("bars per year cannot be negative")
	errNegativeMaxAllocs    = errors.New("script max allocs cannot be negative")
	errAssetsMatch          = errors.New("quote and traded asset cannot match")
	errInvalidPolicy        = errors.New("unrecognised threshold policy")
	errConfigFileNotFound   = errors.New("config file not found")
)

// Config defines the settings for a backtest run
type Config struct {
	StartingCashUSD           float64         `json:"starting-cash-usd" yaml:"starting-cash-usd"`
	AllowMultipleOpenHoldings bool            `json:"allow-multiple-open-holdings" yaml:"allow-multiple-open-holdings"`
	MinHistoryBars            int             `json:"min-history-bars" yaml:"min-history-bars"`
	StrategyTimeoutMs         int             `json:"strategy-timeout-ms" yaml:"strategy-timeout-ms"`
	BarsPerYear               int             `json:"bars-per-year" yaml:"bars-per-year"`
	QuoteAsset                string          `json:"quote-asset" yaml:"quote-asset"`
	TradedAsset               string          `json:"traded-asset" yaml:"traded-asset"`
	ThresholdPolicy           string          `json:"threshold-policy" yaml:"threshold-policy"`
	ScriptMaxAllocs           int64           `json:"script-max-allocs" yaml:"script-max-allocs"`
	Journal                   JournalSettings `json:"journal" yaml:"journal"`
	Verbose                   bool            `json:"verbose" yaml:"verbose"`
}

// JournalSettings stores run persistence variables
type JournalSettings struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Path    string `json:"path" yaml:"path"`
}
