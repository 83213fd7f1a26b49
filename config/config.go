package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/thrasher-corp/gct-backtester/common/file"
)

// ReadConfigFromFile will take a config from a path
func ReadConfigFromFile(path string) (*Config, error) {
	if !file.Exists(path) {
		return nil, fmt.Errorf("%w: %v", errConfigFileNotFound, path)
	}

	fileData, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return LoadConfig(fileData)
}

// LoadConfig unmarshals byte data into a config struct, accepting JSON or
// YAML input
func LoadConfig(data []byte) (*Config, error) {
	resp := &Config{}
	jsonErr := json.Unmarshal(data, resp)
	if jsonErr == nil {
		return resp, nil
	}
	if yamlErr := yaml.Unmarshal(data, resp); yamlErr != nil {
		return nil, fmt.Errorf("unable to load config as json %v as yaml %v", jsonErr, yamlErr)
	}
	return resp, nil
}

// DefaultConfig returns a validated config with every default applied
func DefaultConfig() *Config {
	c := &Config{}
	if err := c.Validate(); err != nil {
		// only reachable if the defaults themselves are broken
		panic(err)
	}
	return c
}

// Validate checks all config settings and applies defaults to unset fields
func (c *Config) Validate() error {
	switch {
	case c.StartingCashUSD < 0:
		return errNegativeStartingCash
	case c.MinHistoryBars < 0:
		return errNegativeHistoryBars
	case c.StrategyTimeoutMs < 0:
		return errNegativeTimeout
	case c.BarsPerYear < 0:
		return errNegativeBarsPerYear
	case c.ScriptMaxAllocs < 0:
		return errNegativeMaxAllocs
	}
	if c.StartingCashUSD == 0 {
		c.StartingCashUSD = DefaultStartingCashUSD
	}
	if c.MinHistoryBars == 0 {
		c.MinHistoryBars = DefaultMinHistoryBars
	}
	if c.StrategyTimeoutMs == 0 {
		c.StrategyTimeoutMs = DefaultStrategyTimeoutMs
	}
	if c.BarsPerYear == 0 {
		c.BarsPerYear = DefaultBarsPerYear
	}
	if c.ScriptMaxAllocs == 0 {
		c.ScriptMaxAllocs = DefaultScriptMaxAllocs
	}
	if c.QuoteAsset == "" {
		c.QuoteAsset = DefaultQuoteAsset
	}
	if c.TradedAsset == "" {
		c.TradedAsset = DefaultTradedAsset
	}
	if c.QuoteAsset == c.TradedAsset {
		return fmt.Errorf("%w: %v", errAssetsMatch, c.QuoteAsset)
	}
	switch c.ThresholdPolicy {
	case "":
		c.ThresholdPolicy = ThresholdPolicyIntrabar
	case ThresholdPolicyIntrabar, ThresholdPolicyClose:
	default:
		return fmt.Errorf("%w: %v", errInvalidPolicy, c.ThresholdPolicy)
	}
	return nil
}

// StrategyTimeout returns the configured sandbox timeout as a duration
func (c *Config) StrategyTimeout() time.Duration {
	return time.Duration(c.StrategyTimeoutMs) * time.Millisecond
}
