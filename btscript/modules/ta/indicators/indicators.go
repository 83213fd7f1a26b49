package indicators

import (
	"errors"
	"fmt"
	"strings"

	objects "github.com/d5/tengo/v2"
	"github.com/thrasher-corp/gct-ta/indicators"

	"github.com/thrasher-corp/gct-backtester/btscript/modules"
)

// OHLCV locale string for OHLCV data conversion failure
const OHLCV = "OHLCV data"

// Modules map of all loadable indicator commands
var Modules = map[string]objects.Object{
	"rsi":    &objects.UserFunction{Name: "rsi", Value: rsi},
	"macd":   &objects.UserFunction{Name: "macd", Value: macd},
	"sma":    &objects.UserFunction{Name: "sma", Value: sma},
	"ema":    &objects.UserFunction{Name: "ema", Value: ema},
	"bbands": &objects.UserFunction{Name: "bbands", Value: bbands},
	"mfi":    &objects.UserFunction{Name: "mfi", Value: mfi},
	"obv":    &objects.UserFunction{Name: "obv", Value: obv},
	"atr":    &objects.UserFunction{Name: "atr", Value: atr},
}

var errInvalidSelector = errors.New("invalid selector")

// ParseIndicatorSelector validates the bar field an indicator reads
func ParseIndicatorSelector(in string) (string, error) {
	switch in {
	case "open", "high", "low", "close", "volume":
		return in, nil
	default:
		return "", fmt.Errorf("%w: %v", errInvalidSelector, in)
	}
}

// ParseMAType returns moving average type from string
func ParseMAType(in string) (indicators.MaType, error) {
	switch strings.ToLower(in) {
	case "sma":
		return indicators.Sma, nil
	case "ema":
		return indicators.Ema, nil
	default:
		return 0, fmt.Errorf("%w: %v", errInvalidSelector, in)
	}
}

func toFloat64(data interface{}) (float64, error) {
	switch d := data.(type) {
	case float64:
		return d, nil
	case int:
		return float64(d), nil
	case int32:
		return float64(d), nil
	case int64:
		return float64(d), nil
	default:
		return 0, fmt.Errorf(modules.ErrParameterConvertFailed, d)
	}
}

// barSeries pulls one named field out of each bar map a script handed over
func barSeries(ohlcvInputData []interface{}, field string) ([]float64, error) {
	out := make([]float64, len(ohlcvInputData))
	var allErrors []string
	for x := range ohlcvInputData {
		t, ok := ohlcvInputData[x].(map[string]interface{})
		if !ok {
			return nil, errors.New("ohlcvInputData type assert failed")
		}
		v, ok := t[field]
		if !ok || v == nil {
			allErrors = append(allErrors, fmt.Sprintf(modules.ErrEmptyParameter, field))
			continue
		}
		value, err := toFloat64(v)
		if err != nil {
			allErrors = append(allErrors, err.Error())
		}
		out[x] = value
	}
	if len(allErrors) > 0 {
		return nil, errors.New(strings.Join(allErrors, ", "))
	}
	return out, nil
}

func barsFromArg(arg objects.Object) ([]interface{}, error) {
	ohlcvInput := objects.ToInterface(arg)
	ohlcvInputData, valid := ohlcvInput.([]interface{})
	if !valid {
		return nil, fmt.Errorf(modules.ErrParameterConvertFailed, OHLCV)
	}
	return ohlcvInputData, nil
}
