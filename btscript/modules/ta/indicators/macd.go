package indicators

import (
	"errors"
	"fmt"
	"strings"

	objects "github.com/d5/tengo/v2"
	"github.com/thrasher-corp/gct-ta/indicators"

	"github.com/thrasher-corp/gct-backtester/btscript/modules"
)

// MovingAverageConvergenceDivergence is the string constant
const MovingAverageConvergenceDivergence = "Moving Average Convergence Divergence"

// MACD defines a custom Moving Average Convergence Divergence tengo indicator
// object type. Each element is [macd, signal, histogram] for one bar
type MACD struct {
	objects.Array
	PeriodFast, PeriodSlow, PeriodSignal int
}

// TypeName returns the name of the custom type.
func (o *MACD) TypeName() string {
	return MovingAverageConvergenceDivergence
}

func macd(args ...objects.Object) (objects.Object, error) {
	if len(args) != 4 {
		return nil, objects.ErrWrongNumArguments
	}

	ohlcvInputData, err := barsFromArg(args[0])
	if err != nil {
		return nil, err
	}
	ohlcvClose, err := barSeries(ohlcvInputData, "close")
	if err != nil {
		return nil, err
	}

	var allErrors []string
	inFastPeriod, ok := objects.ToInt(args[1])
	if !ok {
		allErrors = append(allErrors, fmt.Sprintf(modules.ErrParameterConvertFailed, inFastPeriod))
	}

	inSlowPeriod, ok := objects.ToInt(args[2])
	if !ok {
		allErrors = append(allErrors, fmt.Sprintf(modules.ErrParameterConvertFailed, inSlowPeriod))
	}

	inSignalPeriod, ok := objects.ToInt(args[3])
	if !ok {
		allErrors = append(allErrors, fmt.Sprintf(modules.ErrParameterConvertFailed, inSignalPeriod))
	}

	if len(allErrors) > 0 {
		return nil, errors.New(strings.Join(allErrors, ", "))
	}

	r := new(MACD)
	r.PeriodFast = inFastPeriod
	r.PeriodSlow = inSlowPeriod
	r.PeriodSignal = inSignalPeriod

	macdLine, macdSignal, macdHist := indicators.MACD(ohlcvClose, inFastPeriod, inSlowPeriod, inSignalPeriod)
	for x := range macdHist {
		tempMACD := &objects.Array{}
		if macdLine != nil {
			tempMACD.Value = append(tempMACD.Value, &objects.Float{Value: macdLine[x]})
		}
		if macdSignal != nil {
			tempMACD.Value = append(tempMACD.Value, &objects.Float{Value: macdSignal[x]})
		}
		tempMACD.Value = append(tempMACD.Value, &objects.Float{Value: macdHist[x]})
		r.Value = append(r.Value, tempMACD)
	}

	return r, nil
}
