package indicators

import (
	"fmt"

	objects "github.com/d5/tengo/v2"
	"github.com/thrasher-corp/gct-ta/indicators"

	"github.com/thrasher-corp/gct-backtester/btscript/modules"
)

func sma(args ...objects.Object) (objects.Object, error) {
	ohlcvClose, inTimePeriod, err := movingAverageArgs(args...)
	if err != nil {
		return nil, err
	}

	ret := indicators.SMA(ohlcvClose, inTimePeriod)
	r := &objects.Array{}
	for x := range ret {
		r.Value = append(r.Value, &objects.Float{Value: ret[x]})
	}

	return r, nil
}

func ema(args ...objects.Object) (objects.Object, error) {
	ohlcvClose, inTimePeriod, err := movingAverageArgs(args...)
	if err != nil {
		return nil, err
	}

	ret := indicators.EMA(ohlcvClose, inTimePeriod)
	r := &objects.Array{}
	for x := range ret {
		r.Value = append(r.Value, &objects.Float{Value: ret[x]})
	}

	return r, nil
}

func movingAverageArgs(args ...objects.Object) ([]float64, int, error) {
	if len(args) != 2 {
		return nil, 0, objects.ErrWrongNumArguments
	}

	ohlcvInputData, err := barsFromArg(args[0])
	if err != nil {
		return nil, 0, err
	}
	ohlcvClose, err := barSeries(ohlcvInputData, "close")
	if err != nil {
		return nil, 0, err
	}

	inTimePeriod, ok := objects.ToInt(args[1])
	if !ok {
		return nil, 0, fmt.Errorf(modules.ErrParameterConvertFailed, inTimePeriod)
	}

	return ohlcvClose, inTimePeriod, nil
}
