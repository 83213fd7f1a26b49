package indicators

import (
	"fmt"

	objects "github.com/d5/tengo/v2"
	"github.com/thrasher-corp/gct-ta/indicators"

	"github.com/thrasher-corp/gct-backtester/btscript/modules"
)

func obv(args ...objects.Object) (objects.Object, error) {
	if len(args) != 2 {
		return nil, objects.ErrWrongNumArguments
	}

	ohlcIndicatorType, ok := objects.ToString(args[0])
	if !ok {
		return nil, fmt.Errorf(modules.ErrParameterConvertFailed, ohlcIndicatorType)
	}

	selector, err := ParseIndicatorSelector(ohlcIndicatorType)
	if err != nil {
		return nil, err
	}

	ohlcvInputData, err := barsFromArg(args[1])
	if err != nil {
		return nil, err
	}
	series, err := barSeries(ohlcvInputData, selector)
	if err != nil {
		return nil, err
	}
	volume, err := barSeries(ohlcvInputData, "volume")
	if err != nil {
		return nil, err
	}

	ret := indicators.OBV(series, volume)
	r := &objects.Array{}
	for x := range ret {
		r.Value = append(r.Value, &objects.Float{Value: ret[x]})
	}

	return r, nil
}
