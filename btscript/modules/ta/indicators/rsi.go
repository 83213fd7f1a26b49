package indicators

import (
	"fmt"

	objects "github.com/d5/tengo/v2"
	"github.com/thrasher-corp/gct-ta/indicators"

	"github.com/thrasher-corp/gct-backtester/btscript/modules"
)

// RelativeStrengthIndex is the string constant
const RelativeStrengthIndex = "Relative Strength Index"

// RSI defines a custom Relative Strength Index indicator tengo object type
type RSI struct {
	objects.Array
	Period int
}

// TypeName returns the name of the custom type.
func (o *RSI) TypeName() string {
	return RelativeStrengthIndex
}

func rsi(args ...objects.Object) (objects.Object, error) {
	if len(args) != 2 {
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

	inTimePeriod, ok := objects.ToInt(args[1])
	if !ok {
		return nil, fmt.Errorf(modules.ErrParameterConvertFailed, inTimePeriod)
	}

	r := new(RSI)
	r.Period = inTimePeriod
	ret := indicators.RSI(ohlcvClose, inTimePeriod)
	for x := range ret {
		r.Value = append(r.Value, &objects.Float{Value: ret[x]})
	}

	return r, nil
}
