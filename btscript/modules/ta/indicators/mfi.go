package indicators

import (
	"fmt"

	objects "github.com/d5/tengo/v2"
	"github.com/thrasher-corp/gct-ta/indicators"

	"github.com/thrasher-corp/gct-backtester/btscript/modules"
)

// MoneyFlowIndex is the string constant
const MoneyFlowIndex = "Money Flow Index"

// MFI defines a custom Money Flow Index tengo indicator object type
type MFI struct {
	objects.Array
	Period int
}

// TypeName returns the name of the custom type.
func (o *MFI) TypeName() string {
	return MoneyFlowIndex
}

func mfi(args ...objects.Object) (objects.Object, error) {
	if len(args) != 2 {
		return nil, objects.ErrWrongNumArguments
	}

	ohlcvInputData, err := barsFromArg(args[0])
	if err != nil {
		return nil, err
	}
	high, err := barSeries(ohlcvInputData, "high")
	if err != nil {
		return nil, err
	}
	low, err := barSeries(ohlcvInputData, "low")
	if err != nil {
		return nil, err
	}
	ohlcvClose, err := barSeries(ohlcvInputData, "close")
	if err != nil {
		return nil, err
	}
	volume, err := barSeries(ohlcvInputData, "volume")
	if err != nil {
		return nil, err
	}

	inTimePeriod, ok := objects.ToInt(args[1])
	if !ok {
		return nil, fmt.Errorf(modules.ErrParameterConvertFailed, inTimePeriod)
	}

	r := new(MFI)
	r.Period = inTimePeriod
	ret := indicators.MFI(high, low, ohlcvClose, volume, inTimePeriod)
	for x := range ret {
		r.Value = append(r.Value, &objects.Float{Value: ret[x]})
	}

	return r, nil
}
