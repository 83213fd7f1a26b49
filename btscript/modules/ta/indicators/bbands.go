package indicators

import (
	"errors"
	"fmt"
	"strings"

	objects "github.com/d5/tengo/v2"
	"github.com/thrasher-corp/gct-ta/indicators"

	"github.com/thrasher-corp/gct-backtester/btscript/modules"
)

// BollingerBands is the string constant
const BollingerBands = "Bollinger Bands"

// BBands defines a custom Bollinger Bands indicator tengo object. Each
// element is [upper, middle, lower] for one bar
type BBands struct {
	objects.Array
	Period               int
	STDDevUp, STDDevDown float64
	MAType               indicators.MaType
}

// TypeName returns the name of the custom type.
func (o *BBands) TypeName() string {
	return BollingerBands
}

func bbands(args ...objects.Object) (objects.Object, error) {
	if len(args) != 6 {
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

	var allErrors []string
	inTimePeriod, ok := objects.ToInt(args[2])
	if !ok {
		allErrors = append(allErrors, fmt.Sprintf(modules.ErrParameterConvertFailed, inTimePeriod))
	}

	inNbDevUp, ok := objects.ToFloat64(args[3])
	if !ok {
		allErrors = append(allErrors, fmt.Sprintf(modules.ErrParameterConvertFailed, inNbDevUp))
	}

	inNbDevDn, ok := objects.ToFloat64(args[4])
	if !ok {
		allErrors = append(allErrors, fmt.Sprintf(modules.ErrParameterConvertFailed, inNbDevDn))
	}

	inMAType, ok := objects.ToString(args[5])
	if !ok {
		allErrors = append(allErrors, fmt.Sprintf(modules.ErrParameterConvertFailed, inMAType))
	}

	if len(allErrors) > 0 {
		return nil, errors.New(strings.Join(allErrors, ", "))
	}

	maType, err := ParseMAType(inMAType)
	if err != nil {
		return nil, err
	}

	r := new(BBands)
	r.Period = inTimePeriod
	r.STDDevUp = inNbDevUp
	r.STDDevDown = inNbDevDn
	r.MAType = maType

	retUpper, retMiddle, retLower := indicators.BBANDS(series, inTimePeriod, inNbDevUp, inNbDevDn, maType)
	for x := range retMiddle {
		temp := &objects.Array{}
		if retUpper != nil {
			temp.Value = append(temp.Value, &objects.Float{Value: retUpper[x]})
		}
		temp.Value = append(temp.Value, &objects.Float{Value: retMiddle[x]})
		if retLower != nil {
			temp.Value = append(temp.Value, &objects.Float{Value: retLower[x]})
		}
		r.Value = append(r.Value, temp)
	}

	return r, nil
}
