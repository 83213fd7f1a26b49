package math

import (
	"errors"
	"math"
)

var (
	// ErrInsufficientSample returned when a statistic requires more
	// observations than supplied
	ErrInsufficientSample = errors.New("insufficient sample size")
	// ErrZeroVariance returned when a ratio would divide by a zero standard
	// deviation
	ErrZeroVariance = errors.New("zero variance")
	// ErrZeroValue returned when a period return would divide by zero
	ErrZeroValue = errors.New("zero value in series")
)

// CalculatePercentageGainOrLoss returns the percentage rise over a certain
// period
func CalculatePercentageGainOrLoss(valueNow, valueThen float64) float64 {
	return (valueNow - valueThen) / valueThen * 100
}

// CalculateCompoundAnnualGrowthRate Calculates CAGR.
// Using years, intervals per year would be 1 and number of intervals would be
// the number of years
// Using days, intervals per year would be 365 and number of intervals would
// be the number of days
func CalculateCompoundAnnualGrowthRate(openValue, closeValue, intervalsPerYear, numberOfIntervals float64) float64 {
	k := math.Pow(closeValue/openValue, intervalsPerYear/numberOfIntervals) - 1
	return k * 100
}

// ArithmeticAverage is the basic form of calculating an average.
// Divide the sum of all values by the length of values
func ArithmeticAverage(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sumOfValues float64
	for x := range values {
		sumOfValues += values[x]
	}
	return sumOfValues / float64(len(values))
}

// SampleStandardDeviation standard deviation is a statistic that
// measures the dispersion of a dataset relative to its mean and
// is calculated as the square root of the variance
func SampleStandardDeviation(values []float64) float64 {
	if len(values) <= 1 {
		return 0
	}
	mean := ArithmeticAverage(values)
	var combined float64
	for i := range values {
		combined += math.Pow(values[i]-mean, 2)
	}
	avg := combined / (float64(len(values)) - 1)
	return math.Sqrt(avg)
}

// PeriodReturns converts a series of values into period over period
// fractional returns, eg 100, 110, 99 becomes 0.1, -0.1
func PeriodReturns(values []float64) ([]float64, error) {
	if len(values) < 2 {
		return nil, ErrInsufficientSample
	}
	returns := make([]float64, len(values)-1)
	for i := 1; i < len(values); i++ {
		if values[i-1] == 0 {
			return nil, ErrZeroValue
		}
		returns[i-1] = values[i]/values[i-1] - 1
	}
	return returns, nil
}

// CalculateSharpeRatio returns the annualized sharpe ratio of a series of
// period returns compared to risk-free
func CalculateSharpeRatio(periodReturns []float64, riskFreeRate, intervalsPerYear float64) (float64, error) {
	if len(periodReturns) < 2 {
		return 0, ErrInsufficientSample
	}
	excessReturns := make([]float64, len(periodReturns))
	for i := range periodReturns {
		excessReturns[i] = periodReturns[i] - riskFreeRate
	}
	standardDeviation := SampleStandardDeviation(excessReturns)
	if standardDeviation == 0 {
		return 0, ErrZeroVariance
	}
	mean := ArithmeticAverage(excessReturns)
	return mean / standardDeviation * math.Sqrt(intervalsPerYear), nil
}
