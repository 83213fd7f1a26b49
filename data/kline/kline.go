package kline

import (
	"fmt"
	"math"
)

// Validate checks table integrity then length. Integrity failures wrap
// ErrInvalidData and are fatal to a run, a well formed table shorter than
// minBars returns ErrInsufficientData which callers treat as a run with no
// trades possible
func (t Table) Validate(minBars int) error {
	for i := range t {
		if t[i].Date.IsZero() {
			return fmt.Errorf("%w: bar %v has no date", ErrInvalidData, i)
		}
		if err := validateFields(t[i]); err != nil {
			return fmt.Errorf("%w: bar %v (%v): %v",
				ErrInvalidData, i, t[i].Date.Format(DateFormat), err)
		}
		if i == 0 {
			continue
		}
		if !t[i].Date.After(t[i-1].Date) {
			return fmt.Errorf("%w: dates not strictly ascending at bar %v (%v >= %v)",
				ErrInvalidData,
				i,
				t[i-1].Date.Format(DateFormat),
				t[i].Date.Format(DateFormat))
		}
	}
	if len(t) < minBars {
		return fmt.Errorf("%w: have %v bars, minimum %v", ErrInsufficientData, len(t), minBars)
	}
	return nil
}

func validateFields(b Bar) error {
	prices := map[string]float64{
		"open":  b.Open,
		"high":  b.High,
		"low":   b.Low,
		"close": b.Close,
	}
	for _, name := range []string{"open", "high", "low", "close"} {
		v := prices[name]
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%v is not a number", name)
		}
		if v <= 0 {
			return fmt.Errorf("%v %v is not a positive price", name, v)
		}
	}
	if math.IsNaN(b.Volume) || math.IsInf(b.Volume, 0) {
		return fmt.Errorf("volume is not a number")
	}
	if b.Volume < 0 {
		return fmt.Errorf("volume %v is negative", b.Volume)
	}
	return nil
}

// First returns the earliest bar in the table
func (t Table) First() Bar {
	if len(t) == 0 {
		return Bar{}
	}
	return t[0]
}

// Last returns the most recent bar in the table
func (t Table) Last() Bar {
	if len(t) == 0 {
		return Bar{}
	}
	return t[len(t)-1]
}
