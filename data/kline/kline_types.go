package kline

import (
	"errors"
	"time"
)

// DateFormat is the day precision format used across bar tables
const DateFormat = "2006-01-02"

var (
	// ErrInvalidData returned when a bar table fails integrity checks, halts
	// a run before any simulation
	ErrInvalidData = errors.New("invalid bar data")
	// ErrInsufficientData returned when a bar table is shorter than the
	// configured history floor, a run completes with zero trades
	ErrInsufficientData = errors.New("insufficient bar data")

	errUnhandledFileType = errors.New("unhandled file type")
	errNoData            = errors.New("no data contained in file")
)

// Bar is a single daily OHLCV record. The engine only ever reads bars
type Bar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// Table is a date ascending series of bars
type Table []Bar
