package kline

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/buger/jsonparser"
)

var csvColumns = []string{"date", "open", "high", "low", "close", "volume"}

// LoadFile reads a bar table from a CSV or JSON file, dispatching on the
// file extension
func LoadFile(path string) (Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return LoadCSV(path)
	case ".json":
		return LoadJSON(path)
	default:
		return nil, fmt.Errorf("%w: %v", errUnhandledFileType, path)
	}
}

// LoadCSV reads a bar table from a CSV file with the header
// date,open,high,low,close,volume
func LoadCSV(path string) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%v could not read header: %w", path, err)
	}
	if len(header) != len(csvColumns) {
		return nil, fmt.Errorf("%v header has %v columns, want %v", path, len(header), len(csvColumns))
	}
	for i := range header {
		if !strings.EqualFold(strings.TrimSpace(header[i]), csvColumns[i]) {
			return nil, fmt.Errorf("%v unexpected header column %q, want %q", path, header[i], csvColumns[i])
		}
	}

	var table Table
	for row := 2; ; row++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%v row %v: %w", path, row, err)
		}
		bar, err := barFromRecord(record)
		if err != nil {
			return nil, fmt.Errorf("%v row %v: %w", path, row, err)
		}
		table = append(table, bar)
	}
	if len(table) == 0 {
		return nil, fmt.Errorf("%w: %v", errNoData, path)
	}
	return table, nil
}

func barFromRecord(record []string) (Bar, error) {
	date, err := ParseDate(record[0])
	if err != nil {
		return Bar{}, err
	}
	fields := make([]float64, 5)
	for i := range fields {
		fields[i], err = strconv.ParseFloat(strings.TrimSpace(record[i+1]), 64)
		if err != nil {
			return Bar{}, fmt.Errorf("could not parse %v: %w", csvColumns[i+1], err)
		}
	}
	return Bar{
		Date:   date,
		Open:   fields[0],
		High:   fields[1],
		Low:    fields[2],
		Close:  fields[3],
		Volume: fields[4],
	}, nil
}

// LoadJSON reads a bar table from a JSON file holding an array of objects
// with date,open,high,low,close,volume keys
func LoadJSON(path string) (Table, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var table Table
	var parseErr error
	_, err = jsonparser.ArrayEach(contents, func(value []byte, _ jsonparser.ValueType, _ int, _ error) {
		if parseErr != nil {
			return
		}
		var bar Bar
		bar, parseErr = barFromJSON(value)
		if parseErr != nil {
			return
		}
		table = append(table, bar)
	})
	if err != nil {
		return nil, fmt.Errorf("%v could not parse array: %w", path, err)
	}
	if parseErr != nil {
		return nil, fmt.Errorf("%v bar %v: %w", path, len(table), parseErr)
	}
	if len(table) == 0 {
		return nil, fmt.Errorf("%w: %v", errNoData, path)
	}
	return table, nil
}

func barFromJSON(value []byte) (Bar, error) {
	dateStr, err := jsonparser.GetString(value, "date")
	if err != nil {
		return Bar{}, fmt.Errorf("could not parse date: %w", err)
	}
	date, err := ParseDate(dateStr)
	if err != nil {
		return Bar{}, err
	}
	bar := Bar{Date: date}
	for key, target := range map[string]*float64{
		"open":   &bar.Open,
		"high":   &bar.High,
		"low":    &bar.Low,
		"close":  &bar.Close,
		"volume": &bar.Volume,
	} {
		*target, err = jsonparser.GetFloat(value, key)
		if err != nil {
			return Bar{}, fmt.Errorf("could not parse %v: %w", key, err)
		}
	}
	return bar, nil
}

// ParseDate parses a day precision date, accepting an RFC3339 timestamp as a
// fallback for data exported with full timestamps
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if date, err := time.Parse(DateFormat, s); err == nil {
		return date, nil
	}
	date, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("could not parse date %q: %w", s, err)
	}
	return date.UTC().Truncate(24 * time.Hour), nil
}
