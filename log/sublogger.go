package log

import (
	"fmt"
	"io"
	"strings"
)

// Global vars related to the logger package
var (
	Global       *SubLogger
	BackTester   *SubLogger
	ConfigMgr    *SubLogger
	DataMgr      *SubLogger
	PortfolioMgr *SubLogger
	ExecutionMgr *SubLogger
	StrategyMgr  *SubLogger
	StatisticMgr *SubLogger
	JournalMgr   *SubLogger
	ReportMgr    *SubLogger
)

func init() {
	Global = registerNewSubLogger("LOG")
	BackTester = registerNewSubLogger("BACKTESTER")
	ConfigMgr = registerNewSubLogger("CONFIG")
	DataMgr = registerNewSubLogger("DATA")
	PortfolioMgr = registerNewSubLogger("PORTFOLIO")
	ExecutionMgr = registerNewSubLogger("EXECUTION")
	StrategyMgr = registerNewSubLogger("STRATEGY")
	StatisticMgr = registerNewSubLogger("STATISTICS")
	JournalMgr = registerNewSubLogger("JOURNAL")
	ReportMgr = registerNewSubLogger("REPORT")
}

func registerNewSubLogger(name string) *SubLogger {
	sl := &SubLogger{
		name:   strings.ToUpper(name),
		levels: splitLevel(defaultLevels),
	}
	subLoggers[sl.name] = sl
	return sl
}

// NewSubLogger allows for a new sub logger to be registered
func NewSubLogger(name string) (*SubLogger, error) {
	if name == "" {
		return nil, errEmptyLoggerName
	}
	name = strings.ToUpper(name)
	mu.Lock()
	defer mu.Unlock()
	if _, ok := subLoggers[name]; ok {
		return nil, fmt.Errorf("'%v' %w", name, ErrSubLoggerAlreadyRegistered)
	}
	sl := &SubLogger{
		name:   name,
		levels: splitLevel(defaultLevels),
	}
	subLoggers[name] = sl
	return sl, nil
}

// SetLevel sets a sub logger's levels from a pipe delimited string,
// e.g. "INFO|WARN|ERROR"
func (sl *SubLogger) SetLevel(levels string) {
	mu.Lock()
	sl.levels = splitLevel(levels)
	mu.Unlock()
}

// GetLevels returns the current levels of the sub logger
func (sl *SubLogger) GetLevels() Levels {
	mu.RLock()
	defer mu.RUnlock()
	return Levels{
		Info:  sl.info,
		Debug: sl.debug,
		Warn:  sl.warn,
		Error: sl.err,
	}
}

// SetGlobalLogLevels applies a pipe delimited level string to every
// registered sub logger
func SetGlobalLogLevels(levels string) {
	mu.Lock()
	l := splitLevel(levels)
	for _, sl := range subLoggers {
		sl.levels = l
	}
	mu.Unlock()
}

// SetVerbose enables debug output on every registered sub logger
func SetVerbose() {
	mu.Lock()
	for _, sl := range subLoggers {
		sl.debug = true
	}
	mu.Unlock()
}

// SetOutput redirects all log output to w
func SetOutput(w io.Writer) {
	mu.Lock()
	output = w
	mu.Unlock()
}

func splitLevel(level string) (l levels) {
	enabledLevels := strings.Split(level, "|")
	for x := range enabledLevels {
		switch level := enabledLevels[x]; level {
		case "DEBUG":
			l.debug = true
		case "INFO":
			l.info = true
		case "WARN":
			l.warn = true
		case "ERROR":
			l.err = true
		}
	}
	return
}
