package log

import (
	"errors"
	"fmt"
	"time"
)

const defaultLevels = "INFO|WARN|ERROR"

var (
	// ErrSubLoggerAlreadyRegistered returned when a sub logger is registered
	// multiple times
	ErrSubLoggerAlreadyRegistered = errors.New("sub logger already registered")

	errEmptyLoggerName = errors.New("cannot have empty logger name")
)

// Info takes a pointer subLogger struct and string, prints at info level
func Info(sl *SubLogger, data string) {
	write(sl, logger.InfoHeader, func() string { return data })
}

// Infoln takes a pointer subLogger struct and interface, prints at info level
func Infoln(sl *SubLogger, v ...interface{}) {
	write(sl, logger.InfoHeader, func() string { return fmt.Sprint(v...) })
}

// Infof takes a pointer subLogger struct, string and interface, formats and
// prints at info level
func Infof(sl *SubLogger, data string, v ...interface{}) {
	write(sl, logger.InfoHeader, func() string { return fmt.Sprintf(data, v...) })
}

// Debug takes a pointer subLogger struct and string, prints at debug level
func Debug(sl *SubLogger, data string) {
	write(sl, logger.DebugHeader, func() string { return data })
}

// Debugln takes a pointer subLogger struct and interface, prints at debug level
func Debugln(sl *SubLogger, v ...interface{}) {
	write(sl, logger.DebugHeader, func() string { return fmt.Sprint(v...) })
}

// Debugf takes a pointer subLogger struct, string and interface, formats and
// prints at debug level
func Debugf(sl *SubLogger, data string, v ...interface{}) {
	write(sl, logger.DebugHeader, func() string { return fmt.Sprintf(data, v...) })
}

// Warn takes a pointer subLogger struct and string, prints at warn level
func Warn(sl *SubLogger, data string) {
	write(sl, logger.WarnHeader, func() string { return data })
}

// Warnln takes a pointer subLogger struct and interface, prints at warn level
func Warnln(sl *SubLogger, v ...interface{}) {
	write(sl, logger.WarnHeader, func() string { return fmt.Sprint(v...) })
}

// Warnf takes a pointer subLogger struct, string and interface, formats and
// prints at warn level
func Warnf(sl *SubLogger, data string, v ...interface{}) {
	write(sl, logger.WarnHeader, func() string { return fmt.Sprintf(data, v...) })
}

// Error takes a pointer subLogger struct and interface, prints at error level
func Error(sl *SubLogger, data ...interface{}) {
	write(sl, logger.ErrorHeader, func() string { return fmt.Sprint(data...) })
}

// Errorln takes a pointer subLogger struct and interface, prints at error level
func Errorln(sl *SubLogger, v ...interface{}) {
	write(sl, logger.ErrorHeader, func() string { return fmt.Sprint(v...) })
}

// Errorf takes a pointer subLogger struct, string and interface, formats and
// prints at error level
func Errorf(sl *SubLogger, data string, v ...interface{}) {
	write(sl, logger.ErrorHeader, func() string { return fmt.Sprintf(data, v...) })
}

func write(sl *SubLogger, header string, deferral func() string) {
	if sl == nil {
		return
	}
	mu.RLock()
	defer mu.RUnlock()
	if !sl.enabled(header) {
		return
	}
	fmt.Fprintf(output, "%s%s%s%s%s%s%s\n",
		header,
		logger.Spacer,
		sl.name,
		logger.Spacer,
		time.Now().Format(logger.TimestampFormat),
		logger.Spacer,
		deferral())
}

// enabled checks if the header's level is enabled, callers hold mu
func (sl *SubLogger) enabled(header string) bool {
	switch header {
	case logger.InfoHeader:
		return sl.info
	case logger.WarnHeader:
		return sl.warn
	case logger.ErrorHeader:
		return sl.err
	case logger.DebugHeader:
		return sl.debug
	}
	return false
}
