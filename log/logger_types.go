package log

import (
	"io"
	"os"
	"sync"
)

const (
	timestampFormat = "02/01/2006 15:04:05"
	spacer          = " | "

	defaultInfoHeader  = "[INFO]"
	defaultWarnHeader  = "[WARN]"
	defaultDebugHeader = "[DEBUG]"
	defaultErrorHeader = "[ERROR]"
)

var (
	// mu guards the sublogger registry and output writer
	mu         = &sync.RWMutex{}
	subLoggers = map[string]*SubLogger{}
	output     io.Writer = os.Stdout

	logger = Logger{
		TimestampFormat: timestampFormat,
		Spacer:          spacer,
		InfoHeader:      defaultInfoHeader,
		WarnHeader:      defaultWarnHeader,
		DebugHeader:     defaultDebugHeader,
		ErrorHeader:     defaultErrorHeader,
	}
)

// Logger holds the formatting settings applied to every log line
type Logger struct {
	TimestampFormat                                  string
	Spacer                                           string
	InfoHeader, ErrorHeader, DebugHeader, WarnHeader string
}

// Levels flags for each sub logger type
type Levels struct {
	Info, Debug, Warn, Error bool
}

// SubLogger defines a sub logger can be used externally for packages wanted to
// leverage the logger library
type SubLogger struct {
	name string
	levels
}

// levels is the internal atomic-free level set; guarded by mu
type levels struct {
	info, debug, warn, err bool
}
