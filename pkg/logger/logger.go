package logger

import (
	"io"
	"log"
	"os"
	"strings"
)

// LogLevel controls which messages are emitted.
type LogLevel int

const (
	TRACE LogLevel = iota
	DEBUG
	INFO
	WARN
	ERROR
)

var levelNames = map[string]LogLevel{
	"TRACE": TRACE,
	"DEBUG": DEBUG,
	"INFO":  INFO,
	"WARN":  WARN,
	"ERROR": ERROR,
}

var (
	loggers      map[LogLevel]*log.Logger
	currentLevel LogLevel
)

func init() {
	loggers = map[LogLevel]*log.Logger{
		TRACE: log.New(os.Stdout, "[TRACE] ", log.Ldate|log.Ltime),
		DEBUG: log.New(os.Stdout, "[DEBUG] ", log.Ldate|log.Ltime),
		INFO:  log.New(os.Stdout, "[INFO] ", log.Ldate|log.Ltime),
		WARN:  log.New(os.Stdout, "[WARN] ", log.Ldate|log.Ltime),
		ERROR: log.New(os.Stderr, "[ERROR] ", log.Ldate|log.Ltime),
	}
	SetLevel(levelFromEnv())
}

// levelFromEnv reads the level from APIMOCK_LOG_LEVEL, defaulting to INFO
func levelFromEnv() LogLevel {
	if lvl, ok := levelNames[strings.ToUpper(os.Getenv("APIMOCK_LOG_LEVEL"))]; ok {
		return lvl
	}
	return INFO
}

// SetLevel changes the active log level, silencing loggers below it
func SetLevel(level LogLevel) {
	currentLevel = level
	for lvl, l := range loggers {
		if lvl < currentLevel {
			l.SetOutput(io.Discard)
		} else if lvl == ERROR {
			l.SetOutput(os.Stderr)
		} else {
			l.SetOutput(os.Stdout)
		}
	}
}

// GetCurrentLevel returns the current log level
func GetCurrentLevel() LogLevel {
	return currentLevel
}

func IsTraceEnabled() bool {
	return currentLevel <= TRACE
}

func IsDebugEnabled() bool {
	return currentLevel <= DEBUG
}

func Tracef(format string, v ...interface{}) {
	if currentLevel <= TRACE {
		loggers[TRACE].Printf(format, v...)
	}
}

func Debugf(format string, v ...interface{}) {
	if currentLevel <= DEBUG {
		loggers[DEBUG].Printf(format, v...)
	}
}

func Infof(format string, v ...interface{}) {
	if currentLevel <= INFO {
		loggers[INFO].Printf(format, v...)
	}
}

func Warnf(format string, v ...interface{}) {
	if currentLevel <= WARN {
		loggers[WARN].Printf(format, v...)
	}
}

func Errorf(format string, v ...interface{}) {
	if currentLevel <= ERROR {
		loggers[ERROR].Printf(format, v...)
	}
}
