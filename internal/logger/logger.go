package logger

import (
	"io"
	"os"
	"runtime/debug"
	"strings"

	"github.com/sirupsen/logrus"
)

// Level represents the severity of a log message
type Level int

const (
	// LevelDebug for detailed troubleshooting
	LevelDebug Level = iota
	// LevelInfo for general operational entries
	LevelInfo
	// LevelWarn for non-critical issues
	LevelWarn
	// LevelError for errors that should be addressed
	LevelError
)

var (
	// Default logger. stdout belongs to the stdio transport, so logs go to stderr.
	logger   = newLogger(os.Stderr)
	logLevel = LevelInfo
)

func newLogger(w io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006/01/02 15:04:05",
	})
	l.SetLevel(logrus.InfoLevel)
	return l
}

// Initialize sets up the logger with the specified level
func Initialize(level string) {
	setLogLevel(level)
}

// SetFormat switches between "text" (default) and "json" output
func SetFormat(format string) {
	if strings.EqualFold(format, "json") {
		logger.SetFormatter(&logrus.JSONFormatter{})
		return
	}
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006/01/02 15:04:05",
	})
}

// SetOutput redirects log output
func SetOutput(w io.Writer) {
	logger.SetOutput(w)
}

// setLogLevel sets the log level from a string
func setLogLevel(level string) {
	switch strings.ToLower(level) {
	case "debug":
		logLevel = LevelDebug
	case "info":
		logLevel = LevelInfo
	case "warn":
		logLevel = LevelWarn
	case "error":
		logLevel = LevelError
	default:
		logLevel = LevelInfo
	}
	logger.SetLevel(logrusLevel(logLevel))
}

func logrusLevel(level Level) logrus.Level {
	switch level {
	case LevelDebug:
		return logrus.DebugLevel
	case LevelWarn:
		return logrus.WarnLevel
	case LevelError:
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

// Debug logs a debug message
func Debug(format string, v ...interface{}) {
	logger.Debugf(format, v...)
}

// Info logs an info message
func Info(format string, v ...interface{}) {
	logger.Infof(format, v...)
}

// Warn logs a warning message
func Warn(format string, v ...interface{}) {
	logger.Warnf(format, v...)
}

// Error logs an error message
func Error(format string, v ...interface{}) {
	logger.Errorf(format, v...)
}

// ErrorWithStack logs an error with a stack trace
func ErrorWithStack(err error) {
	if err == nil {
		return
	}
	logger.WithField("stack", string(debug.Stack())).Error(err)
}

// WithFields returns an entry carrying structured fields, used for per-call logging
func WithFields(fields map[string]interface{}) *logrus.Entry {
	return logger.WithFields(logrus.Fields(fields))
}

// Writer returns a writer whose lines are logged at debug level. The caller
// closes it when done.
func Writer() *io.PipeWriter {
	return logger.WriterLevel(logrus.DebugLevel)
}
