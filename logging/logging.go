package logging

// Level represents log levels
type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
	FatalLevel
)

func (l Level) String() string {
	switch l {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	case FatalLevel:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel maps a level name to a Level, defaulting to InfoLevel for
// anything unrecognized.
func ParseLevel(name string) Level {
	switch name {
	case "debug", "DEBUG":
		return DebugLevel
	case "info", "INFO":
		return InfoLevel
	case "warn", "WARN", "warning":
		return WarnLevel
	case "error", "ERROR":
		return ErrorLevel
	case "fatal", "FATAL":
		return FatalLevel
	default:
		return InfoLevel
	}
}

// Fields represents structured logging fields
type Fields map[string]any

// Logger is the interface components expect for logging. Components receive
// a Logger at construction; the package-level functions exist for code that
// was not handed one explicitly.
type Logger interface {
	Debug(msg string, fields ...Fields)
	Info(msg string, fields ...Fields)
	Warn(msg string, fields ...Fields)
	Error(err error, msg string, fields ...Fields)
	Fatal(err error, msg string, fields ...Fields)

	// WithFields returns a logger with preset fields
	WithFields(fields Fields) Logger

	// SetLevel sets the minimum log level
	SetLevel(level Level)
}

var defaultLogger Logger = NewDefaultLogger()

// SetLogger replaces the package-level logger. Passing nil silences it.
func SetLogger(logger Logger) {
	if logger == nil {
		defaultLogger = &NoOpLogger{}
	} else {
		defaultLogger = logger
	}
}

// GetLogger returns the current package-level logger
func GetLogger() Logger {
	return defaultLogger
}

// Package-level logging functions that use the package-level logger
func Debug(msg string, fields ...Fields) {
	defaultLogger.Debug(msg, fields...)
}

func Info(msg string, fields ...Fields) {
	defaultLogger.Info(msg, fields...)
}

func Warn(msg string, fields ...Fields) {
	defaultLogger.Warn(msg, fields...)
}

func Error(err error, msg string, fields ...Fields) {
	defaultLogger.Error(err, msg, fields...)
}

func Fatal(err error, msg string, fields ...Fields) {
	defaultLogger.Fatal(err, msg, fields...)
}

func WithFields(fields Fields) Logger {
	return defaultLogger.WithFields(fields)
}

func SetLevel(level Level) {
	defaultLogger.SetLevel(level)
}
