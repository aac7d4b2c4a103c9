package assets

// Logger receives structured log lines. Key/value pairs alternate, as with
// zap's sugared logger; pkg/logging provides a zap-backed implementation.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// LogLevel names the severity passed to LoggerFunc.
type LogLevel string

const (
	LevelDebug LogLevel = "debug"
	LevelInfo  LogLevel = "info"
	LevelWarn  LogLevel = "warn"
	LevelError LogLevel = "error"
)

// LoggerFunc adapts a function to Logger.
type LoggerFunc func(level LogLevel, msg string, keysAndValues ...any)

func (f LoggerFunc) Debug(msg string, kv ...any) { f.log(LevelDebug, msg, kv) }
func (f LoggerFunc) Info(msg string, kv ...any)  { f.log(LevelInfo, msg, kv) }
func (f LoggerFunc) Warn(msg string, kv ...any)  { f.log(LevelWarn, msg, kv) }
func (f LoggerFunc) Error(msg string, kv ...any) { f.log(LevelError, msg, kv) }

func (f LoggerFunc) log(level LogLevel, msg string, kv []any) {
	if f != nil {
		f(level, msg, kv...)
	}
}

// NopLogger discards every line.
func NopLogger() Logger { return noopLogger{} }

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
