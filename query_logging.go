package assets

import "time"

// QueryLogEvent describes one Cache.Query run.
type QueryLogEvent struct {
	Engine   string
	Expr     string
	Scanned  int
	Matched  int
	Duration time.Duration
	Err      error
}

// QueryLogger records query events.
type QueryLogger interface {
	LogQuery(QueryLogEvent)
}

// QueryLoggerFunc adapts a function to QueryLogger.
type QueryLoggerFunc func(QueryLogEvent)

// LogQuery implements QueryLogger.
func (f QueryLoggerFunc) LogQuery(event QueryLogEvent) {
	if f != nil {
		f(event)
	}
}

type noopQueryLogger struct{}

func (noopQueryLogger) LogQuery(QueryLogEvent) {}
